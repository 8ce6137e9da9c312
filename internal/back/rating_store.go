package back

import (
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"errors"
	"fmt"
	"log"
	"sort"
)

var (
	// ErrNotFound is returned when looking up a player that never played.
	ErrNotFound = errors.New("not found")

	// ErrNoData is returned by a RatingLoader whose backing file is absent.
	ErrNoData = errors.New("no data")
)

// A RatingLoader reads a persisted player → rating mapping.
// It must return ErrNoData when there is nothing to read and any other error
// when there is something to read but it can't be understood.
type RatingLoader interface {
	Source() string
	Load() (map[string]float64, error)
}

// A RatingSaver persists the full player → rating mapping.
type RatingSaver interface {
	Source() string
	Save(map[string]float64) error
}

// LoadPolicy is the ordered list of loaders tried by RatingStore.Load, the
// first one to find data wins and the others are not consulted.
type LoadPolicy []RatingLoader

// DefaultLoadPolicy prefers the JSON file and falls back to the CSV one.
func DefaultLoadPolicy(jsonPath, csvPath string) LoadPolicy {
	return LoadPolicy{
		JSONRatingFile{Path: jsonPath},
		CSVRatingFile{Path: csvPath},
	}
}

// Load returns the data found by the first loader that has any and the name
// of its source. An empty mapping and source is returned when no loader has
// data.
func (p LoadPolicy) Load() (map[string]float64, string, error) {
	for _, loader := range p {
		ratings, err := loader.Load()
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("unable to load ratings from %s: %w", loader.Source(), err)
		}

		return ratings, loader.Source(), nil
	}

	return map[string]float64{}, "", nil
}

// RatingStore holds the current rating of every player.
// It is not safe for concurrent use, Back serializes accesses.
type RatingStore struct {
	ratings map[string]float64
	policy  LoadPolicy
	savers  []RatingSaver
}

func NewRatingStore(policy LoadPolicy, savers ...RatingSaver) *RatingStore {
	return &RatingStore{
		ratings: map[string]float64{},
		policy:  policy,
		savers:  savers,
	}
}

// EnsurePlayer adds a player with the default rating, it returns true if the
// player was created.
func (s *RatingStore) EnsurePlayer(name string) bool {
	if _, ok := s.ratings[name]; ok {
		return false
	}

	s.ratings[name] = elo.DefaultRating
	return true
}

func (s *RatingStore) Rating(name string) (float64, error) {
	v, ok := s.ratings[name]
	if !ok {
		return 0, fmt.Errorf("player %q: %w", name, ErrNotFound)
	}

	return v, nil
}

func (s *RatingStore) SetRating(name string, value float64) {
	s.ratings[name] = value
}

func (s *RatingStore) remove(name string) {
	delete(s.ratings, name)
}

func (s *RatingStore) Len() int {
	return len(s.ratings)
}

// Snapshot returns a copy of the mapping.
func (s *RatingStore) Snapshot() map[string]float64 {
	ret := make(map[string]float64, len(s.ratings))
	for k, v := range s.ratings {
		ret[k] = v
	}

	return ret
}

// Load replaces the in-memory mapping with the persisted one, the mapping is
// left untouched on error.
func (s *RatingStore) Load() error {
	loaded, source, err := s.policy.Load()
	if err != nil {
		return err
	}

	ratings := make(map[string]float64, len(loaded))
	for k, v := range loaded {
		name := util.NormalizeName(k)
		if name == "" {
			return fmt.Errorf("%s: empty player name", source)
		}
		if _, ok := ratings[name]; ok {
			return fmt.Errorf("%s: player %q appears twice", source, name)
		}
		ratings[name] = v
	}

	s.ratings = ratings
	if source == "" {
		log.Print("info: no existing player data found, starting fresh")
	} else {
		log.Printf("info: loaded %d players from %s", len(ratings), source)
	}

	return nil
}

// Save writes the whole mapping to every saver, overwriting their content.
func (s *RatingStore) Save() error {
	for _, saver := range s.savers {
		if err := saver.Save(s.ratings); err != nil {
			return fmt.Errorf("unable to save ratings to %s: %w", saver.Source(), err)
		}
		log.Printf("debug: saved %d players to %s", len(s.ratings), saver.Source())
	}

	return nil
}

// A RankedPlayer is a player and its current rating.
type RankedPlayer struct {
	Name   string
	Rating float64
}

// Players returns all players sorted by descending rating then name.
func (s *RatingStore) Players() []RankedPlayer {
	ret := make([]RankedPlayer, 0, len(s.ratings))
	for k, v := range s.ratings {
		ret = append(ret, RankedPlayer{Name: k, Rating: v})
	}

	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Rating != ret[j].Rating {
			return ret[i].Rating > ret[j].Rating
		}
		return ret[i].Name < ret[j].Name
	})

	return ret
}
