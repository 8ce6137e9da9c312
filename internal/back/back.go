package back

import (
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"
)

// Options holds everything needed to build a Back.
type Options struct {
	KFactor float64

	RatingsJSON, RatingsCSV, HistoryCSV string

	// SQLitePath enables the SQL mirror of the match log when not empty.
	SQLitePath, MigrationsURL string
}

// Back is the ladder engine, there is one per process and every front end
// shares it.
type Back struct {
	// mu covers the whole "ensure players, compute, save, append" sequence
	// and any read of the ratings.
	mu sync.Mutex

	kFactor float64
	store   *RatingStore
	log     MatchLog
	mirror  *SQLMatchLog

	now func() time.Time
}

// New loads the persisted ratings and opens the match log.
func New(opts Options) (*Back, error) {
	opts.KFactor = elo.KFactorOrDefault(opts.KFactor)

	store := NewRatingStore(
		DefaultLoadPolicy(opts.RatingsJSON, opts.RatingsCSV),
		JSONRatingFile{Path: opts.RatingsJSON},
		CSVRatingFile{Path: opts.RatingsCSV},
	)
	if err := store.Load(); err != nil {
		return nil, err
	}

	primary := NewCSVMatchLog(opts.HistoryCSV)
	b := &Back{
		kFactor: opts.KFactor,
		store:   store,
		log:     primary,
		now:     time.Now,
	}

	if opts.SQLitePath == "" {
		return b, nil
	}

	if opts.MigrationsURL != "" {
		if err := Migrate(opts.MigrationsURL, opts.SQLitePath); err != nil {
			return nil, err
		}
	}

	mirror, err := NewSQLMatchLog(opts.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open SQL mirror: %w", err)
	}
	if _, err := mirror.CatchUp(primary); err != nil {
		mirror.Close()
		return nil, fmt.Errorf("unable to sync SQL mirror: %w", err)
	}

	b.mirror = mirror
	b.log = &mirroredMatchLog{primary: primary, mirrors: []MatchLog{mirror}}

	return b, nil
}

func (b *Back) Close() error {
	if b.mirror == nil {
		return nil
	}

	return b.mirror.Close()
}

// KFactor returns the base K-factor used for every match.
func (b *Back) KFactor() float64 {
	return b.kFactor
}

// MatchResult is what a front end needs to report a recorded match.
type MatchResult struct {
	Record MatchRecord
	Update elo.Update
}

// RecordMatch updates both players ratings, persists them and appends the
// match to the log. On a failure to save nothing is kept.
func (b *Back) RecordMatch(
	player1, player2 string,
	score1, score2 float64,
	reporter string,
) (MatchResult, error) {
	player1, player2 = util.NormalizeName(player1), util.NormalizeName(player2)
	if err := validateMatch(player1, player2, score1, score2); err != nil {
		return MatchResult{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	created1 := b.store.EnsurePlayer(player1)
	created2 := b.store.EnsurePlayer(player2)

	// EnsurePlayer just made sure those exist.
	rating1, _ := b.store.Rating(player1)
	rating2, _ := b.store.Rating(player2)

	update := elo.ComputeUpdate(rating1, rating2, score1, score2, b.kFactor)
	b.store.SetRating(player1, update.Rating1After)
	b.store.SetRating(player2, update.Rating2After)

	if err := b.store.Save(); err != nil {
		b.rollback(player1, rating1, created1)
		b.rollback(player2, rating2, created2)

		// Some files may have been written before the failure, bring them
		// back to the rolled back ratings.
		if err2 := b.store.Save(); err2 != nil {
			log.Printf("warning: unable to restore rating files after a failed save: %s", err2)
		}

		return MatchResult{}, err
	}

	record := NewMatchRecord(player1, player2, score1, score2, update, b.now(), reporter)
	if err := b.log.Append(record); err != nil {
		return MatchResult{}, fmt.Errorf(
			"ratings were saved but the match log could not be appended (%s): %w",
			record, err,
		)
	}

	log.Printf(
		"info: match recorded: %s, %s %.2f => %.2f, %s %.2f => %.2f",
		record,
		player1, update.Rating1Before, update.Rating1After,
		player2, update.Rating2Before, update.Rating2After,
	)

	return MatchResult{Record: record, Update: update}, nil
}

func (b *Back) rollback(name string, rating float64, created bool) {
	if created {
		b.store.remove(name)
		return
	}

	b.store.SetRating(name, rating)
}

func validateMatch(player1, player2 string, score1, score2 float64) error {
	if player1 == "" || player2 == "" {
		return util.ErrPublic("player names can't be empty")
	}

	if player1 == player2 {
		return util.ErrPublic("a player can't play against themselves")
	}

	for _, v := range []float64{score1, score2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return util.ErrPublic("scores must be finite numbers")
		}
	}

	return nil
}

// PreviewMatch computes the rating change of a hypothetical match, nothing
// is read nor written.
func (b *Back) PreviewMatch(rating1, rating2, score1, score2 float64) elo.Update {
	return elo.ComputeUpdate(rating1, rating2, score1, score2, b.kFactor)
}

// PlayerStats is the current rating and aggregated record of a player.
type PlayerStats struct {
	Name   string
	Rating float64
	Stats
}

// GetPlayerStats returns ErrNotFound if the player never played.
func (b *Back) GetPlayerStats(name string) (PlayerStats, error) {
	name = util.NormalizeName(name)

	b.mu.Lock()
	defer b.mu.Unlock()

	rating, err := b.store.Rating(name)
	if err != nil {
		return PlayerStats{}, err
	}

	records, err := b.log.ReplayAll()
	if err != nil {
		return PlayerStats{}, err
	}

	return PlayerStats{
		Name:   name,
		Rating: rating,
		Stats:  ComputeStats(records)[name],
	}, nil
}

// LeaderboardEntry is a row of the standings.
type LeaderboardEntry struct {
	Rank int
	PlayerStats
}

// GetLeaderboard returns the standings sorted by rating, limit <= 0 means
// every player.
func (b *Back) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records, err := b.log.ReplayAll()
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(records)

	ranked := b.store.Players()
	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	ret := make([]LeaderboardEntry, 0, len(ranked))
	for k, v := range ranked {
		ret = append(ret, LeaderboardEntry{
			Rank: k + 1,
			PlayerStats: PlayerStats{
				Name:   v.Name,
				Rating: v.Rating,
				Stats:  stats[v.Name],
			},
		})
	}

	return ret, nil
}

// PlayerCount returns the number of players that played at least once.
func (b *Back) PlayerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.Len()
}

// IsNotFound is a shorthand for front ends.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
