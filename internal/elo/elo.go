// Package elo implements the rating arithmetic of the ladder, it holds no
// state and performs no I/O.
package elo

import "math"

const (
	// DefaultRating is given to a player on its first match.
	DefaultRating = 1000.0

	// DefaultKFactor is the maximum amount of points exchanged in a regular
	// match.
	DefaultKFactor = 60.0

	// EpicMultiplier is applied to the K-factor of both players when any of
	// them scored zero.
	EpicMultiplier = 1.33
)

// KFactorOrDefault returns k, or DefaultKFactor when k is not a usable
// K-factor.
func KFactorOrDefault(k float64) float64 {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return DefaultKFactor
	}

	return k
}

// Outcome is the result of a match seen from one player.
type Outcome int

const (
	OutcomeLoss Outcome = -1
	OutcomeDraw Outcome = 0
	OutcomeWin  Outcome = 1
)

// OutcomeOf reads a scoreline from the point of view of the first score.
func OutcomeOf(score, against float64) Outcome {
	switch {
	case score > against:
		return OutcomeWin
	case score < against:
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}

// Actual returns the actual score used in the rating formula.
func (o Outcome) Actual() float64 {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeLoss:
		return 0
	default:
		return 0.5
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "draw"
	}
}

// ExpectedScore returns the probability of a player rated a to beat a player
// rated b, in (0, 1).
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// IsEpic is true when one of the sides was shut out.
// A 0-0 scoreline is both epic and a draw.
func IsEpic(score1, score2 float64) bool {
	return score1 == 0 || score2 == 0
}

// Update is the full breakdown of a rating change between two players.
type Update struct {
	Rating1Before, Rating1After float64
	Rating2Before, Rating2After float64
	Expected1, Expected2        float64
	Outcome1, Outcome2          Outcome
	KFactor                     float64 // effective, epic multiplier included
	Epic                        bool
}

// Delta1 returns the amount of points won (or lost) by the first player.
func (u Update) Delta1() float64 {
	return u.Rating1After - u.Rating1Before
}

// Delta2 returns the amount of points won (or lost) by the second player.
func (u Update) Delta2() float64 {
	return u.Rating2After - u.Rating2Before
}

// ComputeUpdate returns the new ratings of two players after a match.
// Ratings are neither rounded nor clamped.
func ComputeUpdate(rating1, rating2, score1, score2, kFactor float64) Update {
	u := Update{
		Rating1Before: rating1,
		Rating2Before: rating2,
		Expected1:     ExpectedScore(rating1, rating2),
		Expected2:     ExpectedScore(rating2, rating1),
		Outcome1:      OutcomeOf(score1, score2),
		Outcome2:      OutcomeOf(score2, score1),
		KFactor:       kFactor,
		Epic:          IsEpic(score1, score2),
	}

	if u.Epic {
		u.KFactor = kFactor * EpicMultiplier
	}

	u.Rating1After = rating1 + u.KFactor*(u.Outcome1.Actual()-u.Expected1)
	u.Rating2After = rating2 + u.KFactor*(u.Outcome2.Actual()-u.Expected2)

	return u
}

// Round2 rounds to two decimals, for storage and display only.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
