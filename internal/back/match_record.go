package back

import (
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v4"
)

// A MatchRecord is an immutable entry of the MatchLog, ratings are stored
// rounded to two decimals.
type MatchRecord struct {
	ID util.UUIDAsBlob

	Player1, Player2 string
	Score1, Score2   float64

	Rating1Before, Rating1After float64
	Rating2Before, Rating2After float64

	Date util.DateAsText

	// Reporter is the Discord user ID of whoever reported the match, it is
	// only kept by the SQL mirror.
	Reporter null.String
}

func NewMatchRecord(
	player1, player2 string,
	score1, score2 float64,
	update elo.Update,
	date time.Time,
	reporter string,
) MatchRecord {
	return MatchRecord{
		ID:            util.NewUUIDAsBlob(),
		Player1:       player1,
		Player2:       player2,
		Score1:        score1,
		Score2:        score2,
		Rating1Before: elo.Round2(update.Rating1Before),
		Rating1After:  elo.Round2(update.Rating1After),
		Rating2Before: elo.Round2(update.Rating2Before),
		Rating2After:  elo.Round2(update.Rating2After),
		Date:          util.NewDateAsText(date),
		Reporter:      null.NewString(reporter, reporter != ""),
	}
}

// Outcome returns the result of the match for Player1.
func (r MatchRecord) Outcome() elo.Outcome {
	return elo.OutcomeOf(r.Score1, r.Score2)
}

func (r MatchRecord) String() string {
	return fmt.Sprintf(
		"%s (%s) vs %s (%s) on %s",
		r.Player1, util.FormatFloat(r.Score1),
		r.Player2, util.FormatFloat(r.Score2),
		r.Date,
	)
}
