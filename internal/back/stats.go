package back

import "eloladder/internal/elo"

// Stats is the aggregated record of a player, derived from the MatchLog.
type Stats struct {
	Games, Wins, Losses, Draws int
}

// WinRate returns the percentage of games won, 0 without games.
func (s Stats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}

	return float64(s.Wins) / float64(s.Games) * 100
}

func (s *Stats) add(o elo.Outcome) {
	s.Games++
	switch o {
	case elo.OutcomeWin:
		s.Wins++
	case elo.OutcomeLoss:
		s.Losses++
	case elo.OutcomeDraw:
		s.Draws++
	}
}

// ComputeStats replays the given records from scratch, nothing is cached so
// the result can't drift from the log.
func ComputeStats(records []MatchRecord) map[string]Stats {
	ret := map[string]Stats{}
	for _, r := range records {
		s := ret[r.Player1]
		s.add(elo.OutcomeOf(r.Score1, r.Score2))
		ret[r.Player1] = s

		s = ret[r.Player2]
		s.add(elo.OutcomeOf(r.Score2, r.Score1))
		ret[r.Player2] = s
	}

	return ret
}
