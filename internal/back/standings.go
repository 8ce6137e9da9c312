package back

import (
	"eloladder/internal/elo"
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteStandings prints the leaderboard as an aligned text table.
func WriteStandings(w io.Writer, entries []LeaderboardEntry) error {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(table, "Rank\tPlayer\tRating\tWin %\tGames\tWins\tLosses\tDraws")
	for _, v := range entries {
		fmt.Fprintf(
			table, "%d\t%s\t%.2f\t%.2f\t%d\t%d\t%d\t%d\n",
			v.Rank, v.Name, v.Rating, v.WinRate(),
			v.Games, v.Wins, v.Losses, v.Draws,
		)
	}

	return table.Flush()
}

// WriteUpdate prints the rating change of both players of a match.
func WriteUpdate(w io.Writer, player1, player2 string, u elo.Update) {
	fmt.Fprintf(w, "%s: %.2f => %.2f (%+.2f)\n", player1, u.Rating1Before, u.Rating1After, u.Delta1())
	fmt.Fprintf(w, "%s: %.2f => %.2f (%+.2f)\n", player2, u.Rating2Before, u.Rating2After, u.Delta2())
	if u.Epic {
		fmt.Fprintf(w, "Epic result, K-factor raised to %.2f\n", u.KFactor)
	}
}

// WritePlayerStats prints the rating and record of a single player.
func WritePlayerStats(w io.Writer, s PlayerStats) {
	fmt.Fprintf(w, "Stats for %s:\n", s.Name)
	fmt.Fprintf(w, "- Elo Rating: %.2f\n", s.Rating)
	fmt.Fprintf(w, "- Games Played: %d\n", s.Games)
	fmt.Fprintf(w, "- Wins: %d\n", s.Wins)
	fmt.Fprintf(w, "- Losses: %d\n", s.Losses)
	fmt.Fprintf(w, "- Draws: %d\n", s.Draws)
	fmt.Fprintf(w, "- Win Rate: %.2f%%\n", s.WinRate())
}
