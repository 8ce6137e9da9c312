package bot

import (
	"eloladder/internal/back"
	"eloladder/internal/util"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// parseScores parses the trailing numeric arguments of a command.
func parseScores(args []string) ([]float64, error) {
	ret := make([]float64, 0, len(args))
	for _, v := range args {
		f, err := util.ParseScore(v)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}

	return ret, nil
}

func (bot *Bot) cmdRecord(m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 4 {
		return util.ErrPublic("expected 4 arguments: P1 P2 S1 S2")
	}

	roles, err := bot.memberRoles(m.GuildID, m.Author.ID)
	if err != nil {
		log.Printf("warning: unable to fetch roles of %s: %s", m.Author.ID, err)
	}
	if !bot.config.CanRecord(m.Author.ID, roles) {
		return util.ErrPublic("you are not allowed to record matches")
	}

	scores, err := parseScores(args[2:])
	if err != nil {
		return err
	}

	res, err := bot.back.RecordMatch(args[0], args[1], scores[0], scores[1], m.Author.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		w, "Match recorded: %s (%s) vs %s (%s). Elo ratings updated!\n```\n",
		res.Record.Player1, util.FormatFloat(res.Record.Score1),
		res.Record.Player2, util.FormatFloat(res.Record.Score2),
	)
	back.WriteUpdate(w, res.Record.Player1, res.Record.Player2, res.Update)
	fmt.Fprint(w, "```")

	return nil
}

func (bot *Bot) cmdHowMuchElo(_ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 4 {
		return util.ErrPublic("expected 4 arguments: ELO1 ELO2 S1 S2")
	}

	values, err := parseScores(args)
	if err != nil {
		return err
	}

	update := bot.back.PreviewMatch(values[0], values[1], values[2], values[3])
	fmt.Fprint(w, "```\n")
	back.WriteUpdate(w, "player one", "player two", update)
	fmt.Fprint(w, "```")

	return nil
}

func (bot *Bot) cmdStats(_ *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return util.ErrPublic("expected 1 argument: PLAYER")
	}

	stats, err := bot.back.GetPlayerStats(args[0])
	if err != nil {
		if back.IsNotFound(err) {
			fmt.Fprintf(w, "No data found for player '%s'.", util.NormalizeName(args[0]))
			return nil
		}
		return err
	}

	fmt.Fprint(w, "```\n")
	back.WritePlayerStats(w, stats)
	fmt.Fprint(w, "```")

	return nil
}

func (bot *Bot) cmdLeaderboard(_ *discordgo.Message, _ []string, w io.Writer) error {
	return bot.writeLeaderboard(w, bot.config.LeaderboardSize)
}

func (bot *Bot) cmdLeaderboardFull(m *discordgo.Message, _ []string, w io.Writer) error {
	if !bot.isAdmin(m) {
		return util.ErrPublic("only admins can display the full leaderboard")
	}

	return bot.writeLeaderboard(w, 0)
}

func (bot *Bot) writeLeaderboard(w io.Writer, limit int) error {
	entries, err := bot.back.GetLeaderboard(limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprint(w, "Nobody has played yet.")
		return nil
	}

	var buf strings.Builder
	if err := back.WriteStandings(&buf, entries); err != nil {
		return err
	}

	fmt.Fprintf(w, "Leaderboard:\n```\n%s```", buf.String())
	return nil
}
