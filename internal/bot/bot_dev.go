package bot

import (
	"eloladder/internal/util"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdDev(m *discordgo.Message, args []string, out io.Writer) error {
	if !bot.isAdmin(m) {
		return fmt.Errorf("dev command ran by a non-admin: %v", args)
	}
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] {
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(
			out, "The bot has been online for %s and knows %d players.",
			util.FormatDuration(time.Since(bot.startedAt)), bot.back.PlayerCount(),
		)
	case "error":
		return util.ErrPublic("here's your error")
	case "url":
		if bot.dg == nil {
			return util.ErrPublic("not connected to Discord")
		}
		fmt.Fprintf(
			out,
			"https://discordapp.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionReadMessages|discordgo.PermissionSendMessages,
		)
	default:
		return util.ErrPublic(fmt.Sprintf("unknown subcommand: %s", args[0]))
	}

	return nil
}
