package bot

import (
	"eloladder/internal/back"
	"eloladder/internal/config"
	"eloladder/internal/util"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

type commandHandler func(m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	dg        *discordgo.Session
	limiter   *rate.Limiter

	// memberRoles returns the role IDs of a guild member.
	memberRoles func(guildID, userID string) ([]string, error)

	handlers map[string]commandHandler
}

func New(back *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := newBot(back, conf)
	bot.dg = dg
	bot.memberRoles = func(guildID, userID string) ([]string, error) {
		if guildID == "" {
			return nil, nil
		}

		member, err := dg.GuildMember(guildID, userID)
		if err != nil {
			return nil, err
		}

		return member.Roles, nil
	}

	dg.AddHandler(bot.handleMessage)

	return bot, nil
}

func newBot(back *back.Back, conf *config.Config) *Bot {
	bot := &Bot{
		back:      back,
		config:    conf,
		startedAt: time.Now(),
		// A burst of 5 commands then 2 per second, enough for a small
		// community and keeps us far from Discord's own limits.
		limiter: rate.NewLimiter(2, 5),
		memberRoles: func(string, string) ([]string, error) {
			return nil, nil
		},
	}

	bot.handlers = map[string]commandHandler{
		"dev":  bot.cmdDev,
		"help": bot.cmdHelp,

		"howmuchelo":      bot.cmdHowMuchElo,
		"leaderboard":     bot.cmdLeaderboard,
		"leaderboardfull": bot.cmdLeaderboardFull,
		"record":          bot.cmdRecord,
		"stats":           bot.cmdStats,
	}

	return bot
}

// Serve runs the bot until done is closed, the caller must have added it to
// wg.
func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	<-done

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, bot.config.CommandPrefix) {
		return
	}

	// PMs are always listened to.
	if m.GuildID != "" && !bot.config.IsListening(m.ChannelID) {
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	out := newChannelWriter(s, m.ChannelID)
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	bot.process(m.Message, out)
}

// resettableWriter is what process needs to reply: a channelWriter in
// production, a buffer in tests.
type resettableWriter interface {
	io.Writer
	Reset()
}

func (bot *Bot) process(m *discordgo.Message, out resettableWriter) {
	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, please tell an admin.")
			log.Print("panic: ", r)
			log.Print(string(debug.Stack()))
		}
	}()

	if !bot.limiter.Allow() {
		fmt.Fprint(out, "Too many commands, please slow down.")
		return
	}

	if err := bot.dispatch(m, out); err != nil {
		out.Reset()

		if util.IsPublic(err) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `%shelp`.", err, bot.config.CommandPrefix)
		} else {
			fmt.Fprintln(out, "There was an error processing your command.")
			fmt.Fprint(out, "An admin will check the logs.")
		}

		log.Printf("error: failed to process command: %s", err)
	}
}

func parseCommand(prefix, cmd string) (string, []string) {
	parts := strings.Fields(strings.TrimPrefix(cmd, prefix))

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(bot.config.CommandPrefix, m.Content)
	handler, ok := bot.handlers[strings.ToLower(command)]
	if !ok {
		return util.ErrPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}

	return handler(m, args, w)
}

func (bot *Bot) isAdmin(m *discordgo.Message) bool {
	return m.Author != nil && bot.config.IsAdmin(m.Author.ID)
}

func (bot *Bot) cmdHelp(m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(Help(bot.config.CommandPrefix), "'''", "```"))

	if !bot.isAdmin(m) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(strings.ReplaceAll(`
Admin-only commands:
'''
$leaderboardfull   # show every player
$dev error         # error out
$dev panic         # panic and abort
$dev uptime        # display for how long the server has been running
$dev url           # display the link to use when adding the bot to a new server
'''`, "'''", "```"), "$", bot.config.CommandPrefix))

	return nil
}

// Help returns the list of public commands, ''' stands for a code fence.
func Help(prefix string) string {
	return strings.ReplaceAll(`Available commands:
'''
$help                        # display this help message
$howmuchelo ELO1 ELO2 S1 S2  # preview the rating change of a match
$leaderboard                 # show the top players
$record P1 P2 S1 S2          # record a match (recorders only)
$stats PLAYER                # show the rating and record of a player
'''
A match where one side scores 0 is epic: the K-factor is raised by 33%.
`, "$", prefix)
}
