package bot // nolint:testpackage

import (
	"bytes"
	"eloladder/internal/back"
	"eloladder/internal/config"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

func createTestBot(t *testing.T) *Bot {
	dir, err := ioutil.TempDir("", "eloladder")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	b, err := back.New(back.Options{
		KFactor:     60,
		RatingsJSON: filepath.Join(dir, "elo_ratings.json"),
		RatingsCSV:  filepath.Join(dir, "elo_ratings.csv"),
		HistoryCSV:  filepath.Join(dir, "match_history.csv"),
	})
	if err != nil {
		t.Fatal(err)
	}

	conf := config.Default()
	conf.DiscordAdminUserIDs = []string{"admin"}
	conf.DiscordRecorderRoleIDs = []string{"overlord"}
	conf.LeaderboardSize = 2

	bot := newBot(b, &conf)
	bot.limiter = rate.NewLimiter(rate.Inf, 0)
	bot.memberRoles = func(guildID, userID string) ([]string, error) {
		if userID == "recorder" {
			return []string{"peon", "overlord"}, nil
		}
		return []string{"peon"}, nil
	}

	return bot
}

func run(bot *Bot, userID, content string) string {
	var buf bytes.Buffer
	bot.process(&discordgo.Message{
		Author:    &discordgo.User{ID: userID, Username: userID},
		GuildID:   "guild",
		ChannelID: "channel",
		Content:   content,
	}, &buf)

	return buf.String()
}

func TestParseCommand(t *testing.T) {
	type entry struct {
		input    string
		command  string
		expected []string
	}

	cases := []entry{
		{">.help", "help", nil},
		{">.record  alice bob 10 0", "record", []string{"alice", "bob", "10", "0"}},
		{">.", "", nil},
	}

	for k, v := range cases {
		command, args := parseCommand(">.", v.input)
		if command != v.command || !reflect.DeepEqual(args, v.expected) {
			t.Errorf("case #%d: expected %s %v got %s %v", k, v.command, v.expected, command, args)
		}
	}
}

func TestRecord(t *testing.T) {
	bot := createTestBot(t)

	out := run(bot, "someone", ">.record alice bob 10 0")
	if !strings.Contains(out, "not allowed") {
		t.Errorf("expected a refusal, got %q", out)
	}

	out = run(bot, "recorder", ">.record Alice bob 10 0")
	if !strings.Contains(out, "Match recorded: alice (10) vs bob (0)") ||
		!strings.Contains(out, "alice: 1000.00 => 1039.90") {
		t.Errorf("unexpected reply %q", out)
	}

	out = run(bot, "admin", ">.record alice carol ten 0")
	if !strings.Contains(out, "`ten` is not a number") {
		t.Errorf("unexpected reply %q", out)
	}
	if bot.back.PlayerCount() != 2 {
		t.Errorf("expected a bad score to create nobody, got %d players", bot.back.PlayerCount())
	}

	out = run(bot, "admin", ">.record alice bob 1")
	if !strings.Contains(out, "expected 4 arguments") {
		t.Errorf("unexpected reply %q", out)
	}
}

func TestStats(t *testing.T) {
	bot := createTestBot(t)

	if out := run(bot, "someone", ">.stats ghost"); out != "No data found for player 'ghost'." {
		t.Errorf("unexpected reply %q", out)
	}

	run(bot, "admin", ">.record carol dave 3 1")
	out := run(bot, "someone", ">.stats Carol")
	for _, v := range []string{"Stats for carol", "Games Played: 1", "Wins: 1", "Win Rate: 100.00%"} {
		if !strings.Contains(out, v) {
			t.Errorf("expected %q in %q", v, out)
		}
	}
}

func TestHowMuchElo(t *testing.T) {
	bot := createTestBot(t)

	out := run(bot, "someone", ">.howmuchelo 1000 1000 10 0")
	if !strings.Contains(out, "player one: 1000.00 => 1039.90") || !strings.Contains(out, "Epic") {
		t.Errorf("unexpected reply %q", out)
	}
	for _, v := range []string{">.howmuchelo NaN 1000 1 0", ">.howmuchelo 1000 1000 Inf 0"} {
		out := run(bot, "someone", v)
		if !strings.Contains(out, "is not a finite number") || strings.Contains(out, "NaN =>") {
			t.Errorf("%s: unexpected reply %q", v, out)
		}
	}

	if bot.back.PlayerCount() != 0 {
		t.Error("preview must not create players")
	}
}

func TestLeaderboard(t *testing.T) {
	bot := createTestBot(t)

	if out := run(bot, "someone", ">.leaderboard"); out != "Nobody has played yet." {
		t.Errorf("unexpected reply %q", out)
	}

	run(bot, "admin", ">.record alice bob 2 1")
	run(bot, "admin", ">.record carol dave 2 1")

	out := run(bot, "someone", ">.leaderboard")
	if strings.Count(out, "\n") != 5 { // title, fence, header, 2 rows
		t.Errorf("expected 2 rows, got %q", out)
	}

	if out := run(bot, "someone", ">.leaderboardfull"); !strings.Contains(out, "only admins") {
		t.Errorf("unexpected reply %q", out)
	}

	out = run(bot, "admin", ">.leaderboardfull")
	for _, v := range []string{"alice", "bob", "carol", "dave"} {
		if !strings.Contains(out, v) {
			t.Errorf("expected %s in %q", v, out)
		}
	}
}

func TestErrors(t *testing.T) {
	bot := createTestBot(t)

	if out := run(bot, "someone", ">.nope"); !strings.Contains(out, "invalid command") {
		t.Errorf("unexpected reply %q", out)
	}

	if out := run(bot, "someone", ">.dev uptime"); !strings.Contains(out, "An admin will check the logs") {
		t.Errorf("expected a private error, got %q", out)
	}

	if out := run(bot, "admin", ">.dev panic"); !strings.Contains(out, "went very wrong") {
		t.Errorf("unexpected reply %q", out)
	}

	if out := run(bot, "admin", ">.dev uptime"); !strings.Contains(out, "knows 0 players") {
		t.Errorf("unexpected reply %q", out)
	}
}

func TestHelp(t *testing.T) {
	bot := createTestBot(t)

	out := run(bot, "someone", ">.help")
	if !strings.Contains(out, ">.record P1 P2 S1 S2") || strings.Contains(out, "Admin-only") {
		t.Errorf("unexpected help %q", out)
	}

	if out := run(bot, "admin", ">.help"); !strings.Contains(out, "Admin-only") {
		t.Errorf("expected admin help, got %q", out)
	}
}

func TestRateLimit(t *testing.T) {
	bot := createTestBot(t)
	bot.limiter = rate.NewLimiter(0, 1)

	if out := run(bot, "someone", ">.leaderboard"); strings.Contains(out, "slow down") {
		t.Errorf("first command should pass, got %q", out)
	}
	if out := run(bot, "someone", ">.leaderboard"); !strings.Contains(out, "slow down") {
		t.Errorf("second command should be limited, got %q", out)
	}
}
