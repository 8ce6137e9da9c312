package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch"
)

type Config struct {
	// KFactor is the base amount of points exchanged per match, multiplied
	// by 1.33 for shutouts.
	KFactor float64

	// DataDir is where relative data file paths are resolved from.
	DataDir string

	RatingsJSON, RatingsCSV, HistoryCSV string

	// SQLitePath enables the SQL mirror of the match history when set.
	SQLitePath    string
	MigrationsURL string

	// LeaderboardSize is the amount of players shown by the short
	// leaderboard commands.
	LeaderboardSize int

	// WebAddr enables the read-only HTTP API when set.
	WebAddr string

	// CommandPrefix is what the bot expects in front of commands.
	CommandPrefix string

	// DiscordListenIDs is a list of channel ID where the bot will listen and
	// accept commands. PMs are always listened to. Empty means everywhere.
	DiscordListenIDs []string

	// Who is allowed to use admin commands.
	DiscordAdminUserIDs []string

	// Roles allowed to record matches, admins always can.
	DiscordRecorderRoleIDs []string

	DiscordToken string
}

// Default is applied below whatever the user config file holds.
func Default() Config {
	return Config{
		KFactor:         60,
		DataDir:         ".",
		RatingsJSON:     "elo_ratings.json",
		RatingsCSV:      "elo_ratings.csv",
		HistoryCSV:      "match_history.csv",
		MigrationsURL:   "file://resources/migrations",
		LeaderboardSize: 10,
		CommandPrefix:   ">.",
	}
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"ELOLADDER_DISCORD_TOKEN", &c.DiscordToken},
		{"ELOLADDER_DATA_DIR", &c.DataDir},
		{"ELOLADDER_SQLITE_PATH", &c.SQLitePath},
		{"ELOLADDER_WEB_ADDR", &c.WebAddr},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}

	return c.ReloadFromFile(path)
}

// ReloadFromFile replaces the config with the defaults patched with the
// content of the file at path, a missing file yields the defaults.
func (c *Config) ReloadFromFile(path string) error {
	defer c.expandFromEnv()
	log.Printf("debug: reading conf from %s", path)

	user, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*c = Default()
			return nil
		}
		return err
	}

	merged, err := mergeWithDefaults(user)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	*c = merged
	return nil
}

func mergeWithDefaults(user []byte) (Config, error) {
	defaults, err := json.Marshal(Default())
	if err != nil {
		return Config{}, err
	}

	patched, err := jsonpatch.MergePatch(defaults, user)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var ret Config
	if err := json.Unmarshal(patched, &ret); err != nil {
		return Config{}, err
	}

	return ret, nil
}

// Path resolves a data file path against DataDir.
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(c.DataDir, name)
}

func (c *Config) IsAdmin(userID string) bool {
	return contains(c.DiscordAdminUserIDs, userID)
}

// CanRecord returns true if a user with the given roles may record matches.
func (c *Config) CanRecord(userID string, roleIDs []string) bool {
	if c.IsAdmin(userID) {
		return true
	}

	for _, v := range roleIDs {
		if contains(c.DiscordRecorderRoleIDs, v) {
			return true
		}
	}

	return false
}

// IsListening returns true if the bot accepts commands from the channel.
func (c *Config) IsListening(channelID string) bool {
	return len(c.DiscordListenIDs) == 0 || contains(c.DiscordListenIDs, channelID)
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}

	return false
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "eloladder")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c.withoutEnvSecrets()); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}

// withoutEnvSecrets returns a copy of the config without the secrets that
// were read from the environment, those must stay out of the config file.
func (c *Config) withoutEnvSecrets() Config {
	ret := *c
	if token := os.Getenv("ELOLADDER_DISCORD_TOKEN"); token != "" && token == ret.DiscordToken {
		ret.DiscordToken = ""
	}

	return ret
}
