package main

import (
	"eloladder/internal/back"
	"eloladder/internal/config"
	"eloladder/internal/elo"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	configPath := flag.String("config", "", "path to the JSON config file (default: user config dir)")
	flag.Parse()

	if err := run(*configPath, flag.Args()); err != nil {
		log.Printf("error: %s", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	var command string
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "eloladder %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	}

	conf, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	switch command {
	case "config":
		return conf.Write()
	case "migrate":
		return migrateMirror(conf)
	case "preview":
		return preview(os.Stdout, elo.KFactorOrDefault(conf.KFactor), args)
	case "serve", "prompt", "leaderboard":
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
	}

	b, err := back.New(backOptions(conf))
	if err != nil {
		return err
	}
	defer b.Close()

	switch command {
	case "serve":
		return serve(b, conf)
	case "prompt":
		return prompt(b, os.Stdin, os.Stdout)
	default:
		var limit int
		if len(args) > 0 {
			if limit, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("invalid limit: %w", err)
			}
		}
		return printStandings(b, os.Stdout, limit)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewFromUserConfigDir()
	}

	conf := &config.Config{}
	if err := conf.ReloadFromFile(path); err != nil {
		return nil, err
	}

	return conf, nil
}

func backOptions(conf *config.Config) back.Options {
	return back.Options{
		KFactor:       conf.KFactor,
		RatingsJSON:   conf.Path(conf.RatingsJSON),
		RatingsCSV:    conf.Path(conf.RatingsCSV),
		HistoryCSV:    conf.Path(conf.HistoryCSV),
		SQLitePath:    conf.Path(conf.SQLitePath),
		MigrationsURL: conf.MigrationsURL,
	}
}

func help() string {
	return fmt.Sprintf(`
eloladder keeps the Elo ratings of a small community, updated after each
reported match.

Usage: %[1]s [-config PATH] COMMAND [ARGS…]

COMMANDS
    config                 write the effective configuration to the user config dir
    help                   display this help
    leaderboard [N]        print the standings, every player without N
    migrate                create or update the SQLite mirror and copy the history to it
    preview R1 R2 S1 S2    print the rating change of a hypothetical match
    prompt                 record matches interactively
    serve                  run the Discord bot (and the HTTP API if WebAddr is set)
    version                display the current version
`,
		os.Args[0],
	)
}
