package main

import (
	"eloladder/internal/back"
	"eloladder/internal/config"
	"errors"
)

// migrateMirror applies the schema to the SQLite mirror then copies the match
// history it lacks.
func migrateMirror(conf *config.Config) error {
	if conf.SQLitePath == "" {
		return errors.New("SQLitePath is not set, there is no SQL mirror to migrate")
	}

	path := conf.Path(conf.SQLitePath)
	if err := back.Migrate(conf.MigrationsURL, path); err != nil {
		return err
	}

	mirror, err := back.NewSQLMatchLog(path)
	if err != nil {
		return err
	}
	defer mirror.Close()

	_, err = mirror.CatchUp(back.NewCSVMatchLog(conf.Path(conf.HistoryCSV)))
	return err
}
