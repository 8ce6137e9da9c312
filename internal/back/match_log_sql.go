package back

import (
	"context"
	"eloladder/internal/util"
	"errors"
	"fmt"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // migrate driver
	_ "github.com/golang-migrate/migrate/v4/source/file"      // migrate source
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // database/sql driver
)

// SQLMatchLog mirrors the MatchLog in a SQLite database, it also keeps who
// reported each match.
type SQLMatchLog struct {
	db *sqlx.DB
}

// Migrate applies every pending migration to the SQLite database at path.
func Migrate(migrationsURL, path string) error {
	migrator, err := migrate.New(migrationsURL, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("unable to create migrator: %w", err)
	}

	upErr := migrator.Up()
	srcErr, dbErr := migrator.Close()

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("unable to migrate %s: %w", path, upErr)
	}
	if upErr == nil {
		log.Printf("info: migrated %s", path)
	}

	if srcErr != nil {
		return srcErr
	}

	return dbErr
}

func NewSQLMatchLog(path string) (*SQLMatchLog, error) {
	// Columns are named after the struct fields.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	return &SQLMatchLog{db: db}, nil
}

func (l *SQLMatchLog) Close() error {
	return l.db.Close()
}

func (l *SQLMatchLog) transaction(cb util.TransactionCallback) error {
	return util.Transaction(context.Background(), l.db, cb)
}

func (r *MatchRecord) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("MatchRecord").SetMap(squirrel.Eq{
		"ID":            r.ID,
		"Player1":       r.Player1,
		"Player2":       r.Player2,
		"Score1":        r.Score1,
		"Score2":        r.Score2,
		"Rating1Before": r.Rating1Before,
		"Rating1After":  r.Rating1After,
		"Rating2Before": r.Rating2Before,
		"Rating2After":  r.Rating2After,
		"Date":          r.Date,
		"Reporter":      r.Reporter,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (l *SQLMatchLog) Append(r MatchRecord) error {
	if r.ID.IsZero() {
		return errors.New("refusing to insert a MatchRecord without ID")
	}

	return l.transaction(r.insert)
}

func (l *SQLMatchLog) ReplayAll() (ret []MatchRecord, _ error) {
	return ret, l.transaction(func(tx *sqlx.Tx) (err error) {
		ret, err = getMatchRecords(tx)
		return err
	})
}

func getMatchRecords(tx *sqlx.Tx) ([]MatchRecord, error) {
	query, args, err := squirrel.Select(
		"ID", "Player1", "Player2", "Score1", "Score2",
		"Rating1Before", "Rating1After", "Rating2Before", "Rating2After",
		"Date", "Reporter",
	).From("MatchRecord").OrderBy("Seq ASC").ToSql()
	if err != nil {
		return nil, err
	}

	ret := []MatchRecord{}
	if err := tx.Select(&ret, query, args...); err != nil {
		return nil, err
	}

	return ret, nil
}

func (l *SQLMatchLog) Count() (ret int, _ error) {
	return ret, l.transaction(func(tx *sqlx.Tx) error {
		return tx.Get(&ret, `SELECT COUNT(*) FROM MatchRecord`)
	})
}

// CatchUp appends the records the mirror does not have yet, records are
// matched by position as both logs are append-only.
func (l *SQLMatchLog) CatchUp(source MatchLog) (int, error) {
	records, err := source.ReplayAll()
	if err != nil {
		return 0, err
	}

	count, err := l.Count()
	if err != nil {
		return 0, err
	}

	if count > len(records) {
		return 0, fmt.Errorf("mirror has %d records, more than the %d of its source", count, len(records))
	}

	missing := records[count:]
	if err := l.transaction(func(tx *sqlx.Tx) error {
		for k := range missing {
			if missing[k].ID.IsZero() {
				missing[k].ID = util.NewUUIDAsBlob()
			}
			if err := missing[k].insert(tx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return 0, err
	}

	if len(missing) > 0 {
		log.Printf("info: copied %d records to the SQL mirror", len(missing))
	}

	return len(missing), nil
}
