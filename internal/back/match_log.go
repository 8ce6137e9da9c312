package back

import (
	"eloladder/internal/util"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
)

// MatchLog is the append-only, chronological record of every match played.
type MatchLog interface {
	Append(MatchRecord) error

	// ReplayAll returns every record in insertion order, an empty slice if
	// nothing was ever appended.
	ReplayAll() ([]MatchRecord, error)
}

// MatchLogHeader is the first row of the CSV match history.
var MatchLogHeader = []string{ // nolint:gochecknoglobals
	"Player 1", "Player 2", "Player 1 Score", "Player 2 Score",
	"Player 1 Elo Before", "Player 1 Elo After",
	"Player 2 Elo Before", "Player 2 Elo After", "Date",
}

// CSVMatchLog stores the MatchLog in a CSV file, it is the source of truth
// for statistics.
type CSVMatchLog struct {
	Path string
}

func NewCSVMatchLog(path string) *CSVMatchLog {
	return &CSVMatchLog{Path: path}
}

func (l *CSVMatchLog) Append(r MatchRecord) error {
	f, err := os.OpenFile(l.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("unable to open match log: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		log.Printf("info: creating match log %s", l.Path)
		if err := w.Write(MatchLogHeader); err != nil {
			f.Close()
			return err
		}
	}

	if err := w.Write(encodeMatchRecord(r)); err != nil {
		f.Close()
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}

func (l *CSVMatchLog) ReplayAll() ([]MatchRecord, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []MatchRecord{}, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(MatchLogHeader)

	header, err := r.Read()
	if err == io.EOF {
		return []MatchRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read header: %w", l.Path, err)
	}
	if err := checkHeader(header, MatchLogHeader); err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}

	ret := []MatchRecord{}
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Path, err)
		}

		record, err := decodeMatchRecord(row)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", l.Path, line, err)
		}

		ret = append(ret, record)
	}

	return ret, nil
}

func checkHeader(actual, expected []string) error {
	if len(actual) != len(expected) {
		return fmt.Errorf("expected %d columns, got %d", len(expected), len(actual))
	}

	for k := range expected {
		if actual[k] != expected[k] {
			return fmt.Errorf("unexpected column #%d: expected %q got %q", k+1, expected[k], actual[k])
		}
	}

	return nil
}

func encodeMatchRecord(r MatchRecord) []string {
	return []string{
		r.Player1, r.Player2,
		util.FormatFloat(r.Score1), util.FormatFloat(r.Score2),
		util.FormatFloat(r.Rating1Before), util.FormatFloat(r.Rating1After),
		util.FormatFloat(r.Rating2Before), util.FormatFloat(r.Rating2After),
		r.Date.String(),
	}
}

func decodeMatchRecord(row []string) (MatchRecord, error) {
	ret := MatchRecord{
		Player1: row[0],
		Player2: row[1],
	}

	floats := []struct {
		dst *float64
		src string
	}{
		{&ret.Score1, row[2]},
		{&ret.Score2, row[3]},
		{&ret.Rating1Before, row[4]},
		{&ret.Rating1After, row[5]},
		{&ret.Rating2Before, row[6]},
		{&ret.Rating2After, row[7]},
	}
	for k, v := range floats {
		f, err := strconv.ParseFloat(v.src, 64)
		if err != nil {
			return MatchRecord{}, fmt.Errorf("column %q: %w", MatchLogHeader[k+2], err)
		}
		*v.dst = f
	}

	date, err := util.ParseDate(row[8])
	if err != nil {
		return MatchRecord{}, fmt.Errorf("column %q: %w", MatchLogHeader[8], err)
	}
	ret.Date = util.DateAsText(date)

	if ret.Player1 == "" || ret.Player2 == "" {
		return MatchRecord{}, errors.New("empty player name")
	}

	return ret, nil
}

// mirroredMatchLog appends to a primary log then to every mirror, reads only
// ever come from the primary.
type mirroredMatchLog struct {
	primary MatchLog
	mirrors []MatchLog
}

func (l *mirroredMatchLog) Append(r MatchRecord) error {
	if err := l.primary.Append(r); err != nil {
		return err
	}

	errs := make([]error, 0, len(l.mirrors))
	for _, v := range l.mirrors {
		if err := v.Append(r); err != nil {
			errs = append(errs, fmt.Errorf("mirror: %w", err))
		}
	}

	return util.ConcatErrors(errs)
}

func (l *mirroredMatchLog) ReplayAll() ([]MatchRecord, error) {
	return l.primary.ReplayAll()
}
