package back // nolint:testpackage

import (
	"eloladder/internal/util"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestRecordMatchShutout(t *testing.T) {
	back := createTestBack(t, createTestOptions(t))

	res, err := back.RecordMatch("Alice", " bob", 10, 0, "")
	if err != nil {
		t.Fatal(err)
	}

	if !res.Update.Epic {
		t.Error("expected an epic match")
	}
	if math.Abs(res.Update.Rating1After-1039.9) > epsilon || math.Abs(res.Update.Rating2After-960.1) > epsilon {
		t.Errorf("expected 1039.9/960.1 got %v/%v", res.Update.Rating1After, res.Update.Rating2After)
	}
	if res.Record.Player1 != "alice" || res.Record.Player2 != "bob" {
		t.Errorf("expected normalized names got %s/%s", res.Record.Player1, res.Record.Player2)
	}
}

func TestRecordMatchDraw(t *testing.T) {
	back := createTestBack(t, createTestOptions(t))

	res, err := back.RecordMatch("alice", "bob", 5, 5, "")
	if err != nil {
		t.Fatal(err)
	}

	if res.Update.Rating1After != 1000 || res.Update.Rating2After != 1000 {
		t.Errorf("expected no change, got %v/%v", res.Update.Rating1After, res.Update.Rating2After)
	}
}

func TestRecordMatchPersists(t *testing.T) {
	opts := createTestOptions(t)
	back := createTestBack(t, opts)
	back.now = func() time.Time { return time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local) }

	matches := []struct {
		p1, p2 string
		s1, s2 float64
	}{
		{"carol", "dave", 3, 1},
		{"erin", "carol", 0, 2},
		{"carol", "dave", 1, 4},
	}
	for _, v := range matches {
		if _, err := back.RecordMatch(v.p1, v.p2, v.s1, v.s2, ""); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := back.GetPlayerStats("Carol")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Stats != (Stats{Games: 3, Wins: 2, Losses: 1}) {
		t.Errorf("unexpected stats %+v", stats.Stats)
	}

	// A new process sees the same ratings.
	reloaded := createTestBack(t, opts)
	for _, name := range []string{"carol", "dave", "erin"} {
		a, err := back.GetPlayerStats(name)
		if err != nil {
			t.Fatal(err)
		}
		b, err := reloaded.GetPlayerStats(name)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Errorf("%s: expected %+v got %+v", name, a, b)
		}
	}

	// JSON is preferred, the CSV is used only when JSON is gone.
	if err := os.Remove(opts.RatingsJSON); err != nil {
		t.Fatal(err)
	}
	fromCSV := createTestBack(t, opts)
	if fromCSV.PlayerCount() != 3 {
		t.Errorf("expected 3 players from CSV got %d", fromCSV.PlayerCount())
	}
}

func TestGetPlayerStatsNotFound(t *testing.T) {
	back := createTestBack(t, createTestOptions(t))

	_, err := back.GetPlayerStats("ghost")
	if !IsNotFound(err) {
		t.Errorf("expected ErrNotFound got %v", err)
	}
}

func TestRecordMatchInvalid(t *testing.T) {
	opts := createTestOptions(t)
	back := createTestBack(t, opts)

	cases := []struct {
		p1, p2 string
		s1, s2 float64
	}{
		{"alice", "ALICE", 1, 0},
		{"", "bob", 1, 0},
		{"alice", "bob", math.NaN(), 0},
		{"alice", "bob", 1, math.Inf(1)},
	}

	for k, v := range cases {
		_, err := back.RecordMatch(v.p1, v.p2, v.s1, v.s2, "")
		if !util.IsPublic(err) {
			t.Errorf("case #%d: expected a public error got %v", k, err)
		}
	}

	if back.PlayerCount() != 0 {
		t.Errorf("expected no player to be created, got %d", back.PlayerCount())
	}
	if _, err := os.Stat(opts.HistoryCSV); !os.IsNotExist(err) {
		t.Errorf("expected no match log, got %v", err)
	}
}

func TestRecordMatchRollbackOnSaveFailure(t *testing.T) {
	opts := createTestOptions(t)
	back := createTestBack(t, opts)

	if _, err := back.RecordMatch("alice", "bob", 3, 1, ""); err != nil {
		t.Fatal(err)
	}
	before, err := back.GetPlayerStats("alice")
	if err != nil {
		t.Fatal(err)
	}

	// Make the saves fail.
	back.store.savers = []RatingSaver{JSONRatingFile{Path: filepath.Join(opts.RatingsJSON, "nope", "x.json")}}

	if _, err := back.RecordMatch("alice", "carol", 2, 0, ""); err == nil {
		t.Fatal("expected an error")
	}

	after, err := back.GetPlayerStats("alice")
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("expected %+v got %+v", before, after)
	}
	if _, err := back.GetPlayerStats("carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected carol to be rolled back, got %v", err)
	}
}

func TestRecordMatchRollbackRestoresWrittenFiles(t *testing.T) {
	opts := createTestOptions(t)
	back := createTestBack(t, opts)

	if _, err := back.RecordMatch("alice", "bob", 3, 1, ""); err != nil {
		t.Fatal(err)
	}
	before, err := back.GetPlayerStats("alice")
	if err != nil {
		t.Fatal(err)
	}

	// The JSON file is written fine, then the CSV can't be replaced as its
	// path is now a non-empty directory.
	if err := os.Remove(opts.RatingsCSV); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(opts.RatingsCSV, 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(opts.RatingsCSV, "blocker"), "")

	if _, err := back.RecordMatch("alice", "carol", 2, 0, ""); err == nil {
		t.Fatal("expected an error")
	}

	reloaded := createTestBack(t, opts)
	if reloaded.PlayerCount() != 2 {
		t.Errorf("expected 2 players on disk got %d", reloaded.PlayerCount())
	}
	if _, err := reloaded.GetPlayerStats("carol"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected carol to be absent from disk, got %v", err)
	}

	after, err := reloaded.GetPlayerStats("alice")
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("expected %+v got %+v", before, after)
	}

	records, err := NewCSVMatchLog(opts.HistoryCSV).ReplayAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected a single logged match got %d", len(records))
	}
}

func TestPreviewMatchDoesNotMutate(t *testing.T) {
	opts := createTestOptions(t)
	back := createTestBack(t, opts)

	u := back.PreviewMatch(1000, 1000, 10, 0)
	if math.Abs(u.Rating1After-1039.9) > epsilon {
		t.Errorf("expected 1039.9 got %v", u.Rating1After)
	}

	if back.PlayerCount() != 0 {
		t.Error("preview created players")
	}
	for _, path := range []string{opts.RatingsJSON, opts.RatingsCSV, opts.HistoryCSV} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("preview touched %s", path)
		}
	}
}

func TestGetLeaderboard(t *testing.T) {
	back := createTestBack(t, createTestOptions(t))

	for _, v := range [][2]string{{"alice", "bob"}, {"alice", "carol"}, {"bob", "carol"}} {
		if _, err := back.RecordMatch(v[0], v[1], 2, 1, ""); err != nil {
			t.Fatal(err)
		}
	}

	all, err := back.GetLeaderboard(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries got %d", len(all))
	}
	if all[0].Name != "alice" || all[0].Rank != 1 || all[0].Wins != 2 {
		t.Errorf("unexpected first entry %+v", all[0])
	}
	if all[2].Name != "carol" || all[2].Losses != 2 {
		t.Errorf("unexpected last entry %+v", all[2])
	}

	top, err := back.GetLeaderboard(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 {
		t.Errorf("expected 2 entries got %d", len(top))
	}
}

func TestRecordMatchConcurrent(t *testing.T) {
	back := createTestBack(t, createTestOptions(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := back.RecordMatch("alice", "bob", 1, 1, ""); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	stats, err := back.GetPlayerStats("alice")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Games != 20 || stats.Draws != 20 {
		t.Errorf("expected 20 draws got %+v", stats.Stats)
	}
}

func TestNewWithSQLMirror(t *testing.T) {
	opts := createTestOptions(t)
	first := createTestBack(t, opts)
	if _, err := first.RecordMatch("alice", "bob", 1, 0, ""); err != nil {
		t.Fatal(err)
	}

	// The mirror catches up with the existing CSV history on start.
	opts.SQLitePath = filepath.Join(filepath.Dir(opts.HistoryCSV), "eloladder.db")
	opts.MigrationsURL = testMigrationsURL
	back := createTestBack(t, opts)

	if _, err := back.RecordMatch("bob", "alice", 1, 0, "999"); err != nil {
		t.Fatal(err)
	}

	records, err := back.mirror.ReplayAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 mirrored records got %d", len(records))
	}
	if records[1].Reporter.String != "999" {
		t.Errorf("expected reporter 999 got %v", records[1].Reporter)
	}
}
