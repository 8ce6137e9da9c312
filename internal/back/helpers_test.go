package back // nolint:testpackage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func createTestDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "eloladder")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}

func createTestOptions(t *testing.T) Options {
	dir := createTestDir(t)
	return Options{
		KFactor:     60,
		RatingsJSON: filepath.Join(dir, "elo_ratings.json"),
		RatingsCSV:  filepath.Join(dir, "elo_ratings.csv"),
		HistoryCSV:  filepath.Join(dir, "match_history.csv"),
	}
}

func createTestBack(t *testing.T, opts Options) *Back {
	back, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		back.Close()
	})

	return back
}

func writeTestFile(t *testing.T, path, content string) {
	if err := ioutil.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
