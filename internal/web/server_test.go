package web // nolint:testpackage

import (
	"eloladder/internal/back"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func createTestServer(t *testing.T) (*Server, *back.Back) {
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

	return NewServer(b, "127.0.0.1:0", ">."), b
}

func get(t *testing.T, s *Server, url string, dst interface{}) int {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if dst != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
			t.Fatalf("%s: %s (%q)", url, err, rec.Body.String())
		}
	}

	return rec.Code
}

func TestLeaderboard(t *testing.T) {
	s, b := createTestServer(t)
	for _, v := range [][2]string{{"alice", "bob"}, {"carol", "bob"}} {
		if _, err := b.RecordMatch(v[0], v[1], 3, 0, ""); err != nil {
			t.Fatal(err)
		}
	}

	var res struct {
		Limit   *int
		Players []playerResponse
	}
	if code := get(t, s, "/v1/leaderboard", &res); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if res.Limit != nil || len(res.Players) != 3 {
		t.Errorf("unexpected response %+v", res)
	}
	if res.Players[2].Name != "bob" || res.Players[2].Losses != 2 || res.Players[2].Rank != 3 {
		t.Errorf("unexpected last player %+v", res.Players[2])
	}

	if code := get(t, s, "/v1/leaderboard?limit=1", &res); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if res.Limit == nil || *res.Limit != 1 || len(res.Players) != 1 {
		t.Errorf("unexpected response %+v", res)
	}

	if code := get(t, s, "/v1/leaderboard?limit=nope", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", code)
	}
}

func TestPlayer(t *testing.T) {
	s, b := createTestServer(t)
	if _, err := b.RecordMatch("alice", "bob", 10, 0, ""); err != nil {
		t.Fatal(err)
	}

	var res playerResponse
	if code := get(t, s, "/v1/player/Alice", &res); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if res.Name != "alice" || res.Rating != 1039.9 || res.Wins != 1 || res.WinRate != 100 {
		t.Errorf("unexpected response %+v", res)
	}

	var errRes errorResponse
	if code := get(t, s, "/v1/player/ghost", &errRes); code != http.StatusNotFound {
		t.Errorf("expected 404 got %d", code)
	}
	if errRes.Error != "no data" {
		t.Errorf("unexpected error %q", errRes.Error)
	}
}

func TestPreview(t *testing.T) {
	s, b := createTestServer(t)

	var res previewResponse
	if code := get(t, s, "/v1/preview?r1=1000&r2=1000&s1=5&s2=5", &res); code != http.StatusOK {
		t.Fatalf("expected 200 got %d", code)
	}
	if res.Rating1After != 1000 || res.Rating2After != 1000 || res.Epic || res.KFactor != 60 {
		t.Errorf("unexpected response %+v", res)
	}

	for _, v := range []string{
		"/v1/preview?r1=1000&r2=x&s1=5&s2=5",
		"/v1/preview?r1=NaN&r2=1000&s1=5&s2=5",
		"/v1/preview?r1=1000&r2=Inf&s1=5&s2=5",
		"/v1/preview?r1=1000&r2=1000&s1=-Inf&s2=5",
		"/v1/preview?r1=1000&r2=1000&s1=5",
	} {
		var errRes errorResponse
		if code := get(t, s, v, &errRes); code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d", v, code)
		}
		if errRes.Error == "" {
			t.Errorf("%s: expected an error message", v)
		}
	}

	if b.PlayerCount() != 0 {
		t.Error("preview must not create players")
	}
}

func TestIndex(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Elo ladder</h1>") || !strings.Contains(body, "/v1/leaderboard") {
		t.Errorf("unexpected page %q", body)
	}
}

func TestServeStopsOnDone(t *testing.T) {
	s, _ := createTestServer(t)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go s.Serve(&wg, done)
	close(done)

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("server never stopped")
	}
}
