package web

import (
	"eloladder/internal/back"
	"eloladder/internal/bot"
	"eloladder/internal/elo"
	"eloladder/internal/util"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/russross/blackfriday/v2"
	"gopkg.in/guregu/null.v4"
)

type playerResponse struct {
	Rank    int     `json:"rank,omitempty"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Draws   int     `json:"draws"`
	WinRate float64 `json:"winRate"`
}

func newPlayerResponse(rank int, v back.PlayerStats) playerResponse {
	return playerResponse{
		Rank:    rank,
		Name:    v.Name,
		Rating:  elo.Round2(v.Rating),
		Games:   v.Games,
		Wins:    v.Wins,
		Losses:  v.Losses,
		Draws:   v.Draws,
		WinRate: elo.Round2(v.WinRate()),
	}
}

type leaderboardResponse struct {
	// Limit is null when every player is listed.
	Limit   null.Int         `json:"limit"`
	Players []playerResponse `json:"players"`
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	var limit int
	if str := r.URL.Query().Get("limit"); str != "" {
		v, err := strconv.Atoi(str)
		if err != nil || v < 0 {
			s.error(w, util.ErrPublic("limit must be a positive integer"), http.StatusBadRequest)
			return
		}
		limit = v
	}

	entries, err := s.back.GetLeaderboard(limit)
	if err != nil {
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	res := leaderboardResponse{
		Limit:   null.NewInt(int64(limit), limit > 0),
		Players: make([]playerResponse, 0, len(entries)),
	}
	for _, v := range entries {
		res.Players = append(res.Players, newPlayerResponse(v.Rank, v.PlayerStats))
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, res)
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	stats, err := s.back.GetPlayerStats(chi.URLParam(r, "name"))
	if err != nil {
		if back.IsNotFound(err) {
			s.error(w, util.ErrPublic("no data"), http.StatusNotFound)
			return
		}
		s.error(w, err, http.StatusInternalServerError)
		return
	}

	s.cache(w, "public", 1*time.Minute)
	s.response(w, http.StatusOK, newPlayerResponse(0, stats))
}

type previewResponse struct {
	Rating1Before float64 `json:"rating1Before"`
	Rating1After  float64 `json:"rating1After"`
	Rating2Before float64 `json:"rating2Before"`
	Rating2After  float64 `json:"rating2After"`
	Expected1     float64 `json:"expected1"`
	Expected2     float64 `json:"expected2"`
	KFactor       float64 `json:"kFactor"`
	Epic          bool    `json:"epic"`
}

func (s *Server) getPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	values := make([]float64, 0, 4)
	for _, k := range []string{"r1", "r2", "s1", "s2"} {
		v, err := util.ParseScore(q.Get(k))
		if err != nil {
			s.error(w, util.ErrPublic(k+": "+err.Error()), http.StatusBadRequest)
			return
		}
		values = append(values, v)
	}

	u := s.back.PreviewMatch(values[0], values[1], values[2], values[3])
	s.response(w, http.StatusOK, previewResponse{
		Rating1Before: u.Rating1Before,
		Rating1After:  u.Rating1After,
		Rating2Before: u.Rating2Before,
		Rating2After:  u.Rating2After,
		Expected1:     u.Expected1,
		Expected2:     u.Expected2,
		KFactor:       u.KFactor,
		Epic:          u.Epic,
	})
}

// indexHandler renders the bot help as the landing page.
func indexHandler(commandPrefix string) http.HandlerFunc {
	doc := "# Elo ladder\n\n" +
		"Ratings are updated by the Discord bot, this server is read-only.\n\n" +
		strings.ReplaceAll(bot.Help(commandPrefix), "'''", "```") + "\n" +
		"## API\n\n" +
		"- `GET /v1/leaderboard?limit=N`\n" +
		"- `GET /v1/player/{name}`\n" +
		"- `GET /v1/preview?r1=&r2=&s1=&s2=`\n"
	page := append(
		[]byte("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Elo ladder</title></head><body>\n"),
		blackfriday.Run([]byte(doc))...,
	)
	page = append(page, []byte("</body></html>\n")...)

	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(page); err != nil {
			log.Printf("error: unable to send response: %s", err)
		}
	}
}
