package web

import (
	"eloladder/internal/back"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", s.index)

	// Read-only, there is no way to record a match over HTTP.
	r.Get("/v1/leaderboard", s.getLeaderboard)
	r.Get("/v1/player/{name}", s.getPlayer)
	r.Get("/v1/preview", s.getPreview)

	return r
}

type Server struct {
	http *http.Server
	back *back.Back

	index http.HandlerFunc
}

func NewServer(back *back.Back, addr string, commandPrefix string) *Server {
	s := &Server{
		back:  back,
		index: indexHandler(commandPrefix),
	}

	s.http = &http.Server{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

// Serve runs the server until done is closed, the caller must have added it
// to wg.
func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Printf("info: starting HTTP server on %s", s.http.Addr)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) error(w http.ResponseWriter, err error, code int) {
	if code >= http.StatusInternalServerError {
		log.Printf("error: %s", err)
		s.response(w, code, errorResponse{http.StatusText(code)})
		return
	}

	s.response(w, code, errorResponse{err.Error()})
}

func (s *Server) cache(w http.ResponseWriter, scope string, d time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("%s,max-age=%d", scope, d/time.Second))
}
