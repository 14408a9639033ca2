package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const initialResponse = "Waiting for AI response..."

// maxQueryBody bounds POST /query bodies.
const maxQueryBody = 64 << 10

// replyTemplates are filled with the user's input in turn.
var replyTemplates = []string{
	"ChatBot-X here! You said %q and I have never been prouder.",
	"Bold words: %q. Chat, take notes.",
	"Processing %q... result: certified banger.",
}

// source holds the latest reply, like the overlay's original backend.
type source struct {
	logger *slog.Logger

	mu     sync.Mutex
	latest string
	next   int
}

func newSource(logger *slog.Logger) *source {
	return &source{logger: logger, latest: initialResponse}
}

func (s *source) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/latest_response", s.handleLatest)
	r.Post("/query", s.handleQuery)
	return r
}

func (s *source) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	text := s.latest
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"response": text})
}

func (s *source) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No input provided"})
		return
	}

	s.mu.Lock()
	reply := fmt.Sprintf(replyTemplates[s.next], req.Input)
	s.next = (s.next + 1) % len(replyTemplates)
	s.latest = reply
	s.mu.Unlock()

	s.logger.Info("query answered", "input_len", len(req.Input))
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
