package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// demoResponses are served in turn by the mock source.
var demoResponses = []string{
	"Hello chat! ChatBot-X is online and fully caffeinated.",
	"That boss fight was 90% skill and 10% panic.",
	"Remember to hydrate. Your keyboard cannot do it for you.",
	"GG! Nobody saw that missed jump. Nobody at all.",
}

// StartMockSource runs a mock AI source that serves the latest response at
// GET /latest_response and moves to the next canned reply every 15-30
// seconds. Call this in a goroutine before starting the overlay.
func StartMockSource(addr string) {
	var (
		mu           sync.Mutex
		idx          int
		nextChangeAt = time.Now().Add(nextDelay())
	)

	r := chi.NewRouter()
	r.Get("/latest_response", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		// change response when scheduled time is reached
		if time.Now().After(nextChangeAt) {
			idx = (idx + 1) % len(demoResponses)
			nextChangeAt = time.Now().Add(nextDelay())
			slog.Info("response changed", "index", idx)
		}
		text := demoResponses[idx]
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"response": text}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("mock source error", "error", err)
	}
}

func nextDelay() time.Duration {
	return time.Duration(15+rand.Intn(16)) * time.Second
}
