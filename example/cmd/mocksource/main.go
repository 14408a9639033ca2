// Standalone mock AI source for trying the CLI without a model backend.
//
// Usage:
//
//	go run ./example/cmd/mocksource
//
// Then in another terminal:
//
//	go run ./cmd/typecast watch -c example/config.yaml
//	curl -X POST localhost:5001/query -d '{"input": "hello"}'
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

func main() {
	fmt.Println("Mock AI source starting on :5001")
	fmt.Println("  GET  /latest_response")
	fmt.Println(`  POST /query {"input": "..."}`)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	srv := &http.Server{
		Addr:              ":5001",
		Handler:           newSource(logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
