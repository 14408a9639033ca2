package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/typecast"
)

func main() {
	// start mock source (see mock_server.go)
	go StartMockSource(":5001")
	time.Sleep(100 * time.Millisecond)

	src, err := typecast.NewSource("http://localhost:5001/latest_response",
		typecast.WithTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create source", "error", err)
		os.Exit(1)
	}

	o, err := typecast.New(
		typecast.WithSource(src),
		typecast.WithPollOnStart(true),
		typecast.WithTitle("ChatBot-X"),
		typecast.WithPort(8080),
		typecast.WithPollCallback(func(r typecast.PollResult) {
			if r.Outcome == "accepted" {
				slog.Info("new response", "text", r.Text)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create overlay", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   typecast Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080/overlay in your browser  ║")
	fmt.Println("  ║   or add it as an OBS / Streamlabs browser source     ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   The mock source changes its reply every 15-30s      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := o.Start(ctx); err != nil {
		slog.Error("typecast error", "error", err)
		os.Exit(1)
	}
}
