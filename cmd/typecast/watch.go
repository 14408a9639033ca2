package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/typecast"
	"github.com/jpalmerr/typecast/config"
	"github.com/jpalmerr/typecast/internal/terminal"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// parseLogLevel accepts debug, info, warn or error in any case.
func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", s)
	}
	return level, nil
}

// watchFlags holds the command-line overrides for watch.
type watchFlags struct {
	configFile string
	url        string
	port       int
	terminal   bool
}

// loadWatchConfig builds the effective configuration from a file and the
// command-line overrides. Without a file, --url is required and every other
// setting uses its default.
func loadWatchConfig(f watchFlags) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case f.configFile != "":
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case f.url != "":
		cfg = config.Default()
	default:
		return nil, errors.New("either --config or --url is required")
	}

	if f.url != "" {
		cfg.Source.URL = f.url
	}
	if f.port != 0 {
		cfg.Port = f.port
	}
	if f.terminal {
		cfg.Terminal.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// watchCmd starts polling the source and animating its responses.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the source and show the overlay",
	Long: `Poll the source and animate each new response.

The command will:
  - Load .env files and the YAML configuration (or use --url with defaults)
  - Poll the source at the configured interval
  - Serve the browser overlay on the configured port
  - Optionally render the text in this terminal (--terminal)

It runs until interrupted (Ctrl+C), receives SIGTERM, or the terminal
renderer is closed with q.

Example:
  typecast watch -c typecast.yaml
  typecast watch --url http://localhost:5001/latest_response --terminal`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file")
	watchCmd.Flags().String("url", "", "source URL (overrides the config file)")
	watchCmd.Flags().IntP("port", "p", 0, "overlay server port (overrides the config file)")
	watchCmd.Flags().Bool("terminal", false, "render the text in this terminal")
	watchCmd.Flags().String("log-file", "", "write logs to this file instead of stderr")
	watchCmd.Flags().String("log-level", "info", "log level: debug, info, warn or error")
	watchCmd.Flags().StringSlice("env-file", []string{".env"}, "dotenv files to load before reading the config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return err
	}

	var f watchFlags
	f.configFile, _ = cmd.Flags().GetString("config")
	f.url, _ = cmd.Flags().GetString("url")
	f.port, _ = cmd.Flags().GetInt("port")
	f.terminal, _ = cmd.Flags().GetBool("terminal")

	cfg, err := loadWatchConfig(f)
	if err != nil {
		return err
	}

	levelFlag, _ := cmd.Flags().GetString("log-level")
	level, err := parseLogLevel(levelFlag)
	if err != nil {
		return err
	}

	// the terminal renderer owns stdout; keep logs off the screen
	var logOut io.Writer = os.Stderr
	logFile, _ := cmd.Flags().GetString("log-file")
	switch {
	case logFile != "":
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = file.Close() }()
		logOut = file
	case cfg.Terminal.Enabled:
		logOut = io.Discard
	}
	logger := newLogger(logOut, level)

	logger.Info("config loaded",
		"url", cfg.Source.URL,
		"format", cfg.Source.Format,
	)
	logger.Info("starting overlay",
		"port", cfg.Port,
		"poll_interval", cfg.PollInterval.Duration().String(),
		"overlay", cfg.OverlayEnabled(),
		"terminal", cfg.Terminal.Enabled,
	)

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, typecast.WithLogger(logger))

	var surface *terminal.Surface
	if cfg.Terminal.Enabled {
		if !terminal.IsTerminal(os.Stdout) {
			if !cfg.OverlayEnabled() {
				return errors.New("terminal renderer requested but stdout is not a terminal")
			}
			logger.Warn("stdout is not a terminal, terminal renderer disabled")
		} else {
			surface = terminal.New(os.Stdout, terminal.WithInput(os.Stdin))
			opts = append(opts, typecast.WithSurface(surface))
		}
	}

	o, err := typecast.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// quitting the terminal renderer stops everything
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if surface != nil {
		go func() {
			if err := surface.Run(ctx); err != nil {
				logger.Error("terminal renderer failed", "error", err)
			}
			cancel()
		}()
	}

	// start overlay - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- o.Start(ctx)
	}()

	// wait for overlay to finish
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("overlay error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("overlay error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
