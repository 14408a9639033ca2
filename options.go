package typecast

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/typecast/internal/clock"
)

// overlayConfig holds mutable state during Overlay construction.
type overlayConfig struct {
	title           string
	source          *Source
	pollingInterval time.Duration
	pollOnStart     bool
	revealInterval  time.Duration
	fadeDuration    time.Duration
	fadeTick        time.Duration
	port            int
	serverDisabled  bool
	placeholder     string
	logger          *slog.Logger
	registry        *prometheus.Registry
	surfaces        []Surface
	frameCallbacks  []func(Frame)
	pollCallbacks   []func(PollResult)
	clock           clock.Clock
}

// Option is a function that configures an [Overlay] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*overlayConfig) error

// WithSource sets the [Source] to poll. Required.
//
// Example:
//
//	src, _ := typecast.NewSource("http://localhost:5001/latest_response")
//	o, err := typecast.New(typecast.WithSource(src))
func WithSource(s Source) Option {
	return func(cfg *overlayConfig) error {
		cfg.source = &s
		return nil
	}
}

// WithPollingInterval sets how often the source is polled.
//
// Defaults to 2 seconds if not specified.
//
// Returns an error if the duration is zero or negative.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *overlayConfig) error {
		if d <= 0 {
			return errors.New("polling interval must be positive")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithPollOnStart polls the source immediately on [Overlay.Start] instead of
// waiting one polling interval.
func WithPollOnStart(enabled bool) Option {
	return func(cfg *overlayConfig) error {
		cfg.pollOnStart = enabled
		return nil
	}
}

// WithRevealInterval sets the delay between revealed characters.
//
// Defaults to 100 milliseconds.
//
// Returns an error if the duration is zero or negative.
func WithRevealInterval(d time.Duration) Option {
	return func(cfg *overlayConfig) error {
		if d <= 0 {
			return errors.New("reveal interval must be positive")
		}
		cfg.revealInterval = d
		return nil
	}
}

// WithFadeDuration sets how long the fade-out takes once the text is fully
// revealed. New values are ignored until the fade finishes.
//
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithFadeDuration(d time.Duration) Option {
	return func(cfg *overlayConfig) error {
		if d <= 0 {
			return errors.New("fade duration must be positive")
		}
		cfg.fadeDuration = d
		return nil
	}
}

// WithFadeTick sets the interval between opacity updates during the fade.
//
// Defaults to 16 milliseconds. [New] rejects a tick longer than the fade
// duration.
//
// Returns an error if the duration is zero or negative.
func WithFadeTick(d time.Duration) Option {
	return func(cfg *overlayConfig) error {
		if d <= 0 {
			return errors.New("fade tick must be positive")
		}
		cfg.fadeTick = d
		return nil
	}
}

// WithPort sets the HTTP port for the overlay server.
//
// The overlay page will be available at http://localhost:<port>/overlay.
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *overlayConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithoutServer disables the overlay HTTP server. Use it when the text is
// shown only through [WithSurface] or [WithFrameCallback].
func WithoutServer() Option {
	return func(cfg *overlayConfig) error {
		cfg.serverDisabled = true
		return nil
	}
}

// WithTitle sets the overlay page title.
//
// If not specified, defaults to "AI Overlay".
func WithTitle(title string) Option {
	return func(cfg *overlayConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPlaceholder sets the text shown at full opacity before the first
// value arrives. An empty placeholder shows nothing.
//
// Defaults to "Waiting for AI response...".
func WithPlaceholder(text string) Option {
	return func(cfg *overlayConfig) error {
		cfg.placeholder = text
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Overlay instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *overlayConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithMetricsRegistry registers the typecast metrics with reg instead of a
// private registry. The server's /metrics route serves reg.
//
// Returns an error if the registry is nil.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(cfg *overlayConfig) error {
		if reg == nil {
			return errors.New("metrics registry cannot be nil")
		}
		cfg.registry = reg
		return nil
	}
}

// WithSurface adds a [Surface] that receives every text and opacity change
// alongside the overlay page.
//
// Nil surfaces are silently ignored.
func WithSurface(s Surface) Option {
	return func(cfg *overlayConfig) error {
		if s == nil {
			return nil
		}
		cfg.surfaces = append(cfg.surfaces, s)
		return nil
	}
}

// WithFrameCallback registers a function called with the new [Frame] on
// every text or opacity change.
//
// Callbacks run on the animation timer and must be non-blocking. They
// execute in registration order. Panics within callbacks are recovered and
// logged.
//
// Nil callbacks are silently ignored.
func WithFrameCallback(cb func(Frame)) Option {
	return func(cfg *overlayConfig) error {
		if cb == nil {
			return nil
		}
		cfg.frameCallbacks = append(cfg.frameCallbacks, cb)
		return nil
	}
}

// WithPollCallback registers a function to be called on every poll completion.
//
// The callback receives a [PollResult] with the extracted text, what the
// display did with it, and the raw HTTP response.
//
// Callbacks are invoked synchronously from a single goroutine and must be
// non-blocking; a slow callback delays the next poll. Panics within callbacks
// are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithPollCallback(cb func(PollResult)) Option {
	return func(cfg *overlayConfig) error {
		if cb == nil {
			return nil
		}
		cfg.pollCallbacks = append(cfg.pollCallbacks, cb)
		return nil
	}
}

// withClock replaces the animation clock.
func withClock(c clock.Clock) Option {
	return func(cfg *overlayConfig) error {
		cfg.clock = c
		return nil
	}
}
