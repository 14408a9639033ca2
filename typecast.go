package typecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jpalmerr/typecast/internal/clock"
	"github.com/jpalmerr/typecast/internal/display"
	"github.com/jpalmerr/typecast/internal/metrics"
	"github.com/jpalmerr/typecast/internal/poller"
	"github.com/jpalmerr/typecast/internal/server"
	"github.com/jpalmerr/typecast/internal/store"
	"github.com/jpalmerr/typecast/overlay"
)

const (
	defaultPollingInterval = 2 * time.Second
	defaultPort            = 8080
	defaultPlaceholder     = "Waiting for AI response..."
)

// Overlay polls a text source and plays each new value as a typewriter
// reveal followed by a fade-out.
//
// Overlay is created using [New] with functional options and started with
// [Overlay.Start].
//
// The typical lifecycle is:
//
//	src, _ := typecast.NewSource("http://localhost:5001/latest_response")
//	o, err := typecast.New(typecast.WithSource(src))
//	if err != nil {
//	    slog.Error("failed to create overlay", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	o.Start(ctx) // blocks until context cancelled
type Overlay struct {
	title           string
	source          Source
	pollingInterval time.Duration
	pollOnStart     bool
	timing          display.Timing
	port            int
	serverDisabled  bool
	placeholder     string
	logger          *slog.Logger
	registry        *prometheus.Registry
	metrics         *metrics.Metrics
	surfaces        []Surface
	frameCallbacks  []func(Frame)
	pollCallbacks   []func(PollResult)
	clock           clock.Clock
}

// New creates a new [Overlay] instance with the given options.
//
// A source must be configured via [WithSource]. Other options have sensible
// defaults:
//   - Polling interval: 2 seconds
//   - Reveal interval: 100 milliseconds per character
//   - Fade: 10 seconds in 16 millisecond steps
//   - Port: 8080
//
// The metrics are registered here, so two overlays sharing one
// [WithMetricsRegistry] registry make New panic.
//
// Returns an error if no source is configured or if any option is invalid.
func New(opts ...Option) (*Overlay, error) {
	cfg := &overlayConfig{
		pollingInterval: defaultPollingInterval,
		revealInterval:  display.DefaultRevealInterval,
		fadeDuration:    display.DefaultFadeDuration,
		fadeTick:        display.DefaultFadeTick,
		port:            defaultPort,
		placeholder:     defaultPlaceholder,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.source == nil {
		return nil, errors.New("a source is required")
	}

	timing := display.Timing{
		RevealInterval: cfg.revealInterval,
		FadeDuration:   cfg.fadeDuration,
		FadeTick:       cfg.fadeTick,
	}
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid animation timing: %w", err)
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	// default to slog.Default() if no logger provided
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := cfg.clock
	if c == nil {
		c = clock.Real()
	}

	return &Overlay{
		title:           cfg.title,
		source:          *cfg.source,
		pollingInterval: cfg.pollingInterval,
		pollOnStart:     cfg.pollOnStart,
		timing:          timing,
		port:            cfg.port,
		serverDisabled:  cfg.serverDisabled,
		placeholder:     cfg.placeholder,
		logger:          logger,
		registry:        registry,
		metrics:         metrics.New(registry, metrics.Config{}),
		surfaces:        cfg.surfaces,
		frameCallbacks:  cfg.frameCallbacks,
		pollCallbacks:   cfg.pollCallbacks,
		clock:           c,
	}, nil
}

// Start begins polling the source, animating new values and serving the
// overlay page.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The placeholder is shown at full opacity
//   - The source is polled at the configured interval
//   - Each new value is revealed one character at a time, then faded out
//   - Values arriving mid-animation are dropped
//   - The overlay is available at http://localhost:<port>/overlay
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails to start.
func (o *Overlay) Start(ctx context.Context) error {
	o.logger.Info("typecast starting", "url", o.source.URL())
	o.logger.Info("polling configured", "interval", o.pollingInterval.String())

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	frames := store.NewMemoryStore()
	surface := o.buildSurface(frames)

	ctrl, err := display.New(display.Config{
		Surface:  surface,
		Clock:    o.clock,
		Timing:   o.timing,
		Logger:   o.logger,
		Observer: phaseObservers{o.metrics, phaseLogger{o.logger}},
	})
	if err != nil {
		return fmt.Errorf("failed to create display controller: %w", err)
	}

	if o.placeholder != "" {
		surface.SetText(o.placeholder)
		surface.SetOpacity(1)
	}

	scheduler := poller.NewScheduler(o.toSourceInfo(), o.pollingInterval, o.pollOnStart, o.logger)
	scheduler.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range scheduler.Results() {
			o.handleResult(ctrl, result)
		}
	}()

	// cleanup stops polling first so no value is offered after the
	// controller is stopped
	cleanup := func() {
		scheduler.Stop() // closes results channel
		wg.Wait()
		ctrl.Stop()
	}

	if !o.serverDisabled {
		httpServer := server.NewServer(frames, o.port, overlay.Assets, o.title, o.registry, o.logger)
		if err := httpServer.Start(ctx); err != nil {
			cleanup()
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		o.logger.Info("overlay available", "url", fmt.Sprintf("http://localhost:%d/overlay", o.port))
	}

	<-ctx.Done()
	cleanup()
	o.logger.Info("typecast stopped")
	return nil
}

// buildSurface fans out to the frame store, user surfaces and frame
// callbacks. Each is guarded separately so one panicking surface does not
// starve the others.
func (o *Overlay) buildSurface(frames store.Store) display.Surface {
	surfaces := []display.Surface{display.Guard(frames, o.logger)}
	for _, s := range o.surfaces {
		surfaces = append(surfaces, display.Guard(s, o.logger))
	}
	if len(o.frameCallbacks) > 0 {
		surfaces = append(surfaces, newCallbackSurface(o.frameCallbacks, o.logger))
	}
	return display.Fanout(surfaces...)
}

// handleResult records one poll and offers its value to the controller.
func (o *Overlay) handleResult(ctrl *display.Controller, result poller.Result) {
	logAttrs := []any{
		"url", result.URL,
		"latency_ms", result.Latency.Milliseconds(),
	}

	var outcome string
	switch {
	case result.Error != nil:
		o.metrics.ObservePoll(metrics.PollError, result.Latency)
		o.logger.Warn("poll failed", append(logAttrs, "error", result.Error.Error())...)

	case !result.Present:
		o.metrics.ObservePoll(metrics.PollAbsent, result.Latency)
		o.logger.Debug("poll returned no value", logAttrs...)

	default:
		o.metrics.ObservePoll(metrics.PollOK, result.Latency)
		offered := ctrl.Offer(result.Text)
		o.metrics.ObserveOffer(offered)
		outcome = offered.String()
		o.logger.Debug("poll completed", append(logAttrs,
			"outcome", outcome,
			"text_len", utf8.RuneCountInString(result.Text),
		)...)
	}

	if len(o.pollCallbacks) > 0 {
		public := pollerResultToPublicResult(result, outcome)
		for _, cb := range o.pollCallbacks {
			invokeCallbackSafe(cb, public, o.logger, "poll callback panicked")
		}
	}
}

// toSourceInfo converts the Source to the poller format.
func (o *Overlay) toSourceInfo() poller.SourceInfo {
	extractor := o.source.extractor
	if extractor == nil {
		extractor = DefaultExtractor
	}
	return poller.SourceInfo{
		URL:       o.source.url,
		Method:    o.source.method,
		Headers:   copyMap(o.source.headers),
		Timeout:   o.source.timeout,
		Extractor: poller.Extractor(extractor),
	}
}

// Source returns the configured [Source].
func (o *Overlay) Source() Source {
	return o.source
}

// Port returns the configured HTTP port for the overlay server.
func (o *Overlay) Port() int {
	return o.port
}

// PollingInterval returns the configured interval between polls.
func (o *Overlay) PollingInterval() time.Duration {
	return o.pollingInterval
}

// RevealInterval returns the delay between revealed characters.
func (o *Overlay) RevealInterval() time.Duration {
	return o.timing.RevealInterval
}

// FadeDuration returns the length of the fade-out.
func (o *Overlay) FadeDuration() time.Duration {
	return o.timing.FadeDuration
}

// FadeTick returns the interval between opacity updates during the fade.
func (o *Overlay) FadeTick() time.Duration {
	return o.timing.FadeTick
}

// pollerResultToPublicResult converts an internal poller result to the
// public API type. Mutable fields are copied.
func pollerResultToPublicResult(pr poller.Result, outcome string) PollResult {
	return PollResult{
		URL:         pr.URL,
		Text:        pr.Text,
		Present:     pr.Present,
		Outcome:     outcome,
		Latency:     pr.Latency,
		CheckedAt:   pr.CheckedAt,
		Error:       pr.Error,
		RawResponse: copyBytes(pr.RawResponse),
		StatusCode:  pr.StatusCode,
	}
}

// phaseObservers notifies each observer in order.
type phaseObservers []display.Observer

func (p phaseObservers) PhaseChanged(from, to display.Phase) {
	for _, o := range p {
		o.PhaseChanged(from, to)
	}
}

type phaseLogger struct {
	logger *slog.Logger
}

func (p phaseLogger) PhaseChanged(from, to display.Phase) {
	p.logger.Debug("display phase changed", "from", from.String(), "phase", to.String())
}
