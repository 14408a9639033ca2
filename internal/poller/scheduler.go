package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result holds the outcome of one poll of the text source.
type Result struct {
	// URL is the polled URL.
	URL string

	// Text is the extracted value. Only meaningful when Present is true.
	Text string

	// Present reports whether the source returned a value at all.
	// An absent or null field is not an error.
	Present bool

	// StatusCode is the HTTP status code returned by the source.
	StatusCode int

	// Latency is the time taken to complete the HTTP request.
	Latency time.Duration

	// CheckedAt is the timestamp when the poll was performed.
	CheckedAt time.Time

	// Error contains any transport, status or parse error.
	Error error

	// RawResponse contains the HTTP response body for debugging.
	RawResponse []byte
}

// Extractor pulls the display text out of a response body.
//
// It returns present=false when the body carries no value, and an error when
// the body cannot be parsed.
type Extractor func(body []byte) (text string, present bool, err error)

// SourceInfo contains the configuration needed to poll the text source.
//
// This is the poller-internal representation, decoupled from the public
// typecast.Source type to avoid circular dependencies.
type SourceInfo struct {
	// URL is the target URL to poll.
	URL string

	// Method is the HTTP method (GET, POST). Empty defaults to GET.
	Method string

	// Headers contains custom HTTP headers to send with requests.
	Headers map[string]string

	// Timeout is the per-request timeout duration.
	Timeout time.Duration

	// Extractor interprets the body. If nil, the "response" field of a JSON
	// object is used.
	Extractor Extractor
}

// Scheduler polls a single source on a fixed interval.
//
// Results are emitted to a channel that can be consumed by the caller. The
// channel holds one result; a slow consumer delays the next poll rather than
// accumulating stale values.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	source      SourceInfo
	interval    time.Duration
	pollOnStart bool
	client      *Client
	results     chan Result
	logger      *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewScheduler creates a new polling [Scheduler].
//
// Parameters:
//   - source: the endpoint to poll
//   - interval: time between polls
//   - pollOnStart: poll once immediately instead of waiting one interval
//   - logger: logger for scheduler events (panic recovery, etc.)
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop]. Results are available via [Scheduler.Results].
func NewScheduler(source SourceInfo, interval time.Duration, pollOnStart bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:      source,
		interval:    interval,
		pollOnStart: pollOnStart,
		client:      NewClient(),
		results:     make(chan Result, 1),
		logger:      logger,
	}
}

// Results returns a receive-only channel that emits [Result] values.
//
// The channel is closed when the scheduler stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start begins the polling loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The scheduler polls every
// interval (and once immediately if configured) until [Scheduler.Stop] is
// called or the context is cancelled. A failed poll never ends the loop.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	pollCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		if s.pollOnStart {
			if !s.emit(pollCtx, s.poll(pollCtx)) {
				return
			}
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if !s.emit(pollCtx, s.poll(pollCtx)) {
					return
				}
			}
		}
	}()
}

// Stop halts the scheduler and waits for the polling goroutine to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// clean up client connections after all goroutines complete
	if s.client != nil {
		s.client.Close()
	}

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// emit delivers a result unless the context ends first.
func (s *Scheduler) emit(ctx context.Context, r Result) bool {
	// a poll cut short by shutdown is not reported
	if ctx.Err() != nil {
		return false
	}
	select {
	case s.results <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// poll fetches the source once and extracts the text.
func (s *Scheduler) poll(ctx context.Context) Result {
	resp := s.client.Fetch(ctx, s.source.Method, s.source.URL, s.source.Headers, s.source.Timeout)

	result := Result{
		URL:         s.source.URL,
		StatusCode:  resp.StatusCode,
		Latency:     resp.Latency,
		CheckedAt:   time.Now(),
		RawResponse: resp.Body,
		Error:       resp.Error,
	}
	if resp.Error != nil {
		return result
	}

	extractor := s.source.Extractor
	if extractor == nil {
		extractor = ResponseField
	}

	text, present, err := s.safeExtract(extractor, resp.Body)
	if err != nil {
		result.Error = fmt.Errorf("failed to parse response: %w", err)
		return result
	}
	result.Text = text
	result.Present = present
	return result
}

// safeExtract calls the extractor with panic recovery.
// If the extractor panics, it logs the full stack trace with a correlation ID
// and returns an error containing the ID.
func (s *Scheduler) safeExtract(extractor Extractor, body []byte) (text string, present bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			// log full context server-side for debugging
			s.logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			text, present = "", false
			err = fmt.Errorf("extractor panic (correlation_id: %s)", correlationID)
		}
	}()
	return extractor(body)
}

// ResponseField reads the "response" string field of a JSON object.
// A missing or null field is reported as absent.
func ResponseField(body []byte) (string, bool, error) {
	var payload struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false, err
	}
	if payload.Response == nil {
		return "", false, nil
	}
	return *payload.Response, true, nil
}
