package typecast

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Surface is a destination for the animated text, in addition to the
// built-in overlay page.
//
// SetText replaces the whole visible text; SetOpacity sets a value in [0, 1].
// Both are called from the animation timer and must not block. A panic in
// either method is recovered and logged; other surfaces keep updating.
type Surface interface {
	SetText(text string)
	SetOpacity(opacity float64)
}

// Frame is what the display shows at one instant.
type Frame struct {
	// Text is the visible text (a prefix of the current value while revealing).
	Text string

	// Opacity is in [0, 1].
	Opacity float64
}

// PollResult holds the outcome of one poll of the source.
//
// PollResult is a copy; modifying it does not affect the [Overlay].
type PollResult struct {
	// URL is the polled URL.
	URL string

	// Text is the extracted value. Only meaningful when Present is true.
	Text string

	// Present reports whether the response carried a value.
	Present bool

	// Outcome is what the display did with Text: "accepted", "unchanged",
	// "busy" or "closed". Empty when the poll failed or had no value.
	Outcome string

	// Latency is the time taken to complete the HTTP request.
	Latency time.Duration

	// CheckedAt is the timestamp when the poll was performed.
	CheckedAt time.Time

	// Error contains any transport, status or parse error.
	Error error

	// RawResponse contains the HTTP response body, limited to 1MB.
	RawResponse []byte

	// StatusCode is the HTTP status code returned by the source.
	// Zero if the request failed before receiving a response.
	StatusCode int
}

// callbackSurface turns surface calls into [Frame] callbacks.
type callbackSurface struct {
	callbacks []func(Frame)
	logger    *slog.Logger

	mu    sync.Mutex
	frame Frame
}

func newCallbackSurface(callbacks []func(Frame), logger *slog.Logger) *callbackSurface {
	return &callbackSurface{
		callbacks: callbacks,
		logger:    logger,
		frame:     Frame{Opacity: 1},
	}
}

func (c *callbackSurface) SetText(text string) {
	c.mu.Lock()
	c.frame.Text = text
	f := c.frame
	c.mu.Unlock()
	c.emit(f)
}

func (c *callbackSurface) SetOpacity(opacity float64) {
	c.mu.Lock()
	c.frame.Opacity = opacity
	f := c.frame
	c.mu.Unlock()
	c.emit(f)
}

func (c *callbackSurface) emit(f Frame) {
	for _, cb := range c.callbacks {
		invokeCallbackSafe(cb, f, c.logger, "frame callback panicked")
	}
}

// invokeCallbackSafe calls a callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe[T any](cb func(T), v T, logger *slog.Logger, msg string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(msg,
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(v)
}
