package display

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/typecast/internal/clock"
)

// Default animation timing.
const (
	DefaultRevealInterval = 100 * time.Millisecond
	DefaultFadeDuration   = 10 * time.Second
	DefaultFadeTick       = 16 * time.Millisecond // ~60 frames per second
)

// Phase is the controller's animation state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRevealing
	PhaseFading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRevealing:
		return "revealing"
	case PhaseFading:
		return "fading"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Outcome reports what [Controller.Offer] did with a value.
type Outcome int

const (
	// Accepted means the value differed from the last accepted text and a
	// reveal has started.
	Accepted Outcome = iota
	// Unchanged means the value equals the last accepted text.
	Unchanged
	// Busy means an animation was in progress and the value was dropped.
	Busy
	// Closed means the controller has been stopped.
	Closed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Unchanged:
		return "unchanged"
	case Busy:
		return "busy"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Timing holds the animation cadence.
type Timing struct {
	// RevealInterval is the delay between revealed characters.
	RevealInterval time.Duration
	// FadeDuration is how long the fade from opacity 1 to 0 takes.
	FadeDuration time.Duration
	// FadeTick is the delay between opacity updates during the fade.
	FadeTick time.Duration
}

// DefaultTiming returns 100ms per character and a 10s fade updated every 16ms.
func DefaultTiming() Timing {
	return Timing{
		RevealInterval: DefaultRevealInterval,
		FadeDuration:   DefaultFadeDuration,
		FadeTick:       DefaultFadeTick,
	}
}

// Validate reports whether all intervals are positive and the fade tick
// fits inside the fade.
func (t Timing) Validate() error {
	if t.RevealInterval <= 0 {
		return errors.New("reveal interval must be positive")
	}
	if t.FadeDuration <= 0 {
		return errors.New("fade duration must be positive")
	}
	if t.FadeTick <= 0 {
		return errors.New("fade tick must be positive")
	}
	if t.FadeTick > t.FadeDuration {
		return fmt.Errorf("fade tick %s exceeds fade duration %s", t.FadeTick, t.FadeDuration)
	}
	return nil
}

// Observer is notified of phase transitions. It is called with the
// controller's lock held.
type Observer interface {
	PhaseChanged(from, to Phase)
}

// Config configures a [Controller].
type Config struct {
	// Surface receives text and opacity updates. Required.
	Surface Surface
	// Clock drives the reveal and fade timers. Defaults to [clock.Real].
	Clock clock.Clock
	// Timing defaults to [DefaultTiming] when zero.
	Timing Timing
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Observer is optional.
	Observer Observer
}

// State is a point-in-time view of the controller.
type State struct {
	Phase    Phase
	LastSeen string
	// Revealed is the number of characters currently shown.
	Revealed int
	// Length is the number of characters in the text being animated.
	Length  int
	Opacity float64
}

// Controller runs one reveal-then-fade animation at a time.
//
// All state transitions happen under a single mutex, either in
// [Controller.Offer] or in the timer callback, so the controller behaves as
// one cooperative task regardless of which goroutine the clock fires on.
type Controller struct {
	surface  Surface
	clock    clock.Clock
	timing   Timing
	logger   *slog.Logger
	observer Observer

	mu        sync.Mutex
	lastSeen  string
	phase     Phase
	runes     []rune
	revealed  int
	opacity   float64
	fadeStart time.Time
	timer     clock.Timer
	stopped   bool
}

// New creates an idle [Controller].
//
// Returns an error if no surface is configured or the timing is invalid.
func New(cfg Config) (*Controller, error) {
	if cfg.Surface == nil {
		return nil, errors.New("display surface is required")
	}
	if cfg.Timing == (Timing{}) {
		cfg.Timing = DefaultTiming()
	}
	if err := cfg.Timing.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Controller{
		surface:  Guard(cfg.Surface, cfg.Logger),
		clock:    cfg.Clock,
		timing:   cfg.Timing,
		logger:   cfg.Logger,
		observer: cfg.Observer,
		opacity:  1,
	}, nil
}

// Offer hands a freshly polled value to the controller.
//
// A value equal to the last accepted text is ignored. A new value is
// dropped if an animation is in progress; otherwise it becomes the last
// accepted text and its reveal starts immediately.
//
// The empty string is a value like any other: offered after non-empty text
// it clears the surface and runs a full fade with nothing shown. Callers
// that want to ignore empty responses should not offer them.
func (c *Controller) Offer(text string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return Closed
	}
	if text == c.lastSeen {
		return Unchanged
	}
	if c.phase != PhaseIdle {
		return Busy
	}

	c.lastSeen = text
	c.startRevealLocked(text)
	return Accepted
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Phase:    c.phase,
		LastSeen: c.lastSeen,
		Revealed: c.revealed,
		Length:   len(c.runes),
		Opacity:  c.opacity,
	}
}

// Animating reports whether a reveal or fade is in progress.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != PhaseIdle
}

// Stop cancels the pending tick. Later offers return [Closed].
// Safe to call multiple times.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) startRevealLocked(text string) {
	c.runes = []rune(text)
	c.revealed = 0
	c.opacity = 1
	c.surface.SetText("")
	c.surface.SetOpacity(1)
	c.setPhaseLocked(PhaseRevealing)

	c.logger.Debug("reveal started", "text_len", len(c.runes))

	if len(c.runes) == 0 {
		c.beginFadeLocked()
		return
	}
	c.scheduleLocked(c.timing.RevealInterval)
}

// tick is the only timer callback. It dispatches on the current phase.
func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer = nil
	if c.stopped {
		return
	}

	switch c.phase {
	case PhaseRevealing:
		c.revealStepLocked()
	case PhaseFading:
		c.fadeStepLocked()
	}
}

func (c *Controller) revealStepLocked() {
	c.revealed++
	c.surface.SetText(string(c.runes[:c.revealed]))

	if c.revealed >= len(c.runes) {
		c.beginFadeLocked()
		return
	}
	c.scheduleLocked(c.timing.RevealInterval)
}

func (c *Controller) beginFadeLocked() {
	c.fadeStart = c.clock.Now()
	c.setPhaseLocked(PhaseFading)
	c.scheduleLocked(c.timing.FadeTick)
}

func (c *Controller) fadeStepLocked() {
	elapsed := c.clock.Now().Sub(c.fadeStart)
	c.opacity = fadeOpacity(elapsed, c.timing.FadeDuration)
	c.surface.SetOpacity(c.opacity)

	if elapsed >= c.timing.FadeDuration {
		c.setPhaseLocked(PhaseIdle)
		c.logger.Debug("fade finished", "text_len", len(c.runes))
		return
	}
	c.scheduleLocked(c.timing.FadeTick)
}

func (c *Controller) scheduleLocked(d time.Duration) {
	c.timer = c.clock.AfterFunc(d, c.tick)
}

func (c *Controller) setPhaseLocked(p Phase) {
	from := c.phase
	c.phase = p
	if c.observer != nil && from != p {
		c.observer.PhaseChanged(from, p)
	}
}

// fadeOpacity is the linear fade 1 - elapsed/duration, clamped to [0, 1].
func fadeOpacity(elapsed, duration time.Duration) float64 {
	o := 1 - float64(elapsed)/float64(duration)
	switch {
	case o < 0:
		return 0
	case o > 1:
		return 1
	default:
		return o
	}
}
