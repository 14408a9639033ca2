// Package terminal renders the animated text in a terminal.
//
// [Surface] implements the display surface on top of a bubbletea program.
// The controller's SetText and SetOpacity calls never block: they update a
// snapshot and nudge a pump goroutine, which forwards the latest snapshot to
// the program. Intermediate snapshots may be skipped; the last one never is.
//
// Opacity has no direct terminal equivalent, so the text and border colors
// are blended toward the theme background as the opacity falls.
package terminal

import (
	"context"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Theme holds the overlay colors as "#rrggbb" strings.
type Theme struct {
	Foreground string
	Background string
	Border     string
}

// DefaultTheme matches the browser overlay: white text, green border, on black.
func DefaultTheme() Theme {
	return Theme{
		Foreground: "#ffffff",
		Background: "#000000",
		Border:     "#00ff00",
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Option configures a [Surface].
type Option func(*options)

type options struct {
	theme    Theme
	profile  termenv.Profile
	detect   bool
	maxWidth int
	input    io.Reader
}

// WithTheme overrides [DefaultTheme].
func WithTheme(theme Theme) Option {
	return func(o *options) { o.theme = theme }
}

// WithProfile forces a color profile instead of detecting one from the
// output and environment.
func WithProfile(profile termenv.Profile) Option {
	return func(o *options) {
		o.profile = profile
		o.detect = false
	}
}

// WithInput sets the keyboard input. Nil disables input handling.
func WithInput(r io.Reader) Option {
	return func(o *options) { o.input = r }
}

// Surface is a display surface backed by a bubbletea program.
type Surface struct {
	out  io.Writer
	opts options

	mu      sync.Mutex
	current frameMsg

	wake chan struct{}
}

// New creates a [Surface] writing to out. Call [Surface.Run] to start it.
func New(out io.Writer, opts ...Option) *Surface {
	o := options{
		theme:    DefaultTheme(),
		detect:   true,
		maxWidth: defaultMaxWidth,
		input:    os.Stdin,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Surface{
		out:     out,
		opts:    o,
		current: frameMsg{opacity: 1},
		wake:    make(chan struct{}, 1),
	}
}

// SetText implements the display surface.
func (s *Surface) SetText(text string) {
	s.mu.Lock()
	s.current.text = text
	s.mu.Unlock()
	s.nudge()
}

// SetOpacity implements the display surface.
func (s *Surface) SetOpacity(opacity float64) {
	s.mu.Lock()
	s.current.opacity = opacity
	s.mu.Unlock()
	s.nudge()
}

func (s *Surface) snapshot() frameMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Surface) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
		// a wake-up is already pending and will pick up this change
	}
}

// Run starts the terminal program and blocks until ctx is cancelled or the
// user quits with q or ctrl+c.
//
// Returns nil on either kind of shutdown.
func (s *Surface) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	profile := s.opts.profile
	if s.opts.detect {
		profile = termenv.NewOutput(s.out).EnvColorProfile()
	}
	renderer := lipgloss.NewRenderer(s.out, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	m := newModel(renderer, s.opts.theme, s.opts.maxWidth)
	m = m.withFrame(s.snapshot())

	// signals stay with the caller's context; a nil input disables the keyboard
	program := tea.NewProgram(m,
		tea.WithOutput(s.out),
		tea.WithInput(s.opts.input),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				program.Send(s.snapshot())
			}
		}
	}()

	_, err := program.Run()
	cancel()
	wg.Wait()

	if ctx.Err() != nil {
		// cancelled from outside or after a user quit; both are clean exits
		return nil
	}
	return err
}
