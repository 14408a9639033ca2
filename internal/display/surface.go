package display

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"
)

// Surface is anything that can show the animated text.
//
// Implementations are called from the controller's tick handler while it
// holds its lock, so they must not block and must not call back into the
// controller.
type Surface interface {
	SetText(text string)
	SetOpacity(opacity float64)
}

// Fanout returns a [Surface] that forwards every call to each of surfaces in
// order. Nil entries are skipped.
func Fanout(surfaces ...Surface) Surface {
	out := make(fanout, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type fanout []Surface

func (f fanout) SetText(text string) {
	for _, s := range f {
		s.SetText(text)
	}
}

func (f fanout) SetOpacity(opacity float64) {
	for _, s := range f {
		s.SetOpacity(opacity)
	}
}

// Guard wraps s so that a panic inside it is recovered and logged with a
// correlation ID instead of unwinding the caller.
func Guard(s Surface, logger *slog.Logger) Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return guarded{inner: s, logger: logger}
}

type guarded struct {
	inner  Surface
	logger *slog.Logger
}

func (g guarded) SetText(text string) {
	defer g.recoverPanic("set_text")
	g.inner.SetText(text)
}

func (g guarded) SetOpacity(opacity float64) {
	defer g.recoverPanic("set_opacity")
	g.inner.SetOpacity(opacity)
}

func (g guarded) recoverPanic(op string) {
	if r := recover(); r != nil {
		g.logger.Error("display surface panicked",
			"correlation_id", uuid.NewString(),
			"op", op,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}
