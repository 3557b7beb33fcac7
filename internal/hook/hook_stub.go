//go:build !windows

package hook

import (
	"log/slog"
	"sync"

	"github.com/Alia5/GLIDER/internal/gesture"
)

// Backend is the no-op interceptor for platforms without a hook
// implementation. It honors the install/uninstall contract but never
// produces events; the engine stays controllable through the API while
// gesture capture is inert.
type Backend struct {
	mu        sync.Mutex
	logger    *slog.Logger
	installed bool
}

// NewBackend creates the no-op hook backend.
func NewBackend(logger *slog.Logger) gesture.HookBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

func (b *Backend) Install(events chan<- gesture.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.installed {
		return nil
	}
	dispatch.setEvents(events)
	dispatch.enabled.Store(true)
	b.installed = true
	b.logger.Warn("no hook implementation on this platform, gesture capture is inert")
	return nil
}

func (b *Backend) Uninstall() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.installed {
		return nil
	}
	dispatch.enabled.Store(false)
	dispatch.wheelCapture.Store(false)
	var none chan<- gesture.Event
	dispatch.setEvents(none)
	b.installed = false
	return nil
}

func (b *Backend) Installed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installed
}

func (b *Backend) SetWheelCapture(on bool) {
	dispatch.wheelCapture.Store(on)
}

type nopClicker struct{}

// NewClicker returns a click injector that does nothing.
func NewClicker() gesture.RightClicker { return nopClicker{} }

func (nopClicker) Click(gesture.Point) error { return nil }

type nopCursor struct{}

// NewCursor returns a cursor provider that reports no position.
func NewCursor() gesture.CursorProvider { return nopCursor{} }

func (nopCursor) CursorPos() (gesture.Point, bool) { return gesture.Point{}, false }
