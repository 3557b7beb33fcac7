package gesture

// HookBackend installs and removes the platform-level input interceptor and
// funnels raw hardware events into the channel handed to Install.
//
// Install must return only once the interceptor is confirmed ready, so
// callers never race a not-yet-installed hook. Install on an installed
// backend and Uninstall on an uninstalled one are no-ops. SetWheelCapture
// flips the hook-side dispatch flag that decides whether wheel events are
// consumed; the flag must be readable from the OS callback without blocking.
type HookBackend interface {
	Install(events chan<- Event) error
	Uninstall() error
	Installed() bool
	SetWheelCapture(on bool)
}

// Overlay draws the motion trail and floating hint label during a capture.
// Implementations may be no-ops (headless or test runs).
type Overlay interface {
	Reset(p Point)
	UpdatePosition(p Point)
	Update(tokens, matchLabel string, p Point)
	Clear()
}

// NopOverlay discards all overlay updates.
type NopOverlay struct{}

func (NopOverlay) Reset(Point)                  {}
func (NopOverlay) UpdatePosition(Point)         {}
func (NopOverlay) Update(string, string, Point) {}
func (NopOverlay) Clear()                       {}

// RightClicker injects a synthetic right click at the given position. The
// injected event must be tagged so the hook backend passes it through instead
// of capturing it again.
type RightClicker interface {
	Click(p Point) error
}

// CursorProvider reports the current pointer position. ok is false when the
// position cannot be queried.
type CursorProvider interface {
	CursorPos() (p Point, ok bool)
}
