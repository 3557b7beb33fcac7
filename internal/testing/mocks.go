package testing

import (
	"sync"

	"github.com/Alia5/GLIDER/internal/gesture"
)

// MockHook is a hook backend for tests: it records install/uninstall calls,
// exposes the wheel-capture flag and lets tests emit events so the full
// state machine can be exercised without real OS hooks.
type MockHook struct {
	mu           sync.Mutex
	events       chan<- gesture.Event
	installed    bool
	installs     int
	uninstalls   int
	wheelCapture bool

	// FailInstall, when set, makes Install fail with this error.
	FailInstall error
}

func NewMockHook() *MockHook { return &MockHook{} }

func (m *MockHook) Install(events chan<- gesture.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.installed {
		return nil
	}
	if m.FailInstall != nil {
		return m.FailInstall
	}
	m.installs++
	m.events = events
	m.installed = true
	return nil
}

func (m *MockHook) Uninstall() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.installed {
		return nil
	}
	m.uninstalls++
	m.events = nil
	m.installed = false
	return nil
}

func (m *MockHook) Installed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installed
}

func (m *MockHook) SetWheelCapture(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wheelCapture = on
}

// WheelCapture reports the current hook-side wheel consumption flag.
func (m *MockHook) WheelCapture() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wheelCapture
}

// Installs returns how many underlying installations were performed.
func (m *MockHook) Installs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installs
}

// Uninstalls returns how many underlying teardowns were performed.
func (m *MockHook) Uninstalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uninstalls
}

// Emit funnels an event into the worker, like the OS callback would.
func (m *MockHook) Emit(ev gesture.Event) {
	m.mu.Lock()
	ch := m.events
	m.mu.Unlock()
	if ch != nil {
		ch <- ev
	}
}

// CloseEvents closes the event channel, simulating the hook backend tearing
// down underneath the worker.
func (m *MockHook) CloseEvents() {
	m.mu.Lock()
	ch := m.events
	m.events = nil
	m.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}

// MockOverlay records overlay calls for assertions.
type MockOverlay struct {
	mu        sync.Mutex
	resets    int
	clears    int
	updates   []string
	positions []gesture.Point
}

func NewMockOverlay() *MockOverlay { return &MockOverlay{} }

func (o *MockOverlay) Reset(p gesture.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resets++
}

func (o *MockOverlay) UpdatePosition(p gesture.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.positions = append(o.positions, p)
}

func (o *MockOverlay) Update(tokens, matchLabel string, p gesture.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, tokens+"|"+matchLabel)
}

func (o *MockOverlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.clears++
}

func (o *MockOverlay) Resets() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resets
}

func (o *MockOverlay) Clears() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.clears
}

// Updates returns the recorded "tokens|label" hint updates.
func (o *MockOverlay) Updates() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.updates))
	copy(out, o.updates)
	return out
}

// CountingClicker counts synthesized pass-through clicks.
type CountingClicker struct {
	mu     sync.Mutex
	clicks []gesture.Point
}

func NewCountingClicker() *CountingClicker { return &CountingClicker{} }

func (c *CountingClicker) Click(p gesture.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks = append(c.clicks, p)
	return nil
}

func (c *CountingClicker) Clicks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clicks)
}

// MockCursor is a settable cursor position provider.
type MockCursor struct {
	mu  sync.Mutex
	pos gesture.Point
	ok  bool
}

func NewMockCursor(p gesture.Point) *MockCursor {
	return &MockCursor{pos: p, ok: true}
}

func (c *MockCursor) Set(p gesture.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = p
	c.ok = true
}

func (c *MockCursor) CursorPos() (gesture.Point, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos, c.ok
}
