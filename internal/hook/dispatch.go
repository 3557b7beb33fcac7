// Package hook provides the platform input interceptor behind the
// gesture.HookBackend interface. The Windows implementation installs
// WH_MOUSE_LL and WH_KEYBOARD_LL hooks; everywhere else a no-op backend is
// used so the rest of the daemon still builds and runs.
package hook

import (
	"sync/atomic"

	"github.com/Alia5/GLIDER/internal/gesture"
)

// dispatchState is the lock-free control block consulted by the OS hook
// callback. The callback runs in an OS-privileged context that must complete
// in microseconds and must never block on a lock another thread could hold,
// so everything it reads lives here as atomics. Low-level hooks take a plain
// function pointer with no captured state, hence the package-level instance.
type dispatchState struct {
	// enabled: consume pointer-trigger events.
	enabled atomic.Bool
	// wheelCapture: consume wheel events. Set by the worker only while a
	// session is in the Tracking sub-state.
	wheelCapture atomic.Bool
	// triggerHeld: a consumed trigger-down awaits its matching trigger-up,
	// which must be consumed too.
	triggerHeld atomic.Bool
	// events holds the chan<- gesture.Event the worker drains. Stored as a
	// typed value so the callback can read it without a lock.
	events atomic.Value
}

var dispatch dispatchState

// setEvents publishes (or clears, with a nil channel) the event sink.
func (d *dispatchState) setEvents(ch chan<- gesture.Event) {
	d.events.Store(ch)
}

// send performs a non-blocking send; a full channel drops the event rather
// than stalling the callback.
func (d *dispatchState) send(ev gesture.Event) {
	ch, _ := d.events.Load().(chan<- gesture.Event)
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
