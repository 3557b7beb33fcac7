package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger traces raw hook events with optional file output. It sits below
// the structured logger: one line per hardware event, cheap enough to leave
// enabled at trace level.
type RawLogger interface {
	Event(kind string, x, y int)
}

// rawLogger implements RawLogger with thread-safe writes.
type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw creates a new RawLogger. If writer is nil, returns a no-op logger.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Event emits a single-line raw hook event log with timestamp and position.
func (r *rawLogger) Event(kind string, x, y int) {
	if r.w == nil {
		return
	}

	line := fmt.Sprintf("%s hook %s x=%d y=%d\n",
		time.Now().Format("2006/01/02 15:04:05.000"),
		kind, x, y)

	r.mu.Lock()
	_, _ = r.w.Write([]byte(line))
	r.mu.Unlock()
}
