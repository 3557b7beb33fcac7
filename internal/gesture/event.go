package gesture

import "time"

// Point is a pointer position in screen coordinates.
type Point struct {
	X int
	Y int
}

// EventKind discriminates raw hook events.
type EventKind uint8

const (
	EventTriggerDown EventKind = iota
	EventTriggerUp
	EventWheelUp
	EventWheelDown
	EventCancel
)

func (k EventKind) String() string {
	switch k {
	case EventTriggerDown:
		return "trigger-down"
	case EventTriggerUp:
		return "trigger-up"
	case EventWheelUp:
		return "wheel-up"
	case EventWheelDown:
		return "wheel-down"
	case EventCancel:
		return "cancel"
	}
	return "unknown"
}

// Event is one raw hardware event funneled out of the hook backend. Only
// hook backends produce these.
type Event struct {
	Kind EventKind
	Pos  Point
	At   time.Time
}
