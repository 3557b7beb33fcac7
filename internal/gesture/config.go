package gesture

import "time"

// Capture behaviors for cancel and no-match outcomes.
const (
	BehaviorNone  = "none"
	BehaviorClick = "click"
	BehaviorHint  = "hint"
)

// Config is the immutable-per-session engine tuning. Changing it on a
// running service restarts the worker and hook so every field takes effect
// atomically. The struct is comparable; UpdateConfig relies on that to skip
// needless restarts.
type Config struct {
	Enabled             bool          `help:"Enable gesture capture on startup" default:"true" env:"GLIDER_GESTURE_ENABLED"`
	TrailInterval       time.Duration `help:"Trail overlay refresh interval" default:"16ms" env:"GLIDER_GESTURE_TRAIL_INTERVAL"`
	RecognitionInterval time.Duration `help:"Live recognition refresh interval" default:"96ms" env:"GLIDER_GESTURE_RECOGNITION_INTERVAL"`
	DeadzonePx          int           `help:"Minimum travel in px before a capture counts as a gesture instead of a click" default:"8" env:"GLIDER_GESTURE_DEADZONE_PX"`
	TrailStartMovePx    int           `help:"Minimum travel in px before the trail overlay starts drawing" default:"4" env:"GLIDER_GESTURE_TRAIL_START_MOVE_PX"`
	Mode                string        `help:"Direction quantization mode" enum:"four,eight" default:"four" env:"GLIDER_GESTURE_MODE"`
	ThresholdPx         float64       `help:"Minimum displacement in px for one direction token" default:"24" env:"GLIDER_GESTURE_THRESHOLD_PX"`
	LongThresholdX      float64       `help:"Horizontal dominance ratio snapping near-diagonals to left/right (eight-way)" default:"2.5" env:"GLIDER_GESTURE_LONG_THRESHOLD_X"`
	LongThresholdY      float64       `help:"Vertical dominance ratio snapping near-diagonals to up/down (eight-way)" default:"2.5" env:"GLIDER_GESTURE_LONG_THRESHOLD_Y"`
	MaxTokens           int           `help:"Maximum direction tokens per capture" default:"32" env:"GLIDER_GESTURE_MAX_TOKENS"`
	TrailColor          string        `help:"Trail overlay color (#rrggbb)" default:"#3daee9" env:"GLIDER_GESTURE_TRAIL_COLOR"`
	TrailWidth          int           `help:"Trail overlay stroke width in px" default:"3" env:"GLIDER_GESTURE_TRAIL_WIDTH"`
	CancelBehavior      string        `help:"Behavior when a capture is cancelled" enum:"none,click" default:"none" env:"GLIDER_GESTURE_CANCEL_BEHAVIOR"`
	NoMatchBehavior     string        `help:"Behavior when released tokens match no gesture" enum:"none,click,hint" default:"hint" env:"GLIDER_GESTURE_NO_MATCH_BEHAVIOR"`
}

// DirMode returns the configured quantization mode.
func (c Config) DirMode() DirMode {
	m, _ := ParseDirMode(c.Mode)
	return m
}

// TrackerConfig extracts the tokenizer thresholds.
func (c Config) TrackerConfig() TrackerConfig {
	return TrackerConfig{
		Mode:           c.DirMode(),
		ThresholdPx:    c.ThresholdPx,
		LongThresholdX: c.LongThresholdX,
		LongThresholdY: c.LongThresholdY,
		MaxTokens:      c.MaxTokens,
	}
}
