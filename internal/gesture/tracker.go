package gesture

import (
	"math"
)

// Direction tokens. Cardinals use compass letters; eight-way diagonals use
// the numpad corner digits so every direction stays a single character.
const (
	TokenUp        byte = 'U'
	TokenDown      byte = 'D'
	TokenLeft      byte = 'L'
	TokenRight     byte = 'R'
	TokenUpLeft    byte = '7'
	TokenUpRight   byte = '9'
	TokenDownLeft  byte = '1'
	TokenDownRight byte = '3'
)

// DirMode selects how pointer directions are quantized into tokens.
type DirMode uint8

const (
	// FourWay buckets motion into up/down/left/right.
	FourWay DirMode = iota
	// EightWay adds the four diagonals.
	EightWay
)

func (m DirMode) String() string {
	if m == EightWay {
		return "eight"
	}
	return "four"
}

// ParseDirMode parses the persisted representation ("four"/"eight").
func ParseDirMode(s string) (DirMode, bool) {
	switch s {
	case "four", "":
		return FourWay, true
	case "eight":
		return EightWay, true
	}
	return FourWay, false
}

func (m DirMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *DirMode) UnmarshalText(b []byte) error {
	mode, ok := ParseDirMode(string(b))
	if !ok {
		return &UnknownDirModeError{Value: string(b)}
	}
	*m = mode
	return nil
}

// UnknownDirModeError reports an unrecognized dir_mode value in persisted data.
type UnknownDirModeError struct{ Value string }

func (e *UnknownDirModeError) Error() string { return "unknown dir_mode: " + e.Value }

// TrackerConfig holds the tokenizer thresholds, a subset of Config.
type TrackerConfig struct {
	Mode           DirMode
	ThresholdPx    float64
	LongThresholdX float64
	LongThresholdY float64
	MaxTokens      int
}

// Tracker converts pointer samples into a run-length-compressed
// string of direction tokens. It is purely synchronous and carries no
// cross-sample state beyond the last accepted position; callers reset it at
// the start of every capture.
type Tracker struct {
	cfg      TrackerConfig
	accepted Point
	primed   bool
	tokens   []byte
}

// NewTracker creates a Tracker. Zero or negative thresholds fall back to
// defaults that keep the tokenizer usable.
func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.ThresholdPx <= 0 {
		cfg.ThresholdPx = 24
	}
	if cfg.LongThresholdX <= 1 {
		cfg.LongThresholdX = 2.5
	}
	if cfg.LongThresholdY <= 1 {
		cfg.LongThresholdY = 2.5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 32
	}
	return &Tracker{cfg: cfg}
}

// Reset clears all accumulated state.
func (t *Tracker) Reset() {
	t.primed = false
	t.tokens = t.tokens[:0]
}

// Feed ingests one pointer sample and returns the newly emitted token, if
// any. Samples closer than ThresholdPx to the last accepted position are
// absorbed without advancing it, which keeps the tokenizer robust to jitter.
// Consecutive identical directions compress to a single token.
func (t *Tracker) Feed(p Point) (byte, bool) {
	if !t.primed {
		t.accepted = p
		t.primed = true
		return 0, false
	}
	dx := float64(p.X - t.accepted.X)
	dy := float64(p.Y - t.accepted.Y)
	if math.Hypot(dx, dy) < t.cfg.ThresholdPx {
		return 0, false
	}
	tok := t.quantize(dx, dy)
	t.accepted = p
	if n := len(t.tokens); n > 0 && t.tokens[n-1] == tok {
		return 0, false
	}
	if len(t.tokens) >= t.cfg.MaxTokens {
		return 0, false
	}
	t.tokens = append(t.tokens, tok)
	return tok, true
}

// Tokens returns the accumulated, run-length-compressed token sequence.
func (t *Tracker) Tokens() string { return string(t.tokens) }

// quantize buckets a displacement into a direction token. Screen coordinates
// grow downward, so dy > 0 is down.
func (t *Tracker) quantize(dx, dy float64) byte {
	adx, ady := math.Abs(dx), math.Abs(dy)
	if t.cfg.Mode == FourWay {
		if adx >= ady {
			if dx > 0 {
				return TokenRight
			}
			return TokenLeft
		}
		if dy > 0 {
			return TokenDown
		}
		return TokenUp
	}
	// Eight-way: a strongly dominant axis snaps near-diagonal motion to the
	// cardinal direction.
	if adx >= t.cfg.LongThresholdX*ady {
		if dx > 0 {
			return TokenRight
		}
		return TokenLeft
	}
	if ady >= t.cfg.LongThresholdY*adx {
		if dy > 0 {
			return TokenDown
		}
		return TokenUp
	}
	if dy < 0 {
		if dx > 0 {
			return TokenUpRight
		}
		return TokenUpLeft
	}
	if dx > 0 {
		return TokenDownRight
	}
	return TokenDownLeft
}
