package gesture_test

import (
	"testing"

	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/stretchr/testify/assert"
)

func feedPath(t *testing.T, tr *gesture.Tracker, points []gesture.Point) {
	t.Helper()
	for _, p := range points {
		tr.Feed(p)
	}
}

func TestTrackerFourWay(t *testing.T) {

	type testCase struct {
		name     string
		points   []gesture.Point
		expected string
	}

	testCases := []testCase{
		{
			name:     "single right",
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 40, Y: 0}},
			expected: "R",
		},
		{
			name:     "right then down",
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 40}},
			expected: "RD",
		},
		{
			name: "run-length compression",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 80, Y: 0}, {X: 120, Y: 0},
			},
			expected: "R",
		},
		{
			name: "jitter below threshold absorbed",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 10, Y: 3}, {X: 15, Y: -4}, {X: 12, Y: 5},
			},
			expected: "",
		},
		{
			name: "jitter accumulates toward one token",
			points: []gesture.Point{
				// Each step is below threshold but drifts right; the
				// accepted position never advances until the distance from
				// it crosses the threshold.
				{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0},
			},
			expected: "R",
		},
		{
			name: "diagonal snaps to dominant axis",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 40, Y: 30},
			},
			expected: "R",
		},
		{
			name: "up is negative y",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 0, Y: -40},
			},
			expected: "U",
		},
		{
			name: "square",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 60, Y: 0}, {X: 60, Y: 60}, {X: 0, Y: 60}, {X: 0, Y: 0},
			},
			expected: "RDLU",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := gesture.NewTracker(gesture.TrackerConfig{
				Mode:        gesture.FourWay,
				ThresholdPx: 24,
			})
			feedPath(t, tr, tc.points)
			assert.Equal(t, tc.expected, tr.Tokens())
		})
	}
}

func TestTrackerEightWay(t *testing.T) {

	type testCase struct {
		name     string
		points   []gesture.Point
		expected string
	}

	testCases := []testCase{
		{
			name:     "pure diagonal down-right",
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 40, Y: 40}},
			expected: "3",
		},
		{
			name:     "pure diagonal up-left",
			points:   []gesture.Point{{X: 0, Y: 0}, {X: -40, Y: -40}},
			expected: "7",
		},
		{
			name: "near-horizontal snaps to right",
			// dx=100, dy=10: dominance ratio 10 >= 2.5 snaps to cardinal.
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 100, Y: 10}},
			expected: "R",
		},
		{
			name: "near-vertical snaps to down",
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 10, Y: 100}},
			expected: "D",
		},
		{
			name: "shallow diagonal stays diagonal",
			// dx=40, dy=30: neither axis dominates at ratio 2.5.
			points:   []gesture.Point{{X: 0, Y: 0}, {X: 40, Y: 30}},
			expected: "3",
		},
		{
			name: "up-right then down-left",
			points: []gesture.Point{
				{X: 0, Y: 0}, {X: 40, Y: -40}, {X: 0, Y: 0},
			},
			expected: "91",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := gesture.NewTracker(gesture.TrackerConfig{
				Mode:           gesture.EightWay,
				ThresholdPx:    24,
				LongThresholdX: 2.5,
				LongThresholdY: 2.5,
			})
			feedPath(t, tr, tc.points)
			assert.Equal(t, tc.expected, tr.Tokens())
		})
	}
}

func TestTrackerMaxTokens(t *testing.T) {
	tr := gesture.NewTracker(gesture.TrackerConfig{
		Mode:        gesture.FourWay,
		ThresholdPx: 24,
		MaxTokens:   3,
	})

	// Zig-zag produces a fresh token per leg; the cap stops accumulation.
	points := []gesture.Point{{X: 0, Y: 0}}
	x, y := 0, 0
	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			x += 40
		} else {
			y += 40
		}
		points = append(points, gesture.Point{X: x, Y: y})
	}
	feedPath(t, tr, points)
	assert.Equal(t, "RDR", tr.Tokens())
}

func TestTrackerReset(t *testing.T) {
	tr := gesture.NewTracker(gesture.TrackerConfig{Mode: gesture.FourWay, ThresholdPx: 24})
	feedPath(t, tr, []gesture.Point{{X: 0, Y: 0}, {X: 40, Y: 0}})
	assert.Equal(t, "R", tr.Tokens())

	tr.Reset()
	assert.Equal(t, "", tr.Tokens())

	// After a reset the first sample only primes, it emits nothing even far
	// from the previous accepted position.
	tok, emitted := tr.Feed(gesture.Point{X: 500, Y: 500})
	assert.False(t, emitted)
	assert.Zero(t, tok)
}

func TestParseDirMode(t *testing.T) {
	m, ok := gesture.ParseDirMode("four")
	assert.True(t, ok)
	assert.Equal(t, gesture.FourWay, m)

	m, ok = gesture.ParseDirMode("eight")
	assert.True(t, ok)
	assert.Equal(t, gesture.EightWay, m)

	// Empty means the persisted record predates the field.
	m, ok = gesture.ParseDirMode("")
	assert.True(t, ok)
	assert.Equal(t, gesture.FourWay, m)

	_, ok = gesture.ParseDirMode("sixteen")
	assert.False(t, ok)

	var um gesture.DirMode
	err := um.UnmarshalText([]byte("bogus"))
	assert.EqualError(t, err, "unknown dir_mode: bogus")
}
