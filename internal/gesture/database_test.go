package gesture_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDatabase() *gesture.Database {
	return gesture.NewDatabase([]gesture.Gesture{
		{
			Label:   "browser back",
			Tokens:  "L",
			Mode:    gesture.FourWay,
			Enabled: true,
			Bindings: []gesture.Binding{
				{Label: "back", Kind: gesture.KindExecute, Action: "xdotool", Args: []string{"key", "alt+Left"}, Enabled: true},
			},
		},
		{
			Label:   "disabled gesture",
			Tokens:  "R",
			Mode:    gesture.FourWay,
			Enabled: false,
			Bindings: []gesture.Binding{
				{Label: "never", Kind: gesture.KindExecute, Action: "true", Enabled: true},
			},
		},
		{
			Label:   "launcher",
			Tokens:  "R",
			Mode:    gesture.FourWay,
			Enabled: true,
			Bindings: []gesture.Binding{
				{Label: "show", Kind: gesture.KindToggleLauncher, Enabled: true},
				{Label: "calc", Kind: gesture.KindSetQueryAndShow, Action: "=", Enabled: true},
				{Label: "off", Kind: gesture.KindSetQuery, Action: "x", Enabled: false},
			},
		},
		{
			Label:   "eight way only",
			Tokens:  "3",
			Mode:    gesture.EightWay,
			Enabled: true,
			Bindings: []gesture.Binding{
				{Label: "diag", Kind: gesture.KindExecute, Action: "notify-send", Enabled: true},
			},
		},
	})
}

func TestMatchBindings(t *testing.T) {
	db := sampleDatabase()

	label, bindings, ok := db.MatchBindings("L", gesture.FourWay)
	require.True(t, ok)
	assert.Equal(t, "browser back", label)
	require.Len(t, bindings, 1)
	assert.Equal(t, "back", bindings[0].Label)

	// Disabled gestures are skipped; the later enabled record with the same
	// tokens wins. Disabled bindings are filtered from the result.
	label, bindings, ok = db.MatchBindings("R", gesture.FourWay)
	require.True(t, ok)
	assert.Equal(t, "launcher", label)
	require.Len(t, bindings, 2)
	assert.Equal(t, "show", bindings[0].Label)
	assert.Equal(t, "calc", bindings[1].Label)

	// Matching is partitioned by direction mode.
	_, _, ok = db.MatchBindings("3", gesture.FourWay)
	assert.False(t, ok)
	label, _, ok = db.MatchBindings("3", gesture.EightWay)
	require.True(t, ok)
	assert.Equal(t, "eight way only", label)

	// Exact match only, no prefixes.
	_, _, ok = db.MatchBindings("LU", gesture.FourWay)
	assert.False(t, ok)
	_, _, ok = db.MatchBindings("", gesture.FourWay)
	assert.False(t, ok)
}

func TestDatabaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gestures.json")

	require.NoError(t, gesture.SaveDatabase(p, sampleDatabase()))

	db := gesture.LoadDatabase(p, slog.Default())
	assert.Equal(t, 4, db.Len())

	label, bindings, ok := db.MatchBindings("R", gesture.FourWay)
	require.True(t, ok)
	assert.Equal(t, "launcher", label)
	assert.Len(t, bindings, 2)

	// Mode survives the text round trip.
	_, _, ok = db.MatchBindings("3", gesture.EightWay)
	assert.True(t, ok)
}

func TestLoadDatabaseDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()

	db := gesture.LoadDatabase(filepath.Join(dir, "missing.json"), slog.Default())
	assert.Equal(t, 0, db.Len())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	db = gesture.LoadDatabase(bad, slog.Default())
	assert.Equal(t, 0, db.Len())

	badMode := filepath.Join(dir, "badmode.json")
	require.NoError(t, os.WriteFile(badMode, []byte(`[{"label":"x","tokens":"L","dir_mode":"diagonal","enabled":true}]`), 0o644))
	db = gesture.LoadDatabase(badMode, slog.Default())
	assert.Equal(t, 0, db.Len())
}

func TestEntriesIsACopy(t *testing.T) {
	db := sampleDatabase()
	entries := db.Entries()
	entries[0].Enabled = false

	_, _, ok := db.MatchBindings("L", gesture.FourWay)
	assert.True(t, ok)
}
