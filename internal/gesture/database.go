package gesture

import (
	"encoding/json"
	"log/slog"
	"os"
)

// BindingKind selects what the launcher does with a resolved binding.
type BindingKind string

const (
	KindExecute            BindingKind = "execute"
	KindSetQuery           BindingKind = "set_query"
	KindSetQueryAndShow    BindingKind = "set_query_and_show"
	KindSetQueryAndExecute BindingKind = "set_query_and_execute"
	KindToggleLauncher     BindingKind = "toggle_launcher"
)

// Binding is one candidate action attached to a gesture. Gestures may carry
// several, selectable by wheel-cycling during a capture. Args only applies to
// KindExecute.
type Binding struct {
	Label   string      `json:"label"`
	Kind    BindingKind `json:"kind"`
	Action  string      `json:"action"`
	Args    []string    `json:"args,omitempty"`
	Enabled bool        `json:"enabled"`
}

// Gesture is one persisted gesture record. Stroke is a normalized preview
// polyline for the editing UI and plays no part in matching.
type Gesture struct {
	Label    string     `json:"label"`
	Tokens   string     `json:"tokens"`
	Mode     DirMode    `json:"dir_mode"`
	Stroke   [][2]int16 `json:"stroke,omitempty"`
	Enabled  bool       `json:"enabled"`
	Bindings []Binding  `json:"bindings"`
}

// Database is the in-memory snapshot of the persisted gesture store. Entries
// keep their declaration order; tokens need not be unique, the first match
// wins. A Database is immutable after construction, hot-swaps replace the
// whole snapshot.
type Database struct {
	entries []Gesture
}

// NewDatabase builds a database from the given entries.
func NewDatabase(entries []Gesture) *Database {
	return &Database{entries: entries}
}

// Entries returns a copy of all gesture records.
func (d *Database) Entries() []Gesture {
	out := make([]Gesture, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of gesture records, enabled or not.
func (d *Database) Len() int { return len(d.entries) }

// MatchBindings returns the first enabled gesture (in declaration order)
// whose tokens equal the given string verbatim under the same direction
// mode, together with its enabled bindings in stored order. The binding
// order is the wheel-cycle order.
func (d *Database) MatchBindings(tokens string, mode DirMode) (label string, bindings []Binding, ok bool) {
	if tokens == "" {
		return "", nil, false
	}
	for _, g := range d.entries {
		if !g.Enabled || g.Mode != mode || g.Tokens != tokens {
			continue
		}
		for _, b := range g.Bindings {
			if b.Enabled {
				bindings = append(bindings, b)
			}
		}
		return g.Label, bindings, true
	}
	return "", nil, false
}

// LoadDatabase reads the persisted gesture store from path. A missing or
// malformed file degrades to an empty database so service startup never
// fails on bad user data.
func LoadDatabase(path string, logger *slog.Logger) *Database {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read gesture store, starting empty", "path", path, "error", err)
		}
		return NewDatabase(nil)
	}
	var entries []Gesture
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("malformed gesture store, starting empty", "path", path, "error", err)
		return NewDatabase(nil)
	}
	return NewDatabase(entries)
}

// SaveDatabase writes the gesture store to path as indented JSON.
func SaveDatabase(path string, d *Database) error {
	data, err := json.MarshalIndent(d.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
