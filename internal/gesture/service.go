package gesture

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/Alia5/GLIDER/internal/log"
)

// ResolvedAction is the engine's output: exactly one is emitted per
// successfully matched trigger-up. The engine never executes actions itself.
type ResolvedAction struct {
	Gesture string      `json:"gesture"`
	Binding string      `json:"binding"`
	Kind    BindingKind `json:"kind"`
	Action  string      `json:"action"`
	Args    []string    `json:"args,omitempty"`
}

// Status is a point-in-time service snapshot for the control API.
type Status struct {
	Enabled       bool `json:"enabled"`
	Running       bool `json:"running"`
	HookInstalled bool `json:"hookInstalled"`
	GestureCount  int  `json:"gestureCount"`
}

// Backends bundles the platform collaborators of a Service. Nil Overlay,
// Clicker or Cursor fields degrade to no-ops.
type Backends struct {
	Hook    HookBackend
	Overlay Overlay
	Clicker RightClicker
	Cursor  CursorProvider
}

// Service orchestrates the capture lifecycle: it owns the configuration, the
// shared gesture database handle, the hook backend and a worker goroutine
// running the capture state machine.
//
// Exactly one goroutine (the worker) mutates session state, feeds the
// tokenizer, queries the database and drives the overlays. The hook callback
// thread only ever performs a non-blocking channel send; the main thread only
// calls Start/Stop/UpdateConfig/UpdateDatabase.
type Service struct {
	mu      sync.Mutex
	cfg     Config
	hook    HookBackend
	overlay Overlay
	clicker RightClicker
	cursor  CursorProvider
	logger  *slog.Logger
	raw     log.RawLogger

	dbMu sync.RWMutex
	db   *Database

	actions chan ResolvedAction

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewService creates a stopped service. db may be nil (no gestures).
func NewService(cfg Config, db *Database, b Backends, logger *slog.Logger, raw log.RawLogger) *Service {
	if b.Overlay == nil {
		b.Overlay = NopOverlay{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	if db == nil {
		db = NewDatabase(nil)
	}
	return &Service{
		cfg:     cfg,
		hook:    b.Hook,
		overlay: b.Overlay,
		clicker: b.Clicker,
		cursor:  b.Cursor,
		logger:  logger,
		raw:     raw,
		db:      db,
		actions: make(chan ResolvedAction, 16),
	}
}

// Actions returns the channel resolved actions are emitted on. The channel
// is buffered; when no consumer keeps up, actions are dropped with a warning
// rather than blocking the worker.
func (s *Service) Actions() <-chan ResolvedAction { return s.actions }

// Running reports whether the worker is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns a snapshot for the control API.
func (s *Service) Status() Status {
	s.mu.Lock()
	running := s.running
	enabled := s.cfg.Enabled
	s.mu.Unlock()
	s.dbMu.RLock()
	count := s.db.Len()
	s.dbMu.RUnlock()
	return Status{
		Enabled:       enabled,
		Running:       running,
		HookInstalled: s.hook.Installed(),
		GestureCount:  count,
	}
}

// Start installs the hook and spawns the worker. Idempotent; a second call
// while running is a no-op. On hook install failure the service stays
// stopped and the error is returned to the caller.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *Service) startLocked() error {
	if s.running {
		return nil
	}
	events := make(chan Event, 64)
	if err := s.hook.Install(events); err != nil {
		return fmt.Errorf("install hook: %w", err)
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.worker(events, s.stop, s.done)
	s.logger.Info("gesture service started", "mode", s.cfg.Mode)
	return nil
}

// Stop uninstalls the hook, signals the worker and joins it. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if !s.running {
		return
	}
	if err := s.hook.Uninstall(); err != nil {
		s.logger.Error("failed to uninstall hook", "error", err)
	}
	close(s.stop)
	<-s.done
	s.running = false
	s.logger.Info("gesture service stopped")
}

// UpdateConfig replaces the configuration wholesale. Identical values are a
// no-op; otherwise a running worker is restarted so the new thresholds and
// intervals take effect atomically.
func (s *Service) UpdateConfig(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == s.cfg {
		return nil
	}
	wasRunning := s.running
	if wasRunning {
		s.stopLocked()
	}
	s.cfg = cfg
	if wasRunning {
		return s.startLocked()
	}
	return nil
}

// UpdateDatabase hot-swaps the gesture database. A running worker is
// restarted so it never observes a stale snapshot mid-session.
func (s *Service) UpdateDatabase(db *Database) error {
	if db == nil {
		db = NewDatabase(nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wasRunning := s.running
	if wasRunning {
		s.stopLocked()
	}
	s.dbMu.Lock()
	s.db = db
	s.dbMu.Unlock()
	if wasRunning {
		return s.startLocked()
	}
	return nil
}

// Database returns the current database snapshot.
func (s *Service) Database() *Database {
	s.dbMu.RLock()
	defer s.dbMu.RUnlock()
	return s.db
}

// session is the ephemeral per-capture state, owned by the worker.
type session struct {
	active     bool
	tracking   bool // positional deadzone exceeded; enables wheel-cycling
	start      Point
	startedAt  time.Time
	lastRecog  time.Time
	matchLabel string
	candidates []Binding
	selection  int
}

func (s *Service) worker(events <-chan Event, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	if cfg.TrailInterval <= 0 {
		cfg.TrailInterval = 16 * time.Millisecond
	}
	if cfg.RecognitionInterval <= 0 {
		cfg.RecognitionInterval = 96 * time.Millisecond
	}

	tracker := NewTracker(cfg.TrackerConfig())
	var sess session

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				// Channel gone means the hook backend shut down underneath
				// us; treat as an implicit stop.
				s.logger.Debug("hook event channel closed, worker exiting")
				return
			}
			s.handleEvent(&sess, tracker, cfg, ev)
		case <-time.After(cfg.TrailInterval):
			s.pollSession(&sess, tracker, cfg)
		}
	}
}

func (s *Service) handleEvent(sess *session, tracker *Tracker, cfg Config, ev Event) {
	s.logger.Log(context.Background(), log.LevelTrace, "hook event", "kind", ev.Kind.String(), "x", ev.Pos.X, "y", ev.Pos.Y)
	s.raw.Event(ev.Kind.String(), ev.Pos.X, ev.Pos.Y)

	switch ev.Kind {
	case EventTriggerDown:
		if sess.active {
			// Protocol violation: the hook should never deliver a second
			// trigger-down mid-session. Keep the current session.
			s.logger.Warn("trigger-down during active capture, ignoring")
			return
		}
		tracker.Reset()
		*sess = session{active: true, start: ev.Pos, startedAt: ev.At}
		tracker.Feed(ev.Pos)
		s.overlay.Reset(ev.Pos)
		s.hook.SetWheelCapture(false)

	case EventTriggerUp:
		if !sess.active {
			s.logger.Debug("trigger-up without active capture, ignoring")
			return
		}
		pos := ev.Pos
		if s.cursor != nil {
			if p, ok := s.cursor.CursorPos(); ok {
				pos = p
			}
		}
		tracker.Feed(pos)
		s.finishSession(sess, cfg, tracker.Tokens(), pos)

	case EventWheelUp, EventWheelDown:
		if !sess.active || !sess.tracking || len(sess.candidates) < 2 {
			return
		}
		n := len(sess.candidates)
		if ev.Kind == EventWheelUp {
			sess.selection = (sess.selection + 1) % n
		} else {
			sess.selection = (sess.selection - 1 + n) % n
		}
		s.overlay.Update(tracker.Tokens(), s.selectionHint(sess), ev.Pos)

	case EventCancel:
		if !sess.active {
			return
		}
		if cfg.CancelBehavior == BehaviorClick {
			s.passThroughClick(s.currentPos(ev.Pos))
		}
		s.overlay.Clear()
		s.hook.SetWheelCapture(false)
		*sess = session{}
	}
}

// finishSession resolves a trigger-up. Session state is cleared and overlays
// hidden regardless of outcome.
func (s *Service) finishSession(sess *session, cfg Config, tokens string, pos Point) {
	defer func() {
		s.overlay.Clear()
		s.hook.SetWheelCapture(false)
		*sess = session{}
	}()

	if tokens == "" {
		// Motion never left the click regime; replay the click so the
		// underlying application sees an ordinary interaction.
		s.passThroughClick(pos)
		return
	}

	label, bindings, ok := s.lookup(tokens, cfg.DirMode())
	if ok && len(bindings) > 0 {
		b := bindings[sess.selection%len(bindings)]
		s.emit(ResolvedAction{
			Gesture: label,
			Binding: b.Label,
			Kind:    b.Kind,
			Action:  b.Action,
			Args:    b.Args,
		})
		return
	}

	if cfg.NoMatchBehavior == BehaviorClick {
		s.passThroughClick(pos)
	}
	// BehaviorHint surfaces during tracking; trigger-up ends the session.
}

// pollSession runs on trail-interval timeouts: refresh the trail every tick,
// re-run recognition only every RecognitionInterval. Wheel-cycling unlocks on
// positional deadzone, independent of whether a token was emitted yet.
func (s *Service) pollSession(sess *session, tracker *Tracker, cfg Config) {
	if !sess.active || s.cursor == nil {
		return
	}
	pos, ok := s.cursor.CursorPos()
	if !ok {
		return
	}
	if !sess.tracking && dist(sess.start, pos) >= float64(cfg.DeadzonePx) {
		sess.tracking = true
		s.hook.SetWheelCapture(true)
	}
	now := time.Now()
	tracker.Feed(pos)
	if sess.tracking || dist(sess.start, pos) >= float64(cfg.TrailStartMovePx) {
		s.overlay.UpdatePosition(pos)
	}
	if now.Sub(sess.lastRecog) < cfg.RecognitionInterval {
		return
	}
	sess.lastRecog = now
	tokens := tracker.Tokens()
	if tokens == "" {
		return
	}
	label, bindings, matched := s.lookup(tokens, cfg.DirMode())
	if matched {
		if label != sess.matchLabel || len(bindings) != len(sess.candidates) {
			sess.selection = 0
		}
		sess.matchLabel = label
		sess.candidates = bindings
		s.overlay.Update(tokens, s.selectionHint(sess), pos)
		return
	}
	sess.matchLabel = ""
	sess.candidates = nil
	sess.selection = 0
	if cfg.NoMatchBehavior == BehaviorHint {
		s.overlay.Update(tokens, "", pos)
	}
}

// selectionHint formats the hint label, including the ordinal position when
// several bindings are candidates.
func (s *Service) selectionHint(sess *session) string {
	if len(sess.candidates) == 0 {
		return sess.matchLabel
	}
	b := sess.candidates[sess.selection%len(sess.candidates)]
	if len(sess.candidates) == 1 {
		return fmt.Sprintf("%s: %s", sess.matchLabel, b.Label)
	}
	return fmt.Sprintf("%s: %s (%d/%d)", sess.matchLabel, b.Label, sess.selection+1, len(sess.candidates))
}

// lookup queries the shared database. Lock contention is never fatal: a
// failed acquisition logs and reports no match for this cycle.
func (s *Service) lookup(tokens string, mode DirMode) (string, []Binding, bool) {
	if !s.dbMu.TryRLock() {
		s.logger.Warn("gesture database busy, skipping lookup")
		return "", nil, false
	}
	defer s.dbMu.RUnlock()
	return s.db.MatchBindings(tokens, mode)
}

func (s *Service) emit(a ResolvedAction) {
	select {
	case s.actions <- a:
		s.logger.Info("gesture resolved", "gesture", a.Gesture, "binding", a.Binding, "kind", string(a.Kind))
	default:
		s.logger.Warn("action channel full, dropping resolved action", "gesture", a.Gesture)
	}
}

func (s *Service) passThroughClick(pos Point) {
	if s.clicker == nil {
		return
	}
	if err := s.clicker.Click(pos); err != nil {
		s.logger.Error("pass-through click failed", "error", err)
	}
}

func (s *Service) currentPos(fallback Point) Point {
	if s.cursor != nil {
		if p, ok := s.cursor.CursorPos(); ok {
			return p
		}
	}
	return fallback
}

func dist(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
