package gesture_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Alia5/GLIDER/internal/gesture"
	glidertest "github.com/Alia5/GLIDER/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() gesture.Config {
	return gesture.Config{
		Enabled:             true,
		TrailInterval:       2 * time.Millisecond,
		RecognitionInterval: 4 * time.Millisecond,
		DeadzonePx:          8,
		TrailStartMovePx:    4,
		Mode:                "four",
		ThresholdPx:         24,
		LongThresholdX:      2.5,
		LongThresholdY:      2.5,
		MaxTokens:           32,
		CancelBehavior:      gesture.BehaviorNone,
		NoMatchBehavior:     gesture.BehaviorHint,
	}
}

type harness struct {
	svc     *gesture.Service
	hook    *glidertest.MockHook
	overlay *glidertest.MockOverlay
	clicker *glidertest.CountingClicker
	cursor  *glidertest.MockCursor
}

func newHarness(t *testing.T, cfg gesture.Config, db *gesture.Database) *harness {
	t.Helper()
	h := &harness{
		hook:    glidertest.NewMockHook(),
		overlay: glidertest.NewMockOverlay(),
		clicker: glidertest.NewCountingClicker(),
		cursor:  glidertest.NewMockCursor(gesture.Point{}),
	}
	h.svc = gesture.NewService(cfg, db, gesture.Backends{
		Hook:    h.hook,
		Overlay: h.overlay,
		Clicker: h.clicker,
		Cursor:  h.cursor,
	}, slog.Default(), nil)
	t.Cleanup(h.svc.Stop)
	return h
}

// dragTo simulates a held trigger being dragged to p: move the cursor and
// wait until the worker crossed the positional deadzone (observable through
// the hook's wheel-capture flag).
func (h *harness) dragTo(t *testing.T, p gesture.Point) {
	t.Helper()
	h.cursor.Set(p)
	require.Eventually(t, h.hook.WheelCapture, 2*time.Second, time.Millisecond,
		"worker never crossed the positional deadzone")
}

func waitAction(t *testing.T, ch <-chan gesture.ResolvedAction) gesture.ResolvedAction {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for resolved action")
	}
	return gesture.ResolvedAction{}
}

func assertNoAction(t *testing.T, ch <-chan gesture.ResolvedAction) {
	t.Helper()
	select {
	case a := <-ch:
		t.Fatalf("unexpected resolved action: %+v", a)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestServiceStartStop(t *testing.T) {
	h := newHarness(t, fastConfig(), nil)

	require.NoError(t, h.svc.Start())
	assert.True(t, h.svc.Running())
	assert.True(t, h.hook.Installed())

	// Idempotent start
	require.NoError(t, h.svc.Start())
	assert.Equal(t, 1, h.hook.Installs())

	h.svc.Stop()
	assert.False(t, h.svc.Running())
	assert.False(t, h.hook.Installed())
	assert.Equal(t, 1, h.hook.Uninstalls())

	// Idempotent stop
	h.svc.Stop()
	assert.Equal(t, 1, h.hook.Uninstalls())
}

func TestServiceHookInstallFailure(t *testing.T) {
	h := newHarness(t, fastConfig(), nil)
	h.hook.FailInstall = errors.New("access denied")

	err := h.svc.Start()
	require.Error(t, err)
	assert.ErrorContains(t, err, "access denied")
	assert.False(t, h.svc.Running())
	assert.False(t, h.hook.Installed())
	assert.Equal(t, 0, h.hook.Installs())
}

func TestClosedEventChannelStopsWorker(t *testing.T) {
	h := newHarness(t, fastConfig(), nil)
	require.NoError(t, h.svc.Start())

	h.hook.CloseEvents()
	// Give the worker a tick to observe the close and exit on its own.
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		h.svc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop hung after the event channel was closed")
	}
	assert.False(t, h.svc.Running())
}

func TestGestureResolvesToAction(t *testing.T) {
	db := gesture.NewDatabase([]gesture.Gesture{{
		Label:   "open terminal",
		Tokens:  "R",
		Mode:    gesture.FourWay,
		Enabled: true,
		Bindings: []gesture.Binding{
			{Label: "spawn", Kind: gesture.KindExecute, Action: "alacritty", Enabled: true},
		},
	}})
	h := newHarness(t, fastConfig(), db)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	a := waitAction(t, h.svc.Actions())
	assert.Equal(t, "open terminal", a.Gesture)
	assert.Equal(t, "spawn", a.Binding)
	assert.Equal(t, gesture.KindExecute, a.Kind)
	assert.Equal(t, "alacritty", a.Action)

	// A matched gesture must not leak a click to the desktop.
	assert.Equal(t, 0, h.clicker.Clicks())

	// Session teardown: overlay cleared, wheel capture released.
	assert.Eventually(t, func() bool { return !h.hook.WheelCapture() }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, h.overlay.Clears(), 1)
}

func TestTriggerDownDuringCaptureIsIgnored(t *testing.T) {
	db := gesture.NewDatabase([]gesture.Gesture{{
		Label:   "open terminal",
		Tokens:  "R",
		Mode:    gesture.FourWay,
		Enabled: true,
		Bindings: []gesture.Binding{
			{Label: "spawn", Kind: gesture.KindExecute, Action: "alacritty", Enabled: true},
		},
	}})
	h := newHarness(t, fastConfig(), db)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})

	// A second trigger-down mid-session must not restart the capture: the
	// tokens accumulated so far stay and the release still resolves.
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	a := waitAction(t, h.svc.Actions())
	assert.Equal(t, "open terminal", a.Gesture)
	assert.Equal(t, "spawn", a.Binding)
	assert.Equal(t, 0, h.clicker.Clicks())
	assertNoAction(t, h.svc.Actions())
}

func TestSubDeadzoneReleaseIsAClick(t *testing.T) {
	cfg := fastConfig()
	// Even the strictest no-match behavior must not swallow plain clicks.
	cfg.NoMatchBehavior = gesture.BehaviorNone
	h := newHarness(t, cfg, nil)
	require.NoError(t, h.svc.Start())

	h.cursor.Set(gesture.Point{X: 3, Y: 1})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 3, Y: 1}, At: time.Now()})

	require.Eventually(t, func() bool { return h.clicker.Clicks() == 1 }, 2*time.Second, time.Millisecond)
	assertNoAction(t, h.svc.Actions())
}

func TestNoMatchClickBehavior(t *testing.T) {
	cfg := fastConfig()
	cfg.NoMatchBehavior = gesture.BehaviorClick
	h := newHarness(t, cfg, nil) // empty database, nothing can match
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	require.Eventually(t, func() bool { return h.clicker.Clicks() == 1 }, 2*time.Second, time.Millisecond)
	assertNoAction(t, h.svc.Actions())
}

func TestNoMatchNoneBehaviorSwallowsDrag(t *testing.T) {
	cfg := fastConfig()
	cfg.NoMatchBehavior = gesture.BehaviorNone
	h := newHarness(t, cfg, nil)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	assertNoAction(t, h.svc.Actions())
	assert.Equal(t, 0, h.clicker.Clicks())
}

func TestWheelCyclesBindings(t *testing.T) {
	db := gesture.NewDatabase([]gesture.Gesture{{
		Label:   "launcher",
		Tokens:  "R",
		Mode:    gesture.FourWay,
		Enabled: true,
		Bindings: []gesture.Binding{
			{Label: "show", Kind: gesture.KindToggleLauncher, Enabled: true},
			{Label: "calc", Kind: gesture.KindSetQueryAndShow, Action: "=", Enabled: true},
		},
	}})
	h := newHarness(t, fastConfig(), db)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})

	// Wait for live recognition to surface the match before cycling.
	require.Eventually(t, func() bool { return len(h.overlay.Updates()) > 0 }, 2*time.Second, time.Millisecond)

	h.hook.Emit(gesture.Event{Kind: gesture.EventWheelUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	a := waitAction(t, h.svc.Actions())
	assert.Equal(t, "launcher", a.Gesture)
	assert.Equal(t, "calc", a.Binding)
	assert.Equal(t, gesture.KindSetQueryAndShow, a.Kind)
}

func TestWheelWrapsAround(t *testing.T) {
	db := gesture.NewDatabase([]gesture.Gesture{{
		Label:   "launcher",
		Tokens:  "R",
		Mode:    gesture.FourWay,
		Enabled: true,
		Bindings: []gesture.Binding{
			{Label: "first", Kind: gesture.KindToggleLauncher, Enabled: true},
			{Label: "second", Kind: gesture.KindSetQuery, Action: "q", Enabled: true},
		},
	}})
	h := newHarness(t, fastConfig(), db)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})
	require.Eventually(t, func() bool { return len(h.overlay.Updates()) > 0 }, 2*time.Second, time.Millisecond)

	// Two steps over two candidates lands back on the first.
	h.hook.Emit(gesture.Event{Kind: gesture.EventWheelUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})
	h.hook.Emit(gesture.Event{Kind: gesture.EventWheelUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	a := waitAction(t, h.svc.Actions())
	assert.Equal(t, "first", a.Binding)
}

func TestCancelWithClickBehavior(t *testing.T) {
	cfg := fastConfig()
	cfg.CancelBehavior = gesture.BehaviorClick
	db := gesture.NewDatabase([]gesture.Gesture{{
		Label:   "open terminal",
		Tokens:  "R",
		Mode:    gesture.FourWay,
		Enabled: true,
		Bindings: []gesture.Binding{
			{Label: "spawn", Kind: gesture.KindExecute, Action: "alacritty", Enabled: true},
		},
	}})
	h := newHarness(t, cfg, db)
	require.NoError(t, h.svc.Start())

	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerDown, Pos: gesture.Point{}, At: time.Now()})
	h.dragTo(t, gesture.Point{X: 120, Y: 0})
	h.hook.Emit(gesture.Event{Kind: gesture.EventCancel, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})

	require.Eventually(t, func() bool { return h.clicker.Clicks() == 1 }, 2*time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return !h.hook.WheelCapture() }, time.Second, time.Millisecond)

	// The trailing hardware trigger-up lands on an inactive session: no
	// action, no second click.
	h.hook.Emit(gesture.Event{Kind: gesture.EventTriggerUp, Pos: gesture.Point{X: 120, Y: 0}, At: time.Now()})
	assertNoAction(t, h.svc.Actions())
	assert.Equal(t, 1, h.clicker.Clicks())
}

func TestUpdateConfig(t *testing.T) {
	cfg := fastConfig()
	h := newHarness(t, cfg, nil)
	require.NoError(t, h.svc.Start())
	assert.Equal(t, 1, h.hook.Installs())

	// Unchanged config is a no-op, no restart.
	require.NoError(t, h.svc.UpdateConfig(cfg))
	assert.Equal(t, 1, h.hook.Installs())

	cfg.ThresholdPx = 48
	require.NoError(t, h.svc.UpdateConfig(cfg))
	assert.Equal(t, 2, h.hook.Installs())
	assert.True(t, h.svc.Running())

	// Updates on a stopped service do not install anything.
	h.svc.Stop()
	cfg.ThresholdPx = 12
	require.NoError(t, h.svc.UpdateConfig(cfg))
	assert.Equal(t, 2, h.hook.Installs())
	assert.False(t, h.svc.Running())
}

func TestUpdateDatabaseRestartsWorker(t *testing.T) {
	h := newHarness(t, fastConfig(), nil)
	require.NoError(t, h.svc.Start())
	assert.Equal(t, 0, h.svc.Database().Len())

	db := gesture.NewDatabase([]gesture.Gesture{{
		Label: "x", Tokens: "L", Enabled: true,
		Bindings: []gesture.Binding{{Label: "y", Kind: gesture.KindExecute, Action: "true", Enabled: true}},
	}})
	require.NoError(t, h.svc.UpdateDatabase(db))
	assert.Equal(t, 2, h.hook.Installs())
	assert.True(t, h.svc.Running())
	assert.Equal(t, 1, h.svc.Database().Len())
}

func TestStatusSnapshot(t *testing.T) {
	db := gesture.NewDatabase([]gesture.Gesture{{Label: "x", Tokens: "L", Enabled: true}})
	h := newHarness(t, fastConfig(), db)

	st := h.svc.Status()
	assert.True(t, st.Enabled)
	assert.False(t, st.Running)
	assert.False(t, st.HookInstalled)
	assert.Equal(t, 1, st.GestureCount)

	require.NoError(t, h.svc.Start())
	st = h.svc.Status()
	assert.True(t, st.Running)
	assert.True(t, st.HookInstalled)
}

func TestInstanceLifecycle(t *testing.T) {
	gesture.ShutdownInstance()
	assert.Nil(t, gesture.Instance())

	h := newHarness(t, fastConfig(), nil)
	require.NoError(t, gesture.InitInstance(h.svc))
	assert.Same(t, h.svc, gesture.Instance())

	assert.Error(t, gesture.InitInstance(h.svc))

	gesture.ShutdownInstance()
	assert.Nil(t, gesture.Instance())
	assert.False(t, h.svc.Running())
}
