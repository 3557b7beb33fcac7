//go:build windows

package hook

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Alia5/GLIDER/internal/gesture"
)

const (
	whMouseLL    = 14
	whKeyboardLL = 13

	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMouseWheel  = 0x020A
	wmKeyDown     = 0x0100
	wmSysKeyDown  = 0x0104
	wmQuit        = 0x0012

	vkEscape = 0x1B

	llmhfInjected = 0x00000001
	llkhfInjected = 0x00000010

	// injectedTag is the private dwExtraInfo marker ("GLDR") on events this
	// process injects itself. The hook passes those through unconditionally,
	// on top of the OS injected flag, so a pass-through click can never
	// re-trigger a capture.
	injectedTag = 0x474C4452
)

type point struct{ X, Y int32 }

type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type nativeMsg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procSendInput           = user32.NewProc("SendInput")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")

	mouseProcPtr    = windows.NewCallback(mouseProc)
	keyboardProcPtr = windows.NewCallback(keyboardProc)
)

// Backend installs the low-level mouse and keyboard hooks on a dedicated
// OS-locked goroutine that runs the native message loop required by
// WH_*_LL hooks. Install performs a synchronous handshake with that thread
// and returns only once the hooks are confirmed registered.
type Backend struct {
	mu        sync.Mutex
	logger    *slog.Logger
	installed bool
	threadID  uint32
	loopDone  chan struct{}
}

// NewBackend creates the Windows hook backend.
func NewBackend(logger *slog.Logger) gesture.HookBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{logger: logger}
}

// Install registers both hooks. Idempotent.
func (b *Backend) Install(events chan<- gesture.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.installed {
		return nil
	}
	dispatch.setEvents(events)

	ready := make(chan error, 1)
	b.loopDone = make(chan struct{})
	go b.hookLoop(ready, b.loopDone)
	if err := <-ready; err != nil {
		var none chan<- gesture.Event
		dispatch.setEvents(none)
		b.loopDone = nil
		return err
	}
	dispatch.enabled.Store(true)
	b.installed = true
	b.logger.Debug("input hooks installed", "thread", b.threadID)
	return nil
}

// hookLoop owns the hook thread: registers the hooks, signals readiness and
// pumps messages until WM_QUIT.
func (b *Backend) hookLoop(ready chan<- error, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)

	mouseHook, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseProcPtr, 0, 0)
	if mouseHook == 0 {
		ready <- fmt.Errorf("SetWindowsHookEx(WH_MOUSE_LL): %w", err)
		return
	}
	keyHook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardProcPtr, 0, 0)
	if keyHook == 0 {
		_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
		ready <- fmt.Errorf("SetWindowsHookEx(WH_KEYBOARD_LL): %w", err)
		return
	}

	tid, _, _ := procGetCurrentThreadId.Call()
	b.threadID = uint32(tid)
	ready <- nil

	var m nativeMsg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
	}

	_, _, _ = procUnhookWindowsHookEx.Call(mouseHook)
	_, _, _ = procUnhookWindowsHookEx.Call(keyHook)
}

// Uninstall tears the hooks down and joins the hook thread. Safe to call
// when not installed.
func (b *Backend) Uninstall() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.installed {
		return nil
	}
	dispatch.enabled.Store(false)
	dispatch.wheelCapture.Store(false)
	dispatch.triggerHeld.Store(false)
	_, _, _ = procPostThreadMessageW.Call(uintptr(b.threadID), wmQuit, 0, 0)
	<-b.loopDone
	var none chan<- gesture.Event
	dispatch.setEvents(none)
	b.installed = false
	b.loopDone = nil
	b.logger.Debug("input hooks uninstalled")
	return nil
}

// Installed reports whether the hooks are registered.
func (b *Backend) Installed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installed
}

// SetWheelCapture flips the callback-side wheel consumption flag.
func (b *Backend) SetWheelCapture(on bool) {
	dispatch.wheelCapture.Store(on)
}

// mouseProc is the WH_MOUSE_LL callback. It only touches atomics and a
// non-blocking channel send.
func mouseProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) < 0 {
		return callNext(nCode, wParam, lParam)
	}
	info := (*msllHookStruct)(unsafe.Pointer(lParam))
	if info.Flags&llmhfInjected != 0 || info.DwExtraInfo == injectedTag {
		return callNext(nCode, wParam, lParam)
	}
	pos := gesture.Point{X: int(info.Pt.X), Y: int(info.Pt.Y)}
	switch wParam {
	case wmRButtonDown:
		if dispatch.enabled.Load() {
			dispatch.triggerHeld.Store(true)
			dispatch.send(gesture.Event{Kind: gesture.EventTriggerDown, Pos: pos, At: time.Now()})
			return 1
		}
	case wmRButtonUp:
		// Consumed down implies consumed up, even if capture was disabled
		// in between.
		if dispatch.triggerHeld.Swap(false) {
			dispatch.send(gesture.Event{Kind: gesture.EventTriggerUp, Pos: pos, At: time.Now()})
			return 1
		}
	case wmMouseWheel:
		if dispatch.wheelCapture.Load() {
			kind := gesture.EventWheelUp
			if int16(info.MouseData>>16) < 0 {
				kind = gesture.EventWheelDown
			}
			dispatch.send(gesture.Event{Kind: kind, Pos: pos, At: time.Now()})
			return 1
		}
	}
	return callNext(nCode, wParam, lParam)
}

// keyboardProc is the WH_KEYBOARD_LL callback; Escape while the trigger is
// held cancels the capture.
func keyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) < 0 {
		return callNext(nCode, wParam, lParam)
	}
	if wParam != wmKeyDown && wParam != wmSysKeyDown {
		return callNext(nCode, wParam, lParam)
	}
	info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
	if info.Flags&llkhfInjected != 0 || info.DwExtraInfo == injectedTag {
		return callNext(nCode, wParam, lParam)
	}
	if info.VkCode == vkEscape && dispatch.triggerHeld.Load() {
		dispatch.send(gesture.Event{Kind: gesture.EventCancel, At: time.Now()})
		return 1
	}
	return callNext(nCode, wParam, lParam)
}

func callNext(nCode, wParam, lParam uintptr) uintptr {
	r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return r
}
