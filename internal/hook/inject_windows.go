//go:build windows

package hook

import (
	"fmt"
	"unsafe"

	"github.com/Alia5/GLIDER/internal/gesture"
)

const (
	mouseeventfRightDown = 0x0008
	mouseeventfRightUp   = 0x0010
)

// mouseInput mirrors MOUSEINPUT; Go inserts the same trailing alignment
// padding before DwExtraInfo as the C layout.
type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors INPUT with the mouse arm of the union.
type input struct {
	Type uint32
	Mi   mouseInput
}

// Clicker synthesizes right clicks via SendInput. Injected events carry the
// private tag so the hook recognizes and ignores its own output.
type Clicker struct{}

// NewClicker creates the Windows click injector.
func NewClicker() gesture.RightClicker { return Clicker{} }

// Click injects a right-button down/up pair at the current cursor position.
// The position argument is advisory: the cursor never left it, since pointer
// motion is passed through during capture.
func (Clicker) Click(_ gesture.Point) error {
	inputs := [2]input{
		{Type: 0, Mi: mouseInput{DwFlags: mouseeventfRightDown, DwExtraInfo: injectedTag}},
		{Type: 0, Mi: mouseInput{DwFlags: mouseeventfRightUp, DwExtraInfo: injectedTag}},
	}
	n, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(n) != len(inputs) {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}

// Cursor reports the pointer position via GetCursorPos.
type Cursor struct{}

// NewCursor creates the Windows cursor position provider.
func NewCursor() gesture.CursorProvider { return Cursor{} }

func (Cursor) CursorPos() (gesture.Point, bool) {
	var pt point
	r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return gesture.Point{}, false
	}
	return gesture.Point{X: int(pt.X), Y: int(pt.Y)}, true
}
