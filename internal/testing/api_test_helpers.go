package testing

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/log"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// NewTestService builds a stopped gesture service on mock backends.
func NewTestService(t *testing.T, cfg gesture.Config, db *gesture.Database) (*gesture.Service, *MockHook) {
	t.Helper()
	hook := NewMockHook()
	svc := gesture.NewService(cfg, db, gesture.Backends{
		Hook:    hook,
		Overlay: NewMockOverlay(),
		Clicker: NewCountingClicker(),
		Cursor:  NewMockCursor(gesture.Point{}),
	}, slog.Default(), log.NewRaw(nil))
	return svc, hook
}

// StartAPIServer starts an API server on a free port and calls register to
// allow the caller to register the handlers needed for the test. Returns the
// address, the engine service and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router, svc *gesture.Service, apiSrv *api.Server)) (addr string, svc *gesture.Service, done func()) {
	t.Helper()
	svc, _ = NewTestService(t, gesture.Config{TrailInterval: 5 * time.Millisecond, RecognitionInterval: 10 * time.Millisecond}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr = ln.Addr().String()
	_ = ln.Close()

	apiSrv := api.New(svc, addr, api.ServerConfig{Addr: addr}, slog.Default())
	if register != nil {
		register(apiSrv.Router(), svc, apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		svc.Stop()
		time.Sleep(10 * time.Millisecond)
	}
	return addr, svc, done
}

// ExecCmd dials the API server, sends cmd and reads the full response.
// The command should not include a trailing terminator. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	// Send command with null terminator (\x00) to match API server framing
	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}

	result := strings.TrimSuffix(line, "\n")
	result = strings.TrimSuffix(result, "\r")
	return result
}
