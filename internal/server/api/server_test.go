package api_test

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/GLIDER/apiclient"
	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/log"
	"github.com/Alia5/GLIDER/internal/server/api"
	"github.com/Alia5/GLIDER/internal/server/api/handler"
	glidertest "github.com/Alia5/GLIDER/internal/testing"
)

func startAuthServer(t *testing.T, password string) (addr string, closeFn func()) {
	t.Helper()

	hook := glidertest.NewMockHook()
	svc := gesture.NewService(gesture.Config{}, nil, gesture.Backends{Hook: hook}, slog.Default(), log.NewRaw(nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr = ln.Addr().String()
	_ = ln.Close()

	apiSrv := api.New(svc, addr, api.ServerConfig{Addr: addr, Password: password}, slog.Default())
	apiSrv.Router().Register("ping", handler.Ping("test"))
	require.NoError(t, apiSrv.Start())

	return addr, func() {
		apiSrv.Close()
		svc.Stop()
	}
}

func TestAPIServerAuth(t *testing.T) {
	addr, closeFn := startAuthServer(t, "hunter2hunter2")
	defer closeFn()

	// Correct password round-trips over the encrypted connection.
	c := apiclient.NewTransportWithPassword(addr, "hunter2hunter2")
	line, err := c.Do("ping", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, line, `"server":"GLIDER"`)

	// Wrong password is rejected during the handshake.
	c = apiclient.NewTransportWithPassword(addr, "wrong")
	_, err = c.Do("ping", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid password")

	// Plaintext clients never get a response from an authed server.
	c = apiclient.NewTransport(addr)
	line, err = c.Do("ping", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestAPIServerNoAuth(t *testing.T) {
	addr, closeFn := startAuthServer(t, "")
	defer closeFn()

	c := apiclient.NewTransport(addr)
	line, err := c.Do("ping", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, line, `"version":"test"`)
}

func TestAPIServerBadRequests(t *testing.T) {
	addr, closeFn := startAuthServer(t, "")
	defer closeFn()

	// Empty request
	line := glidertest.ExecCmd(t, addr, "")
	assert.Contains(t, line, `"status":400`)

	// Missing terminator: the server gives up on EOF without a response.
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	_, _ = conn.Write([]byte("ping"))
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())
	buf := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ := conn.Read(buf)
	assert.Zero(t, n)
	conn.Close()
}
