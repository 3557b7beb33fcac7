package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	apitypes "github.com/Alia5/GLIDER/apitypes"
)

// ActionStream is a long-lived subscription to resolved gesture actions.
// The server writes one JSON ActionEvent line per resolved trigger-up.
type ActionStream struct {
	conn   net.Conn
	r      *bufio.Reader
	mu     sync.Mutex
	closed bool
}

// OpenActionStream attaches to the server's action stream. The connection
// stays open until Close or server shutdown.
func (c *Client) OpenActionStream(ctx context.Context) (*ActionStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte("actions/stream\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	// Long-lived connection: drop the request/response deadlines.
	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	return &ActionStream{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Next blocks until the next action event arrives. An error line from the
// server is surfaced as *apitypes.ApiError.
func (s *ActionStream) Next() (*apitypes.ActionEvent, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("stream closed")
	}
	s.mu.Unlock()

	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal(line, &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var ev apitypes.ActionEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("decode action event: %w", err)
	}
	return &ev, nil
}

// Events reads action events into a channel until ctx is done or the stream
// fails; the first terminal error is delivered on the error channel.
func (s *ActionStream) Events(ctx context.Context, chSize int) (<-chan apitypes.ActionEvent, <-chan error) {
	events := make(chan apitypes.ActionEvent, chSize)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		for {
			ev, err := s.Next()
			if err != nil {
				errCh <- err
				return
			}
			select {
			case events <- *ev:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return events, errCh
}

// Close terminates the subscription.
func (s *ActionStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
