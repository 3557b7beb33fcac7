package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/Alia5/GLIDER/apitypes"
)

// ActionStreamHandler returns a stream handler that writes one JSON
// ActionEvent line per resolved action until the client disconnects.
func ActionStreamHandler(broker *ActionBroker) StreamHandlerFunc {
	return func(conn net.Conn, req *Request, logger *slog.Logger) error {
		defer conn.Close()

		actions, cancel := broker.Subscribe()
		defer cancel()

		// The client never sends after the request line; a read returning
		// is our disconnect signal.
		closed := make(chan struct{})
		go func() {
			buf := make([]byte, 1)
			for {
				if _, err := conn.Read(buf); err != nil {
					close(closed)
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return nil
			case <-req.Ctx.Done():
				return nil
			case a, ok := <-actions:
				if !ok {
					return nil
				}
				ev := apitypes.ActionEvent{
					Gesture: a.Gesture,
					Binding: a.Binding,
					Kind:    string(a.Kind),
					Action:  a.Action,
					Args:    a.Args,
				}
				data, err := json.Marshal(ev)
				if err != nil {
					return fmt.Errorf("marshal action event: %w", err)
				}
				if _, err := conn.Write(append(data, '\n')); err != nil {
					return nil
				}
			}
		}
	}
}
