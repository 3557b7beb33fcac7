package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/Alia5/GLIDER/apitypes"
)

// Client provides a high-level interface to the GLIDER API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the GLIDER API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the GLIDER server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// Status returns the engine's current snapshot.
func (c *Client) Status() (*apitypes.StatusResponse, error) {
	return c.StatusCtx(context.Background())
}

func (c *Client) StatusCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	const path = "status"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatusResponse](raw)
}

// EngineStart enables gesture capture. A no-op when already running.
func (c *Client) EngineStart() (*apitypes.StatusResponse, error) {
	return c.EngineStartCtx(context.Background())
}

func (c *Client) EngineStartCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	const path = "engine/start"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatusResponse](raw)
}

// EngineStop disables gesture capture.
func (c *Client) EngineStop() (*apitypes.StatusResponse, error) {
	return c.EngineStopCtx(context.Background())
}

func (c *Client) EngineStopCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	const path = "engine/stop"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatusResponse](raw)
}

// GesturesList retrieves the current gesture database as summaries.
func (c *Client) GesturesList() (*apitypes.GesturesListResponse, error) {
	return c.GesturesListCtx(context.Background())
}

func (c *Client) GesturesListCtx(ctx context.Context) (*apitypes.GesturesListResponse, error) {
	const path = "gestures/list"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.GesturesListResponse](raw)
}

// GesturesReload makes the server re-read the gesture store from disk and
// hot-swap the running database.
func (c *Client) GesturesReload() (*apitypes.GesturesReloadResponse, error) {
	return c.GesturesReloadCtx(context.Background())
}

func (c *Client) GesturesReloadCtx(ctx context.Context) (*apitypes.GesturesReloadResponse, error) {
	const path = "gestures/reload"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.GesturesReloadResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
