package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// StatusResponse mirrors the engine's point-in-time snapshot.
type StatusResponse struct {
	Enabled       bool `json:"enabled"`
	Running       bool `json:"running"`
	HookInstalled bool `json:"hookInstalled"`
	GestureCount  int  `json:"gestureCount"`
}

// GestureSummary is one gesture record as exposed over the API. Bindings
// lists the binding labels in wheel-cycle order.
type GestureSummary struct {
	Label    string   `json:"label"`
	Tokens   string   `json:"tokens"`
	DirMode  string   `json:"dirMode"`
	Enabled  bool     `json:"enabled"`
	Bindings []string `json:"bindings"`
}

type GesturesListResponse struct {
	Gestures []GestureSummary `json:"gestures"`
}

type GesturesReloadResponse struct {
	GestureCount int `json:"gestureCount"`
}

// ActionEvent is one resolved action as published on the actions stream.
type ActionEvent struct {
	Gesture string   `json:"gesture"`
	Binding string   `json:"binding"`
	Kind    string   `json:"kind"`
	Action  string   `json:"action"`
	Args    []string `json:"args,omitempty"`
}
