package handler

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// EngineStart returns a handler that starts gesture capture. Starting an
// already-running engine is a no-op, mirroring Service.Start.
func EngineStart(svc *gesture.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if err := svc.Start(); err != nil {
			return api.ErrInternal(fmt.Sprintf("failed to start engine: %v", err))
		}
		return writeStatus(svc, res)
	}
}

// EngineStop returns a handler that stops gesture capture.
func EngineStop(svc *gesture.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		svc.Stop()
		return writeStatus(svc, res)
	}
}
