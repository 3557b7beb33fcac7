package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/GLIDER/apitypes"
	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// Status returns a handler reporting the engine snapshot.
// Error logging is centralized in the API server.
func Status(svc *gesture.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		return writeStatus(svc, res)
	}
}

func writeStatus(svc *gesture.Service, res *api.Response) error {
	st := svc.Status()
	b, err := json.Marshal(apitypes.StatusResponse{
		Enabled:       st.Enabled,
		Running:       st.Running,
		HookInstalled: st.HookInstalled,
		GestureCount:  st.GestureCount,
	})
	if err != nil {
		return err
	}
	res.JSON = string(b)
	return nil
}
