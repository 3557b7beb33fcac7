package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/GLIDER/apitypes"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// Ping returns a handler answering with server identity and version.
func Ping(version string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(apitypes.PingResponse{Server: "GLIDER", Version: version})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
