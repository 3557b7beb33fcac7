package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/GLIDER/apitypes"
	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// GesturesReload returns a handler that re-reads the gesture store from disk
// and hot-swaps the engine's database. A malformed file degrades to an empty
// database, same as at startup.
func GesturesReload(svc *gesture.Service, path string) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		db := gesture.LoadDatabase(path, logger)
		if err := svc.UpdateDatabase(db); err != nil {
			return api.ErrInternal(fmt.Sprintf("failed to swap database: %v", err))
		}
		logger.Info("gesture database reloaded", "path", path, "gestures", db.Len())
		b, err := json.Marshal(apitypes.GesturesReloadResponse{GestureCount: db.Len()})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
