package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/GLIDER/apitypes"
	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/server/api"
)

// GesturesList returns a handler listing the current gesture database
// snapshot as summaries.
func GesturesList(svc *gesture.Service) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		summaries := []apitypes.GestureSummary{}
		for _, g := range svc.Database().Entries() {
			bindings := make([]string, 0, len(g.Bindings))
			for _, b := range g.Bindings {
				if b.Enabled {
					bindings = append(bindings, b.Label)
				}
			}
			summaries = append(summaries, apitypes.GestureSummary{
				Label:    g.Label,
				Tokens:   g.Tokens,
				DirMode:  g.Mode.String(),
				Enabled:  g.Enabled,
				Bindings: bindings,
			})
		}
		b, err := json.Marshal(apitypes.GesturesListResponse{Gestures: summaries})
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
