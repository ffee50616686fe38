package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Handler answers the probe clients hit before deciding whether to
// sync. "OK" means the process is serving requests; it says nothing
// about the database, so a degraded server still lets clients queue
// their pushes for a later run.
type Handler struct {
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health probe")

	return &Output{
		Body: Response{
			Status: "OK",
		},
	}, nil
}
