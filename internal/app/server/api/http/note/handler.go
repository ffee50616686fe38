package note

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"joddit/internal/app/server/api/http/middleware/auth"
	"joddit/internal/domain/note"
)

type Handler struct {
	service    note.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service note.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.upsertOp(), h.upsert)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	notes, err := h.service.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: notes,
	}, nil
}

func (h *Handler) upsert(ctx context.Context, input *upsertInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	n := input.Body
	n.ID = input.ID

	if err := h.service.Upsert(ctx, userID, n); err != nil {
		if errors.Is(err, note.ErrInvalidID) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return &output{
			Body: response{ID: input.ID, Status: "Error"},
		}, err
	}

	return &output{
		Body: response{
			ID:     input.ID,
			Status: "Ok",
		},
	}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*output, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.SoftDelete(ctx, userID, input.ID); err != nil {
		// Deleting a note the server never saw still converges: report Ok
		// so retried deletes stay idempotent.
		if errors.Is(err, note.ErrNotFound) {
			return &output{
				Body: response{ID: input.ID, Status: "Ok"},
			}, nil
		}
		return &output{
			Body: response{ID: input.ID, Status: "Error"},
		}, err
	}

	return &output{
		Body: response{
			ID:     input.ID,
			Status: "Ok",
		},
	}, nil
}
