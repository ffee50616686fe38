package note

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "List the user's notes",
		Description: "Returns every live note owned by the authenticated user, newest first. Tombstoned notes are excluded.",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) upsertOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-upsert",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Create or replace a note",
		Description: "Ids are assigned by the client, so the same PUT serves both create and update. Ownership always comes from the session, never from the body.",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "notes-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Soft-delete a note",
		Description: "Marks the note as deleted rather than removing the row, so other devices converge on the tombstone.",
		Tags:        []string{"notes"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
