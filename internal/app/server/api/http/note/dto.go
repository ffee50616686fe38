package note

import "joddit/internal/domain/note"

type listOutput struct {
	Body note.ListResponse
}

type upsertInput struct {
	ID   string `path:"id" doc:"Note id, assigned by the client"`
	Body note.Note
}

type output struct {
	Body response
}

type response struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type deleteInput struct {
	ID string `path:"id" doc:"Note id"`
}
