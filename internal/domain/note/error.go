package note

import "errors"

var (
	ErrNotFound  = errors.New("note not found")
	ErrInvalidID = errors.New("invalid note id")
	ErrNoOwner   = errors.New("note has no owner")
)
