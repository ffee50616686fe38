package note

import "context"

// Repository is the server-side persistence contract. Upsert overwrites
// all mutable columns on conflict by id; id, user_id and created_at are
// written once. SoftDelete only flags the row, the row itself stays.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Note, error)
	Upsert(ctx context.Context, n Note) error
	SoftDelete(ctx context.Context, userID, noteID string) error
}
