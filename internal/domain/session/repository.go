package session

import (
	"context"
	"time"
)

// Repository persists issued sessions. Only the sha256 of a token is
// stored, so a database leak does not leak usable credentials.
type Repository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	Validate(ctx context.Context, tokenHash string) (string, error)
	Delete(ctx context.Context, tokenHash string) error
}
