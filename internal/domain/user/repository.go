package user

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, id, email, passwordHash string) error
	FindByEmail(ctx context.Context, email string) (User, error)
}
