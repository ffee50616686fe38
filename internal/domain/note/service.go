package note

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
)

// Servicer defines the business logic for note operations on the server.
type Servicer interface {
	List(ctx context.Context, userID string) (ListResponse, error)
	Upsert(ctx context.Context, userID string, n Note) error
	SoftDelete(ctx context.Context, userID, noteID string) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// List returns the caller's non-deleted notes, newest first.
func (s *Service) List(ctx context.Context, userID string) (ListResponse, error) {
	if userID == "" {
		return ListResponse{}, ErrNoOwner
	}

	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return ListResponse{}, fmt.Errorf("list notes: %w", err)
	}

	return ListResponse{
		Notes: notes,
		Total: len(notes),
	}, nil
}

// Upsert stores the note under the authenticated owner. Ownership comes
// from the session, never from the payload, so one client cannot write
// into another account's rows.
func (s *Service) Upsert(ctx context.Context, userID string, n Note) error {
	if userID == "" {
		return ErrNoOwner
	}
	if n.ID == "" {
		return ErrInvalidID
	}

	n.UserID = userID
	if n.Category == "" {
		n.Category = CategoryUncategorized
	}
	if n.UpdatedAt == 0 {
		n.UpdatedAt = Now()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = n.UpdatedAt
	}

	if err := s.repo.Upsert(ctx, n); err != nil {
		s.log.Error("upsert failed", "note_id", n.ID, "user_id", userID, "error", err)
		return fmt.Errorf("upsert note: %w", err)
	}

	return nil
}

// SoftDelete flags the note deleted without removing the row.
func (s *Service) SoftDelete(ctx context.Context, userID, noteID string) error {
	if userID == "" {
		return ErrNoOwner
	}
	if noteID == "" {
		return ErrInvalidID
	}

	if err := s.repo.SoftDelete(ctx, userID, noteID); err != nil {
		s.log.Error("soft delete failed", "note_id", noteID, "user_id", userID, "error", err)
		return fmt.Errorf("soft delete note: %w", err)
	}

	return nil
}
