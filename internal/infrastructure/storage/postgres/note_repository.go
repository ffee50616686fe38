package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"joddit/internal/domain/note"
)

type NoteRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewNoteRepository(pool *pgxpool.Pool, log *slog.Logger) *NoteRepository {
	return &NoteRepository{
		pool: pool,
		log:  log.With("component", "note_repository"),
	}
}

// ListByUser returns the user's non-deleted notes, newest updated_at first.
func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]note.Note, error) {
	const query = `
		SELECT id, user_id, title, content, segments, created_at, updated_at,
		       is_pinned, category, is_deleted
		FROM notes
		WHERE user_id = $1 AND is_deleted = false
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list notes", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	return r.scanNotes(rows)
}

// Upsert inserts or overwrites the row by id. id, user_id and created_at
// are written once; everything else follows the incoming note. Conflicting
// concurrent upserts resolve in transaction order, last writer wins.
func (r *NoteRepository) Upsert(ctx context.Context, n note.Note) error {
	const query = `
		INSERT INTO notes (id, user_id, title, content, segments,
		                   created_at, updated_at, is_pinned, category, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			segments = EXCLUDED.segments,
			updated_at = EXCLUDED.updated_at,
			is_pinned = EXCLUDED.is_pinned,
			category = EXCLUDED.category,
			is_deleted = EXCLUDED.is_deleted`

	segments, err := json.Marshal(n.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Content, segments,
		n.CreatedAt, n.UpdatedAt, n.IsPinned, n.Category, n.IsDeleted,
	)
	if err != nil {
		r.log.Error("failed to upsert note",
			"note_id", n.ID, "user_id", n.UserID, "error", err)
		return fmt.Errorf("upsert note: %w", err)
	}

	return nil
}

// SoftDelete flags the row deleted. The row stays; listings filter it out.
func (r *NoteRepository) SoftDelete(ctx context.Context, userID, noteID string) error {
	const query = `
		UPDATE notes
		SET is_deleted = true
		WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, noteID, userID)
	if err != nil {
		r.log.Error("failed to soft delete note",
			"note_id", noteID, "user_id", userID, "error", err)
		return fmt.Errorf("soft delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return note.ErrNotFound
	}

	return nil
}

func (r *NoteRepository) scanNotes(rows pgx.Rows) ([]note.Note, error) {
	var notes []note.Note

	for rows.Next() {
		var n note.Note
		var segments []byte

		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &segments,
			&n.CreatedAt, &n.UpdatedAt, &n.IsPinned, &n.Category, &n.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}

		if len(segments) > 0 {
			if err := json.Unmarshal(segments, &n.Segments); err != nil {
				// One bad payload must not hide the rest of the set.
				r.log.Warn("discarding malformed segments", "note_id", n.ID, "error", err)
				n.Segments = nil
			}
		}

		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan notes: %w", err)
	}

	return notes, nil
}
