package client

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"joddit/internal/domain/note"
)

// NoteService is what the commands talk to. Every operation works
// against the local store first; remote pushes are opportunistic and
// failures leave the note queued for the next reconcile run.
type NoteService struct {
	app *App
	log *slog.Logger
}

func NewNoteService(app *App) *NoteService {
	return &NoteService{
		app: app,
		log: app.log.With("component", "note_service"),
	}
}

// GetNotes returns live notes, pinned first, then newest first. An empty
// category returns everything. When logged in it also kicks off a
// background reconcile so a re-read soon after sees the server's edits.
func (s *NoteService) GetNotes(ctx context.Context, category string) []note.Note {
	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()
	s.app.storeMu.Unlock()

	if s.app.IsAuthenticated() {
		go func() {
			if _, err := s.app.reconciler.Sync(ctx); err != nil {
				s.log.Debug("background sync skipped", "reason", err)
			}
		}()
	}

	notes := make([]note.Note, 0, len(all))
	for _, n := range all {
		if n.IsDeleted {
			continue
		}
		if category != "" && n.Category != category {
			continue
		}
		notes = append(notes, n)
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].IsPinned != notes[j].IsPinned {
			return notes[i].IsPinned
		}
		return notes[i].UpdatedAt > notes[j].UpdatedAt
	})

	return notes
}

// GetNote looks one note up by id.
func (s *NoteService) GetNote(id string) (note.Note, bool) {
	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()
	s.app.storeMu.Unlock()

	for _, n := range all {
		if n.ID == id && !n.IsDeleted {
			return n, true
		}
	}

	return note.Note{}, false
}

// SaveNote creates or updates a note. The local write is synchronous;
// the remote push is attempted right away but its failure only means
// the note stays unsynced.
func (s *NoteService) SaveNote(ctx context.Context, n note.Note) note.Note {
	now := note.Now()

	if n.ID == "" {
		n.ID = uuid.NewString()
		n.CreatedAt = now
	}
	if n.Category == "" {
		n.Category = note.CategoryUncategorized
	}
	if userID, ok := s.app.identity.UserID(); ok {
		n.UserID = userID
	}
	n.UpdatedAt = now
	n.IsSynced = false

	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()

	replaced := false
	for i := range all {
		if all[i].ID == n.ID {
			if n.CreatedAt == 0 {
				n.CreatedAt = all[i].CreatedAt
			}
			all[i] = n
			replaced = true
			break
		}
	}
	if !replaced {
		if n.CreatedAt == 0 {
			n.CreatedAt = now
		}
		all = append(all, n)
	}

	if err := s.app.persistLocked(all); err != nil {
		s.log.Error("save note failed", "note_id", n.ID, "error", err)
	}
	s.app.storeMu.Unlock()

	if synced := s.tryPush(ctx, n); synced {
		n.IsSynced = true
		s.markSynced(n.ID, n.UpdatedAt)
	}

	return n
}

// BulkSaveNotes stamps and stores several notes in one write, pushing
// each one opportunistically. Used for first-run seeding and imports.
func (s *NoteService) BulkSaveNotes(ctx context.Context, notes []note.Note) []note.Note {
	now := note.Now()
	userID, _ := s.app.identity.UserID()

	for i := range notes {
		if notes[i].ID == "" {
			notes[i].ID = uuid.NewString()
			notes[i].CreatedAt = now
		}
		if notes[i].Category == "" {
			notes[i].Category = note.CategoryUncategorized
		}
		if userID != "" {
			notes[i].UserID = userID
		}
		notes[i].UpdatedAt = now
		notes[i].IsSynced = false
	}

	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()
	index := make(map[string]int, len(all))
	for i := range all {
		index[all[i].ID] = i
	}

	for _, n := range notes {
		if i, ok := index[n.ID]; ok {
			if n.CreatedAt == 0 {
				n.CreatedAt = all[i].CreatedAt
			}
			all[i] = n
		} else {
			all = append(all, n)
		}
	}

	if err := s.app.persistLocked(all); err != nil {
		s.log.Error("bulk save failed", "count", len(notes), "error", err)
	}
	s.app.storeMu.Unlock()

	for i := range notes {
		if s.tryPush(ctx, notes[i]) {
			notes[i].IsSynced = true
			s.markSynced(notes[i].ID, notes[i].UpdatedAt)
		}
	}

	return notes
}

// DeleteNote tombstones a note locally and attempts the remote delete
// right away. A confirmed delete purges the row entirely; otherwise the
// tombstone waits for a later reconcile run.
func (s *NoteService) DeleteNote(ctx context.Context, id string) bool {
	now := note.Now()

	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()

	found := false
	for i := range all {
		if all[i].ID == id && !all[i].IsDeleted {
			all[i].IsDeleted = true
			all[i].IsSynced = false
			all[i].UpdatedAt = now
			found = true
			break
		}
	}

	if !found {
		s.app.storeMu.Unlock()
		return false
	}

	if err := s.app.persistLocked(all); err != nil {
		s.log.Error("delete note failed", "note_id", id, "error", err)
	}
	s.app.storeMu.Unlock()

	token, haveToken := s.app.identity.Credential()
	if _, haveUser := s.app.identity.UserID(); !haveUser || !haveToken {
		return true
	}

	if err := s.app.remote.Delete(ctx, token, id); err != nil {
		s.log.Warn("remote delete failed, tombstone kept", "note_id", id, "error", err)
		return true
	}

	s.app.storeMu.Lock()
	defer s.app.storeMu.Unlock()

	all = s.app.store.ReadAll()
	kept := all[:0]
	for _, n := range all {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if err := s.app.persistLocked(kept); err != nil {
		s.log.Error("purge after delete failed", "note_id", id, "error", err)
	}

	return true
}

// Categories returns the distinct categories of live notes, sorted.
func (s *NoteService) Categories() []string {
	s.app.storeMu.Lock()
	all := s.app.store.ReadAll()
	s.app.storeMu.Unlock()

	seen := make(map[string]bool)
	for _, n := range all {
		if !n.IsDeleted {
			seen[n.Category] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return categories
}

// SeedDefaults writes the starter notes on a brand-new device. A store
// that already holds anything, tombstones included, is left alone.
func (s *NoteService) SeedDefaults() {
	now := note.Now()

	s.app.storeMu.Lock()
	defer s.app.storeMu.Unlock()

	if len(s.app.store.ReadAll()) > 0 {
		return
	}

	seeds := []note.Note{
		{
			ID:        uuid.NewString(),
			Title:     "Product Vision",
			Content:   "Capture every idea the moment it happens. Notes live on the device first and follow you once you sign in.",
			CreatedAt: now,
			UpdatedAt: now,
			IsPinned:  true,
			Category:  "Ideas",
		},
		{
			ID:        uuid.NewString(),
			Title:     "Grocery List",
			Content:   "Milk, eggs, bread, coffee.",
			CreatedAt: now,
			UpdatedAt: now,
			Category:  "Personal",
		},
	}

	if err := s.app.persistLocked(seeds); err != nil {
		s.log.Warn("seeding default notes failed", "error", err)
	}
}

// tryPush sends one note to the server if a login is present. Returns
// whether the server accepted it.
func (s *NoteService) tryPush(ctx context.Context, n note.Note) bool {
	token, haveToken := s.app.identity.Credential()
	if _, haveUser := s.app.identity.UserID(); !haveUser || !haveToken {
		return false
	}

	if err := s.app.remote.Upsert(ctx, token, n); err != nil {
		s.log.Warn("opportunistic push failed", "note_id", n.ID, "error", err)
		return false
	}

	return true
}

// markSynced flips the sync flag for exactly the version that reached
// the server. A note re-edited while its push was in flight keeps
// IsSynced false so the newer version stays queued.
func (s *NoteService) markSynced(id string, updatedAt int64) {
	s.app.storeMu.Lock()
	defer s.app.storeMu.Unlock()

	all := s.app.store.ReadAll()
	for i := range all {
		if all[i].ID == id {
			if all[i].UpdatedAt != updatedAt {
				return
			}
			all[i].IsSynced = true
			break
		}
	}
	if err := s.app.persistLocked(all); err != nil {
		s.log.Warn("sync-status update failed", "note_id", id, "error", err)
	}
}
