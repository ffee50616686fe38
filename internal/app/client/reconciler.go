package client

import (
	"context"
	"errors"
	"time"

	gosync "sync"

	"golang.org/x/exp/slog"

	"joddit/internal/domain/note"
)

var (
	ErrSyncInProgress   = errors.New("sync already in progress")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrIdentityChanged  = errors.New("identity changed during sync")
	ErrStoreChanged     = errors.New("local store changed during sync")
)

// SyncResult describes one reconcile run.
type SyncResult struct {
	Pushed    int           `json:"pushed"`
	Pulled    int           `json:"pulled"`
	Claimed   int           `json:"claimed"`
	Purged    int           `json:"purged"`
	Notes     []note.Note   `json:"notes"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Reconciler converges the local store and the server on one view of
// the notebook. The local copy is authoritative between runs; each run
// pushes unsynced local changes first, then folds in the server's copy
// with last-writer-wins by client timestamp.
type Reconciler struct {
	app       *App
	log       *slog.Logger
	mu        gosync.Mutex
	isSyncing bool
	lastSync  time.Time
}

func NewReconciler(app *App) *Reconciler {
	return &Reconciler{
		app: app,
		log: app.log.With("component", "reconciler"),
	}
}

// Sync runs one reconcile pass. Only one run may be in flight; overlapping
// callers get ErrSyncInProgress and simply wait for the next tick.
func (r *Reconciler) Sync(ctx context.Context) (*SyncResult, error) {
	userID, haveUser := r.app.identity.UserID()
	token, haveToken := r.app.identity.Credential()
	if !haveUser || !haveToken {
		return nil, ErrNotAuthenticated
	}

	r.mu.Lock()
	if r.isSyncing {
		r.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	r.isSyncing = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.isSyncing = false
		r.lastSync = time.Now()
		r.mu.Unlock()
	}()

	result := &SyncResult{StartTime: time.Now()}

	// Snapshot the store, then reconcile off the lock. Pushes and the
	// fetch can take seconds and local reads must keep answering
	// meanwhile; the generation check before the commit catches any
	// write that landed in between.
	r.app.storeMu.Lock()
	local := r.app.store.ReadAll()
	startGen := r.app.storeGen
	r.app.storeMu.Unlock()

	// Re-ownership pass: notes written before this login (or under a
	// previous account) are claimed by the current user and queued for
	// push, so a fresh device inherits everything created offline.
	for i := range local {
		if local[i].UserID != userID {
			local[i].UserID = userID
			local[i].IsSynced = false
			result.Claimed++
		}
	}

	result.Pushed = r.push(ctx, token, local)

	remote, err := r.app.remote.Fetch(ctx, token)
	if err != nil {
		// Fail soft: an unreachable server means this run pushes what it
		// can and keeps the local view as is.
		r.log.Warn("fetch from server failed", "error", err)
		remote = nil
	}

	merged, pulled := merge(local, remote)
	result.Pulled = pulled

	// A login or logout while this run was talking to the server makes
	// the snapshot stale. Discard instead of writing another account's
	// notes over the new one's.
	if currentID, ok := r.app.identity.UserID(); !ok || currentID != userID {
		r.log.Warn("identity changed mid-run, discarding result")
		return nil, ErrIdentityChanged
	}

	final := make([]note.Note, 0, len(merged))
	for _, n := range merged {
		if n.IsDeleted && n.IsSynced {
			// The server has confirmed this tombstone, nothing left to tell
			// anyone about it.
			result.Purged++
			continue
		}
		final = append(final, n)
	}

	// Skip the write when the run was a no-op so an idle tick costs no I/O.
	if result.Claimed > 0 || result.Pushed > 0 || result.Pulled > 0 || result.Purged > 0 {
		r.app.storeMu.Lock()
		if r.app.storeGen != startGen {
			// A save or delete landed while this run was off the lock.
			// Committing the merge would overwrite it, so discard; the
			// next run starts from a fresh snapshot.
			r.app.storeMu.Unlock()
			r.log.Warn("local store changed mid-run, discarding result")
			return nil, ErrStoreChanged
		}
		if err := r.app.persistLocked(final); err != nil {
			r.log.Error("persist merged notes failed", "error", err)
		}
		r.app.storeMu.Unlock()
	}

	live := make([]note.Note, 0, len(final))
	for _, n := range final {
		if !n.IsDeleted {
			live = append(live, n.Clone())
		}
	}
	result.Notes = live

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	r.log.Info("sync finished",
		"pushed", result.Pushed,
		"pulled", result.Pulled,
		"claimed", result.Claimed,
		"purged", result.Purged,
		"duration", result.Duration,
	)

	return result, nil
}

// push sends every unsynced note to the server, marking each as synced
// on success. Failures leave the note queued for the next run.
func (r *Reconciler) push(ctx context.Context, token string, local []note.Note) int {
	pushed := 0

	for i := range local {
		if local[i].IsSynced {
			continue
		}

		var err error
		if local[i].IsDeleted {
			err = r.app.remote.Delete(ctx, token, local[i].ID)
		} else {
			err = r.app.remote.Upsert(ctx, token, local[i])
		}

		if err != nil {
			r.log.Warn("push failed", "note_id", local[i].ID, "error", err)
			continue
		}

		local[i].IsSynced = true
		pushed++
	}

	return pushed
}

// merge folds the server's copy into the local snapshot. The local note
// wins whenever its updatedAt is greater or equal, which keeps an edit
// made moments ago from being clobbered by a stale server row. Server
// notes unknown locally are adopted as already synced.
func merge(local, remote []note.Note) ([]note.Note, int) {
	index := make(map[string]int, len(local))
	for i := range local {
		index[local[i].ID] = i
	}

	merged := make([]note.Note, len(local))
	copy(merged, local)

	pulled := 0
	for _, rn := range remote {
		i, exists := index[rn.ID]
		if !exists {
			rn.IsSynced = true
			merged = append(merged, rn)
			pulled++
			continue
		}

		if rn.UpdatedAt > merged[i].UpdatedAt {
			rn.IsSynced = true
			merged[i] = rn
			pulled++
		}
	}

	return merged, pulled
}

// StartAutoSync reconciles on a fixed interval until the context ends.
func (r *Reconciler) StartAutoSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("auto sync stopped")
			return
		case <-ticker.C:
			if _, err := r.Sync(ctx); err != nil {
				switch {
				case errors.Is(err, ErrNotAuthenticated),
					errors.Is(err, ErrSyncInProgress),
					errors.Is(err, ErrStoreChanged):
					r.log.Debug("sync skipped", "reason", err)
				default:
					r.log.Error("sync failed", "error", err)
				}
			}
		}
	}
}
