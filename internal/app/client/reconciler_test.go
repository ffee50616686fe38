package client

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	gosync "sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"joddit/internal/domain/note"
)

type fakeIdentity struct {
	mu     gosync.Mutex
	userID string
	token  string
}

func (f *fakeIdentity) UserID() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID, f.userID != ""
}

func (f *fakeIdentity) Credential() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeIdentity) set(userID, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID = userID
	f.token = token
}

type fakeRemote struct {
	mu       gosync.Mutex
	notes    map[string]note.Note
	fetchErr error
	pushErr  error
	upserts  int
	deletes  int
	fetches  int
	onFetch  func()
	onUpsert func(n note.Note) error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{notes: make(map[string]note.Note)}
}

func (f *fakeRemote) Fetch(_ context.Context, _ string) ([]note.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetches++
	if f.onFetch != nil {
		f.onFetch()
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	var out []note.Note
	for _, n := range f.notes {
		if !n.IsDeleted {
			out = append(out, n.Clone())
		}
	}
	return out, nil
}

func (f *fakeRemote) Upsert(_ context.Context, _ string, n note.Note) error {
	// Hook runs unlocked so tests can overlap in-flight pushes.
	if f.onUpsert != nil {
		if err := f.onUpsert(n); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pushErr != nil {
		return f.pushErr
	}
	f.upserts++
	f.notes[n.ID] = n.Clone()
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, _ string, noteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pushErr != nil {
		return f.pushErr
	}
	f.deletes++
	if n, ok := f.notes[noteID]; ok {
		n.IsDeleted = true
		f.notes[noteID] = n
	} else {
		f.notes[noteID] = note.Note{ID: noteID, IsDeleted: true}
	}
	return nil
}

func (f *fakeRemote) get(id string) (note.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[id]
	return n, ok
}

func newTestApp(remote RemoteStore, identity Identity) *App {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &App{
		log:      log,
		store:    NewMemoryStore(),
		remote:   remote,
		identity: identity,
	}
	app.notes = NewNoteService(app)
	app.reconciler = NewReconciler(app)

	return app
}

func TestSync_NotAuthenticated(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	_, err := app.Sync(context.Background())

	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSync_PushesUnsyncedBeforePulling(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "Draft", UpdatedAt: 100},
	}))

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pushed)
	pushed, ok := remote.get("n1")
	require.True(t, ok)
	assert.Equal(t, "Draft", pushed.Title)

	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsSynced)
}

func TestSync_LastWriterWins(t *testing.T) {
	t.Run("RemoteNewerReplacesLocal", func(t *testing.T) {
		remote := newFakeRemote()
		remote.notes["n1"] = note.Note{ID: "n1", UserID: "u1", Title: "Server edit", UpdatedAt: 200}

		app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})
		require.NoError(t, app.store.WriteAll([]note.Note{
			{ID: "n1", UserID: "u1", Title: "Old local", UpdatedAt: 100, IsSynced: true},
		}))

		result, err := app.Sync(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, result.Pulled)
		stored := app.store.ReadAll()
		require.Len(t, stored, 1)
		assert.Equal(t, "Server edit", stored[0].Title)
		assert.True(t, stored[0].IsSynced)
	})

	t.Run("LocalWinsTies", func(t *testing.T) {
		remote := newFakeRemote()
		remote.notes["n1"] = note.Note{ID: "n1", UserID: "u1", Title: "Server edit", UpdatedAt: 100}

		app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})
		require.NoError(t, app.store.WriteAll([]note.Note{
			{ID: "n1", UserID: "u1", Title: "Local edit", UpdatedAt: 100, IsSynced: true},
		}))

		result, err := app.Sync(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 0, result.Pulled)
		stored := app.store.ReadAll()
		assert.Equal(t, "Local edit", stored[0].Title)
	})
}

func TestSync_AdoptsUnknownServerNotes(t *testing.T) {
	remote := newFakeRemote()
	remote.notes["n2"] = note.Note{ID: "n2", UserID: "u1", Title: "From other device", UpdatedAt: 50}

	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pulled)
	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "From other device", stored[0].Title)
	assert.True(t, stored[0].IsSynced)
}

func TestSync_ReOwnership(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	// Notes written before any login carry no owner.
	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", Title: "Offline note", UpdatedAt: 10, IsSynced: true},
	}))

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Claimed)
	assert.Equal(t, 1, result.Pushed)

	pushed, ok := remote.get("n1")
	require.True(t, ok)
	assert.Equal(t, "u1", pushed.UserID)

	stored := app.store.ReadAll()
	assert.Equal(t, "u1", stored[0].UserID)
	assert.True(t, stored[0].IsSynced)
}

func TestSync_SoftDeleteConverges(t *testing.T) {
	remote := newFakeRemote()
	remote.notes["n1"] = note.Note{ID: "n1", UserID: "u1", Title: "Doomed", UpdatedAt: 10}

	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})
	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "Doomed", UpdatedAt: 20, IsDeleted: true},
	}))

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Purged)
	assert.Equal(t, 1, remote.deletes)

	// The confirmed tombstone leaves the local store entirely.
	assert.Empty(t, app.store.ReadAll())
	assert.Empty(t, result.Notes)
}

func TestSync_UnconfirmedTombstoneSurvives(t *testing.T) {
	remote := newFakeRemote()
	remote.pushErr = errors.New("boom")

	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})
	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", UpdatedAt: 20, IsDeleted: true},
	}))

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Purged)
	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsDeleted)
	assert.False(t, stored[0].IsSynced)
}

func TestSync_FailsSoftOnOutage(t *testing.T) {
	remote := newFakeRemote()
	remote.fetchErr = errors.New("connection refused")
	remote.pushErr = errors.New("connection refused")

	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})
	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "Keep me", UpdatedAt: 10},
	}))

	result, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Pushed)
	assert.Equal(t, 0, result.Pulled)

	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "Keep me", stored[0].Title)
	assert.False(t, stored[0].IsSynced)
}

func TestSync_Idempotent(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "One", UpdatedAt: 10},
		{ID: "n2", UserID: "u1", Title: "Two", UpdatedAt: 20},
	}))

	first, err := app.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Pushed)

	afterFirst := app.store.ReadAll()

	second, err := app.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Pushed)
	assert.Equal(t, 0, second.Pulled)
	assert.Equal(t, afterFirst, app.store.ReadAll())
}

func TestSync_InProgress(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{userID: "u1", token: "tok"})

	app.reconciler.mu.Lock()
	app.reconciler.isSyncing = true
	app.reconciler.mu.Unlock()

	_, err := app.Sync(context.Background())

	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestSync_DiscardsStaleRunOnIdentityChange(t *testing.T) {
	identity := &fakeIdentity{userID: "u1", token: "tok"}
	remote := newFakeRemote()
	remote.onFetch = func() {
		// Another process logs in as a different account mid-run.
		identity.set("u2", "tok2")
	}

	app := newTestApp(remote, identity)
	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "Before", UpdatedAt: 10, IsSynced: true},
	}))

	_, err := app.Sync(context.Background())

	assert.ErrorIs(t, err, ErrIdentityChanged)

	// The snapshot from the old identity is not written back.
	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "u1", stored[0].UserID)
}

func TestSync_TwoDevices(t *testing.T) {
	// Shared server, two devices for the same account.
	remote := newFakeRemote()
	deviceA := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tokA"})
	deviceB := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tokB"})

	// A writes a note and syncs.
	require.NoError(t, deviceA.store.WriteAll([]note.Note{
		{ID: "n1", UserID: "u1", Title: "Meeting notes", Content: "v1", UpdatedAt: 100},
	}))
	_, err := deviceA.Sync(context.Background())
	require.NoError(t, err)

	// B picks it up.
	_, err = deviceB.Sync(context.Background())
	require.NoError(t, err)
	storedB := deviceB.store.ReadAll()
	require.Len(t, storedB, 1)
	assert.Equal(t, "v1", storedB[0].Content)

	// B edits with a later timestamp and syncs; A converges on B's edit.
	storedB[0].Content = "v2"
	storedB[0].UpdatedAt = 200
	storedB[0].IsSynced = false
	require.NoError(t, deviceB.store.WriteAll(storedB))

	_, err = deviceB.Sync(context.Background())
	require.NoError(t, err)
	_, err = deviceA.Sync(context.Background())
	require.NoError(t, err)

	storedA := deviceA.store.ReadAll()
	require.Len(t, storedA, 1)
	assert.Equal(t, "v2", storedA[0].Content)

	// B deletes: its copy is purged once the server confirms, and the
	// server row becomes a tombstone new fetches no longer return.
	require.True(t, deviceB.notes.DeleteNote(context.Background(), "n1"))
	_, err = deviceB.Sync(context.Background())
	require.NoError(t, err)

	assert.Empty(t, deviceB.store.ReadAll())

	serverCopy, ok := remote.get("n1")
	require.True(t, ok)
	assert.True(t, serverCopy.IsDeleted)
}

func TestSync_LocalReadsDoNotBlockOnNetwork(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	saved := app.notes.SaveNote(context.Background(), note.Note{Title: "Draft"})

	fetchStarted := make(chan struct{})
	release := make(chan struct{})
	remote.onFetch = func() {
		close(fetchStarted)
		<-release
	}

	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		_, _ = app.reconciler.Sync(context.Background())
	}()

	<-fetchStarted

	// The server is stalled mid-fetch; reads must answer from the
	// local store anyway.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		app.notes.GetNote(saved.ID)
	}()

	select {
	case <-readDone:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("local read blocked behind the sync run's network call")
	}

	close(release)
	<-syncDone
}

func TestSync_DiscardsRunWhenStoreChangesMidRun(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	remote.notes["r1"] = note.Note{ID: "r1", UserID: "u1", Title: "Remote", UpdatedAt: 100}

	// A save lands while the reconciler is off the lock talking to the
	// server.
	remote.onFetch = func() {
		app.storeMu.Lock()
		_ = app.persistLocked([]note.Note{
			{ID: "l1", UserID: "u1", Title: "Mid-run edit", UpdatedAt: note.Now()},
		})
		app.storeMu.Unlock()
	}

	_, err := app.reconciler.Sync(context.Background())
	require.ErrorIs(t, err, ErrStoreChanged)

	// The mid-run write survives; the stale merge result was dropped.
	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "Mid-run edit", stored[0].Title)

	// The next run starts from a fresh snapshot and folds the server
	// note in.
	remote.onFetch = nil
	result, err := app.reconciler.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pulled)

	stored = app.store.ReadAll()
	assert.Len(t, stored, 2)
}
