package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joddit/internal/domain/note"
)

func TestSaveNote_NewNote(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{})

	saved := app.notes.SaveNote(context.Background(), note.Note{Title: "Ideas"})

	assert.NotEmpty(t, saved.ID)
	assert.NotZero(t, saved.CreatedAt)
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)
	assert.Equal(t, note.CategoryUncategorized, saved.Category)
	assert.False(t, saved.IsSynced)

	// Not logged in, so nothing reaches the server.
	assert.Equal(t, 0, remote.upserts)

	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "Ideas", stored[0].Title)
}

func TestSaveNote_PushesWhenLoggedIn(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	saved := app.notes.SaveNote(context.Background(), note.Note{Title: "Synced"})

	assert.True(t, saved.IsSynced)
	assert.Equal(t, "u1", saved.UserID)

	pushed, ok := remote.get(saved.ID)
	require.True(t, ok)
	assert.Equal(t, "Synced", pushed.Title)

	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsSynced)
}

func TestSaveNote_PushFailureKeepsNoteQueued(t *testing.T) {
	remote := newFakeRemote()
	remote.pushErr = errors.New("offline")
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	saved := app.notes.SaveNote(context.Background(), note.Note{Title: "Queued"})

	assert.False(t, saved.IsSynced)
	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.False(t, stored[0].IsSynced)
}

func TestSaveNote_UpdateKeepsCreatedAt(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", Title: "Old", CreatedAt: 111, UpdatedAt: 111},
	}))

	saved := app.notes.SaveNote(context.Background(), note.Note{ID: "n1", Title: "New"})

	assert.Equal(t, int64(111), saved.CreatedAt)
	assert.Greater(t, saved.UpdatedAt, int64(111))

	stored := app.store.ReadAll()
	require.Len(t, stored, 1)
	assert.Equal(t, "New", stored[0].Title)
}

func TestDeleteNote(t *testing.T) {
	t.Run("OnlinePurgesImmediately", func(t *testing.T) {
		remote := newFakeRemote()
		app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

		require.NoError(t, app.store.WriteAll([]note.Note{
			{ID: "n1", UserID: "u1", Title: "Bye", UpdatedAt: 10, IsSynced: true},
		}))

		require.True(t, app.notes.DeleteNote(context.Background(), "n1"))

		assert.Equal(t, 1, remote.deletes)
		assert.Empty(t, app.store.ReadAll())
	})

	t.Run("OfflineKeepsTombstone", func(t *testing.T) {
		remote := newFakeRemote()
		remote.pushErr = errors.New("offline")
		app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

		require.NoError(t, app.store.WriteAll([]note.Note{
			{ID: "n1", UserID: "u1", Title: "Bye", UpdatedAt: 10, IsSynced: true},
		}))

		require.True(t, app.notes.DeleteNote(context.Background(), "n1"))

		stored := app.store.ReadAll()
		require.Len(t, stored, 1)
		assert.True(t, stored[0].IsDeleted)
		assert.False(t, stored[0].IsSynced)
	})

	t.Run("UnknownID", func(t *testing.T) {
		app := newTestApp(newFakeRemote(), &fakeIdentity{})

		assert.False(t, app.notes.DeleteNote(context.Background(), "missing"))
	})
}

func TestGetNotes_OrderAndFilter(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "a", Title: "Old work", Category: "Work", UpdatedAt: 10},
		{ID: "b", Title: "Pinned", Category: "Personal", UpdatedAt: 5, IsPinned: true},
		{ID: "c", Title: "Fresh work", Category: "Work", UpdatedAt: 30},
		{ID: "d", Title: "Gone", Category: "Work", UpdatedAt: 40, IsDeleted: true},
	}))

	all := app.notes.GetNotes(context.Background(), "")
	require.Len(t, all, 3)
	assert.Equal(t, "Pinned", all[0].Title)
	assert.Equal(t, "Fresh work", all[1].Title)
	assert.Equal(t, "Old work", all[2].Title)

	work := app.notes.GetNotes(context.Background(), "Work")
	require.Len(t, work, 2)
	assert.Equal(t, "Fresh work", work[0].Title)
}

func TestGetNote(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "n1", Title: "Here"},
		{ID: "n2", Title: "Deleted", IsDeleted: true},
	}))

	n, ok := app.notes.GetNote("n1")
	require.True(t, ok)
	assert.Equal(t, "Here", n.Title)

	_, ok = app.notes.GetNote("n2")
	assert.False(t, ok)

	_, ok = app.notes.GetNote("nope")
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	require.NoError(t, app.store.WriteAll([]note.Note{
		{ID: "a", Category: "Work"},
		{ID: "b", Category: "Personal"},
		{ID: "c", Category: "Work"},
		{ID: "d", Category: "Secret", IsDeleted: true},
	}))

	assert.Equal(t, []string{"Personal", "Work"}, app.notes.Categories())
}

func TestSeedDefaults(t *testing.T) {
	app := newTestApp(newFakeRemote(), &fakeIdentity{})

	app.notes.SeedDefaults()

	stored := app.store.ReadAll()
	require.Len(t, stored, 2)
	assert.Equal(t, "Product Vision", stored[0].Title)
	assert.True(t, stored[0].IsPinned)
	assert.Equal(t, "Grocery List", stored[1].Title)

	// A second run never duplicates the seeds.
	app.notes.SeedDefaults()
	assert.Len(t, app.store.ReadAll(), 2)
}

func TestBulkSaveNotes(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	saved := app.notes.BulkSaveNotes(context.Background(), []note.Note{
		{Title: "One"},
		{Title: "Two", Category: "Work"},
	})

	require.Len(t, saved, 2)
	for _, n := range saved {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, "u1", n.UserID)
		assert.True(t, n.IsSynced)
	}

	assert.Equal(t, 2, remote.upserts)
	assert.Len(t, app.store.ReadAll(), 2)
}

func TestSaveNote_ReEditDuringPushStaysQueued(t *testing.T) {
	remote := newFakeRemote()
	app := newTestApp(remote, &fakeIdentity{userID: "u1", token: "tok"})

	firstInFlight := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	remote.onUpsert = func(note.Note) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstInFlight)
			<-release
			return nil
		}
		return errors.New("offline")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.notes.SaveNote(context.Background(), note.Note{ID: "n1", Title: "v1"})
	}()

	<-firstInFlight

	// v1's push is still in flight when a newer edit lands, and the
	// newer edit's own push fails.
	time.Sleep(5 * time.Millisecond)
	second := app.notes.SaveNote(context.Background(), note.Note{ID: "n1", Title: "v2"})
	assert.False(t, second.IsSynced)

	close(release)
	<-done

	// v2 never reached the server; v1's late confirmation must not
	// stamp it synced, or it would stay lost forever.
	stored, ok := app.notes.GetNote("n1")
	require.True(t, ok)
	assert.Equal(t, "v2", stored.Title)
	assert.False(t, stored.IsSynced)

	server, ok := remote.get("n1")
	require.True(t, ok)
	assert.Equal(t, "v1", server.Title)
}
