package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/visionguard/visionguard/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := openStore(t)

	created, err := s.Create("cam-01.mp4", true, 150, 2.34, store.StatusCompleted, nil)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.MotionDetected)
	require.Equal(t, 150, created.FramesAnalyzed)
	require.Nil(t, created.ErrorMessage)
	require.False(t, created.CreatedAt.IsZero())

	fetched, err := s.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, created.ID, fetched.ID)
	require.Equal(t, "cam-01.mp4", fetched.Filename)
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	a, err := s.GetByID(9999)
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestListPaginationAndFilter(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 5; i++ {
		status := store.StatusCompleted
		if i%2 == 1 {
			status = store.StatusFailed
		}
		_, err := s.Create("clip.mp4", false, 10, 0.5, status, nil)
		require.NoError(t, err)
	}

	all, err := s.List(0, 100, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	// Newest first.
	require.Greater(t, all[0].ID, all[4].ID)

	page, err := s.List(2, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)

	failed, err := s.List(0, 100, store.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 2)

	total, err := s.CountTotal()
	require.NoError(t, err)
	require.Equal(t, 5, total)

	completed, err := s.CountByStatus(store.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, 3, completed)
}

func TestGetByFilename(t *testing.T) {
	s := openStore(t)

	_, err := s.Create("a.mp4", false, 5, 0.1, store.StatusCompleted, nil)
	require.NoError(t, err)
	_, err = s.Create("b.mp4", true, 8, 0.2, store.StatusCompleted, nil)
	require.NoError(t, err)
	_, err = s.Create("a.mp4", true, 6, 0.3, store.StatusCompleted, nil)
	require.NoError(t, err)

	matches, err := s.GetByFilename("a.mp4")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.True(t, matches[0].MotionDetected, "newest record first")
}

func TestUpdateStatus(t *testing.T) {
	s := openStore(t)

	created, err := s.Create("c.mp4", false, 0, 0, store.StatusPending, nil)
	require.NoError(t, err)

	msg := "decode failed"
	updated, err := s.UpdateStatus(created.ID, store.StatusFailed, &msg)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, store.StatusFailed, updated.Status)
	require.NotNil(t, updated.ErrorMessage)
	require.Equal(t, "decode failed", *updated.ErrorMessage)

	missing, err := s.UpdateStatus(12345, store.StatusCompleted, nil)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestDelete(t *testing.T) {
	s := openStore(t)

	created, err := s.Create("d.mp4", false, 1, 0.1, store.StatusCompleted, nil)
	require.NoError(t, err)

	deleted, err := s.Delete(created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	again, err := s.Delete(created.ID)
	require.NoError(t, err)
	require.False(t, again)
}
