package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/seerctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T, limit int) map[string]*ActivityStore {
	t.Helper()

	disk, err := NewActivityStore(filepath.Join(t.TempDir(), "nested", "activity.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := NewActivityStore("", limit)
	require.NoError(t, err)

	return map[string]*ActivityStore{"disk": disk, "memory": mem}
}

func TestActivityStore_RecordAndRecent(t *testing.T) {
	for name, s := range openStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Record(domain.NewActivity(domain.ActivitySubmit, "first", nil)))
			require.NoError(t, s.Record(domain.NewActivity(domain.ActivityToggle, "second", assert.AnError)))
			require.NoError(t, s.Record(domain.NewActivity(domain.ActivitySyncStart, "third", nil)))

			all, err := s.Recent(0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "third", all[0].Subject)
			assert.Equal(t, "first", all[2].Subject)

			assert.False(t, all[1].OK)
			assert.Equal(t, assert.AnError.Error(), all[1].Detail)
			assert.NotEmpty(t, all[0].ID)
			assert.False(t, all[0].At.IsZero())

			two, err := s.Recent(2)
			require.NoError(t, err)
			require.Len(t, two, 2)
			assert.Equal(t, "second", two[1].Subject)
		})
	}
}

func TestActivityStore_KeepsGivenIDAndTime(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	for name, s := range openStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Record(domain.Activity{ID: "fixed", At: at, Kind: domain.ActivityDiscover, OK: true}))

			got, err := s.Recent(1)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "fixed", got[0].ID)
			assert.True(t, at.Equal(got[0].At))
		})
	}
}

func TestActivityStore_PrunesOldest(t *testing.T) {
	for name, s := range openStores(t, 3) {
		t.Run(name, func(t *testing.T) {
			for _, subject := range []string{"a", "b", "c", "d", "e"} {
				require.NoError(t, s.Record(domain.Activity{Kind: domain.ActivityToggle, Subject: subject}))
			}

			got, err := s.Recent(0)
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, []string{"e", "d", "c"}, []string{got[0].Subject, got[1].Subject, got[2].Subject})
		})
	}
}

func TestActivityStore_Clear(t *testing.T) {
	for name, s := range openStores(t, 0) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Record(domain.Activity{Subject: "x"}))
			require.NoError(t, s.Clear())

			got, err := s.Recent(0)
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.Record(domain.Activity{Subject: "y"}))
			got, err = s.Recent(0)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "y", got[0].Subject)
		})
	}
}

func TestActivityStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.db")

	s, err := NewActivityStore(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Record(domain.Activity{Kind: domain.ActivitySubmit, Subject: "connection"}))
	require.NoError(t, s.Close())

	s, err = NewActivityStore(path, 0)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "connection", got[0].Subject)
}
