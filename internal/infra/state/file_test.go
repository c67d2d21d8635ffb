package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tube-digest/internal/domain/entity"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	st, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())
	assert.Nil(t, st.LastRunUTC)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	st := entity.NewDedupState()
	st.MarkSeen("vid_b")
	st.MarkSeen("vid_a")
	st.MarkSeen("vid_c")
	lastRun := time.Date(2026, 8, 25, 1, 10, 0, 0, time.UTC)
	st.LastRunUTC = &lastRun

	require.NoError(t, store.Persist(context.Background(), st))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())
	assert.True(t, loaded.IsSeen("vid_a"))
	assert.True(t, loaded.IsSeen("vid_b"))
	assert.True(t, loaded.IsSeen("vid_c"))
	assert.False(t, loaded.IsSeen("vid_d"))
	require.NotNil(t, loaded.LastRunUTC)
	assert.True(t, loaded.LastRunUTC.Equal(lastRun))
}

func TestFileStore_PersistWritesSortedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	st := entity.NewDedupState()
	st.MarkSeen("zzz")
	st.MarkSeen("aaa")
	st.MarkSeen("mmm")
	require.NoError(t, store.Persist(context.Background(), st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		SeenIDs    []string `json:"seen_ids"`
		LastRunUTC *string  `json:"last_run_utc"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"aaa", "mmm", "zzz"}, doc.SeenIDs)
	assert.Nil(t, doc.LastRunUTC)
}

func TestFileStore_PersistOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStore(path)

	first := entity.NewDedupState()
	first.MarkSeen("old")
	require.NoError(t, store.Persist(context.Background(), first))

	second := entity.NewDedupState()
	second.MarkSeen("new")
	require.NoError(t, store.Persist(context.Background(), second))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.IsSeen("old"))
	assert.True(t, loaded.IsSeen("new"))
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())

	assert.Error(t, err)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())

	st.MarkSeen("vid_1")
	st.MarkSeen("vid_2")
	lastRun := time.Date(2026, 8, 25, 1, 10, 0, 0, time.UTC)
	st.LastRunUTC = &lastRun
	require.NoError(t, store.Persist(context.Background(), st))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.True(t, loaded.IsSeen("vid_1"))
	require.NotNil(t, loaded.LastRunUTC)
	assert.True(t, loaded.LastRunUTC.Equal(lastRun))
}
