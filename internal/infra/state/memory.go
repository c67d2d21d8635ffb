package state

import (
	"context"
	"time"

	"tube-digest/internal/domain/entity"
)

// MemoryStore keeps the dedup state in process memory. It exists for tests
// and harnesses that substitute the persistent store.
type MemoryStore struct {
	ids     []string
	lastRun *time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a fresh state built from the last persisted snapshot.
func (s *MemoryStore) Load(_ context.Context) (*entity.DedupState, error) {
	return entity.NewDedupStateFrom(s.ids, s.lastRun), nil
}

// Persist snapshots the given state, replacing any prior snapshot.
func (s *MemoryStore) Persist(_ context.Context, st *entity.DedupState) error {
	s.ids = st.SortedIDs()
	s.lastRun = st.LastRunUTC
	return nil
}
