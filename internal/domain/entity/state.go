package entity

import (
	"sort"
	"time"
)

// DedupState is the sole piece of cross-run memory: the set of item IDs that
// have already been ingested, plus the timestamp of the last completed run.
//
// The seen-set only grows. An item is never reprocessed once recorded, even
// if its remote metadata later changes. The state is owned exclusively by the
// run for its duration: loaded once at start, mutated in memory, persisted
// once at the end. It is not safe for concurrent use.
type DedupState struct {
	seen       map[string]struct{}
	LastRunUTC *time.Time
}

// NewDedupState returns an empty state (first-run semantics).
func NewDedupState() *DedupState {
	return &DedupState{seen: make(map[string]struct{})}
}

// NewDedupStateFrom builds a state from a previously persisted ID list.
func NewDedupStateFrom(ids []string, lastRun *time.Time) *DedupState {
	s := NewDedupState()
	for _, id := range ids {
		s.seen[id] = struct{}{}
	}
	s.LastRunUTC = lastRun
	return s
}

// IsSeen reports whether the item ID has already been ingested.
func (s *DedupState) IsSeen(itemID string) bool {
	_, ok := s.seen[itemID]
	return ok
}

// MarkSeen records an item ID in memory. It does not persist.
func (s *DedupState) MarkSeen(itemID string) {
	s.seen[itemID] = struct{}{}
}

// Len returns the number of recorded item IDs.
func (s *DedupState) Len() int {
	return len(s.seen)
}

// SortedIDs returns the seen IDs in canonical sorted order, making the
// persisted artifact diffable across runs.
func (s *DedupState) SortedIDs() []string {
	ids := make([]string, 0, len(s.seen))
	for id := range s.seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
