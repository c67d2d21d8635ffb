// Package state provides the persistent dedup state stores. The JSON file
// store is the canonical artifact; a SQLite-backed store and an in-memory
// store implement the same contract for alternative deployments and tests.
package state

import (
	"context"

	"tube-digest/internal/domain/entity"
)

// Store loads and persists the cross-run dedup state.
//
// A run loads the state once at start, mutates it in memory, and persists it
// exactly once at the very end of a successful run. Persist fully overwrites
// the prior artifact. A crash before Persist means this run's items are
// reprocessed on the next invocation; downstream storage performs no
// row-level dedup, so those rows may then be duplicated.
type Store interface {
	// Load returns the persisted state, or an empty state (not an error)
	// when nothing has been persisted yet.
	Load(ctx context.Context) (*entity.DedupState, error)

	// Persist overwrites the persisted state with the given one, writing the
	// identifier set in canonical sorted order.
	Persist(ctx context.Context, st *entity.DedupState) error
}
