package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tube-digest/internal/domain/entity"
)

// SQLiteStore persists the dedup state in a SQLite database. It implements
// the same full-overwrite contract as the file store and suits deployments
// where the seen-set has grown past what a flat JSON file handles well.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS seen_items (
	item_id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS run_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// NewSQLiteStore opens (and if needed initializes) a SQLite-backed store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite state db: %w", err)
	}
	// The store is single-writer by contract; one connection avoids
	// SQLITE_BUSY on overlapping statements.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite state schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full seen-set and the last-run timestamp. An empty database
// loads as the empty state.
func (s *SQLiteStore) Load(ctx context.Context) (*entity.DedupState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id FROM seen_items`)
	if err != nil {
		return nil, fmt.Errorf("query seen items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen items: %w", err)
	}

	var lastRun *time.Time
	var raw string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM run_meta WHERE key = 'last_run_utc'`).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// first run
	case err != nil:
		return nil, fmt.Errorf("query last run: %w", err)
	default:
		t, perr := time.Parse(time.RFC3339, raw)
		if perr != nil {
			return nil, fmt.Errorf("parse last_run_utc %q: %w", raw, perr)
		}
		lastRun = &t
	}

	return entity.NewDedupStateFrom(ids, lastRun), nil
}

// Persist replaces the stored state with the given one in a single
// transaction, inserting IDs in canonical sorted order.
func (s *SQLiteStore) Persist(ctx context.Context, st *entity.DedupState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_items`); err != nil {
		return fmt.Errorf("clear seen items: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO seen_items (item_id) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range st.SortedIDs() {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("insert seen item %s: %w", id, err)
		}
	}

	if st.LastRunUTC != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_meta (key, value) VALUES ('last_run_utc', ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			st.LastRunUTC.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("store last run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state: %w", err)
	}
	return nil
}
