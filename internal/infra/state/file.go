package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tube-digest/internal/domain/entity"
)

// stateDocument is the on-disk JSON shape. It must round-trip exactly:
// {"seen_ids": [sorted strings], "last_run_utc": RFC3339 string or null}.
type stateDocument struct {
	SeenIDs    []string `json:"seen_ids"`
	LastRunUTC *string  `json:"last_run_utc"`
}

// FileStore persists the dedup state as a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the state file. A missing file is first-run semantics and
// returns an empty state, not an error.
func (s *FileStore) Load(_ context.Context) (*entity.DedupState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Info("no prior state file, starting empty", slog.String("path", s.path))
			return entity.NewDedupState(), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}

	var lastRun *time.Time
	if doc.LastRunUTC != nil {
		t, err := time.Parse(time.RFC3339, *doc.LastRunUTC)
		if err != nil {
			return nil, fmt.Errorf("parse last_run_utc %q: %w", *doc.LastRunUTC, err)
		}
		lastRun = &t
	}

	return entity.NewDedupStateFrom(doc.SeenIDs, lastRun), nil
}

// Persist overwrites the state file with the sorted identifier set. The
// write goes through a temp file + rename so a crash mid-write never leaves
// a truncated artifact behind.
func (s *FileStore) Persist(_ context.Context, st *entity.DedupState) error {
	doc := stateDocument{SeenIDs: st.SortedIDs()}
	if doc.SeenIDs == nil {
		doc.SeenIDs = []string{}
	}
	if st.LastRunUTC != nil {
		formatted := st.LastRunUTC.UTC().Format(time.RFC3339)
		doc.LastRunUTC = &formatted
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}

	slog.Info("state persisted",
		slog.String("path", s.path),
		slog.Int("seen_ids", st.Len()))
	return nil
}
