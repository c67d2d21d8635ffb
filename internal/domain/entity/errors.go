package entity

import (
	"fmt"
)

// CatalogError indicates a failure enumerating or paginating the source
// listing. It is fatal: a partial source list would silently under-collect,
// so the whole run aborts and nothing is written or persisted.
type CatalogError struct {
	Op  string
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// PerSourceError indicates a feed-walk or enrichment failure scoped to one
// source. The run driver logs it, skips the source, and continues.
type PerSourceError struct {
	SourceID string
	Stage    string
	Err      error
}

func (e *PerSourceError) Error() string {
	return fmt.Sprintf("source %s: %s: %v", e.SourceID, e.Stage, e.Err)
}

func (e *PerSourceError) Unwrap() error {
	return e.Err
}
