// Package entity defines the core domain entities for the ingestion pipeline:
// feed entries, enriched video records, and the cross-run dedup state, along
// with the domain error taxonomy.
package entity

// FeedEntry is a single item stub read from a channel's uploads feed.
// It is produced by feed pagination and immutable once read.
type FeedEntry struct {
	ItemID      string
	SourceID    string
	SourceTitle string
	Title       string
	Description string
	// PublishedAt is the ISO-8601 UTC publication timestamp as returned by
	// the catalog. It is kept as a string: parsing is deferred to the writer,
	// which must tolerate unparsable values.
	PublishedAt string
}

// VideoDetail carries the supplementary per-item metadata returned by a
// batched detail lookup. Counts are kept as decimal strings; the catalog
// omits them for items where the owner has hidden statistics.
type VideoDetail struct {
	ItemID       string
	SourceTitle  string
	Description  string
	ViewCount    string
	LikeCount    string
	CommentCount string
	// Duration is the ISO-8601 duration string (e.g. "PT1H23M45S").
	Duration string
}

// VideoRecord is the unit persisted to tabular storage. Once handed to the
// record writer it is never mutated.
type VideoRecord struct {
	Published    string
	SourceTitle  string
	SourceID     string
	Title        string
	URL          string
	ItemID       string
	Description  string
	ViewCount    string
	LikeCount    string
	CommentCount string
	Duration     string
}

// WatchURL returns the canonical watch URL derived from an item ID.
func WatchURL(itemID string) string {
	return "https://www.youtube.com/watch?v=" + itemID
}
