// Package ingest implements the incremental ingestion run: enumerate followed
// channels, walk their uploads feeds, drop already-seen items, batch-enrich
// the rest, append them to the day file, and persist the dedup state.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tube-digest/internal/catalog"
	"tube-digest/internal/domain/entity"
	"tube-digest/internal/infra/state"
	"tube-digest/internal/observability/metrics"
	"tube-digest/internal/pkg/config"
	"tube-digest/internal/utils/text"
)

// descriptionRuneLimit caps the description column; longer texts are cut and
// marked with a trailing ellipsis.
const descriptionRuneLimit = 1000

// Catalog is the slice of the catalog client the ingestion run needs.
type Catalog interface {
	ListSubscribedChannels(ctx context.Context) ([]string, error)
	ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error)
	WalkUploads(ctx context.Context, playlistID string, maxPages int) ([]entity.FeedEntry, error)
	EnrichVideos(ctx context.Context, itemIDs []string, chunkSize int) (map[string]entity.VideoDetail, error)
}

// RecordWriter appends enriched records to the current day file.
type RecordWriter interface {
	Append(records []entity.VideoRecord) (path string, written int, err error)
}

// Config holds the tunables of one ingestion run.
type Config struct {
	// MaxPages is the per-channel page budget for walking uploads feeds.
	// Items older than MaxPages*50 positions are never observed.
	MaxPages int

	// ChunkSize is the batch size for detail enrichment lookups.
	ChunkSize int
}

// LoadConfigFromEnv reads the ingestion tunables from the environment.
//
// Environment variables:
//   - INGEST_MAX_PAGES: per-channel page budget (default: 5)
//   - INGEST_CHUNK_SIZE: enrichment batch size (default: 50, max 50)
func LoadConfigFromEnv() Config {
	return Config{
		MaxPages:  config.GetEnvInt("INGEST_MAX_PAGES", 5),
		ChunkSize: config.GetEnvInt("INGEST_CHUNK_SIZE", catalog.DefaultChunkSize),
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if err := config.ValidateIntRange("INGEST_MAX_PAGES", c.MaxPages, 1, 100); err != nil {
		return err
	}
	return config.ValidateIntRange("INGEST_CHUNK_SIZE", c.ChunkSize, 1, catalog.DefaultChunkSize)
}

// Service orchestrates one ingestion run.
type Service struct {
	Catalog Catalog
	State   state.Store
	Writer  RecordWriter
	Config  Config
}

// NewService creates an ingest Service with the provided dependencies.
func NewService(cat Catalog, st state.Store, w RecordWriter, cfg Config) *Service {
	return &Service{
		Catalog: cat,
		State:   st,
		Writer:  w,
		Config:  cfg,
	}
}

// Stats contains counters for one ingestion run.
type Stats struct {
	Channels    int
	Skipped     int
	FeedEntries int
	Duplicates  int
	Written     int
	DayPath     string
	Duration    time.Duration
}

// Run executes one full ingestion pass.
//
// Channel enumeration failures abort the run: the follow list is either
// complete or the run fails. Every later per-channel failure (resolve, walk,
// enrich) only skips that channel, so one broken source cannot starve the
// rest. The day file is appended exactly once, and the dedup state is
// persisted exactly once, after the append succeeded.
func (s *Service) Run(ctx context.Context) (*Stats, error) {
	logger := slog.Default()
	start := time.Now()
	stats := &Stats{}

	st, err := s.State.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dedup state: %w", err)
	}

	channels, err := s.Catalog.ListSubscribedChannels(ctx)
	if err != nil {
		return nil, &entity.CatalogError{Op: "list subscribed channels", Err: err}
	}
	stats.Channels = len(channels)

	var (
		records []entity.VideoRecord
		newIDs  []string
	)
	seenThisRun := make(map[string]struct{})

	for _, channelID := range channels {
		entries, err := s.collectChannel(ctx, channelID)
		if err != nil {
			logger.Warn("skipping channel",
				slog.String("source_id", channelID),
				slog.Any("error", err))
			stats.Skipped++
			continue
		}
		stats.FeedEntries += len(entries)

		// Filter against the persisted state and against items already
		// picked up earlier in this run (an item can surface twice when
		// feeds overlap).
		var fresh []entity.FeedEntry
		for _, e := range entries {
			if e.ItemID == "" {
				continue
			}
			if st.IsSeen(e.ItemID) {
				stats.Duplicates++
				continue
			}
			if _, dup := seenThisRun[e.ItemID]; dup {
				stats.Duplicates++
				continue
			}
			seenThisRun[e.ItemID] = struct{}{}
			fresh = append(fresh, e)
		}
		if len(fresh) == 0 {
			continue
		}

		ids := make([]string, 0, len(fresh))
		for _, e := range fresh {
			ids = append(ids, e.ItemID)
		}

		details, err := s.Catalog.EnrichVideos(ctx, ids, s.Config.ChunkSize)
		if err != nil {
			// Nothing from this channel is written or marked seen, so the
			// next run retries the whole batch.
			logger.Warn("skipping channel",
				slog.String("source_id", channelID),
				slog.Any("error", &entity.PerSourceError{SourceID: channelID, Stage: "enrich", Err: err}))
			metrics.RecordSourceSkipped("enrich")
			stats.Skipped++
			for _, e := range fresh {
				delete(seenThisRun, e.ItemID)
			}
			continue
		}

		for _, e := range fresh {
			d, ok := details[e.ItemID]
			if !ok {
				// The catalog omitted the item from the batched lookup
				// (deleted, private, or temporarily unavailable). It is not
				// written and not marked seen, so the next run retries it.
				logger.Info("item missing from enrichment, skipping",
					slog.String("source_id", channelID),
					slog.String("item_id", e.ItemID))
				delete(seenThisRun, e.ItemID)
				continue
			}
			records = append(records, buildRecord(e, d))
			newIDs = append(newIDs, e.ItemID)
		}
	}

	metrics.RecordItemsDeduplicated(stats.Duplicates)

	if len(records) > 0 {
		dayPath, written, err := s.Writer.Append(records)
		if err != nil {
			// State is deliberately not persisted here: the items will be
			// re-fetched and re-written on the next run.
			return stats, fmt.Errorf("append day file: %w", err)
		}
		stats.DayPath = dayPath
		stats.Written = written
		metrics.RecordItemsIngested(written)
	}

	for _, id := range newIDs {
		st.MarkSeen(id)
	}
	now := time.Now().UTC()
	st.LastRunUTC = &now
	if err := s.State.Persist(ctx, st); err != nil {
		return stats, fmt.Errorf("persist dedup state: %w", err)
	}

	stats.Duration = time.Since(start)
	metrics.RecordIngestRun(stats.Duration, st.Len())

	logger.Info("ingestion run completed",
		slog.Int("channels", stats.Channels),
		slog.Int("skipped", stats.Skipped),
		slog.Int("feed_entries", stats.FeedEntries),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("written", stats.Written),
		slog.String("day_path", stats.DayPath),
		slog.Int("seen_ids", st.Len()),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// collectChannel resolves one channel's uploads feed and walks it within the
// page budget. Failures are wrapped with the channel and stage so the caller
// can log and skip.
func (s *Service) collectChannel(ctx context.Context, channelID string) ([]entity.FeedEntry, error) {
	playlistID, err := s.Catalog.ResolveUploadsPlaylist(ctx, channelID)
	if err != nil {
		metrics.RecordSourceSkipped("resolve")
		return nil, &entity.PerSourceError{SourceID: channelID, Stage: "resolve", Err: err}
	}
	if playlistID == "" {
		metrics.RecordSourceSkipped("no_uploads")
		slog.Info("channel has no uploads feed",
			slog.String("source_id", channelID))
		return nil, nil
	}

	entries, err := s.Catalog.WalkUploads(ctx, playlistID, s.Config.MaxPages)
	if err != nil {
		metrics.RecordSourceSkipped("walk")
		return nil, &entity.PerSourceError{SourceID: channelID, Stage: "walk", Err: err}
	}

	if len(entries) >= s.Config.MaxPages*catalog.PageSize {
		// The walk stopped on the page budget, not the end of the feed:
		// anything older than the horizon was dropped for this run.
		slog.Warn("page budget exhausted, older items not observed",
			slog.String("source_id", channelID),
			slog.Int("max_pages", s.Config.MaxPages),
			slog.Int("entries", len(entries)))
	}

	return entries, nil
}

// buildRecord merges a feed entry with its enrichment detail into the row
// shape persisted to the day file. Snippet fields the enrichment left empty
// fall back to the feed entry's.
func buildRecord(e entity.FeedEntry, d entity.VideoDetail) entity.VideoRecord {
	sourceTitle := d.SourceTitle
	if sourceTitle == "" {
		sourceTitle = e.SourceTitle
	}
	description := d.Description
	if description == "" {
		description = e.Description
	}

	// Feed titles can carry embedded newlines, which would break the row shape.
	title := strings.TrimSpace(strings.ReplaceAll(e.Title, "\n", " "))

	return entity.VideoRecord{
		Published:    e.PublishedAt,
		SourceTitle:  sourceTitle,
		SourceID:     e.SourceID,
		Title:        title,
		URL:          entity.WatchURL(e.ItemID),
		ItemID:       e.ItemID,
		Description:  text.TruncateRunes(description, descriptionRuneLimit, " …"),
		ViewCount:    d.ViewCount,
		LikeCount:    d.LikeCount,
		CommentCount: d.CommentCount,
		Duration:     d.Duration,
	}
}
