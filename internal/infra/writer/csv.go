// Package writer implements the append-only tabular storage for enriched
// video records: a per-run-date partition plus an all-time accumulation file,
// both plain CSV with a fixed column order and idempotent header
// initialization.
package writer

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tube-digest/internal/domain/entity"
)

// columns is the fixed column order shared by both sinks.
var columns = []string{
	"published", "source_title", "source_id",
	"title", "url", "item_id",
	"description", "view_count", "like_count", "comment_count", "duration",
}

// alltimeFile is the unbounded accumulation sink.
const alltimeFile = "alltime_videos.csv"

// DefaultTimezone is the fixed locale used to name day partitions.
const DefaultTimezone = "Asia/Shanghai"

// Location resolves the partition timezone, falling back to a fixed UTC+8
// offset when the IANA database is unavailable on the host.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("timezone database unavailable, using fixed UTC+8",
			slog.String("timezone", name),
			slog.String("error", err.Error()))
		return time.FixedZone("UTC+8", 8*60*60)
	}
	return loc
}

// CSVWriter appends enriched records to the two durable sinks.
//
// No row-level dedup or existence check happens at write time: a crash
// between a successful Append and the subsequent state persist re-emits the
// affected rows on the next run. Acceptable for a human-read report feed,
// not for a system of record.
type CSVWriter struct {
	outDir string
	loc    *time.Location
	now    func() time.Time
}

// NewCSVWriter creates a writer rooted at outDir, naming day partitions in
// the given location.
func NewCSVWriter(outDir string, loc *time.Location) *CSVWriter {
	return &CSVWriter{outDir: outDir, loc: loc, now: time.Now}
}

// DayPath returns the partition path for the given instant's calendar date.
func (w *CSVWriter) DayPath(t time.Time) string {
	return filepath.Join(w.outDir, fmt.Sprintf("updates_%s.csv", t.In(w.loc).Format("2006-01-02")))
}

// Append writes the records, stably sorted ascending by published, to the
// current day partition and the all-time file. It returns the day partition
// path and the number of rows written; zero records write nothing.
func (w *CSVWriter) Append(records []entity.VideoRecord) (string, int, error) {
	if len(records) == 0 {
		return "", 0, nil
	}

	if err := os.MkdirAll(w.outDir, 0o750); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	sorted := make([]entity.VideoRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parsePublished(sorted[i].Published).Before(parsePublished(sorted[j].Published))
	})

	dayPath := w.DayPath(w.now())
	if err := appendRows(dayPath, sorted); err != nil {
		return "", 0, err
	}
	if err := appendRows(filepath.Join(w.outDir, alltimeFile), sorted); err != nil {
		return "", 0, err
	}

	return dayPath, len(sorted), nil
}

// parsePublished parses an ISO-8601 timestamp. Unparsable values sort as the
// earliest possible instant rather than crashing the sort.
func parsePublished(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// appendRows appends the rows to path, writing the header row first only if
// the file does not yet contain one. This keeps repeated appends across many
// runs safe.
func appendRows(path string, records []entity.VideoRecord) error {
	needHeader, err := fileMissingOrEmpty(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if needHeader {
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("write header to %s: %w", path, err)
		}
	}
	for _, r := range records {
		row := []string{
			r.Published, r.SourceTitle, r.SourceID,
			r.Title, r.URL, r.ItemID,
			r.Description, r.ViewCount, r.LikeCount, r.CommentCount, r.Duration,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func fileMissingOrEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size() == 0, nil
}
