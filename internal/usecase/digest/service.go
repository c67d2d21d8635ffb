// Package digest implements the daily report pass: read the current day
// file, summarize each record through the completion service, render the
// HTML report, and announce it. An empty day still produces and announces a
// report.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/infra/notifier"
	"tube-digest/internal/infra/summarizer"
	"tube-digest/internal/observability/metrics"
)

// failurePlaceholder marks items whose summarization failed after all
// retries; the item is still listed in the report.
const failurePlaceholder = "（模型调用失败，保留占位）"

// DayStore reads the records ingested for a given instant's local date.
type DayStore interface {
	ReadDay(t time.Time) ([]entity.VideoRecord, error)
}

// ReportWriter renders a digest and writes it to disk, returning the path.
type ReportWriter interface {
	Write(digest *entity.Digest) (string, error)
}

// Service orchestrates one digest pass.
type Service struct {
	Days       DayStore
	Summarizer summarizer.Summarizer
	Report     ReportWriter
	Notifier   notifier.Notifier

	// Location resolves "today" and formats publication timestamps.
	Location *time.Location

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewService creates a digest Service with the provided dependencies.
func NewService(days DayStore, sum summarizer.Summarizer, rep ReportWriter, not notifier.Notifier, loc *time.Location) *Service {
	return &Service{
		Days:       days,
		Summarizer: sum,
		Report:     rep,
		Notifier:   not,
		Location:   loc,
		Now:        time.Now,
	}
}

// Stats contains counters for one digest pass.
type Stats struct {
	Items      int
	Failed     int
	ReportPath string
	Duration   time.Duration
}

// Run executes one digest pass for today's local date.
//
// Summarization failures never abort the pass: the affected item keeps a
// placeholder headline and the report is produced regardless. Only reading
// the day file, writing the report, or delivering the notification can fail
// the run.
func (s *Service) Run(ctx context.Context) (*Stats, error) {
	logger := slog.Default()
	start := s.Now()
	today := start.In(s.Location)
	date := today.Format("2006-01-02")
	stats := &Stats{}

	records, err := s.Days.ReadDay(today)
	if err != nil {
		return nil, fmt.Errorf("read day file: %w", err)
	}
	stats.Items = len(records)

	dig := &entity.Digest{Date: date}
	for _, rec := range records {
		item := entity.DigestItem{
			ItemID:         rec.ItemID,
			Title:          rec.Title,
			URL:            rec.URL,
			SourceTitle:    rec.SourceTitle,
			PublishedLocal: s.localTimestamp(rec.Published),
		}

		sum, err := s.Summarizer.Summarize(ctx, rec)
		if err != nil {
			logger.Warn("summarization failed, keeping placeholder",
				slog.String("item_id", rec.ItemID),
				slog.String("title", rec.Title),
				slog.Any("error", err))
			stats.Failed++
			item.Headline = failurePlaceholder
		} else {
			item.Headline = sum.Headline
			item.Points = sum.Points
		}

		dig.Items = append(dig.Items, item)
	}

	reportPath, err := s.Report.Write(dig)
	if err != nil {
		return stats, fmt.Errorf("write report: %w", err)
	}
	stats.ReportPath = reportPath

	if err := s.Notifier.NotifyDigest(ctx, dig); err != nil {
		return stats, fmt.Errorf("deliver digest: %w", err)
	}

	stats.Duration = time.Since(start)
	metrics.RecordDigestRun(stats.Duration, stats.Items, stats.Failed)

	logger.Info("digest run completed",
		slog.String("date", date),
		slog.Int("items", stats.Items),
		slog.Int("failed", stats.Failed),
		slog.String("report_path", stats.ReportPath),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

// localTimestamp converts the stored UTC publication timestamp to a local
// "2006-01-02 15:04" string. Unparsable values pass through unchanged.
func (s *Service) localTimestamp(published string) string {
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return published
	}
	return t.In(s.Location).Format("2006-01-02 15:04")
}
