// Package metrics provides centralized Prometheus metrics for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion metrics track the daily catalog crawl.
var (
	// CatalogPagesFetchedTotal counts listing pages fetched by endpoint
	CatalogPagesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_pages_fetched_total",
			Help: "Total number of catalog listing pages fetched",
		},
		[]string{"endpoint"},
	)

	// ItemsIngestedTotal counts new video records written to storage
	ItemsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_ingested_total",
			Help: "Total number of new video records written to storage",
		},
	)

	// ItemsDeduplicatedTotal counts items skipped because they were already seen
	ItemsDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "items_deduplicated_total",
			Help: "Total number of feed items skipped by the dedup state",
		},
	)

	// SourcesSkippedTotal counts sources skipped due to per-source failures
	SourcesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sources_skipped_total",
			Help: "Total number of sources skipped during a run",
		},
		[]string{"stage"},
	)

	// IngestRunDuration measures the duration of a full ingestion run
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of a full ingestion run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// SeenIDsTotal tracks the size of the persisted dedup state
	SeenIDsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seen_ids_total",
			Help: "Number of item IDs recorded in the dedup state",
		},
	)
)

// Digest metrics track the summarization and delivery stage.
var (
	// ItemsSummarizedTotal counts summarization outcomes by status
	ItemsSummarizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_summarized_total",
			Help: "Total number of videos summarized",
		},
		[]string{"status"},
	)

	// SummarizationDuration measures time to summarize one video
	SummarizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "summarization_duration_seconds",
			Help:    "Time taken to summarize one video",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// DigestRunDuration measures the duration of a full digest run
	DigestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "Duration of a full digest run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// DigestItemsTotal counts items included in digests by outcome
	DigestItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_items_total",
			Help: "Total number of items included in digests",
		},
		[]string{"status"},
	)
)
