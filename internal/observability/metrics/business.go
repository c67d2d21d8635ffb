package metrics

import "time"

// RecordCatalogPage records one fetched listing page for the given endpoint.
func RecordCatalogPage(endpoint string) {
	CatalogPagesFetchedTotal.WithLabelValues(endpoint).Inc()
}

// RecordItemsIngested records new records written to storage.
func RecordItemsIngested(count int) {
	ItemsIngestedTotal.Add(float64(count))
}

// RecordItemsDeduplicated records feed items skipped by the dedup state.
func RecordItemsDeduplicated(count int) {
	ItemsDeduplicatedTotal.Add(float64(count))
}

// RecordSourceSkipped records a source skipped at the given pipeline stage.
func RecordSourceSkipped(stage string) {
	SourcesSkippedTotal.WithLabelValues(stage).Inc()
}

// RecordIngestRun records the duration of a full ingestion run and the
// resulting dedup state size.
func RecordIngestRun(duration time.Duration, seenIDs int) {
	IngestRunDuration.Observe(duration.Seconds())
	SeenIDsTotal.Set(float64(seenIDs))
}

// RecordItemSummarized records the result of one summarization operation.
func RecordItemSummarized(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	ItemsSummarizedTotal.WithLabelValues(status).Inc()
	SummarizationDuration.Observe(duration.Seconds())
}

// RecordDigestRun records the duration and item outcomes of a digest run.
func RecordDigestRun(duration time.Duration, items, failed int) {
	DigestRunDuration.Observe(duration.Seconds())
	DigestItemsTotal.WithLabelValues("summarized").Add(float64(items - failed))
	DigestItemsTotal.WithLabelValues("placeholder").Add(float64(failed))
}
