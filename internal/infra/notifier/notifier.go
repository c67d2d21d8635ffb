// Package notifier provides abstraction for announcing finished daily digests.
// It defines the Notifier interface which allows different delivery mechanisms
// (Slack webhook, no-op) to be used interchangeably through dependency injection.
package notifier

import (
	"context"

	"tube-digest/internal/domain/entity"
)

// Notifier is an interface for announcing a rendered daily digest.
// Implementations should handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// NotifyDigest announces that the digest for one local date is ready.
	// The notification should include the date, the item count, and a short
	// preview of the summarized items.
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with backoff
	//   - Respect context cancellation
	NotifyDigest(ctx context.Context, digest *entity.Digest) error
}
