package summarizer

import (
	"context"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/utils/text"
)

// Noop is a Summarizer that never calls a remote service. It is used when no
// completion-service credentials are configured and in tests.
type Noop struct{}

// NewNoop creates a no-op summarizer.
func NewNoop() *Noop {
	return &Noop{}
}

// Summarize echoes the video title as the headline with no points.
func (n *Noop) Summarize(_ context.Context, rec entity.VideoRecord) (Summary, error) {
	return Summary{
		Kind:     KindFreeform,
		Headline: text.ClampRunes(rec.Title, headlineRuneLimit),
		Points:   []string{},
	}, nil
}
