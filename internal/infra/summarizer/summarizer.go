// Package summarizer provides completion-service-backed video summarization
// with reliability patterns, plus the defensive normalizer that converts
// arbitrary completion-service text into a stable summary shape.
// It includes adapters for OpenRouter-compatible chat-completion APIs and
// Claude (Anthropic).
package summarizer

import (
	"context"
	"fmt"
	"time"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/pkg/config"
)

// Kind tags which normalization path produced a Summary.
type Kind string

const (
	// KindStructured means the completion parsed as the structured
	// {headline, points[]} shape (possibly after repair).
	KindStructured Kind = "structured"

	// KindFreeform means the line-based fallback was applied; Body holds
	// the raw text the headline and points were derived from.
	KindFreeform Kind = "freeform"
)

// Summary is the normalized result of one summarization call. It is always
// usable: normalization never fails, and the worst case carries a
// placeholder headline with no points.
type Summary struct {
	Kind     Kind
	Headline string
	Points   []string
	Body     string
}

// Summarizer produces a normalized summary for one video record.
type Summarizer interface {
	Summarize(ctx context.Context, rec entity.VideoRecord) (Summary, error)
}

// Config holds the shared summarizer configuration.
type Config struct {
	// Provider selects the implementation: openrouter, claude, or noop.
	Provider string

	// Model is the completion-service model identifier.
	Model string

	// BaseURL is the completion API root (OpenRouter-compatible providers).
	BaseURL string

	// MaxTokens is the maximum number of tokens for the API response.
	MaxTokens int

	// Temperature is the sampling temperature for the completion call.
	Temperature float32

	// MaxPoints caps the number of points kept from one summary.
	MaxPoints int

	// Timeout is the maximum duration for a single summarization API call.
	Timeout time.Duration
}

// LoadConfigFromEnv loads the summarizer configuration.
//
// Environment variables:
//   - SUMMARIZER_PROVIDER: openrouter | claude | noop (default: openrouter)
//   - SUMMARIZER_MODEL: model identifier (default: google/gemini-2.5-pro)
//   - SUMMARIZER_BASE_URL: API root (default: https://openrouter.ai/api/v1)
//   - SUMMARIZER_MAX_TOKENS: response token cap (default: 1200)
//   - SUMMARIZER_MAX_POINTS: points kept per summary (default: 8, range 1-20)
//   - SUMMARIZER_TIMEOUT: per-call timeout (default: 120s)
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Provider:    config.GetEnvString("SUMMARIZER_PROVIDER", "openrouter"),
		Model:       config.GetEnvString("SUMMARIZER_MODEL", "google/gemini-2.5-pro"),
		BaseURL:     config.GetEnvString("SUMMARIZER_BASE_URL", "https://openrouter.ai/api/v1"),
		MaxTokens:   config.GetEnvInt("SUMMARIZER_MAX_TOKENS", 1200),
		Temperature: 0.2,
		MaxPoints:   config.GetEnvInt("SUMMARIZER_MAX_POINTS", 8),
		Timeout:     config.GetEnvDuration("SUMMARIZER_TIMEOUT", 120*time.Second),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration fields.
func (c Config) Validate() error {
	switch c.Provider {
	case "openrouter", "claude", "noop":
	default:
		return fmt.Errorf("unknown summarizer provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if err := config.ValidateIntRange("SUMMARIZER_MAX_POINTS", c.MaxPoints, 1, 20); err != nil {
		return fmt.Errorf("max points: %w", err)
	}
	if err := config.ValidatePositiveDuration("SUMMARIZER_TIMEOUT", c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	return nil
}
