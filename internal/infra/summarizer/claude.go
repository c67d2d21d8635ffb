package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/observability/metrics"
	"tube-digest/internal/resilience/circuitbreaker"
	"tube-digest/internal/resilience/retry"
)

// Claude implements Summarizer using Anthropic's Claude API. The response is
// fed through the same normalizer as every other provider.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewClaude creates a new Claude summarizer with the given API key.
func NewClaude(apiKey string, cfg Config) *Claude {
	slog.Info("initialized claude summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_points", cfg.MaxPoints))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:    retry.FixedBackoffConfig(),
		config:         cfg,
	}
}

// Summarize requests a summary for the video and normalizes the response.
func (c *Claude) Summarize(ctx context.Context, rec entity.VideoRecord) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var raw string
	retryErr := retry.Do(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, rec)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("completion api circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("completion api unavailable: circuit breaker open")
			}
			return err
		}
		raw = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return Summary{}, fmt.Errorf("claude summarize failed after retries: %w", retryErr)
	}

	return Normalize(raw, c.config.MaxPoints), nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, rec entity.VideoRecord) (string, error) {
	requestID := uuid.New().String()

	slog.InfoContext(ctx, "starting summarization",
		slog.String("request_id", requestID),
		slog.String("item_id", rec.ItemID),
		slog.String("model", c.config.Model))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(systemPrompt + "\n\n" + userPrompt(rec)),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		metrics.RecordItemSummarized(false, duration)
		return "", asClaudeRetryError(err)
	}

	if len(message.Content) == 0 {
		metrics.RecordItemSummarized(false, duration)
		return "", fmt.Errorf("completion api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		metrics.RecordItemSummarized(false, duration)
		return "", fmt.Errorf("completion api returned unexpected response type")
	}

	slog.InfoContext(ctx, "summarization completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration))
	metrics.RecordItemSummarized(true, duration)

	return strings.TrimSpace(textBlock.Text), nil
}

// asClaudeRetryError maps SDK errors onto retry.HTTPError so the shared
// transient predicate applies.
func asClaudeRetryError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return err
}
