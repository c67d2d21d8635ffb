package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/observability/metrics"
	"tube-digest/internal/resilience/circuitbreaker"
	"tube-digest/internal/resilience/retry"
)

// OpenRouter implements Summarizer against an OpenRouter-compatible
// chat-completion API. It shares the pipeline's fixed retry policy with the
// catalog client and adds a circuit breaker for sustained outages.
type OpenRouter struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewOpenRouter creates a summarizer calling cfg.BaseURL with the given key.
func NewOpenRouter(apiKey string, cfg Config) *OpenRouter {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.BaseURL

	slog.Info("initialized openrouter summarizer",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", cfg.Model),
		slog.Int("max_points", cfg.MaxPoints))

	return &OpenRouter{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.CompletionAPIConfig()),
		retryConfig:    retry.FixedBackoffConfig(),
		config:         cfg,
	}
}

// Summarize requests a summary for the video and normalizes the response.
// Transient completion-service failures (429/5xx) back off and retry under
// the same policy as catalog calls; other failures surface to the caller,
// which degrades that one video to a placeholder.
func (o *OpenRouter) Summarize(ctx context.Context, rec entity.VideoRecord) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var raw string
	retryErr := retry.Do(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, rec)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("completion api circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("completion api unavailable: circuit breaker open")
			}
			return err
		}
		raw = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return Summary{}, fmt.Errorf("openrouter summarize failed after retries: %w", retryErr)
	}

	return Normalize(raw, o.config.MaxPoints), nil
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenRouter) doComplete(ctx context.Context, rec entity.VideoRecord) (string, error) {
	requestID := uuid.New().String()

	slog.InfoContext(ctx, "starting summarization",
		slog.String("request_id", requestID),
		slog.String("item_id", rec.ItemID),
		slog.String("model", o.config.Model))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: o.config.Temperature,
		MaxTokens:   o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(rec)},
		},
	})

	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		metrics.RecordItemSummarized(false, duration)
		return "", asRetryError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.RecordItemSummarized(false, duration)
		return "", fmt.Errorf("completion api returned empty response")
	}

	slog.InfoContext(ctx, "summarization completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration))
	metrics.RecordItemSummarized(true, duration)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// asRetryError maps SDK errors onto retry.HTTPError so the shared transient
// predicate (429/5xx) applies to completion-service failures too.
func asRetryError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return err
}
