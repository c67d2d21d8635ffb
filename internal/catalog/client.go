// Package catalog implements the client for the hierarchical content catalog:
// enumerating followed channels, resolving their uploads feeds, walking feed
// pages, and batch-enriching item details. Every request runs through the
// shared retrying executor, so transient failures (429/5xx) back off and
// retry while any other non-2xx status fails fast.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tube-digest/internal/observability/metrics"
	"tube-digest/internal/pkg/config"
	"tube-digest/internal/resilience/retry"
)

const (
	// PageSize is the catalog's hard cap on entries per listing page.
	PageSize = 50

	// DefaultChunkSize is the catalog's hard cap on IDs per batched detail lookup.
	DefaultChunkSize = 50

	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
)

// Config holds the catalog client configuration.
type Config struct {
	// BaseURL is the catalog API root.
	BaseURL string

	// Token is an already-authorized bearer token. Acquisition and refresh
	// are external to this module.
	Token string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// LoadConfigFromEnv loads the catalog configuration from environment variables.
//
// Environment variables:
//   - CATALOG_BASE_URL: API root (default: YouTube Data API v3)
//   - CATALOG_TOKEN: bearer token (required)
//   - CATALOG_TIMEOUT: per-request timeout (default: 30s)
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		BaseURL: config.GetEnvString("CATALOG_BASE_URL", defaultBaseURL),
		Token:   config.GetEnvString("CATALOG_TOKEN", ""),
		Timeout: config.GetEnvDuration("CATALOG_TIMEOUT", 30*time.Second),
	}
	if cfg.Token == "" {
		return cfg, fmt.Errorf("CATALOG_TOKEN is not set")
	}
	if err := config.ValidatePositiveDuration("CATALOG_TIMEOUT", cfg.Timeout); err != nil {
		return cfg, fmt.Errorf("catalog timeout: %w", err)
	}
	return cfg, nil
}

// Client is the catalog API client. It is stateless apart from its HTTP
// client and safe to reuse across runs; uploads-playlist resolution is
// deliberately not cached (sources are re-resolved every run).
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retryCfg   retry.Config
}

// NewClient creates a catalog client with the pipeline's fixed retry policy.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCfg:   retry.FixedBackoffConfig(),
	}
}

// NewClientWithRetry creates a client with an explicit retry configuration.
// Tests use this to inject a sleep recorder.
func NewClientWithRetry(cfg Config, retryCfg retry.Config) *Client {
	c := NewClient(cfg)
	c.retryCfg = retryCfg
	return c
}

// getJSON issues one GET through the retrying executor and decodes the
// response body into out. A 429/5xx status surfaces as a transient
// retry.HTTPError; any other non-2xx status is permanent.
func (c *Client) getJSON(ctx context.Context, resource string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, params.Encode())

	return retry.Do(ctx, c.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			// Read a bounded slice of the body for the error message.
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &retry.HTTPError{
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("%s: %s", resource, string(body)),
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", resource, err)
		}
		metrics.RecordCatalogPage(resource)
		return nil
	})
}
