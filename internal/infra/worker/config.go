// Package worker holds the scheduling-facing infrastructure of the pipeline:
// the worker configuration and the health check server used by the cron
// binary.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tube-digest/internal/pkg/config"
)

// Config holds the configuration for the worker binary: the cron schedule,
// the timezone both scheduling and day partitioning resolve against, the
// per-run timeout, and the ports of the operational HTTP servers.
type Config struct {
	// CronSchedule is the cron expression for the daily ingestion job.
	// Format: "minute hour day month weekday", e.g. "10 9 * * *".
	CronSchedule string

	// Timezone is the IANA timezone name used for cron scheduling and for
	// resolving the local date of day files.
	Timezone string

	// OutDir is the directory holding day files, reports, and the JSON
	// state artifact.
	OutDir string

	// RunTimeout is the maximum duration of a single ingestion run.
	RunTimeout time.Duration

	// RunDigest controls whether the digest pass (summaries, report,
	// delivery) runs right after each ingestion run.
	RunDigest bool

	// RunOnce executes one pipeline run immediately and exits instead of
	// scheduling.
	RunOnce bool

	// HealthPort is the port of the health check HTTP server.
	HealthPort int

	// MetricsPort is the port of the Prometheus metrics HTTP server.
	MetricsPort int
}

// DefaultConfig returns a Config with production defaults: a daily run at
// 9:10 local time in Asia/Shanghai, a 30-minute run timeout, and the usual
// exporter ports.
func DefaultConfig() Config {
	return Config{
		CronSchedule: "10 9 * * *",
		Timezone:     "Asia/Shanghai",
		OutDir:       "outputs",
		RunTimeout:   30 * time.Minute,
		RunDigest:    true,
		HealthPort:   9091,
		MetricsPort:  9090,
	}
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables, falling back to defaults for missing or invalid values.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "10 9 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "Asia/Shanghai")
//   - OUT_DIR: output directory (default: "outputs")
//   - RUN_TIMEOUT: duration string (default: 30m)
//   - RUN_DIGEST: whether to run the digest pass after ingestion (default: true)
//   - RUN_ONCE: run the pipeline once immediately and exit (default: false)
//   - WORKER_HEALTH_PORT: health server port (default: 9091)
//   - WORKER_METRICS_PORT: metrics server port (default: 9090)
func LoadConfigFromEnv(logger *slog.Logger) Config {
	def := DefaultConfig()
	cfg := Config{
		CronSchedule: config.GetEnvString("CRON_SCHEDULE", def.CronSchedule),
		Timezone:     config.GetEnvString("WORKER_TIMEZONE", def.Timezone),
		OutDir:       config.GetEnvString("OUT_DIR", def.OutDir),
		RunTimeout:   config.GetEnvDuration("RUN_TIMEOUT", def.RunTimeout),
		RunDigest:    config.GetEnvBool("RUN_DIGEST", def.RunDigest),
		RunOnce:      config.GetEnvBool("RUN_ONCE", false),
		HealthPort:   config.GetEnvInt("WORKER_HEALTH_PORT", def.HealthPort),
		MetricsPort:  config.GetEnvInt("WORKER_METRICS_PORT", def.MetricsPort),
	}

	// Fail open on invalid values: keep the worker scheduling with defaults
	// rather than refusing to start.
	if err := config.ValidateCronSchedule(cfg.CronSchedule); err != nil {
		logger.Warn("invalid CRON_SCHEDULE, using default",
			slog.String("value", cfg.CronSchedule),
			slog.String("default", def.CronSchedule),
			slog.Any("error", err))
		cfg.CronSchedule = def.CronSchedule
	}
	if err := config.ValidateTimezone(cfg.Timezone); err != nil {
		logger.Warn("invalid WORKER_TIMEZONE, using default",
			slog.String("value", cfg.Timezone),
			slog.String("default", def.Timezone),
			slog.Any("error", err))
		cfg.Timezone = def.Timezone
	}
	if err := config.ValidateDurationRange("RUN_TIMEOUT", cfg.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		logger.Warn("invalid RUN_TIMEOUT, using default",
			slog.Duration("value", cfg.RunTimeout),
			slog.Duration("default", def.RunTimeout),
			slog.Any("error", err))
		cfg.RunTimeout = def.RunTimeout
	}

	return cfg
}

// Validate checks the configuration and returns all violations at once.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.OutDir == "" {
		errs = append(errs, fmt.Errorf("OUT_DIR must not be empty"))
	}
	if err := config.ValidatePositiveDuration("RUN_TIMEOUT", c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange("WORKER_HEALTH_PORT", c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange("WORKER_METRICS_PORT", c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	return errors.Join(errs...)
}
