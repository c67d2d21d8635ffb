// The worker binary runs the scheduled pipeline: a cron-driven ingestion run
// (followed channels -> uploads feeds -> dedup -> enrichment -> day file)
// optionally followed by the digest pass (summaries -> HTML report ->
// delivery). It also serves Prometheus metrics and health probes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"tube-digest/internal/catalog"
	"tube-digest/internal/infra/notifier"
	"tube-digest/internal/infra/state"
	"tube-digest/internal/infra/summarizer"
	workerPkg "tube-digest/internal/infra/worker"
	"tube-digest/internal/infra/writer"
	"tube-digest/internal/observability/logging"
	"tube-digest/internal/pkg/config"
	"tube-digest/internal/report"
	digestUC "tube-digest/internal/usecase/digest"
	ingestUC "tube-digest/internal/usecase/ingest"
)

func main() {
	// Local development convenience; in production the environment is
	// injected by the orchestrator.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	workerConfig := workerPkg.LoadConfigFromEnv(logger)
	if err := workerConfig.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.String("out_dir", workerConfig.OutDir),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Bool("run_digest", workerConfig.RunDigest))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	loc := writer.Location(workerConfig.Timezone)

	ingestSvc, cleanup := setupIngestService(logger, workerConfig, loc)
	defer cleanup()

	var digestSvc *digestUC.Service
	if workerConfig.RunDigest {
		digestSvc = setupDigestService(logger, workerConfig, loc)
	}

	if workerConfig.RunOnce {
		logger.Info("RUN_ONCE set, running pipeline immediately")
		runPipeline(logger, ingestSvc, digestSvc, workerConfig)
		return
	}

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	startCronWorker(ctx, logger, ingestSvc, digestSvc, workerConfig, loc, healthServer)
}

// setupIngestService wires the catalog client, the dedup state store, and the
// day file writer into the ingestion service. The returned cleanup closes the
// state store if it holds resources.
func setupIngestService(logger *slog.Logger, cfg workerPkg.Config, loc *time.Location) (*ingestUC.Service, func()) {
	catalogConfig, err := catalog.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid catalog configuration", slog.Any("error", err))
		os.Exit(1)
	}
	client := catalog.NewClient(catalogConfig)

	store, cleanup := setupStateStore(logger, cfg)

	csvWriter := writer.NewCSVWriter(cfg.OutDir, loc)

	ingestConfig := ingestUC.LoadConfigFromEnv()
	if err := ingestConfig.Validate(); err != nil {
		logger.Error("invalid ingest configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("ingest service initialized",
		slog.Int("max_pages", ingestConfig.MaxPages),
		slog.Int("chunk_size", ingestConfig.ChunkSize))

	return ingestUC.NewService(client, store, csvWriter, ingestConfig), cleanup
}

// setupStateStore selects the dedup state backend.
//
// STATE_BACKEND:
//   - "file" (default): JSON artifact at <out dir>/state.json
//   - "sqlite": database at <out dir>/state.db
func setupStateStore(logger *slog.Logger, cfg workerPkg.Config) (state.Store, func()) {
	backend := config.GetEnvString("STATE_BACKEND", "file")
	switch backend {
	case "file":
		path := filepath.Join(cfg.OutDir, "state.json")
		logger.Info("state store initialized",
			slog.String("backend", backend),
			slog.String("path", path))
		return state.NewFileStore(path), func() {}
	case "sqlite":
		path := filepath.Join(cfg.OutDir, "state.db")
		store, err := state.NewSQLiteStore(path)
		if err != nil {
			logger.Error("failed to open sqlite state store",
				slog.String("path", path),
				slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("state store initialized",
			slog.String("backend", backend),
			slog.String("path", path))
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close state store", slog.Any("error", err))
			}
		}
	default:
		logger.Error("unknown STATE_BACKEND", slog.String("value", backend))
		os.Exit(1)
		return nil, nil
	}
}

// setupDigestService wires the summarizer, report renderer, and notifier
// into the digest service.
func setupDigestService(logger *slog.Logger, cfg workerPkg.Config, loc *time.Location) *digestUC.Service {
	sum := createSummarizer(logger)

	renderer := report.NewRenderer(cfg.OutDir)

	slackConfig := notifier.LoadSlackConfigFromEnv()
	if err := slackConfig.Validate(); err != nil {
		logger.Error("invalid Slack configuration", slog.Any("error", err))
		os.Exit(1)
	}
	var not notifier.Notifier
	if slackConfig.Enabled {
		not = notifier.NewSlackNotifier(slackConfig)
		logger.Info("Slack notifier initialized")
	} else {
		not = notifier.NewNoOpNotifier()
		logger.Info("digest notifications disabled")
	}

	csvWriter := writer.NewCSVWriter(cfg.OutDir, loc)
	return digestUC.NewService(csvWriter, sum, renderer, not, loc)
}

// createSummarizer builds the configured completion-service provider.
func createSummarizer(logger *slog.Logger) summarizer.Summarizer {
	sumConfig, err := summarizer.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid summarizer configuration", slog.Any("error", err))
		os.Exit(1)
	}

	switch sumConfig.Provider {
	case "openrouter":
		apiKey := config.GetEnvString("OPENROUTER_API_KEY", "")
		if apiKey == "" {
			logger.Error("OPENROUTER_API_KEY is required for the openrouter provider")
			os.Exit(1)
		}
		logger.Info("summarizer initialized",
			slog.String("provider", sumConfig.Provider),
			slog.String("model", sumConfig.Model))
		return summarizer.NewOpenRouter(apiKey, sumConfig)
	case "claude":
		apiKey := config.GetEnvString("ANTHROPIC_API_KEY", "")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required for the claude provider")
			os.Exit(1)
		}
		logger.Info("summarizer initialized",
			slog.String("provider", sumConfig.Provider),
			slog.String("model", sumConfig.Model))
		return summarizer.NewClaude(apiKey, sumConfig)
	default:
		logger.Info("summarizer initialized", slog.String("provider", "noop"))
		return summarizer.NewNoop()
	}
}

// startCronWorker schedules the pipeline and blocks until shutdown.
func startCronWorker(ctx context.Context, logger *slog.Logger, ingestSvc *ingestUC.Service, digestSvc *digestUC.Service, cfg workerPkg.Config, loc *time.Location, healthServer *workerPkg.HealthServer) {
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		runPipeline(logger, ingestSvc, digestSvc, cfg)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	// Let an in-flight job finish before exiting.
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.RunTimeout):
		logger.Warn("job did not finish before shutdown deadline")
	}
	logger.Info("worker stopped")
}

// runPipeline executes one ingestion run and, when enabled, the digest pass.
func runPipeline(logger *slog.Logger, ingestSvc *ingestUC.Service, digestSvc *digestUC.Service, cfg workerPkg.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	logger.Info("ingestion run started")
	stats, err := ingestSvc.Run(ctx)
	if err != nil {
		logger.Error("ingestion run failed", slog.Any("error", err))
		return
	}

	if digestSvc == nil {
		return
	}

	logger.Info("digest run started", slog.Int("new_items", stats.Written))
	if _, err := digestSvc.Run(ctx); err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
	}
}
