// The digest binary runs one digest pass for today's local date and exits:
// it reads the day file, summarizes each record, writes the HTML report, and
// delivers the notification. It is the manual counterpart of the worker's
// scheduled digest stage.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"tube-digest/internal/infra/notifier"
	"tube-digest/internal/infra/summarizer"
	workerPkg "tube-digest/internal/infra/worker"
	"tube-digest/internal/infra/writer"
	"tube-digest/internal/observability/logging"
	"tube-digest/internal/pkg/config"
	"tube-digest/internal/report"
	digestUC "tube-digest/internal/usecase/digest"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	workerConfig := workerPkg.LoadConfigFromEnv(logger)
	loc := writer.Location(workerConfig.Timezone)

	sum := createSummarizer(logger)

	slackConfig := notifier.LoadSlackConfigFromEnv()
	if err := slackConfig.Validate(); err != nil {
		logger.Error("invalid Slack configuration", slog.Any("error", err))
		os.Exit(1)
	}
	var not notifier.Notifier
	if slackConfig.Enabled {
		not = notifier.NewSlackNotifier(slackConfig)
	} else {
		not = notifier.NewNoOpNotifier()
	}

	svc := digestUC.NewService(
		writer.NewCSVWriter(workerConfig.OutDir, loc),
		sum,
		report.NewRenderer(workerConfig.OutDir),
		not,
		loc,
	)

	ctx, cancel := context.WithTimeout(context.Background(), workerConfig.RunTimeout)
	defer cancel()

	stats, err := svc.Run(ctx)
	if err != nil {
		logger.Error("digest run failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("digest finished",
		slog.Int("items", stats.Items),
		slog.Int("failed", stats.Failed),
		slog.String("report_path", stats.ReportPath),
		slog.Duration("duration", stats.Duration))
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
		return summarizer.NewOpenRouter(apiKey, sumConfig)
	case "claude":
		apiKey := config.GetEnvString("ANTHROPIC_API_KEY", "")
		if apiKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required for the claude provider")
			os.Exit(1)
		}
		return summarizer.NewClaude(apiKey, sumConfig)
	default:
		return summarizer.NewNoop()
	}
}

