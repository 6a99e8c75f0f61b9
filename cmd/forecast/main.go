package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	kafkaadapter "github.com/couchcryptid/youth-population-analysis/internal/adapter/kafka"
	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/config"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
	"github.com/couchcryptid/youth-population-analysis/internal/pipeline"
	"github.com/couchcryptid/youth-population-analysis/internal/report"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

// sink receives report batches and is closed once the run finishes.
type sink interface {
	pipeline.BatchLoader
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("forecast run failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	loader := dataset.NewLoader(dataset.NewFetcher(cfg.DatasetTimeout, metrics, logger), dataset.DefaultOptions())
	store := dataset.NewStore(loader, cfg.DatasetSource, clock, logger, metrics)
	if err := store.Reload(ctx); err != nil {
		return err
	}
	ds, err := store.Current()
	if err != nil {
		return err
	}

	var out sink
	if cfg.KafkaEnabled {
		out = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("publishing forecasts to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaForecastTopic)
	} else {
		out = report.NewBatchWriter(os.Stdout)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	analyzer := analysis.NewCachedAnalyzer(analysis.NewEngine(), cfg.AnalysisCacheSize, metrics)
	p := pipeline.New(
		pipeline.NewDatasetExtractor(ds),
		pipeline.NewTransformer(analyzer, cfg.ForecastYears, clock),
		out, logger, metrics, cfg.BatchSize,
	)

	sum, err := p.Run(ctx)
	logger.Info("forecast run finished",
		"analyzed", sum.Analyzed,
		"skipped", sum.Skipped,
		"published", sum.Published,
		"batches", sum.Batches,
	)
	return err
}
