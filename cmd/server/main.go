package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/youth-population-analysis/internal/adapter/http"
	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/config"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

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
	metrics := observability.NewMetrics()

	fetcher := dataset.NewFetcher(cfg.DatasetTimeout, metrics, logger)
	loader := dataset.NewLoader(fetcher, dataset.DefaultOptions())
	store := dataset.NewStore(loader, cfg.DatasetSource, clockwork.NewRealClock(), logger, metrics)
	analyzer := analysis.NewCachedAnalyzer(analysis.NewEngine(), cfg.AnalysisCacheSize, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, analyzer, cfg.ForecastYears, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// A failed initial load leaves /readyz at 503 until POST /api/dataset/reload succeeds.
	if err := store.Reload(ctx); err != nil {
		logger.Error("initial dataset load failed", "source", cfg.DatasetSource, "error", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
