package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
)

// BatchExtractor yields up to batchSize series per call. An empty batch means
// the source is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.Series, error)
}

// Transformer turns one location's series into a report.
type Transformer interface {
	Transform(ctx context.Context, series domain.Series) (domain.LocationReport, error)
}

// BatchLoader writes reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.LocationReport) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRetry sets the load retry policy. Backoff starts at initial, doubles per
// attempt up to maxBackoff, and the batch is abandoned after attempts tries.
func WithRetry(initial, maxBackoff time.Duration, attempts int) Option {
	return func(p *Pipeline) {
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
		p.maxAttempts = max(attempts, 1)
	}
}

// Summary counts what one Run did.
type Summary struct {
	Analyzed  int
	Skipped   int
	Published int
	Batches   int
}

// Pipeline runs the extract-analyze-publish pass over every location.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	initialBackoff time.Duration
	maxBackoff     time.Duration
	maxAttempts    int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		transformer:    t,
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		batchSize:      max(batchSize, 1),
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
		maxAttempts:    5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes batches until the extractor is exhausted or ctx is cancelled.
// Locations whose analysis fails are skipped and counted; a batch that cannot
// be loaded after all retry attempts stops the run with an error.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var sum Summary
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return sum, err
		}

		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			return sum, fmt.Errorf("extract batch: %w", err)
		}
		if len(batch) == 0 {
			p.logger.Info("pipeline finished",
				"analyzed", sum.Analyzed,
				"skipped", sum.Skipped,
				"published", sum.Published,
				"batches", sum.Batches,
			)
			return sum, nil
		}

		if err := p.processBatch(ctx, batch, &sum); err != nil {
			return sum, err
		}
	}
}

// processBatch analyzes each series in the batch and loads the successes.
func (p *Pipeline) processBatch(ctx context.Context, batch []domain.Series, sum *Summary) error {
	start := time.Now()
	p.metrics.BatchSize.Observe(float64(len(batch)))

	reports := make([]domain.LocationReport, 0, len(batch))
	for _, series := range batch {
		report, err := p.transformer.Transform(ctx, series)
		if err != nil {
			p.logger.Warn("analysis failed, skipping location",
				"location", series.Location,
				"observations", series.Len(),
				"error", err,
			)
			p.metrics.AnalysisErrors.Inc()
			sum.Skipped++
			continue
		}
		reports = append(reports, report)
	}
	sum.Analyzed += len(reports)
	p.metrics.LocationsAnalyzed.Add(float64(len(reports)))

	if len(reports) == 0 {
		return nil
	}

	if err := p.loadWithRetry(ctx, reports); err != nil {
		return err
	}

	sum.Batches++
	sum.Published += len(reports)
	p.metrics.ReportsPublished.Add(float64(len(reports)))
	p.metrics.BatchPublishSeconds.Observe(time.Since(start).Seconds())
	return nil
}

// loadWithRetry retries LoadBatch with exponential backoff.
func (p *Pipeline) loadWithRetry(ctx context.Context, reports []domain.LocationReport) error {
	backoff := p.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return errors.Join(lastErr, ctx.Err())
		}
		p.logger.Error("load batch failed", "error", err, "batch_size", len(reports), "attempt", attempt)
		if attempt == p.maxAttempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return errors.Join(lastErr, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("load batch of %d after %d attempts: %w", len(reports), p.maxAttempts, lastErr)
}
