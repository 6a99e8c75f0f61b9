package dataset

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrNotLoaded is returned by Store accessors before the first successful load.
var ErrNotLoaded = errors.New("dataset not loaded")

// Snapshot is the dataset currently held by a Store.
type Snapshot struct {
	Dataset  *domain.Dataset
	Source   string
	LoadedAt time.Time
}

// Store caches the most recently loaded dataset for the lifetime of the
// process. A reload swaps the reference; readers holding the previous
// dataset keep a consistent view.
type Store struct {
	loader  *Loader
	source  string
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty Store for source. Call Reload to populate it.
func NewStore(loader *Loader, source string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		loader:  loader,
		source:  source,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Reload loads the configured source and, on success, replaces the cached
// dataset. On failure the previous dataset stays in place.
func (s *Store) Reload(ctx context.Context) error {
	start := s.clock.Now()

	ds, err := s.loader.Load(ctx, s.source)
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		s.logger.Error("dataset load failed", "source", s.source, "error", err)
		return err
	}

	now := s.clock.Now()
	s.current.Store(&Snapshot{Dataset: ds, Source: s.source, LoadedAt: now})

	s.metrics.DatasetLoads.WithLabelValues("success").Inc()
	s.metrics.DatasetLoadDuration.Observe(now.Sub(start).Seconds())
	s.metrics.DatasetRecords.Set(float64(ds.Len()))
	s.metrics.DatasetRejected.Set(float64(ds.Rejected()))

	s.logger.Info("dataset loaded",
		"source", s.source,
		"records", ds.Len(),
		"rejected", ds.Rejected(),
		"locations", len(ds.Locations()),
	)
	if ds.Rejected() > 0 {
		s.logger.Warn("dataset rows rejected", "source", s.source, "rejected", ds.Rejected())
	}
	return nil
}

// Current returns the cached dataset or ErrNotLoaded.
func (s *Store) Current() (*domain.Dataset, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Dataset, nil
}

// Snapshot returns the cached dataset together with its load metadata.
func (s *Store) Snapshot() (Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return *snap, nil
}

// CheckReadiness returns nil once a dataset has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}
