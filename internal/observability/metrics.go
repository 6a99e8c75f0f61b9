package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "youthpop"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Dataset metrics.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      prometheus.Gauge
	DatasetRejected     prometheus.Gauge
	DatasetFetchStatus  *prometheus.CounterVec // labels: code

	// Analysis metrics.
	AnalysisRequests *prometheus.CounterVec // labels: operation={rows,series,describe,fit,predict,chart}, outcome={success,error}
	AnalysisCache    *prometheus.CounterVec // labels: operation={describe,fit}, result={hit,miss}

	// Forecast pipeline metrics.
	PipelineRunning     prometheus.Gauge
	LocationsAnalyzed   prometheus.Counter
	AnalysisErrors      prometheus.Counter
	ReportsPublished    prometheus.Counter
	BatchSize           prometheus.Histogram
	BatchPublishSeconds prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.DatasetRejected,
		m.DatasetFetchStatus,
		m.AnalysisRequests,
		m.AnalysisCache,
		m.PipelineRunning,
		m.LocationsAnalyzed,
		m.AnalysisErrors,
		m.ReportsPublished,
		m.BatchSize,
		m.BatchPublishSeconds,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete dataset read and parse.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Accepted records in the current dataset.",
		}),
		DatasetRejected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rejected_rows",
			Help:      "Rows rejected while loading the current dataset.",
		}),
		DatasetFetchStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_responses_total",
			Help:      "HTTP responses received when fetching a remote dataset, by status code.",
		}, []string{"code"}),
		AnalysisRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_requests_total",
			Help:      "Analysis requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		AnalysisCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_cache_total",
			Help:      "Analysis cache lookups by operation and result.",
		}, []string{"operation", "result"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while the forecast pipeline is active, 0 otherwise.",
		}),
		LocationsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locations_analyzed_total",
			Help:      "Locations successfully analyzed by the forecast pipeline.",
		}),
		AnalysisErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Locations skipped by the forecast pipeline because analysis failed.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Location reports handed to the sink.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of locations per pipeline batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchPublishSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_publish_duration_seconds",
			Help:      "Duration of a complete batch analyze-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
