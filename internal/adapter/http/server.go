package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/youth-population-analysis/internal/adapter/chart"
	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/observability"
	"github.com/couchcryptid/youth-population-analysis/internal/report"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DatasetStore provides the current dataset and replaces it on demand.
type DatasetStore interface {
	sharedobs.ReadinessChecker
	Snapshot() (dataset.Snapshot, error)
	Reload(ctx context.Context) error
}

// Server exposes the analysis API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer   *http.Server
	store        DatasetStore
	analyzer     analysis.Analyzer
	defaultYears []int
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewServer creates an HTTP server. defaultYears is the forecast horizon used
// when a request does not pass ?years=.
func NewServer(addr string, store DatasetStore, analyzer analysis.Analyzer, defaultYears []int, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:        store,
		analyzer:     analyzer,
		defaultYears: defaultYears,
		metrics:      metrics,
		logger:       logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(store))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /api/locations/{key}/series", s.handleSeries)
	mux.HandleFunc("GET /api/locations/{key}/rows", s.handleRows)
	mux.HandleFunc("GET /api/locations/{key}/stats", s.handleStats)
	mux.HandleFunc("GET /api/locations/{key}/trend", s.handleTrend)
	mux.HandleFunc("GET /api/locations/{key}/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/locations/{key}/chart", s.handleChart)
	mux.HandleFunc("POST /api/dataset/reload", s.handleReload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type locationsResponse struct {
	Locations        []string  `json:"locations"`
	DefaultLocations []string  `json:"default_locations"`
	Records          int       `json:"records"`
	Rejected         int       `json:"rejected"`
	Source           string    `json:"source"`
	LoadedAt         time.Time `json:"loaded_at"`
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Snapshot()
	if err != nil {
		s.writeError(w, "locations", err)
		return
	}

	locations := snap.Dataset.Locations()
	if locations == nil {
		locations = []string{}
	}
	s.metrics.AnalysisRequests.WithLabelValues("locations", "success").Inc()
	sharedobs.WriteJSON(w, http.StatusOK, locationsResponse{
		Locations:        locations,
		DefaultLocations: domain.DefaultLocations(),
		Records:          snap.Dataset.Len(),
		Rejected:         snap.Dataset.Rejected(),
		Source:           snap.Source,
		LoadedAt:         snap.LoadedAt,
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, ok := s.selectSeries(w, r, "series", false)
	if !ok {
		return
	}
	if r.URL.Query().Get("order") == "time" {
		series = series.Sorted()
	}
	s.respond(w, r, "series", series)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	ds, err := s.current()
	if err != nil {
		s.writeError(w, "rows", err)
		return
	}
	s.respond(w, r, "rows", ds.Rows(r.PathValue("key")))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	series, ok := s.selectSeries(w, r, "describe", true)
	if !ok {
		return
	}
	stats, err := s.analyzer.Describe(series)
	if err != nil {
		s.writeError(w, "describe", err)
		return
	}
	s.respond(w, r, "describe", stats)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	series, ok := s.selectSeries(w, r, "fit", true)
	if !ok {
		return
	}
	model, err := s.analyzer.Fit(series)
	if err != nil {
		s.writeError(w, "fit", err)
		return
	}
	s.respond(w, r, "fit", model)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	years := s.defaultYears
	if q := r.URL.Query(); q.Has("years") {
		parsed, err := domain.ParseYears(q.Get("years"))
		if err != nil {
			s.writeError(w, "predict", badRequest{err})
			return
		}
		years = parsed
	}

	series, ok := s.selectSeries(w, r, "predict", true)
	if !ok {
		return
	}
	model, err := s.analyzer.Fit(series)
	if err != nil {
		s.writeError(w, "predict", err)
		return
	}
	forecast, err := analysis.Predict(model, years)
	if err != nil {
		s.writeError(w, "predict", err)
		return
	}
	s.respond(w, r, "predict", forecast)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := chart.Line
	if t := r.URL.Query().Get("type"); t != "" {
		parsed, err := chart.ParseKind(t)
		if err != nil {
			s.writeError(w, "chart", badRequest{err})
			return
		}
		kind = parsed
	}

	series, ok := s.selectSeries(w, r, "chart", true)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, kind, series, chart.DefaultSize); err != nil {
		s.writeError(w, "chart", err)
		return
	}

	s.metrics.AnalysisRequests.WithLabelValues("chart", "success").Inc()
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reload(r.Context()); err != nil {
		s.writeError(w, "reload", err)
		return
	}
	s.metrics.AnalysisRequests.WithLabelValues("reload", "success").Inc()
	s.handleLocations(w, r)
}

func (s *Server) current() (*domain.Dataset, error) {
	snap, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Dataset, nil
}

// selectSeries looks up the {key} path value. With requireData set, an unknown
// key is answered with 404 instead of an empty series.
func (s *Server) selectSeries(w http.ResponseWriter, r *http.Request, op string, requireData bool) (domain.Series, bool) {
	ds, err := s.current()
	if err != nil {
		s.writeError(w, op, err)
		return domain.Series{}, false
	}
	key := r.PathValue("key")
	series := ds.Select(key)
	if requireData && series.Len() == 0 {
		s.writeError(w, op, fmt.Errorf("location %q: %w", key, domain.ErrEmptySeries))
		return domain.Series{}, false
	}
	return series, true
}

// respond writes result as JSON, or as aligned text when ?format=text.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, result any) {
	if r.URL.Query().Get("format") == "text" {
		text, err := report.String(result)
		if err != nil {
			s.writeError(w, op, err)
			return
		}
		s.metrics.AnalysisRequests.WithLabelValues(op, "success").Inc()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(text)) //nolint:errcheck // client went away
		return
	}

	s.metrics.AnalysisRequests.WithLabelValues(op, "success").Inc()
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	s.metrics.AnalysisRequests.WithLabelValues(op, "error").Inc()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "operation", op, "error", err)
	} else {
		s.logger.Debug("request rejected", "operation", op, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// badRequest marks a malformed query parameter.
type badRequest struct{ err error }

func (b badRequest) Error() string { return b.err.Error() }
func (b badRequest) Unwrap() error { return b.err }

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, chart.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptySeries):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrDegenerateInput),
		errors.Is(err, chart.ErrUnrenderable),
		errors.Is(err, domain.ErrSchema):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dataset.ErrNotLoaded),
		errors.Is(err, domain.ErrDatasetLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
