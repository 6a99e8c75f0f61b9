package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/observability"
)

// maxFetchBytes caps remote downloads; the full OECD export is well under 1 MiB.
const maxFetchBytes = 64 << 20

// Fetcher downloads remote dataset files over HTTP.
type Fetcher struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewFetcher creates an HTTP fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch returns the response body of a GET to url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	f.metrics.DatasetFetchStatus.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}
	if len(data) > maxFetchBytes {
		return nil, fmt.Errorf("fetch dataset: body exceeds %d bytes", maxFetchBytes)
	}

	f.logger.Debug("dataset fetched",
		"url", url,
		"bytes", len(data),
		"duration", time.Since(start),
	)
	return data, nil
}
