package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
)

// DatasetExtractor walks the locations of a dataset in first-seen order.
type DatasetExtractor struct {
	mu        sync.Mutex
	ds        *domain.Dataset
	locations []string
	next      int
}

// NewDatasetExtractor creates an extractor over every location in ds.
func NewDatasetExtractor(ds *domain.Dataset) *DatasetExtractor {
	return &DatasetExtractor{ds: ds, locations: ds.Locations()}
}

// ExtractBatch returns the series of the next batchSize locations.
func (e *DatasetExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	end := min(e.next+batchSize, len(e.locations))
	batch := make([]domain.Series, 0, end-e.next)
	for _, loc := range e.locations[e.next:end] {
		batch = append(batch, e.ds.Select(loc))
	}
	e.next = end
	return batch, nil
}
