package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
)

// BatchWriter writes location reports as text, one block per location. It is
// the forecast pipeline's sink when Kafka is disabled.
type BatchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBatchWriter creates a BatchWriter that writes to w.
func NewBatchWriter(w io.Writer) *BatchWriter {
	return &BatchWriter{w: w}
}

// LoadBatch renders every report in order, separated by a rule line.
func (b *BatchWriter) LoadBatch(ctx context.Context, reports []domain.LocationReport) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range reports {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := Format(b.w, r); err != nil {
			return fmt.Errorf("write report %q: %w", r.Location, err)
		}
		if _, err := io.WriteString(b.w, "----\n"); err != nil {
			return fmt.Errorf("write report %q: %w", r.Location, err)
		}
	}
	return nil
}

// Close is a no-op; the caller owns the underlying writer.
func (b *BatchWriter) Close() error {
	return nil
}
