package pipeline

import (
	"context"
	"slices"

	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/jonboulle/clockwork"
)

// ForecastTransformer implements Transformer by running describe, fit and
// predict over one location's series.
type ForecastTransformer struct {
	analyzer analysis.Analyzer
	years    []int
	clock    clockwork.Clock
}

// NewTransformer creates a ForecastTransformer projecting onto years.
func NewTransformer(analyzer analysis.Analyzer, years []int, clock clockwork.Clock) *ForecastTransformer {
	return &ForecastTransformer{
		analyzer: analyzer,
		years:    slices.Clone(years),
		clock:    clock,
	}
}

func (t *ForecastTransformer) Transform(_ context.Context, series domain.Series) (domain.LocationReport, error) {
	stats, err := t.analyzer.Describe(series)
	if err != nil {
		return domain.LocationReport{}, err
	}
	model, err := t.analyzer.Fit(series)
	if err != nil {
		return domain.LocationReport{}, err
	}
	forecast, err := analysis.Predict(model, t.years)
	if err != nil {
		return domain.LocationReport{}, err
	}

	return domain.LocationReport{
		Location:    series.Location,
		Stats:       stats,
		Trend:       model,
		Forecast:    forecast,
		GeneratedAt: t.clock.Now().UTC(),
	}, nil
}
