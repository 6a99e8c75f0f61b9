package analysis

import (
	"fmt"
	"slices"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
)

// Predict evaluates the trend line at each requested year, in the order given.
// Years may lie anywhere, including far outside the observed range; there is
// no clamping and no interval estimate.
func Predict(model domain.TrendModel, years []int) (domain.ForecastResult, error) {
	if len(years) == 0 {
		return domain.ForecastResult{}, fmt.Errorf("predict %q: %w", model.Location, domain.ErrEmptyQuery)
	}
	if !isFinite(model.Intercept) || !isFinite(model.Slope) {
		return domain.ForecastResult{}, fmt.Errorf("predict %q: intercept=%v slope=%v: %w",
			model.Location, model.Intercept, model.Slope, domain.ErrMalformedModel)
	}

	predicted := make([]float64, len(years))
	for i, y := range years {
		predicted[i] = model.At(y)
	}

	return domain.ForecastResult{
		Location:   model.Location,
		InputYears: model.Observed,
		QueryYears: slices.Clone(years),
		Predicted:  predicted,
	}, nil
}
