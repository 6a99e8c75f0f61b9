package analysis

import (
	"fmt"
	"math"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Fit sorts the series by year (stable) and fits value = intercept + slope*year
// by ordinary least squares.
func Fit(series domain.Series) (domain.TrendModel, error) {
	sorted := series.Sorted()
	if sorted.Len() < 2 {
		return domain.TrendModel{}, fmt.Errorf("fit %q: %d point(s): %w", series.Location, sorted.Len(), domain.ErrInsufficientData)
	}

	observed, _ := sorted.YearRange()
	if observed.Min == observed.Max {
		return domain.TrendModel{}, fmt.Errorf("fit %q: every point is year %d: %w", series.Location, observed.Min, domain.ErrDegenerateInput)
	}

	intercept, slope := stat.LinearRegression(sorted.Times(), sorted.Values(), nil, false)
	if !isFinite(intercept) || !isFinite(slope) {
		return domain.TrendModel{}, fmt.Errorf("fit %q: non-finite coefficients: %w", series.Location, domain.ErrDegenerateInput)
	}

	return domain.TrendModel{
		Location:  series.Location,
		Intercept: intercept,
		Slope:     slope,
		Observed:  observed,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
