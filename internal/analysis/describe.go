package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Describe computes count, mean, sample standard deviation (N-1), min, max and
// the 25th/50th/75th percentiles of the series values. Percentiles interpolate
// linearly between order statistics at rank (n-1)*p.
func Describe(series domain.Series) (domain.DescriptiveStats, error) {
	n := series.Len()
	if n == 0 {
		return domain.DescriptiveStats{}, fmt.Errorf("describe %q: %w", series.Location, domain.ErrEmptySeries)
	}

	values := series.Values()
	sort.Float64s(values)

	std := math.NaN()
	if n >= 2 {
		std = stat.StdDev(values, nil)
	}

	return domain.DescriptiveStats{
		Location: series.Location,
		Count:    n,
		Mean:     stat.Mean(values, nil),
		Std:      std,
		Min:      values[0],
		P25:      percentile(values, 0.25),
		P50:      percentile(values, 0.50),
		P75:      percentile(values, 0.75),
		Max:      values[n-1],
	}, nil
}

// percentile expects sorted, non-empty input.
func percentile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	hi := min(lo+1, len(sorted)-1)

	a, b := sorted[lo], sorted[hi]
	v := a + (h-float64(lo))*(b-a)

	// Keep the result inside its bracketing order statistics so rounding can
	// never break p25 <= p50 <= p75.
	return math.Min(math.Max(v, a), b)
}
