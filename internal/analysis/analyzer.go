package analysis

import "github.com/couchcryptid/youth-population-analysis/internal/domain"

// Analyzer computes the per-series analyses that are worth memoising.
// Predict is cheap and stays a plain function.
type Analyzer interface {
	Describe(series domain.Series) (domain.DescriptiveStats, error)
	Fit(series domain.Series) (domain.TrendModel, error)
}

// Engine is the uncached Analyzer backed by the package functions.
type Engine struct{}

// NewEngine returns the uncached Analyzer.
func NewEngine() Engine {
	return Engine{}
}

func (Engine) Describe(series domain.Series) (domain.DescriptiveStats, error) {
	return Describe(series)
}

func (Engine) Fit(series domain.Series) (domain.TrendModel, error) {
	return Fit(series)
}
