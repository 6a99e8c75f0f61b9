package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DescriptiveStats summarises the values of one Series. Std is NaN when fewer
// than two observations are available.
type DescriptiveStats struct {
	Location string  `json:"location"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	P25      float64 `json:"p25"`
	P50      float64 `json:"p50"`
	P75      float64 `json:"p75"`
	Max      float64 `json:"max"`
}

// MarshalJSON encodes an undefined Std as null; encoding/json rejects NaN.
func (s DescriptiveStats) MarshalJSON() ([]byte, error) {
	type plain DescriptiveStats
	var std *float64
	if !math.IsNaN(s.Std) {
		v := s.Std
		std = &v
	}
	return json.Marshal(struct {
		plain
		Std *float64 `json:"std"`
	}{plain: plain(s), Std: std})
}

// TrendModel is the fitted line value = Intercept + Slope*year.
type TrendModel struct {
	Location  string    `json:"location"`
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`
	Observed  YearRange `json:"observed"`
}

// At evaluates the line at year. The product is rounded before the addition so
// results do not depend on whether the platform fuses multiply-add.
func (m TrendModel) At(year int) float64 {
	return m.Intercept + float64(m.Slope*float64(year))
}

// ForecastResult pairs each requested year with its projected value.
// QueryYears and Predicted always have the same length and order.
type ForecastResult struct {
	Location   string    `json:"location"`
	InputYears YearRange `json:"input_years"`
	QueryYears []int     `json:"query_years"`
	Predicted  []float64 `json:"predicted"`
}

// LocationReport bundles every analysis of one location, as produced by the
// batch forecast pipeline.
type LocationReport struct {
	Location    string           `json:"location"`
	Stats       DescriptiveStats `json:"stats"`
	Trend       TrendModel       `json:"trend"`
	Forecast    ForecastResult   `json:"forecast"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ParseYears parses a comma-separated list of years such as "2023,2024,2025".
// Whitespace around entries is ignored. Order and duplicates are preserved.
func ParseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyQuery
	}
	parts := strings.Split(s, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", p, err)
		}
		years = append(years, y)
	}
	return years, nil
}
