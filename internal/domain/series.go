package domain

import (
	"cmp"
	"slices"
)

// Point is a single (year, value) observation.
type Point struct {
	Time  int     `json:"time"`
	Value float64 `json:"value"`
}

// Series is one location's observations. Points are in dataset order unless
// the Series came from Sorted.
type Series struct {
	Location string  `json:"location"`
	Points   []Point `json:"points"`
}

// YearRange is an inclusive span of years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Points)
}

// Sorted returns a copy ordered ascending by year. Points sharing a year keep
// their original relative order.
func (s Series) Sorted() Series {
	points := slices.Clone(s.Points)
	slices.SortStableFunc(points, func(a, b Point) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return Series{Location: s.Location, Points: points}
}

// Times returns the years as float64, in series order.
func (s Series) Times() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Time)
	}
	return out
}

// Values returns the observed values, in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// YearRange reports the earliest and latest year. ok is false for an empty series.
func (s Series) YearRange() (r YearRange, ok bool) {
	if len(s.Points) == 0 {
		return YearRange{}, false
	}
	r = YearRange{Min: s.Points[0].Time, Max: s.Points[0].Time}
	for _, p := range s.Points[1:] {
		r.Min = min(r.Min, p.Time)
		r.Max = max(r.Max, p.Time)
	}
	return r, true
}
