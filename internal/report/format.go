// Package report renders analysis results as aligned plain text.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
)

// ErrUnsupportedResult is returned when Format receives a type it cannot render.
var ErrUnsupportedResult = errors.New("unsupported result type")

// ErrMalformedResult is returned when a result's parallel fields disagree.
var ErrMalformedResult = errors.New("malformed result")

// Format writes a human-readable rendering of result to w. Supported types are
// domain.Series, domain.RowSet, domain.DescriptiveStats, domain.TrendModel,
// domain.ForecastResult and domain.LocationReport. Output is deterministic and
// always names the location.
func Format(w io.Writer, result any) error {
	if err := check(result); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	switch r := result.(type) {
	case domain.Series:
		writeSeries(tw, r)
	case domain.RowSet:
		writeRowSet(tw, r)
	case domain.DescriptiveStats:
		writeStats(tw, r)
	case domain.TrendModel:
		writeTrend(tw, r)
	case domain.ForecastResult:
		writeForecast(tw, r)
	case domain.LocationReport:
		writeLocationReport(tw, r)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedResult, result)
	}

	return tw.Flush()
}

func check(result any) error {
	var f domain.ForecastResult
	switch r := result.(type) {
	case domain.ForecastResult:
		f = r
	case domain.LocationReport:
		f = r.Forecast
	default:
		return nil
	}
	if len(f.QueryYears) != len(f.Predicted) {
		return fmt.Errorf("%w: forecast %q has %d years and %d predictions",
			ErrMalformedResult, f.Location, len(f.QueryYears), len(f.Predicted))
	}
	return nil
}

// String returns the Format rendering of result.
func String(result any) (string, error) {
	var buf bytes.Buffer
	if err := Format(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeSeries(w io.Writer, s domain.Series) {
	fmt.Fprintf(w, "Location: %s\n", s.Location)
	if len(s.Points) == 0 {
		fmt.Fprintln(w, "(no observations)")
		return
	}
	fmt.Fprintln(w, "TIME\tValue")
	for _, p := range s.Points {
		fmt.Fprintf(w, "%d\t%s\n", p.Time, strconv.FormatFloat(p.Value, 'f', -1, 64))
	}
}

func writeRowSet(w io.Writer, rs domain.RowSet) {
	fmt.Fprintf(w, "Location: %s\n", rs.Location)
	if len(rs.Rows) == 0 {
		fmt.Fprintln(w, "(no observations)")
		return
	}
	fmt.Fprintln(w, strings.Join(rs.Header, "\t"))
	for _, row := range rs.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
}

func writeStats(w io.Writer, s domain.DescriptiveStats) {
	fmt.Fprintf(w, "Location:\t%s\n", s.Location)
	fmt.Fprintf(w, "Count:\t%d\n", s.Count)
	fmt.Fprintf(w, "Mean:\t%s\n", number(s.Mean))
	fmt.Fprintf(w, "Std:\t%s\n", number(s.Std))
	fmt.Fprintf(w, "Min:\t%s\n", number(s.Min))
	fmt.Fprintf(w, "25%%:\t%s\n", number(s.P25))
	fmt.Fprintf(w, "50%%:\t%s\n", number(s.P50))
	fmt.Fprintf(w, "75%%:\t%s\n", number(s.P75))
	fmt.Fprintf(w, "Max:\t%s\n", number(s.Max))
}

func writeTrend(w io.Writer, m domain.TrendModel) {
	fmt.Fprintf(w, "Location:\t%s\n", m.Location)
	fmt.Fprintf(w, "Intercept:\t%s\n", number(m.Intercept))
	fmt.Fprintf(w, "Slope:\t%s\n", number(m.Slope))
	fmt.Fprintf(w, "Observed:\t%s\n", yearRange(m.Observed))
}

func writeForecast(w io.Writer, f domain.ForecastResult) {
	fmt.Fprintf(w, "Location:\t%s\n", f.Location)
	fmt.Fprintf(w, "Observed:\t%s\n", yearRange(f.InputYears))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Year\tPredicted")
	for i, y := range f.QueryYears {
		fmt.Fprintf(w, "%d\t%s\n", y, number(f.Predicted[i]))
	}
}

func writeLocationReport(w io.Writer, r domain.LocationReport) {
	fmt.Fprintf(w, "Report for %s generated %s\n", r.Location, r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintln(w)
	writeStats(w, r.Stats)
	fmt.Fprintln(w)
	writeTrend(w, r.Trend)
	fmt.Fprintln(w)
	writeForecast(w, r.Forecast)
}

// number renders computed values with fixed precision; NaN marks an undefined
// statistic.
func number(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func yearRange(r domain.YearRange) string {
	if r.Min == r.Max {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
