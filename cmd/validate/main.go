// Command validate checks a young-population CSV before it is served: the
// header carries the required columns, every row parses, each (location,
// year) pair is unique and each location has enough years for a trend fit.
// When a reports fixture from genmock is given, it also re-runs the forecast
// analysis and compares the results.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/young_population.csv \
//	  -reports data/mock/location_reports.json
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the young-population CSV")
	reportsPath := flag.String("reports", "", "path to a genmock reports fixture (optional)")
	delimiter := flag.String("delimiter", ",", "field delimiter")
	flag.Parse()

	if *csvPath == "" || len([]rune(*delimiter)) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *reportsPath, []rune(*delimiter)[0]); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, reportsPath string, delimiter rune) int {
	fmt.Println("=== Young Population Data Validation ===")
	fmt.Println()

	data, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read CSV: %v\n", err)
		return 1
	}

	opts := dataset.DefaultOptions()
	opts.Delimiter = delimiter

	ds, err := dataset.LoadReader(bytes.NewReader(data), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	rows, err := loadCSV(data, delimiter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRows(rows, ds, opts.Columns),
		validateUniqueness(ds),
		validateCoverage(ds),
	}
	if reportsPath != "" {
		reports, err := loadReports(reportsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load reports: %v\n", err)
			return 1
		}
		phases = append(phases, validateReports(reports, ds))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d accepted, %d rejected, %d locations\n", ds.Len(), ds.Rejected(), len(ds.Locations()))

	for _, p := range phases {
		if len(p.notes) == 0 && p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for _, n := range p.notes {
			fmt.Printf("  note: %s\n", n)
		}
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(data []byte, delimiter rune) ([]csvRow, error) {
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(transform.Nop)))
	r.Comma = delimiter
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadReports(path string) ([]domain.LocationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reports []domain.LocationReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ── Phase 1: Row Parsing ──
// Missing values are expected in OECD extracts and only noted. Anything else
// the loader drops is an error.

func validateRows(rows []csvRow, ds *domain.Dataset, cols dataset.ColumnMapping) *phase {
	p := &phase{name: "Phase 1: Row Parsing"}

	var rejected, missing int
	for _, row := range rows {
		loc := row.fields[cols.Location]
		timeStr := row.fields[cols.Time]
		valueStr := row.fields[cols.Value]

		switch {
		case loc == "" || isNA(loc):
			p.errorf("line %d: empty %s", row.lineNum, cols.Location)
		case !isYear(timeStr):
			p.errorf("line %d: %s %q is not a year", row.lineNum, cols.Time, timeStr)
		case valueStr == "" || isNA(valueStr):
			missing++
		case !isFiniteNumber(valueStr):
			p.errorf("line %d: %s %q is not a number", row.lineNum, cols.Value, valueStr)
		default:
			continue
		}
		rejected++
	}

	if missing > 0 {
		p.notef("%d row(s) with a missing %s", missing, cols.Value)
	}
	if rejected != ds.Rejected() {
		p.errorf("rejected row count: loader dropped %d, row scan found %d", ds.Rejected(), rejected)
	}
	return p
}

func isNA(s string) bool {
	return s == "NA" || s == "NaN"
}

func isYear(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFiniteNumber(s string) bool {
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ── Phase 2: Uniqueness ──

func validateUniqueness(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 2: Uniqueness (location, year)"}

	for _, loc := range ds.Locations() {
		seen := map[int]int{}
		for _, pt := range ds.Select(loc).Points {
			seen[pt.Time]++
		}
		for year, n := range seen {
			if n > 1 {
				p.errorf("%s %d: %d observations", loc, year, n)
			}
		}
	}
	return p
}

// ── Phase 3: Coverage ──

func validateCoverage(ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 3: Coverage (trend fit)"}

	present := map[string]bool{}
	for _, loc := range ds.Locations() {
		present[loc] = true

		years := map[int]bool{}
		for _, pt := range ds.Select(loc).Points {
			years[pt.Time] = true
		}
		if len(years) < 2 {
			p.errorf("%s: %d distinct year(s), need at least 2 to fit a trend", loc, len(years))
		}
	}

	var absent []string
	for _, loc := range domain.DefaultLocations() {
		if !present[loc] {
			absent = append(absent, loc)
		}
	}
	if len(absent) > 0 {
		p.notef("default location(s) without data: %s", strings.Join(absent, ", "))
	}
	return p
}

// ── Phase 4: Reports ──
// Re-runs the forecast analysis for each fixture entry.

func validateReports(reports []domain.LocationReport, ds *domain.Dataset) *phase {
	p := &phase{name: "Phase 4: Reports (fixture vs analysis)"}
	ctx := context.Background()

	for i := range reports {
		want := &reports[i]
		tfm := pipeline.NewTransformer(analysis.NewEngine(), want.Forecast.QueryYears, clockwork.NewFakeClockAt(want.GeneratedAt))

		got, err := tfm.Transform(ctx, ds.Select(want.Location))
		if err != nil {
			p.errorf("%s: %v", want.Location, err)
			continue
		}
		compareReports(p, &got, want)
	}
	return p
}

func compareReports(p *phase, got, want *domain.LocationReport) {
	loc := want.Location

	if got.Stats.Count != want.Stats.Count {
		p.errorf("%s: count: expected %d, got %d", loc, want.Stats.Count, got.Stats.Count)
	}
	checks := []struct {
		name      string
		want, got float64
	}{
		{"mean", want.Stats.Mean, got.Stats.Mean},
		{"min", want.Stats.Min, got.Stats.Min},
		{"p50", want.Stats.P50, got.Stats.P50},
		{"max", want.Stats.Max, got.Stats.Max},
		{"intercept", want.Trend.Intercept, got.Trend.Intercept},
		{"slope", want.Trend.Slope, got.Trend.Slope},
	}
	for _, c := range checks {
		if !floatEq(c.want, c.got) {
			p.errorf("%s: %s: expected %g, got %g", loc, c.name, c.want, c.got)
		}
	}

	if len(got.Forecast.Predicted) != len(want.Forecast.Predicted) {
		p.errorf("%s: forecast length: expected %d, got %d", loc, len(want.Forecast.Predicted), len(got.Forecast.Predicted))
		return
	}
	for i, v := range want.Forecast.Predicted {
		if !floatEq(v, got.Forecast.Predicted[i]) {
			p.errorf("%s: forecast %d: expected %g, got %g", loc, want.Forecast.QueryYears[i], v, got.Forecast.Predicted[i])
		}
	}
	if !got.GeneratedAt.Equal(want.GeneratedAt) {
		p.errorf("%s: generated_at: expected %s, got %s", loc, want.GeneratedAt.Format(time.RFC3339), got.GeneratedAt.Format(time.RFC3339))
	}
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9*math.Max(1, math.Abs(a))
}
