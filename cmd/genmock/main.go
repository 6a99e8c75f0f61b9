// Command genmock writes a synthetic OECD young-population CSV and a JSON
// fixture of the reports the forecast pipeline produces for it. The fixture is
// computed by loading the generated CSV back through the dataset package, so
// it matches what the service returns for the same file.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv-out data/mock/young_population.csv \
//	  -reports-out data/mock/location_reports.json \
//	  -from 1990 -to 2022 -seed 42
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/couchcryptid/youth-population-analysis/internal/analysis"
	"github.com/couchcryptid/youth-population-analysis/internal/dataset"
	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/couchcryptid/youth-population-analysis/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

var generatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var header = []string{"LOCATION", "INDICATOR", "SUBJECT", "MEASURE", "FREQUENCY", "TIME", "Value", "Flag Codes"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvOut := flag.String("csv-out", "", "output path for the generated CSV")
	reportsOut := flag.String("reports-out", "", "output path for the expected reports JSON (optional)")
	from := flag.Int("from", 1990, "first year")
	to := flag.Int("to", 2022, "last year")
	seed := flag.Uint64("seed", 42, "random seed")
	naRate := flag.Float64("na-rate", 0.01, "fraction of rows written with Value=NA")
	flag.Parse()

	if *csvOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -csv-out")
	}
	if *to < *from {
		return fmt.Errorf("-to (%d) is before -from (%d)", *to, *from)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	rows := generate(rng, domain.DefaultLocations(), *from, *to, *naRate)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	if err := writeFile(*csvOut, buf.Bytes()); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	log.Printf("wrote %d rows to %s", len(rows), *csvOut)

	ds, err := dataset.LoadReader(bytes.NewReader(buf.Bytes()), dataset.DefaultOptions())
	if err != nil {
		return fmt.Errorf("reload generated csv: %w", err)
	}

	years := make([]int, 0, 5)
	for y := *to + 1; y <= *to+5; y++ {
		years = append(years, y)
	}
	reports, skipped := buildReports(ds, years)

	if *reportsOut != "" {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return err
		}
		if err := writeFile(*reportsOut, append(data, '\n')); err != nil {
			return fmt.Errorf("writing reports fixture: %w", err)
		}
		log.Printf("wrote %d reports to %s", len(reports), *reportsOut)
	}

	printStats(ds, reports, skipped)
	return nil
}

// generate produces one row per location and year. Each location gets its own
// starting share and yearly drift with a little noise on top.
func generate(rng *rand.Rand, locations []string, from, to int, naRate float64) [][]string {
	rows := make([][]string, 0, len(locations)*(to-from+1))
	for _, loc := range locations {
		base := 14 + rng.Float64()*16
		drift := -0.3 + rng.Float64()*0.4
		for year := from; year <= to; year++ {
			value := "NA"
			if rng.Float64() >= naRate {
				v := base + drift*float64(year-from) + rng.NormFloat64()*0.15
				v = math.Round(math.Max(v, 0.1)*100) / 100
				value = strconv.FormatFloat(v, 'f', -1, 64)
			}
			flagCode := ""
			if year == to {
				flagCode = "P"
			}
			rows = append(rows, []string{loc, "YOUNGPOP", "TOT", "PC_POP", "A", strconv.Itoa(year), value, flagCode})
		}
	}
	return rows
}

func buildReports(ds *domain.Dataset, years []int) ([]domain.LocationReport, int) {
	tfm := pipeline.NewTransformer(analysis.NewEngine(), years, clockwork.NewFakeClockAt(generatedAt))
	ctx := context.Background()

	reports := make([]domain.LocationReport, 0, len(ds.Locations()))
	var skipped int
	for _, loc := range ds.Locations() {
		r, err := tfm.Transform(ctx, ds.Select(loc))
		if err != nil {
			log.Printf("%s: skipped: %v", loc, err)
			skipped++
			continue
		}
		reports = append(reports, r)
	}
	return reports, skipped
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(ds *domain.Dataset, reports []domain.LocationReport, skipped int) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d (rejected %d)\n", ds.Len(), ds.Rejected())
	fmt.Printf("Locations: %d (reports %d, skipped %d)\n", len(ds.Locations()), len(reports), skipped)

	if len(reports) == 0 {
		return
	}

	sorted := make([]domain.LocationReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Trend.Slope < sorted[j].Trend.Slope })

	fmt.Println("\nSteepest decline:")
	for _, r := range sorted[:min(3, len(sorted))] {
		fmt.Printf("  %s slope=%.4f mean=%.2f\n", r.Location, r.Trend.Slope, r.Stats.Mean)
	}
	fmt.Println("Steepest growth:")
	for i := len(sorted) - 1; i >= max(0, len(sorted)-3); i-- {
		r := sorted[i]
		fmt.Printf("  %s slope=%.4f mean=%.2f\n", r.Location, r.Trend.Slope, r.Stats.Mean)
	}

	first := reports[0]
	fmt.Printf("\nFirst report (%s):\n", first.Location)
	fmt.Printf("  Count: %d, Mean: %g, Std: %g\n", first.Stats.Count, first.Stats.Mean, first.Stats.Std)
	fmt.Printf("  Intercept: %g, Slope: %g\n", first.Trend.Intercept, first.Trend.Slope)
	for i, y := range first.Forecast.QueryYears {
		fmt.Printf("  %d: %g\n", y, first.Forecast.Predicted[i])
	}
}
