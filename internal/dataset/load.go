package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Logical column names of the dataset contract.
const (
	ColumnLocation = "LOCATION"
	ColumnTime     = "TIME"
	ColumnValue    = "Value"
)

// ColumnMapping maps the three logical fields onto physical header names.
type ColumnMapping struct {
	Location string
	Time     string
	Value    string
}

// Options controls how a delimited source is parsed.
type Options struct {
	Columns   ColumnMapping
	Delimiter rune
}

// DefaultOptions reads comma-separated files with the standard column names.
func DefaultOptions() Options {
	return Options{
		Columns: ColumnMapping{
			Location: ColumnLocation,
			Time:     ColumnTime,
			Value:    ColumnValue,
		},
		Delimiter: ',',
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Delimiter == 0 {
		o.Delimiter = def.Delimiter
	}
	if o.Columns.Location == "" {
		o.Columns.Location = def.Columns.Location
	}
	if o.Columns.Time == "" {
		o.Columns.Time = def.Columns.Time
	}
	if o.Columns.Value == "" {
		o.Columns.Value = def.Columns.Value
	}
	return o
}

// Loader opens dataset sources: local paths or http(s) URLs.
type Loader struct {
	fetcher *Fetcher
	opts    Options
}

// NewLoader creates a Loader. A nil fetcher disables URL sources.
func NewLoader(fetcher *Fetcher, opts Options) *Loader {
	return &Loader{fetcher: fetcher, opts: opts}
}

// Load reads the source into a Dataset.
func (l *Loader) Load(ctx context.Context, source string) (*domain.Dataset, error) {
	if isURL(source) {
		if l.fetcher == nil {
			return nil, fmt.Errorf("%w: %s: remote sources are disabled", domain.ErrDatasetLoad, source)
		}
		data, err := l.fetcher.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDatasetLoad, err)
		}
		return LoadReader(bytes.NewReader(data), l.opts)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDatasetLoad, err)
	}
	defer f.Close()

	return LoadReader(f, l.opts)
}

// LoadReader parses delimited text with a header row. A leading byte order
// mark is dropped. Rows with a missing location, a non-integer year, or a
// non-finite value are rejected and counted rather than failing the whole
// load. A file with a valid header and no rows yields an empty Dataset.
func LoadReader(r io.Reader, opts Options) (*domain.Dataset, error) {
	opts = opts.withDefaults()

	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	cr.Comma = opts.Delimiter
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", domain.ErrDatasetLoad, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", domain.ErrDatasetLoad)
	}

	header := records[0]
	if err := checkSchema(header, opts.Columns); err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return domain.NewDataset(header, nil, 0), nil
	}

	// Cells are kept verbatim; missing values are decided by parseRecord.
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: parse: %w", domain.ErrDatasetLoad, df.Err)
	}

	locations := df.Col(opts.Columns.Location).Records()
	times := df.Col(opts.Columns.Time).Records()
	values := df.Col(opts.Columns.Value).Records()
	rows := df.Records()[1:] // header first

	parsed := make([]domain.Record, 0, len(rows))
	rejected := 0
	for i, raw := range rows {
		rec, ok := parseRecord(locations[i], times[i], values[i])
		if !ok {
			rejected++
			continue
		}
		rec.Raw = raw
		parsed = append(parsed, rec)
	}

	return domain.NewDataset(header, parsed, rejected), nil
}

func checkSchema(names []string, cols ColumnMapping) error {
	present := make(map[string]int, len(names))
	var duplicated []string
	for _, n := range names {
		present[n]++
		if present[n] == 2 {
			duplicated = append(duplicated, n)
		}
	}
	if len(duplicated) > 0 {
		return fmt.Errorf("%w: duplicate column(s) %s", domain.ErrSchema, strings.Join(duplicated, ", "))
	}

	var missing []string
	for _, want := range []string{cols.Location, cols.Time, cols.Value} {
		if present[want] == 0 {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing column(s) %s", domain.ErrSchema, strings.Join(missing, ", "))
	}
	return nil
}

func parseRecord(location, timeStr, valueStr string) (domain.Record, bool) {
	location = strings.TrimSpace(location)
	if location == "" || isMissing(location) {
		return domain.Record{}, false
	}

	year, err := strconv.Atoi(strings.TrimSpace(timeStr))
	if err != nil {
		return domain.Record{}, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.Record{}, false
	}

	return domain.Record{Location: location, Time: year, Value: value}, true
}

// isMissing reports the tokens OECD extracts use for an absent cell.
func isMissing(s string) bool {
	return s == "NA" || s == "NaN"
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
