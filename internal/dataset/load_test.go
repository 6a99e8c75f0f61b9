package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "testdata/young_population.csv"

func TestLoader_Load_File(t *testing.T) {
	ds, err := NewLoader(nil, DefaultOptions()).Load(context.Background(), fixturePath)
	require.NoError(t, err)

	assert.Equal(t, 7, ds.Len())
	assert.Equal(t, 3, ds.Rejected())
	assert.Equal(t, []string{"AUS", "AUT", "BEL"}, ds.Locations())
	assert.Equal(t,
		[]string{"LOCATION", "INDICATOR", "SUBJECT", "MEASURE", "FREQUENCY", "TIME", "Value", "Flag Codes"},
		ds.Header())
}

func TestLoader_Load_SelectPreservesFileOrder(t *testing.T) {
	ds, err := NewLoader(nil, DefaultOptions()).Load(context.Background(), fixturePath)
	require.NoError(t, err)

	got := ds.Select("BEL")
	want := domain.Series{
		Location: "BEL",
		Points: []domain.Point{
			{Time: 2001, Value: 17.6},
			{Time: 2002, Value: 17.5},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Select mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Load_RowsKeepExtraColumns(t *testing.T) {
	ds, err := NewLoader(nil, DefaultOptions()).Load(context.Background(), fixturePath)
	require.NoError(t, err)

	rows := ds.Rows("BEL")
	require.Len(t, rows.Rows, 2)
	assert.Equal(t, []string{"BEL", "YOUNGPOP", "TOT", "PC_POP", "A", "2002", "17.5", "E"}, rows.Rows[1])
}

func TestLoader_Load_MissingFile(t *testing.T) {
	_, err := NewLoader(nil, DefaultOptions()).Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatasetLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_URLWithoutFetcher(t *testing.T) {
	_, err := NewLoader(nil, DefaultOptions()).Load(context.Background(), "https://example.com/data.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatasetLoad)
}

func TestLoadReader_MissingColumns(t *testing.T) {
	in := "LOCATION,YEAR,Value\nAUS,2001,20.7\n"
	_, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)
	assert.Contains(t, err.Error(), "TIME")
	assert.NotContains(t, err.Error(), "LOCATION")
}

func TestLoadReader_ColumnNamesAreCaseSensitive(t *testing.T) {
	in := "location,time,value\nAUS,2001,20.7\n"
	_, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestLoadReader_CustomMapping(t *testing.T) {
	in := "country;year;share\nNZL;2010;20.4\nNZL;2011;20.2\n"
	opts := Options{
		Columns:   ColumnMapping{Location: "country", Time: "year", Value: "share"},
		Delimiter: ';',
	}

	ds, err := LoadReader(strings.NewReader(in), opts)
	require.NoError(t, err)

	series := ds.Select("NZL")
	require.Equal(t, 2, series.Len())
	assert.Equal(t, domain.Point{Time: 2011, Value: 20.2}, series.Points[1])
}

func TestLoadReader_PartialOptionsFallBackToDefaults(t *testing.T) {
	in := "LOCATION,TIME,Value\nJPN,2015,12.6\n"
	ds, err := LoadReader(strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoadReader_RaggedRowsFail(t *testing.T) {
	in := "LOCATION,TIME,Value\nAUS,2001\n"
	_, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatasetLoad)
}

func TestLoadReader_RejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"empty location", ",2001,1.5"},
		{"blank location", "   ,2001,1.5"},
		{"fractional year", "AUS,2001.5,1.5"},
		{"missing year", "AUS,,1.5"},
		{"missing value", "AUS,2001,"},
		{"NA value", "AUS,2001,NA"},
		{"text value", "AUS,2001,high"},
		{"infinite value", "AUS,2001,+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := "LOCATION,TIME,Value\nAUS,2000,1.0\n" + tt.row + "\n"
			ds, err := LoadReader(strings.NewReader(in), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, 1, ds.Len())
			assert.Equal(t, 1, ds.Rejected())
		})
	}
}

func TestLoadReader_TrimsFieldWhitespace(t *testing.T) {
	in := "LOCATION,TIME,Value\n AUS , 2001 , 20.7 \n"
	ds, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)

	series := ds.Select("AUS")
	require.Equal(t, 1, series.Len())
	assert.Equal(t, domain.Point{Time: 2001, Value: 20.7}, series.Points[0])
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("http://example.com/a.csv"))
	assert.True(t, isURL("https://example.com/a.csv"))
	assert.False(t, isURL("young_population.csv"))
	assert.False(t, isURL("/data/http.csv"))
}

func TestLoadReader_ExtraColumnsPassThroughVerbatim(t *testing.T) {
	in := "LOCATION,TIME,Value,Flag Codes,Note\nAUS,2001,20.7,NA,NaN\n"
	ds, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)

	if diff := cmp.Diff([][]string{{"AUS", "2001", "20.7", "NA", "NaN"}}, ds.Rows("AUS").Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadReader_MissingLocationTokensRejected(t *testing.T) {
	in := "LOCATION,TIME,Value\nNA,2001,1\nNaN,2002,2\nAUS,2003,3\n"
	ds, err := LoadReader(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, 2, ds.Rejected())
}

func TestLoadReader_ByteOrderMark(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unquoted header", "\ufeffLOCATION,TIME,Value\nAUS,2001,20.7\n"},
		{"quoted header", "\ufeff\"LOCATION\",\"TIME\",\"Value\"\nAUS,2001,20.7\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadReader(strings.NewReader(tt.in), DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, []string{"LOCATION", "TIME", "Value"}, ds.Header())
			assert.Equal(t, 1, ds.Select("AUS").Len())
		})
	}
}

func TestLoadReader_HeaderOnly(t *testing.T) {
	ds, err := LoadReader(strings.NewReader("LOCATION,TIME,Value\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	assert.Zero(t, ds.Rejected())
	assert.Empty(t, ds.Locations())
	assert.Zero(t, ds.Select("AUS").Len())
}

func TestLoadReader_HeaderOnlyWrongColumns(t *testing.T) {
	_, err := LoadReader(strings.NewReader("LOCATION,YEAR,Value\n"), DefaultOptions())
	require.ErrorIs(t, err, domain.ErrSchema)
	assert.NotErrorIs(t, err, domain.ErrDatasetLoad)
	assert.Contains(t, err.Error(), "missing column(s) TIME")
}

func TestLoadReader_EmptyInput(t *testing.T) {
	_, err := LoadReader(strings.NewReader(""), DefaultOptions())
	require.ErrorIs(t, err, domain.ErrDatasetLoad)
}

func TestLoadReader_DuplicateColumns(t *testing.T) {
	_, err := LoadReader(strings.NewReader("LOCATION,TIME,Value,Value\nAUS,2001,1,2\n"), DefaultOptions())
	require.ErrorIs(t, err, domain.ErrSchema)
	assert.Contains(t, err.Error(), "duplicate column(s) Value")
	assert.NotContains(t, err.Error(), "missing")
}
