package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	header := []string{"LOCATION", "TIME", "Value", "Flag Codes"}
	records := []Record{
		{Location: "AUS", Time: 1960, Value: 30.2, Raw: []string{"AUS", "1960", "30.2", ""}},
		{Location: "AUT", Time: 1958, Value: 21.0, Raw: []string{"AUT", "1958", "21.0", "E"}},
		{Location: "AUS", Time: 1958, Value: 30.1, Raw: []string{"AUS", "1958", "30.1", ""}},
		{Location: "AUS", Time: 1959, Value: 30.4, Raw: []string{"AUS", "1959", "30.4", "B"}},
	}
	return NewDataset(header, records, 2)
}

func TestDataset_Select(t *testing.T) {
	ds := testDataset()

	t.Run("keeps dataset order", func(t *testing.T) {
		s := ds.Select("AUS")
		want := Series{Location: "AUS", Points: []Point{{1960, 30.2}, {1958, 30.1}, {1959, 30.4}}}
		if diff := cmp.Diff(want, s); diff != "" {
			t.Errorf("Select mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown key yields empty series", func(t *testing.T) {
		s := ds.Select("XXX")
		assert.Equal(t, "XXX", s.Location)
		assert.Equal(t, 0, s.Len())
		assert.NotNil(t, s.Points)
	})

	t.Run("match is case-sensitive", func(t *testing.T) {
		assert.Equal(t, 0, ds.Select("aus").Len())
	})

	t.Run("result does not alias dataset", func(t *testing.T) {
		s := ds.Select("AUT")
		s.Points[0].Value = -1
		assert.Equal(t, 21.0, ds.Select("AUT").Points[0].Value)
	})
}

func TestDataset_Rows(t *testing.T) {
	ds := testDataset()

	rows := ds.Rows("AUS")
	assert.Equal(t, []string{"LOCATION", "TIME", "Value", "Flag Codes"}, rows.Header)
	require.Len(t, rows.Rows, 3)
	assert.Equal(t, "B", rows.Rows[2][3], "extra columns pass through")

	rows.Rows[0][0] = "ZZZ"
	rows.Header[0] = "ZZZ"
	assert.Equal(t, "AUS", ds.Rows("AUS").Rows[0][0])
	assert.Equal(t, "LOCATION", ds.Header()[0])
}

func TestDataset_Accessors(t *testing.T) {
	ds := testDataset()

	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, 2, ds.Rejected())
	assert.Equal(t, []string{"AUS", "AUT"}, ds.Locations())
}

func TestNewDataset_CopiesInput(t *testing.T) {
	raw := []string{"AUS", "1958", "1"}
	records := []Record{{Location: "AUS", Time: 1958, Value: 1, Raw: raw}}
	ds := NewDataset([]string{"LOCATION", "TIME", "Value"}, records, 0)

	raw[0] = "XXX"
	records[0].Location = "XXX"

	assert.Equal(t, 1, ds.Select("AUS").Len())
	assert.Equal(t, "AUS", ds.Rows("AUS").Rows[0][0])
}

func TestSeries_Sorted(t *testing.T) {
	s := Series{Location: "AUS", Points: []Point{{1960, 3}, {1958, 1}, {1959, 2}, {1958, 9}}}

	sorted := s.Sorted()

	assert.Equal(t, []Point{{1958, 1}, {1958, 9}, {1959, 2}, {1960, 3}}, sorted.Points, "stable on ties")
	assert.Equal(t, 1960, s.Points[0].Time, "input untouched")
}

func TestSeries_Sorted_ExtremeYears(t *testing.T) {
	s := Series{Location: "AUS", Points: []Point{{math.MaxInt, 1}, {math.MinInt, 2}, {0, 3}}}

	sorted := s.Sorted()

	assert.Equal(t, []Point{{math.MinInt, 2}, {0, 3}, {math.MaxInt, 1}}, sorted.Points)
}

func TestSeries_YearRange(t *testing.T) {
	_, ok := Series{}.YearRange()
	assert.False(t, ok)

	r, ok := Series{Points: []Point{{1970, 0}, {1958, 0}, {2014, 0}}}.YearRange()
	require.True(t, ok)
	assert.Equal(t, YearRange{Min: 1958, Max: 2014}, r)
}

func TestSeries_TimesValues(t *testing.T) {
	s := Series{Points: []Point{{1958, 10}, {1959, 12}}}
	assert.Equal(t, []float64{1958, 1959}, s.Times())
	assert.Equal(t, []float64{10, 12}, s.Values())
}

func TestTrendModel_At(t *testing.T) {
	m := TrendModel{Intercept: 1, Slope: 2}
	assert.Equal(t, 4047.0, m.At(2023))
	assert.Equal(t, 4049.0, m.At(2024))
}

func TestDescriptiveStats_MarshalJSON(t *testing.T) {
	t.Run("undefined std is null", func(t *testing.T) {
		data, err := json.Marshal(DescriptiveStats{Location: "AUS", Count: 1, Mean: 5, Std: math.NaN(), Min: 5, P25: 5, P50: 5, P75: 5, Max: 5})
		require.NoError(t, err)
		assert.JSONEq(t, `{"location":"AUS","count":1,"mean":5,"std":null,"min":5,"p25":5,"p50":5,"p75":5,"max":5}`, string(data))
	})

	t.Run("defined std is a number", func(t *testing.T) {
		data, err := json.Marshal(DescriptiveStats{Location: "AUS", Count: 2, Std: 1.5})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"std":1.5`)
	})
}

func TestParseYears(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{"single", "2023", []int{2023}, false},
		{"list with spaces", "2023, 2024 ,2025", []int{2023, 2024, 2025}, false},
		{"keeps order and duplicates", "2030,2023,2030", []int{2030, 2023, 2030}, false},
		{"empty", "  ", nil, true},
		{"not a number", "2023,abc", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseYears(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultLocations(t *testing.T) {
	locs := DefaultLocations()
	require.Len(t, locs, 43)
	assert.Equal(t, "AUS", locs[0])
	assert.Equal(t, "COOMAS", locs[len(locs)-1])

	locs[0] = "XXX"
	assert.Equal(t, "AUS", DefaultLocations()[0])
}
