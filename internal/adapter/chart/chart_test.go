package chart

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleSeries() domain.Series {
	return domain.Series{
		Location: "AUS",
		Points: []domain.Point{
			{Time: 2003, Value: 20.3},
			{Time: 2001, Value: 20.7},
			{Time: 2002, Value: 20.5},
			{Time: 2004, Value: 20.1},
			{Time: 2005, Value: 19.8},
		},
	}
}

func TestRender_AllKinds(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, kind, sampleSeries(), Size{Width: 320, Height: 240}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output is not a PNG")
		})
	}
}

func TestRender_DefaultSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Line, sampleSeries(), Size{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRender_SinglePointLine(t *testing.T) {
	s := domain.Series{Location: "JPN", Points: []domain.Point{{Time: 2015, Value: 12.6}}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Line, s, Size{Width: 320, Height: 240}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRender_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Bar, domain.Series{Location: "XXX"}, Size{})
	require.ErrorIs(t, err, domain.ErrEmptySeries)
	assert.Zero(t, buf.Len())
}

func TestRender_PieAllZero(t *testing.T) {
	s := domain.Series{Location: "ZRO", Points: []domain.Point{{Time: 2001, Value: 0}, {Time: 2002, Value: 0}}}

	var buf bytes.Buffer
	err := Render(&buf, Pie, s, Size{Width: 320, Height: 240})
	require.ErrorIs(t, err, ErrUnrenderable)
	assert.Zero(t, buf.Len())
}

func TestRender_UnknownKind(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Kind("radar"), sampleSeries(), Size{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "line", want: Line},
		{in: "BAR", want: Bar},
		{in: " histogram ", want: Histogram},
		{in: "scatter", want: Scatter},
		{in: "pie", want: Pie},
		{in: "radar", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{3, 1, 2})
	assert.InDelta(t, 1, r.Min, 0)
	assert.InDelta(t, 3, r.Max, 0)

	r = paddedRange([]float64{5, 5})
	assert.InDelta(t, 4, r.Min, 0)
	assert.InDelta(t, 6, r.Max, 0)
}

func TestYearFormatter(t *testing.T) {
	assert.Equal(t, "2023", yearFormatter(2023.0))
	assert.Equal(t, "x", yearFormatter("x"))
}
