// Package chart renders a location's series as a PNG image.
//
// Line, scatter and pie charts use go-chart; bar charts and histograms use
// gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/youth-population-analysis/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Kind selects the chart style.
type Kind string

const (
	Line      Kind = "line"
	Bar       Kind = "bar"
	Histogram Kind = "histogram"
	Scatter   Kind = "scatter"
	Pie       Kind = "pie"
)

// HistogramBins is the fixed bin count for histograms.
const HistogramBins = 20

// pngDPI is the gonum/plot default raster resolution.
const pngDPI = 96

// ErrUnknownKind is returned by ParseKind for unrecognised chart names.
var ErrUnknownKind = errors.New("unknown chart type")

// ErrUnrenderable is returned when a series cannot be drawn as the requested kind.
var ErrUnrenderable = errors.New("series cannot be rendered")

// Kinds lists every supported chart type in display order.
func Kinds() []Kind {
	return []Kind{Line, Bar, Histogram, Scatter, Pie}
}

// ParseKind maps a query value such as "bar" to a Kind. Matching ignores case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Size is the output image size in pixels.
type Size struct {
	Width  int
	Height int
}

// DefaultSize is used when a zero Size is passed to Render.
var DefaultSize = Size{Width: 800, Height: 480}

// Render draws series as a PNG of the given kind. Points are plotted in
// chronological order. An empty series is rejected with domain.ErrEmptySeries.
func Render(w io.Writer, kind Kind, series domain.Series, size Size) error {
	if series.Len() == 0 {
		return fmt.Errorf("chart %q: %w", series.Location, domain.ErrEmptySeries)
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize
	}
	sorted := series.Sorted()

	var err error
	switch kind {
	case Line:
		err = renderXY(w, sorted, size, false)
	case Scatter:
		err = renderXY(w, sorted, size, true)
	case Pie:
		err = renderPie(w, sorted, size)
	case Bar:
		err = renderBar(w, sorted, size)
	case Histogram:
		err = renderHistogram(w, sorted, size)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart for %q: %w", kind, series.Location, err)
	}
	return nil
}

func title(kind Kind, location string) string {
	return fmt.Sprintf("%s: %s", location, kind)
}

func renderXY(w io.Writer, s domain.Series, size Size, points bool) error {
	style := gochart.Style{StrokeWidth: 2}
	kind := Line
	if points {
		style = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4}
		kind = Scatter
	}

	xs, ys := s.Times(), s.Values()
	ch := gochart.Chart{
		Title:  title(kind, s.Location),
		Width:  size.Width,
		Height: size.Height,
		XAxis: gochart.XAxis{
			Name:           "TIME",
			Range:          paddedRange(xs),
			ValueFormatter: yearFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  "Value",
			Range: paddedRange(ys),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    s.Location,
				XValues: xs,
				YValues: ys,
				Style:   style,
			},
		},
	}
	return ch.Render(gochart.PNG, w)
}

// paddedRange widens a zero-width range by one unit each side; go-chart
// refuses to draw an axis whose min equals its max.
func paddedRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func yearFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return fmt.Sprint(v)
}

func renderPie(w io.Writer, s domain.Series, size Size) error {
	values := make([]gochart.Value, len(s.Points))
	var nonZero bool
	for i, p := range s.Points {
		values[i] = gochart.Value{Value: p.Value, Label: strconv.Itoa(p.Time)}
		nonZero = nonZero || p.Value != 0
	}
	if !nonZero {
		return fmt.Errorf("%w: pie chart needs at least one non-zero value", ErrUnrenderable)
	}
	pie := gochart.PieChart{
		Title:  title(Pie, s.Location),
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	return pie.Render(gochart.PNG, w)
}

func renderBar(w io.Writer, s domain.Series, size Size) error {
	p := plot.New()
	p.Title.Text = title(Bar, s.Location)
	p.X.Label.Text = "TIME"
	p.Y.Label.Text = "Value"

	bars, err := plotter.NewBarChart(plotter.Values(s.Values()), vg.Points(12))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	labels := make([]string, len(s.Points))
	for i, pt := range s.Points {
		labels[i] = strconv.Itoa(pt.Time)
	}
	p.NominalX(labels...)

	return writePlot(w, p, size)
}

func renderHistogram(w io.Writer, s domain.Series, size Size) error {
	p := plot.New()
	p.Title.Text = title(Histogram, s.Location)
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(s.Values()), HistogramBins)
	if err != nil {
		return err
	}
	p.Add(h)

	return writePlot(w, p, size)
}

func writePlot(w io.Writer, p *plot.Plot, size Size) error {
	width := vg.Length(size.Width) * vg.Inch / pngDPI
	height := vg.Length(size.Height) * vg.Inch / pngDPI

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
