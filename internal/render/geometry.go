package render

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Reference body and view extent, in the same unit as the sample positions.
const (
	EarthRadius = 6371 * 1000.0 // meters
	AxisLimit   = 10e6          // meters, both axes span [-AxisLimit, AxisLimit]
)

// earthColor is matplotlib's "forestgreen".
var earthColor = drawing.ColorFromHex("228B22")

// axisTicks are placed every 5,000 km.
var axisTicks = []chart.Tick{
	{Value: -AxisLimit, Label: "-1.0e7"},
	{Value: -AxisLimit / 2, Label: "-5.0e6"},
	{Value: 0, Label: "0"},
	{Value: AxisLimit / 2, Label: "5.0e6"},
	{Value: AxisLimit, Label: "1.0e7"},
}

func axisRange() *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: -AxisLimit, Max: AxisLimit}
}

// toCanvas converts a data position to pixel coordinates inside canvasBox.
func toCanvas(canvasBox chart.Box, xrange, yrange chart.Range, x, y float64) (int, int) {
	return canvasBox.Left + xrange.Translate(x), canvasBox.Bottom - yrange.Translate(y)
}

// earthSeries draws the reference body as a filled disc at the origin.
// It carries no values, so it never influences axis ranges.
type earthSeries struct {
	radius float64
	color  drawing.Color
}

func (e earthSeries) GetName() string { return "Earth" }

func (e earthSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (e earthSeries) GetStyle() chart.Style {
	return chart.Style{FillColor: e.color, StrokeColor: e.color, StrokeWidth: 1}
}

func (e earthSeries) Validate() error { return nil }

func (e earthSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	cx, cy := toCanvas(canvasBox, xrange, yrange, 0, 0)
	edge, _ := toCanvas(canvasBox, xrange, yrange, e.radius, 0)

	e.GetStyle().WriteToRenderer(r)
	r.Circle(float64(edge-cx), cx, cy)
	r.FillStroke()
}
