package aggregate

import (
	"runtime"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/NielsBongers/rust-orbital-debris/internal/colormap"
	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

// ColoredPoint is one selected sample ready to draw.
type ColoredPoint struct {
	Entity string
	T      float64
	X      float64 // meters
	Y      float64 // meters
	Color  drawing.Color
}

// Group holds the colored points of a single entity, in sample order.
type Group struct {
	Entity string
	TMax   float64 // normalization reference used for this entity's colors
	Points []ColoredPoint
}

// Warning records an entity that was skipped because its source could not be read.
type Warning struct {
	Entity string
	Path   string
	Err    error
}

func (w Warning) String() string {
	return w.Entity + ": " + w.Err.Error()
}

// RenderBatch is the finished aggregate handed to a renderer.
// It is built fresh for every run and never persisted.
type RenderBatch struct {
	Window      window.Window
	Groups      []Group
	Legend      legend.Entry
	LegendMode  legend.Mode
	LegendScale float64 // time that normalizes legend swatch colors
	Scale       *colormap.Scale
	AllSamples  bool     // Window was not applied
	Empty       []string // entities with no sample inside the window
	Warnings    []Warning
}

// Points returns every colored point, grouped by entity in processing order.
func (b *RenderBatch) Points() []ColoredPoint {
	n := 0
	for _, g := range b.Groups {
		n += len(g.Points)
	}
	out := make([]ColoredPoint, 0, n)
	for _, g := range b.Groups {
		out = append(out, g.Points...)
	}
	return out
}

// PointCount returns the total number of colored points.
func (b *RenderBatch) PointCount() int {
	n := 0
	for _, g := range b.Groups {
		n += len(g.Points)
	}
	return n
}

// Options configures an Aggregator.
type Options struct {
	// Workers bounds concurrent source reads (default: runtime.NumCPU()).
	Workers int
	// LegendMode picks frozen first-entity or union legends.
	LegendMode legend.Mode
	// SelectedEntities restricts aggregation to these entity names when non-empty.
	SelectedEntities []string
	// Scale maps time ratios to colors (default: colormap.Jet).
	Scale *colormap.Scale
	// AllSamples keeps every sample of every entity; the window is neither
	// validated nor applied.
	AllSamples bool
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = runtime.NumCPU()
	}
	if o.Scale == nil {
		o.Scale = colormap.Jet
	}
	return o
}
