// Package render draws a RenderBatch as a static 2D plot around Earth.
//
// Plots use fixed axes of ±10,000 km around the origin, a filled Earth disc and
// either one dot per selected sample (scatter) or one line per entity (path).
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/NielsBongers/rust-orbital-debris/internal/aggregate"
	"github.com/NielsBongers/rust-orbital-debris/internal/metrics"
)

// Mode selects how points are drawn.
type Mode int

const (
	// Scatter draws every selected sample as a dot colored by its time.
	Scatter Mode = iota
	// Path connects each entity's samples into a trajectory line.
	Path
)

func (m Mode) String() string {
	if m == Path {
		return "path"
	}
	return "scatter"
}

// Format is the output file encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatSVG
)

// FormatFor picks the output format from a file extension. Anything other
// than .svg renders as PNG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return FormatSVG
	}
	return FormatPNG
}

// Options configures a Renderer.
type Options struct {
	Mode        Mode
	Title       string
	Width       int
	Height      int
	DotWidth    float64
	ShowLegend  bool
	LegendTitle string
	Caption     bool // stamp the window description under the plot (PNG only)
}

// DefaultOptions returns the standard debris figure layout.
func DefaultOptions() Options {
	return Options{
		Mode:        Scatter,
		Title:       "Orbital debris",
		Width:       1200,
		Height:      1200,
		DotWidth:    4,
		ShowLegend:  true,
		LegendTitle: "Simulation time (s)",
	}
}

// Renderer turns batches into plot artifacts.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// New creates a renderer. Zero-valued size options fall back to defaults.
func New(opts Options, logger *slog.Logger) *Renderer {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.DotWidth <= 0 {
		opts.DotWidth = def.DotWidth
	}
	if opts.LegendTitle == "" {
		opts.LegendTitle = def.LegendTitle
	}
	return &Renderer{opts: opts, logger: logger}
}

// Chart builds the go-chart description of a batch without drawing it.
func (r *Renderer) Chart(batch *aggregate.RenderBatch) chart.Chart {
	// The primary Y axis sits on the right and the X axis at the bottom;
	// padding on the opposite sides keeps the plot area close to square.
	ch := chart.Chart{
		Title:  r.opts.Title,
		Width:  r.opts.Width,
		Height: r.opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 70, Right: 20, Bottom: 40},
		},
		XAxis: chart.XAxis{
			Name:  "x (m)",
			Range: axisRange(),
			Ticks: axisTicks,
		},
		YAxis: chart.YAxis{
			Name:  "y (m)",
			Range: axisRange(),
			Ticks: axisTicks,
		},
	}

	ch.Series = append(ch.Series, earthSeries{radius: EarthRadius, color: earthColor})
	for i, g := range batch.Groups {
		if len(g.Points) == 0 {
			continue
		}
		ch.Series = append(ch.Series, r.groupSeries(i, g))
	}

	if r.opts.ShowLegend && len(batch.Legend) > 0 && batch.Scale != nil {
		labels := batch.Legend.Labels()
		items := make([]legendItem, len(labels))
		for i, t := range batch.Legend {
			items[i] = legendItem{
				label: labels[i],
				color: batch.Scale.ColorOf(float64(t), batch.LegendScale),
			}
		}
		ch.Elements = append(ch.Elements, legendElement(r.opts.LegendTitle, items))
	}

	return ch
}

func (r *Renderer) groupSeries(index int, g aggregate.Group) chart.ContinuousSeries {
	xs := make([]float64, len(g.Points))
	ys := make([]float64, len(g.Points))
	colors := make([]drawing.Color, len(g.Points))
	for i, p := range g.Points {
		xs[i], ys[i], colors[i] = p.X, p.Y, p.Color
	}

	style := chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    r.opts.DotWidth,
		DotColorProvider: func(_, _ chart.Range, i int, _, _ float64) drawing.Color {
			return colors[i]
		},
	}
	if r.opts.Mode == Path {
		style.StrokeWidth = 1.5
		style.StrokeColor = chart.GetDefaultColor(index)
		style.DotWidth = r.opts.DotWidth / 2
	}

	return chart.ContinuousSeries{
		Name:    g.Entity,
		Style:   style,
		XValues: xs,
		YValues: ys,
	}
}

// WriteTo draws the batch in the given format.
func (r *Renderer) WriteTo(w io.Writer, batch *aggregate.RenderBatch, format Format) error {
	ch := r.Chart(batch)

	if format == FormatSVG {
		if err := ch.Render(chart.SVG, w); err != nil {
			return &RenderError{Err: err}
		}
		return nil
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return &RenderError{Err: err}
	}
	if !r.opts.Caption {
		_, err := w.Write(buf.Bytes())
		if err != nil {
			return &RenderError{Err: err}
		}
		return nil
	}
	if err := stampCaption(w, &buf, caption(batch)); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// Render draws the batch to path, creating parent directories as needed.
// The format follows the file extension.
func (r *Renderer) Render(batch *aggregate.RenderBatch, path string) error {
	start := time.Now()

	if path == "" {
		return &RenderError{Err: fmt.Errorf("no output path")}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &RenderError{Path: path, Err: err}
		}
	}

	var buf bytes.Buffer
	if err := r.WriteTo(&buf, batch, FormatFor(path)); err != nil {
		var rerr *RenderError
		if errors.As(err, &rerr) {
			rerr.Path = path
		}
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return &RenderError{Path: path, Err: err}
	}

	duration := time.Since(start)
	metrics.RecordRender(duration)
	r.logger.Info("plot written",
		"path", path,
		"mode", r.opts.Mode.String(),
		"points", batch.PointCount(),
		"bytes", buf.Len(),
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

func caption(batch *aggregate.RenderBatch) string {
	span := batch.Window.String()
	if batch.AllSamples {
		span = "all samples"
	}
	return fmt.Sprintf("%s | %d entities, %d points | legend: %s",
		span, len(batch.Groups), batch.PointCount(), batch.LegendMode)
}
