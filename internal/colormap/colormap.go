// Package colormap maps simulation time to color through a fixed, ordered
// color scale.
//
// A Scale is a 256-entry lookup table built from a continuous color function,
// the same way matplotlib samples its named colormaps. Lookups are pure; the
// tables are built once at package init and never written again.
package colormap

import (
	"fmt"
	"math"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Levels is the number of distinct entries in every scale.
const Levels = 256

// Scale is an ordered lookup table from [0, 1] to colors.
type Scale struct {
	name string
	lut  [Levels]drawing.Color
}

// segment is one control point of a piecewise-linear channel.
type segment struct {
	x, y float64
}

// jet control points, per channel.
var (
	jetRed   = []segment{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}}
	jetGreen = []segment{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}}
	jetBlue  = []segment{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}}
)

var (
	// Jet runs dark blue, blue, cyan, yellow, red, dark red.
	Jet = newScale("jet", func(v float64) drawing.Color {
		return drawing.Color{
			R: channel(interpolate(jetRed, v)),
			G: channel(interpolate(jetGreen, v)),
			B: channel(interpolate(jetBlue, v)),
			A: 255,
		}
	})

	// Viridis is go-chart's perceptually uniform scale.
	Viridis = newScale("viridis", func(v float64) drawing.Color {
		return chart.Viridis(v, 0, 1)
	})
)

var scales = map[string]*Scale{
	Jet.name:     Jet,
	Viridis.name: Viridis,
}

// ByName looks up a scale by name ("jet" or "viridis").
func ByName(name string) (*Scale, error) {
	s, ok := scales[name]
	if !ok {
		return nil, fmt.Errorf("unknown color scale %q", name)
	}
	return s, nil
}

// Names lists the registered scale names in sorted order.
func Names() []string {
	out := make([]string, 0, len(scales))
	for n := range scales {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func newScale(name string, fn func(float64) drawing.Color) *Scale {
	s := &Scale{name: name}
	for i := range s.lut {
		s.lut[i] = fn(float64(i) / (Levels - 1))
	}
	return s
}

// Name returns the scale's registered name.
func (s *Scale) Name() string {
	return s.name
}

// Index returns the lookup-table slot for a ratio. v is clamped to [0, 1].
func (s *Scale) Index(v float64) int {
	v = clamp01(v)
	i := int(v * Levels)
	if i >= Levels {
		i = Levels - 1
	}
	return i
}

// At returns the color for a ratio. v is clamped to [0, 1].
func (s *Scale) At(v float64) drawing.Color {
	return s.lut[s.Index(v)]
}

// Position returns the scale position in [0, 1] of the first slot holding c.
// It reports false for colors that are not on the scale.
func (s *Scale) Position(c drawing.Color) (float64, bool) {
	for i, lc := range s.lut {
		if lc.Equals(c) {
			return float64(i) / (Levels - 1), true
		}
	}
	return 0, false
}

// ColorOf maps t through s using t/tMax as the ratio.
func (s *Scale) ColorOf(t, tMax float64) drawing.Color {
	return s.At(Ratio(t, tMax))
}

// ColorOf maps t through the jet scale.
func ColorOf(t, tMax float64) drawing.Color {
	return Jet.ColorOf(t, tMax)
}

// Ratio returns t/tMax clamped to [0, 1]. A zero tMax yields 0, which
// happens only when every selected sample sits at t == 0.
func Ratio(t, tMax float64) float64 {
	if tMax == 0 {
		return 0
	}
	return clamp01(t / tMax)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func interpolate(segs []segment, v float64) float64 {
	if v <= segs[0].x {
		return segs[0].y
	}
	for i := 1; i < len(segs); i++ {
		if v <= segs[i].x {
			a, b := segs[i-1], segs[i]
			return a.y + (b.y-a.y)*(v-a.x)/(b.x-a.x)
		}
	}
	return segs[len(segs)-1].y
}

func channel(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
