// Package window selects the samples of a series that fall inside a time
// window and land exactly on a sampling period.
package window

import (
	"fmt"
	"math"

	"github.com/NielsBongers/rust-orbital-debris/internal/series"
)

// Window is an inclusive time range [Start, End] plus a sampling Period.
type Window struct {
	Start  float64
	End    float64
	Period float64
}

// InvalidWindowError reports a window that cannot select anything meaningful.
// It is fatal for a whole run.
type InvalidWindowError struct {
	Window Window
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window [%g, %g] period %g: %s", e.Window.Start, e.Window.End, e.Window.Period, e.Reason)
}

// Validate checks that the period is positive and finite and that the bounds
// are ordered.
func (w Window) Validate() error {
	switch {
	case math.IsNaN(w.Period) || math.IsInf(w.Period, 0):
		return &InvalidWindowError{Window: w, Reason: "period must be finite"}
	case w.Period <= 0:
		return &InvalidWindowError{Window: w, Reason: "period must be positive"}
	case math.IsNaN(w.Start) || math.IsNaN(w.End):
		return &InvalidWindowError{Window: w, Reason: "bounds must be numbers"}
	case w.Start > w.End:
		return &InvalidWindowError{Window: w, Reason: "start is after end"}
	}
	return nil
}

// Selects reports whether a sample at time t is selected.
// The stride test is exact: t must be an exact multiple of Period, so times
// that drifted off a multiple by floating-point error are excluded.
func (w Window) Selects(t float64) bool {
	return t >= w.Start && t <= w.End && math.Mod(t, w.Period) == 0
}

// Select returns the subsequence of s selected by w, in the original order.
// An empty result is not an error.
func Select(s series.Series, w Window) (series.Series, error) {
	if err := w.Validate(); err != nil {
		return series.Series{}, err
	}

	out := series.Series{Name: s.Name}
	for _, smp := range s.Samples {
		if w.Selects(smp.T) {
			out.Samples = append(out.Samples, smp)
		}
	}
	return out, nil
}

func (w Window) String() string {
	return fmt.Sprintf("t in [%g, %g] every %g s", w.Start, w.End, w.Period)
}
