// Package legend derives the simulation-time labels shown next to a plot.
package legend

import (
	"fmt"
	"math"
	"strconv"

	"github.com/NielsBongers/rust-orbital-debris/internal/series"
)

// Entry is an ordered, duplicate-free list of time labels. Labels are the
// sample times truncated to integers; the samples themselves keep full
// precision.
type Entry []int64

// Labels formats the entry for display.
func (e Entry) Labels() []string {
	out := make([]string, len(e))
	for i, v := range e {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

// Build returns the distinct truncated times of s in first-seen order.
func Build(s series.Series) Entry {
	return Entry(nil).merge(s)
}

// merge appends the unseen labels of s to a copy of e.
func (e Entry) merge(s series.Series) Entry {
	seen := make(map[int64]struct{}, len(e)+len(s.Samples))
	out := make(Entry, len(e), len(e)+len(s.Samples))
	copy(out, e)
	for _, v := range e {
		seen[v] = struct{}{}
	}
	for _, smp := range s.Samples {
		v := label(smp.T)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// label truncates t toward zero. Times outside the int64 range saturate and
// NaN maps to 0, since converting those directly is implementation-defined.
func label(t float64) int64 {
	switch {
	case math.IsNaN(t):
		return 0
	case t >= math.MaxInt64:
		return math.MaxInt64
	case t <= math.MinInt64:
		return math.MinInt64
	}
	return int64(t)
}

// Mode selects how the legend grows across entities.
type Mode int

const (
	// FirstEntity builds the legend from the first entity with any selected
	// samples and ignores every later entity. Entities whose sample times
	// differ from the first one's get colors the legend does not list.
	FirstEntity Mode = iota
	// Union lists every distinct time of every entity, in first-seen order.
	Union
)

func (m Mode) String() string {
	switch m {
	case FirstEntity:
		return "first"
	case Union:
		return "union"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "first" or "union".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "first", "":
		return FirstEntity, nil
	case "union":
		return Union, nil
	}
	return FirstEntity, fmt.Errorf("unknown legend mode %q (want first or union)", s)
}

// Accumulator is the legend state threaded through an aggregation fold.
// Observe never mutates the receiver; it returns the next state.
type Accumulator struct {
	mode   Mode
	entry  Entry
	scale  float64
	seen   bool
	frozen bool
}

// NewAccumulator starts an empty legend in the given mode.
func NewAccumulator(mode Mode) Accumulator {
	return Accumulator{mode: mode}
}

// Observe folds one selected series into the legend. Empty series are ignored
// so the first entity that contributes points is the one that counts.
func (a Accumulator) Observe(s series.Series) Accumulator {
	if a.frozen || s.Empty() {
		return a
	}

	maxT, _ := s.MaxT()
	next := a
	next.entry = a.entry.merge(s)
	if !a.seen || maxT > a.scale {
		next.scale = maxT
	}
	next.seen = true
	next.frozen = a.mode == FirstEntity
	return next
}

// Entry returns the accumulated labels.
func (a Accumulator) Entry() Entry {
	return a.entry
}

// Scale returns the time used to normalize legend swatch colors: the first
// entity's maximum in FirstEntity mode, the overall maximum in Union mode.
func (a Accumulator) Scale() float64 {
	return a.scale
}

// Frozen reports whether further observations are ignored.
func (a Accumulator) Frozen() bool {
	return a.frozen
}

// Len returns the number of labels.
func (e Entry) Len() int {
	return len(e)
}
