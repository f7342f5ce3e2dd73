// Package series reads per-entity position time series from data files.
//
// Every simulated particle writes its own file with one row per integration
// step. A file holds at least the columns t, x and y; the entity is named
// after the file stem.
package series

// Sample is one recorded position of an entity at simulation time T.
type Sample struct {
	T float64 // simulation time (s)
	X float64 // meters
	Y float64 // meters
}

// Series is the ordered record of one entity's samples.
// Samples are expected in non-decreasing T order; this is not enforced.
type Series struct {
	Name    string
	Samples []Sample
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Samples)
}

// Empty reports whether the series has no samples.
func (s Series) Empty() bool {
	return len(s.Samples) == 0
}

// MaxT returns the largest sample time and false if the series is empty.
func (s Series) MaxT() (float64, bool) {
	if len(s.Samples) == 0 {
		return 0, false
	}
	max := s.Samples[0].T
	for _, smp := range s.Samples[1:] {
		if smp.T > max {
			max = smp.T
		}
	}
	return max, true
}

// TimeRange holds the minimum and maximum sample times in a series.
type TimeRange struct {
	Min float64
	Max float64
}

// Range returns the time range covered by the series.
func (s Series) Range() (TimeRange, bool) {
	if len(s.Samples) == 0 {
		return TimeRange{}, false
	}
	r := TimeRange{Min: s.Samples[0].T, Max: s.Samples[0].T}
	for _, smp := range s.Samples[1:] {
		if smp.T < r.Min {
			r.Min = smp.T
		}
		if smp.T > r.Max {
			r.Max = smp.T
		}
	}
	return r, true
}
