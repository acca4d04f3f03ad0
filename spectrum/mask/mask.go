// Package mask computes which points of a wavelength grid take part in a
// fit: optional global bounds plus arbitrarily many excluded intervals.
// The fit and any downstream consumer (plotting, reporting) apply the same
// mask, so inclusion is decided in exactly one place.
package mask

// Interval is a closed wavelength interval [Min, Max] to exclude.
// Overlapping intervals behave as the union of their exclusions.
type Interval struct {
	Min, Max float64
}

// Valid reports whether the interval is well-formed (Min < Max).
func (iv Interval) Valid() bool {
	return iv.Min < iv.Max
}

// Filter returns the well-formed intervals, dropping malformed ones.
// Shells collect user-entered intervals through this before calling Build.
func Filter(intervals []Interval) []Interval {
	out := make([]Interval, 0, len(intervals))

	for _, iv := range intervals {
		if iv.Valid() {
			out = append(out, iv)
		}
	}

	return out
}

// Build computes the inclusion mask for a wavelength grid. A point is
// included unless it lies below min, above max, or inside any excluded
// interval (bounds inclusive). A NaN or infinite bound on the open side
// disables that bound. Intervals must be well-formed; use [Filter] first
// for untrusted input.
func Build(wavelengthsNm []float64, min, max float64, excluded []Interval) []bool {
	out := make([]bool, len(wavelengthsNm))

	for i, w := range wavelengthsNm {
		out[i] = !(w < min || w > max)
	}

	for _, iv := range excluded {
		for i, w := range wavelengthsNm {
			if w >= iv.Min && w <= iv.Max {
				out[i] = false
			}
		}
	}

	return out
}

// Segment is a half-open index range [Start, Stop) of consecutive
// masked-in points.
type Segment struct {
	Start, Stop int
}

// Segments returns the maximal contiguous true-runs of a mask. Run it on
// the mask for included spans, or on its complement (see [Invert]) for the
// excluded ones.
func Segments(m []bool) []Segment {
	var segs []Segment

	start := -1
	for i, on := range m {
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			segs = append(segs, Segment{Start: start, Stop: i})
			start = -1
		}
	}

	if start >= 0 {
		segs = append(segs, Segment{Start: start, Stop: len(m)})
	}

	return segs
}

// Invert returns the complement of a mask.
func Invert(m []bool) []bool {
	out := make([]bool, len(m))
	for i, on := range m {
		out[i] = !on
	}

	return out
}

// Count returns the number of masked-in points.
func Count(m []bool) int {
	n := 0

	for _, on := range m {
		if on {
			n++
		}
	}

	return n
}

// Select returns the values at masked-in positions. values and m must have
// the same length.
func Select(values []float64, m []bool) []float64 {
	out := make([]float64, 0, Count(m))

	for i, on := range m {
		if on {
			out = append(out, values[i])
		}
	}

	return out
}
