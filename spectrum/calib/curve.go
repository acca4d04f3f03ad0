package calib

import (
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Curve is an immutable piecewise-linear reference curve over wavelength.
// Inside the control-point domain it interpolates linearly between
// neighbors; outside, it extrapolates along the nearest edge segment's
// slope. It is safe for concurrent use once constructed.
type Curve struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear

	slopeLo, slopeHi float64
}

// NewCurve builds a curve from control points. The points are copied and
// sorted by wavelength; duplicate wavelengths are rejected with
// [ErrDuplicateX], fewer than two points with [ErrTooFewPoints].
func NewCurve(xs, ys []float64) (*Curve, error) {
	if len(xs) != len(ys) {
		return nil, ErrLengthMismatch
	}

	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}

	n := len(xs)
	c := &Curve{
		xs: make([]float64, n),
		ys: make([]float64, n),
	}
	copy(c.xs, xs)
	copy(c.ys, ys)

	sort.Sort(byWavelength{c.xs, c.ys})

	for i := 1; i < n; i++ {
		if c.xs[i] == c.xs[i-1] {
			return nil, ErrDuplicateX
		}
	}

	err := c.pl.Fit(c.xs, c.ys)
	if err != nil {
		return nil, err
	}

	c.slopeLo = (c.ys[1] - c.ys[0]) / (c.xs[1] - c.xs[0])
	c.slopeHi = (c.ys[n-1] - c.ys[n-2]) / (c.xs[n-1] - c.xs[n-2])

	return c, nil
}

// NewPercentCurve builds a curve from percent-valued control points,
// converting each value to a fraction (value/100) first.
func NewPercentCurve(xs, ys []float64) (*Curve, error) {
	fractions := make([]float64, len(ys))
	for i, y := range ys {
		fractions[i] = y / 100
	}

	return NewCurve(xs, fractions)
}

// Len returns the number of control points.
func (c *Curve) Len() int {
	return len(c.xs)
}

// Points returns copies of the sorted control points.
func (c *Curve) Points() (xs, ys []float64) {
	xs = make([]float64, len(c.xs))
	copy(xs, c.xs)

	ys = make([]float64, len(c.ys))
	copy(ys, c.ys)

	return xs, ys
}

// Domain returns the wavelength range covered by the control points.
func (c *Curve) Domain() (min, max float64) {
	return c.xs[0], c.xs[len(c.xs)-1]
}

// At evaluates the curve at a single wavelength.
func (c *Curve) At(x float64) float64 {
	switch {
	case x < c.xs[0]:
		return c.ys[0] + c.slopeLo*(x-c.xs[0])
	case x > c.xs[len(c.xs)-1]:
		return c.ys[len(c.ys)-1] + c.slopeHi*(x-c.xs[len(c.xs)-1])
	default:
		return c.pl.Predict(x)
	}
}

// Evaluate evaluates the curve at every wavelength in xs. The result is
// written to dst if it has the right length, otherwise a new slice is
// allocated.
func (c *Curve) Evaluate(dst, xs []float64) []float64 {
	if len(dst) != len(xs) {
		dst = make([]float64, len(xs))
	}

	for i, x := range xs {
		dst[i] = c.At(x)
	}

	return dst
}

// byWavelength sorts control points by wavelength, keeping pairs aligned.
type byWavelength struct {
	xs, ys []float64
}

func (s byWavelength) Len() int           { return len(s.xs) }
func (s byWavelength) Less(i, j int) bool { return s.xs[i] < s.xs[j] }

func (s byWavelength) Swap(i, j int) {
	s.xs[i], s.xs[j] = s.xs[j], s.xs[i]
	s.ys[i], s.ys[j] = s.ys[j], s.ys[i]
}
