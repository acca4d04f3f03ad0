package calib

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCurveInterpolatesLinearly(t *testing.T) {
	c, err := NewCurve([]float64{400, 600, 1000}, []float64{0.2, 0.6, 0.4})
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	for _, tc := range []struct {
		x, want float64
	}{
		{x: 400, want: 0.2},
		{x: 500, want: 0.4},
		{x: 600, want: 0.6},
		{x: 800, want: 0.5},
		{x: 1000, want: 0.4},
	} {
		if got := c.At(tc.x); !almostEqual(got, tc.want, 1e-12) {
			t.Fatalf("At(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestCurveExtrapolatesWithEdgeSlope(t *testing.T) {
	c, err := NewCurve([]float64{400, 600, 1000}, []float64{0.2, 0.6, 0.4})
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	// Below: slope (0.6-0.2)/(600-400) = 0.002 per nm.
	if got, want := c.At(300), 0.2-100*0.002; !almostEqual(got, want, 1e-12) {
		t.Fatalf("At(300) = %v, want %v", got, want)
	}

	// Above: slope (0.4-0.6)/(1000-600) = -0.0005 per nm.
	if got, want := c.At(1200), 0.4-200*0.0005; !almostEqual(got, want, 1e-12) {
		t.Fatalf("At(1200) = %v, want %v", got, want)
	}

	// Never clamps: far outside it keeps following the edge segment.
	if got := c.At(2000); got >= 0.4 {
		t.Fatalf("At(2000) = %v, expected extrapolation below the edge value", got)
	}
}

func TestCurveSortsControlPoints(t *testing.T) {
	c, err := NewCurve([]float64{1000, 400, 600}, []float64{0.4, 0.2, 0.6})
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	xs, ys := c.Points()
	if xs[0] != 400 || xs[2] != 1000 || ys[0] != 0.2 {
		t.Fatalf("points not sorted by wavelength: %v %v", xs, ys)
	}

	if got := c.At(500); !almostEqual(got, 0.4, 1e-12) {
		t.Fatalf("At(500) = %v, want 0.4", got)
	}
}

func TestCurveRejectsDuplicateWavelengths(t *testing.T) {
	_, err := NewCurve([]float64{400, 600, 600}, []float64{0.2, 0.6, 0.7})
	if !errors.Is(err, ErrDuplicateX) {
		t.Fatalf("got err %v, want ErrDuplicateX", err)
	}
}

func TestCurveRejectsTooFewPoints(t *testing.T) {
	_, err := NewCurve([]float64{400}, []float64{0.2})
	if !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("got err %v, want ErrTooFewPoints", err)
	}
}

func TestCurveEvaluateBatch(t *testing.T) {
	c, err := NewCurve([]float64{400, 800}, []float64{0.2, 0.6})
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	xs := []float64{300, 400, 600, 800, 900}
	got := c.Evaluate(nil, xs)

	for i, x := range xs {
		if want := c.At(x); got[i] != want {
			t.Fatalf("Evaluate[%d] = %v, At(%v) = %v", i, got[i], x, want)
		}
	}

	// Reuses dst when the length matches.
	dst := make([]float64, len(xs))
	out := c.Evaluate(dst, xs)
	if &out[0] != &dst[0] {
		t.Fatalf("Evaluate allocated although dst had the right length")
	}
}

func BenchmarkCurveEvaluate(b *testing.B) {
	xs := make([]float64, 64)
	ys := make([]float64, 64)
	for i := range xs {
		xs[i] = 400 + 10*float64(i)
		ys[i] = 0.3 + 0.005*float64(i)
	}

	c, err := NewCurve(xs, ys)
	if err != nil {
		b.Fatalf("NewCurve: %v", err)
	}

	grid := make([]float64, 2048)
	for i := range grid {
		grid[i] = 350 + 0.4*float64(i)
	}
	dst := make([]float64, len(grid))

	b.ResetTimer()

	for range b.N {
		c.Evaluate(dst, grid)
	}
}
