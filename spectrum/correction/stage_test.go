package correction

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/algo-pyro/spectrum/calib"
)

func mustCurve(t *testing.T, xs, ys []float64) *calib.Curve {
	t.Helper()

	c, err := calib.NewCurve(xs, ys)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}

	return c
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestStageDividesByCurveFactor(t *testing.T) {
	curve := mustCurve(t, []float64{400, 1000}, []float64{0.2, 0.8})

	s, err := NewStage("grating efficiency", KindGrating, curve)
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}

	wavelengths := []float64{400, 500, 700, 1000}
	counts := []float64{10, 20, 30, 40}

	out, err := s.Apply(wavelengths, counts)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for i := range out {
		want := counts[i] / curve.At(wavelengths[i])
		if !almostEqual(out[i], want, 1e-9*want) {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestMirrorStageRaisesToBounceCount(t *testing.T) {
	curve := mustCurve(t, []float64{400, 1000}, []float64{0.9, 0.9})

	s, err := NewMirrorStage("mirror reflectance", curve, 3)
	if err != nil {
		t.Fatalf("NewMirrorStage: %v", err)
	}

	out, err := s.Apply([]float64{600}, []float64{100})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := 100 / math.Pow(0.9, 3)
	if !almostEqual(out[0], want, 1e-9*want) {
		t.Fatalf("out = %v, want %v", out[0], want)
	}
}

func TestFiberStageConvertsAttenuationToTransmission(t *testing.T) {
	// Flat 5 dB/m over 2 m = 10 dB loss = transmission 0.1.
	curve := mustCurve(t, []float64{400, 1000}, []float64{5, 5})

	s, err := NewFiberStage("fiber attenuation", curve, 2)
	if err != nil {
		t.Fatalf("NewFiberStage: %v", err)
	}

	out, err := s.Apply([]float64{600}, []float64{7})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if want := 70.0; !almostEqual(out[0], want, 1e-9*want) {
		t.Fatalf("out = %v, want %v", out[0], want)
	}
}

func TestStageRejectsNonPositiveFactor(t *testing.T) {
	for _, tc := range []struct {
		name string
		ys   []float64
	}{
		{name: "zero", ys: []float64{0, 0}},
		{name: "negative", ys: []float64{-0.5, -0.5}},
		{name: "crosses zero by extrapolation", ys: []float64{0.4, 0.1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			curve := mustCurve(t, []float64{400, 1000}, tc.ys)

			s, err := NewStage("lens transmission", KindLensTransmission, curve)
			if err != nil {
				t.Fatalf("NewStage: %v", err)
			}

			// 2000 nm drives the extrapolation case below zero.
			_, err = s.Apply([]float64{600, 2000}, []float64{1, 1})
			if !errors.Is(err, ErrNonPositiveFactor) {
				t.Fatalf("got err %v, want ErrNonPositiveFactor", err)
			}
		})
	}
}

func TestStageDoesNotMutateInputs(t *testing.T) {
	curve := mustCurve(t, []float64{400, 1000}, []float64{0.5, 0.5})

	s, err := NewStage("grating efficiency", KindGrating, curve)
	if err != nil {
		t.Fatalf("NewStage: %v", err)
	}

	wavelengths := []float64{500, 600}
	counts := []float64{1, 2}

	if _, err := s.Apply(wavelengths, counts); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if counts[0] != 1 || counts[1] != 2 || wavelengths[0] != 500 {
		t.Fatalf("inputs were mutated: %v %v", wavelengths, counts)
	}
}

func TestStageValidate(t *testing.T) {
	curve := mustCurve(t, []float64{400, 1000}, []float64{0.5, 0.5})

	for _, tc := range []struct {
		name    string
		stage   Stage
		wantErr error
	}{
		{name: "empty name", stage: Stage{Kind: KindGrating, Curve: curve}, wantErr: ErrEmptyName},
		{name: "nil curve", stage: Stage{Name: "x", Kind: KindGrating}, wantErr: ErrNilCurve},
		{name: "bad kind", stage: Stage{Name: "x", Kind: 0, Curve: curve}, wantErr: ErrUnknownKind},
		{name: "bad bounces", stage: Stage{Name: "x", Kind: KindMirrorReflectance, Curve: curve}, wantErr: ErrBounces},
		{name: "bad length", stage: Stage{Name: "x", Kind: KindFiberAttenuation, Curve: curve}, wantErr: ErrFiberLength},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.stage.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("got err %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if got := KindFiberAttenuation.String(); !strings.Contains(got, "fiber") {
		t.Fatalf("String = %q", got)
	}
}
