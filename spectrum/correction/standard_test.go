package correction

import (
	"errors"
	"math"
	"testing"
)

func TestNewStandardCanonicalOrder(t *testing.T) {
	flat := mustCurve(t, []float64{400, 1000}, []float64{0.5, 0.5})

	p, err := NewStandard(StandardConfig{
		Grating:  flat,
		Fiber:    flat,
		CameraQE: flat,
		Lens:     flat,
		Mirror:   flat,
	})
	if err != nil {
		t.Fatalf("NewStandard: %v", err)
	}

	want := []string{
		NameGrating,
		NameFiberAttenuation,
		NameQuantumEfficiency,
		NameLensTransmission,
		NameMirrorReflectance,
	}

	names := p.Names()
	if len(names) != len(want) {
		t.Fatalf("Names = %v", names)
	}

	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names[%d] = %q, want %q", i, names[i], want[i])
		}

		if !p.IsEnabled(names[i]) {
			t.Fatalf("stage %q not enabled by default", names[i])
		}
	}
}

func TestNewStandardSkipsNilCurves(t *testing.T) {
	flat := mustCurve(t, []float64{400, 1000}, []float64{0.5, 0.5})

	p, err := NewStandard(StandardConfig{Grating: flat, Mirror: flat})
	if err != nil {
		t.Fatalf("NewStandard: %v", err)
	}

	names := p.Names()
	if len(names) != 2 || names[0] != NameGrating || names[1] != NameMirrorReflectance {
		t.Fatalf("Names = %v", names)
	}
}

func TestNewStandardDefaults(t *testing.T) {
	fiber := mustCurve(t, []float64{400, 1000}, []float64{5, 5})
	mirror := mustCurve(t, []float64{400, 1000}, []float64{0.9, 0.9})

	p, err := NewStandard(StandardConfig{Fiber: fiber, Mirror: mirror})
	if err != nil {
		t.Fatalf("NewStandard: %v", err)
	}

	out, err := p.Apply([]float64{600}, []float64{1})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// 5 dB/m over the default 2 m is transmission 0.1; the default 3
	// bounces at 0.9 reflectivity give 0.729.
	want := 1 / (0.1 * math.Pow(0.9, 3))
	if math.Abs(out[0]-want) > 1e-9*want {
		t.Fatalf("out = %v, want %v", out[0], want)
	}
}

func TestNewStandardEmptyConfig(t *testing.T) {
	p, err := NewStandard(StandardConfig{})
	if err != nil {
		t.Fatalf("NewStandard: %v", err)
	}

	if len(p.Names()) != 0 {
		t.Fatalf("Names = %v, want none", p.Names())
	}

	if p.AnyEnabled() {
		t.Fatal("AnyEnabled = true for an empty pipeline")
	}

	out, err := p.Apply([]float64{500}, []float64{3})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if out[0] != 3 {
		t.Fatalf("out = %v, want 3", out[0])
	}
}

func TestNewStandardPropagatesStageError(t *testing.T) {
	fiber := mustCurve(t, []float64{400, 1000}, []float64{5, 5})

	_, err := NewStandard(StandardConfig{Fiber: fiber, FiberLengthM: -1})
	if !errors.Is(err, ErrFiberLength) {
		t.Fatalf("got err %v, want ErrFiberLength", err)
	}
}
