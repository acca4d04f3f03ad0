package correction

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pyro/spectrum/calib"
)

// Errors returned by stages and pipelines.
var (
	ErrNonPositiveFactor = errors.New("correction: factor is not positive")
	ErrUnknownStage      = errors.New("correction: unknown stage name")
	ErrDuplicateStage    = errors.New("correction: duplicate stage name")
	ErrEmptyName         = errors.New("correction: stage name is empty")
	ErrNilCurve          = errors.New("correction: stage has no reference curve")
	ErrUnknownKind       = errors.New("correction: unknown stage kind")
	ErrBounces           = errors.New("correction: mirror bounce count must be >= 1")
	ErrFiberLength       = errors.New("correction: fiber length must be positive")
	ErrLengthMismatch    = errors.New("correction: wavelength and count lengths differ")
)

// Kind tags the transform rule a stage applies to its reference curve.
type Kind int

// Stage kinds. Grating, quantum efficiency and lens stages divide by the
// curve value directly; mirror stages divide by the value raised to the
// bounce count; fiber stages read the curve as attenuation in dB per meter
// and divide by the resulting transmission fraction.
const (
	KindGrating Kind = iota + 1
	KindFiberAttenuation
	KindQuantumEfficiency
	KindLensTransmission
	KindMirrorReflectance
)

// String returns a short human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindGrating:
		return "grating"
	case KindFiberAttenuation:
		return "fiber-attenuation"
	case KindQuantumEfficiency:
		return "quantum-efficiency"
	case KindLensTransmission:
		return "lens-transmission"
	case KindMirrorReflectance:
		return "mirror-reflectance"
	default:
		return "unknown"
	}
}

// Stage is one wavelength-dependent correction. Stages are stateless values;
// whether a stage runs is decided by the owning [Pipeline].
type Stage struct {
	Name  string
	Kind  Kind
	Curve *calib.Curve

	// Bounces is the number of reflections for mirror stages.
	Bounces int
	// FiberLengthM is the patch-cord length in meters for fiber stages.
	FiberLengthM float64
}

// NewStage creates a plain divide-by-curve stage (grating, quantum
// efficiency or lens transmission).
func NewStage(name string, kind Kind, curve *calib.Curve) (Stage, error) {
	s := Stage{Name: name, Kind: kind, Curve: curve}
	if kind == KindMirrorReflectance {
		s.Bounces = 1
	}

	err := s.Validate()
	if err != nil {
		return Stage{}, err
	}

	return s, nil
}

// NewMirrorStage creates a mirror reflectance stage for a light path with
// the given number of reflections.
func NewMirrorStage(name string, curve *calib.Curve, bounces int) (Stage, error) {
	s := Stage{Name: name, Kind: KindMirrorReflectance, Curve: curve, Bounces: bounces}

	err := s.Validate()
	if err != nil {
		return Stage{}, err
	}

	return s, nil
}

// NewFiberStage creates a fiber attenuation stage. The curve holds
// attenuation in dB per meter; lengthM is the fiber length in meters.
func NewFiberStage(name string, curve *calib.Curve, lengthM float64) (Stage, error) {
	s := Stage{Name: name, Kind: KindFiberAttenuation, Curve: curve, FiberLengthM: lengthM}

	err := s.Validate()
	if err != nil {
		return Stage{}, err
	}

	return s, nil
}

// Validate checks that the stage parameters are usable.
func (s Stage) Validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}

	if s.Curve == nil {
		return fmt.Errorf("%w: %q", ErrNilCurve, s.Name)
	}

	switch s.Kind {
	case KindGrating, KindQuantumEfficiency, KindLensTransmission:
	case KindMirrorReflectance:
		if s.Bounces < 1 {
			return fmt.Errorf("%w: %d", ErrBounces, s.Bounces)
		}
	case KindFiberAttenuation:
		if s.FiberLengthM <= 0 {
			return fmt.Errorf("%w: %v", ErrFiberLength, s.FiberLengthM)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(s.Kind))
	}

	return nil
}

// Factors evaluates the per-wavelength correction factor the stage divides
// counts by. The result is written to dst if it has the right length,
// otherwise a new slice is allocated.
//
//	plain:  f(λ) = curve(λ)
//	mirror: f(λ) = curve(λ)^bounces
//	fiber:  f(λ) = 10^(−curve(λ)·L / 10)
func (s Stage) Factors(dst, wavelengthsNm []float64) []float64 {
	dst = s.Curve.Evaluate(dst, wavelengthsNm)

	switch s.Kind {
	case KindMirrorReflectance:
		if s.Bounces != 1 {
			for i, r := range dst {
				dst[i] = math.Pow(r, float64(s.Bounces))
			}
		}
	case KindFiberAttenuation:
		for i, dbPerM := range dst {
			dst[i] = math.Pow(10, -dbPerM*s.FiberLengthM/10)
		}
	}

	return dst
}

// Apply divides counts by the stage's correction factor at each wavelength
// and returns a new slice; the inputs are never modified. It fails with
// [ErrNonPositiveFactor] if the factor is not strictly positive anywhere
// on the grid, which indicates invalid calibration data.
func (s Stage) Apply(wavelengthsNm, counts []float64) ([]float64, error) {
	if len(wavelengthsNm) != len(counts) {
		return nil, ErrLengthMismatch
	}

	err := s.Validate()
	if err != nil {
		return nil, err
	}

	inv := s.Factors(nil, wavelengthsNm)
	for i, f := range inv {
		if !(f > 0) {
			return nil, fmt.Errorf("%w: %v at %v nm", ErrNonPositiveFactor, f, wavelengthsNm[i])
		}

		inv[i] = 1 / f
	}

	out := make([]float64, len(counts))
	vecmath.MulBlock(out, counts, inv)

	return out, nil
}
