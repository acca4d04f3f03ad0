package planck

import "math"

// Radiation constants of the Planck law.
const (
	C1 = 3.7418e-16 // first radiation constant, W·m²
	C2 = 0.014388   // second radiation constant, m·K
)

// Radiance evaluates the scaled Planck law at one wavelength:
//
//	I(λ; T, S) = S · c1/λ⁵ · 1/(exp(c2/(λT)) − 1)
//
// lambdaM is the wavelength in meters, tempK the temperature in Kelvin and
// scale the unit-conversion factor S. The function never panics: degenerate
// inputs (λ→0, T→0, exponential overflow) produce zero or non-finite values
// under the usual floating-point semantics, and it is the caller's job to
// reject non-finite results.
func Radiance(lambdaM, tempK, scale float64) float64 {
	return scale * C1 / pow5(lambdaM) / math.Expm1(C2/(lambdaM*tempK))
}

// Curve evaluates the model over a wavelength grid in nanometers. The grid
// may extend beyond the fitted range; the model extrapolates naturally.
// The result is written to dst if it has the right length, otherwise a new
// slice is allocated.
func Curve(dst, wavelengthsNm []float64, tempK, scale float64) []float64 {
	if len(dst) != len(wavelengthsNm) {
		dst = make([]float64, len(wavelengthsNm))
	}

	for i, wl := range wavelengthsNm {
		dst[i] = Radiance(wl*1e-9, tempK, scale)
	}

	return dst
}

// partials returns ∂I/∂T and ∂I/∂S of the model at one wavelength.
//
//	∂I/∂S = c1/λ⁵ · 1/(exp(u) − 1)            with u = c2/(λT)
//	∂I/∂T = S · ∂I/∂S · (u/T) · exp(u)/(exp(u) − 1)
//
// When exp(u) overflows both derivatives underflow to zero, which is the
// correct limit.
func partials(lambdaM, tempK, scale float64) (dT, dS float64) {
	u := C2 / (lambdaM * tempK)
	em1 := math.Expm1(u)

	dS = C1 / pow5(lambdaM) / em1
	if math.IsInf(em1, 1) || em1 == 0 {
		return 0, dS
	}

	dT = scale * dS * (u / tempK) * (em1 + 1) / em1

	return dT, dS
}

func pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}
