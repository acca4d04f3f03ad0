// Package spectrum defines the emission-spectrum value type shared by the
// correction pipeline and the blackbody fitter: counts sampled on a strictly
// increasing wavelength grid in nanometers.
package spectrum

import "errors"

// Errors returned when constructing a Spectrum.
var (
	ErrEmpty          = errors.New("spectrum: no data points")
	ErrLengthMismatch = errors.New("spectrum: wavelength and count lengths differ")
	ErrNotAscending   = errors.New("spectrum: wavelengths must be strictly increasing")
)

// Spectrum is one measured emission spectrum. Both slices always have the
// same length and WavelengthsNm is strictly increasing. Consumers treat a
// Spectrum as immutable once constructed; operations that derive new data
// (corrections, model curves) allocate their own output.
type Spectrum struct {
	WavelengthsNm []float64
	Counts        []float64
}

// New validates the two arrays and wraps them in a Spectrum. The input
// slices are retained, not copied; callers that keep writing to them should
// pass copies.
func New(wavelengthsNm, counts []float64) (*Spectrum, error) {
	if len(wavelengthsNm) != len(counts) {
		return nil, ErrLengthMismatch
	}

	if len(wavelengthsNm) == 0 {
		return nil, ErrEmpty
	}

	for i := 1; i < len(wavelengthsNm); i++ {
		if wavelengthsNm[i] <= wavelengthsNm[i-1] {
			return nil, ErrNotAscending
		}
	}

	return &Spectrum{WavelengthsNm: wavelengthsNm, Counts: counts}, nil
}

// Len returns the number of data points.
func (s *Spectrum) Len() int {
	return len(s.WavelengthsNm)
}

// Clone returns a deep copy with independent backing arrays.
func (s *Spectrum) Clone() *Spectrum {
	w := make([]float64, len(s.WavelengthsNm))
	copy(w, s.WavelengthsNm)

	c := make([]float64, len(s.Counts))
	copy(c, s.Counts)

	return &Spectrum{WavelengthsNm: w, Counts: c}
}
