package planck

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by the fitter. ErrNoConvergence is recoverable: the
// corrected spectrum that fed the fit stays valid, there is simply no fit
// to report.
var (
	ErrLengthMismatch = errors.New("planck: input lengths differ")
	ErrTooFewPoints   = errors.New("planck: need at least 2 usable points")
	ErrBadGuess       = errors.New("planck: initial guess must have T > 0 and S != 0")
	ErrNoConvergence  = errors.New("planck: fit did not converge")
)

// GOFKind names the goodness-of-fit statistic carried by a Result.
type GOFKind int

const (
	// GOFRSquared is the coefficient of determination, reported when no
	// per-point uncertainties are supplied.
	GOFRSquared GOFKind = iota + 1
	// GOFReducedChiSquare is χ²/(N−2), reported when sigma is supplied and
	// treated as absolute uncertainty.
	GOFReducedChiSquare
)

// String returns a short label for the statistic.
func (k GOFKind) String() string {
	switch k {
	case GOFRSquared:
		return "R^2"
	case GOFReducedChiSquare:
		return "reduced chi-square"
	default:
		return "unknown"
	}
}

// Config holds fit parameters. Zero values select the defaults.
type Config struct {
	InitTempK     float64 // initial temperature guess in K, default 2000
	InitScale     float64 // initial scale guess, default 1e-11
	MaxIterations int     // optimizer iteration budget, default 200
}

const (
	defaultInitTempK     = 2000
	defaultInitScale     = 1e-11
	defaultMaxIterations = 200

	// residualPenalty replaces non-finite residuals so the optimizer backs
	// away from degenerate parameter regions instead of propagating NaN.
	residualPenalty = 1e150
)

func normalizeConfig(cfg Config) Config {
	if cfg.InitTempK == 0 {
		cfg.InitTempK = defaultInitTempK
	}

	if cfg.InitScale == 0 {
		cfg.InitScale = defaultInitScale
	}

	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}

	return cfg
}

// Result holds one blackbody fit. It is created fresh per Fit call and not
// modified afterwards.
type Result struct {
	TempK    float64 // best-fit temperature, K
	TempErr  float64 // 1σ uncertainty on TempK
	Scale    float64 // best-fit scale S
	ScaleErr float64 // 1σ uncertainty on Scale
	GOF      float64
	GOFKind  GOFKind

	// WavelengthsNm is a copy of the wavelength subset the fit actually
	// used, for reporting alongside the parameters.
	WavelengthsNm []float64
}

// Curve evaluates the fitted model over an arbitrary wavelength grid (nm),
// inside or outside the fitted range.
func (r *Result) Curve(dst, wavelengthsNm []float64) []float64 {
	return Curve(dst, wavelengthsNm, r.TempK, r.Scale)
}

// Fitter fits the Planck model to masked, corrected spectra. A Fitter is
// stateless apart from its configuration and safe for concurrent use.
type Fitter struct {
	cfg Config
}

// NewFitter creates a fitter with the given configuration.
func NewFitter(cfg Config) *Fitter {
	return &Fitter{cfg: normalizeConfig(cfg)}
}

// Fit is a one-shot fit with the default configuration.
func Fit(wavelengthsNm, counts, sigma []float64) (*Result, error) {
	return NewFitter(Config{}).Fit(wavelengthsNm, counts, sigma)
}

// Fit estimates (T, S) by Levenberg-Marquardt least squares on
// counts − I(λ; T, S), with λ taken from wavelengthsNm (converted to
// meters). sigma, when non-nil, gives absolute per-point uncertainties and
// switches the goodness-of-fit to reduced chi-square; otherwise R² is
// reported. Standard errors come from the diagonal of the parameter
// covariance matrix.
//
// The parameters are normalized by the initial guess and the counts by
// their peak magnitude before optimizing, so the solver works near unit
// scale regardless of the instrument's count units.
func (f *Fitter) Fit(wavelengthsNm, counts, sigma []float64) (*Result, error) {
	n := len(wavelengthsNm)
	if len(counts) != n || (sigma != nil && len(sigma) != n) {
		return nil, ErrLengthMismatch
	}

	if n < 2 {
		return nil, ErrTooFewPoints
	}

	cfg := f.cfg
	if cfg.InitTempK <= 0 || cfg.InitScale == 0 {
		return nil, ErrBadGuess
	}

	lambdaM := make([]float64, n)
	for i, wl := range wavelengthsNm {
		lambdaM[i] = wl * 1e-9
	}

	// Per-point residual weights: 1/sigma for weighted fits, 1/peak-count
	// normalization otherwise.
	weights := make([]float64, n)
	if sigma != nil {
		for i, s := range sigma {
			weights[i] = 1 / s
		}
	} else {
		yscale := 0.0
		for _, c := range counts {
			if a := math.Abs(c); a > yscale {
				yscale = a
			}
		}

		if yscale == 0 {
			yscale = 1
		}

		for i := range weights {
			weights[i] = 1 / yscale
		}
	}

	t0, s0 := cfg.InitTempK, cfg.InitScale

	residuals := func(dst, x []float64) {
		tempK, scale := x[0]*t0, x[1]*s0
		for i, lam := range lambdaM {
			r := (counts[i] - Radiance(lam, tempK, scale)) * weights[i]
			if !isFinite(r) {
				r = residualPenalty
			}

			dst[i] = r
		}
	}

	jacobian := func(dst *mat.Dense, x []float64) {
		tempK, scale := x[0]*t0, x[1]*s0
		for i, lam := range lambdaM {
			dT, dS := partials(lam, tempK, scale)

			jT := -dT * t0 * weights[i]
			jS := -dS * s0 * weights[i]

			if !isFinite(jT) {
				jT = 0
			}

			if !isFinite(jS) {
				jS = 0
			}

			dst.Set(i, 0, jT)
			dst.Set(i, 1, jS)
		}
	}

	problem := lm.LMProblem{
		Dim:        2,
		Size:       n,
		Func:       residuals,
		Jac:        jacobian,
		InitParams: []float64{1, 1},
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	solution, err := lm.LM(problem, &lm.Settings{
		Iterations:   cfg.MaxIterations,
		ObjectiveTol: 1e-16,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}

	tempK, scale := solution.X[0]*t0, solution.X[1]*s0
	if !isFinite(tempK) || !isFinite(scale) {
		return nil, fmt.Errorf("%w: non-finite parameters", ErrNoConvergence)
	}

	model := Curve(nil, wavelengthsNm, tempK, scale)

	weighted := make([]float64, n)
	for i := range model {
		r := counts[i] - model[i]
		if !isFinite(r) {
			return nil, fmt.Errorf("%w: non-finite residuals", ErrNoConvergence)
		}

		weighted[i] = r * weights[i]
	}

	tempErr, scaleErr, err := f.standardErrors(lambdaM, weights, weighted, tempK, scale, sigma == nil)
	if err != nil {
		return nil, err
	}

	res := &Result{
		TempK:         tempK,
		TempErr:       tempErr,
		Scale:         scale,
		ScaleErr:      scaleErr,
		WavelengthsNm: append([]float64(nil), wavelengthsNm...),
	}

	if sigma != nil {
		res.GOF = floats.Dot(weighted, weighted) / float64(n-2)
		res.GOFKind = GOFReducedChiSquare
	} else {
		res.GOF = stat.RSquaredFrom(model, counts, nil)
		res.GOFKind = GOFRSquared
	}

	return res, nil
}

// standardErrors computes 1σ parameter uncertainties from the weighted
// Jacobian at the solution: cov = (JᵀJ)⁻¹, scaled by the residual variance
// SSR/(N−2) when no absolute uncertainties were supplied. A singular JᵀJ
// means the parameters are not identifiable from the data (e.g. a frozen
// Jacobian on pure noise) and is reported as a convergence failure.
func (f *Fitter) standardErrors(
	lambdaM, weights, weighted []float64,
	tempK, scale float64,
	scaleByResiduals bool,
) (tempErr, scaleErr float64, err error) {
	n := len(lambdaM)

	jac := mat.NewDense(n, 2, nil)
	for i, lam := range lambdaM {
		dT, dS := partials(lam, tempK, scale)

		jT := dT * weights[i]
		jS := dS * weights[i]

		if !isFinite(jT) {
			jT = 0
		}

		if !isFinite(jS) {
			jS = 0
		}

		jac.Set(i, 0, jT)
		jac.Set(i, 1, jS)
	}

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var cov mat.Dense

	err = cov.Inverse(&jtj)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: singular covariance: %v", ErrNoConvergence, err)
	}

	variance := 1.0
	if scaleByResiduals {
		variance = floats.Dot(weighted, weighted) / float64(n-2)
	}

	return math.Sqrt(cov.At(0, 0) * variance), math.Sqrt(cov.At(1, 1) * variance), nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
