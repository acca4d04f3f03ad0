// Package planck estimates the temperature of an emitting source from a
// corrected emission spectrum by nonlinear least-squares fitting of the
// Planck radiance law.
//
// The model is
//
//	I(λ; T, S) = S · c1/λ⁵ · 1/(exp(c2/(λT)) − 1)
//
// with λ in meters, T in Kelvin and S a unit-conversion scale. The fitter
// uses a Levenberg-Marquardt routine with an analytic Jacobian and reports
// best-fit parameters, their standard errors and a goodness-of-fit value
// (reduced chi-square for weighted fits, R² otherwise).
package planck
