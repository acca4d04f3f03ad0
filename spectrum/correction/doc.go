// Package correction removes instrument response from raw spectrometer
// counts. Each stage divides out one wavelength-dependent factor backed by
// a calibration curve; a Pipeline applies the enabled stages in a fixed
// order. Since every stage is a per-wavelength multiplicative divisor, the
// composed result does not depend on the order, but the chain keeps the
// instrument's light-path order anyway: grating, fiber, camera, lens,
// mirrors.
package correction
