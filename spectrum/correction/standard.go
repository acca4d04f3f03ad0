package correction

import "github.com/cwbudde/algo-pyro/spectrum/calib"

// Canonical names of the five-stage spectrometer chain, in execution order.
const (
	NameGrating           = "grating efficiency"
	NameFiberAttenuation  = "fiber attenuation"
	NameQuantumEfficiency = "camera quantum efficiency"
	NameLensTransmission  = "lens transmission"
	NameMirrorReflectance = "mirror reflectance"
)

// Defaults for the standard chain.
const (
	DefaultFiberLengthM  = 2.0
	DefaultMirrorBounces = 3
)

// StandardConfig holds the calibration curves of the standard five-stage
// chain. Curves left nil are omitted from the pipeline. Zero values for
// FiberLengthM and MirrorBounces select the defaults.
type StandardConfig struct {
	Grating  *calib.Curve // efficiency fraction
	Fiber    *calib.Curve // attenuation, dB/m
	CameraQE *calib.Curve // quantum efficiency fraction
	Lens     *calib.Curve // transmission fraction
	Mirror   *calib.Curve // single-bounce reflectivity fraction

	FiberLengthM  float64
	MirrorBounces int
}

// NewStandard assembles the standard instrument pipeline: grating
// efficiency, fiber attenuation, camera quantum efficiency, lens
// transmission, mirror reflectance, in that order, all enabled.
func NewStandard(cfg StandardConfig) (*Pipeline, error) {
	if cfg.FiberLengthM == 0 {
		cfg.FiberLengthM = DefaultFiberLengthM
	}

	if cfg.MirrorBounces == 0 {
		cfg.MirrorBounces = DefaultMirrorBounces
	}

	stages := make([]Stage, 0, 5)

	if cfg.Grating != nil {
		stages = append(stages, Stage{Name: NameGrating, Kind: KindGrating, Curve: cfg.Grating})
	}

	if cfg.Fiber != nil {
		stages = append(stages, Stage{
			Name:         NameFiberAttenuation,
			Kind:         KindFiberAttenuation,
			Curve:        cfg.Fiber,
			FiberLengthM: cfg.FiberLengthM,
		})
	}

	if cfg.CameraQE != nil {
		stages = append(stages, Stage{Name: NameQuantumEfficiency, Kind: KindQuantumEfficiency, Curve: cfg.CameraQE})
	}

	if cfg.Lens != nil {
		stages = append(stages, Stage{Name: NameLensTransmission, Kind: KindLensTransmission, Curve: cfg.Lens})
	}

	if cfg.Mirror != nil {
		stages = append(stages, Stage{
			Name:    NameMirrorReflectance,
			Kind:    KindMirrorReflectance,
			Curve:   cfg.Mirror,
			Bounces: cfg.MirrorBounces,
		})
	}

	return New(stages...)
}
