package fluid

import "math"

// Params holds the per-step tunables. They are read at the start of every
// step and may be replaced between steps with immediate effect.
//
// Stability is the caller's responsibility: dt, viscosity and the diffusion
// rates are not range-limited beyond what Validate rejects.
type Params struct {
	DT                float32 // time step, grid units per step
	VelocityDiffusion float32 // carried for renderers and tooling; no stage consumes it
	DensityDiffusion  float32 // carried for renderers and tooling; no stage consumes it
	Radius            float32 // force/dye falloff radius in grid cells
	MomentumStrength  float32
	ViscosityOn       bool
	Viscosity         float32
	DiffusionIters    int // Jacobi iterations for viscous diffusion
	PressureIters     int // Jacobi iterations for the pressure solve

	// CheckFinite counts NaN/Inf cells after every step.
	CheckFinite bool
	// Sanitize replaces non-finite cells with zero (implies CheckFinite).
	Sanitize bool
}

// DefaultParams mirrors the defaults of the embedded configuration.
func DefaultParams() Params {
	return Params{
		DT:                0.03,
		VelocityDiffusion: 1.5,
		DensityDiffusion:  1.0,
		Radius:            10,
		MomentumStrength:  1.0,
		ViscosityOn:       true,
		Viscosity:         0.5,
		DiffusionIters:    100,
		PressureIters:     100,
		CheckFinite:       true,
	}
}

// Validate rejects parameters that make a step meaningless.
func (p Params) Validate() error {
	switch {
	case p.DT < 0 || isNaN32(p.DT):
		return &ConfigurationError{Field: "dt", Value: p.DT, Reason: "must be non-negative"}
	case p.DiffusionIters <= 0:
		return &ConfigurationError{Field: "diffusion_iterations", Value: p.DiffusionIters, Reason: "must be positive"}
	case p.PressureIters <= 0:
		return &ConfigurationError{Field: "pressure_iterations", Value: p.PressureIters, Reason: "must be positive"}
	case !(p.Radius > 0):
		return &ConfigurationError{Field: "radius", Value: p.Radius, Reason: "must be positive"}
	}
	return nil
}

func isNaN32(v float32) bool {
	return math.IsNaN(float64(v))
}
