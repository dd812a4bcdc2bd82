package fluid

import (
	"fmt"
	"log/slog"
)

// Stage names reported to a PhaseTimer, in pipeline order.
const (
	StageInteraction = "interaction"
	StageAdvection   = "advection"
	StageDiffusion   = "diffusion"
	StageForce       = "force"
	StageDivergence  = "divergence"
	StagePressure    = "pressure"
	StageGradient    = "gradient"
	StageDiagnostics = "diagnostics"
)

// Stages lists every stage name in execution order.
var Stages = []string{
	StageInteraction, StageAdvection, StageDiffusion, StageForce,
	StageDivergence, StagePressure, StageGradient, StageDiagnostics,
}

// PhaseTimer receives a call as each stage begins.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartPhase(name string)
}

// Option configures a Solver at construction.
type Option func(*Solver)

// WithPointer sets the pointer collaborator. Without one the solver never
// injects force.
func WithPointer(src PointerSource) Option {
	return func(s *Solver) { s.pointer = src }
}

// WithBackground sets the colour collaborator used for dye injection.
// Without one, injected dye is white.
func WithBackground(bg ColorSampler) Option {
	return func(s *Solver) { s.background = bg }
}

// WithWorkers sets the number of kernel workers; 1 runs every stage on the
// calling goroutine, 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithPhaseTimer reports stage boundaries to t.
func WithPhaseTimer(t PhaseTimer) Option {
	return func(s *Solver) { s.timer = t }
}

// StepReport summarises one completed step.
type StepReport struct {
	Tick        int64
	Interaction Interaction
	NonFinite   int // non-finite velocity/dye values seen after the step
	Sanitized   int // of those, how many were replaced with zero
}

// Solver owns every field buffer and advances them one step at a time.
// It is not safe for concurrent use: Step and the field accessors must be
// called from one goroutine, and grids returned by Velocity and Dye are
// only valid until the next Step.
type Solver struct {
	res    int
	params Params

	velocity   *Pair
	dye        *Pair
	pressure   *Pair
	divergence *Grid

	pointer    PointerSource
	background ColorSampler
	timer      PhaseTimer
	workers    int
	pool       *workerPool

	interaction Interaction
	tick        int64
	unstable    bool
}

// New allocates all fields at resolution res and validates params.
func New(res int, params Params, opts ...Option) (*Solver, error) {
	if res <= 0 {
		return nil, &ConfigurationError{Field: "resolution", Value: res, Reason: "must be positive"}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Solver{res: res, params: params}
	for _, opt := range opts {
		opt(s)
	}

	var err error
	if s.velocity, err = NewPair(res, VelocityChannels); err != nil {
		return nil, fmt.Errorf("allocating velocity: %w", err)
	}
	if s.dye, err = NewPair(res, DyeChannels); err != nil {
		return nil, fmt.Errorf("allocating dye: %w", err)
	}
	if s.pressure, err = NewPair(res, ScalarChannels); err != nil {
		return nil, fmt.Errorf("allocating pressure: %w", err)
	}
	if s.divergence, err = NewGrid(res, ScalarChannels); err != nil {
		return nil, fmt.Errorf("allocating divergence: %w", err)
	}
	s.pool = newWorkerPool(s.workers)
	return s, nil
}

// Res returns the grid side length.
func (s *Solver) Res() int { return s.res }

// Tick returns the number of completed steps.
func (s *Solver) Tick() int64 { return s.tick }

// Params returns the parameters the next step will use.
func (s *Solver) Params() Params { return s.params }

// SetParams validates and installs new parameters; they take effect on the
// next step without any smoothing.
func (s *Solver) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.params = p
	return nil
}

// SetPointer replaces the pointer collaborator.
func (s *Solver) SetPointer(src PointerSource) { s.pointer = src }

// SetBackground replaces the colour collaborator.
func (s *Solver) SetBackground(bg ColorSampler) { s.background = bg }

// Velocity returns the committed 2-channel velocity field.
func (s *Solver) Velocity() *Grid { return s.velocity.Current() }

// Dye returns the committed 4-channel dye field.
func (s *Solver) Dye() *Grid { return s.dye.Current() }

// Pressure returns the pressure solved during the last step.
func (s *Solver) Pressure() *Grid { return s.pressure.Current() }

// Divergence returns the pre-projection divergence of the last step.
func (s *Solver) Divergence() *Grid { return s.divergence }

// Interaction returns the interaction applied during the last step.
func (s *Solver) Interaction() Interaction { return s.interaction }

// Restore overwrites the velocity and dye fields, e.g. from a checkpoint.
// Either argument may be nil to leave that field unchanged.
func (s *Solver) Restore(vel, dye *Grid) error {
	if vel != nil {
		if err := s.velocity.Current().CopyFrom(vel); err != nil {
			return fmt.Errorf("restoring velocity: %w", err)
		}
	}
	if dye != nil {
		if err := s.dye.Current().CopyFrom(dye); err != nil {
			return fmt.Errorf("restoring dye: %w", err)
		}
	}
	return nil
}

// SetTick sets the step counter, e.g. when resuming from a checkpoint.
func (s *Solver) SetTick(tick int64) {
	s.tick = tick
}

// Reset zeroes every field and forgets the last interaction.
func (s *Solver) Reset() {
	s.velocity.Clear()
	s.dye.Clear()
	s.pressure.Clear()
	s.divergence.Clear()
	s.interaction = Interaction{}
	s.tick = 0
	s.unstable = false
}

// Close stops the worker pool and releases every buffer.
func (s *Solver) Close() {
	s.pool.stop()
	s.velocity.Release()
	s.dye.Release()
	s.pressure.Release()
	s.divergence.Release()
}

func (s *Solver) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

// Step runs one full tick in fixed order: interaction refresh, advection of
// velocity and dye, optional viscous diffusion, force injection, then
// projection (divergence, pressure solve, gradient subtraction). Each stage
// reads only committed buffers.
func (s *Solver) Step() StepReport {
	p := s.params

	s.phase(StageInteraction)
	var ptr Pointer
	if s.pointer != nil {
		ptr = s.pointer.Pointer()
	}
	s.interaction = resolveInteraction(ptr, s.background)

	s.phase(StageAdvection)
	s.advect(p)

	if p.ViscosityOn {
		s.phase(StageDiffusion)
		diffuse(s.pool, s.velocity, p.Viscosity, p.DT, p.DiffusionIters)
	}

	s.phase(StageForce)
	applyForce(s.pool, s.velocity.Current(), s.dye.Current(), s.interaction, p.Radius, p.MomentumStrength)

	s.project(p)

	s.tick++
	report := StepReport{Tick: s.tick, Interaction: s.interaction}
	if p.CheckFinite || p.Sanitize {
		s.phase(StageDiagnostics)
		s.checkFinite(p, &report)
	}
	return report
}

// advect transports velocity and dye. Both read the velocity the step began
// with; the two commits happen after both kernels have finished.
func (s *Solver) advect(p Params) {
	vel := s.velocity.Current()
	advect(s.pool, s.velocity.Next(), vel, vel, p.DT)
	advect(s.pool, s.dye.Next(), s.dye.Current(), vel, p.DT)
	s.velocity.Commit()
	s.dye.Commit()
}

func (s *Solver) project(p Params) {
	s.phase(StageDivergence)
	divergence(s.pool, s.divergence, s.velocity.Current())

	s.phase(StagePressure)
	solvePressure(s.pool, s.pressure, s.divergence, p.PressureIters)

	s.phase(StageGradient)
	subtractGradient(s.pool, s.velocity.Current(), s.pressure.Current())
}

func (s *Solver) checkFinite(p Params, report *StepReport) {
	vel, dye := s.velocity.Current(), s.dye.Current()
	if p.Sanitize {
		report.Sanitized = Sanitize(vel) + Sanitize(dye)
		report.NonFinite = report.Sanitized
	} else {
		report.NonFinite = CountNonFinite(vel) + CountNonFinite(dye)
	}

	// Warn on transitions only; a diverged field stays diverged.
	switch {
	case report.NonFinite > 0 && !s.unstable:
		s.unstable = true
		slog.Warn("non-finite values in fluid fields",
			"tick", s.tick,
			"count", report.NonFinite,
			"sanitized", report.Sanitized,
			"dt", p.DT,
			"viscosity", p.Viscosity,
		)
	case report.NonFinite == 0 && s.unstable:
		s.unstable = false
		slog.Info("fluid fields finite again", "tick", s.tick)
	}
}
