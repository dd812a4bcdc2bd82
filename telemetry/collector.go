package telemetry

// Collector accumulates per-step stats within tick windows and produces
// WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float32

	// Current window tracking
	windowStartTick int64

	energies  []float64
	divBefore []float64
	divAfter  []float64
	residuals []float64

	activeSteps int
	maxSpeed    float64
	dyeMass     float64
	nonFinite   int
}

// NewCollector creates a new stats collector.
// windowTicks: steps per window
// dt: seconds per step (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int64(windowTicks),
		dt:                  dt,
		energies:            make([]float64, 0, windowTicks),
		divBefore:           make([]float64, 0, windowTicks),
		divAfter:            make([]float64, 0, windowTicks),
		residuals:           make([]float64, 0, windowTicks),
	}
}

// Record adds one step's stats to the current window.
func (c *Collector) Record(s StepStats) {
	c.energies = append(c.energies, s.KineticEnergy)
	c.divBefore = append(c.divBefore, s.DivBefore)
	c.divAfter = append(c.divAfter, s.DivAfter)
	c.residuals = append(c.residuals, s.PressureResidual)
	if s.PointerActive {
		c.activeSteps++
	}
	if s.MaxSpeed > c.maxSpeed {
		c.maxSpeed = s.MaxSpeed
	}
	c.dyeMass = s.DyeMass
	c.nonFinite += s.NonFinite
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// SetDT updates the step duration used for sim-time reporting.
func (c *Collector) SetDT(dt float32) {
	c.dt = dt
}

// Flush produces a WindowStats and resets the accumulators for the next window.
func (c *Collector) Flush(currentTick int64) WindowStats {
	energy := Summarize(c.energies)
	before := Summarize(c.divBefore)
	after := Summarize(c.divAfter)
	residual := Summarize(c.residuals)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),
		Steps:           len(c.energies),
		ActiveSteps:     c.activeSteps,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		MaxSpeed:   c.maxSpeed,
		DyeMassEnd: c.dyeMass,

		DivBeforeMean: before.Mean,
		DivAfterMean:  after.Mean,
		DivAfterMax:   after.Max,
		ResidualMean:  residual.Mean,
		ResidualMax:   residual.Max,

		NonFinite: c.nonFinite,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.energies = c.energies[:0]
	c.divBefore = c.divBefore[:0]
	c.divAfter = c.divAfter[:0]
	c.residuals = c.residuals[:0]
	c.activeSteps = 0
	c.maxSpeed = 0
	c.nonFinite = 0

	return stats
}

// StartAt begins the current window at tick, discarding anything recorded.
// Used when a run resumes part way.
func (c *Collector) StartAt(tick int64) {
	c.Flush(tick)
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
