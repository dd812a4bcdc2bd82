// Package telemetry provides solver health tracking, performance timing,
// bookmarks, CSV output and checkpoints.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/pthm-cable/stirfluid/fluid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StepStats holds the diagnostics measured after a single step.
type StepStats struct {
	Tick             int64   `csv:"tick"`
	PointerActive    bool    `csv:"pointer_active"`
	KineticEnergy    float64 `csv:"kinetic_energy"`
	MaxSpeed         float64 `csv:"max_speed"`
	DyeMass          float64 `csv:"dye_mass"`
	DivBefore        float64 `csv:"div_before"`        // max |div| handed to the pressure solve
	DivAfter         float64 `csv:"div_after"`         // max |div| of the projected velocity
	PressureResidual float64 `csv:"pressure_residual"` // max |lap(p) - div| after the last iteration
	NonFinite        int     `csv:"non_finite"`
}

// MeasureStep collects StepStats from the solver's committed fields. It must
// run on the stepping goroutine before the next Step.
func MeasureStep(s *fluid.Solver, r fluid.StepReport) StepStats {
	vel := s.Velocity()
	return StepStats{
		Tick:             r.Tick,
		PointerActive:    r.Interaction.Active,
		KineticEnergy:    fluid.KineticEnergy(vel),
		MaxSpeed:         float64(fluid.MaxSpeed(vel)),
		DyeMass:          fluid.DyeMass(s.Dye()),
		DivBefore:        float64(fluid.MaxAbs(s.Divergence())),
		DivAfter:         float64(fluid.MaxAbsDivergence(vel)),
		PressureResidual: fluid.PressureResidual(s.Pressure(), s.Divergence()),
		NonFinite:        r.NonFinite,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", s.Tick),
		slog.Bool("pointer_active", s.PointerActive),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("dye_mass", s.DyeMass),
		slog.Float64("div_before", s.DivBefore),
		slog.Float64("div_after", s.DivAfter),
		slog.Float64("pressure_residual", s.PressureResidual),
		slog.Int("non_finite", s.NonFinite),
	)
}

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Steps           int     `csv:"steps"`
	ActiveSteps     int     `csv:"active_steps"` // steps with the pointer held

	// Kinetic energy across the window
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	MaxSpeed   float64 `csv:"max_speed"`
	DyeMassEnd float64 `csv:"dye_mass_end"`

	// Projection quality
	DivBeforeMean float64 `csv:"div_before_mean"`
	DivAfterMean  float64 `csv:"div_after_mean"`
	DivAfterMax   float64 `csv:"div_after_max"`
	ResidualMean  float64 `csv:"residual_mean"`
	ResidualMax   float64 `csv:"residual_max"`

	NonFinite int `csv:"non_finite"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary is the mean, population standard deviation and spread of a sample.
type Summary struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// Summarize computes a Summary of values. An empty slice yields zeros.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0 // rounding can push a zero variance below zero
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  floats.Max(sorted),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("steps", s.Steps),
		slog.Int("active_steps", s.ActiveSteps),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("dye_mass_end", s.DyeMassEnd),
		slog.Float64("div_before_mean", s.DivBeforeMean),
		slog.Float64("div_after_mean", s.DivAfterMean),
		slog.Float64("div_after_max", s.DivAfterMax),
		slog.Float64("residual_mean", s.ResidualMean),
		slog.Float64("residual_max", s.ResidualMax),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"active_steps", s.ActiveSteps,
		"energy_mean", s.EnergyMean,
		"energy_p90", s.EnergyP90,
		"max_speed", s.MaxSpeed,
		"dye_mass_end", s.DyeMassEnd,
		"div_before_mean", s.DivBeforeMean,
		"div_after_mean", s.DivAfterMean,
		"residual_max", s.ResidualMax,
		"non_finite", s.NonFinite,
	)
}
