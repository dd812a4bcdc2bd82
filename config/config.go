// Package config provides configuration loading and access for the fluid
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pthm-cable/stirfluid/fluid"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Grid        GridConfig        `yaml:"grid"`
	Solver      SolverConfig      `yaml:"solver"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Record      RecordConfig      `yaml:"record"`
	Stream      StreamConfig      `yaml:"stream"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds the simulation lattice size.
type GridConfig struct {
	Resolution int `yaml:"resolution"` // Cells per side; the grid is square
}

// SolverConfig holds the per-step solver parameters.
type SolverConfig struct {
	DT                  float64 `yaml:"dt"`
	VelocityDiffusion   float64 `yaml:"velocity_diffusion"` // Carried for completeness; no stage reads it
	DensityDiffusion    float64 `yaml:"density_diffusion"`  // Carried for completeness; no stage reads it
	Radius              float64 `yaml:"radius"`             // Force falloff radius in grid cells
	MomentumStrength    float64 `yaml:"momentum_strength"`
	ViscosityOn         bool    `yaml:"viscosity_on"`
	Viscosity           float64 `yaml:"viscosity"`
	DiffusionIterations int     `yaml:"diffusion_iterations"`
	PressureIterations  int     `yaml:"pressure_iterations"`
	Workers             int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// DiagnosticsConfig controls non-finite detection after each step.
type DiagnosticsConfig struct {
	CheckFinite bool `yaml:"check_finite"`
	Sanitize    bool `yaml:"sanitize"` // Replace NaN/Inf with zero
}

// InteractionConfig holds pointer and dye colour sources.
type InteractionConfig struct {
	Background   string   `yaml:"background"`    // Image path; empty uses the gradient
	Gradient     []string `yaml:"gradient"`      // Hex colours, left to right
	Stirrers     int      `yaml:"stirrers"`      // Scripted pointers in headless mode
	StirrerSpeed float64  `yaml:"stirrer_speed"` // Cells per tick
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Steps per aggregated window
	PerfWindow  int `yaml:"perf_window"`  // Steps per perf sample
}

// RecordConfig holds video capture parameters.
type RecordConfig struct {
	FPS         int `yaml:"fps"`
	JPEGQuality int `yaml:"jpeg_quality"`
}

// StreamConfig holds the websocket frame server parameters.
type StreamConfig struct {
	Addr          string `yaml:"addr"`
	FrameInterval int    `yaml:"frame_interval"` // Broadcast every N steps
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32      float32
	ScreenW32 float32
	ScreenH32 float32
	CellW     float32 // Screen pixels per grid cell, horizontally
	CellH     float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.Grid.Resolution <= 0 {
		return nil, &fluid.ConfigurationError{Field: "grid.resolution", Value: cfg.Grid.Resolution, Reason: "must be positive"}
	}
	if err := cfg.SolverParams().Validate(); err != nil {
		return nil, fmt.Errorf("solver section: %w", err)
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Solver.DT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.CellW = c.Derived.ScreenW32 / float32(c.Grid.Resolution)
	c.Derived.CellH = c.Derived.ScreenH32 / float32(c.Grid.Resolution)

	if c.Telemetry.StatsWindow <= 0 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Telemetry.PerfWindow <= 0 {
		c.Telemetry.PerfWindow = 1
	}
	if c.Stream.FrameInterval <= 0 {
		c.Stream.FrameInterval = 1
	}
}

// SolverParams maps the solver and diagnostics sections to fluid.Params.
func (c *Config) SolverParams() fluid.Params {
	return fluid.Params{
		DT:                float32(c.Solver.DT),
		VelocityDiffusion: float32(c.Solver.VelocityDiffusion),
		DensityDiffusion:  float32(c.Solver.DensityDiffusion),
		Radius:            float32(c.Solver.Radius),
		MomentumStrength:  float32(c.Solver.MomentumStrength),
		ViscosityOn:       c.Solver.ViscosityOn,
		Viscosity:         float32(c.Solver.Viscosity),
		DiffusionIters:    c.Solver.DiffusionIterations,
		PressureIters:     c.Solver.PressureIterations,
		CheckFinite:       c.Diagnostics.CheckFinite,
		Sanitize:          c.Diagnostics.Sanitize,
	}
}

// ApplySolverParams writes p back into the solver and diagnostics sections,
// so edits made at runtime are captured by WriteYAML.
func (c *Config) ApplySolverParams(p fluid.Params) {
	c.Solver.DT = float64(p.DT)
	c.Solver.VelocityDiffusion = float64(p.VelocityDiffusion)
	c.Solver.DensityDiffusion = float64(p.DensityDiffusion)
	c.Solver.Radius = float64(p.Radius)
	c.Solver.MomentumStrength = float64(p.MomentumStrength)
	c.Solver.ViscosityOn = p.ViscosityOn
	c.Solver.Viscosity = float64(p.Viscosity)
	c.Solver.DiffusionIterations = p.DiffusionIters
	c.Solver.PressureIterations = p.PressureIters
	c.Diagnostics.CheckFinite = p.CheckFinite
	c.Diagnostics.Sanitize = p.Sanitize
	c.Derived.DT32 = p.DT
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
