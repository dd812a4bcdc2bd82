package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/stirfluid/fluid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Resolution != 256 {
		t.Errorf("resolution = %d, want 256", cfg.Grid.Resolution)
	}

	p := cfg.SolverParams()
	want := fluid.DefaultParams()
	if p != want {
		t.Errorf("SolverParams() = %+v, want %+v", p, want)
	}
	if cfg.Derived.DT32 != p.DT {
		t.Errorf("Derived.DT32 = %v, want %v", cfg.Derived.DT32, p.DT)
	}
	if cfg.Derived.CellW != 4 {
		t.Errorf("Derived.CellW = %v, want 4", cfg.Derived.CellW)
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.yaml")
	user := "grid:\n  resolution: 64\nsolver:\n  viscosity_on: false\n  pressure_iterations: 40\n"
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Resolution != 64 {
		t.Errorf("resolution = %d, want 64", cfg.Grid.Resolution)
	}
	p := cfg.SolverParams()
	if p.ViscosityOn || p.PressureIters != 40 {
		t.Errorf("overrides not applied: %+v", p)
	}
	// Untouched keys keep their defaults.
	if p.DiffusionIters != 100 || p.DT != 0.03 {
		t.Errorf("defaults lost: %+v", p)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  error
	}{
		{"zero resolution", "grid:\n  resolution: 0\n", fluid.ErrConfiguration},
		{"negative dt", "solver:\n  dt: -0.1\n", fluid.ErrConfiguration},
		{"zero iterations", "solver:\n  diffusion_iterations: 0\n", fluid.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, tt.err) {
				t.Errorf("Load error = %v, want %v", err, tt.err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.SolverParams()
	p.Viscosity = 2.5
	cfg.ApplySolverParams(p)

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if again.SolverParams() != p {
		t.Errorf("round trip = %+v, want %+v", again.SolverParams(), p)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init did not panic")
		}
	}()
	Cfg()
}
