package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/stirfluid/fluid"
)

func steppedSolver(t *testing.T, steps int) *fluid.Solver {
	t.Helper()
	ptr := fluid.PointerFunc(func() fluid.Pointer {
		return fluid.Pointer{Active: true, Position: fluid.Vec2{X: 10, Y: 12}, Direction: fluid.Vec2{X: 0.6, Y: 0.8}}
	})
	params := fluid.DefaultParams()
	params.Radius = 4
	s, err := fluid.New(24, params, fluid.WithPointer(ptr), fluid.WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	for i := 0; i < steps; i++ {
		s.Step()
	}
	return s
}

func TestCheckpointSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	src := steppedSolver(t, 3)

	cp := NewCheckpoint(src)
	cp.Bookmark = &Bookmark{Type: BookmarkEnergySurge, Tick: 3, Description: "Test bookmark"}

	path, err := SaveCheckpoint(cp, tmpDir)
	if err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if !strings.HasSuffix(path, "checkpoint_3_energy_surge.json") {
		t.Errorf("path = %s", path)
	}

	loaded, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if loaded.Tick != 3 || loaded.Resolution != 24 || loaded.Params != src.Params() {
		t.Errorf("header mismatch: tick %d res %d params %+v", loaded.Tick, loaded.Resolution, loaded.Params)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkEnergySurge {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}

	// Restoring into a fresh solver reproduces the fields bit for bit.
	dst, err := fluid.New(24, fluid.DefaultParams(), fluid.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()
	if err := loaded.Restore(dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want, got := src.Velocity().Data(), dst.Velocity().Data()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("velocity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if dst.Params() != src.Params() {
		t.Error("params not restored")
	}
	if dst.Tick() != 3 {
		t.Errorf("tick = %d, want 3", dst.Tick())
	}
}

func TestCheckpointRestoreMismatchLeavesSolver(t *testing.T) {
	src := steppedSolver(t, 2)
	cp := NewCheckpoint(src)

	params := fluid.DefaultParams()
	params.Viscosity = 3
	dst, err := fluid.New(16, params, fluid.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()
	dst.Dye().Fill(0.25)

	if err := cp.Restore(dst); !errors.Is(err, fluid.ErrSizeMismatch) {
		t.Fatalf("Restore = %v, want ErrSizeMismatch", err)
	}
	if dst.Params() != params {
		t.Errorf("params changed by a failed restore: %+v", dst.Params())
	}
	if dst.Tick() != 0 {
		t.Errorf("tick changed by a failed restore: %d", dst.Tick())
	}
	for i, v := range dst.Dye().Data() {
		if v != 0.25 {
			t.Fatalf("dye[%d] = %v after a failed restore", i, v)
		}
	}
}

func TestCheckpointRestoreRejectsInvalidParams(t *testing.T) {
	src := steppedSolver(t, 1)
	cp := NewCheckpoint(src)
	cp.Params.PressureIters = 0

	dst, err := fluid.New(24, fluid.DefaultParams(), fluid.WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	if err := cp.Restore(dst); !errors.Is(err, fluid.ErrConfiguration) {
		t.Fatalf("Restore = %v, want ErrConfiguration", err)
	}
	if fluid.MaxAbs(dst.Velocity()) != 0 {
		t.Error("fields restored despite invalid params")
	}
}

func TestCheckpointRejectsBadData(t *testing.T) {
	cp := &Checkpoint{Version: CheckpointVersion, Resolution: 4, Velocity: make([]float32, 3), Dye: make([]float32, 64)}
	if _, _, err := cp.Grids(); !errors.Is(err, fluid.ErrSizeMismatch) {
		t.Errorf("Grids error = %v, want ErrSizeMismatch", err)
	}

	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCheckpoint(path); !errors.Is(err, ErrCheckpointVersion) {
		t.Errorf("LoadCheckpoint error = %v, want ErrCheckpointVersion", err)
	}
}
