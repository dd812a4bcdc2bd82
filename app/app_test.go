package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/stirfluid/config"
	"github.com/pthm-cable/stirfluid/fluid"
	"github.com/pthm-cable/stirfluid/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Grid.Resolution = 32
	cfg.Solver.Radius = 3
	cfg.Solver.DiffusionIterations = 10
	cfg.Solver.PressureIterations = 20
	cfg.Solver.Workers = 1
	cfg.Telemetry.StatsWindow = 5
	cfg.Telemetry.PerfWindow = 5
	cfg.Interaction.Stirrers = 2
	cfg.Interaction.StirrerSpeed = 1
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts Options) *App {
	t.Helper()
	a, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

type countingSource struct {
	p     fluid.Pointer
	calls int
}

func (c *countingSource) Pointer() fluid.Pointer {
	c.calls++
	return c.p
}

func TestFirstActive(t *testing.T) {
	on := func(x float32) fluid.Pointer {
		return fluid.Pointer{Active: true, Position: fluid.Vec2{X: x}}
	}
	tests := []struct {
		name    string
		sources []fluid.Pointer
		want    fluid.Pointer
	}{
		{"none", nil, fluid.Pointer{}},
		{"all idle", []fluid.Pointer{{}, {}}, fluid.Pointer{}},
		{"first wins", []fluid.Pointer{on(1), on(2)}, on(1)},
		{"skips idle", []fluid.Pointer{{}, on(2), on(3)}, on(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var srcs []fluid.PointerSource
			var counters []*countingSource
			for _, p := range tt.sources {
				c := &countingSource{p: p}
				counters = append(counters, c)
				srcs = append(srcs, c)
			}
			got := FirstActive(srcs...).Pointer()
			if got != tt.want {
				t.Errorf("Pointer() = %+v, want %+v", got, tt.want)
			}
			for i, c := range counters {
				if c.calls != 1 {
					t.Errorf("source %d polled %d times, want 1", i, c.calls)
				}
			}
		})
	}
}

func TestLatchedPointer(t *testing.T) {
	var l LatchedPointer
	if l.Pointer().Active {
		t.Fatal("zero LatchedPointer is active")
	}
	p := fluid.Pointer{Active: true, Position: fluid.Vec2{X: 3, Y: 4}, Direction: fluid.Vec2{X: 1}}
	l.Set(p)
	for i := 0; i < 3; i++ {
		if got := l.Pointer(); got != p {
			t.Fatalf("read %d = %+v, want %+v", i, got, p)
		}
	}
}

func TestApp_TickWithStirrers(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{Seed: 7, AutoStir: true})

	var st telemetry.StepStats
	for i := 0; i < 20; i++ {
		st = a.Tick()
	}

	if st.Tick != 20 || a.TickCount() != 20 {
		t.Errorf("tick = %d (solver %d), want 20", st.Tick, a.TickCount())
	}
	if !st.PointerActive {
		t.Error("stirrers should hold the pointer during their first dwell")
	}
	if st.KineticEnergy <= 0 || st.DyeMass <= 0 {
		t.Errorf("stirring injected nothing: %+v", st)
	}
	if st.NonFinite != 0 {
		t.Errorf("non-finite values: %d", st.NonFinite)
	}

	w := a.LastWindow()
	if w.WindowEndTick != 20 || w.Steps != 5 {
		t.Errorf("last window = end %d, %d steps; want end 20, 5 steps", w.WindowEndTick, w.Steps)
	}
	if w.ActiveSteps != 5 {
		t.Errorf("active steps = %d, want 5", w.ActiveSteps)
	}
}

func TestApp_AutoStirOff(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{Seed: 7})

	for i := 0; i < 10; i++ {
		if st := a.Tick(); st.PointerActive || st.KineticEnergy != 0 {
			t.Fatalf("tick %d: idle app changed the fields: %+v", i+1, st)
		}
	}

	// The stirrers kept moving while disabled.
	if got := a.Stirrers().Tick(); got != 10 {
		t.Errorf("stirrer ticks = %d, want 10", got)
	}
}

func TestApp_LocalPointerTakesPriority(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{Seed: 7, AutoStir: true})

	local := fluid.Pointer{Active: true, Position: fluid.Vec2{X: 16, Y: 16}, Direction: fluid.Vec2{X: 1}}
	a.LocalPointer().Set(local)
	a.Tick()

	got := a.Solver().Interaction()
	if got.Position != local.Position || got.Direction != local.Direction {
		t.Errorf("interaction = %+v, want the local pointer %+v", got, local)
	}
}

func TestApp_Reset(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{Seed: 3, AutoStir: true})
	for i := 0; i < 7; i++ {
		a.Tick()
	}

	a.Reset()
	if a.TickCount() != 0 {
		t.Errorf("tick after reset = %d, want 0", a.TickCount())
	}
	for i, v := range a.Solver().Dye().Data() {
		if v != 0 {
			t.Fatalf("dye[%d] = %v after reset", i, v)
		}
	}

	// Windows restart from the new tick zero.
	for i := 0; i < 5; i++ {
		a.Tick()
	}
	if w := a.LastWindow(); w.WindowEndTick != 5 {
		t.Errorf("first window after reset ends at %d, want 5", w.WindowEndTick)
	}
}

func TestApp_SetParams(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg, Options{})

	p := a.Solver().Params()
	p.Viscosity = 2
	p.PressureIters = 7
	if err := a.SetParams(p); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if cfg.Solver.Viscosity != 2 || cfg.Solver.PressureIterations != 7 {
		t.Errorf("config not updated: %+v", cfg.Solver)
	}

	p.PressureIters = 0
	err := a.SetParams(p)
	if !errors.Is(err, fluid.ErrConfiguration) {
		t.Fatalf("SetParams(pressure_iterations=0) = %v, want ErrConfiguration", err)
	}
	if got := a.Solver().Params().PressureIters; got != 7 {
		t.Errorf("rejected params applied: pressure iters = %d", got)
	}
}

func TestApp_OutputFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := New(testConfig(t), Options{Seed: 1, AutoStir: true, OutputDir: dir, PerStepCSV: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 10; i++ {
		a.Tick()
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"config.yaml", "steps.csv", "windows.csv", "perf.csv", "bookmarks.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "windows.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var windows []telemetry.WindowStats
	if err := gocsv.UnmarshalFile(f, &windows); err != nil {
		t.Fatalf("parsing windows.csv: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("windows.csv has %d rows, want 2", len(windows))
	}
	if windows[1].WindowEndTick != 10 || windows[1].Steps != 5 {
		t.Errorf("second window = %+v", windows[1])
	}
}

func TestApp_CheckpointResume(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, testConfig(t), Options{Seed: 5, AutoStir: true, CheckpointDir: dir})
	for i := 0; i < 10; i++ {
		a.Tick()
	}
	path, err := a.SaveCheckpoint(nil)
	if err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	if filepath.Base(path) != "checkpoint_10.json" {
		t.Errorf("checkpoint path = %s", path)
	}

	b := newTestApp(t, testConfig(t), Options{ResumeFrom: path, CheckpointDir: dir})
	want := a.Solver().Dye().Data()
	got := b.Solver().Dye().Data()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("restored dye[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// The resumed run continues the tick count.
	if b.TickCount() != 10 {
		t.Fatalf("resumed tick = %d, want 10", b.TickCount())
	}
	for i := 0; i < 5; i++ {
		b.Tick()
	}
	if w := b.LastWindow(); w.WindowStartTick != 10 || w.WindowEndTick != 15 || w.Steps != 5 {
		t.Errorf("first resumed window = [%d,%d] %d steps, want [10,15] 5 steps", w.WindowStartTick, w.WindowEndTick, w.Steps)
	}
	next, err := b.SaveCheckpoint(nil)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(next) != "checkpoint_15.json" {
		t.Errorf("resumed checkpoint path = %s, want checkpoint_15.json", next)
	}
}

func TestApp_CheckpointWithoutDir(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{})
	if _, err := a.SaveCheckpoint(nil); err == nil {
		t.Error("SaveCheckpoint without a directory should fail")
	}
}

func TestApp_ResumeWrongResolution(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, testConfig(t), Options{CheckpointDir: dir})
	a.Tick()
	path, err := a.SaveCheckpoint(nil)
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.Grid.Resolution = 16
	if _, err := New(cfg, Options{ResumeFrom: path}); !errors.Is(err, fluid.ErrSizeMismatch) {
		t.Errorf("New with mismatched checkpoint = %v, want ErrSizeMismatch", err)
	}
}

func TestApp_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.avi")
	a, err := New(testConfig(t), Options{Seed: 2, AutoStir: true, RecordPath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 4; i++ {
		a.Tick()
	}
	if !a.Recording() {
		t.Error("Recording() = false")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("video file is empty")
	}
}

func TestApp_RunHeadless(t *testing.T) {
	a := newTestApp(t, testConfig(t), Options{Seed: 9, AutoStir: true})

	if err := a.RunHeadless(context.Background(), 12, 5); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if a.TickCount() != 12 {
		t.Errorf("ticks = %d, want 12", a.TickCount())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.RunHeadless(ctx, 0, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("RunHeadless(cancelled) = %v, want context.Canceled", err)
	}
	if a.TickCount() != 12 {
		t.Errorf("cancelled run stepped: ticks = %d", a.TickCount())
	}
}

func TestApp_InvalidBackground(t *testing.T) {
	cfg := testConfig(t)
	cfg.Interaction.Gradient = []string{"not-a-colour"}
	if _, err := New(cfg, Options{}); !errors.Is(err, fluid.ErrConfiguration) {
		t.Errorf("New with bad gradient = %v, want ErrConfiguration", err)
	}
}
