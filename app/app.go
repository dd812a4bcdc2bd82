// Package app wires the solver to its collaborators: pointer sources, dye
// colours, telemetry, checkpoints, video capture and the stream hub. It has
// no graphics dependency; the viewer package drives it from a window.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/pthm-cable/stirfluid/background"
	"github.com/pthm-cable/stirfluid/config"
	"github.com/pthm-cable/stirfluid/fluid"
	"github.com/pthm-cable/stirfluid/record"
	"github.com/pthm-cable/stirfluid/scene"
	"github.com/pthm-cable/stirfluid/stream"
	"github.com/pthm-cable/stirfluid/telemetry"
)

// stirDwell is how many steps each scripted stirrer holds the pointer.
const stirDwell = 240

// Options configures an App.
type Options struct {
	Seed          int64
	LogStats      bool
	OutputDir     string // CSV logs and config snapshot; empty disables
	PerStepCSV    bool   // also write steps.csv
	CheckpointDir string // checkpoints on bookmarks and on request
	ResumeFrom    string // checkpoint file to restore before the first step
	RecordPath    string // MJPEG output; empty disables
	Stream        bool   // serve frames and accept pointer input over websocket
	AutoStir      bool   // drive the scripted stirrers
}

// App owns the solver and everything that observes or feeds it. All methods
// must be called from one goroutine.
type App struct {
	cfg  *config.Config
	opts Options

	solver *fluid.Solver
	local  *LatchedPointer
	hub    *stream.Hub
	stir   *scene.Stirrers
	auto   bool

	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	recorder         *record.Recorder

	frameImg      *image.RGBA
	last          telemetry.StepStats
	lastWindow    telemetry.WindowStats
	lastBookmarks []telemetry.Bookmark
}

// New builds an App from cfg. The caller must Close it.
func New(cfg *config.Config, opts Options) (*App, error) {
	res := cfg.Grid.Resolution
	bg, err := background.New(cfg.Interaction.Background, cfg.Interaction.Gradient, res)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}

	a := &App{
		cfg:              cfg,
		opts:             opts,
		local:            &LatchedPointer{},
		auto:             opts.AutoStir,
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
	}
	if cfg.Interaction.Stirrers > 0 {
		a.stir = scene.NewStirrers(cfg.Interaction.Stirrers, res, float32(cfg.Interaction.StirrerSpeed), stirDwell, opts.Seed)
	}
	if opts.Stream {
		a.hub = stream.NewHub(res)
	}

	sources := []fluid.PointerSource{a.local}
	if a.hub != nil {
		sources = append(sources, a.hub)
	}
	if a.stir != nil {
		sources = append(sources, fluid.PointerFunc(a.stirPointer))
	}

	a.solver, err = fluid.New(res, cfg.SolverParams(),
		fluid.WithPointer(FirstActive(sources...)),
		fluid.WithBackground(bg),
		fluid.WithWorkers(cfg.Solver.Workers),
		fluid.WithPhaseTimer(a.perfCollector),
	)
	if err != nil {
		return nil, err
	}

	if opts.ResumeFrom != "" {
		cp, err := telemetry.LoadCheckpoint(opts.ResumeFrom)
		if err != nil {
			a.solver.Close()
			return nil, err
		}
		if err := cp.Restore(a.solver); err != nil {
			a.solver.Close()
			return nil, fmt.Errorf("restoring %s: %w", opts.ResumeFrom, err)
		}
		cfg.ApplySolverParams(cp.Params)
		a.collector.SetDT(cp.Params.DT)
		a.collector.StartAt(cp.Tick)
		slog.Info("checkpoint restored", "path", opts.ResumeFrom, "tick", cp.Tick)
	}

	if a.outputManager, err = telemetry.NewOutputManager(opts.OutputDir, opts.PerStepCSV); err != nil {
		a.solver.Close()
		return nil, err
	}
	if err := a.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	if opts.RecordPath != "" {
		a.recorder, err = record.NewRecorder(opts.RecordPath, res, cfg.Record.FPS, cfg.Record.JPEGQuality)
		if err != nil {
			a.outputManager.Close()
			a.solver.Close()
			return nil, err
		}
	}
	return a, nil
}

// stirPointer advances the stirrers every step so they keep moving while
// disabled, and reports their pointer only when auto-stir is on.
func (a *App) stirPointer() fluid.Pointer {
	p := a.stir.Pointer()
	if !a.auto {
		return fluid.Pointer{}
	}
	return p
}

// Serve runs the stream server until ctx is cancelled. It returns
// immediately when streaming is disabled.
func (a *App) Serve(ctx context.Context) error {
	if a.hub == nil {
		return nil
	}
	return a.hub.ListenAndServe(ctx, a.cfg.Stream.Addr)
}

// Tick advances the simulation by one step and runs every per-step
// observer on the fresh fields.
func (a *App) Tick() telemetry.StepStats {
	if a.hub != nil && a.hub.TakeReset() {
		a.Reset()
	}

	a.perfCollector.StartTick()
	report := a.solver.Step()

	a.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	a.last = telemetry.MeasureStep(a.solver, report)
	a.collector.Record(a.last)
	if err := a.outputManager.WriteStep(a.last); err != nil {
		slog.Error("failed to write step", "error", err)
	}

	a.perfCollector.StartPhase(telemetry.PhaseEncode)
	a.encodeFrames(report.Tick)
	a.perfCollector.EndTick()

	a.flushTelemetry()
	return a.last
}

// encodeFrames feeds the recorder and stream hub from the committed dye.
func (a *App) encodeFrames(tick int64) {
	if a.recorder != nil {
		if err := a.recorder.AddFrame(a.solver.Dye()); err != nil {
			slog.Error("failed to record frame", "tick", tick, "error", err)
		}
	}
	if a.hub == nil || a.hub.Clients() == 0 {
		return
	}
	if tick%int64(a.cfg.Stream.FrameInterval) != 0 {
		return
	}
	a.frameImg = record.DyeImage(a.solver.Dye(), a.frameImg)
	var buf bytes.Buffer
	if err := record.EncodeJPEG(&buf, a.frameImg, a.cfg.Record.JPEGQuality); err != nil {
		slog.Error("failed to encode stream frame", "tick", tick, "error", err)
		return
	}
	a.hub.Publish(buf.Bytes())
}

// SetParams validates p and applies it from the next step on.
func (a *App) SetParams(p fluid.Params) error {
	if err := a.solver.SetParams(p); err != nil {
		return err
	}
	a.cfg.ApplySolverParams(p)
	a.collector.SetDT(p.DT)
	return nil
}

// Reset clears every field and restarts the telemetry windows.
func (a *App) Reset() {
	a.solver.Reset()
	a.local.Set(fluid.Pointer{})
	a.collector = telemetry.NewCollector(a.cfg.Telemetry.StatsWindow, a.solver.Params().DT)
	a.last = telemetry.StepStats{}
	slog.Info("fields reset")
}

// SaveCheckpoint writes the committed state to the checkpoint directory.
func (a *App) SaveCheckpoint(bm *telemetry.Bookmark) (string, error) {
	if a.opts.CheckpointDir == "" {
		return "", errors.New("no checkpoint directory configured")
	}
	cp := telemetry.NewCheckpoint(a.solver)
	cp.Bookmark = bm
	return telemetry.SaveCheckpoint(cp, a.opts.CheckpointDir)
}

// SaveConfig writes the live configuration to path.
func (a *App) SaveConfig(path string) error {
	return a.cfg.WriteYAML(path)
}

// Solver returns the solver for read access between ticks.
func (a *App) Solver() *fluid.Solver { return a.solver }

// Config returns the live configuration.
func (a *App) Config() *config.Config { return a.cfg }

// LocalPointer returns the source the viewer writes mouse input to.
func (a *App) LocalPointer() *LatchedPointer { return a.local }

// Stirrers returns the scripted stirrers, or nil.
func (a *App) Stirrers() *scene.Stirrers { return a.stir }

// AutoStir reports whether the stirrers drive the pointer.
func (a *App) AutoStir() bool { return a.auto }

// SetAutoStir turns the scripted stirrers on or off.
func (a *App) SetAutoStir(on bool) { a.auto = on && a.stir != nil }

// Perf returns the stage timing collector.
func (a *App) Perf() *telemetry.PerfCollector { return a.perfCollector }

// LastStep returns the stats of the most recent step.
func (a *App) LastStep() telemetry.StepStats { return a.last }

// LastWindow returns the most recently flushed window.
func (a *App) LastWindow() telemetry.WindowStats { return a.lastWindow }

// Clients returns the number of connected stream viewers.
func (a *App) Clients() int {
	if a.hub == nil {
		return 0
	}
	return a.hub.Clients()
}

// Recording reports whether video capture is on.
func (a *App) Recording() bool { return a.recorder != nil }

// TickCount returns the solver's step count.
func (a *App) TickCount() int64 { return a.solver.Tick() }

// Close flushes output and releases the solver.
func (a *App) Close() error {
	var errs []error
	if a.recorder != nil {
		errs = append(errs, a.recorder.Close())
	}
	errs = append(errs, a.outputManager.Close())
	a.solver.Close()
	return errors.Join(errs...)
}
