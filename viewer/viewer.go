// Package viewer runs an App inside a raylib window: mouse stirring, field
// display, overlays and the live parameter panel.
package viewer

import (
	"fmt"
	"log/slog"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/app"
	"github.com/pthm-cable/stirfluid/fluid"
	"github.com/pthm-cable/stirfluid/record"
	"github.com/pthm-cable/stirfluid/renderer"
	"github.com/pthm-cable/stirfluid/telemetry"
	"github.com/pthm-cable/stirfluid/ui"
)

const (
	maxStepsPerUpdate = 10
	paramsWidth       = 300
	sidePanelWidth    = 240
)

// Options configures a Viewer.
type Options struct {
	StepsPerUpdate int
	ConfigOut      string // where "Save config" writes
	ScreenshotDir  string
}

// Viewer owns the window-side state around an App.
type Viewer struct {
	app  *app.App
	opts Options

	field   *renderer.FieldRenderer
	tracker fluid.PointerTracker

	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	params    *ui.ParamsPanel
	stats     *ui.StatsPanel
	perf      *ui.PerfPanel
	inspector *ui.Inspector

	paused         bool
	stepsPerUpdate int
	screenW        float32
	screenH        float32
}

var keyBindings = []ui.KeyBinding{
	{Key: "LMB", Action: "stir"},
	{Key: "RMB", Action: "inspect cell"},
	{Key: "Wheel", Action: "zoom"},
	{Key: "MMB", Action: "pan"},
	{Key: "Home", Action: "reset view"},
	{Key: "Space", Action: "pause"},
	{Key: "V", Action: "cycle view"},
	{Key: "A", Action: "auto-stir"},
	{Key: "R", Action: "reset fields"},
	{Key: "C", Action: "checkpoint"},
	{Key: "F12", Action: "screenshot"},
	{Key: "< >", Action: "steps per frame"},
	{Key: "Tab", Action: "this panel"},
}

// New creates a viewer for a. The raylib window must already exist.
func New(a *app.App, opts Options) *Viewer {
	cfg := a.Config()
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if opts.StepsPerUpdate < 1 {
		opts.StepsPerUpdate = 1
	}
	if opts.ConfigOut == "" {
		opts.ConfigOut = "config.yaml"
	}

	v := &Viewer{
		app:            a,
		opts:           opts,
		field:          renderer.NewFieldRenderer(cfg.Grid.Resolution, int32(w), int32(h), record.DefaultPalette(2)),
		overlays:       ui.NewOverlayRegistry(),
		hud:            ui.NewHUD(),
		controls:       ui.NewControlsPanel(10, 120, sidePanelWidth),
		params:         ui.NewParamsPanel(int32(w)-paramsWidth-10, 10, paramsWidth),
		stats:          ui.NewStatsPanel(10, 0, sidePanelWidth),
		perf:           ui.NewPerfPanel(0, 0),
		inspector:      ui.NewInspector(0, 0, sidePanelWidth),
		stepsPerUpdate: opts.StepsPerUpdate,
		screenW:        w,
		screenH:        h,
	}
	v.overlays.SetEnabled(ui.OverlayParams, true)
	v.overlays.SetEnabled(ui.OverlayPointer, true)
	v.field.Init()
	v.layout()
	return v
}

// layout positions the panels for the current screen size.
func (v *Viewer) layout() {
	v.params.SetPosition(int32(v.screenW)-paramsWidth-10, 10)
	v.stats.SetPosition(int32(v.screenW)-sidePanelWidth-10, 10+v.params.Height()+10)
	v.perf.SetPosition(16, int32(v.screenH)-200)
	v.inspector.SetPosition(10, int32(v.screenH)-250)
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()
	v.app.Perf().RecordFrame()

	if v.paused {
		v.tracker.Reset()
		v.app.LocalPointer().Set(fluid.Pointer{})
	} else {
		v.app.LocalPointer().Set(v.samplePointer())
		for i := 0; i < v.stepsPerUpdate; i++ {
			v.app.Tick()
		}
	}

	v.field.Update(v.app.Solver())
}

// samplePointer turns the mouse state into this frame's pointer.
func (v *Viewer) samplePointer() fluid.Pointer {
	m := rl.GetMousePosition()
	down := rl.IsMouseButtonDown(rl.MouseButtonLeft) && !v.overPanel(m.X, m.Y)
	return v.tracker.Update(down, v.field.ScreenToGrid(m.X, m.Y))
}

func (v *Viewer) overPanel(x, y float32) bool {
	return v.overlays.IsEnabled(ui.OverlayParams) && v.params.Contains(x, y)
}

// Draw renders the field, overlays and panels.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.field.Draw()

	if v.overlays.IsEnabled(ui.OverlayStirrers) {
		v.drawStirrers()
	}
	if v.overlays.IsEnabled(ui.OverlayPointer) {
		v.drawPointer()
	}

	s := v.app.Solver()
	v.hud.Draw(ui.HUDData{
		Title:          "Stir Fluid",
		Tick:           s.Tick(),
		Resolution:     s.Res(),
		StepsPerUpdate: v.stepsPerUpdate,
		FPS:            rl.GetFPS(),
		Paused:         v.paused,
		View:           v.field.View().String(),
		PointerActive:  s.Interaction().Active,
		Clients:        v.app.Clients(),
		Recording:      v.app.Recording(),
	})
	v.controls.Draw(v.overlays, keyBindings)

	if v.overlays.IsEnabled(ui.OverlayParams) {
		v.applyParams(v.params.Draw(s.Params()))
	}
	if v.overlays.IsEnabled(ui.OverlayStats) {
		v.stats.Draw(v.app.LastStep())
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.Draw(v.app.Perf().Stats(), telemetry.Phases)
	}
	if v.overlays.IsEnabled(ui.OverlayInspect) {
		if x, y, ok := v.inspector.Selection(); ok {
			v.inspector.Draw(ui.ReadCell(s, x, y))
		}
	}

	v.hud.DrawControls(int32(v.screenW), int32(v.screenH), "[Tab] controls  [Space] pause  [V] view  [P] parameters")

	rl.EndDrawing()
}

func (v *Viewer) applyParams(res ui.ParamsResult) {
	if res.Changed {
		if err := v.app.SetParams(res.Params); err != nil {
			slog.Warn("parameters rejected", "error", err)
		}
	}
	if res.Reset {
		v.reset()
	}
	if res.Save {
		if err := v.app.SaveConfig(v.opts.ConfigOut); err != nil {
			slog.Error("failed to save config", "error", err)
		} else {
			slog.Info("config saved", "path", v.opts.ConfigOut)
		}
	}
}

func (v *Viewer) reset() {
	v.tracker.Reset()
	v.app.Reset()
}

// drawPointer marks the active interaction: the force radius and direction.
func (v *Viewer) drawPointer() {
	s := v.app.Solver()
	in := s.Interaction()
	if !in.Active {
		return
	}
	radius := s.Params().Radius * v.field.CellSize()
	c := v.field.GridToScreen(in.Position)
	rl.DrawCircleLines(int32(c.X), int32(c.Y), radius, rl.Fade(rl.White, 0.6))
	end := rl.Vector2{X: c.X + in.Direction.X*radius*2, Y: c.Y + in.Direction.Y*radius*2}
	rl.DrawLineEx(c, end, 2, rl.Fade(rl.White, 0.8))
}

func (v *Viewer) drawStirrers() {
	st := v.app.Stirrers()
	if st == nil {
		return
	}
	color := rl.Gray
	if v.app.AutoStir() {
		color = rl.Orange
	}
	cam := v.field.Camera()
	for _, p := range st.Positions() {
		if !cam.IsVisible(p.X, p.Y, 1) {
			continue
		}
		c := v.field.GridToScreen(p)
		rl.DrawCircleV(c, 5, color)
	}
}

func (v *Viewer) saveScreenshot() {
	img := v.field.Image()
	if img == nil {
		return
	}
	path := filepath.Join(v.opts.ScreenshotDir, fmt.Sprintf("%s_%d.png", v.field.View(), v.app.TickCount()))
	if err := record.SavePNG(path, img); err != nil {
		slog.Error("failed to save screenshot", "error", err)
		return
	}
	slog.Info("screenshot saved", "path", path)
}

// Tick returns the current simulation tick.
func (v *Viewer) Tick() int64 {
	return v.app.TickCount()
}

// Unload releases GPU resources.
func (v *Viewer) Unload() {
	v.field.Unload()
}
