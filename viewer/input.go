package viewer

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/ui"
)

const zoomStep = 1.15

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < maxStepsPerUpdate {
		v.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		v.field.CycleView()
	}
	if rl.IsKeyPressed(rl.KeyA) {
		v.app.SetAutoStir(!v.app.AutoStir())
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.reset()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if path, err := v.app.SaveCheckpoint(nil); err != nil {
			slog.Error("failed to save checkpoint", "error", err)
		} else {
			slog.Info("checkpoint saved", "path", path)
		}
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		v.saveScreenshot()
	}

	// Camera: wheel zooms around the cursor, middle drag pans
	cam := v.field.Camera()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		if !v.overPanel(m.X, m.Y) {
			cam.ZoomAt(float32(math.Pow(zoomStep, float64(wheel))), m.X, m.Y)
		}
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		cam.Pan(-d.X, -d.Y)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}

	// Overlay toggles
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, on, ok := v.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", on)
		}
	}

	// Cell inspection
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		m := rl.GetMousePosition()
		p := v.field.ScreenToGrid(m.X, m.Y)
		res := float32(v.app.Solver().Res())
		if p.X >= 0 && p.X < res && p.Y >= 0 && p.Y < res {
			x, y := int(p.X), int(p.Y)
			v.inspector.Select(x, y)
			v.overlays.SetEnabled(ui.OverlayInspect, true)
		}
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW = w
	v.screenH = h
	v.field.Resize(w, h)
	v.layout()
}
