package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/fluid"
)

// paramSlider binds one slider to a fluid.Params field.
type paramSlider struct {
	label    string
	min, max float32
	format   string
	get      func(*fluid.Params) float32
	set      func(*fluid.Params, float32)
}

var paramSliders = []paramSlider{
	{
		label: "Time step", min: 0, max: 0.2, format: "%.3f",
		get: func(p *fluid.Params) float32 { return p.DT },
		set: func(p *fluid.Params, v float32) { p.DT = v },
	},
	{
		label: "Radius", min: 1, max: 50, format: "%.1f",
		get: func(p *fluid.Params) float32 { return p.Radius },
		set: func(p *fluid.Params, v float32) { p.Radius = v },
	},
	{
		label: "Momentum", min: 0, max: 10, format: "%.2f",
		get: func(p *fluid.Params) float32 { return p.MomentumStrength },
		set: func(p *fluid.Params, v float32) { p.MomentumStrength = v },
	},
	{
		label: "Viscosity", min: 0, max: 5, format: "%.2f",
		get: func(p *fluid.Params) float32 { return p.Viscosity },
		set: func(p *fluid.Params, v float32) { p.Viscosity = v },
	},
	{
		label: "Diffusion iters", min: 1, max: 200, format: "%.0f",
		get: func(p *fluid.Params) float32 { return float32(p.DiffusionIters) },
		set: func(p *fluid.Params, v float32) { p.DiffusionIters = roundIters(v) },
	},
	{
		label: "Pressure iters", min: 1, max: 400, format: "%.0f",
		get: func(p *fluid.Params) float32 { return float32(p.PressureIters) },
		set: func(p *fluid.Params, v float32) { p.PressureIters = roundIters(v) },
	},
}

func roundIters(v float32) int {
	n := int(math.Round(float64(v)))
	if n < 1 {
		n = 1
	}
	return n
}

// ParamsResult reports what the user did with the panel this frame.
type ParamsResult struct {
	Params  fluid.Params
	Changed bool
	Reset   bool // "Reset fields" pressed
	Save    bool // "Save config" pressed
}

// ParamsPanel edits solver parameters with raygui widgets.
type ParamsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewParamsPanel creates a parameter panel.
func NewParamsPanel(x, y, width int32) *ParamsPanel {
	return &ParamsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *ParamsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

const paramRowHeight = int32(38)

// Height returns the panel height in pixels.
func (p *ParamsPanel) Height() int32 {
	return p.renderer.Theme.Padding*2 + 24 + int32(len(paramSliders))*paramRowHeight + 30 + 24
}

// Contains reports whether a screen point lies on the panel.
func (p *ParamsPanel) Contains(x, y float32) bool {
	return x >= float32(p.x) && x < float32(p.x+p.width) &&
		y >= float32(p.y) && y < float32(p.y+p.Height())
}

// Draw renders the panel for params and returns the edited copy.
func (p *ParamsPanel) Draw(params fluid.Params) ParamsResult {
	r := p.renderer
	padding := r.Theme.Padding

	r.DrawPanel(p.x, p.y, p.width, p.Height())

	res := ParamsResult{Params: params}
	x := float32(p.x + padding)
	y := p.y + padding

	rl.DrawText("Solver Parameters", p.x+padding, y, 16, rl.White)
	y += 24

	sliderWidth := float32(p.width - padding*2 - 60)
	for _, s := range paramSliders {
		cur := s.get(&res.Params)
		rl.DrawText(s.label, p.x+padding, y, r.Theme.FontSize, r.Theme.LabelColor)
		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y + 14), Width: sliderWidth, Height: 16},
			"", "",
			cur, s.min, s.max,
		)
		rl.DrawText(fmt.Sprintf(s.format, cur), int32(x+sliderWidth)+8, y+15, r.Theme.FontSize, r.Theme.ValueColor)
		if next != cur {
			s.set(&res.Params, next)
			res.Changed = true
		}
		y += paramRowHeight
	}

	viscosityOn := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 16, Height: 16}, "Viscosity", res.Params.ViscosityOn)
	if viscosityOn != res.Params.ViscosityOn {
		res.Params.ViscosityOn = viscosityOn
		res.Changed = true
	}
	sanitize := gui.CheckBox(rl.Rectangle{X: x + 120, Y: float32(y), Width: 16, Height: 16}, "Sanitize", res.Params.Sanitize)
	if sanitize != res.Params.Sanitize {
		res.Params.Sanitize = sanitize
		res.Changed = true
	}
	y += 30

	buttonWidth := (float32(p.width) - float32(padding)*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: buttonWidth, Height: 24}, "Reset fields") {
		res.Reset = true
	}
	if gui.Button(rl.Rectangle{X: x + buttonWidth + float32(padding), Y: float32(y), Width: buttonWidth, Height: 24}, "Save config") {
		res.Save = true
	}

	return res
}
