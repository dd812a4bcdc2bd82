package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Tick           int64
	Resolution     int
	StepsPerUpdate int
	FPS            int32
	Paused         bool
	View           string
	PointerActive  bool
	Clients        int // connected stream viewers
	Recording      bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Grid: %dx%d | View: %s | Viewers: %d", data.Resolution, data.Resolution, data.View, data.Clients),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.StepsPerUpdate, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	if data.Recording {
		statusText += " | REC"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
	if data.PointerActive {
		rl.DrawText("stirring", 10, 95, 14, rl.SkyBlue)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-stage timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders stage timings in the order given by phases.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, phases []string) {
	x := p.x
	y := p.y

	p.renderer.DrawPanel(x-6, y-6, 250, int32(len(phases))*14+58)

	rl.DrawText("Stage Timings", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Step: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range phases {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// StatsPanel renders the diagnostics of the last step.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewStatsPanel creates a stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders stats and returns the Y below the panel.
func (s *StatsPanel) Draw(stats telemetry.StepStats) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	fields := 0
	for _, sec := range stepStatsSections {
		fields += len(sec.Fields) + 1
	}
	panelHeight := int32(fields)*r.Theme.LineHeight + int32(len(stepStatsSections))*4 + padding*2

	r.DrawPanel(s.x, s.y, s.width, panelHeight)
	y := s.y + padding
	for _, sec := range stepStatsSections {
		y = r.DrawSection(s.x+padding, y, sec, stats, s.width-padding*2)
	}
	return s.y + panelHeight
}

func stepStat(get func(telemetry.StepStats) float64) func(any) float32 {
	return func(data any) float32 {
		st, ok := data.(telemetry.StepStats)
		if !ok {
			return 0
		}
		return float32(get(st))
	}
}

var stepStatsSections = []SectionDescriptor{
	{
		ID:    "flow",
		Title: "Flow",
		Fields: []FieldDescriptor{
			{ID: "energy", Label: "Energy", Widget: WidgetText, Format: "%.4g",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.KineticEnergy })},
			{ID: "max_speed", Label: "Max speed", Widget: WidgetText, Format: "%.3f",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.MaxSpeed })},
			{ID: "dye_mass", Label: "Dye mass", Widget: WidgetText, Format: "%.4g",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.DyeMass })},
		},
	},
	{
		ID:    "projection",
		Title: "Projection",
		Fields: []FieldDescriptor{
			{ID: "div_before", Label: "|div| in", Widget: WidgetText, Format: "%.3e",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.DivBefore })},
			{ID: "div_after", Label: "|div| out", Widget: WidgetText, Format: "%.3e",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.DivAfter })},
			{ID: "residual", Label: "Residual", Widget: WidgetText, Format: "%.3e",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return s.PressureResidual })},
			{ID: "reduction", Label: "out/in", Widget: WidgetDecadeBar, Format: "%.1e",
				Range: FieldRange{Max: 4},
				Getter: stepStat(func(s telemetry.StepStats) float64 {
					if s.DivBefore <= 0 {
						return 0
					}
					return s.DivAfter / s.DivBefore
				})},
			{ID: "non_finite", Label: "Non-finite", Widget: WidgetText, Format: "%.0f",
				Getter: stepStat(func(s telemetry.StepStats) float64 { return float64(s.NonFinite) })},
		},
	},
}
