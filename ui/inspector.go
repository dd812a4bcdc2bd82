package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/fluid"
)

// CellSample holds the field values of one grid cell.
type CellSample struct {
	X, Y       int
	Velocity   fluid.Vec2
	Dye        [4]float32
	Pressure   float32
	Divergence float32
}

// ReadCell copies the committed field values at cell (x, y). It must run on
// the stepping goroutine.
func ReadCell(s *fluid.Solver, x, y int) CellSample {
	v := s.Velocity().Cell(x, y)
	d := s.Dye().Cell(x, y)
	return CellSample{
		X:          x,
		Y:          y,
		Velocity:   fluid.Vec2{X: v[0], Y: v[1]},
		Dye:        [4]float32{d[0], d[1], d[2], d[3]},
		Pressure:   s.Pressure().At(x, y, 0),
		Divergence: s.Divergence().At(x, y, 0),
	}
}

// Inspector renders the cell inspector panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32

	selected bool
	cellX    int
	cellY    int
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Select pins the inspector to a grid cell.
func (ins *Inspector) Select(x, y int) {
	ins.selected = true
	ins.cellX = x
	ins.cellY = y
}

// Selection returns the pinned cell, if any.
func (ins *Inspector) Selection() (x, y int, ok bool) {
	return ins.cellX, ins.cellY, ins.selected
}

// Clear drops the selection.
func (ins *Inspector) Clear() {
	ins.selected = false
}

// Draw renders the inspector panel.
func (ins *Inspector) Draw(data CellSample) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	panelHeight := int32(9)*r.Theme.LineHeight + int32(len(cellSections))*4 + padding*2 + 20

	r.DrawPanel(ins.x, ins.y, ins.width, panelHeight)

	y := ins.y + padding
	rl.DrawText(fmt.Sprintf("Cell (%d, %d)", data.X, data.Y), ins.x+padding, y, 16, rl.White)
	y += 20

	for _, sec := range cellSections {
		y = r.DrawSection(ins.x+padding, y, sec, data, ins.width-padding*2)
	}
	return ins.y + panelHeight
}

func cellStat(get func(CellSample) float32) func(any) float32 {
	return func(data any) float32 {
		p, ok := data.(CellSample)
		if !ok {
			return 0
		}
		return get(p)
	}
}

var cellSections = []SectionDescriptor{
	{
		ID:    "velocity",
		Title: "Velocity",
		Fields: []FieldDescriptor{
			{ID: "vx", Label: "vx", Widget: WidgetSignedBar, Range: CenteredRange(), Format: "%+.3f",
				Getter: cellStat(func(p CellSample) float32 { return p.Velocity.X })},
			{ID: "vy", Label: "vy", Widget: WidgetSignedBar, Range: CenteredRange(), Format: "%+.3f",
				Getter: cellStat(func(p CellSample) float32 { return p.Velocity.Y })},
			{ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.4f",
				Getter: cellStat(func(p CellSample) float32 { return p.Velocity.Len() })},
		},
	},
	{
		ID:    "scalars",
		Title: "Projection",
		Fields: []FieldDescriptor{
			{ID: "pressure", Label: "Pressure", Widget: WidgetText, Format: "%.4e",
				Getter: cellStat(func(p CellSample) float32 { return p.Pressure })},
			{ID: "divergence", Label: "Divergence", Widget: WidgetText, Format: "%.4e",
				Getter: cellStat(func(p CellSample) float32 { return p.Divergence })},
		},
	},
	{
		ID:    "dye",
		Title: "Dye",
		Fields: []FieldDescriptor{
			{ID: "dye", Label: "Colour", Widget: WidgetDyeSwatch,
				DyeGetter: func(data any) [4]float32 {
					p, _ := data.(CellSample)
					return p.Dye
				}},
			{ID: "density", Label: "Alpha", Widget: WidgetBar,
				Getter: cellStat(func(p CellSample) float32 { return p.Dye[3] })},
		},
	},
}
