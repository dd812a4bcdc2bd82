package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/ui/gauge"
)

// valueColumn is the width reserved right of a bar for its value text.
const valueColumn = 64

// Renderer draws readout panels in one theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

func (r *Renderer) label(x, y int32, text string) {
	rl.DrawText(text+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	r.label(x, y, label)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// track draws the labelled bar background and returns its geometry.
func (r *Renderer) track(x, y int32, label string, width int32) (barX, barW int32) {
	barX = x + r.Theme.LabelWidth
	barW = width - r.Theme.LabelWidth - valueColumn
	r.label(x, y, label)
	rl.DrawRectangle(barX, y+2, barW, r.Theme.BarHeight, r.Theme.BarBg)
	return barX, barW
}

func (r *Renderer) barValue(barX, barW, y int32, text string) int32 {
	rl.DrawText(text, barX+barW+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight + 2
}

// DrawBar fills a bar by a fraction in [0, 1].
func (r *Renderer) DrawBar(x, y int32, label string, value float32, format string, width int32) int32 {
	barX, barW := r.track(x, y, label, width)
	rl.DrawRectangle(barX, y+2, gauge.Span(gauge.Unit(value), barW), r.Theme.BarHeight, r.Theme.BarFill)
	return r.barValue(barX, barW, y, fmt.Sprintf(format, value))
}

// DrawSignedBar fills from the bar's midpoint towards the value's sign,
// reaching the end at |value| = limit.
func (r *Renderer) DrawSignedBar(x, y int32, label string, value, limit float32, format string, width int32) int32 {
	barX, barW := r.track(x, y, label, width)
	mid := barX + barW/2
	rl.DrawLine(mid, y+2, mid, y+2+r.Theme.BarHeight, r.Theme.PanelBorder)

	f := gauge.Signed(value, limit)
	if f < 0 {
		w := gauge.Span(-f, barW/2)
		rl.DrawRectangle(mid-w, y+2, w, r.Theme.BarHeight, r.Theme.BarFillNegative)
	} else {
		rl.DrawRectangle(mid, y+2, gauge.Span(f, barW/2), r.Theme.BarHeight, r.Theme.BarFillPositive)
	}
	return r.barValue(barX, barW, y, fmt.Sprintf(format, value))
}

// DrawDecadeBar shows a ratio as orders of magnitude of reduction, with a
// tick per decade. Ratios above 1 draw an empty bar in the negative colour.
func (r *Renderer) DrawDecadeBar(x, y int32, label string, ratio, decades float32, format string, width int32) int32 {
	barX, barW := r.track(x, y, label, width)
	fill := r.Theme.BarFillPositive
	if ratio > 1 {
		fill = r.Theme.BarFillNegative
		rl.DrawRectangleLines(barX, y+2, barW, r.Theme.BarHeight, fill)
	}
	rl.DrawRectangle(barX, y+2, gauge.Span(gauge.Decades(ratio, decades), barW), r.Theme.BarHeight, fill)
	for d := int32(1); float32(d) < decades; d++ {
		tx := barX + gauge.Span(float32(d)/decades, barW)
		rl.DrawLine(tx, y+2, tx, y+2+r.Theme.BarHeight, r.Theme.PanelBorder)
	}
	return r.barValue(barX, barW, y, fmt.Sprintf(format, ratio))
}

// DrawDyeSwatch draws a premultiplied dye sample over a checkerboard so
// transparency reads as such, with its straight colour as text.
func (r *Renderer) DrawDyeSwatch(x, y int32, label string, dye [4]float32) int32 {
	const cell = int32(6)
	sx := x + r.Theme.LabelWidth
	r.label(x, y, label)
	for i := int32(0); i < 4; i++ {
		c := r.Theme.CheckerLight
		if i%3 != 0 {
			c = r.Theme.CheckerDark
		}
		rl.DrawRectangle(sx+(i%2)*cell, y+1+(i/2)*cell, cell, cell, c)
	}

	cr, cg, cb, ca := gauge.Straight(dye)
	rl.DrawRectangle(sx, y+1, 2*cell, 2*cell, rl.Color{R: cr, G: cg, B: cb, A: ca})
	rl.DrawText(fmt.Sprintf("#%02x%02x%02x", cr, cg, cb), sx+2*cell+8, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawField renders a field based on its descriptor.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	value := float32(0)
	if fd.Getter != nil {
		value = fd.Getter(data)
	}
	format := fd.Format
	if format == "" {
		format = "%.2f"
	}

	switch fd.Widget {
	case WidgetText:
		return r.DrawLabelValue(x, y, fd.Label, fmt.Sprintf(format, value))
	case WidgetBar:
		return r.DrawBar(x, y, fd.Label, value, format, width)
	case WidgetSignedBar:
		return r.DrawSignedBar(x, y, fd.Label, value, fd.Range.Max, format, width)
	case WidgetDecadeBar:
		return r.DrawDecadeBar(x, y, fd.Label, value, fd.Range.Max, format, width)
	case WidgetDyeSwatch:
		var dye [4]float32
		if fd.DyeGetter != nil {
			dye = fd.DyeGetter(data)
		}
		return r.DrawDyeSwatch(x, y, fd.Label, dye)
	}
	return y
}

// DrawSection renders a section with header and fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4
}
