// Package ui provides a descriptor-driven UI system for the fluid viewer.
// Panels are described by field metadata so the readouts can follow the
// solver diagnostics without hard-coded layouts.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText       WidgetType = iota // Plain text with format string
	WidgetBar                          // Fill fraction of [0, 1]
	WidgetSignedBar                    // Fill either side of zero, scaled by Range.Max
	WidgetDecadeBar                    // Reduction ratio on a log scale of Range.Max decades
	WidgetDyeSwatch                    // Premultiplied dye over a checkerboard
)

// FieldRange defines the value range for bar widgets.
type FieldRange struct {
	Min float32
	Max float32
}

// CenteredRange returns a [-1, +1] range.
func CenteredRange() FieldRange {
	return FieldRange{Min: -1, Max: 1}
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID        string               // Unique identifier for the field
	Label     string               // Display label
	Widget    WidgetType           // How to render
	Format    string               // Printf format for the value text
	Range     FieldRange           // Value range for bars
	Visible   func(any) bool       // Optional visibility check (nil = always visible)
	Getter    func(any) float32    // Value extractor (for numeric fields)
	DyeGetter func(any) [4]float32 // Premultiplied RGBA extractor (for dye swatches)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg         rl.Color
	PanelBorder     rl.Color
	SectionHeader   rl.Color
	LabelColor      rl.Color
	ValueColor      rl.Color
	BarBg           rl.Color
	BarFill         rl.Color
	BarFillNegative rl.Color
	BarFillPositive rl.Color
	CheckerLight    rl.Color
	CheckerDark     rl.Color
	Padding         int32
	LineHeight      int32
	LabelWidth      int32
	BarHeight       int32
	FontSize        int32
	HeaderFontSize  int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:         rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:     rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:   rl.Yellow,
		LabelColor:      rl.LightGray,
		ValueColor:      rl.LightGray,
		BarBg:           rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:         rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillNegative: rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillPositive: rl.Color{R: 100, G: 200, B: 100, A: 255},
		CheckerLight:    rl.Color{R: 110, G: 110, B: 110, A: 255},
		CheckerDark:     rl.Color{R: 70, G: 70, B: 70, A: 255},
		Padding:         10,
		LineHeight:      16,
		LabelWidth:      90,
		BarHeight:       12,
		FontSize:        12,
		HeaderFontSize:  14,
	}
}
