package fluid

import "math"

// Vec2 is a position or direction in grid units.
type Vec2 struct {
	X, Y float32
}

// Len returns the Euclidean length.
func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Normalized returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 || math.IsInf(float64(l), 0) || math.IsNaN(float64(l)) {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Pointer is what a pointer collaborator reports once per step. When Active
// is false Position and Direction carry no meaning.
type Pointer struct {
	Active    bool
	Position  Vec2
	Direction Vec2
}

// PointerSource supplies the current pointer state in grid coordinates.
type PointerSource interface {
	Pointer() Pointer
}

// PointerFunc adapts a function to PointerSource.
type PointerFunc func() Pointer

// Pointer implements PointerSource.
func (f PointerFunc) Pointer() Pointer { return f() }

// ColorSampler supplies the background colour (RGBA, 0..1) at a grid position.
// It is only queried while the pointer is active.
type ColorSampler interface {
	SampleColor(pos Vec2) [4]float32
}

// ColorFunc adapts a function to ColorSampler.
type ColorFunc func(pos Vec2) [4]float32

// SampleColor implements ColorSampler.
func (f ColorFunc) SampleColor(pos Vec2) [4]float32 { return f(pos) }

// Interaction is the per-step state consumed by the force stage.
type Interaction struct {
	Active    bool
	Position  Vec2
	Direction Vec2 // unit length, or zero when stationary
	Color     [4]float32
}

var white = [4]float32{1, 1, 1, 1}

// resolveInteraction turns a raw pointer sample into the step's interaction.
// An inactive pointer always yields the zero Interaction.
func resolveInteraction(p Pointer, bg ColorSampler) Interaction {
	if !p.Active {
		return Interaction{}
	}
	in := Interaction{
		Active:    true,
		Position:  p.Position,
		Direction: p.Direction.Normalized(),
		Color:     white,
	}
	if bg != nil {
		in.Color = bg.SampleColor(p.Position)
	}
	return in
}

// PointerTracker derives a Pointer from raw "button held at position"
// samples. The first sample after a press has zero direction; later samples
// point from the previous position to the current one. Releasing clears the
// previous position through an explicit flag, so every grid coordinate
// (including negative ones) remains a valid position.
type PointerTracker struct {
	prev    Vec2
	hasPrev bool
}

// Update records one sample and returns the resulting pointer state.
func (t *PointerTracker) Update(down bool, pos Vec2) Pointer {
	if !down {
		t.Reset()
		return Pointer{}
	}
	var dir Vec2
	if t.hasPrev {
		dir = Vec2{X: pos.X - t.prev.X, Y: pos.Y - t.prev.Y}.Normalized()
	}
	t.prev = pos
	t.hasPrev = true
	return Pointer{Active: true, Position: pos, Direction: dir}
}

// Reset forgets the previous position.
func (t *PointerTracker) Reset() {
	t.prev = Vec2{}
	t.hasPrev = false
}
