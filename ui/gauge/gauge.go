// Package gauge maps solver readouts onto bar and swatch geometry. It has
// no raylib dependency so the mappings can be tested headless.
package gauge

import "math"

// Unit clamps v to [0, 1]. NaN maps to 0.
func Unit(v float32) float32 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 1
	}
	return v
}

// Signed maps v onto [-1, 1] relative to limit. A non-positive limit or a
// NaN value yields 0.
func Signed(v, limit float32) float32 {
	if !(limit > 0) || v != v {
		return 0
	}
	f := v / limit
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}

// Decades maps a reduction ratio onto [0, 1] by orders of magnitude:
// a ratio of 1 is empty, 10^-span is full. A ratio of zero (or below) is a
// complete reduction; a ratio above 1 or NaN is empty.
func Decades(ratio, span float32) float32 {
	if !(span > 0) || ratio != ratio {
		return 0
	}
	if ratio <= 0 {
		return 1
	}
	return Unit(float32(-math.Log10(float64(ratio))) / span)
}

// Straight converts a premultiplied dye sample to straight 8-bit colour
// for display. Colour is clamped to alpha before dividing; a transparent
// sample is black.
func Straight(c [4]float32) (r, g, b, a uint8) {
	al := Unit(c[3])
	a = byte8(al)
	if al == 0 {
		return 0, 0, 0, 0
	}
	ch := func(v float32) uint8 {
		return byte8(Unit(min(v, al) / al))
	}
	return ch(c[0]), ch(c[1]), ch(c[2]), a
}

func byte8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

// Span returns the pixel extent of fraction f along a bar of the given
// width, rounded down.
func Span(f float32, width int32) int32 {
	if width <= 0 {
		return 0
	}
	return int32(Unit(f) * float32(width))
}
