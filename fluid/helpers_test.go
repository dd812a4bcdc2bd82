package fluid

import (
	"math"
	"math/rand"
	"testing"
)

func mustGrid(t testing.TB, res, channels int) *Grid {
	t.Helper()
	g, err := NewGrid(res, channels)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d): %v", res, channels, err)
	}
	return g
}

func mustPair(t testing.TB, res, channels int) *Pair {
	t.Helper()
	p, err := NewPair(res, channels)
	if err != nil {
		t.Fatalf("NewPair(%d, %d): %v", res, channels, err)
	}
	return p
}

func fillRandom(g *Grid, rng *rand.Rand, scale float32) {
	for i := range g.data {
		g.data[i] = (rng.Float32()*2 - 1) * scale
	}
}

func equalGrids(a, b *Grid) bool {
	if a.res != b.res || a.channels != b.channels {
		return false
	}
	for i := range a.data {
		if math.Float32bits(a.data[i]) != math.Float32bits(b.data[i]) {
			return false
		}
	}
	return true
}

// maxDiff returns the largest absolute difference between two same-shaped grids.
func maxDiff(a, b *Grid) float64 {
	var worst float64
	for i := range a.data {
		d := math.Abs(float64(a.data[i]) - float64(b.data[i]))
		if d > worst {
			worst = d
		}
	}
	return worst
}

// stillPointer is a PointerSource that always reports the same state.
type stillPointer Pointer

func (p stillPointer) Pointer() Pointer { return Pointer(p) }
