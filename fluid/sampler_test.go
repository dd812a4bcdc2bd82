package fluid

import (
	"math/rand"
	"testing"
)

func TestSampleAtLatticePointsIsExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, ch := range []int{ScalarChannels, VelocityChannels, DyeChannels} {
		g := mustGrid(t, 17, ch)
		fillRandom(g, rng, 100)
		out := make([]float32, ch)
		for y := 0; y < g.Res(); y++ {
			for x := 0; x < g.Res(); x++ {
				Sample(g, float32(x), float32(y), out)
				cell := g.Cell(x, y)
				for c := 0; c < ch; c++ {
					if out[c] != cell[c] {
						t.Fatalf("channels=%d: Sample(%d,%d)[%d] = %v, want %v", ch, x, y, c, out[c], cell[c])
					}
				}
			}
		}
	}
}

func TestSampleClampsBeyondEdges(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	g := mustGrid(t, 16, DyeChannels)
	fillRandom(g, rng, 1)

	tests := []struct {
		name         string
		x, y, ex, ey float32
	}{
		{"left", -5, 3, 0, 3},
		{"far left", -1e6, 3, 0, 3},
		{"right", 40, 9, 15, 9},
		{"top", 7, -2, 7, 0},
		{"bottom", 7, 30, 7, 15},
		{"corner", -3, -3, 0, 0},
		{"fractional outside", -2.5, 4, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]float32, DyeChannels)
			want := make([]float32, DyeChannels)
			Sample(g, tt.x, tt.y, got)
			Sample(g, tt.ex, tt.ey, want)
			for c := range got {
				if got[c] != want[c] {
					t.Errorf("Sample(%v,%v)[%d] = %v, want %v", tt.x, tt.y, c, got[c], want[c])
				}
			}
		})
	}
}

func TestSampleInterpolatesBilinearly(t *testing.T) {
	g := mustGrid(t, 4, 1)
	g.Set(1, 1, 0, 0)
	g.Set(2, 1, 0, 4)
	g.Set(1, 2, 0, 8)
	g.Set(2, 2, 0, 12)

	out := make([]float32, 1)
	Sample(g, 1.5, 1.5, out)
	if out[0] != 6 {
		t.Errorf("centre sample = %v, want 6", out[0])
	}
	Sample(g, 1.25, 1, out)
	if out[0] != 1 {
		t.Errorf("edge sample = %v, want 1", out[0])
	}
}
