package fluid

import "math"

// Sample bilinearly interpolates g at the continuous position (x,y) and
// writes Channels() values into out. Each of the four lattice neighbours is
// clamped to [0, R-1] independently, which duplicates edge values beyond
// the boundary. At integer positions the result equals the cell exactly.
func Sample(g *Grid, x, y float32, out []float32) {
	fx := float32(math.Floor(float64(x)))
	fy := float32(math.Floor(float64(y)))
	tx := x - fx
	ty := y - fy

	// Bound before the int conversion so far off-grid traces stay defined.
	x0, y0 := int(clampCoord(fx, g.res)), int(clampCoord(fy, g.res))
	x1, y1 := clampIndex(x0+1, g.res), clampIndex(y0+1, g.res)
	x0, y0 = clampIndex(x0, g.res), clampIndex(y0, g.res)

	ch := g.channels
	row0 := y0 * g.res
	row1 := y1 * g.res
	i00 := (row0 + x0) * ch
	i10 := (row0 + x1) * ch
	i01 := (row1 + x0) * ch
	i11 := (row1 + x1) * ch

	d := g.data
	for c := 0; c < ch; c++ {
		a := lerp(d[i00+c], d[i10+c], tx)
		b := lerp(d[i01+c], d[i11+c], tx)
		out[c] = lerp(a, b, ty)
	}
}

// lerp is written as a + (b-a)*t so that t == 0 or a == b return a exactly.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// clampCoord maps NaN to -1 along with everything below it.
func clampCoord(v float32, res int) float32 {
	if !(v >= -1) {
		return -1
	}
	if v > float32(res) {
		return float32(res)
	}
	return v
}

func clampIndex(i, res int) int {
	if i < 0 {
		return 0
	}
	if i >= res {
		return res - 1
	}
	return i
}
