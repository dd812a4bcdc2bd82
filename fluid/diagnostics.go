package fluid

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

func vec(g *Grid) blas32.Vector {
	return blas32.Vector{N: len(g.data), Inc: 1, Data: g.data}
}

// MaxAbs returns the largest absolute value stored in g.
func MaxAbs(g *Grid) float32 {
	if len(g.data) == 0 {
		return 0
	}
	i := blas32.Iamax(vec(g))
	if i < 0 {
		return 0
	}
	return float32(math.Abs(float64(g.data[i])))
}

// MaxAbsDivergence computes the divergence of vel into a scratch grid and
// returns its max norm.
func MaxAbsDivergence(vel *Grid) float32 {
	div, err := NewGrid(vel.res, ScalarChannels)
	if err != nil {
		return 0
	}
	divergence(nil, div, vel)
	return MaxAbs(div)
}

// PressureResidual returns max |lap(p) - div| using the same clamped
// 5-point Laplacian the Jacobi iteration solves.
func PressureResidual(p, div *Grid) float64 {
	res := p.res
	var worst float64
	for y := 0; y < res; y++ {
		up := clampIndex(y-1, res) * res
		down := clampIndex(y+1, res) * res
		row := y * res
		for x := 0; x < res; x++ {
			c := float64(p.data[row+x])
			lap := float64(p.data[row+clampIndex(x-1, res)]) + float64(p.data[row+clampIndex(x+1, res)]) +
				float64(p.data[up+x]) + float64(p.data[down+x]) - 4*c
			r := math.Abs(lap - float64(div.data[row+x]))
			if r > worst || math.IsNaN(r) {
				worst = r
			}
		}
	}
	return worst
}

// KineticEnergy returns 0.5 * sum |v|^2 over the velocity grid.
func KineticEnergy(vel *Grid) float64 {
	n := float64(blas32.Nrm2(vec(vel)))
	return 0.5 * n * n
}

// DyeMass returns the sum of absolute dye channel values.
func DyeMass(dye *Grid) float64 {
	return float64(blas32.Asum(vec(dye)))
}

// MaxSpeed returns the largest velocity magnitude.
func MaxSpeed(vel *Grid) float32 {
	var best float32
	v := vel.data
	for i := 0; i+1 < len(v); i += 2 {
		s := v[i]*v[i] + v[i+1]*v[i+1]
		if s > best {
			best = s
		}
	}
	return float32(math.Sqrt(float64(best)))
}

// CountNonFinite returns the number of NaN or infinite values in g.
func CountNonFinite(g *Grid) int {
	n := 0
	for _, v := range g.data {
		if !finite(v) {
			n++
		}
	}
	return n
}

// Sanitize zeroes every NaN or infinite value and returns how many it replaced.
func Sanitize(g *Grid) int {
	n := 0
	for i, v := range g.data {
		if !finite(v) {
			g.data[i] = 0
			n++
		}
	}
	return n
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
