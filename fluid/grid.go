// Package fluid implements a grid-based incompressible fluid solver in the
// "stable fluids" style: semi-Lagrangian advection, implicit viscous
// diffusion, pointer-driven force injection and pressure projection over
// square, clamp-to-edge grids.
package fluid

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"
)

// Channel counts for the fields the solver owns.
const (
	ScalarChannels   = 1 // pressure, divergence
	VelocityChannels = 2
	DyeChannels      = 4 // RGBA
)

// Grid is a fixed-resolution square array of float32 cells, each holding
// Channels() interleaved values. Resolution never changes after allocation.
type Grid struct {
	res      int
	channels int
	data     []float32
}

// NewGrid allocates a zeroed res x res grid with the given channel count.
func NewGrid(res, channels int) (*Grid, error) {
	if res <= 0 {
		return nil, &ConfigurationError{Field: "resolution", Value: res, Reason: "must be positive"}
	}
	if channels <= 0 {
		return nil, &ConfigurationError{Field: "channels", Value: channels, Reason: "must be positive"}
	}
	return &Grid{
		res:      res,
		channels: channels,
		data:     make([]float32, res*res*channels),
	}, nil
}

// Res returns the side length.
func (g *Grid) Res() int { return g.res }

// Channels returns the number of values per cell.
func (g *Grid) Channels() int { return g.channels }

// Data exposes the backing slice, row-major with interleaved channels.
// Consumers outside the solver must treat it as read-only.
func (g *Grid) Data() []float32 { return g.data }

func (g *Grid) index(x, y int) int {
	if x < 0 || x >= g.res || y < 0 || y >= g.res {
		panic(fmt.Sprintf("fluid: cell (%d,%d) out of range for %dx%d grid", x, y, g.res, g.res))
	}
	return (y*g.res + x) * g.channels
}

// At returns channel c of cell (x,y). Out-of-range access panics.
func (g *Grid) At(x, y, c int) float32 {
	if c < 0 || c >= g.channels {
		panic(fmt.Sprintf("fluid: channel %d out of range for %d-channel grid", c, g.channels))
	}
	return g.data[g.index(x, y)+c]
}

// Set writes channel c of cell (x,y). Out-of-range access panics.
func (g *Grid) Set(x, y, c int, v float32) {
	if c < 0 || c >= g.channels {
		panic(fmt.Sprintf("fluid: channel %d out of range for %d-channel grid", c, g.channels))
	}
	g.data[g.index(x, y)+c] = v
}

// Cell returns the channel values of (x,y) as a sub-slice of the backing store.
func (g *Grid) Cell(x, y int) []float32 {
	i := g.index(x, y)
	return g.data[i : i+g.channels : i+g.channels]
}

// CopyFrom makes g a bit-identical copy of src.
func (g *Grid) CopyFrom(src *Grid) error {
	if err := sameLayout("copy", g, src); err != nil {
		return err
	}
	n := len(g.data)
	blas32.Copy(
		blas32.Vector{N: n, Inc: 1, Data: src.data},
		blas32.Vector{N: n, Inc: 1, Data: g.data},
	)
	return nil
}

// Clone returns an independent copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{res: g.res, channels: g.channels, data: make([]float32, len(g.data))}
	copy(c.data, g.data)
	return c
}

// Clear zeroes every cell.
func (g *Grid) Clear() {
	clear(g.data)
}

// Fill sets every cell to the given channel values.
func (g *Grid) Fill(values ...float32) {
	if len(values) != g.channels {
		panic(fmt.Sprintf("fluid: Fill with %d values on %d-channel grid", len(values), g.channels))
	}
	for i := 0; i < len(g.data); i += g.channels {
		copy(g.data[i:i+g.channels], values)
	}
}

// Release drops the backing store. The grid must not be used afterwards.
func (g *Grid) Release() {
	g.data = nil
}

// Pair double-buffers a field. Current holds the committed state; stages
// write Next and Commit makes it current by swapping buffer parity, so no
// physical copy is made.
type Pair struct {
	bufs [2]*Grid
	cur  int
}

// NewPair allocates two zeroed grids of the same shape.
func NewPair(res, channels int) (*Pair, error) {
	a, err := NewGrid(res, channels)
	if err != nil {
		return nil, err
	}
	b, err := NewGrid(res, channels)
	if err != nil {
		return nil, err
	}
	return &Pair{bufs: [2]*Grid{a, b}}, nil
}

// Current returns the committed buffer.
func (p *Pair) Current() *Grid { return p.bufs[p.cur] }

// Next returns the scratch buffer stages write into.
func (p *Pair) Next() *Grid { return p.bufs[1-p.cur] }

// Commit makes Next the authoritative state.
func (p *Pair) Commit() { p.cur = 1 - p.cur }

// Clear zeroes both buffers.
func (p *Pair) Clear() {
	p.bufs[0].Clear()
	p.bufs[1].Clear()
}

// Release drops both buffers.
func (p *Pair) Release() {
	p.bufs[0].Release()
	p.bufs[1].Release()
}
