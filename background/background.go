// Package background provides the colour sources sampled when dye is
// injected: a decoded image stretched over the grid, or a colour gradient.
package background

import (
	"fmt"
	"image"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration
	"os"

	"github.com/mazznoer/colorgrad"
	"github.com/pthm-cable/stirfluid/fluid"
)

// Image samples an RGBA image stretched over a res x res grid.
// The grid position is truncated to the nearest texel of the image.
type Image struct {
	res  int
	w, h int
	pix  [][4]float32
}

// NewImage converts img once into normalised RGBA texels.
func NewImage(img image.Image, res int) (*Image, error) {
	if res <= 0 {
		return nil, &fluid.ConfigurationError{Field: "resolution", Value: res, Reason: "must be positive"}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("background image is empty")
	}

	bg := &Image{res: res, w: b.Dx(), h: b.Dy(), pix: make([][4]float32, b.Dx()*b.Dy())}
	for y := 0; y < bg.h; y++ {
		for x := 0; x < bg.w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			bg.pix[y*bg.w+x] = [4]float32{
				float32(r) / 0xffff,
				float32(g) / 0xffff,
				float32(bl) / 0xffff,
				float32(a) / 0xffff,
			}
		}
	}
	return bg, nil
}

// LoadImage decodes a PNG or JPEG file.
func LoadImage(path string, res int) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening background: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding background %s: %w", path, err)
	}
	return NewImage(img, res)
}

// SampleColor implements fluid.ColorSampler.
func (bg *Image) SampleColor(pos fluid.Vec2) [4]float32 {
	x := texel(pos.X, bg.res, bg.w)
	y := texel(pos.Y, bg.res, bg.h)
	return bg.pix[y*bg.w+x]
}

// texel maps a grid coordinate onto [0, size).
func texel(v float32, res, size int) int {
	i := int(v) * size / res
	if v < 0 || i < 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	return i
}

// Gradient colours the grid left to right.
type Gradient struct {
	res  int
	grad colorgrad.Gradient
}

// NewGradient builds a gradient from hex colours. An empty list uses the
// Turbo preset.
func NewGradient(colors []string, res int) (*Gradient, error) {
	if res <= 0 {
		return nil, &fluid.ConfigurationError{Field: "resolution", Value: res, Reason: "must be positive"}
	}
	if len(colors) == 0 {
		return &Gradient{res: res, grad: colorgrad.Turbo()}, nil
	}
	grad, err := colorgrad.NewGradient().HtmlColors(colors...).Build()
	if err != nil {
		return nil, &fluid.ConfigurationError{Field: "interaction.gradient", Value: colors, Reason: err.Error()}
	}
	return &Gradient{res: res, grad: grad}, nil
}

// SampleColor implements fluid.ColorSampler.
func (g *Gradient) SampleColor(pos fluid.Vec2) [4]float32 {
	t := 0.0
	if g.res > 1 {
		t = float64(texel(pos.X, g.res, g.res)) / float64(g.res-1)
	}
	c := g.grad.At(t).Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}

// New picks the configured source: the image at path if set, otherwise a
// gradient over colors.
func New(path string, colors []string, res int) (fluid.ColorSampler, error) {
	if path != "" {
		return LoadImage(path, res)
	}
	return NewGradient(colors, res)
}
