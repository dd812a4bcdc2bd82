// Package record turns fluid fields into images, PNG snapshots and MJPEG
// video.
package record

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/mazznoer/colorgrad"
	"github.com/pthm-cable/stirfluid/fluid"
)

// DyeImage renders the dye field as alpha-premultiplied RGBA.
//
// Dye holds premultiplied colour: it starts transparent black, samplers
// return premultiplied colour (color.Color.RGBA), and injection and
// advection only form convex combinations of such values. Each channel is
// clamped to [0,1] and colour to alpha, so data restored from elsewhere
// still yields a valid image. The image is allocated on first use and
// reused after.
func DyeImage(dye *fluid.Grid, dst *image.RGBA) *image.RGBA {
	res := dye.Res()
	dst = ensure(dst, res)
	d := dye.Data()
	for i := 0; i < res*res; i++ {
		j := i * fluid.DyeChannels
		a := to8(d[j+3])
		dst.Pix[i*4+0] = min(to8(d[j+0]), a)
		dst.Pix[i*4+1] = min(to8(d[j+1]), a)
		dst.Pix[i*4+2] = min(to8(d[j+2]), a)
		dst.Pix[i*4+3] = a
	}
	return dst
}

// Palette maps velocity magnitude to colour.
type Palette struct {
	colors []color.RGBA
	scale  float32
}

// NewPalette samples grad into a 256-entry lookup table. Speeds at or above
// scale map to the last entry.
func NewPalette(grad colorgrad.Gradient, scale float32) *Palette {
	if !(scale > 0) {
		scale = 1
	}
	p := &Palette{scale: scale}
	for _, c := range grad.Colors(256) {
		r, g, b, a := c.RGBA()
		p.colors = append(p.colors, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)})
	}
	return p
}

// DefaultPalette uses the Viridis preset.
func DefaultPalette(scale float32) *Palette {
	return NewPalette(colorgrad.Viridis(), scale)
}

func (p *Palette) at(speed float32) color.RGBA {
	t := speed / p.scale
	if !(t > 0) {
		return p.colors[0]
	}
	i := int(t * float32(len(p.colors)-1))
	if i >= len(p.colors) {
		i = len(p.colors) - 1
	}
	return p.colors[i]
}

// VelocityImage renders |v| through the palette.
func VelocityImage(vel *fluid.Grid, p *Palette, dst *image.RGBA) *image.RGBA {
	res := vel.Res()
	dst = ensure(dst, res)
	v := vel.Data()
	for i := 0; i < res*res; i++ {
		vx, vy := v[i*2], v[i*2+1]
		c := p.at(float32(math.Sqrt(float64(vx*vx + vy*vy))))
		dst.Pix[i*4+0] = c.R
		dst.Pix[i*4+1] = c.G
		dst.Pix[i*4+2] = c.B
		dst.Pix[i*4+3] = c.A
	}
	return dst
}

func ensure(dst *image.RGBA, res int) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != res || dst.Rect.Dy() != res {
		return image.NewRGBA(image.Rect(0, 0, res, res))
	}
	return dst
}

func to8(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// EncodeJPEG encodes img at the given quality into buf, replacing its contents.
func EncodeJPEG(buf *bytes.Buffer, img image.Image, quality int) error {
	buf.Reset()
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encoding jpeg: %w", err)
	}
	return nil
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
