// Package renderer draws solver fields with raylib.
package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/camera"
	"github.com/pthm-cable/stirfluid/fluid"
	"github.com/pthm-cable/stirfluid/record"
)

// View selects the field FieldRenderer displays.
type View int

const (
	ViewDye View = iota
	ViewVelocity
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewDye:
		return "dye"
	case ViewVelocity:
		return "velocity"
	}
	return "unknown"
}

// FieldRenderer uploads one solver field per frame to a res x res texture
// and draws it through a camera. Grid row 0 is drawn at the top.
type FieldRenderer struct {
	res     int
	view    View
	palette *record.Palette
	cam     *camera.Camera

	tex    rl.Texture2D
	img    *image.RGBA
	pixels []color.RGBA

	screenW, screenH float32
	initialized      bool
}

// NewFieldRenderer creates a renderer for a res x res grid.
func NewFieldRenderer(res int, screenW, screenH int32, palette *record.Palette) *FieldRenderer {
	if palette == nil {
		palette = record.DefaultPalette(1)
	}
	return &FieldRenderer{
		res:     res,
		palette: palette,
		cam:     camera.New(float32(screenW), float32(screenH), float32(res), float32(res)),
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
}

// Init creates the texture (must be called after the raylib window exists).
func (r *FieldRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageColor(r.res, r.res, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterBilinear)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.img = image.NewRGBA(image.Rect(0, 0, r.res, r.res))
	r.pixels = make([]color.RGBA, r.res*r.res)
	r.initialized = true
}

// Resize updates screen dimensions.
func (r *FieldRenderer) Resize(w, h float32) {
	r.screenW = w
	r.screenH = h
	r.cam.Resize(w, h)
}

// Camera returns the view transform for pan and zoom.
func (r *FieldRenderer) Camera() *camera.Camera { return r.cam }

// View returns the displayed field.
func (r *FieldRenderer) View() View { return r.view }

// CycleView switches to the next field and returns it.
func (r *FieldRenderer) CycleView() View {
	r.view = (r.view + 1) % viewCount
	return r.view
}

// Update converts the solver's committed field and uploads it. It must run
// on the stepping goroutine, between steps.
func (r *FieldRenderer) Update(s *fluid.Solver) {
	if !r.initialized {
		r.Init()
	}
	switch r.view {
	case ViewVelocity:
		r.img = record.VelocityImage(s.Velocity(), r.palette, r.img)
	default:
		r.img = record.DyeImage(s.Dye(), r.img)
	}

	pix := r.img.Pix
	for i := range r.pixels {
		o := i * 4
		r.pixels[i] = color.RGBA{R: pix[o], G: pix[o+1], B: pix[o+2], A: 255}
	}
	rl.UpdateTexture(r.tex, r.pixels)
}

// Image returns the last converted frame.
func (r *FieldRenderer) Image() *image.RGBA { return r.img }

// Draw renders the field. Parts of the grid outside the view are clipped
// by raylib.
func (r *FieldRenderer) Draw() {
	if !r.initialized {
		return
	}
	size := float32(r.res)
	x0, y0 := r.cam.WorldToScreen(0, 0)
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: size, Height: size}
	dstRect := rl.Rectangle{X: x0, Y: y0, Width: size * r.cam.Zoom, Height: size * r.cam.Zoom}
	rl.DrawTexturePro(r.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// ScreenToGrid maps a screen position to grid coordinates.
func (r *FieldRenderer) ScreenToGrid(x, y float32) fluid.Vec2 {
	wx, wy := r.cam.ScreenToWorld(x, y)
	return fluid.Vec2{X: wx, Y: wy}
}

// GridToScreen maps grid coordinates to a screen position.
func (r *FieldRenderer) GridToScreen(p fluid.Vec2) rl.Vector2 {
	sx, sy := r.cam.WorldToScreen(p.X, p.Y)
	return rl.Vector2{X: sx, Y: sy}
}

// CellSize returns the on-screen size of one grid cell.
func (r *FieldRenderer) CellSize() float32 {
	return r.cam.Zoom
}

// Unload frees GPU resources.
func (r *FieldRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
