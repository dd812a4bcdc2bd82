package background

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/stirfluid/fluid"
)

func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	colors := []color.RGBA{
		{255, 0, 0, 255}, {0, 255, 0, 255},
		{0, 0, 255, 255}, {255, 255, 255, 255},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, colors[(y/2)*2+x/2])
		}
	}
	return img
}

func TestImageSampleColor(t *testing.T) {
	bg, err := NewImage(quadrants(), 64)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	tests := []struct {
		name string
		pos  fluid.Vec2
		want [4]float32
	}{
		{"top left", fluid.Vec2{X: 5, Y: 5}, [4]float32{1, 0, 0, 1}},
		{"top right", fluid.Vec2{X: 40, Y: 5}, [4]float32{0, 1, 0, 1}},
		{"bottom left", fluid.Vec2{X: 5, Y: 63.9}, [4]float32{0, 0, 1, 1}},
		{"truncated onto quadrant edge", fluid.Vec2{X: 31.99, Y: 32}, [4]float32{0, 0, 1, 1}},
		{"clamped below", fluid.Vec2{X: -10, Y: -3}, [4]float32{1, 0, 0, 1}},
		{"clamped above", fluid.Vec2{X: 500, Y: 500}, [4]float32{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bg.SampleColor(tt.pos); got != tt.want {
				t.Errorf("SampleColor(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, quadrants()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src, err := New(path, nil, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := src.SampleColor(fluid.Vec2{X: 7, Y: 0}); got != [4]float32{0, 1, 0, 1} {
		t.Errorf("SampleColor = %v, want green", got)
	}

	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), 8); err == nil {
		t.Error("LoadImage of a missing file succeeded")
	}
}

func TestGradient(t *testing.T) {
	g, err := NewGradient([]string{"#000000", "#ffffff"}, 11)
	if err != nil {
		t.Fatalf("NewGradient: %v", err)
	}

	left := g.SampleColor(fluid.Vec2{X: 0, Y: 3})
	right := g.SampleColor(fluid.Vec2{X: 10, Y: 3})
	mid := g.SampleColor(fluid.Vec2{X: 5, Y: 9})
	if left[0] > 0.01 || right[0] < 0.99 {
		t.Errorf("endpoints = %v, %v; want black and white", left, right)
	}
	if mid[0] <= left[0] || mid[0] >= right[0] {
		t.Errorf("midpoint %v not between endpoints", mid)
	}
	if left[3] != 1 || mid[3] != 1 {
		t.Error("gradient colours must be opaque")
	}

	if _, err := NewGradient([]string{"not-a-colour"}, 8); !errors.Is(err, fluid.ErrConfiguration) {
		t.Errorf("bad colour error = %v, want ErrConfiguration", err)
	}
	if _, err := NewGradient(nil, 8); err != nil {
		t.Errorf("preset gradient: %v", err)
	}
}
