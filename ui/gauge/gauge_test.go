package gauge

import (
	"math"
	"testing"
)

func TestUnit(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		in, want float32
	}{
		{-0.5, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {7, 1}, {nan, 0},
	}
	for _, tt := range tests {
		if got := Unit(tt.in); got != tt.want {
			t.Errorf("Unit(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		name     string
		v, limit float32
		want     float32
	}{
		{"inside", 0.5, 2, 0.25},
		{"negative", -1, 2, -0.5},
		{"above limit", 9, 2, 1},
		{"below limit", -9, 2, -1},
		{"zero limit", 1, 0, 0},
		{"nan", float32(math.NaN()), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Signed(tt.v, tt.limit); got != tt.want {
				t.Errorf("Signed(%v, %v) = %v, want %v", tt.v, tt.limit, got, tt.want)
			}
		})
	}
}

func TestDecades(t *testing.T) {
	tests := []struct {
		name  string
		ratio float32
		want  float32
	}{
		{"no reduction", 1, 0},
		{"one decade", 0.1, 1.0 / 3},
		{"full span", 0.001, 1},
		{"beyond span", 1e-6, 1},
		{"growth", 4, 0},
		{"exact zero", 0, 1},
		{"nan", float32(math.NaN()), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decades(tt.ratio, 3)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("Decades(%v, 3) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestStraight(t *testing.T) {
	tests := []struct {
		name       string
		in         [4]float32
		r, g, b, a uint8
	}{
		{"opaque", [4]float32{1, 0.5, 0, 1}, 255, 128, 0, 255},
		{"half transparent", [4]float32{0.5, 0.25, 0, 0.5}, 255, 128, 0, 128},
		{"colour above alpha", [4]float32{0.9, 0.1, 0, 0.2}, 255, 128, 0, 51},
		{"transparent", [4]float32{0.3, 0.3, 0.3, 0}, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := Straight(tt.in)
			if r != tt.r || g != tt.g || b != tt.b || a != tt.a {
				t.Errorf("Straight(%v) = (%d %d %d %d), want (%d %d %d %d)",
					tt.in, r, g, b, a, tt.r, tt.g, tt.b, tt.a)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	if got := Span(0.5, 101); got != 50 {
		t.Errorf("Span(0.5, 101) = %d, want 50", got)
	}
	if got := Span(2, 80); got != 80 {
		t.Errorf("Span(2, 80) = %d, want 80", got)
	}
	if got := Span(0.5, -4); got != 0 {
		t.Errorf("Span(0.5, -4) = %d, want 0", got)
	}
}
