package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/stirfluid/fluid"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{0.7, 0.1, 0.3, 0.9, 0.5, 0.2, 0.4, 0.6, 0.8, 1.0}
	s := Summarize(values)

	if math.Abs(s.Mean-0.55) > 0.001 {
		t.Errorf("mean = %v, want 0.55", s.Mean)
	}
	// Population std of 0.1..1.0
	if math.Abs(s.Std-0.2872) > 0.001 {
		t.Errorf("std = %v, want ~0.287", s.Std)
	}
	if math.Abs(s.P10-0.19) > 0.01 {
		t.Errorf("p10 = %v, want ~0.19", s.P10)
	}
	if math.Abs(s.P50-0.55) > 0.01 {
		t.Errorf("p50 = %v, want ~0.55", s.P50)
	}
	if math.Abs(s.P90-0.91) > 0.01 {
		t.Errorf("p90 = %v, want ~0.91", s.P90)
	}
	if s.Max != 1.0 {
		t.Errorf("max = %v, want 1", s.Max)
	}
	// Input order is preserved.
	if values[0] != 0.7 {
		t.Error("Summarize sorted its input")
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("empty summary = %+v, want zero", s)
	}
	s := Summarize([]float64{0.1, 0.1, 0.1})
	if s.Std != 0 && !(s.Std < 1e-12) {
		t.Errorf("constant std = %v, want 0", s.Std)
	}
	if math.IsNaN(s.Std) {
		t.Error("constant std is NaN")
	}
}

func TestMeasureStep(t *testing.T) {
	ptr := fluid.PointerFunc(func() fluid.Pointer {
		return fluid.Pointer{Active: true, Position: fluid.Vec2{X: 16, Y: 16}, Direction: fluid.Vec2{X: 1}}
	})
	params := fluid.DefaultParams()
	params.Radius = 3
	s, err := fluid.New(32, params, fluid.WithPointer(ptr), fluid.WithWorkers(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	st := MeasureStep(s, s.Step())
	if st.Tick != 1 || !st.PointerActive {
		t.Errorf("tick/active = %d/%v, want 1/true", st.Tick, st.PointerActive)
	}
	if st.KineticEnergy <= 0 || st.MaxSpeed <= 0 || st.DyeMass <= 0 {
		t.Errorf("expected energy, speed and dye after a stroke: %+v", st)
	}
	if st.DivBefore <= 0 {
		t.Errorf("div_before = %v, want > 0", st.DivBefore)
	}
	if st.DivAfter >= st.DivBefore {
		t.Errorf("projection did not reduce divergence: %v -> %v", st.DivBefore, st.DivAfter)
	}
}
