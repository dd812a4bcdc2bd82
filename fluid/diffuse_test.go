package fluid

import (
	"math"
	"math/rand"
	"testing"
)

func TestDiffuseZeroViscosityIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	vel := mustPair(t, 32, VelocityChannels)
	fillRandom(vel.Current(), rng, 3)
	want := vel.Current().Clone()

	for _, iters := range []int{1, 7, 100} {
		if err := Diffuse(vel, 0, 0.03, iters); err != nil {
			t.Fatalf("Diffuse: %v", err)
		}
		if !equalGrids(vel.Current(), want) {
			t.Errorf("iters=%d: zero viscosity changed the field", iters)
		}
	}
}

func TestDiffuseConstantFieldIsFixedPoint(t *testing.T) {
	vel := mustPair(t, 16, VelocityChannels)
	vel.Current().Fill(2, -1)

	if err := Diffuse(vel, 0.5, 0.03, 50); err != nil {
		t.Fatalf("Diffuse: %v", err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			c := vel.Current().Cell(x, y)
			if math.Abs(float64(c[0])-2) > 1e-4 || math.Abs(float64(c[1])+1) > 1e-4 {
				t.Fatalf("cell (%d,%d) = %v, want [2 -1]", x, y, c)
			}
		}
	}
}

func TestDiffuseSpreadsSpike(t *testing.T) {
	vel := mustPair(t, 21, VelocityChannels)
	vel.Current().Set(10, 10, 0, 1)

	prevPeak := float32(1)
	for i := 0; i < 10; i++ {
		if err := Diffuse(vel, 1, 0.5, 1); err != nil {
			t.Fatalf("Diffuse: %v", err)
		}
		peak := vel.Current().At(10, 10, 0)
		if peak >= prevPeak {
			t.Fatalf("iteration %d: peak %v did not drop below %v", i, peak, prevPeak)
		}
		prevPeak = peak
	}
	if got := vel.Current().At(11, 10, 0); got <= 0 {
		t.Errorf("neighbour after diffusion = %v, want > 0", got)
	}
	if got := vel.Current().At(10, 10, 1); got != 0 {
		t.Errorf("y channel = %v, want untouched 0", got)
	}
}

func TestDiffuseParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	serial := mustPair(t, 96, VelocityChannels)
	fillRandom(serial.Current(), rng, 1)
	parallel := mustPair(t, 96, VelocityChannels)
	if err := parallel.Current().CopyFrom(serial.Current()); err != nil {
		t.Fatal(err)
	}

	pool := newWorkerPool(4)
	defer pool.stop()

	diffuse(nil, serial, 0.5, 0.03, 20)
	diffuse(pool, parallel, 0.5, 0.03, 20)

	if !equalGrids(serial.Current(), parallel.Current()) {
		t.Error("parallel diffusion differs from serial")
	}
}
