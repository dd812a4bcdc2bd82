// Pressure solve convergence study - writes the residual of each Jacobi
// iteration for a single cosine mode as CSV.
//
// Usage: go run ./cmd/convergence -res 128 -mode 4 -iters 400 -out residual.csv
package main

import (
	"flag"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/stirfluid/fluid"
)

// Row is one iteration of the study.
type Row struct {
	Iteration int     `csv:"iteration"`
	Residual  float64 `csv:"residual"`
	Predicted float64 `csv:"predicted"` // r0 * lambda^iteration
	Ratio     float64 `csv:"ratio"`     // residual / previous residual
}

func main() {
	res := flag.Int("res", 128, "Grid resolution")
	mode := flag.Int("mode", 4, "Cosine mode number m (divergence = cos(pi*m*(x+.5)/res) * cos(pi*m*(y+.5)/res))")
	iters := flag.Int("iters", 400, "Jacobi iterations")
	out := flag.String("out", "", "Output CSV path (empty = stdout)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	rows, err := study(*res, *mode, *iters)
	if err != nil {
		slog.Error("study failed", "error", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			slog.Error("failed to create output", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		slog.Error("failed to write csv", "error", err)
		os.Exit(1)
	}

	last := rows[len(rows)-1]
	slog.Info("study complete",
		"res", *res,
		"mode", *mode,
		"lambda", eigenvalue(*res, *mode),
		"initial", rows[0].Residual,
		"final", last.Residual,
	)
}

// eigenvalue is the per-iteration contraction of the mode under the
// clamped four-neighbour average.
func eigenvalue(res, m int) float64 {
	return math.Cos(math.Pi * float64(m) / float64(res))
}

// study runs the pressure iteration from zero and records the max-norm
// residual after every iteration; row 0 is the initial state.
func study(res, m, iters int) ([]Row, error) {
	div, err := fluid.NewGrid(res, fluid.ScalarChannels)
	if err != nil {
		return nil, err
	}
	k := math.Pi * float64(m) / float64(res)
	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			div.Set(x, y, 0, float32(math.Cos(k*(float64(x)+0.5))*math.Cos(k*(float64(y)+0.5))))
		}
	}
	p, err := fluid.NewPair(res, fluid.ScalarChannels)
	if err != nil {
		return nil, err
	}

	lambda := eigenvalue(res, m)
	r0 := fluid.PressureResidual(p.Current(), div)
	rows := make([]Row, 0, iters+1)
	rows = append(rows, Row{Residual: r0, Predicted: r0, Ratio: 1})
	for it := 1; it <= iters; it++ {
		if err := fluid.JacobiPressure(p, div); err != nil {
			return nil, err
		}
		r := fluid.PressureResidual(p.Current(), div)
		ratio := 0.0
		if prev := rows[it-1].Residual; prev > 0 {
			ratio = r / prev
		}
		rows = append(rows, Row{
			Iteration: it,
			Residual:  r,
			Predicted: r0 * math.Pow(math.Abs(lambda), float64(it)),
			Ratio:     ratio,
		})
	}
	return rows, nil
}
