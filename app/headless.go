package app

import (
	"context"
	"log/slog"
)

// RunHeadless steps until ctx is cancelled or the solver reaches maxTicks
// (0 = unlimited). Each iteration runs stepsPerUpdate ticks between
// cancellation checks.
func (a *App) RunHeadless(ctx context.Context, maxTicks int64, stepsPerUpdate int) error {
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("headless run stopped", "tick", a.solver.Tick(), "reason", err)
			return err
		}
		for i := 0; i < stepsPerUpdate; i++ {
			a.Tick()
			if maxTicks > 0 && a.solver.Tick() >= maxTicks {
				slog.Info("max ticks reached", "tick", a.solver.Tick())
				return nil
			}
		}
	}
}
