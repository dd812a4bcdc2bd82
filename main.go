package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/stirfluid/app"
	"github.com/pthm-cable/stirfluid/config"
	"github.com/pthm-cable/stirfluid/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in steps (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	perStep := flag.Bool("per-step", false, "Also write one CSV row per step (requires -output-dir)")
	checkpointDir := flag.String("checkpoint-dir", "", "Directory for checkpoint files")
	resume := flag.String("resume", "", "Checkpoint file to restore before the first step")
	recordPath := flag.String("record", "", "Write the dye field to an MJPEG .avi file")
	serve := flag.Bool("stream", false, "Serve frames and accept pointer input over websocket")
	autoStir := flag.Bool("auto-stir", false, "Start with the scripted stirrers on (always on headless)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	saveConfig := flag.String("save-config", "config.yaml", "Where the viewer's \"Save config\" button writes")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := app.Options{
		Seed:          rngSeed,
		LogStats:      *logStats,
		OutputDir:     *outputDir,
		PerStepCSV:    *perStep,
		CheckpointDir: *checkpointDir,
		ResumeFrom:    *resume,
		RecordPath:    *recordPath,
		Stream:        *serve,
		AutoStir:      *autoStir || *headless,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		os.Exit(runHeadless(ctx, cfg, opts, int64(*maxTicks), *stepsPerUpdate))
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Stir Fluid")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	a, err := app.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer closeApp(a)
	go serveStream(ctx, a)

	v := viewer.New(a, viewer.Options{
		StepsPerUpdate: *stepsPerUpdate,
		ConfigOut:      *saveConfig,
		ScreenshotDir:  *outputDir,
	})
	defer v.Unload()

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		v.Update()
		v.Draw()

		if *maxTicks > 0 && v.Tick() >= int64(*maxTicks) {
			break
		}
	}
}

// runHeadless runs without a window and returns the process exit code.
func runHeadless(ctx context.Context, cfg *config.Config, opts app.Options, maxTicks int64, stepsPerUpdate int) int {
	a, err := app.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer closeApp(a)
	go serveStream(ctx, a)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"resolution", cfg.Grid.Resolution,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	if err := a.RunHeadless(ctx, maxTicks, stepsPerUpdate); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("headless run failed", "error", err)
		return 1
	}
	return 0
}

func serveStream(ctx context.Context, a *app.App) {
	if err := a.Serve(ctx); err != nil {
		slog.Error("stream server failed", "error", err)
	}
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
