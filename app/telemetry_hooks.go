package app

import (
	"log/slog"

	"github.com/pthm-cable/stirfluid/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (a *App) flushTelemetry() {
	tick := a.solver.Tick()
	if !a.collector.ShouldFlush(tick) {
		return
	}

	stats := a.collector.Flush(tick)
	perfStats := a.perfCollector.Stats()
	a.lastWindow = stats

	if a.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := a.outputManager.WriteWindow(stats); err != nil {
		slog.Error("failed to write window", "error", err)
	}
	if err := a.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	bookmarks := a.bookmarkDetector.Check(stats)
	a.lastBookmarks = append(a.lastBookmarks[:0], bookmarks...)
	for _, bm := range bookmarks {
		if a.opts.LogStats {
			bm.LogBookmark()
		}
		if err := a.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}

		// Checkpoint on bookmark
		if a.opts.CheckpointDir != "" {
			a.saveBookmarkCheckpoint(bm)
		}
	}
}

func (a *App) saveBookmarkCheckpoint(bm telemetry.Bookmark) {
	p := a.solver.Params()
	if bm.Type == telemetry.BookmarkInstability && !p.Sanitize {
		slog.Warn("skipping checkpoint of unsanitized fields", "tick", bm.Tick)
		return
	}
	path, err := a.SaveCheckpoint(&bm)
	if err != nil {
		slog.Error("failed to save checkpoint", "error", err)
		return
	}
	slog.Info("checkpoint saved", "path", path, "bookmark", bm.Type)
}

// Bookmarks returns the bookmarks raised by the most recent window flush.
func (a *App) Bookmarks() []telemetry.Bookmark { return a.lastBookmarks }
