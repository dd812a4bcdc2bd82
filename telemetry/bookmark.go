package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnergySurge        BookmarkType = "energy_surge"
	BookmarkProjectionDegraded BookmarkType = "projection_degraded"
	BookmarkInstability        BookmarkType = "instability"
	BookmarkSettled            BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	energyPeak float64 // peak window energy since the fluid last settled
	settled    bool    // a settled bookmark fired and no energy has been added since
	unstable   bool    // the previous window carried non-finite values
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for rolling averages
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkInstability(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Energy surge: mean kinetic energy > 3x rolling average
		if b := bd.checkEnergySurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Projection degraded: post-projection divergence > 2x rolling average
		if b := bd.checkProjectionDegraded(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Settled: no input and energy below 1% of its peak
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.EnergyMean > bd.energyPeak {
		bd.energyPeak = stats.EnergyMean
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkInstability(stats WindowStats) *Bookmark {
	wasUnstable := bd.unstable
	bd.unstable = stats.NonFinite > 0
	if !bd.unstable || wasUnstable {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkInstability,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d non-finite values in window ending at tick %d", stats.NonFinite, stats.WindowEndTick),
	}
}

func (bd *BookmarkDetector) checkEnergySurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.EnergyMean
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.EnergyMean > avg*3.0 && stats.ActiveSteps > 0 {
		return &Bookmark{
			Type:        BookmarkEnergySurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kinetic energy %.3g is %.1fx average (%.3g)", stats.EnergyMean, stats.EnergyMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkProjectionDegraded(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DivAfterMean
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.DivAfterMean > avg*2.0 && stats.DivAfterMean > 1e-3 {
		return &Bookmark{
			Type:        BookmarkProjectionDegraded,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Post-projection divergence %.3g is %.1fx average (%.3g)", stats.DivAfterMean, stats.DivAfterMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.ActiveSteps > 0 {
		// Fresh input; the next calm period may settle again.
		if bd.settled {
			bd.settled = false
			bd.energyPeak = 0
		}
		return nil
	}
	if bd.settled || bd.energyPeak <= 0 {
		return nil
	}

	if stats.EnergyMean < bd.energyPeak*0.01 {
		bd.settled = true
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kinetic energy %.3g fell below 1%% of peak %.3g", stats.EnergyMean, bd.energyPeak),
		}
	}
	return nil
}
