package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_EnergySurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 60), EnergyMean: 1, ActiveSteps: 10})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 300, EnergyMean: 5, ActiveSteps: 60})
	if !hasBookmark(bms, BookmarkEnergySurge) {
		t.Error("expected energy_surge bookmark")
	}
}

func TestBookmarkDetector_ProjectionDegraded(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 4; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 60), DivAfterMean: 0.01})
	}

	if bms := bd.Check(WindowStats{WindowEndTick: 240, DivAfterMean: 0.015}); hasBookmark(bms, BookmarkProjectionDegraded) {
		t.Error("1.5x average should not trigger")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 300, DivAfterMean: 0.05}); !hasBookmark(bms, BookmarkProjectionDegraded) {
		t.Error("expected projection_degraded bookmark")
	}
}

func TestBookmarkDetector_InstabilityFiresOnTransition(t *testing.T) {
	bd := NewBookmarkDetector(5)

	if bms := bd.Check(WindowStats{WindowEndTick: 60, NonFinite: 12}); !hasBookmark(bms, BookmarkInstability) {
		t.Fatal("expected instability bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 120, NonFinite: 40}); hasBookmark(bms, BookmarkInstability) {
		t.Error("instability fired twice without recovering")
	}
	bd.Check(WindowStats{WindowEndTick: 180})
	if bms := bd.Check(WindowStats{WindowEndTick: 240, NonFinite: 1}); !hasBookmark(bms, BookmarkInstability) {
		t.Error("expected instability bookmark after recovery")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(5)

	bd.Check(WindowStats{WindowEndTick: 60, EnergyMean: 100, ActiveSteps: 60})
	bd.Check(WindowStats{WindowEndTick: 120, EnergyMean: 20})

	bms := bd.Check(WindowStats{WindowEndTick: 180, EnergyMean: 0.5})
	if !hasBookmark(bms, BookmarkSettled) {
		t.Fatal("expected settled bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 240, EnergyMean: 0.1}); hasBookmark(bms, BookmarkSettled) {
		t.Error("settled fired twice in one calm period")
	}

	// New input re-arms the detector.
	bd.Check(WindowStats{WindowEndTick: 300, EnergyMean: 50, ActiveSteps: 30})
	if bms := bd.Check(WindowStats{WindowEndTick: 360, EnergyMean: 0.2}); !hasBookmark(bms, BookmarkSettled) {
		t.Error("expected settled bookmark after a second stroke")
	}
}

func TestBookmarkDetector_NoFalsePositives(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 20; i++ {
		stats := WindowStats{
			WindowEndTick: int64(i * 60),
			EnergyMean:    2 + 0.1*float64(i%3),
			DivAfterMean:  0.01,
			ActiveSteps:   30,
		}
		if bms := bd.Check(stats); len(bms) > 0 {
			t.Fatalf("window %d: unexpected bookmarks %v", i, bms)
		}
	}
}
