package app

import "github.com/pthm-cable/stirfluid/fluid"

// LatchedPointer holds the pointer state for the current frame. The viewer
// sets it once per frame; every step of that frame reads the same value.
type LatchedPointer struct {
	p fluid.Pointer
}

// Set replaces the latched state.
func (l *LatchedPointer) Set(p fluid.Pointer) { l.p = p }

// Pointer implements fluid.PointerSource.
func (l *LatchedPointer) Pointer() fluid.Pointer { return l.p }

type firstActive []fluid.PointerSource

// FirstActive combines sources in priority order. Every source is polled on
// each call, so stateful sources (trackers, scripted movers) advance in step
// with the solver; the first active pointer wins.
func FirstActive(sources ...fluid.PointerSource) fluid.PointerSource {
	return firstActive(sources)
}

func (f firstActive) Pointer() fluid.Pointer {
	var out fluid.Pointer
	for _, src := range f {
		p := src.Pointer()
		if p.Active && !out.Active {
			out = p
		}
	}
	return out
}
