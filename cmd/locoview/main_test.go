package main

import (
	"testing"

	"github.com/milk9111/pursuit/sim"
)

func TestViewerPauseControls(t *testing.T) {
	v, err := newViewer(sim.Options{}, 10)
	if err != nil {
		t.Fatalf("new viewer: %v", err)
	}
	if v.pauseUI == nil || v.pauseUI.Container == nil {
		t.Fatalf("viewer has no pause panel")
	}
	if panels := v.pauseUI.Container.Children(); len(panels) != 1 {
		t.Fatalf("root holds %d widgets, want the one panel", len(panels))
	}

	tick := func() int { return v.sim.Snapshot().Tick }

	v.paused = true
	v.advance()
	if tick() != 0 {
		t.Fatalf("paused viewer stepped to tick %d", tick())
	}

	v.requestStep()
	v.advance()
	v.advance()
	if tick() != 1 {
		t.Fatalf("step advanced to tick %d, want exactly 1", tick())
	}

	v.resume()
	v.advance()
	if v.paused || tick() != 2 {
		t.Fatalf("after resume paused=%v tick=%d, want running at 2", v.paused, tick())
	}

	v.reset()
	if tick() != 0 {
		t.Fatalf("reset left tick at %d", tick())
	}
}
