package locomotion

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestTimeToHeight(t *testing.T) {
	cases := []struct {
		name      string
		g, v0, h  float64
		want      float64
		tolerance float64
	}{
		{"smaller_root", 20, 10, 1, (10 - math.Sqrt(60)) / 20, 1e-9},
		{"smaller_root_tall", 20, 13, 3, 0.3, 1e-9},
		{"discriminant_negative_h3", 20, 10, 3, 0.5, 1e-9},
		{"discriminant_negative_h10", 20, 10, 10, 0.5, 1e-9},
		{"exact_apex", 20, 10, 2.5, 0.5, 1e-9},
		{"no_gravity", 0, 5, 2, 0.4, 1e-9},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := TimeToHeight(c.g, c.v0, c.h)
			if math.Abs(got-c.want) > c.tolerance {
				t.Fatalf("TimeToHeight(%g, %g, %g) = %g, want %g", c.g, c.v0, c.h, got, c.want)
			}
		})
	}
}

func stepConfig() Config {
	cfg := DefaultConfig()
	cfg.JumpHeightThreshold = 2
	return cfg
}

func groundedAt(x, y, vx float64) AgentState {
	return AgentState{
		Position:            cp.Vector{X: x, Y: y},
		Velocity:            cp.Vector{X: vx},
		Facing:              1,
		Grounded:            true,
		GroundedByCollision: true,
		GravityScale:        1,
		Mass:                1,
	}
}

func TestJumpPlannerVerticalStep(t *testing.T) {
	cfg := stepConfig()
	path := Polyline{Points: pts(0, 0, 2, 0, 2, 3, 5, 3)}
	far := cp.Vector{X: 20, Y: 3}

	cases := []struct {
		name      string
		state     AgentState
		wantArmed bool
	}{
		{"within_tolerance", groundedAt(1.8, 0, 0), true},
		{"standing_far", groundedAt(0, 0, 0), false},
		{"running_early", groundedAt(0, 0, 4), false},
		{"running_in_window", groundedAt(1.0, 0, 4), true},
		{"airborne", func() AgentState { s := groundedAt(1.8, 0, 0); s.Grounded = false; return s }(), false},
		{"locked", func() AgentState { s := groundedAt(1.8, 0, 0); s.JumpLocked = true; return s }(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewJumpPlanner(&cfg)
			intent := p.Evaluate(c.state, far, true, path)
			if intent == nil {
				t.Fatalf("expected a climb to be found")
			}
			if math.Abs(intent.Climb-3) > 1e-9 {
				t.Fatalf("climb = %g, want 3", intent.Climb)
			}
			if math.Abs(intent.TakeoffX-2) > 1e-9 {
				t.Fatalf("takeoff x = %g, want 2", intent.TakeoffX)
			}
			if intent.Direction != 1 {
				t.Fatalf("direction = %g, want 1", intent.Direction)
			}
			if intent.LandingX != 5 {
				t.Fatalf("landing x = %g, want 5", intent.LandingX)
			}
			if !intent.Steep {
				t.Fatalf("vertical step should be steep")
			}
			if intent.Armed != c.wantArmed {
				t.Fatalf("armed = %v, want %v", intent.Armed, c.wantArmed)
			}
		})
	}
}

func TestJumpPlannerRejects(t *testing.T) {
	cfg := stepConfig()
	step := pts(0, 0, 2, 0, 2, 3, 5, 3)
	cases := []struct {
		name   string
		target cp.Vector
		path   Polyline
	}{
		{"stale", cp.Vector{X: 20}, Polyline{Points: step, Stale: true}},
		{"single_point", cp.Vector{X: 20}, Polyline{Points: pts(2, 3)}},
		{"empty", cp.Vector{X: 20}, Polyline{}},
		{"target_adjacent", cp.Vector{X: 2.2, Y: 0}, Polyline{Points: step}},
		{"flat", cp.Vector{X: 20}, Polyline{Points: pts(0, 0, 2, 0, 5, 0)}},
		{"descending", cp.Vector{X: 20}, Polyline{Points: pts(0, 3, 2, 3, 2, 0, 5, 0)}},
		{"gentle_short_rise", cp.Vector{X: 20}, Polyline{Points: pts(0, 0, 2, 0, 4, 1.1, 6, 1.1)}},
		{"beyond_lookahead", cp.Vector{X: 20}, Polyline{Points: pts(0, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7, 0, 8, 0, 8, 3)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewJumpPlanner(&cfg)
			if intent := p.Evaluate(groundedAt(1.8, 0, 0), c.target, true, c.path); intent != nil {
				t.Fatalf("expected no intent, got %+v", *intent)
			}
			if _, ok := p.Intent(); ok {
				t.Fatalf("planner should not hold an intent")
			}
		})
	}
}

func TestJumpPlannerSteepShortStepForced(t *testing.T) {
	cfg := stepConfig()
	p := NewJumpPlanner(&cfg)
	path := Polyline{Points: pts(0, 0, 2, 0, 2, 1.1, 4, 1.1)}
	intent := p.Evaluate(groundedAt(1.4, 0, 0), cp.Vector{X: 20}, true, path)
	if intent == nil {
		t.Fatalf("a steep step of at least half the threshold should qualify")
	}
	if !intent.Steep {
		t.Fatalf("expected steep flag")
	}
	// 0.6 from the takeoff only passes with the doubled tolerance.
	if !intent.Armed {
		t.Fatalf("expected relaxed tolerance to arm the jump")
	}
}

func TestJumpPlannerClimbAccumulatesAndStops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JumpHeightThreshold = 1.2
	p := NewJumpPlanner(&cfg)
	path := Polyline{Points: pts(0, 0, 1, 0, 2, 0.5, 3, 1.0, 4, 1.5, 5, 2.0, 7, 2.0)}
	intent := p.Evaluate(groundedAt(0.5, 0, 0), cp.Vector{X: 20, Y: 2}, true, path)
	if intent == nil {
		t.Fatalf("expected a ramp climb")
	}
	if math.Abs(intent.Climb-1.5) > 1e-9 {
		t.Fatalf("climb = %g, want 1.5 (stops once threshold reached)", intent.Climb)
	}
	if math.Abs(intent.TakeoffX-2.5) > 1e-9 {
		t.Fatalf("takeoff x = %g, want mean 2.5", intent.TakeoffX)
	}
	if intent.Steep {
		t.Fatalf("gentle ramp is not steep")
	}
}

func TestJumpPlannerDirectionFallback(t *testing.T) {
	cfg := stepConfig()
	cases := []struct {
		name  string
		path  []cp.Vector
		x     float64
		wantD float64
	}{
		{"ends_at_climb_right", pts(0, 0, 2, 0, 2, 3), 1.5, 1},
		{"ends_at_climb_left", pts(4, 0, 2, 0, 2, 3), 2.5, -1},
		{"landing_left", pts(4, 0, 2, 0, 2, 3, 0, 3), 2.5, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewJumpPlanner(&cfg)
			intent := p.Evaluate(groundedAt(c.x, 0, 0), cp.Vector{X: -20}, true, Polyline{Points: c.path})
			if intent == nil {
				t.Fatalf("expected intent")
			}
			if intent.Direction != c.wantD {
				t.Fatalf("direction = %g, want %g", intent.Direction, c.wantD)
			}
		})
	}
}

func TestJumpPlannerIdempotent(t *testing.T) {
	cfg := stepConfig()
	p := NewJumpPlanner(&cfg)
	path := Polyline{Points: pts(0, 0, 2, 0, 2, 3, 5, 3)}
	state := groundedAt(1.2, 0, 3)
	first := p.Evaluate(state, cp.Vector{X: 9}, true, path)
	second := p.Evaluate(state, cp.Vector{X: 9}, true, path)
	if first == nil || second == nil {
		t.Fatalf("expected intents")
	}
	if *first != *second {
		t.Fatalf("evaluate not idempotent: %+v vs %+v", *first, *second)
	}
}

func TestJumpPlannerRunThrough(t *testing.T) {
	cfg := stepConfig()
	p := NewJumpPlanner(&cfg)
	p.BeginJump(JumpIntent{Climb: 3, LandingX: 5, Direction: 1}, 0)

	if got := p.DesiredHeight(); got != 3 {
		t.Fatalf("desired height = %g, want 3", got)
	}
	p.Track(cp.Vector{X: 2.2, Y: 2.9})
	if _, ok := p.RunThrough(); ok {
		t.Fatalf("run-through armed before reaching the climb height")
	}
	p.Track(cp.Vector{X: 2.3, Y: 3.0})
	rt, ok := p.RunThrough()
	if !ok {
		t.Fatalf("run-through should be armed at climb height")
	}
	wantX := 5 + cfg.RunThroughBias
	if rt.X != wantX || rt.Direction != 1 {
		t.Fatalf("run-through = %+v, want x=%g dir=1", rt, wantX)
	}
	p.Track(cp.Vector{X: wantX + 0.01, Y: 3.2})
	if _, ok := p.RunThrough(); ok {
		t.Fatalf("run-through should clear once passed")
	}
}

func TestJumpPlannerLandedClearsTracking(t *testing.T) {
	cfg := stepConfig()
	p := NewJumpPlanner(&cfg)
	p.BeginJump(JumpIntent{Climb: 1, LandingX: 3, Direction: -1}, 0)
	p.Track(cp.Vector{X: 4, Y: 1.5})
	if _, ok := p.RunThrough(); !ok {
		t.Fatalf("expected run-through")
	}
	p.Landed()
	if _, ok := p.RunThrough(); ok {
		t.Fatalf("landing should clear the run-through target")
	}
	if p.DesiredHeight() != 0 {
		t.Fatalf("landing should reset desired height")
	}
}
