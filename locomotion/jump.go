package locomotion

import (
	"math"

	"github.com/jakecoffman/cp"
)

// JumpIntent is a planned jump over the next climb on the path.
type JumpIntent struct {
	TakeoffX  float64
	LandingX  float64
	Climb     float64
	Direction float64
	Lead      float64
	ClimbTime float64
	// Steep is set when a wall-like segment contributed to the climb.
	Steep bool
	// Armed is set once the agent is in the takeoff window and may jump.
	Armed bool
}

// RunThroughTarget forces airborne travel to X before steering resumes.
type RunThroughTarget struct {
	X         float64
	Direction float64
}

// Passed reports whether x is at or beyond the target in travel direction.
func (r RunThroughTarget) Passed(x float64) bool {
	return (x-r.X)*r.Direction >= 0
}

type climbSpan struct {
	start int
	end   int
	climb float64
	meanX float64
	steep bool
}

// JumpPlanner scans the polyline for climbs and times the takeoff so the
// parabola clears the rise.
type JumpPlanner struct {
	cfg *Config

	intent    JumpIntent
	hasIntent bool

	tracking  bool
	startY    float64
	desired   float64
	landingX  float64
	direction float64

	runThrough    RunThroughTarget
	hasRunThrough bool
}

func NewJumpPlanner(cfg *Config) *JumpPlanner {
	return &JumpPlanner{cfg: cfg}
}

// Evaluate returns the jump intent for this tick, or nil when there is no
// qualifying climb. It only depends on its inputs, so repeated calls within a
// tick agree.
func (p *JumpPlanner) Evaluate(state AgentState, target cp.Vector, hasTarget bool, path Polyline) *JumpIntent {
	if p == nil || p.cfg == nil {
		return nil
	}
	intent, ok := p.plan(state, target, hasTarget, path)
	p.intent = intent
	p.hasIntent = ok
	if !ok {
		return nil
	}
	out := intent
	return &out
}

// Intent returns the intent from the last Evaluate.
func (p *JumpPlanner) Intent() (JumpIntent, bool) {
	if p == nil {
		return JumpIntent{}, false
	}
	return p.intent, p.hasIntent
}

func (p *JumpPlanner) plan(state AgentState, target cp.Vector, hasTarget bool, path Polyline) (JumpIntent, bool) {
	cfg := p.cfg
	pos := state.Position

	if hasTarget && pos.Distance(target) < cfg.MinJumpTargetDistance {
		return JumpIntent{}, false
	}
	if !path.Usable() {
		return JumpIntent{}, false
	}

	points := path.Points
	span, ok := p.findClimb(points, path.Nearest(pos))
	if !ok {
		return JumpIntent{}, false
	}
	half := cfg.JumpHeightThreshold / 2
	if span.climb < cfg.JumpHeightThreshold && !(span.steep && span.climb >= half) {
		return JumpIntent{}, false
	}

	climbEndX := points[span.end].X
	runX := climbEndX
	for j := span.end + 1; j < len(points); j++ {
		if points[j].Y < points[j-1].Y-cfg.FlatEpsilon {
			runX = points[j-1].X
			break
		}
		if math.Abs(points[j].X-climbEndX) > cfg.LandingEpsilon {
			runX = points[j].X
			break
		}
	}
	dir := sign(runX - climbEndX)
	if dir == 0 {
		dir = sign(span.meanX - pos.X)
	}
	if dir == 0 {
		dir = sign(state.Facing)
	}
	if dir == 0 {
		dir = 1
	}

	scale := state.gravityScale()
	g := cfg.WorldGravity * scale
	v0 := cfg.LaunchVelocity(state.mass())
	climbTime := TimeToHeight(g, v0, span.climb)

	vx := state.Velocity.X
	heuristic := math.Min(cfg.LeadBase+math.Abs(vx)*cfg.LeadSlopeFactor, cfg.LeadMax)
	lead := math.Min(heuristic, climbTime+cfg.LeadOffset)

	intent := JumpIntent{
		TakeoffX:  span.meanX,
		LandingX:  runX,
		Climb:     span.climb,
		Direction: dir,
		Lead:      lead,
		ClimbTime: climbTime,
		Steep:     span.steep,
	}

	tol := cfg.JumpTolerance
	if span.steep {
		tol *= 2
	}

	dist := math.Abs(intent.TakeoffX - pos.X)
	reach := math.Abs(vx)*climbTime + math.Max(cfg.ReachTolerance, tol)
	if dist > reach {
		// Too far to cover during the climb; keep approaching.
		return intent, true
	}

	predicted := pos.X + vx*lead
	approaching := vx != 0 && sign(vx) == sign(intent.TakeoffX-pos.X)
	switch {
	case math.Abs(predicted-intent.TakeoffX) <= tol:
		intent.Armed = true
	case dist <= tol:
		intent.Armed = true
	case approaching && dist <= math.Abs(vx)*lead+tol:
		intent.Armed = true
	}
	if !state.Grounded || state.JumpLocked {
		intent.Armed = false
	}
	return intent, true
}

func (p *JumpPlanner) isSteep(a, b cp.Vector) bool {
	dy := b.Y - a.Y
	if dy <= p.cfg.SteepMinHeight {
		return false
	}
	dx := math.Abs(b.X - a.X)
	if dx == 0 {
		return true
	}
	return dy/dx > p.cfg.SteepSlopeRatio
}

// findClimb walks forward from index from, skipping flat and descending
// segments inside the look-ahead window, then accumulates the first run of
// rising segments.
func (p *JumpPlanner) findClimb(points []cp.Vector, from int) (climbSpan, bool) {
	cfg := p.cfg
	if from < 0 {
		from = 0
	}
	last := from + cfg.LookAheadSegments
	if last > len(points)-1 {
		last = len(points) - 1
	}

	start := -1
	for k := from; k < last; k++ {
		if points[k+1].Y-points[k].Y > cfg.FlatEpsilon {
			start = k
			break
		}
	}
	if start < 0 {
		return climbSpan{}, false
	}

	span := climbSpan{start: start, end: start}
	sumX := points[start].X
	n := 1.0
	for k := start; k < len(points)-1; k++ {
		a, b := points[k], points[k+1]
		dy := b.Y - a.Y
		if dy <= cfg.FlatEpsilon {
			break
		}
		span.climb += dy
		span.end = k + 1
		sumX += b.X
		n++
		if p.isSteep(a, b) {
			span.steep = true
		}
		if span.climb >= cfg.JumpHeightThreshold {
			break
		}
	}
	span.meanX = sumX / n
	return span, true
}

// BeginJump records an executed jump so the ascent can be tracked.
func (p *JumpPlanner) BeginJump(intent JumpIntent, startY float64) {
	if p == nil {
		return
	}
	p.tracking = true
	p.startY = startY
	p.desired = intent.Climb
	p.landingX = intent.LandingX
	p.direction = intent.Direction
	p.hasRunThrough = false
	p.hasIntent = false
	p.intent = JumpIntent{}
}

// Track follows the ascent. Once the climbed height reaches the planned
// height a run-through target is armed; it is dropped once passed.
func (p *JumpPlanner) Track(pos cp.Vector) {
	if p == nil || p.cfg == nil {
		return
	}
	if p.tracking && pos.Y-p.startY >= p.desired {
		p.runThrough = RunThroughTarget{
			X:         p.landingX + p.cfg.RunThroughBias*p.direction,
			Direction: p.direction,
		}
		p.hasRunThrough = true
		p.tracking = false
	}
	if p.hasRunThrough && p.runThrough.Passed(pos.X) {
		p.hasRunThrough = false
	}
}

// RunThrough returns the pending run-through target, if any.
func (p *JumpPlanner) RunThrough() (RunThroughTarget, bool) {
	if p == nil {
		return RunThroughTarget{}, false
	}
	return p.runThrough, p.hasRunThrough
}

// DesiredHeight is the climb the current jump is tracking, zero when idle.
func (p *JumpPlanner) DesiredHeight() float64 {
	if p == nil || !p.tracking {
		return 0
	}
	return p.desired
}

// Landed resets ascent tracking after verified ground contact.
func (p *JumpPlanner) Landed() {
	if p == nil {
		return
	}
	p.tracking = false
	p.desired = 0
	p.hasRunThrough = false
	p.runThrough = RunThroughTarget{}
}

// Clear drops any pending intent and tracking.
func (p *JumpPlanner) Clear() {
	if p == nil {
		return
	}
	p.Landed()
	p.hasIntent = false
	p.intent = JumpIntent{}
}
