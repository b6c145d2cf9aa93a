package locomotion

import (
	"math"

	"github.com/jakecoffman/cp"
)

// ChaseSource names the branch that produced a chase direction.
type ChaseSource int

const (
	ChaseVerticalOffset ChaseSource = iota
	ChasePathLookAhead
	ChaseSteeringTarget
	ChaseDesiredVelocity
	ChaseLineOfSight
)

// ChaseDirector resolves one horizontal direction per tick and remembers the
// last non-zero answer to ride out noise near the goal.
type ChaseDirector struct {
	cfg     *Config
	lastDir float64
	source  ChaseSource
}

func NewChaseDirector(cfg *Config) *ChaseDirector {
	return &ChaseDirector{cfg: cfg}
}

// Resolve returns -1, 0 or +1. steering may be nil.
func (d *ChaseDirector) Resolve(state AgentState, target cp.Vector, path Polyline, steering Steering) float64 {
	if d == nil || d.cfg == nil {
		return 0
	}
	cfg := d.cfg
	pos := state.Position

	if target.Y-pos.Y >= cfg.VerticalGapThreshold {
		side := sign(target.X - pos.X)
		if side == 0 {
			side = d.fallbackSide(state)
		}
		goal := target.X - side*cfg.VerticalOffset
		d.source = ChaseVerticalOffset
		return d.decide(goal - pos.X)
	}

	if path.Usable() {
		idx := path.Nearest(pos) + cfg.ChaseLookAhead
		if idx > len(path.Points)-1 {
			idx = len(path.Points) - 1
		}
		d.source = ChasePathLookAhead
		return d.decide(path.Points[idx].X - pos.X)
	}

	if steering != nil {
		if st, ok := steering.SteeringTarget(); ok {
			d.source = ChaseSteeringTarget
			return d.decide(st.X - pos.X)
		}
		if v := steering.DesiredVelocity(); v.X != 0 {
			d.source = ChaseDesiredVelocity
			return d.decideSign(v.X)
		}
	}

	d.source = ChaseLineOfSight
	return d.decide(target.X - pos.X)
}

func (d *ChaseDirector) decide(delta float64) float64 {
	abs := math.Abs(delta)
	if abs <= d.cfg.StopDistance {
		return 0
	}
	if abs < d.cfg.Deadzone && d.lastDir != 0 {
		return d.lastDir
	}
	d.lastDir = sign(delta)
	return d.lastDir
}

// decideSign is used when only a velocity direction is known; there is no
// distance to compare against the deadzone.
func (d *ChaseDirector) decideSign(v float64) float64 {
	d.lastDir = sign(v)
	return d.lastDir
}

func (d *ChaseDirector) fallbackSide(state AgentState) float64 {
	if d.lastDir != 0 {
		return d.lastDir
	}
	if state.Facing != 0 {
		return sign(state.Facing)
	}
	return 1
}

// LastDirection is the remembered non-zero direction, zero before the first decision.
func (d *ChaseDirector) LastDirection() float64 {
	if d == nil {
		return 0
	}
	return d.lastDir
}

// Source reports which branch produced the last result.
func (d *ChaseDirector) Source() ChaseSource {
	if d == nil {
		return ChaseLineOfSight
	}
	return d.source
}

func (d *ChaseDirector) Reset() {
	if d == nil {
		return
	}
	d.lastDir = 0
	d.source = ChaseLineOfSight
}
