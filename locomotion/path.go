package locomotion

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Polyline is one tick's snapshot of the planner's remaining path. The
// points belong to the planner and are never modified here.
type Polyline struct {
	Points []cp.Vector
	Stale  bool
}

// Usable reports whether the polyline can steer or plan jumps.
func (p Polyline) Usable() bool {
	return !p.Stale && len(p.Points) >= 2
}

// Nearest returns the index of the point closest to pos, or -1 when empty.
func (p Polyline) Nearest(pos cp.Vector) int {
	best := -1
	bestDist := math.Inf(1)
	for i, pt := range p.Points {
		d := pt.DistanceSq(pos)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// PathSampler pulls the planner's polyline once per tick.
type PathSampler struct {
	planner  PathPlanner
	snapshot Polyline
}

func NewPathSampler(planner PathPlanner) *PathSampler {
	return &PathSampler{planner: planner}
}

// Refresh replaces the snapshot with the planner's current path.
func (s *PathSampler) Refresh() Polyline {
	if s == nil {
		return Polyline{Stale: true}
	}
	if s.planner == nil || !s.planner.HasPath() {
		s.snapshot = Polyline{}
		return s.snapshot
	}
	points, stale := s.planner.RemainingPath()
	s.snapshot = Polyline{Points: points, Stale: stale}
	return s.snapshot
}

// Snapshot returns the polyline from the last Refresh.
func (s *PathSampler) Snapshot() Polyline {
	if s == nil {
		return Polyline{Stale: true}
	}
	return s.snapshot
}

// Steering exposes the planner's path-follow primitive when it has one.
func (s *PathSampler) Steering() (Steering, bool) {
	if s == nil || s.planner == nil {
		return nil, false
	}
	st, ok := s.planner.(Steering)
	return st, ok
}
