package locomotion

import "github.com/jakecoffman/cp"

// GroundReading is the fused stance for one tick.
type GroundReading struct {
	Grounded    bool
	ByCollision bool
	// Landed is set on the tick ByCollision turns true.
	Landed bool
}

// GroundContactSensor debounces ground contact from three signal tiers:
// contact normals, a short shape probe and two foot rays.
type GroundContactSensor struct {
	cfg *Config

	byCollision     bool
	seenCollision   bool
	lastCollisionAt float64
	reading         GroundReading
}

func NewGroundContactSensor(cfg *Config) *GroundContactSensor {
	return &GroundContactSensor{cfg: cfg}
}

// Update folds this tick's contact events into the grounded flag. prober may
// be nil, in which case only contacts and coyote time count.
func (s *GroundContactSensor) Update(now float64, events []ContactEvent, prober Prober) GroundReading {
	if s == nil || s.cfg == nil {
		return GroundReading{}
	}

	was := s.byCollision
	byCollision := false
	for _, ev := range events {
		if ev.Phase == ContactExit {
			continue
		}
		if ev.Normal.Y > s.cfg.GroundNormalMinY {
			byCollision = true
			break
		}
	}
	s.byCollision = byCollision
	if byCollision {
		s.seenCollision = true
		s.lastCollisionAt = now
	}

	probeHit := false
	if !byCollision && len(events) == 0 && prober != nil {
		probeHit = prober.ShapeProbe(s.cfg.ProbeDistance)
		if !probeHit {
			probeHit = s.footRays(prober)
		}
	}

	coyote := s.seenCollision && now-s.lastCollisionAt <= s.cfg.CoyoteTime

	s.reading = GroundReading{
		Grounded:    byCollision || probeHit || coyote,
		ByCollision: byCollision,
		Landed:      byCollision && !was,
	}
	return s.reading
}

func (s *GroundContactSensor) footRays(prober Prober) bool {
	bb := prober.Bounds()
	down := cp.Vector{X: 0, Y: -1}
	feet := [2]cp.Vector{
		{X: bb.L + s.cfg.FootInset, Y: bb.B},
		{X: bb.R - s.cfg.FootInset, Y: bb.B},
	}
	for _, foot := range feet {
		hit, ok := prober.Raycast(foot, down, s.cfg.FootRayLength)
		if ok && hit.Normal.Y > s.cfg.GroundNormalMinY {
			return true
		}
	}
	return false
}

// Reading returns the result of the last Update.
func (s *GroundContactSensor) Reading() GroundReading {
	if s == nil {
		return GroundReading{}
	}
	return s.reading
}

// Reset forgets all contact history, e.g. after a teleport or respawn.
func (s *GroundContactSensor) Reset() {
	if s == nil {
		return
	}
	s.byCollision = false
	s.seenCollision = false
	s.lastCollisionAt = 0
	s.reading = GroundReading{}
}
