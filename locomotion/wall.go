package locomotion

import "math"

// WallContactSensor tracks side contacts. Flags persist until a contact exits.
type WallContactSensor struct {
	cfg   *Config
	left  bool
	right bool
}

func NewWallContactSensor(cfg *Config) *WallContactSensor {
	return &WallContactSensor{cfg: cfg}
}

func (s *WallContactSensor) Update(events []ContactEvent) (wallLeft, wallRight bool) {
	if s == nil || s.cfg == nil {
		return false, false
	}
	for _, ev := range events {
		if ev.Phase == ContactExit {
			s.left = false
			s.right = false
			continue
		}
		if math.Abs(ev.Normal.Y) > s.cfg.GroundNormalMinY {
			continue
		}
		if ev.Normal.X > s.cfg.WallNormalMinX {
			s.left = true
		} else if ev.Normal.X < -s.cfg.WallNormalMinX {
			s.right = true
		}
	}
	return s.left, s.right
}

func (s *WallContactSensor) Walls() (wallLeft, wallRight bool) {
	if s == nil {
		return false, false
	}
	return s.left, s.right
}

func (s *WallContactSensor) Reset() {
	if s == nil {
		return
	}
	s.left = false
	s.right = false
}

// ClampThrust keeps the desired horizontal velocity from pushing further into
// a contacted wall. Velocity already carried toward the wall is kept, and the
// result never reverses direction because of the clamp.
func ClampThrust(desired, current float64, wallLeft, wallRight bool) float64 {
	if wallRight && desired > 0 {
		return math.Min(desired, math.Max(current, 0))
	}
	if wallLeft && desired < 0 {
		return math.Max(desired, math.Min(current, 0))
	}
	return desired
}
