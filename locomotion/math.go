package locomotion

import "math"

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// TimeToHeight returns the earliest time a body launched upward at v0 under
// gravity g reaches height h, the smaller positive root of
// 0.5*g*t^2 - v0*t + h = 0. When the height is out of reach it returns the
// time to apex, v0/g.
func TimeToHeight(g, v0, h float64) float64 {
	if g <= 0 {
		if v0 <= 0 {
			return 0
		}
		return h / v0
	}
	disc := v0*v0 - 2*g*h
	if disc < 0 {
		return v0 / g
	}
	root := math.Sqrt(disc)
	t1 := (v0 - root) / g
	t2 := (v0 + root) / g
	if t1 > 0 {
		return t1
	}
	if t2 > 0 {
		return t2
	}
	return v0 / g
}
