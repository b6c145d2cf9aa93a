package locomotion

import "github.com/jakecoffman/cp"

// LocomotionContext holds an agent's per-tick mutable fields. Timers count
// down once per Tick.
type LocomotionContext struct {
	Time float64

	Spawn     cp.Vector
	Facing    float64
	PatrolDir float64

	PatrolTimer    float64
	AttackCooldown float64
	JumpCooldown   float64

	JumpLocked   bool
	LastJumpTime float64
	LastAttackAt float64

	Grounded            bool
	GroundedByCollision bool
	WallLeft            bool
	WallRight           bool

	Direction float64
}

func (c *LocomotionContext) countdown(dt float64) {
	c.Time += dt
	c.PatrolTimer = max(c.PatrolTimer-dt, 0)
	c.AttackCooldown = max(c.AttackCooldown-dt, 0)
	c.JumpCooldown = max(c.JumpCooldown-dt, 0)
}
