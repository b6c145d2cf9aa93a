package locomotion

import "github.com/jakecoffman/cp"

// ContactPhase tells whether a contact began, persisted through a step, or ended.
type ContactPhase int

const (
	ContactBegin ContactPhase = iota
	ContactStay
	ContactExit
)

// ContactEvent is reported by the physics integrator once per contact per
// step. Normal points from the other surface toward the agent.
type ContactEvent struct {
	Phase  ContactPhase
	Normal cp.Vector
	Other  any
}

// RayHit is the first surface hit by a probe ray.
type RayHit struct {
	Point  cp.Vector
	Normal cp.Vector
}

// Body is the slice of the physics integrator the core drives.
type Body interface {
	Position() cp.Vector
	Velocity() cp.Vector
	SetVelocity(v cp.Vector)
	ApplyImpulse(j cp.Vector)
	GravityScale() float64
	Mass() float64
}

// Prober answers the secondary ground checks. Implementations must exclude
// the agent's own collision shape.
type Prober interface {
	Bounds() cp.BB
	ShapeProbe(distance float64) bool
	Raycast(origin, dir cp.Vector, length float64) (RayHit, bool)
}

// PathPlanner is the external path search. RemainingPath returns the ordered
// points still ahead of the agent and whether they are mid-recompute.
type PathPlanner interface {
	SetDestination(p cp.Vector)
	RemainingPath() ([]cp.Vector, bool)
	HasPath() bool
}

// Steering is optionally implemented by planners with a path-follow primitive.
type Steering interface {
	SteeringTarget() (cp.Vector, bool)
	DesiredVelocity() cp.Vector
}

// TargetProvider reports the pursued position; ok is false when the target is lost.
type TargetProvider interface {
	TargetPosition() (cp.Vector, bool)
}

// TargetFunc adapts a function to TargetProvider.
type TargetFunc func() (cp.Vector, bool)

func (f TargetFunc) TargetPosition() (cp.Vector, bool) { return f() }

// Hooks lets animation and attack-effect systems observe the core. None of
// the core logic waits on them.
type Hooks struct {
	OnStateChange func(from, to BehaviorState)
	OnJump        func(intent JumpIntent)
	OnAttack      func(target cp.Vector)
	// OnConfig runs after SetConfig accepts a new tuning.
	OnConfig func(cfg Config)
}
