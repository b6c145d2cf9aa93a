package locomotion

import "github.com/jakecoffman/cp"

// BehaviorState selects which locomotion intent is active.
type BehaviorState int

const (
	Patrol BehaviorState = iota
	Chase
	Attack
	Idle
)

func (s BehaviorState) String() string {
	switch s {
	case Patrol:
		return "patrol"
	case Chase:
		return "chase"
	case Attack:
		return "attack"
	case Idle:
		return "idle"
	}
	return "unknown"
}

// ResolveBehavior maps distance-to-target onto a state.
func ResolveBehavior(distance, attackRange, detectionRange float64) BehaviorState {
	switch {
	case distance <= attackRange:
		return Attack
	case distance <= detectionRange:
		return Chase
	default:
		return Patrol
	}
}

// AgentState is the kinematic and stance view of the agent for one tick.
type AgentState struct {
	Position            cp.Vector
	Velocity            cp.Vector
	Facing              float64
	Grounded            bool
	GroundedByCollision bool
	WallLeft            bool
	WallRight           bool
	LastJumpTime        float64
	JumpLocked          bool
	Time                float64
	GravityScale        float64
	Mass                float64
}

func (s AgentState) gravityScale() float64 {
	if s.GravityScale <= 0 {
		return 1
	}
	return s.GravityScale
}

func (s AgentState) mass() float64 {
	if s.Mass <= 0 {
		return 1
	}
	return s.Mass
}

// CanJump is the execution guard: a jump needs verified ground contact and
// no outstanding lock.
func (s AgentState) CanJump() bool {
	return s.GroundedByCollision && !s.JumpLocked
}
