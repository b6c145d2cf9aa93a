package locomotion

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

const maxPendingContacts = 64

// Intent is what the core hands to the physics integrator and animation
// consumers each tick.
type Intent struct {
	Direction float64
	Jump      bool
	Attack    bool
	State     BehaviorState
}

// LocomotionStrategy is the pluggable brain held by an AgentBody.
type LocomotionStrategy interface {
	Tick(dt float64) Intent
	Reset()
	State() BehaviorState
}

// MachineOptions wires a Machine to its collaborators. Prober, Planner and
// Target may be nil; the machine then degrades to fewer signals.
type MachineOptions struct {
	Body    Body
	Prober  Prober
	Planner PathPlanner
	Target  TargetProvider
	Hooks   Hooks
}

// Machine is the Patrol/Chase/Attack/Idle locomotion state machine.
type Machine struct {
	cfg    Config
	body   Body
	prober Prober
	target TargetProvider
	hooks  Hooks

	ground  *GroundContactSensor
	wall    *WallContactSensor
	sampler *PathSampler
	jumps   *JumpPlanner
	chase   *ChaseDirector

	ctx      LocomotionContext
	state    BehaviorState
	contacts []ContactEvent
	last     Intent
}

func NewMachine(cfg Config, opts MachineOptions) (*Machine, error) {
	if opts.Body == nil {
		return nil, ErrNilBody
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("locomotion: new machine: %w", err)
	}
	m := &Machine{
		cfg:    cfg,
		body:   opts.Body,
		prober: opts.Prober,
		target: opts.Target,
		hooks:  opts.Hooks,
		state:  Patrol,
	}
	m.ground = NewGroundContactSensor(&m.cfg)
	m.wall = NewWallContactSensor(&m.cfg)
	m.sampler = NewPathSampler(opts.Planner)
	m.jumps = NewJumpPlanner(&m.cfg)
	m.chase = NewChaseDirector(&m.cfg)

	m.ctx.Spawn = opts.Body.Position()
	m.ctx.Facing = 1
	m.ctx.PatrolDir = 1
	m.ctx.PatrolTimer = cfg.PatrolWait
	return m, nil
}

// PushContacts queues contact events reported by the integrator for the next Tick.
func (m *Machine) PushContacts(events ...ContactEvent) {
	if m == nil {
		return
	}
	m.contacts = append(m.contacts, events...)
	if over := len(m.contacts) - maxPendingContacts; over > 0 {
		m.contacts = append(m.contacts[:0], m.contacts[over:]...)
	}
}

// Tick runs one fixed step: sense, sample the path, act on the current
// state, then pick the state for the next tick.
func (m *Machine) Tick(dt float64) Intent {
	if m == nil {
		return Intent{State: Idle}
	}
	m.ctx.countdown(dt)
	now := m.ctx.Time

	events := m.contacts
	m.contacts = nil
	m.sense(now, events)

	target, hasTarget := m.targetPosition()
	if hasTarget && m.sampler.planner != nil {
		m.sampler.planner.SetDestination(target)
	}
	path := m.sampler.Refresh()

	state := m.agentState()
	m.jumps.Track(state.Position)

	intent := Intent{State: m.state}
	switch m.state {
	case Patrol:
		intent.Direction = m.patrol(state)
	case Chase:
		if hasTarget {
			intent.Direction, intent.Jump = m.pursue(state, target, path)
		} else {
			m.move(0, 0, state)
		}
	case Attack:
		intent.Attack = m.attack(target, hasTarget)
	case Idle:
		m.move(0, 0, state)
	}
	m.ctx.Direction = intent.Direction

	next := Idle
	if hasTarget {
		next = ResolveBehavior(state.Position.Distance(target), m.cfg.AttackRange, m.cfg.DetectionRange)
	}
	if next != m.state {
		m.enter(next)
	}

	m.last = intent
	return intent
}

func (m *Machine) sense(now float64, events []ContactEvent) {
	reading := m.ground.Update(now, events, m.prober)
	m.ctx.WallLeft, m.ctx.WallRight = m.wall.Update(events)
	m.ctx.Grounded = reading.Grounded
	m.ctx.GroundedByCollision = reading.ByCollision

	if reading.Landed {
		m.jumps.Landed()
	}
	// Only verified collision contact releases the lock.
	if m.ctx.JumpLocked && reading.ByCollision && (reading.Landed || now-m.ctx.LastJumpTime >= m.cfg.JumpCooldown) {
		m.ctx.JumpLocked = false
	}
}

func (m *Machine) targetPosition() (cp.Vector, bool) {
	if m.target == nil {
		return cp.Vector{}, false
	}
	return m.target.TargetPosition()
}

func (m *Machine) agentState() AgentState {
	return AgentState{
		Position:            m.body.Position(),
		Velocity:            m.body.Velocity(),
		Facing:              m.ctx.Facing,
		Grounded:            m.ctx.Grounded,
		GroundedByCollision: m.ctx.GroundedByCollision,
		WallLeft:            m.ctx.WallLeft,
		WallRight:           m.ctx.WallRight,
		LastJumpTime:        m.ctx.LastJumpTime,
		JumpLocked:          m.ctx.JumpLocked,
		Time:                m.ctx.Time,
		GravityScale:        m.body.GravityScale(),
		Mass:                m.body.Mass(),
	}
}

// move is the movement primitive shared by every state.
func (m *Machine) move(dir, speed float64, state AgentState) {
	vel := m.body.Velocity()
	vx := dir * speed
	if rt, ok := m.jumps.RunThrough(); ok && !state.Grounded {
		vx = m.cfg.MoveSpeed * rt.Direction
	}
	vx = ClampThrust(vx, vel.X, state.WallLeft, state.WallRight)
	m.body.SetVelocity(cp.Vector{X: vx, Y: vel.Y})
	if dir != 0 {
		m.ctx.Facing = dir
	}
}

func (m *Machine) patrol(state AgentState) float64 {
	dir := m.ctx.PatrolDir
	if dir == 0 {
		dir = 1
	}
	flip := m.ctx.PatrolTimer <= 0
	if m.cfg.PatrolRange > 0 && (state.Position.X-m.ctx.Spawn.X)*dir > m.cfg.PatrolRange {
		flip = true
	}
	if (dir > 0 && state.WallRight) || (dir < 0 && state.WallLeft) {
		flip = true
	}
	if flip {
		dir = -dir
		m.ctx.PatrolTimer = m.cfg.PatrolWait
	}
	m.ctx.PatrolDir = dir
	m.move(dir, m.cfg.MoveSpeed, state)
	return dir
}

func (m *Machine) pursue(state AgentState, target cp.Vector, path Polyline) (float64, bool) {
	steering, _ := m.sampler.Steering()
	dir := m.chase.Resolve(state, target, path, steering)
	m.move(dir, m.cfg.MoveSpeed*m.cfg.ChaseSpeedMultiplier, state)

	intent := m.jumps.Evaluate(state, target, true, path)
	if intent == nil || !intent.Armed {
		return dir, false
	}
	return dir, m.execute(*intent, state)
}

// execute applies the jump impulse. It refuses unless the agent stands on
// verified ground with no lock outstanding, whatever the planner said.
func (m *Machine) execute(intent JumpIntent, state AgentState) bool {
	if !state.GroundedByCollision || m.ctx.JumpLocked || m.ctx.JumpCooldown > 0 {
		return false
	}
	m.body.ApplyImpulse(cp.Vector{
		X: intent.Direction * m.cfg.JumpHorizontalImpulse,
		Y: m.cfg.JumpForce * m.cfg.PhysicsStep,
	})
	m.ctx.JumpLocked = true
	m.ctx.LastJumpTime = m.ctx.Time
	m.ctx.JumpCooldown = m.cfg.JumpCooldown
	m.ctx.Facing = intent.Direction
	m.jumps.BeginJump(intent, state.Position.Y)
	if m.hooks.OnJump != nil {
		m.hooks.OnJump(intent)
	}
	return true
}

func (m *Machine) attack(target cp.Vector, hasTarget bool) bool {
	vel := m.body.Velocity()
	m.body.SetVelocity(cp.Vector{X: 0, Y: vel.Y})
	if !hasTarget || m.ctx.AttackCooldown > 0 {
		return false
	}
	m.ctx.AttackCooldown = 1 / m.cfg.AttackSpeed
	m.ctx.LastAttackAt = m.ctx.Time
	if face := sign(target.X - m.body.Position().X); face != 0 {
		m.ctx.Facing = face
	}
	if m.hooks.OnAttack != nil {
		m.hooks.OnAttack(target)
	}
	return true
}

func (m *Machine) enter(next BehaviorState) {
	prev := m.state
	m.state = next
	if next == Patrol {
		m.ctx.PatrolTimer = m.cfg.PatrolWait
		if m.ctx.Facing != 0 {
			m.ctx.PatrolDir = math.Copysign(1, m.ctx.Facing)
		}
	}
	if prev == Chase {
		m.jumps.hasIntent = false
	}
	if m.hooks.OnStateChange != nil {
		m.hooks.OnStateChange(prev, next)
	}
}

// Reset returns the machine to Patrol after a hit reaction. The jump lock is
// left alone: only ground contact may release it.
func (m *Machine) Reset() {
	if m == nil {
		return
	}
	prev := m.state
	m.state = Patrol
	m.ctx.PatrolTimer = m.cfg.PatrolWait
	m.chase.Reset()
	m.jumps.Clear()
	m.contacts = m.contacts[:0]
	if prev != Patrol && m.hooks.OnStateChange != nil {
		m.hooks.OnStateChange(prev, Patrol)
	}
}

func (m *Machine) State() BehaviorState {
	if m == nil {
		return Idle
	}
	return m.state
}

// Context returns a copy of the per-agent mutable fields.
func (m *Machine) Context() LocomotionContext {
	if m == nil {
		return LocomotionContext{}
	}
	return m.ctx
}

// Config returns the tuning the machine runs with.
func (m *Machine) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// SetConfig swaps tuning in place, e.g. on hot reload. Sensors, planner and
// director read through the same pointer.
func (m *Machine) SetConfig(cfg Config) error {
	if m == nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("locomotion: set config: %w", err)
	}
	m.cfg = cfg
	if m.hooks.OnConfig != nil {
		m.hooks.OnConfig(cfg)
	}
	return nil
}

// Path returns the polyline sampled on the last tick.
func (m *Machine) Path() Polyline {
	if m == nil {
		return Polyline{Stale: true}
	}
	return m.sampler.Snapshot()
}

// JumpIntent returns the planner's latest intent.
func (m *Machine) JumpIntent() (JumpIntent, bool) {
	if m == nil {
		return JumpIntent{}, false
	}
	return m.jumps.Intent()
}

// RunThrough returns the pending run-through target.
func (m *Machine) RunThrough() (RunThroughTarget, bool) {
	if m == nil {
		return RunThroughTarget{}, false
	}
	return m.jumps.RunThrough()
}

// LastIntent is the intent produced by the previous Tick.
func (m *Machine) LastIntent() Intent {
	if m == nil {
		return Intent{State: Idle}
	}
	return m.last
}
