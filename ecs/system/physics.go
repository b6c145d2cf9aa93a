package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/locomotion"
)

const (
	collisionTypeAgent cp.CollisionType = iota + 1
	collisionTypeTarget
	collisionTypeSolid
)

const (
	categorySolid uint = 1 << iota
	categoryAgent
	categoryTarget
)

// probeFilter matches level geometry only, so probes never see the agent's
// own shape or other actors.
var probeFilter = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categorySolid)

type PhysicsSystem struct {
	space         *cp.Space
	step          float64
	handlersReady bool
	Verbose       bool

	entities    map[ecs.Entity]*bodyInfo
	agentShapes map[*cp.Shape]ecs.Entity
	pending     map[ecs.Entity][]locomotion.ContactEvent
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	static bool
}

// NewPhysicsSystem creates a space with gravity pulling toward -Y, stepped by
// a fixed dt every Update.
func NewPhysicsSystem(gravity, step float64) *PhysicsSystem {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: -gravity})
	if step <= 0 {
		step = 1.0 / 60.0
	}
	return &PhysicsSystem{
		space:       space,
		step:        step,
		entities:    make(map[ecs.Entity]*bodyInfo),
		agentShapes: make(map[*cp.Shape]ecs.Entity),
		pending:     make(map[ecs.Entity][]locomotion.ContactEvent),
	}
}

func (ps *PhysicsSystem) Space() *cp.Space {
	if ps == nil {
		return nil
	}
	return ps.space
}

func (ps *PhysicsSystem) Step() float64 {
	if ps == nil {
		return 0
	}
	return ps.step
}

// IsAgentShape reports whether the shape belongs to an enemy body.
func (ps *PhysicsSystem) IsAgentShape(shape *cp.Shape) bool {
	if ps == nil {
		return false
	}
	_, ok := ps.agentShapes[shape]
	return ok
}

// SetGravity updates the space gravity magnitude, e.g. after a tuning reload.
func (ps *PhysicsSystem) SetGravity(g float64) {
	if ps == nil || ps.space == nil {
		return
	}
	ps.space.SetGravity(cp.Vector{X: 0, Y: -g})
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || ps.space == nil {
		return
	}

	ps.ensureHandlers()
	ps.syncEntities(w)

	ps.space.Step(ps.step)

	ps.syncTransforms(w)
	ps.flushContacts(w)
}

func (ps *PhysicsSystem) ensureHandlers() {
	if ps.handlersReady {
		return
	}

	handler := ps.space.NewCollisionHandler(collisionTypeAgent, collisionTypeSolid)
	handler.UserData = ps
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if sys, ok := userData.(*PhysicsSystem); ok {
			sys.recordContact(arb, locomotion.ContactBegin)
		}
		return true
	}
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if sys, ok := userData.(*PhysicsSystem); ok {
			sys.recordContact(arb, locomotion.ContactStay)
		}
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		if sys, ok := userData.(*PhysicsSystem); ok {
			sys.recordContact(arb, locomotion.ContactExit)
		}
	}

	ps.handlersReady = true
}

// recordContact queues a contact for the agent involved. The arbiter normal
// points from the first shape to the second; it is flipped so it always
// points from the surface toward the agent.
func (ps *PhysicsSystem) recordContact(arb *cp.Arbiter, phase locomotion.ContactPhase) {
	shapeA, shapeB := arb.Shapes()
	agent, agentIsA := ps.agentShapes[shapeA]
	other := shapeB
	if !agentIsA {
		var ok bool
		agent, ok = ps.agentShapes[shapeB]
		if !ok {
			return
		}
		other = shapeA
	}

	n := arb.Normal()
	if agentIsA {
		n = n.Neg()
	}
	ps.pending[agent] = append(ps.pending[agent], locomotion.ContactEvent{
		Phase:  phase,
		Normal: n,
		Other:  other,
	})
}

func (ps *PhysicsSystem) syncEntities(w *ecs.World) {
	ps.cleanupEntities(w)

	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if _, ok := ps.entities[e]; ok {
			return
		}
		kind := collisionTypeSolid
		switch {
		case ecs.Has(w, e, component.AITagComponent.Kind()):
			kind = collisionTypeAgent
		case ecs.Has(w, e, component.TargetTagComponent.Kind()):
			kind = collisionTypeTarget
		}
		var scale *component.GravityScale
		if gs, ok := ecs.Get(w, e, component.GravityScaleComponent.Kind()); ok {
			scale = gs
		}

		info := ps.createBodyInfo(*transform, bodyComp, kind, scale)
		if info == nil {
			return
		}
		ps.entities[e] = info
		if kind == collisionTypeAgent {
			for _, shape := range info.shapes {
				ps.agentShapes[shape] = e
			}
		}
		if ps.Verbose {
			log.Printf("physics: added entity=%s static=%v at (%.2f, %.2f)", e, info.static, transform.X, transform.Y)
		}
	})
}

func (ps *PhysicsSystem) createBodyInfo(transform component.Transform, bodyComp *component.PhysicsBody, kind cp.CollisionType, scale *component.GravityScale) *bodyInfo {
	width, height := bodyComp.Width, bodyComp.Height
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}

	if bodyComp.Static {
		bb := cp.BB{
			L: transform.X - width/2,
			B: transform.Y - height/2,
			R: transform.X + width/2,
			T: transform.Y + height/2,
		}
		shape := cp.NewBox2(ps.space.StaticBody, bb, 0)
		shape.SetFriction(bodyComp.Friction)
		shape.SetCollisionType(collisionTypeSolid)
		shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categorySolid, cp.ALL_CATEGORIES))
		ps.space.AddShape(shape)

		bodyComp.Body = ps.space.StaticBody
		bodyComp.Shape = shape
		return &bodyInfo{body: ps.space.StaticBody, shapes: []*cp.Shape{shape}, static: true}
	}

	body := bodyComp.Body
	if body == nil {
		mass := bodyComp.Mass
		if mass <= 0 {
			mass = 1
		}
		// Infinite moment keeps the box upright.
		body = cp.NewBody(mass, math.Inf(1))
		body.SetPosition(cp.Vector{X: transform.X, Y: transform.Y})
	}
	if scale != nil {
		body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
			cp.BodyUpdateVelocity(body, gravity.Mult(scale.Scale), damping, dt)
		})
	}

	shape := cp.NewBox(body, width, height, 0)
	shape.SetFriction(bodyComp.Friction)
	shape.SetCollisionType(kind)
	category := categoryAgent
	if kind == collisionTypeTarget {
		category = categoryTarget
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, categorySolid))

	ps.space.AddBody(body)
	ps.space.AddShape(shape)

	bodyComp.Body = body
	bodyComp.Shape = shape
	return &bodyInfo{body: body, shapes: []*cp.Shape{shape}}
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, bodyComp *component.PhysicsBody, transform *component.Transform) {
		if bodyComp.Static || bodyComp.Body == nil {
			return
		}
		pos := bodyComp.Body.Position()
		transform.X = pos.X
		transform.Y = pos.Y
		transform.Rotation = bodyComp.Body.Angle()
	})
}

func (ps *PhysicsSystem) flushContacts(w *ecs.World) {
	for e, events := range ps.pending {
		delete(ps.pending, e)
		buf, ok := ecs.Get(w, e, component.ContactBufferComponent.Kind())
		if !ok {
			continue
		}
		buf.Events = append(buf.Events, events...)
	}
}

func (ps *PhysicsSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ps.entities {
		if ecs.IsAlive(w, e) && ecs.Has(w, e, component.PhysicsBodyComponent.Kind()) {
			continue
		}
		for _, shape := range info.shapes {
			ps.space.RemoveShape(shape)
			delete(ps.agentShapes, shape)
		}
		if !info.static && info.body != nil {
			ps.space.RemoveBody(info.body)
		}
		delete(ps.entities, e)
		delete(ps.pending, e)
	}
}

// Body adapts an entity's Chipmunk body to the locomotion core.
type Body struct {
	phys  *component.PhysicsBody
	scale *component.GravityScale
}

// NewBody wraps component pointers owned by the world; they stay valid for
// the entity's lifetime.
func NewBody(phys *component.PhysicsBody, scale *component.GravityScale) *Body {
	return &Body{phys: phys, scale: scale}
}

func (b *Body) Position() cp.Vector {
	if b == nil || b.phys == nil || b.phys.Body == nil {
		return cp.Vector{}
	}
	return b.phys.Body.Position()
}

func (b *Body) Velocity() cp.Vector {
	if b == nil || b.phys == nil || b.phys.Body == nil {
		return cp.Vector{}
	}
	return b.phys.Body.Velocity()
}

func (b *Body) SetVelocity(v cp.Vector) {
	if b == nil || b.phys == nil || b.phys.Body == nil {
		return
	}
	b.phys.Body.SetVelocityVector(v)
}

func (b *Body) ApplyImpulse(j cp.Vector) {
	if b == nil || b.phys == nil || b.phys.Body == nil {
		return
	}
	b.phys.Body.ApplyImpulseAtWorldPoint(j, b.phys.Body.Position())
}

func (b *Body) GravityScale() float64 {
	if b == nil || b.scale == nil {
		return 1
	}
	return b.scale.Scale
}

func (b *Body) Mass() float64 {
	if b == nil || b.phys == nil || b.phys.Body == nil {
		return 1
	}
	return b.phys.Body.Mass()
}

// Prober answers ground probes against level geometry in the physics space.
type Prober struct {
	ps   *PhysicsSystem
	phys *component.PhysicsBody
}

func NewProber(ps *PhysicsSystem, phys *component.PhysicsBody) *Prober {
	return &Prober{ps: ps, phys: phys}
}

func (p *Prober) Bounds() cp.BB {
	if p == nil || p.phys == nil || p.phys.Body == nil {
		return cp.BB{}
	}
	pos := p.phys.Body.Position()
	hw, hh := p.phys.Width/2, p.phys.Height/2
	return cp.BB{L: pos.X - hw, B: pos.Y - hh, R: pos.X + hw, T: pos.Y + hh}
}

// ShapeProbe looks for level geometry in a thin box just under the feet.
func (p *Prober) ShapeProbe(distance float64) bool {
	if p == nil || p.ps == nil || p.ps.space == nil || p.phys == nil || p.phys.Body == nil {
		return false
	}
	bb := p.Bounds()
	inset := (bb.R - bb.L) * 0.1
	probe := cp.BB{L: bb.L + inset, B: bb.B - distance, R: bb.R - inset, T: bb.B - distance*0.1}
	hit := false
	p.ps.space.BBQuery(probe, probeFilter, func(shape *cp.Shape, data interface{}) {
		if shape.Body() != p.phys.Body && !shape.Sensor() {
			hit = true
		}
	}, nil)
	return hit
}

func (p *Prober) Raycast(origin, dir cp.Vector, length float64) (locomotion.RayHit, bool) {
	if p == nil || p.ps == nil || p.ps.space == nil {
		return locomotion.RayHit{}, false
	}
	end := origin.Add(dir.Normalize().Mult(length))
	info := p.ps.space.SegmentQueryFirst(origin, end, 0, probeFilter)
	if info.Shape == nil {
		return locomotion.RayHit{}, false
	}
	return locomotion.RayHit{Point: info.Point, Normal: info.Normal}, true
}
