package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
)

const damageKnockbackImpulse = 6.0
const damageKnockbackMaxDeltaV = 12.0

const strongDamageKnockbackImpulse = 12.0
const strongDamageKnockbackMaxDeltaV = 20.0

const defaultKnockbackDuration = 0.3

// DamageKnockbackSystem resolves DamageKnockback requests against enemies.
type DamageKnockbackSystem struct{}

func NewDamageKnockbackSystem() *DamageKnockbackSystem {
	return &DamageKnockbackSystem{}
}

func (s *DamageKnockbackSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach(w, component.DamageKnockbackRequestComponent.Kind(), func(e ecs.Entity, req *component.DamageKnockback) {
		applyDamageKnockback(w, e, *req)
		ecs.Remove(w, e, component.DamageKnockbackRequestComponent.Kind())
	})
}

func applyDamageKnockback(w *ecs.World, target ecs.Entity, req component.DamageKnockback) {
	loco, ok := ecs.Get(w, target, component.LocomotionComponent.Kind())
	if !ok || loco.Agent == nil {
		return
	}
	body, ok := ecs.Get(w, target, component.PhysicsBodyComponent.Kind())
	if !ok || body.Body == nil || body.Static {
		return
	}

	center := body.Body.Position()
	dx := center.X - req.SourceX
	dy := center.Y - req.SourceY
	length := math.Hypot(dx, dy)
	if length <= 1e-6 {
		dx = 0
		dy = 1
		length = 1
	}
	nx := dx / length
	ny := dy / length

	impulse, maxDeltaV := damageKnockbackImpulse, damageKnockbackMaxDeltaV
	if req.Strong {
		impulse, maxDeltaV = strongDamageKnockbackImpulse, strongDamageKnockbackMaxDeltaV
	}
	duration := req.Duration
	if duration <= 0 {
		duration = defaultKnockbackDuration
	}

	if !loco.Agent.Hit(req.Damage, cp.Vector{X: nx * impulse, Y: ny * impulse}, duration) {
		return
	}

	// Cap the velocity along the push so stacked hits in one frame don't
	// launch the body.
	v := body.Body.Velocity()
	vDot := v.X*nx + v.Y*ny
	if vDot > maxDeltaV {
		tx := v.X - nx*vDot
		ty := v.Y - ny*vDot
		body.Body.SetVelocityVector(cp.Vector{
			X: tx + nx*maxDeltaV,
			Y: ty + ny*maxDeltaV,
		})
	}
}
