package system

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/locomotion"
)

// AISystem hands each enemy the contacts collected during the last physics
// step and ticks its locomotion core once.
type AISystem struct {
	dt      float64
	Verbose bool
}

func NewAISystem(dt float64) *AISystem {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	return &AISystem{dt: dt}
}

func (s *AISystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}

	ecs.ForEach2(w, component.LocomotionComponent.Kind(), component.ContactBufferComponent.Kind(), func(e ecs.Entity, loco *component.Locomotion, buf *component.ContactBuffer) {
		if loco.Agent == nil || loco.Machine == nil {
			return
		}
		// Contacts gathered while the machine is suspended are stale by the
		// time it resumes.
		if len(buf.Events) > 0 {
			if loco.Agent.IsAlive() && !loco.Agent.IsKnockedBack() {
				loco.Machine.PushContacts(buf.Events...)
			}
			buf.Events = buf.Events[:0]
		}

		prev := loco.Last
		intent := loco.Agent.Tick(s.dt)
		loco.Last = intent
		if intent.Jump {
			loco.Jumps++
		}
		if intent.Attack {
			loco.Attacks++
		}

		if s.Verbose && (intent.State != prev.State || intent.Jump) {
			ctx := loco.Machine.Context()
			log.Printf("ai: entity=%s state=%s dir=%.0f jump=%v grounded=%v locked=%v", e, intent.State, intent.Direction, intent.Jump, ctx.Grounded, ctx.JumpLocked)
		}
	})
}

// TargetPosition returns the center of the first entity tagged as target.
func TargetPosition(w *ecs.World) (cp.Vector, bool) {
	target, ok := ecs.First(w, component.TargetTagComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	x, y, ok := entityPosition(w, target)
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: x, Y: y}, true
}

// WorldTarget adapts TargetPosition to the locomotion core.
func WorldTarget(w *ecs.World) locomotion.TargetProvider {
	return locomotion.TargetFunc(func() (cp.Vector, bool) {
		return TargetPosition(w)
	})
}
