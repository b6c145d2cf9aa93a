package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/locomotion"
)

// addEnemy builds an enemy whose machine has no planner and chases the
// world's target.
func addEnemy(t *testing.T, w *ecs.World, x, y float64) (ecs.Entity, *component.Locomotion) {
	t.Helper()
	e := ecs.CreateEntity(w)
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	phys := &component.PhysicsBody{Body: body, Width: 0.8, Height: 0.9, Mass: 1}
	scale := &component.GravityScale{Scale: 1}

	adapter := NewBody(phys, scale)
	machine, err := locomotion.NewMachine(locomotion.DefaultConfig(), locomotion.MachineOptions{
		Body:   adapter,
		Target: WorldTarget(w),
	})
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	agent, err := locomotion.NewAgentBody(locomotion.Walker, 3, adapter, machine)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	loco := &component.Locomotion{Agent: agent, Machine: machine}

	adds := []error{
		ecs.Add(w, e, component.AITagComponent.Kind(), &component.AITag{}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), phys),
		ecs.Add(w, e, component.GravityScaleComponent.Kind(), scale),
		ecs.Add(w, e, component.ContactBufferComponent.Kind(), &component.ContactBuffer{}),
		ecs.Add(w, e, component.LocomotionComponent.Kind(), loco),
	}
	for _, err := range adds {
		if err != nil {
			t.Fatalf("add enemy component: %v", err)
		}
	}
	return e, loco
}

func addTarget(t *testing.T, w *ecs.World, x, y float64, script string) (ecs.Entity, *component.PhysicsBody) {
	t.Helper()
	e := ecs.CreateEntity(w)
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	phys := &component.PhysicsBody{Body: body, Width: 0.6, Height: 0.9, Mass: 1}
	adds := []error{
		ecs.Add(w, e, component.TargetTagComponent.Kind(), &component.TargetTag{}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), phys),
	}
	if script != "" {
		adds = append(adds, ecs.Add(w, e, component.TargetScriptComponent.Kind(), &component.TargetScript{
			Path:        script,
			MoveSpeed:   3,
			JumpSpeed:   10,
			StrikeReach: 1.2,
		}))
	}
	for _, err := range adds {
		if err != nil {
			t.Fatalf("add target component: %v", err)
		}
	}
	return e, phys
}

func TestAISystemFeedsContactsAndTicks(t *testing.T) {
	w := ecs.NewWorld()
	e, loco := addEnemy(t, w, 0, 1)
	buf, _ := ecs.Get(w, e, component.ContactBufferComponent.Kind())
	buf.Events = append(buf.Events, locomotion.ContactEvent{Phase: locomotion.ContactStay, Normal: cp.Vector{X: 0, Y: 1}})

	NewAISystem(1.0 / 60.0).Update(w)

	if len(buf.Events) != 0 {
		t.Fatalf("contact buffer should be drained, has %d", len(buf.Events))
	}
	if !loco.Machine.Context().GroundedByCollision {
		t.Fatalf("machine should see the buffered ground contact")
	}
	if got := loco.Machine.State(); got != locomotion.Idle {
		t.Fatalf("state = %s, want idle with no target", got)
	}
}

func TestAISystemDropsContactsDuringKnockback(t *testing.T) {
	const dt = 1.0 / 60.0
	w := ecs.NewWorld()
	e, loco := addEnemy(t, w, 0, 1)
	buf, _ := ecs.Get(w, e, component.ContactBufferComponent.Kind())

	loco.Agent.Hit(0, cp.Vector{}, 2*dt)
	buf.Events = append(buf.Events, locomotion.ContactEvent{Phase: locomotion.ContactStay, Normal: cp.Vector{Y: 1}})

	sys := NewAISystem(dt)
	for i := 0; i < 4; i++ {
		sys.Update(w)
		if len(buf.Events) != 0 {
			t.Fatalf("update %d left %d buffered contacts", i, len(buf.Events))
		}
	}
	if loco.Agent.IsKnockedBack() {
		t.Fatalf("knockback should have ended")
	}
	if loco.Machine.Context().GroundedByCollision {
		t.Fatalf("a contact from before the knockback ended should not ground the agent")
	}
}

func TestAISystemChasesTarget(t *testing.T) {
	w := ecs.NewWorld()
	_, loco := addEnemy(t, w, 0, 1)
	addTarget(t, w, 5, 1, "")

	sys := NewAISystem(1.0 / 60.0)
	sys.Update(w)
	if got := loco.Machine.State(); got != locomotion.Chase {
		t.Fatalf("state = %s, want chase", got)
	}
	sys.Update(w)
	if loco.Last.Direction != 1 {
		t.Fatalf("direction = %g, want 1 toward the target", loco.Last.Direction)
	}
}

func TestTargetPosition(t *testing.T) {
	w := ecs.NewWorld()
	if _, ok := TargetPosition(w); ok {
		t.Fatalf("no target expected in an empty world")
	}
	addTarget(t, w, 3, 2, "")
	pos, ok := WorldTarget(w).TargetPosition()
	if !ok || pos.X != 3 || pos.Y != 2 {
		t.Fatalf("target = %v ok=%v, want (3, 2)", pos, ok)
	}
}

func TestScriptedStrikeKnocksEnemyBack(t *testing.T) {
	w := ecs.NewWorld()
	enemy, loco := addEnemy(t, w, 1, 1)
	addTarget(t, w, 0, 1, "sentinel.tengo")

	scripts := NewTargetScriptSystem(nil, 1.0/60.0)
	knockback := NewDamageKnockbackSystem()

	scripts.Update(w)
	if !ecs.Has(w, enemy, component.DamageKnockbackRequestComponent.Kind()) {
		t.Fatalf("strike should request damage on the enemy in reach")
	}

	knockback.Update(w)
	if ecs.Has(w, enemy, component.DamageKnockbackRequestComponent.Kind()) {
		t.Fatalf("request should be consumed")
	}
	if loco.Agent.Health != 2 {
		t.Fatalf("health = %g, want 2", loco.Agent.Health)
	}
	if !loco.Agent.IsKnockedBack() {
		t.Fatalf("enemy should be reeling")
	}
	phys, _ := ecs.Get(w, enemy, component.PhysicsBodyComponent.Kind())
	if v := phys.Body.Velocity(); v.X <= 0 {
		t.Fatalf("knockback velocity = %v, want a push away from the target", v)
	}

	// The sentinel waits a second between strikes.
	scripts.Update(w)
	if ecs.Has(w, enemy, component.DamageKnockbackRequestComponent.Kind()) {
		t.Fatalf("strike should be on cooldown")
	}
}

func TestStrikeIgnoresOutOfReach(t *testing.T) {
	w := ecs.NewWorld()
	enemy, _ := addEnemy(t, w, 5, 1)
	if hits := strike(w, cp.Vector{X: 0, Y: 1}, 1.2, 1); hits != 0 {
		t.Fatalf("hits = %d, want 0", hits)
	}
	if ecs.Has(w, enemy, component.DamageKnockbackRequestComponent.Kind()) {
		t.Fatalf("no request expected out of reach")
	}
}

func TestTargetScriptMissingFile(t *testing.T) {
	w := ecs.NewWorld()
	_, phys := addTarget(t, w, 0, 1, "does_not_exist.tengo")
	scripts := NewTargetScriptSystem(nil, 1.0/60.0)
	scripts.Update(w)
	scripts.Update(w)
	if v := phys.Body.Velocity(); v.X != 0 || v.Y != 0 {
		t.Fatalf("a missing script must leave the target alone, v=%v", v)
	}
}

func TestDamageKnockbackDeath(t *testing.T) {
	w := ecs.NewWorld()
	enemy, loco := addEnemy(t, w, 1, 1)
	if err := ecs.Add(w, enemy, component.DamageKnockbackRequestComponent.Kind(), &component.DamageKnockback{SourceX: 0, SourceY: 1, Damage: 5, Strong: true}); err != nil {
		t.Fatalf("add request: %v", err)
	}
	NewDamageKnockbackSystem().Update(w)
	if loco.Agent.IsAlive() {
		t.Fatalf("lethal damage should kill the enemy")
	}
	if got := loco.Agent.Tick(1.0 / 60.0); got.State != locomotion.Idle || got.Direction != 0 {
		t.Fatalf("dead enemy intent = %+v, want idle and still", got)
	}
}
