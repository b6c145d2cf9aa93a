package entity

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/ecs/system"
	"github.com/milk9111/pursuit/locomotion"
	"github.com/milk9111/pursuit/prefabs"
)

// NewEnemy builds a pursuing enemy at (x, y). The locomotion core is wired to
// the entity's physics body, its grid planner and the world's target.
func NewEnemy(w *ecs.World, ps *system.PhysicsSystem, spec prefabs.EnemySpec, x, y float64) (ecs.Entity, error) {
	cfg, err := spec.Config()
	if err != nil {
		return 0, fmt.Errorf("enemy: config: %w", err)
	}
	kind, err := locomotion.ParseEnemyKind(spec.Kind)
	if err != nil {
		return 0, fmt.Errorf("enemy: kind: %w", err)
	}

	entity := ecs.CreateEntity(w)

	if err := ecs.Add(w, entity, component.AITagComponent.Kind(), &component.AITag{}); err != nil {
		return 0, fmt.Errorf("enemy: add enemy tag: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("enemy: add transform: %w", err)
	}

	phys := newDynamicBody(spec.Body, x, y)
	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), phys); err != nil {
		return 0, fmt.Errorf("enemy: add physics body: %w", err)
	}

	scale := &component.GravityScale{Scale: spec.Body.GravityScale}
	if err := ecs.Add(w, entity, component.GravityScaleComponent.Kind(), scale); err != nil {
		return 0, fmt.Errorf("enemy: add gravity scale: %w", err)
	}

	if err := ecs.Add(w, entity, component.ContactBufferComponent.Kind(), &component.ContactBuffer{}); err != nil {
		return 0, fmt.Errorf("enemy: add contact buffer: %w", err)
	}

	gridSize := 1.0
	if bounds, ok := levelTileSize(w); ok {
		gridSize = bounds
	}
	pf := &component.Pathfinding{GridSize: gridSize, RepathFrames: spec.RepathFrames}
	if err := ecs.Add(w, entity, component.PathfindingComponent.Kind(), pf); err != nil {
		return 0, fmt.Errorf("enemy: add pathfinding: %w", err)
	}

	events := w.Events()
	body := system.NewBody(phys, scale)
	machine, err := locomotion.NewMachine(cfg, locomotion.MachineOptions{
		Body:    body,
		Prober:  system.NewProber(ps, phys),
		Planner: system.NewGridPlanner(pf, phys, cfg.MoveSpeed*cfg.ChaseSpeedMultiplier),
		Target:  system.WorldTarget(w),
		Hooks: locomotion.Hooks{
			OnStateChange: func(from, to locomotion.BehaviorState) {
				events.Push(ecs.Event{Type: ecs.EventStateChange, Entity: entity, Data: [2]locomotion.BehaviorState{from, to}})
			},
			OnJump: func(intent locomotion.JumpIntent) {
				events.Push(ecs.Event{Type: ecs.EventJump, Entity: entity, Data: intent})
			},
			OnAttack: func(target cp.Vector) {
				events.Push(ecs.Event{Type: ecs.EventAttack, Entity: entity, Data: target})
			},
			OnConfig: func(cfg locomotion.Config) {
				pf.Speed = cfg.MoveSpeed * cfg.ChaseSpeedMultiplier
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("enemy: machine: %w", err)
	}

	agent, err := locomotion.NewAgentBody(kind, spec.Health, body, machine)
	if err != nil {
		return 0, fmt.Errorf("enemy: agent: %w", err)
	}
	agent.OnDamage = func(_ *locomotion.AgentBody, amount float64) {
		events.Push(ecs.Event{Type: ecs.EventDamage, Entity: entity, Data: amount})
	}
	agent.OnDeath = func(*locomotion.AgentBody) {
		events.Push(ecs.Event{Type: ecs.EventDeath, Entity: entity})
	}

	if err := ecs.Add(w, entity, component.LocomotionComponent.Kind(), &component.Locomotion{
		Kind:    kind,
		Agent:   agent,
		Machine: machine,
	}); err != nil {
		return 0, fmt.Errorf("enemy: add locomotion: %w", err)
	}

	return entity, nil
}

func newDynamicBody(spec prefabs.BodySpec, x, y float64) *component.PhysicsBody {
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	return &component.PhysicsBody{
		Body:     body,
		Width:    spec.Width,
		Height:   spec.Height,
		Mass:     mass,
		Friction: spec.Friction,
	}
}

func levelTileSize(w *ecs.World) (float64, bool) {
	e, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return 0, false
	}
	bounds, ok := ecs.Get(w, e, component.LevelBoundsComponent.Kind())
	if !ok || bounds.TileSize <= 0 {
		return 0, false
	}
	return bounds.TileSize, true
}
