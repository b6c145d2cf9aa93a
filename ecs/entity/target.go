package entity

import (
	"fmt"

	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/prefabs"
)

// NewTarget builds the entity enemies pursue. A script is optional; without
// one the target stands still.
func NewTarget(w *ecs.World, spec prefabs.TargetSpec, x, y float64) (ecs.Entity, error) {
	entity := ecs.CreateEntity(w)

	if err := ecs.Add(w, entity, component.TargetTagComponent.Kind(), &component.TargetTag{}); err != nil {
		return 0, fmt.Errorf("target: add tag: %w", err)
	}

	if err := ecs.Add(w, entity, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}); err != nil {
		return 0, fmt.Errorf("target: add transform: %w", err)
	}

	if err := ecs.Add(w, entity, component.PhysicsBodyComponent.Kind(), newDynamicBody(spec.Body, x, y)); err != nil {
		return 0, fmt.Errorf("target: add physics body: %w", err)
	}

	if err := ecs.Add(w, entity, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: spec.Body.GravityScale}); err != nil {
		return 0, fmt.Errorf("target: add gravity scale: %w", err)
	}

	if spec.Script != "" {
		if err := ecs.Add(w, entity, component.TargetScriptComponent.Kind(), &component.TargetScript{
			Path:        spec.Script,
			MoveSpeed:   spec.MoveSpeed,
			JumpSpeed:   spec.JumpSpeed,
			StrikeReach: spec.StrikeReach,
		}); err != nil {
			return 0, fmt.Errorf("target: add script: %w", err)
		}
	}

	return entity, nil
}
