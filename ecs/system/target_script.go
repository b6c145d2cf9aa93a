package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/prefabs"
)

const targetDispatchScript = `
update(__engine, __state)
`

const targetGroundProbe = 0.05

type targetScriptRuntime struct {
	scriptPath string
	compiled   *tengo.Compiled
	stateData  *tengo.Map
	failed     bool
}

// TargetScriptSystem moves scripted targets. Each script defines
// update(engine, state) and is run once per step.
type TargetScriptSystem struct {
	physics *PhysicsSystem
	dt      float64
	time    float64
	Verbose bool

	runtimes map[ecs.Entity]*targetScriptRuntime
}

func NewTargetScriptSystem(physics *PhysicsSystem, dt float64) *TargetScriptSystem {
	if dt <= 0 {
		dt = 1.0 / 60.0
	}
	return &TargetScriptSystem{
		physics:  physics,
		dt:       dt,
		runtimes: map[ecs.Entity]*targetScriptRuntime{},
	}
}

func (s *TargetScriptSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.time += s.dt

	for e := range s.runtimes {
		if !ecs.IsAlive(w, e) || !ecs.Has(w, e, component.TargetScriptComponent.Kind()) {
			delete(s.runtimes, e)
		}
	}

	ecs.ForEach2(w, component.TargetScriptComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, ts *component.TargetScript, phys *component.PhysicsBody) {
		if phys.Body == nil || strings.TrimSpace(ts.Path) == "" {
			return
		}
		rt, err := s.runtime(e, ts.Path)
		if err != nil {
			if rt != nil && !rt.failed {
				rt.failed = true
				log.Printf("target: entity=%s load script %q: %v", e, ts.Path, err)
			}
			return
		}
		engine := s.buildEngine(w, e, ts, phys)
		if err := rt.run(engine); err != nil {
			log.Printf("target: entity=%s script update: %v", e, err)
		}
	})
}

// Reload drops compiled scripts so the next update reads them again.
func (s *TargetScriptSystem) Reload() {
	if s == nil {
		return
	}
	clear(s.runtimes)
}

func (s *TargetScriptSystem) runtime(e ecs.Entity, path string) (*targetScriptRuntime, error) {
	if rt, ok := s.runtimes[e]; ok && rt.scriptPath == path {
		if rt.failed {
			return rt, fmt.Errorf("script failed to compile")
		}
		return rt, nil
	}

	rt := &targetScriptRuntime{
		scriptPath: path,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.runtimes[e] = rt

	compiled, err := compileTargetScript(path)
	if err != nil {
		return rt, err
	}
	rt.compiled = compiled
	return rt, nil
}

func compileTargetScript(path string) (*tengo.Compiled, error) {
	scriptBytes, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}

	src := string(scriptBytes) + "\n" + targetDispatchScript
	script := tengo.NewScript([]byte(src))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return script.Compile()
}

func (rt *targetScriptRuntime) run(engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (s *TargetScriptSystem) grounded(phys *component.PhysicsBody) bool {
	if s.physics == nil {
		return phys.Body.Velocity().Y == 0
	}
	return NewProber(s.physics, phys).ShapeProbe(targetGroundProbe)
}

func (s *TargetScriptSystem) buildEngine(w *ecs.World, e ecs.Entity, ts *component.TargetScript, phys *component.PhysicsBody) *tengo.ImmutableMap {
	body := phys.Body
	values := map[string]tengo.Object{}

	values["time"] = &tengo.Float{Value: s.time}
	values["dt"] = &tengo.Float{Value: s.dt}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		pos := body.Position()
		return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: pos.X}, &tengo.Float{Value: pos.Y}}}, nil
	}}

	values["grounded"] = &tengo.UserFunction{Name: "grounded", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if s.grounded(phys) {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	// move(dir) sets horizontal speed to dir * move_speed.
	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		dir := 0.0
		if len(args) > 0 {
			if f, ok := tengo.ToFloat64(args[0]); ok {
				dir = f
			}
		}
		vel := body.Velocity()
		body.SetVelocityVector(cp.Vector{X: dir * ts.MoveSpeed, Y: vel.Y})
		return tengo.UndefinedValue, nil
	}}

	values["jump"] = &tengo.UserFunction{Name: "jump", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !s.grounded(phys) {
			return tengo.FalseValue, nil
		}
		vel := body.Velocity()
		body.SetVelocityVector(cp.Vector{X: vel.X, Y: ts.JumpSpeed})
		return tengo.TrueValue, nil
	}}

	// strike(damage) hits every enemy within reach and returns how many.
	values["strike"] = &tengo.UserFunction{Name: "strike", Value: func(args ...tengo.Object) (tengo.Object, error) {
		damage := 1.0
		if len(args) > 0 {
			if f, ok := tengo.ToFloat64(args[0]); ok {
				damage = f
			}
		}
		return &tengo.Int{Value: int64(strike(w, body.Position(), ts.StrikeReach, damage))}, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if !s.Verbose {
			return tengo.UndefinedValue, nil
		}
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		log.Printf("target: entity=%s %s", e, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func strike(w *ecs.World, from cp.Vector, reach, damage float64) int {
	hits := 0
	ecs.ForEach2(w, component.AITagComponent.Kind(), component.LocomotionComponent.Kind(), func(e ecs.Entity, _ *component.AITag, loco *component.Locomotion) {
		if loco.Agent == nil || !loco.Agent.IsAlive() {
			return
		}
		x, y, ok := entityPosition(w, e)
		if !ok {
			return
		}
		if pos := (cp.Vector{X: x, Y: y}); pos.Distance(from) > reach {
			return
		}
		req := &component.DamageKnockback{SourceX: from.X, SourceY: from.Y, Damage: damage}
		if err := ecs.Add(w, e, component.DamageKnockbackRequestComponent.Kind(), req); err != nil {
			return
		}
		hits++
	})
	return hits
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
