package sim

import (
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/ecs/entity"
	"github.com/milk9111/pursuit/ecs/system"
	"github.com/milk9111/pursuit/locomotion"
	"github.com/milk9111/pursuit/prefabs"
)

// Options selects the prefabs a simulation is built from. Enemy and Target
// override the prefabs named by the level.
type Options struct {
	Level   string
	Enemy   string
	Target  string
	Verbose bool
}

// Stats counts what happened since the simulation started.
type Stats struct {
	Ticks        int
	Jumps        int
	Attacks      int
	Hits         int
	Deaths       int
	StateChanges int
}

// Sim is a headless world running the pursuit stack at a fixed step.
type Sim struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	scripts   *system.TargetScriptSystem
	ai        *system.AISystem

	level       prefabs.LevelSpec
	grid        prefabs.LevelGrid
	enemyPrefab string
	enemies     []ecs.Entity
	target      ecs.Entity
	hasTarget   bool

	step    float64
	verbose bool
	stats   Stats
}

func New(opts Options) (*Sim, error) {
	if opts.Level == "" {
		opts.Level = "step"
	}
	level, err := prefabs.LoadLevelSpec(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	grid, err := level.Grid()
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if level.TileSize <= 0 {
		level.TileSize = 1
	}
	if opts.Enemy != "" {
		level.Enemy = opts.Enemy
	}
	if opts.Target != "" {
		level.Target = opts.Target
	}

	enemySpec, err := prefabs.LoadEnemySpec(level.Enemy)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	cfg, err := enemySpec.Config()
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Sim{
		world:       ecs.NewWorld(),
		level:       level,
		grid:        grid,
		enemyPrefab: level.Enemy,
		step:        cfg.PhysicsStep,
		verbose:     opts.Verbose,
	}
	s.physics = system.NewPhysicsSystem(cfg.WorldGravity, cfg.PhysicsStep)
	s.physics.Verbose = opts.Verbose
	s.scripts = system.NewTargetScriptSystem(s.physics, cfg.PhysicsStep)
	s.scripts.Verbose = opts.Verbose
	s.ai = system.NewAISystem(cfg.PhysicsStep)
	s.ai.Verbose = opts.Verbose

	// Scripts move the target first so enemies plan against its latest
	// position; physics runs last and leaves contacts for the next tick.
	s.scheduler = ecs.NewScheduler(
		s.scripts,
		system.NewPathfindingSystem(),
		s.ai,
		system.NewDamageKnockbackSystem(),
		s.physics,
	)

	if _, err := entity.LoadLevelToWorld(s.world, level, grid); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	if grid.HasTarget {
		targetSpec, err := prefabs.LoadTargetSpec(level.Target)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		x, y := entity.SpawnPosition(grid.Target, level.TileSize, targetSpec.Body.Height)
		s.target, err = entity.NewTarget(s.world, targetSpec, x, y)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		s.hasTarget = true
	}

	for _, spawn := range grid.Enemies {
		x, y := entity.SpawnPosition(spawn, level.TileSize, enemySpec.Body.Height)
		e, err := entity.NewEnemy(s.world, s.physics, enemySpec, x, y)
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		s.enemies = append(s.enemies, e)
	}

	if s.verbose {
		log.Printf("sim: level=%s size=%dx%d enemies=%d enemy=%s target=%s", level.Name, grid.Cols, grid.Rows, len(s.enemies), level.Enemy, level.Target)
	}
	return s, nil
}

func (s *Sim) World() *ecs.World {
	return s.world
}

// Physics exposes the physics system for debug drawing.
func (s *Sim) Physics() *system.PhysicsSystem {
	return s.physics
}

func (s *Sim) Level() prefabs.LevelSpec {
	return s.level
}

func (s *Sim) Grid() prefabs.LevelGrid {
	return s.grid
}

func (s *Sim) Enemies() []ecs.Entity {
	return append([]ecs.Entity(nil), s.enemies...)
}

// Dt is the fixed step in seconds.
func (s *Sim) Dt() float64 {
	return s.step
}

func (s *Sim) Stats() Stats {
	return s.stats
}

// Step advances the world by one fixed step and folds the step's events
// into the stats.
func (s *Sim) Step() {
	s.scheduler.Update(s.world)
	s.stats.Ticks++

	for _, evt := range s.world.Events().Drain() {
		switch evt.Type {
		case ecs.EventJump:
			s.stats.Jumps++
		case ecs.EventAttack:
			s.stats.Attacks++
		case ecs.EventDamage:
			s.stats.Hits++
		case ecs.EventDeath:
			s.stats.Deaths++
		case ecs.EventStateChange:
			s.stats.StateChanges++
		}
		if s.verbose {
			log.Printf("sim: tick=%d entity=%s event=%s data=%v", s.stats.Ticks, evt.Entity, evt.Type, evt.Data)
		}
	}
}

// Run advances n ticks.
func (s *Sim) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Apply reacts to an edited prefab: scripts are recompiled and the enemy
// prefab's tuning is pushed into every live machine.
func (s *Sim) Apply(change prefabs.Change) error {
	if change.Script {
		s.scripts.Reload()
		return nil
	}
	if change.Name != s.enemyPrefab {
		return nil
	}
	spec, err := prefabs.LoadEnemySpec(s.enemyPrefab)
	if err != nil {
		return fmt.Errorf("sim: reload: %w", err)
	}
	cfg, err := spec.Config()
	if err != nil {
		return fmt.Errorf("sim: reload: %w", err)
	}
	return s.Retune(cfg)
}

// Retune swaps the tuning of every enemy in place. The fixed step cannot
// change mid-run, so the running step is kept.
func (s *Sim) Retune(cfg locomotion.Config) error {
	cfg.PhysicsStep = s.step
	for _, e := range s.enemies {
		loco, ok := ecs.Get(s.world, e, component.LocomotionComponent.Kind())
		if !ok || loco.Machine == nil {
			continue
		}
		if err := loco.Machine.SetConfig(cfg); err != nil {
			return fmt.Errorf("sim: retune %s: %w", e, err)
		}
	}
	s.physics.SetGravity(cfg.WorldGravity)
	if s.verbose {
		log.Printf("sim: retuned %d enemies", len(s.enemies))
	}
	return nil
}

// AgentSnapshot is a read-only view of one enemy for viewers and reports.
type AgentSnapshot struct {
	Entity   ecs.Entity
	Kind     locomotion.EnemyKind
	Position cp.Vector
	Velocity cp.Vector
	Width    float64
	Height   float64
	Alive    bool
	Health   float64

	State      locomotion.BehaviorState
	Intent     locomotion.Intent
	Context    locomotion.LocomotionContext
	Path       []cp.Vector
	Jump       locomotion.JumpIntent
	HasJump    bool
	RunThrough locomotion.RunThroughTarget
	HasRun     bool
	Jumps      int
	Attacks    int
}

type TargetSnapshot struct {
	Position cp.Vector
	Width    float64
	Height   float64
}

type Snapshot struct {
	Tick      int
	Time      float64
	Agents    []AgentSnapshot
	Target    TargetSnapshot
	HasTarget bool
}

func (s *Sim) Snapshot() Snapshot {
	snap := Snapshot{Tick: s.stats.Ticks, Time: float64(s.stats.Ticks) * s.step}

	for _, e := range s.enemies {
		loco, ok := ecs.Get(s.world, e, component.LocomotionComponent.Kind())
		if !ok || loco.Machine == nil {
			continue
		}
		a := AgentSnapshot{
			Entity:  e,
			Kind:    loco.Kind,
			State:   loco.Machine.State(),
			Intent:  loco.Last,
			Context: loco.Machine.Context(),
			Path:    append([]cp.Vector(nil), loco.Machine.Path().Points...),
			Jumps:   loco.Jumps,
			Attacks: loco.Attacks,
		}
		if loco.Agent != nil {
			a.Alive = loco.Agent.IsAlive()
			a.Health = loco.Agent.Health
		}
		a.Jump, a.HasJump = loco.Machine.JumpIntent()
		a.RunThrough, a.HasRun = loco.Machine.RunThrough()
		if phys, ok := ecs.Get(s.world, e, component.PhysicsBodyComponent.Kind()); ok && phys.Body != nil {
			a.Position = phys.Body.Position()
			a.Velocity = phys.Body.Velocity()
			a.Width, a.Height = phys.Width, phys.Height
		}
		snap.Agents = append(snap.Agents, a)
	}

	if s.hasTarget {
		if phys, ok := ecs.Get(s.world, s.target, component.PhysicsBodyComponent.Kind()); ok && phys.Body != nil {
			snap.Target = TargetSnapshot{Position: phys.Body.Position(), Width: phys.Width, Height: phys.Height}
			snap.HasTarget = true
		}
	}
	return snap
}
