package entity

import (
	"testing"

	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/ecs/system"
	"github.com/milk9111/pursuit/prefabs"
)

func TestLoadLevelToWorldMergesRuns(t *testing.T) {
	spec := prefabs.LevelSpec{Name: "runs", TileSize: 2, Tiles: []string{
		"#.E.##",
		"######",
	}}
	grid, err := spec.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	w := ecs.NewWorld()
	boundsEntity, err := LoadLevelToWorld(w, spec, grid)
	if err != nil {
		t.Fatalf("load level: %v", err)
	}

	bounds, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
	if !ok {
		t.Fatalf("bounds entity has no bounds")
	}
	if bounds.Width != 12 || bounds.Height != 4 || bounds.Cols != 6 || bounds.Rows != 2 {
		t.Fatalf("bounds = %+v", bounds)
	}
	if !bounds.Blocked(0, 1) || bounds.Blocked(1, 1) {
		t.Fatalf("bounds solid grid does not match the tiles")
	}

	type box struct{ x, y, w float64 }
	var got []box
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(_ ecs.Entity, tr *component.Transform, body *component.PhysicsBody) {
		if !body.Static || body.Height != 2 {
			t.Fatalf("tile body = %+v, want static and one tile tall", body)
		}
		got = append(got, box{tr.X, tr.Y, body.Width})
	})
	want := map[box]bool{
		{6, 1, 12}: true, // floor row as one box
		{1, 3, 2}:  true,
		{10, 3, 4}: true,
	}
	if len(got) != len(want) {
		t.Fatalf("boxes = %+v, want %d", got, len(want))
	}
	for _, b := range got {
		if !want[b] {
			t.Fatalf("unexpected box %+v", b)
		}
	}
}

func TestLoadLevelToWorldMergesColumns(t *testing.T) {
	spec := prefabs.LevelSpec{Name: "walls", TileSize: 1, Tiles: []string{
		"#..#",
		"#.E#",
		"####",
	}}
	grid, err := spec.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	w := ecs.NewWorld()
	if _, err := LoadLevelToWorld(w, spec, grid); err != nil {
		t.Fatalf("load level: %v", err)
	}

	type box struct{ x, y, w, h float64 }
	got := map[box]bool{}
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(_ ecs.Entity, tr *component.Transform, body *component.PhysicsBody) {
		got[box{tr.X, tr.Y, body.Width, body.Height}] = true
	})
	want := []box{
		{2, 0.5, 4, 1}, // floor
		{0.5, 2, 1, 2}, // left wall, both rows in one box
		{3.5, 2, 1, 2}, // right wall
	}
	if len(got) != len(want) {
		t.Fatalf("boxes = %+v, want %+v", got, want)
	}
	for _, b := range want {
		if !got[b] {
			t.Fatalf("missing box %+v in %+v", b, got)
		}
	}
}

func TestMergeSolidTilesCoversEveryTile(t *testing.T) {
	spec, err := prefabs.LoadLevelSpec("stairs")
	if err != nil {
		t.Fatalf("load stairs: %v", err)
	}
	grid, err := spec.Grid()
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	covered := make([]int, len(grid.Solid))
	for _, r := range mergeSolidTiles(grid) {
		for row := r.Row; row < r.Row+r.H; row++ {
			for col := r.Col; col < r.Col+r.W; col++ {
				covered[row*grid.Cols+col]++
			}
		}
	}
	for i, solid := range grid.Solid {
		want := 0
		if solid {
			want = 1
		}
		if covered[i] != want {
			t.Fatalf("tile (%d,%d) covered %d times, want %d", i%grid.Cols, i/grid.Cols, covered[i], want)
		}
	}
}

func TestSpawnPosition(t *testing.T) {
	x, y := SpawnPosition(prefabs.Spawn{Col: 3, Row: 1}, 1, 0.9)
	if x != 3.5 || y != 1.45 {
		t.Fatalf("spawn = (%g, %g), want (3.5, 1.45)", x, y)
	}
	x, y = SpawnPosition(prefabs.Spawn{Col: 0, Row: 2}, 2, 1)
	if x != 1 || y != 4.5 {
		t.Fatalf("spawn = (%g, %g), want (1, 4.5)", x, y)
	}
}

func TestNewEnemy(t *testing.T) {
	spec, err := prefabs.LoadEnemySpec("brute.yaml")
	if err != nil {
		t.Fatalf("load brute: %v", err)
	}
	w := ecs.NewWorld()
	ps := system.NewPhysicsSystem(20, 1.0/60.0)
	e, err := NewEnemy(w, ps, spec, 2, 3)
	if err != nil {
		t.Fatalf("new enemy: %v", err)
	}

	for name, has := range map[string]bool{
		"tag":         ecs.Has(w, e, component.AITagComponent.Kind()),
		"contacts":    ecs.Has(w, e, component.ContactBufferComponent.Kind()),
		"pathfinding": ecs.Has(w, e, component.PathfindingComponent.Kind()),
		"locomotion":  ecs.Has(w, e, component.LocomotionComponent.Kind()),
	} {
		if !has {
			t.Fatalf("enemy missing %s", name)
		}
	}
	phys, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if phys.Mass != 2 || phys.Body.Mass() != 2 {
		t.Fatalf("mass = %g/%g, want 2", phys.Mass, phys.Body.Mass())
	}
	pf, _ := ecs.Get(w, e, component.PathfindingComponent.Kind())
	if pf.GridSize != 1 || pf.RepathFrames != 20 {
		t.Fatalf("pathfinding = %+v", pf)
	}
	loco, _ := ecs.Get(w, e, component.LocomotionComponent.Kind())
	if loco.Agent.Health != 6 || loco.Agent.MaxHealth != 6 {
		t.Fatalf("health = %g/%g, want 6", loco.Agent.Health, loco.Agent.MaxHealth)
	}

	cfg := loco.Machine.Config()
	if pf.Speed != cfg.MoveSpeed*cfg.ChaseSpeedMultiplier {
		t.Fatalf("steering speed = %g, want %g", pf.Speed, cfg.MoveSpeed*cfg.ChaseSpeedMultiplier)
	}
	cfg.MoveSpeed *= 2
	if err := loco.Machine.SetConfig(cfg); err != nil {
		t.Fatalf("set config: %v", err)
	}
	if pf.Speed != cfg.MoveSpeed*cfg.ChaseSpeedMultiplier {
		t.Fatalf("steering speed = %g after retune, want %g", pf.Speed, cfg.MoveSpeed*cfg.ChaseSpeedMultiplier)
	}

	loco.Agent.Hit(6, phys.Body.Velocity(), 0)
	var damage, death bool
	for _, evt := range w.Events().Drain() {
		switch evt.Type {
		case ecs.EventDamage:
			damage = evt.Entity == e
		case ecs.EventDeath:
			death = evt.Entity == e
		}
	}
	if !damage || !death {
		t.Fatalf("lethal hit should push damage and death events, damage=%v death=%v", damage, death)
	}
}

func TestNewTarget(t *testing.T) {
	w := ecs.NewWorld()
	e, err := NewTarget(w, prefabs.TargetSpec{Body: prefabs.BodySpec{Width: 0.6, Height: 0.9}}, 1, 1)
	if err != nil {
		t.Fatalf("new target: %v", err)
	}
	if ecs.Has(w, e, component.TargetScriptComponent.Kind()) {
		t.Fatalf("a target without a script should not get a script component")
	}
	if pos, ok := system.TargetPosition(w); !ok || pos.X != 1 || pos.Y != 1 {
		t.Fatalf("target position = %v ok=%v", pos, ok)
	}

	spec, err := prefabs.LoadTargetSpec("pacer.yaml")
	if err != nil {
		t.Fatalf("load pacer: %v", err)
	}
	e, err = NewTarget(ecs.NewWorld(), spec, 0, 0)
	if err != nil || !e.Valid() {
		t.Fatalf("new scripted target: %v", err)
	}
}
