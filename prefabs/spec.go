package prefabs

import (
	"errors"
	"fmt"

	"github.com/milk9111/pursuit/locomotion"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := decodeSpec(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// decodeSpec unmarshals onto out, so fields already set on it act as
// defaults for keys the file omits.
func decodeSpec(filename string, out any) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

// BodySpec sizes a dynamic box collider in world units.
type BodySpec struct {
	Width        float64 `yaml:"width"`
	Height       float64 `yaml:"height"`
	Mass         float64 `yaml:"mass"`
	Friction     float64 `yaml:"friction"`
	GravityScale float64 `yaml:"gravity_scale"`
}

type EnemySpec struct {
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"`
	Health       float64           `yaml:"health"`
	Body         BodySpec          `yaml:"body"`
	RepathFrames int               `yaml:"repath_frames"`
	Locomotion   locomotion.Config `yaml:"locomotion"`
}

// LoadEnemySpec reads an enemy prefab. Locomotion keys left out of the file
// keep their DefaultConfig values.
func LoadEnemySpec(filename string) (EnemySpec, error) {
	spec := EnemySpec{
		Health:       3,
		Body:         BodySpec{Width: 0.8, Height: 0.9, Mass: 1, GravityScale: 1},
		RepathFrames: 15,
		Locomotion:   locomotion.DefaultConfig(),
	}
	if err := decodeSpec(filename, &spec); err != nil {
		return EnemySpec{}, err
	}
	if _, err := locomotion.ParseEnemyKind(spec.Kind); err != nil {
		return EnemySpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// Config returns the locomotion tuning with the kind's adjustments applied.
func (s EnemySpec) Config() (locomotion.Config, error) {
	kind, err := locomotion.ParseEnemyKind(s.Kind)
	if err != nil {
		return locomotion.Config{}, err
	}
	cfg := kind.Tune(s.Locomotion)
	if err := cfg.Validate(); err != nil {
		return locomotion.Config{}, fmt.Errorf("prefabs: enemy %q: %w", s.Name, err)
	}
	return cfg, nil
}

type TargetSpec struct {
	Name        string   `yaml:"name"`
	Body        BodySpec `yaml:"body"`
	MoveSpeed   float64  `yaml:"move_speed"`
	JumpSpeed   float64  `yaml:"jump_speed"`
	StrikeReach float64  `yaml:"strike_reach"`
	Script      string   `yaml:"script"`
}

func LoadTargetSpec(filename string) (TargetSpec, error) {
	spec := TargetSpec{
		Body:        BodySpec{Width: 0.6, Height: 0.9, Mass: 1, GravityScale: 1},
		MoveSpeed:   3,
		JumpSpeed:   10,
		StrikeReach: 1.2,
	}
	if err := decodeSpec(filename, &spec); err != nil {
		return TargetSpec{}, err
	}
	return spec, nil
}

var (
	ErrEmptyLevel   = errors.New("prefabs: level has no tiles")
	ErrNoEnemySpawn = errors.New("prefabs: level has no enemy spawn")
)

type LevelSpec struct {
	Name     string   `yaml:"name"`
	TileSize float64  `yaml:"tile_size"`
	Enemy    string   `yaml:"enemy"`
	Target   string   `yaml:"target"`
	Tiles    []string `yaml:"tiles"`
}

func LoadLevelSpec(name string) (LevelSpec, error) {
	spec := LevelSpec{TileSize: 1, Enemy: "enemy.yaml", Target: "target.yaml"}
	if err := decodeSpec(LevelPath(name), &spec); err != nil {
		return LevelSpec{}, err
	}
	return spec, nil
}

// Spawn is a tile position with row 0 at the bottom of the level.
type Spawn struct {
	Col int
	Row int
}

// LevelGrid is the parsed tile map of a level.
type LevelGrid struct {
	Cols    int
	Rows    int
	Solid   []bool
	Enemies []Spawn
	Target  Spawn
	// HasTarget is false when the level places no target.
	HasTarget bool
}

// Grid parses the tile rows. Rows are written top to bottom and flipped so
// row 0 is the floor; short rows are padded with air.
//
//	'#' solid   '.' or ' ' air   'E' enemy spawn   'T' target spawn
func (s LevelSpec) Grid() (LevelGrid, error) {
	rows := len(s.Tiles)
	cols := 0
	for _, line := range s.Tiles {
		cols = max(cols, len(line))
	}
	if rows == 0 || cols == 0 {
		return LevelGrid{}, ErrEmptyLevel
	}

	g := LevelGrid{Cols: cols, Rows: rows, Solid: make([]bool, cols*rows)}
	for i, line := range s.Tiles {
		row := rows - 1 - i
		for col, ch := range []byte(line) {
			switch ch {
			case '#':
				g.Solid[row*cols+col] = true
			case 'E', 'e':
				g.Enemies = append(g.Enemies, Spawn{Col: col, Row: row})
			case 'T', 't':
				if g.HasTarget {
					return LevelGrid{}, fmt.Errorf("prefabs: level %q: more than one target at col=%d row=%d", s.Name, col, row)
				}
				g.Target = Spawn{Col: col, Row: row}
				g.HasTarget = true
			case '.', ' ':
			default:
				return LevelGrid{}, fmt.Errorf("prefabs: level %q: unknown tile %q at col=%d row=%d", s.Name, ch, col, row)
			}
		}
	}
	if len(g.Enemies) == 0 {
		return LevelGrid{}, fmt.Errorf("%w: %q", ErrNoEnemySpawn, s.Name)
	}
	return g, nil
}
