package component

import "github.com/jakecoffman/cp"

// GridCell addresses a level tile; Row 0 is the bottom row.
type GridCell struct {
	Col int
	Row int
}

// Pathfinding stores grid-based pathfinding results and settings.
type Pathfinding struct {
	GridSize     float64
	RepathFrames int
	FrameCounter int
	// Speed is the steering speed along the path, in world units per second.
	Speed float64

	Goal    cp.Vector
	HasGoal bool
	// Pending is set when the goal moved to another cell and the path has
	// not been recomputed yet.
	Pending bool

	LastStart  GridCell
	LastTarget GridCell

	Path    []cp.Vector
	Visited int
}

var PathfindingComponent = NewComponent[Pathfinding]()
