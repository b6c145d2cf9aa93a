package system

import (
	"container/heap"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
)

const (
	defaultPathRepathFrames = 15

	supportedStepCost = 1.0
	airStepCost       = 3.0
)

// PathfindingSystem runs A* over the level tile grid for every entity with a
// Pathfinding component and a goal.
type PathfindingSystem struct{}

func NewPathfindingSystem() *PathfindingSystem {
	return &PathfindingSystem{}
}

func (ps *PathfindingSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}

	bounds, ok := levelBounds(w)
	if !ok {
		return
	}

	ecs.ForEach(w, component.PathfindingComponent.Kind(), func(e ecs.Entity, pf *component.Pathfinding) {
		if !pf.HasGoal {
			return
		}
		if pf.GridSize <= 0 {
			pf.GridSize = bounds.TileSize
		}
		if pf.RepathFrames <= 0 {
			pf.RepathFrames = defaultPathRepathFrames
		}

		startX, startY, ok := entityPosition(w, e)
		if !ok {
			return
		}
		start := bounds.Cell(startX, startY)
		goal := bounds.Cell(pf.Goal.X, pf.Goal.Y)

		pf.FrameCounter++
		if !pf.Pending && pf.FrameCounter%pf.RepathFrames != 0 &&
			start == pf.LastStart && len(pf.Path) > 0 {
			return
		}

		path, visited := astarPath(start, goal, bounds)
		pf.Path = gridPathToWorld(path, bounds)
		pf.Visited = visited
		pf.LastStart = start
		pf.LastTarget = cellOf(pf.Goal, pf.GridSize)
		pf.Pending = false
	})
}

func entityPosition(w *ecs.World, ent ecs.Entity) (float64, float64, bool) {
	if pb, ok := ecs.Get(w, ent, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		pos := pb.Body.Position()
		return pos.X, pos.Y, true
	}
	if t, ok := ecs.Get(w, ent, component.TransformComponent.Kind()); ok {
		return t.X, t.Y, true
	}
	return 0, 0, false
}

func levelBounds(w *ecs.World) (*component.LevelBounds, bool) {
	boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind())
	if !ok {
		return nil, false
	}
	return ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind())
}

// cellOf is the unclamped cell of a world point, used to notice goal moves.
func cellOf(p cp.Vector, gridSize float64) component.GridCell {
	if gridSize <= 0 {
		gridSize = 1
	}
	return component.GridCell{
		Col: int(math.Floor(p.X / gridSize)),
		Row: int(math.Floor(p.Y / gridSize)),
	}
}

func gridPathToWorld(path []component.GridCell, bounds *component.LevelBounds) []cp.Vector {
	if len(path) == 0 {
		return nil
	}
	out := make([]cp.Vector, 0, len(path))
	for _, c := range path {
		x, y := bounds.Center(c)
		out = append(out, cp.Vector{X: x, Y: y})
	}
	return out
}

// supported reports whether a walker could stand in or cling beside the cell.
func supported(bounds *component.LevelBounds, c component.GridCell) bool {
	return bounds.Blocked(c.Col, c.Row-1) ||
		bounds.Blocked(c.Col-1, c.Row-1) ||
		bounds.Blocked(c.Col+1, c.Row-1) ||
		bounds.Blocked(c.Col-1, c.Row) ||
		bounds.Blocked(c.Col+1, c.Row)
}

func stepCost(bounds *component.LevelBounds, c component.GridCell) float64 {
	if supported(bounds, c) {
		return supportedStepCost
	}
	return airStepCost
}

func astarPath(start, goal component.GridCell, bounds *component.LevelBounds) ([]component.GridCell, int) {
	gridW, gridH := bounds.Cols, bounds.Rows
	if gridW <= 0 || gridH <= 0 {
		return nil, 0
	}
	if bounds.Blocked(start.Col, start.Row) || bounds.Blocked(goal.Col, goal.Row) {
		return nil, 0
	}

	open := &openSet{}
	heap.Init(open)

	cameFrom := make([]int, gridW*gridH)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	gScore := make([]float64, gridW*gridH)
	for i := range gScore {
		gScore[i] = math.Inf(1)
	}
	closed := make([]bool, gridW*gridH)
	startIdx := start.Row*gridW + start.Col
	goalIdx := goal.Row*gridW + goal.Col
	gScore[startIdx] = 0
	heap.Push(open, &openItem{pos: start, f: heuristic(start, goal), g: 0})

	visited := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		cur := current.pos
		curIdx := cur.Row*gridW + cur.Col
		if closed[curIdx] {
			continue
		}
		closed[curIdx] = true
		visited++

		if curIdx == goalIdx {
			return reconstructPath(cameFrom, gridW, startIdx, goalIdx), visited
		}

		for _, n := range neighbors(cur, gridW, gridH) {
			if bounds.Blocked(n.Col, n.Row) {
				continue
			}
			idx := n.Row*gridW + n.Col
			tentativeG := gScore[curIdx] + stepCost(bounds, n)
			if tentativeG < gScore[idx] {
				cameFrom[idx] = curIdx
				gScore[idx] = tentativeG
				f := tentativeG + heuristic(n, goal)
				heap.Push(open, &openItem{pos: n, f: f, g: tentativeG})
			}
		}
	}

	return nil, visited
}

func reconstructPath(cameFrom []int, gridW int, startIdx, goalIdx int) []component.GridCell {
	if startIdx == goalIdx {
		return []component.GridCell{{Col: startIdx % gridW, Row: startIdx / gridW}}
	}
	if goalIdx < 0 || goalIdx >= len(cameFrom) || cameFrom[goalIdx] == -1 {
		return nil
	}

	path := make([]component.GridCell, 0, 32)
	cur := goalIdx
	for cur != -1 {
		path = append(path, component.GridCell{Col: cur % gridW, Row: cur / gridW})
		if cur == startIdx {
			break
		}
		cur = cameFrom[cur]
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func neighbors(p component.GridCell, gridW, gridH int) []component.GridCell {
	out := make([]component.GridCell, 0, 4)
	if p.Col > 0 {
		out = append(out, component.GridCell{Col: p.Col - 1, Row: p.Row})
	}
	if p.Col < gridW-1 {
		out = append(out, component.GridCell{Col: p.Col + 1, Row: p.Row})
	}
	if p.Row > 0 {
		out = append(out, component.GridCell{Col: p.Col, Row: p.Row - 1})
	}
	if p.Row < gridH-1 {
		out = append(out, component.GridCell{Col: p.Col, Row: p.Row + 1})
	}
	return out
}

func heuristic(a, b component.GridCell) float64 {
	return math.Abs(float64(a.Col-b.Col)) + math.Abs(float64(a.Row-b.Row))
}

type openItem struct {
	pos   component.GridCell
	f     float64
	g     float64
	index int
}

type openSet []*openItem

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].f < o[j].f }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}
func (o *openSet) Push(x any) {
	item := x.(*openItem)
	item.index = len(*o)
	*o = append(*o, item)
}
func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*o = old[:n-1]
	return item
}

// GridPlanner exposes an entity's Pathfinding component to the locomotion
// core. It implements both the planner and the steering contract.
type GridPlanner struct {
	pf   *component.Pathfinding
	phys *component.PhysicsBody
}

// NewGridPlanner stores speed on pf so later retunes can change it.
func NewGridPlanner(pf *component.Pathfinding, phys *component.PhysicsBody, speed float64) *GridPlanner {
	pf.Speed = speed
	return &GridPlanner{pf: pf, phys: phys}
}

func (g *GridPlanner) position() cp.Vector {
	if g.phys == nil || g.phys.Body == nil {
		return cp.Vector{}
	}
	return g.phys.Body.Position()
}

// SetDestination marks the path stale when the goal crossed into another cell.
func (g *GridPlanner) SetDestination(p cp.Vector) {
	if g == nil || g.pf == nil {
		return
	}
	g.pf.Goal = p
	if !g.pf.HasGoal || cellOf(p, g.pf.GridSize) != g.pf.LastTarget {
		g.pf.Pending = true
	}
	g.pf.HasGoal = true
}

func (g *GridPlanner) HasPath() bool {
	return g != nil && g.pf != nil && len(g.pf.Path) > 0
}

// RemainingPath drops the nodes behind the one nearest the agent.
func (g *GridPlanner) RemainingPath() ([]cp.Vector, bool) {
	if !g.HasPath() {
		return nil, false
	}
	path := g.pf.Path
	pos := g.position()
	best, bestDist := 0, math.Inf(1)
	for i, p := range path {
		if d := p.DistanceSq(pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return path[best:], g.pf.Pending
}

func (g *GridPlanner) SteeringTarget() (cp.Vector, bool) {
	remaining, _ := g.RemainingPath()
	switch len(remaining) {
	case 0:
		return cp.Vector{}, false
	case 1:
		return remaining[0], true
	}
	return remaining[1], true
}

func (g *GridPlanner) DesiredVelocity() cp.Vector {
	target, ok := g.SteeringTarget()
	if !ok {
		return cp.Vector{}
	}
	delta := target.Sub(g.position())
	if delta.LengthSq() < 1e-9 {
		return cp.Vector{}
	}
	return delta.Normalize().Mult(g.pf.Speed)
}
