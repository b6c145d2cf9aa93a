package entity

import (
	"fmt"

	"github.com/milk9111/pursuit/ecs"
	"github.com/milk9111/pursuit/ecs/component"
	"github.com/milk9111/pursuit/prefabs"
)

// LoadLevelToWorld adds the level bounds entity and static colliders for the
// solid tiles, merged greedily into as few rectangles as possible.
func LoadLevelToWorld(w *ecs.World, spec prefabs.LevelSpec, grid prefabs.LevelGrid) (ecs.Entity, error) {
	tileSize := spec.TileSize
	if tileSize <= 0 {
		tileSize = 1
	}

	boundsEntity := ecs.CreateEntity(w)
	bounds := &component.LevelBounds{
		Width:    float64(grid.Cols) * tileSize,
		Height:   float64(grid.Rows) * tileSize,
		TileSize: tileSize,
		Cols:     grid.Cols,
		Rows:     grid.Rows,
		Solid:    append([]bool(nil), grid.Solid...),
	}
	if err := ecs.Add(w, boundsEntity, component.LevelBoundsComponent.Kind(), bounds); err != nil {
		return 0, fmt.Errorf("level: add bounds: %w", err)
	}

	for _, r := range mergeSolidTiles(grid) {
		if err := addSolidRect(w, r, tileSize); err != nil {
			return 0, err
		}
	}

	return boundsEntity, nil
}

// tileRect covers tiles [Col, Col+W) x [Row, Row+H).
type tileRect struct {
	Col, Row int
	W, H     int
}

// mergeSolidTiles grows each unvisited solid tile right as far as the row
// allows, then up while every tile of the span is solid. Stacked tiles
// become one box, so wall faces have no seams between rows.
func mergeSolidTiles(grid prefabs.LevelGrid) []tileRect {
	width, height := grid.Cols, grid.Rows
	if width <= 0 || height <= 0 {
		return nil
	}
	visited := make([]bool, width*height)
	open := func(x, y int) bool {
		idx := y*width + x
		return idx < len(grid.Solid) && grid.Solid[idx] && !visited[idx]
	}

	var rects []tileRect
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !open(x, y) {
				continue
			}

			maxW := 0
			for x2 := x; x2 < width && open(x2, y); x2++ {
				maxW++
			}

			maxH := 1
			for y2 := y + 1; y2 < height; y2++ {
				rowOK := true
				for x2 := x; x2 < x+maxW; x2++ {
					if !open(x2, y2) {
						rowOK = false
						break
					}
				}
				if !rowOK {
					break
				}
				maxH++
			}

			for yy := y; yy < y+maxH; yy++ {
				for xx := x; xx < x+maxW; xx++ {
					visited[yy*width+xx] = true
				}
			}
			rects = append(rects, tileRect{Col: x, Row: y, W: maxW, H: maxH})
		}
	}
	return rects
}

func addSolidRect(w *ecs.World, r tileRect, tileSize float64) error {
	e := ecs.CreateEntity(w)
	width := float64(r.W) * tileSize
	height := float64(r.H) * tileSize
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X: float64(r.Col)*tileSize + width/2,
		Y: float64(r.Row)*tileSize + height/2,
	}); err != nil {
		return fmt.Errorf("level: add tile transform: %w", err)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
		Width:  width,
		Height: height,
		Static: true,
	}); err != nil {
		return fmt.Errorf("level: add tile body: %w", err)
	}
	return nil
}

// SpawnPosition returns the body center that rests a collider of the given
// height on the floor of the spawn tile.
func SpawnPosition(s prefabs.Spawn, tileSize, height float64) (float64, float64) {
	return (float64(s.Col) + 0.5) * tileSize, float64(s.Row)*tileSize + height/2
}
