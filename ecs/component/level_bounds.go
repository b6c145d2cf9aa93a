package component

import "math"

// LevelBounds stores the world-space bounds of the current level and its
// solid tile grid.
type LevelBounds struct {
	Width    float64
	Height   float64
	TileSize float64
	Cols     int
	Rows     int
	// Solid is indexed row*Cols+col with row 0 at the bottom.
	Solid []bool
}

var LevelBoundsComponent = NewComponent[LevelBounds]()

// Blocked reports whether the cell is solid. Cells outside the level count
// as solid.
func (b *LevelBounds) Blocked(col, row int) bool {
	if b == nil || col < 0 || row < 0 || col >= b.Cols || row >= b.Rows {
		return true
	}
	return b.Solid[row*b.Cols+col]
}

// Cell returns the grid cell containing the world point, clamped to the level.
func (b *LevelBounds) Cell(x, y float64) GridCell {
	if b == nil || b.TileSize <= 0 {
		return GridCell{}
	}
	col := int(math.Floor(x / b.TileSize))
	row := int(math.Floor(y / b.TileSize))
	col = min(max(col, 0), b.Cols-1)
	row = min(max(row, 0), b.Rows-1)
	return GridCell{Col: col, Row: row}
}

// Center returns the world-space center of a cell.
func (b *LevelBounds) Center(c GridCell) (float64, float64) {
	half := b.TileSize * 0.5
	return float64(c.Col)*b.TileSize + half, float64(c.Row)*b.TileSize + half
}
