package world

import (
	"math"
	"math/rand"

	"vira-wilds/sim/internal/geom"
)

// Cell addresses one terrain tile.
type Cell struct {
	Col int
	Row int
}

// Terrain is the static collision surface actors move across.
type Terrain interface {
	GridIndex(pos geom.Vec2) (Cell, bool)
	SolidAround(cell Cell, radius int, buf []geom.Rect) []geom.Rect
	Bounds() geom.Rect
	TileSize() float64
}

// Grid is a rectangular tile map of solid and open tiles.
type Grid struct {
	cols, rows int
	tileSize   float64
	solid      []bool

	blocks []geom.Rect
	dirty  bool
}

// NewGrid returns an open grid of cols x rows tiles.
func NewGrid(cols, rows int, tileSize float64) *Grid {
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	return &Grid{
		cols:     cols,
		rows:     rows,
		tileSize: tileSize,
		solid:    make([]bool, cols*rows),
		dirty:    true,
	}
}

// GenerateGrid builds the terrain for cfg: a solid border plus scattered
// rocks drawn from the seed. The central quarter of the map stays open.
func GenerateGrid(cfg Config) *Grid {
	cfg = cfg.normalized()
	g := NewGrid(cfg.Width, cfg.Height, cfg.TileSize)
	for col := 0; col < g.cols; col++ {
		g.SetSolid(Cell{Col: col, Row: 0}, true)
		g.SetSolid(Cell{Col: col, Row: g.rows - 1}, true)
	}
	for row := 0; row < g.rows; row++ {
		g.SetSolid(Cell{Col: 0, Row: row}, true)
		g.SetSolid(Cell{Col: g.cols - 1, Row: row}, true)
	}
	g.scatter(NewDeterministicRNG(cfg.Seed, "terrain.rocks"), cfg.ObstacleDensity)
	return g
}

func (g *Grid) scatter(rng *rand.Rand, density float64) {
	if density <= 0 {
		return
	}
	clearCols := g.cols / 4
	clearRows := g.rows / 4
	for row := 1; row < g.rows-1; row++ {
		for col := 1; col < g.cols-1; col++ {
			if abs(col-g.cols/2) < clearCols && abs(row-g.rows/2) < clearRows {
				continue
			}
			if RandomFloat(rng) < density {
				g.SetSolid(Cell{Col: col, Row: row}, true)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (g *Grid) Cols() int {
	if g == nil {
		return 0
	}
	return g.cols
}

func (g *Grid) Rows() int {
	if g == nil {
		return 0
	}
	return g.rows
}

// TileSize reports the edge length of one tile in world units.
func (g *Grid) TileSize() float64 {
	if g == nil {
		return DefaultTileSize
	}
	return g.tileSize
}

// Bounds is the world rectangle covered by the grid.
func (g *Grid) Bounds() geom.Rect {
	if g == nil {
		return geom.Rect{}
	}
	return geom.R(0, 0, float64(g.cols)*g.tileSize, float64(g.rows)*g.tileSize)
}

func (g *Grid) inBounds(cell Cell) bool {
	return g != nil && cell.Col >= 0 && cell.Row >= 0 && cell.Col < g.cols && cell.Row < g.rows
}

func (g *Grid) index(cell Cell) int {
	return cell.Row*g.cols + cell.Col
}

// GridIndex locates the tile under pos. Positions outside the map have none.
func (g *Grid) GridIndex(pos geom.Vec2) (Cell, bool) {
	if g == nil || math.IsNaN(pos.X) || math.IsNaN(pos.Y) {
		return Cell{}, false
	}
	cell := Cell{
		Col: int(math.Floor(pos.X / g.tileSize)),
		Row: int(math.Floor(pos.Y / g.tileSize)),
	}
	if !g.inBounds(cell) {
		return Cell{}, false
	}
	return cell, true
}

// Solid reports whether cell blocks movement. Cells off the map do not.
func (g *Grid) Solid(cell Cell) bool {
	if !g.inBounds(cell) {
		return false
	}
	return g.solid[g.index(cell)]
}

// SetSolid marks cell solid or open.
func (g *Grid) SetSolid(cell Cell, solid bool) {
	if !g.inBounds(cell) {
		return
	}
	i := g.index(cell)
	if g.solid[i] == solid {
		return
	}
	g.solid[i] = solid
	g.dirty = true
}

// TileBounds is the world rectangle of cell.
func (g *Grid) TileBounds(cell Cell) geom.Rect {
	size := g.TileSize()
	return geom.R(float64(cell.Col)*size, float64(cell.Row)*size, size, size)
}

// SolidAround appends the rectangles of solid tiles within radius cells of
// cell to buf[:0] and returns it.
func (g *Grid) SolidAround(cell Cell, radius int, buf []geom.Rect) []geom.Rect {
	buf = buf[:0]
	if g == nil || radius < 0 {
		return buf
	}
	for row := cell.Row - radius; row <= cell.Row+radius; row++ {
		for col := cell.Col - radius; col <= cell.Col+radius; col++ {
			c := Cell{Col: col, Row: row}
			if g.Solid(c) {
				buf = append(buf, g.TileBounds(c))
			}
		}
	}
	return buf
}

// CollisionBlocks merges solid tiles into maximal rectangles, scanning rows
// top to bottom and growing each run downward while the full run stays solid.
// The result is cached until the grid changes.
func (g *Grid) CollisionBlocks() []geom.Rect {
	if g == nil {
		return nil
	}
	if !g.dirty {
		return g.blocks
	}
	used := make([]bool, len(g.solid))
	blocks := make([]geom.Rect, 0)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			start := Cell{Col: col, Row: row}
			if !g.solid[g.index(start)] || used[g.index(start)] {
				continue
			}
			width := 1
			for col+width < g.cols {
				next := g.index(Cell{Col: col + width, Row: row})
				if !g.solid[next] || used[next] {
					break
				}
				width++
			}
			height := 1
		grow:
			for row+height < g.rows {
				for c := col; c < col+width; c++ {
					below := g.index(Cell{Col: c, Row: row + height})
					if !g.solid[below] || used[below] {
						break grow
					}
				}
				height++
			}
			for r := row; r < row+height; r++ {
				for c := col; c < col+width; c++ {
					used[g.index(Cell{Col: c, Row: r})] = true
				}
			}
			blocks = append(blocks, geom.R(
				float64(col)*g.tileSize,
				float64(row)*g.tileSize,
				float64(width)*g.tileSize,
				float64(height)*g.tileSize,
			))
		}
	}
	g.blocks = blocks
	g.dirty = false
	return g.blocks
}
