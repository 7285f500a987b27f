package algorithms

import "math"

// Cell - grid coordinate (column, row)
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// OccupancyGrid - coarse boolean occupancy over the canvas extent
type OccupancyGrid struct {
	Cols     int
	Rows     int
	CellSize float64
	blocked  []bool // row-major, true = agent can't enter
}

// MaxGridCells bounds the occupancy grid allocation
const MaxGridCells = 1_000_000

// GridCells - cell count NewOccupancyGrid would allocate. Returned as a float
// so oversized canvases can't overflow; NaN or Inf inputs yield NaN or Inf.
func GridCells(width, height, cellSize float64) float64 {
	if cellSize <= 0 {
		cellSize = 1
	}
	return math.Max(1, math.Ceil(width/cellSize)) * math.Max(1, math.Ceil(height/cellSize))
}

// NewOccupancyGrid - empty grid covering width x height pixels. Callers
// check GridCells against MaxGridCells first.
func NewOccupancyGrid(width, height, cellSize float64) *OccupancyGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))
	return &OccupancyGrid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		blocked:  make([]bool, cols*rows),
	}
}

// Rasterize marks every cell whose center lies within obstacle radius + buffer.
// Pure: the same input always produces the same grid.
func Rasterize(obstacles []Circle, width, height, cellSize, buffer float64) *OccupancyGrid {
	g := NewOccupancyGrid(width, height, cellSize)
	for _, obs := range obstacles {
		reach := obs.Radius + buffer
		if reach <= 0 {
			continue
		}

		// Bounding box only; cells outside it cannot be within reach
		minCol := max(0, int(math.Floor((obs.Center.X-reach)/g.CellSize)))
		maxCol := min(g.Cols-1, int(math.Floor((obs.Center.X+reach)/g.CellSize)))
		minRow := max(0, int(math.Floor((obs.Center.Y-reach)/g.CellSize)))
		maxRow := min(g.Rows-1, int(math.Floor((obs.Center.Y+reach)/g.CellSize)))

		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				if g.CellCenter(Cell{col, row}).Dist(obs.Center) < reach {
					g.blocked[row*g.Cols+col] = true
				}
			}
		}
	}
	return g
}

// InBounds - grid range check
func (g *OccupancyGrid) InBounds(c Cell) bool {
	return c.Col >= 0 && c.Col < g.Cols && c.Row >= 0 && c.Row < g.Rows
}

// IsBlocked returns true for blocked or out-of-range cells
func (g *OccupancyGrid) IsBlocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[c.Row*g.Cols+c.Col]
}

// SetBlocked marks a single cell, ignoring out-of-range coordinates
func (g *OccupancyGrid) SetBlocked(c Cell, blocked bool) {
	if g.InBounds(c) {
		g.blocked[c.Row*g.Cols+c.Col] = blocked
	}
}

// CellOf maps a pixel position to its cell, clamped to the grid
func (g *OccupancyGrid) CellOf(p Vec2) Cell {
	col := int(math.Floor(p.X / g.CellSize))
	row := int(math.Floor(p.Y / g.CellSize))
	return Cell{
		Col: min(max(col, 0), g.Cols-1),
		Row: min(max(row, 0), g.Rows-1),
	}
}

// CellCenter returns the pixel center of a cell
func (g *OccupancyGrid) CellCenter(c Cell) Vec2 {
	return Vec2{
		X: (float64(c.Col) + 0.5) * g.CellSize,
		Y: (float64(c.Row) + 0.5) * g.CellSize,
	}
}

// BlockedCount - number of blocked cells, for stats and tests
func (g *OccupancyGrid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// Equal compares dimensions and occupancy
func (g *OccupancyGrid) Equal(o *OccupancyGrid) bool {
	if g.Cols != o.Cols || g.Rows != o.Rows || g.CellSize != o.CellSize {
		return false
	}
	for i := range g.blocked {
		if g.blocked[i] != o.blocked[i] {
			return false
		}
	}
	return true
}
