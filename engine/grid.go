package engine

// SpatialGrid buckets body indices by cell for neighbor lookups.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates a grid covering width x height.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Covers reports whether the grid was built for the given size.
func (g *SpatialGrid) Covers(width, height float64) bool {
	return g.cols == int(width/g.cellSize)+1 && g.rows == int(height/g.cellSize)+1
}

// Clear removes all indices from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds index i at the given position.
func (g *SpatialGrid) Insert(i int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], i)
}

// QueryInto appends to dst every index stored in cells within radius of
// (x, y). Results are candidates; callers test actual distance.
func (g *SpatialGrid) QueryInto(dst []int, x, y, radius float64) []int {
	minCol, minRow := g.clamp(int((x-radius)/g.cellSize), int((y-radius)/g.cellSize))
	maxCol, maxRow := g.clamp(int((x+radius)/g.cellSize), int((y+radius)/g.cellSize))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			dst = append(dst, g.cells[row*g.cols+col]...)
		}
	}
	return dst
}

// cellIndex returns the flat index for a position, clamped to the grid.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col, row := g.clamp(int(x/g.cellSize), int(y/g.cellSize))
	return row*g.cols + col
}

func (g *SpatialGrid) clamp(col, row int) (int, int) {
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
