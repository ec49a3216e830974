package game

// contactGrid buckets contact indices by position for radius queries over
// the bounded arena.
type contactGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int // contact indices per bucket
}

func newContactGrid(width, height, cellSize float32) *contactGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}
	return &contactGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// rebuild clears the grid and inserts every contact by index.
func (g *contactGrid) rebuild(contacts []shipSnapshot) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	for i := range contacts {
		col, row := g.bucket(contacts[i].pos.X, contacts[i].pos.Y)
		idx := row*g.cols + col
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// queryRadiusInto appends the indices of contacts within radius of (x, y)
// to dst and returns it. Reuse dst across calls to avoid allocations.
func (g *contactGrid) queryRadiusInto(dst []int, contacts []shipSnapshot, x, y, radius float32) []int {
	minCol, minRow := g.bucket(x-radius, y-radius)
	maxCol, maxRow := g.bucket(x+radius, y+radius)
	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, i := range g.cells[row*g.cols+col] {
				dx := contacts[i].pos.X - x
				dy := contacts[i].pos.Y - y
				if dx*dx+dy*dy <= radiusSq {
					dst = append(dst, i)
				}
			}
		}
	}
	return dst
}

// bucket returns the clamped grid column and row for a world position.
func (g *contactGrid) bucket(x, y float32) (col, row int) {
	col = int(x / g.cellSize)
	row = int(y / g.cellSize)
	col = min(max(col, 0), g.cols-1)
	row = min(max(row, 0), g.rows-1)
	return col, row
}
