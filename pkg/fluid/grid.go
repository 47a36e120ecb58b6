package fluid

// CellType tells whether a cell takes part in the flow.
type CellType uint8

const (
	Solid CellType = iota
	Fluid
)

func (t CellType) String() string {
	switch t {
	case Solid:
		return "solid"
	case Fluid:
		return "fluid"
	}
	return "unknown"
}

// Cell is a copy of one grid cell. U is the flow across the face shared
// with the cell to the right, V the flow across the face shared with the
// cell below.
type Cell struct {
	Type    CellType
	U, V    float64
	Density float64
}

// Grid stores the cells as parallel slices addressed by r*cols+c. The new*
// slices are the write side of the advection double buffer.
type Grid struct {
	rows, cols int
	wall       int
	numCells   int

	S          []CellType
	U, V       []float64 // velocities
	D          []float64 // density
	newU, newV []float64
	newD       []float64
}

func newGrid(rows, cols, wall int) *Grid {
	numCells := rows * cols
	return &Grid{
		rows:     rows,
		cols:     cols,
		wall:     wall,
		numCells: numCells,
		S:        make([]CellType, numCells),
		U:        make([]float64, numCells),
		V:        make([]float64, numCells),
		D:        make([]float64, numCells),
		newU:     make([]float64, numCells),
		newV:     make([]float64, numCells),
		newD:     make([]float64, numCells),
	}
}

func (g *Grid) Rows() int          { return g.rows }
func (g *Grid) Cols() int          { return g.cols }
func (g *Grid) WallThickness() int { return g.wall }

func (g *Grid) idx(r, c int) int { return r*g.cols + c }

func (g *Grid) inBounds(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}

// At returns a copy of cell (r,c).
func (g *Grid) At(r, c int) (Cell, error) {
	if !g.inBounds(r, c) {
		return Cell{}, &BoundsError{Row: r, Col: c, Rows: g.rows, Cols: g.cols}
	}
	i := g.idx(r, c)
	return Cell{Type: g.S[i], U: g.U[i], V: g.V[i], Density: g.D[i]}, nil
}

// IsFluid reports whether (r,c) is a fluid cell. Cells outside the grid are
// not fluid.
func (g *Grid) IsFluid(r, c int) bool {
	return g.inBounds(r, c) && g.S[g.idx(r, c)] == Fluid
}

// IsWall reports whether (r,c) lies in the static outer ring.
func (g *Grid) IsWall(r, c int) bool {
	return r < g.wall || r >= g.rows-g.wall || c < g.wall || c >= g.cols-g.wall
}

// ForEachFluid calls fn for every fluid cell in row-major order.
func (g *Grid) ForEachFluid(fn func(r, c int)) {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.S[g.idx(r, c)] == Fluid {
				fn(r, c)
			}
		}
	}
}

// fluidFlag is 1 for a fluid neighbour and 0 otherwise, which lets the
// solver weight face corrections without branching.
func (g *Grid) fluidFlag(r, c int) float64 {
	if g.IsFluid(r, c) {
		return 1
	}
	return 0
}

func fill[T any](slice []T, val T) {
	for i := range slice {
		slice[i] = val
	}
}

// copyInto copies the mask and fields into dst, which must have the same
// shape.
func (g *Grid) copyInto(dst *Grid) {
	copy(dst.S, g.S)
	copy(dst.U, g.U)
	copy(dst.V, g.V)
	copy(dst.D, g.D)
}
