package fluid

import "math"

// Snapshot is a copy of the grid after a completed tick. It shares no
// memory with the simulation.
type Snapshot struct {
	Rows, Cols int
	Tick       uint64

	s       []CellType
	u, v, d []float64
}

func newSnapshot(g *Grid, tick uint64) Snapshot {
	return Snapshot{
		Rows: g.rows,
		Cols: g.cols,
		Tick: tick,
		s:    append([]CellType(nil), g.S...),
		u:    append([]float64(nil), g.U...),
		v:    append([]float64(nil), g.V...),
		d:    append([]float64(nil), g.D...),
	}
}

func (s Snapshot) At(r, c int) (Cell, error) {
	if r < 0 || r >= s.Rows || c < 0 || c >= s.Cols {
		return Cell{}, &BoundsError{Row: r, Col: c, Rows: s.Rows, Cols: s.Cols}
	}
	i := r*s.Cols + c
	return Cell{Type: s.s[i], U: s.u[i], V: s.v[i], Density: s.d[i]}, nil
}

// IsFluid reports whether (r,c) is inside the grid and fluid.
func (s Snapshot) IsFluid(r, c int) bool {
	return r >= 0 && r < s.Rows && c >= 0 && c < s.Cols && s.s[r*s.Cols+c] == Fluid
}

func (s Snapshot) Density() ScalarField {
	return newScalarField(s.Rows, s.Cols, s.d, s.s)
}

func (s Snapshot) Velocity() VectorField {
	return VectorField{Rows: s.Rows, Cols: s.Cols, valuesU: s.u, valuesV: s.v}
}

// Speed computes |v| at cell centres by averaging each cell's two faces per
// axis.
func (s Snapshot) Speed() ScalarField {
	vals := make([]float64, len(s.u))
	for r := 1; r < s.Rows; r++ {
		for c := 1; c < s.Cols; c++ {
			i := r*s.Cols + c
			if s.s[i] != Fluid {
				continue
			}
			u := (s.u[i] + s.u[i-1]) * 0.5
			v := (s.v[i] + s.v[i-s.Cols]) * 0.5
			vals[i] = math.Sqrt(u*u + v*v)
		}
	}
	return newScalarField(s.Rows, s.Cols, vals, s.s)
}

// TotalDensity sums density over fluid cells.
func (s Snapshot) TotalDensity() float64 {
	total := 0.0
	for i, t := range s.s {
		if t == Fluid {
			total += s.d[i]
		}
	}
	return total
}
