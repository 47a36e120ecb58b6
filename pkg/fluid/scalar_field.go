package fluid

// ScalarField is a read-only per-cell value with its range over fluid cells.
type ScalarField struct {
	Rows, Cols         int
	MinValue, MaxValue float64
	values             []float64
}

func (s ScalarField) Value(r, c int) (float64, error) {
	if r < 0 || r >= s.Rows || c < 0 || c >= s.Cols {
		return 0.0, &BoundsError{Row: r, Col: c, Rows: s.Rows, Cols: s.Cols}
	}
	return s.values[r*s.Cols+c], nil
}

// Normalized maps the value of (r,c) into [0,1] over the field's range.
// Out-of-range cells and flat fields map to 0.
func (s ScalarField) Normalized(r, c int) float64 {
	v, err := s.Value(r, c)
	if err != nil {
		return 0
	}
	d := s.MaxValue - s.MinValue
	if d <= 0 {
		return 0
	}
	return min(max((v-s.MinValue)/d, 0), 1)
}

func newScalarField(rows, cols int, values []float64, mask []CellType) ScalarField {
	s := ScalarField{Rows: rows, Cols: cols, values: values}
	first := true
	for i, v := range values {
		if mask[i] != Fluid {
			continue
		}
		if first || v < s.MinValue {
			s.MinValue = v
		}
		if first || v > s.MaxValue {
			s.MaxValue = v
		}
		first = false
	}
	return s
}
