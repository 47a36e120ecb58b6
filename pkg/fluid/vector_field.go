package fluid

// VectorField is a read-only per-cell (u,v) velocity.
type VectorField struct {
	Rows, Cols       int
	valuesU, valuesV []float64
}

func (v VectorField) Value(r, c int) (float64, float64, error) {
	if r < 0 || r >= v.Rows || c < 0 || c >= v.Cols {
		return 0.0, 0.0, &BoundsError{Row: r, Col: c, Rows: v.Rows, Cols: v.Cols}
	}
	i := r*v.Cols + c
	return v.valuesU[i], v.valuesV[i], nil
}
