package fluid

import "math"

// ColRange is the half-open column interval [From, To).
type ColRange struct {
	From, To int
}

// DensitySource keeps a band of one row at a fixed density, emulating a
// continuous injection.
type DensitySource struct {
	Row   int
	Cols  ColRange
	Value float64
}

func (src DensitySource) validate(rows, cols int) error {
	if src.Row < 0 || src.Row >= rows {
		return &BoundsError{Row: src.Row, Col: src.Cols.From, Rows: rows, Cols: cols}
	}
	if src.Cols.From < 0 || src.Cols.To > cols || src.Cols.From > src.Cols.To {
		return configErr("source", "column range [%d,%d) outside [0,%d)", src.Cols.From, src.Cols.To, cols)
	}
	if src.Value < 0 || math.IsNaN(src.Value) || math.IsInf(src.Value, 0) {
		return configErr("source", "value must be finite and non-negative, got %v", src.Value)
	}
	return nil
}
