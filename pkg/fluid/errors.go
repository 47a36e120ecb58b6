package fluid

import "fmt"

// ConfigurationError reports a parameter the simulation refuses to run with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// InvariantViolation reports a numerical state the solver must never reach,
// such as a non-finite velocity on a fluid cell or interpolation weights that
// do not form a convex combination.
type InvariantViolation struct {
	Stage    string
	Row, Col int
	Reason   string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%s: invariant violated at (%d,%d): %s", e.Stage, e.Row, e.Col, e.Reason)
}

// BoundsError reports a cell access outside the grid.
type BoundsError struct {
	Row, Col   int
	Rows, Cols int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) out of range, must be within [0,%d)x[0,%d)", e.Row, e.Col, e.Rows, e.Cols)
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
