package fluid

import "math"

// Gravity is a direction and a strength. Angle 0 points toward row 0; the
// angle grows clockwise on screen.
type Gravity struct {
	Angle     float64 // radians
	Magnitude float64
}

// Direction returns the unit (u,v) vector gravity pulls along.
func (g Gravity) Direction() (float64, float64) {
	return math.Sin(g.Angle), -math.Cos(g.Angle)
}

func (g Gravity) validate() error {
	if math.IsNaN(g.Angle) || math.IsInf(g.Angle, 0) {
		return configErr("gravity", "angle must be finite, got %v", g.Angle)
	}
	if math.IsNaN(g.Magnitude) || math.IsInf(g.Magnitude, 0) {
		return configErr("gravity", "magnitude must be finite, got %v", g.Magnitude)
	}
	return nil
}

func (s *State) applyForces(dt float64) {
	s.applyGravity(dt)
	s.enforceBoundaries()
}

func (s *State) applyGravity(dt float64) {
	g := s.Grid
	if s.Gravity.Magnitude == 0 {
		return
	}
	dx, dy := s.Gravity.Direction()
	du := s.Gravity.Magnitude * dx * dt
	dv := s.Gravity.Magnitude * dy * dt
	limit := s.cfg.MaxVelocity

	parallelRows(s.cfg.Parallel, 0, g.rows, func(r int) {
		for c := 0; c < g.cols; c++ {
			i := g.idx(r, c)
			if g.S[i] != Fluid {
				continue
			}
			g.U[i] += du
			g.V[i] += dv
			if limit > 0 {
				g.U[i] = max(min(g.U[i], limit), -limit)
				g.V[i] = max(min(g.V[i], limit), -limit)
			}
		}
	})
}

// enforceBoundaries zeroes every face that touches a solid cell and damps
// fluid cells that only touch a solid cell across a corner. The projection
// relies on these faces being zero: it never corrects them.
func (s *State) enforceBoundaries() {
	g := s.Grid
	damping := s.cfg.CornerDamping

	parallelRows(s.cfg.Parallel, 0, g.rows, func(r int) {
		for c := 0; c < g.cols; c++ {
			i := g.idx(r, c)
			if g.S[i] == Solid {
				g.U[i] = 0
				g.V[i] = 0
				continue
			}
			// Right and bottom faces belong to this cell.
			if !g.IsFluid(r, c+1) {
				g.U[i] = 0
			}
			if !g.IsFluid(r+1, c) {
				g.V[i] = 0
			}
			if damping == 1 || touchesSolidAxis(g, r, c) {
				continue
			}
			if touchesSolidDiagonal(g, r, c) {
				g.U[i] *= damping
				g.V[i] *= damping
			}
		}
	})
}

func touchesSolidAxis(g *Grid, r, c int) bool {
	return !g.IsFluid(r-1, c) || !g.IsFluid(r+1, c) ||
		!g.IsFluid(r, c-1) || !g.IsFluid(r, c+1)
}

func touchesSolidDiagonal(g *Grid, r, c int) bool {
	return !g.IsFluid(r-1, c-1) || !g.IsFluid(r-1, c+1) ||
		!g.IsFluid(r+1, c-1) || !g.IsFluid(r+1, c+1)
}
