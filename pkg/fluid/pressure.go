package fluid

import "math"

// divergence returns the net outflow of fluid cell (r,c) through its four
// faces. Faces are stored on the cell to the left of / above them.
func (g *Grid) divergence(r, c int) float64 {
	i := g.idx(r, c)
	return g.U[i] - g.U[i-1] + g.V[i] - g.V[i-g.cols]
}

// project runs a fixed number of Gauss-Seidel sweeps with over-relaxation.
// Sweeps update in place, so a cell sees neighbours already relaxed in the
// same sweep. There is no residual check: the cost per tick is bounded, the
// error is not.
func (s *State) project() error {
	g := s.Grid
	omega := s.cfg.Overrelaxation
	for iter := 0; iter < s.cfg.Iterations; iter++ {
		for r := 1; r < g.rows-1; r++ {
			for c := 1; c < g.cols-1; c++ {
				if g.S[g.idx(r, c)] != Fluid {
					continue
				}
				if err := g.relaxCell(r, c, omega); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// relaxCell removes omega times the divergence of (r,c), spreading the
// correction over the faces shared with fluid neighbours only.
func (g *Grid) relaxCell(r, c int, omega float64) error {
	sW := g.fluidFlag(r, c-1)
	sE := g.fluidFlag(r, c+1)
	sN := g.fluidFlag(r-1, c)
	sS := g.fluidFlag(r+1, c)
	s := sW + sE + sN + sS
	if s < 0 {
		return &InvariantViolation{Stage: "projection", Row: r, Col: c, Reason: "negative fluid neighbour count"}
	}
	if s == 0 { // Enclosed by solids, nothing can flow.
		return nil
	}

	d := omega * g.divergence(r, c) / s

	i := g.idx(r, c)
	if sE > 0 {
		g.U[i] -= d
	}
	if sW > 0 {
		g.U[i-1] += d
	}
	if sS > 0 {
		g.V[i] -= d
	}
	if sN > 0 {
		g.V[i-g.cols] += d
	}
	return nil
}

// MaxDivergence returns the maximum absolute divergence across all interior
// fluid cells.
func (g *Grid) MaxDivergence() float64 {
	maxDiv := 0.0
	for r := 1; r < g.rows-1; r++ {
		for c := 1; c < g.cols-1; c++ {
			if g.S[g.idx(r, c)] != Fluid {
				continue
			}
			if a := math.Abs(g.divergence(r, c)); a > maxDiv {
				maxDiv = a
			}
		}
	}
	return maxDiv
}
