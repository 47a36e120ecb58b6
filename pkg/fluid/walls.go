package fluid

import "math"

// Obstacle is the movable circle, centred on a (possibly fractional) cell
// position.
type Obstacle struct {
	Row, Col float64
	Radius   float64
}

// Contains reports whether (r,c) lies strictly inside the circle.
func (o Obstacle) Contains(r, c int) bool {
	dr := float64(r) - o.Row
	dc := float64(c) - o.Col
	return dr*dr+dc*dc < o.Radius*o.Radius
}

func (o Obstacle) validate() error {
	if math.IsNaN(o.Row) || math.IsInf(o.Row, 0) || math.IsNaN(o.Col) || math.IsInf(o.Col, 0) {
		return configErr("obstacle", "center (%v,%v) is not finite", o.Row, o.Col)
	}
	if !(o.Radius > 0) || math.IsInf(o.Radius, 0) {
		return configErr("obstacle", "radius must be positive and finite, got %v", o.Radius)
	}
	return nil
}

// setWalls marks the outer ring solid. It is only called once, at init.
func (g *Grid) setWalls() {
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.IsWall(r, c) {
				g.setSolid(r, c, true)
			} else {
				g.setSolid(r, c, false)
			}
		}
	}
}

// moveObstacle turns every non-wall cell back into fluid and then marks the
// cells strictly inside o as solid. The caller must hold the grid
// exclusively.
func (g *Grid) moveObstacle(o Obstacle) error {
	if err := o.validate(); err != nil {
		return err
	}
	for r := g.wall; r < g.rows-g.wall; r++ {
		for c := g.wall; c < g.cols-g.wall; c++ {
			g.setSolid(r, c, o.Contains(r, c))
		}
	}
	return nil
}

// clearObstacle returns every non-wall cell to fluid.
func (g *Grid) clearObstacle() {
	for r := g.wall; r < g.rows-g.wall; r++ {
		for c := g.wall; c < g.cols-g.wall; c++ {
			g.setSolid(r, c, false)
		}
	}
}

func (g *Grid) setSolid(r, c int, solid bool) {
	i := g.idx(r, c)
	if !solid {
		g.S[i] = Fluid
		return
	}
	if g.S[i] == Fluid {
		// A cell that just turned solid must not keep transporting dye or
		// momentum once it reverts.
		g.D[i] = 0
	}
	g.S[i] = Solid
	g.U[i] = 0
	g.V[i] = 0
	if c > 0 {
		g.U[i-1] = 0
	}
	if r > 0 {
		g.V[i-g.cols] = 0
	}
}

func (g *Grid) setDensity(r, c int, value float64) error {
	if !g.inBounds(r, c) {
		return &BoundsError{Row: r, Col: c, Rows: g.rows, Cols: g.cols}
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return configErr("density", "value must be finite and non-negative, got %v", value)
	}
	i := g.idx(r, c)
	if g.S[i] == Fluid {
		g.D[i] = value
	}
	return nil
}

func (g *Grid) reset() {
	fill(g.U, 0)
	fill(g.V, 0)
	fill(g.D, 0)
	fill(g.newU, 0)
	fill(g.newV, 0)
	fill(g.newD, 0)
}
