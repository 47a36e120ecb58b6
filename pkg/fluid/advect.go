package fluid

import (
	"fmt"
	"math"
)

const weightTolerance = 1e-9

// bilinearWeights returns the weights of the four cells around a point at
// fractional offset (fr,fc) from the top-left one, in the order
// top-left, top-right, bottom-left, bottom-right.
func bilinearWeights(fr, fc float64) [4]float64 {
	sr := 1.0 - fr
	sc := 1.0 - fc
	return [4]float64{sr * sc, sr * fc, fr * sc, fr * fc}
}

func checkWeights(w [4]float64) error {
	sum := 0.0
	for _, wk := range w {
		if wk < 0 || math.IsNaN(wk) {
			return fmt.Errorf("negative interpolation weight %v", wk)
		}
		sum += wk
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("interpolation weights sum to %v", sum)
	}
	return nil
}

// trace is the source point of a backward trace, already clamped and split
// into the four cells it falls between.
type trace struct {
	r0, c0, r1, c1 int
	fr, fc         float64
}

// backtrace follows the velocity at (r,c) back over dt and clamps the result
// to the grid. A clamped trace may sit on wall cells; the sampler gives them
// no weight.
func (g *Grid) backtrace(r, c int, u, v, dt, h float64) (trace, error) {
	rHi := float64(g.rows - 1)
	cHi := float64(g.cols - 1)

	y := float64(r) - v*dt/h
	x := float64(c) - u*dt/h
	if math.IsNaN(x) || math.IsNaN(y) {
		return trace{}, fmt.Errorf("trace from velocity (%v,%v) is not a number", u, v)
	}
	y = max(min(y, rHi), 0)
	x = max(min(x, cHi), 0)

	t := trace{
		r0: int(math.Floor(y)),
		c0: int(math.Floor(x)),
	}
	if !g.inBounds(t.r0, t.c0) {
		return trace{}, fmt.Errorf("trace target (%v,%v) escaped the grid", y, x)
	}
	t.fr = y - float64(t.r0)
	t.fc = x - float64(t.c0)
	t.r1 = min(t.r0+1, g.rows-1)
	t.c1 = min(t.c0+1, g.cols-1)
	return t, nil
}

// sampler resamples fields at one trace. Solid cells are never read: sample
// renormalises over the fluid cells, mass lets solid cells count as zero.
type sampler struct {
	idx  [4]int
	w    [4]float64
	keep [4]bool
	wsum float64
	all  bool
	fr   float64
	fc   float64
}

func (g *Grid) newSampler(t trace) (sampler, error) {
	sp := sampler{
		idx: [4]int{g.idx(t.r0, t.c0), g.idx(t.r0, t.c1), g.idx(t.r1, t.c0), g.idx(t.r1, t.c1)},
		w:   bilinearWeights(t.fr, t.fc),
		fr:  t.fr,
		fc:  t.fc,
		all: true,
	}
	if err := checkWeights(sp.w); err != nil {
		return sp, err
	}
	for k, i := range sp.idx {
		sp.keep[k] = g.S[i] == Fluid
		if sp.keep[k] {
			sp.wsum += sp.w[k]
		} else {
			sp.all = false
		}
	}
	return sp, nil
}

// ok reports whether at least one fluid cell carries weight.
func (sp *sampler) ok() bool { return sp.wsum > weightTolerance }

func (sp *sampler) sample(field []float64) float64 {
	if sp.all {
		return sp.lerp(field)
	}
	val := 0.0
	for k, i := range sp.idx {
		if sp.keep[k] {
			val += sp.w[k] * field[i]
		}
	}
	return val / sp.wsum
}

// mass resamples a conserved quantity. Weights are never scaled up, so a
// source cell hands out at most its own amount.
func (sp *sampler) mass(field []float64) float64 {
	if sp.all {
		return sp.lerp(field)
	}
	val := 0.0
	for k, i := range sp.idx {
		if sp.keep[k] {
			val += sp.w[k] * field[i]
		}
	}
	return val
}

// lerp nests the interpolations so a constant field is reproduced exactly.
func (sp *sampler) lerp(field []float64) float64 {
	top := field[sp.idx[0]] + sp.fc*(field[sp.idx[1]]-field[sp.idx[0]])
	bottom := field[sp.idx[2]] + sp.fc*(field[sp.idx[3]]-field[sp.idx[2]])
	return top + sp.fr*(bottom-top)
}

// advect transports velocity and density along the prior-tick velocity
// field. Every cell reads U/V/D and writes newU/newV/newD; the buffers are
// swapped only if the whole field succeeded.
func (s *State) advect(dt float64) error {
	g := s.Grid
	h := s.cfg.CellSize
	rowErr := make([]error, g.rows)

	parallelRows(s.cfg.Parallel, 0, g.rows, func(r int) {
		for c := 0; c < g.cols; c++ {
			i := g.idx(r, c)
			g.newU[i] = g.U[i]
			g.newV[i] = g.V[i]
			g.newD[i] = g.D[i]
			if g.S[i] != Fluid {
				continue
			}

			u, v := g.U[i], g.V[i]
			if !finite(u) || !finite(v) {
				if err := s.violation("advection", r, c, fmt.Sprintf("non-finite velocity (%v,%v)", u, v)); err != nil {
					rowErr[r] = err
					return
				}
				g.newU[i], g.newV[i] = 0, 0
				continue
			}

			t, err := g.backtrace(r, c, u, v, dt, h)
			if err != nil {
				if err = s.violation("advection", r, c, err.Error()); err != nil {
					rowErr[r] = err
					return
				}
				continue
			}
			sp, err := g.newSampler(t)
			if err != nil {
				if err = s.violation("advection", r, c, err.Error()); err != nil {
					rowErr[r] = err
					return
				}
				continue
			}
			// Density pulled from solid cells is empty; velocity keeps its
			// value when no fluid cell carries weight.
			g.newD[i] = max(sp.mass(g.D), 0)
			if !sp.ok() {
				continue
			}
			g.newU[i] = sp.sample(g.U)
			g.newV[i] = sp.sample(g.V)
		}
	})

	for _, err := range rowErr {
		if err != nil {
			return err
		}
	}

	g.U, g.newU = g.newU, g.U
	g.V, g.newV = g.newV, g.V
	g.D, g.newD = g.newD, g.D
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
