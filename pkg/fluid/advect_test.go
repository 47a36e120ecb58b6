package fluid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBilinearWeights(t *testing.T) {
	offsets := []float64{0, 1e-9, 0.01, 0.25, 0.3, 0.5, 0.7, 0.99, 0.999999999}
	for _, fr := range offsets {
		for _, fc := range offsets {
			w := bilinearWeights(fr, fc)
			sum := 0.0
			for _, wk := range w {
				assert.GreaterOrEqual(t, wk, 0.0, "fr %v fc %v", fr, fc)
				sum += wk
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "fr %v fc %v", fr, fc)
			assert.NoError(t, checkWeights(w))
		}
	}
}

func TestCheckWeightsRejects(t *testing.T) {
	assert.Error(t, checkWeights([4]float64{1.2, -0.2, 0, 0}))
	assert.Error(t, checkWeights([4]float64{0.5, 0.5, 0.5, 0}))
	assert.Error(t, checkWeights([4]float64{math.NaN(), 1, 0, 0}))
}

func TestSampleConstantFieldExact(t *testing.T) {
	s := newTestState(8, 8)
	g := s.Grid
	const k = 0.37
	fill(g.D, k)

	for _, off := range [][2]float64{{0.3, 0.7}, {0.1, 0.9}, {0.5, 0.5}, {0.999, 0.001}} {
		sp, err := g.newSampler(trace{r0: 2, c0: 3, r1: 3, c1: 4, fr: off[0], fc: off[1]})
		require.NoError(t, err)
		assert.Equal(t, k, sp.sample(g.D), "offset %v", off)
	}
}

func TestAdvectConstantField(t *testing.T) {
	s := newTestState(10, 10)
	g := s.Grid
	g.ForEachFluid(func(r, c int) {
		i := g.idx(r, c)
		g.U[i], g.V[i], g.D[i] = 0.3, -0.45, 0.5
	})
	require.NoError(t, s.advect(1))
	g.ForEachFluid(func(r, c int) {
		i := g.idx(r, c)
		assert.InDelta(t, 0.3, g.U[i], 1e-12, "(%d,%d)", r, c)
		assert.InDelta(t, -0.45, g.V[i], 1e-12, "(%d,%d)", r, c)
		// Traces from rows 1..7 and cols 2..8 touch fluid cells only.
		if r <= 7 && c >= 2 {
			assert.Equal(t, 0.5, g.D[i], "(%d,%d)", r, c)
		} else {
			assert.LessOrEqual(t, g.D[i], 0.5, "(%d,%d)", r, c)
		}
	})
}

func totalDensity(g *Grid) float64 {
	total := 0.0
	g.ForEachFluid(func(r, c int) { total += g.D[g.idx(r, c)] })
	return total
}

func TestAdvectionDoesNotIncreaseDensity(t *testing.T) {
	s := newTestState(12, 12)
	g := s.Grid
	g.ForEachFluid(func(r, c int) {
		i := g.idx(r, c)
		g.U[i], g.V[i] = 0.4, -0.3
	})
	g.D[g.idx(6, 6)] = 1
	before := totalDensity(g)

	require.NoError(t, s.advect(1))
	after := totalDensity(g)
	assert.LessOrEqual(t, after, before+1e-12)
	assert.Greater(t, after, 0.0)
	for _, d := range g.D {
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestAdvectionMovesDensityWithFlow(t *testing.T) {
	s := newTestState(10, 10)
	g := s.Grid
	g.ForEachFluid(func(r, c int) { g.U[g.idx(r, c)] = 1 })
	g.D[g.idx(5, 3)] = 1

	require.NoError(t, s.advect(1))
	assert.InDelta(t, 1.0, g.D[g.idx(5, 4)], 1e-12)
	assert.InDelta(t, 0.0, g.D[g.idx(5, 3)], 1e-12)
}

func TestAdvectionNeverReadsSolid(t *testing.T) {
	s := newTestState(9, 9)
	g := s.Grid
	g.setSolid(4, 5, true)
	g.D[g.idx(4, 5)] = 100
	g.ForEachFluid(func(r, c int) { g.U[g.idx(r, c)] = 0.5 })
	g.D[g.idx(4, 6)] = 0.2
	before := totalDensity(g)

	require.NoError(t, s.advect(1))
	// (4,6) traces back to (4,5.5): half of the weight sits on the solid
	// and brings nothing.
	assert.InDelta(t, 0.1, g.D[g.idx(4, 6)], 1e-12)
	assert.InDelta(t, 0.1, g.D[g.idx(4, 7)], 1e-12)
	assert.LessOrEqual(t, totalDensity(g), before+1e-12)
	for r := 0; r < g.rows; r++ {
		for c := 0; c < g.cols; c++ {
			if g.IsFluid(r, c) {
				assert.Less(t, g.D[g.idx(r, c)], 1.0, "(%d,%d)", r, c)
			}
		}
	}
}

func TestAdvectionTraceLandsInsideSolid(t *testing.T) {
	s := newTestState(9, 9)
	g := s.Grid
	g.setSolid(4, 5, true)
	g.ForEachFluid(func(r, c int) { g.U[g.idx(r, c)] = 1 })
	i := g.idx(4, 6)
	g.D[i] = 0.3

	require.NoError(t, s.advect(1))
	// All the weight of (4,6) is on the solid: no density comes from it and
	// the velocity is kept.
	assert.Zero(t, g.D[i])
	assert.Equal(t, 1.0, g.U[i])
	assert.InDelta(t, 0.3, g.D[g.idx(4, 7)], 1e-12)
	assert.InDelta(t, 0.3, totalDensity(g), 1e-12)
}

func TestAdvectionNearSolidsDoesNotIncreaseDensity(t *testing.T) {
	cases := []struct {
		name  string
		wall  int
		solid [][2]int
		u, v  float64
		dense [2]int
	}{
		{name: "obstacle upstream", wall: 1, solid: [][2]int{{4, 5}}, u: 0.5, dense: [2]int{4, 6}},
		{name: "obstacle downstream", wall: 1, solid: [][2]int{{4, 5}}, u: 0.5, dense: [2]int{4, 4}},
		{name: "obstacle diagonal flow", wall: 1, solid: [][2]int{{4, 5}, {3, 5}}, u: 0.4, v: 0.7, dense: [2]int{5, 6}},
		{name: "flow away from wall", wall: 1, u: 0.5, dense: [2]int{4, 1}},
		{name: "flow into wall", wall: 1, u: -0.5, dense: [2]int{4, 1}},
		{name: "fast flow away from wall", wall: 1, u: 2.5, v: 1.5, dense: [2]int{1, 1}},
		{name: "thick wall corner", wall: 2, u: 0.6, v: 0.6, dense: [2]int{2, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestState(9, 9)
			s.cfg.WallThickness = tc.wall
			g := newGrid(9, 9, tc.wall)
			g.setWalls()
			s.Grid = g
			for _, rc := range tc.solid {
				g.setSolid(rc[0], rc[1], true)
			}
			g.ForEachFluid(func(r, c int) {
				i := g.idx(r, c)
				g.U[i], g.V[i] = tc.u, tc.v
			})
			g.D[g.idx(tc.dense[0], tc.dense[1])] = 0.2
			before := totalDensity(g)

			require.NoError(t, s.advect(1))
			assert.LessOrEqual(t, totalDensity(g), before+1e-12)
			for _, d := range g.D {
				assert.GreaterOrEqual(t, d, 0.0)
			}
		})
	}
}

func TestAdvectionStrictDiscardsBuffer(t *testing.T) {
	s := newTestState(8, 8)
	s.cfg.Strict = true
	g := s.Grid
	g.ForEachFluid(func(r, c int) {
		i := g.idx(r, c)
		g.U[i], g.D[i] = 0.2, float64(r+c)
	})
	g.U[g.idx(3, 3)] = math.NaN()
	before := append([]float64(nil), g.D...)

	err := s.advect(1)
	var iv *InvariantViolation
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "advection", iv.Stage)
	assert.Equal(t, 3, iv.Row)
	assert.Equal(t, 3, iv.Col)
	assert.Equal(t, before, g.D)
}

func TestAdvectionReleaseClamps(t *testing.T) {
	s := newTestState(8, 8)
	g := s.Grid
	g.U[g.idx(3, 3)] = math.Inf(1)

	require.NoError(t, s.advect(1))
	assert.Zero(t, g.U[g.idx(3, 3)])
	assert.Zero(t, g.V[g.idx(3, 3)])
}

func TestAdvectionParallelMatchesSerial(t *testing.T) {
	run := func(parallel bool) []float64 {
		s := newTestState(24, 31)
		s.cfg.Parallel = parallel
		g := s.Grid
		g.ForEachFluid(func(r, c int) {
			i := g.idx(r, c)
			g.U[i] = math.Sin(float64(r) * 0.3)
			g.V[i] = math.Cos(float64(c) * 0.2)
			g.D[i] = float64((r*7+c*3)%5) / 4
		})
		require.NoError(t, s.advect(0.8))
		return append([]float64(nil), g.D...)
	}
	assert.Equal(t, run(false), run(true))
}
