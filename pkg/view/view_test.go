package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TheFellow/gravity-fluid/pkg/fluid"
)

func TestLayoutSizes(t *testing.T) {
	l := Layout{Rows: 100, Cols: 80, Scale: 7}
	w, h := l.GridSize()
	assert.Equal(t, 560, w)
	assert.Equal(t, 700, h)

	sw, sh := l.ScreenSize()
	assert.Equal(t, 560, sw)
	assert.Equal(t, 820, sh)

	cx, cy := l.DialCenter()
	assert.Equal(t, 280.0, cx)
	assert.Equal(t, 760.0, cy)
}

func TestCellAt(t *testing.T) {
	l := Layout{Rows: 10, Cols: 20, Scale: 4}

	r, c, ok := l.CellAt(9, 5)
	assert.True(t, ok)
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)

	_, _, ok = l.CellAt(80, 0)
	assert.False(t, ok)
	_, _, ok = l.CellAt(0, 40)
	assert.False(t, ok)
	_, _, ok = l.CellAt(-1, 0)
	assert.False(t, ok)
}

func TestDialAngle(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
		want   float64
	}{
		{"up", 0, -1, 0},
		{"right", 1, 0, math.Pi / 2},
		{"down", 0, 1, math.Pi},
		{"left", -1, 0, -math.Pi / 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := DialAngle(tc.dx, tc.dy)
			assert.InDelta(t, tc.want, a, 1e-12)

			// The angle must pull the way the pointer points.
			u, v := fluid.Gravity{Angle: a, Magnitude: 1}.Direction()
			assert.InDelta(t, tc.dx, u, 1e-12)
			assert.InDelta(t, tc.dy, v, 1e-12)
		})
	}
}

func TestDialHitAndTip(t *testing.T) {
	l := Layout{Rows: 100, Cols: 100, Scale: 2}
	cx, cy := l.DialCenter()
	assert.True(t, l.InDial(int(cx), int(cy)-DialRadius))
	assert.False(t, l.InDial(int(cx), int(cy)-DialRadius-1))
	assert.InDelta(t, 0, l.DialAngle(int(cx), int(cy)-20), 1e-12)

	x, y := l.DialTip(fluid.Gravity{Angle: math.Pi, Magnitude: 3})
	assert.InDelta(t, cx, x, 1e-9)
	assert.InDelta(t, cy+DialRadius, y, 1e-9)
}

func TestRotateWraps(t *testing.T) {
	g := Rotate(fluid.Gravity{Angle: 0, Magnitude: 1}, -1)
	assert.InDelta(t, 2*math.Pi-AngleStep, g.Angle, 1e-12)
	assert.Equal(t, 1.0, g.Magnitude)

	g = Rotate(fluid.Gravity{Angle: 2*math.Pi - AngleStep}, 2)
	assert.InDelta(t, AngleStep, g.Angle, 1e-12)
}

func TestStrengthenStopsAtZero(t *testing.T) {
	g := Strengthen(fluid.Gravity{Magnitude: 1}, 3)
	assert.InDelta(t, 1.3, g.Magnitude, 1e-12)

	g = Strengthen(fluid.Gravity{Magnitude: 0.05}, -1)
	assert.Equal(t, 0.0, g.Magnitude)
}

func TestDragLimits(t *testing.T) {
	o := fluid.Obstacle{Row: 50, Col: 50, Radius: 10}

	moved, ok := Drag(o, 30, 70, 100, 100)
	assert.True(t, ok)
	assert.Equal(t, 30.0, moved.Row)
	assert.Equal(t, 70.0, moved.Col)
	assert.Equal(t, 10.0, moved.Radius)

	for _, rc := range [][2]int{{10, 50}, {90, 50}, {50, 10}, {50, 90}} {
		got, ok := Drag(o, rc[0], rc[1], 100, 100)
		assert.False(t, ok, "drag to %v", rc)
		assert.Equal(t, o, got)
	}
}
