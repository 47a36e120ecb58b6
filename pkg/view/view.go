// Package view holds the input geometry shared by the interactive viewers:
// mapping pointer positions to cells, the gravity dial and obstacle dragging.
package view

import (
	"math"

	"github.com/TheFellow/gravity-fluid/pkg/fluid"
)

const (
	DialRadius  = 50
	dialPadding = 10

	// Arrow key steps.
	AngleStep     = 5 * math.Pi / 180
	MagnitudeStep = 0.1
)

// Layout places a rows x cols grid drawn at Scale pixels per cell, with the
// gravity dial centred below it.
type Layout struct {
	Rows, Cols int
	Scale      int
}

func (l Layout) GridSize() (int, int) {
	return l.Cols * l.Scale, l.Rows * l.Scale
}

// ScreenSize includes the strip under the grid that holds the dial.
func (l Layout) ScreenSize() (int, int) {
	w, h := l.GridSize()
	return w, h + 2*DialRadius + 2*dialPadding
}

func (l Layout) DialCenter() (float64, float64) {
	w, h := l.ScreenSize()
	return float64(w) / 2, float64(h - DialRadius - dialPadding)
}

// CellAt returns the cell under pixel (x,y), and false when the pixel is
// off the grid.
func (l Layout) CellAt(x, y int) (int, int, bool) {
	if l.Scale <= 0 || x < 0 || y < 0 {
		return 0, 0, false
	}
	r, c := y/l.Scale, x/l.Scale
	if r >= l.Rows || c >= l.Cols {
		return 0, 0, false
	}
	return r, c, true
}

func (l Layout) InDial(x, y int) bool {
	cx, cy := l.DialCenter()
	dx, dy := float64(x)-cx, float64(y)-cy
	return dx*dx+dy*dy <= DialRadius*DialRadius
}

// DialAngle is the gravity angle pointing from the dial centre toward pixel
// (x,y). Straight up is 0.
func (l Layout) DialAngle(x, y int) float64 {
	cx, cy := l.DialCenter()
	return DialAngle(float64(x)-cx, float64(y)-cy)
}

// DialAngle converts a screen offset (y grows downward) into a gravity
// angle in (-π, π].
func DialAngle(dx, dy float64) float64 {
	return math.Atan2(dx, -dy)
}

// DialTip is the end of the dial needle for gravity g.
func (l Layout) DialTip(g fluid.Gravity) (float64, float64) {
	cx, cy := l.DialCenter()
	u, v := g.Direction()
	return cx + DialRadius*u, cy + DialRadius*v
}

// Rotate turns g by steps arrow presses, keeping the angle in [0, 2π).
func Rotate(g fluid.Gravity, steps int) fluid.Gravity {
	a := math.Mod(g.Angle+float64(steps)*AngleStep, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	g.Angle = a
	return g
}

// Strengthen changes the magnitude by steps arrow presses. The magnitude
// never goes negative.
func Strengthen(g fluid.Gravity, steps int) fluid.Gravity {
	g.Magnitude = max(g.Magnitude+float64(steps)*MagnitudeStep, 0)
	return g
}

// Drag moves o to cell (r,c) if the circle stays clear of the grid edges,
// radius < r < rows-radius and the same for columns.
func Drag(o fluid.Obstacle, r, c, rows, cols int) (fluid.Obstacle, bool) {
	fr, fc := float64(r), float64(c)
	if fr <= o.Radius || fr >= float64(rows)-o.Radius {
		return o, false
	}
	if fc <= o.Radius || fc >= float64(cols)-o.Radius {
		return o, false
	}
	o.Row, o.Col = fr, fc
	return o, true
}
