package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/mazznoer/colorgrad"
)

// Palette maps t in [0,1] to a colour.
type Palette interface {
	Color(t float64) color.RGBA
}

// Sci is the blue-cyan-green-yellow-red scientific map.
type Sci struct{}

func (Sci) Color(t float64) color.RGBA {
	t = min(max(t, 0), 1-0.0001)
	const m = 0.25
	num := math.Floor(t / m)
	s := (t - num*m) / m
	var r, g, b float64

	switch num {
	case 0:
		r, g, b = 0, s, 1
	case 1:
		r, g, b = 0, 1, 1-s
	case 2:
		r, g, b = s, 1, 0
	case 3:
		r, g, b = 1, 1-s, 0
	}

	return color.RGBA{
		R: uint8(255 * r),
		G: uint8(255 * g),
		B: uint8(255 * b),
		A: 0xff,
	}
}

// Gray is a linear black to white ramp.
type Gray struct{}

func (Gray) Color(t float64) color.RGBA {
	t = min(max(t, 0), 1)
	v := uint8(255 * t)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

const gradientSteps = 255

// Gradient is a colorgrad preset sampled into a lookup table.
type Gradient struct {
	Name   string
	colors []color.RGBA
}

var presets = map[string]func() colorgrad.Gradient{
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"turbo":   colorgrad.Turbo,
	"cividis": colorgrad.Cividis,
	"greys":   colorgrad.Greys,
}

// Gradients lists the preset names accepted by NewGradient.
func Gradients() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func NewGradient(name string) (*Gradient, error) {
	preset, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown gradient %q, want one of %s", name, strings.Join(Gradients(), ", "))
	}
	grad := preset()
	g := &Gradient{Name: strings.ToLower(name)}
	for _, c := range grad.Colors(gradientSteps) {
		g.colors = append(g.colors, color.RGBAModel.Convert(c).(color.RGBA))
	}
	return g, nil
}

func (g *Gradient) Color(t float64) color.RGBA {
	return g.colors[g.index(t)]
}

func (g *Gradient) index(t float64) int {
	if math.IsNaN(t) {
		t = 0
	}
	t = min(max(t, 0), 1)
	return int(math.Round(t * float64(len(g.colors)-1)))
}

// Colors returns the lookup table as a palette for paletted images.
func (g *Gradient) Colors() []color.Color {
	pal := make([]color.Color, len(g.colors))
	for i, c := range g.colors {
		pal[i] = c
	}
	return pal
}

// PaletteByName returns "sci", "gray" or a gradient preset.
func PaletteByName(name string) (Palette, error) {
	switch strings.ToLower(name) {
	case "", "sci":
		return Sci{}, nil
	case "gray", "grey":
		return Gray{}, nil
	}
	return NewGradient(name)
}
