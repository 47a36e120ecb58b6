package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/TheFellow/gravity-fluid/pkg/fluid"
)

// Field selects what a frame shows.
type Field int

const (
	Density Field = iota
	Speed
)

func ParseField(s string) (Field, error) {
	switch s {
	case "", "density":
		return Density, nil
	case "speed":
		return Speed, nil
	}
	return Density, fmt.Errorf("unknown field %q, want density or speed", s)
}

func (f Field) String() string {
	if f == Speed {
		return "speed"
	}
	return "density"
}

// Options controls how a snapshot is coloured.
type Options struct {
	Field   Field
	Palette Palette
	Solid   color.RGBA
	// AutoRange stretches the field's min/max over the palette; otherwise
	// values are read as already lying in [0,1].
	AutoRange bool
}

func DefaultOptions() Options {
	return Options{
		Field:   Density,
		Palette: Sci{},
		Solid:   color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	}
}

func (o Options) field(snap fluid.Snapshot) fluid.ScalarField {
	if o.Field == Speed {
		return snap.Speed()
	}
	return snap.Density()
}

func (o Options) level(sf fluid.ScalarField, r, c int) float64 {
	if o.AutoRange {
		return sf.Normalized(r, c)
	}
	v, _ := sf.Value(r, c)
	return min(max(v, 0), 1)
}

// Frame draws one pixel per cell into dst, allocating it when nil or of the
// wrong size.
func Frame(dst *image.RGBA, snap fluid.Snapshot, o Options) *image.RGBA {
	bounds := image.Rect(0, 0, snap.Cols, snap.Rows)
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewRGBA(bounds)
	}
	p := o.Palette
	if p == nil {
		p = Sci{}
	}
	sf := o.field(snap)
	for r := 0; r < snap.Rows; r++ {
		for c := 0; c < snap.Cols; c++ {
			if !snap.IsFluid(r, c) {
				dst.SetRGBA(c, r, o.Solid)
				continue
			}
			dst.SetRGBA(c, r, p.Color(o.level(sf, r, c)))
		}
	}
	return dst
}

// Paletted draws one pixel per cell using the gradient's table; solid cells
// get an extra last palette entry.
func Paletted(snap fluid.Snapshot, g *Gradient, o Options) *image.Paletted {
	pal := append(g.Colors(), o.Solid)
	solid := uint8(len(pal) - 1)
	img := image.NewPaletted(image.Rect(0, 0, snap.Cols, snap.Rows), pal)
	sf := o.field(snap)
	for r := 0; r < snap.Rows; r++ {
		for c := 0; c < snap.Cols; c++ {
			if !snap.IsFluid(r, c) {
				img.SetColorIndex(c, r, solid)
				continue
			}
			img.SetColorIndex(c, r, uint8(g.index(o.level(sf, r, c))))
		}
	}
	return img
}
