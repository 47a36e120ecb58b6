package render

import (
	"errors"
	"image"
	"image/gif"
	"io"

	"github.com/TheFellow/gravity-fluid/pkg/fluid"
)

// Animation collects paletted frames for an animated GIF.
type Animation struct {
	gradient *Gradient
	opts     Options
	delay    int // hundredths of a second

	frames []*image.Paletted
	delays []int
}

func NewAnimation(g *Gradient, o Options, delay int) *Animation {
	return &Animation{gradient: g, opts: o, delay: delay}
}

func (a *Animation) Add(snap fluid.Snapshot) {
	a.frames = append(a.frames, Paletted(snap, a.gradient, a.opts))
	a.delays = append(a.delays, a.delay)
}

func (a *Animation) Len() int { return len(a.frames) }

// Encode writes the frames as a looping GIF.
func (a *Animation) Encode(w io.Writer) error {
	if len(a.frames) == 0 {
		return errors.New("animation has no frames")
	}
	return gif.EncodeAll(w, &gif.GIF{
		Image:     a.frames,
		Delay:     a.delays,
		LoopCount: 0,
	})
}
