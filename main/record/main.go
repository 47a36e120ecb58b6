// Command record runs the simulation without a window and writes an
// animated GIF.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/TheFellow/gravity-fluid/pkg/config"
	"github.com/TheFellow/gravity-fluid/pkg/fluid"
	"github.com/TheFellow/gravity-fluid/pkg/logging"
	"github.com/TheFellow/gravity-fluid/pkg/render"
	"github.com/TheFellow/gravity-fluid/pkg/view"
)

func main() {
	var (
		configPath = flag.String("config", "", "read settings from `file`")
		out        = flag.String("out", "fluid.gif", "write the animation to `file`")
		frames     = flag.Int("frames", 200, "number of frames to record")
		every      = flag.Int("every", 2, "ticks between recorded frames")
		delay      = flag.Int("delay", 4, "frame delay in hundredths of a second")
		gradient   = flag.String("gradient", "viridis", "colour gradient")
		spin       = flag.Int("spin", 0, "rotate gravity by this many 5 degree steps per frame")
		debug      = flag.Bool("debug", false, "log progress to stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: record [-config <file>] [-out <file>] [-frames n] [-gradient name]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, _, err := logging.Setup(*debug, "")
	if err != nil {
		log.Fatal(err)
	}

	file := config.Default()
	if *configPath != "" {
		if file, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}
	if err := run(file, logger, *out, *frames, *every, *delay, *gradient, *spin); err != nil {
		fmt.Fprintln(os.Stderr, "record:", err)
		os.Exit(1)
	}
}

func run(file config.File, logger *log.Logger, out string, frames, every, delay int, gradient string, spin int) error {
	if frames <= 0 || every <= 0 {
		return fmt.Errorf("frames and every must be positive, got %d and %d", frames, every)
	}
	g, err := render.NewGradient(gradient)
	if err != nil {
		return err
	}
	opts, err := file.RenderOptions()
	if err != nil {
		return err
	}

	cfg := file.Simulation()
	cfg.Logger = logger
	sim, err := fluid.New(cfg)
	if err != nil {
		return err
	}

	anim := render.NewAnimation(g, opts, delay)
	for frame := 0; frame < frames; frame++ {
		for i := 0; i < every; i++ {
			if err := sim.Step(file.View.Dt); err != nil {
				return err
			}
		}
		anim.Add(sim.Snapshot())
		if spin != 0 {
			grav := view.Rotate(sim.Gravity(), spin)
			if err := sim.SetGravity(grav.Angle, grav.Magnitude); err != nil {
				return err
			}
		}
		if frame%50 == 0 {
			logger.Printf("frame %d/%d tick %d max div %.3g", frame, frames, sim.Tick(), sim.MaxDivergence())
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := anim.Encode(f); err != nil {
		return fmt.Errorf("encoding %s: %w", out, err)
	}
	logger.Printf("wrote %d frames to %s", anim.Len(), out)
	return nil
}

// fatal prints to stderr since the standard logger may be discarded.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "record:", err)
	os.Exit(1)
}
