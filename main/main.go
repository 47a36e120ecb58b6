package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"runtime/pprof"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/TheFellow/gravity-fluid/pkg/config"
	"github.com/TheFellow/gravity-fluid/pkg/fluid"
	"github.com/TheFellow/gravity-fluid/pkg/logging"
	"github.com/TheFellow/gravity-fluid/pkg/render"
	"github.com/TheFellow/gravity-fluid/pkg/view"
)

// Velocity arrows are drawn on every arrowStride-th cell.
const arrowStride = 4

var (
	dialColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	needleColor = color.RGBA{R: 0xff, A: 0xff}
	arrowColor  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xa0}
)

type Game struct {
	sim    *fluid.Simulation
	layout view.Layout
	opts   render.Options
	dt     float64

	frame *image.RGBA
	tex   *ebiten.Image

	draggingDial     bool
	draggingObstacle bool
	showVelocity     bool
	paused           bool
}

func NewGame(sim *fluid.Simulation, file config.File, opts render.Options) *Game {
	snap := sim.Snapshot()
	return &Game{
		sim:    sim,
		layout: view.Layout{Rows: snap.Rows, Cols: snap.Cols, Scale: file.View.Scale},
		opts:   opts,
		dt:     file.View.Dt,
		tex:    ebiten.NewImage(snap.Cols, snap.Rows),
	}
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if err := g.handleKeys(); err != nil {
		return err
	}
	if err := g.handleMouse(); err != nil {
		return err
	}
	if g.paused {
		return nil
	}
	if err := g.sim.Step(g.dt); err != nil {
		log.Printf("step failed: %v", err)
		return err
	}
	return nil
}

func (g *Game) handleKeys() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.sim.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		if g.opts.Field == render.Density {
			g.opts.Field = render.Speed
		} else {
			g.opts.Field = render.Density
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.showVelocity = !g.showVelocity
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	}

	grav := g.sim.Gravity()
	next := grav
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		next = view.Rotate(next, -1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		next = view.Rotate(next, 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		next = view.Strengthen(next, 1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		next = view.Strengthen(next, -1)
	}
	if next == grav {
		return nil
	}
	return g.sim.SetGravity(next.Angle, next.Magnitude)
}

func (g *Game) handleMouse() error {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.draggingDial = false
		g.draggingObstacle = false
		return nil
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if g.layout.InDial(x, y) {
			g.draggingDial = true
		} else if r, c, ok := g.layout.CellAt(x, y); ok {
			if o, has := g.sim.Obstacle(); has && o.Contains(r, c) {
				g.draggingObstacle = true
			} else if err := g.sim.InjectDensity(r, c, 1); err != nil {
				log.Printf("inject at (%d,%d): %v", r, c, err)
			}
		}
	}

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return nil
	}
	switch {
	case g.draggingDial:
		grav := g.sim.Gravity()
		return g.sim.SetGravity(g.layout.DialAngle(x, y), grav.Magnitude)
	case g.draggingObstacle:
		r, c, ok := g.layout.CellAt(x, y)
		if !ok {
			return nil
		}
		o, has := g.sim.Obstacle()
		if !has {
			g.draggingObstacle = false
			return nil
		}
		if moved, ok := view.Drag(o, r, c, g.layout.Rows, g.layout.Cols); ok && moved != o {
			return g.sim.MoveObstacle(moved.Row, moved.Col, moved.Radius)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.sim.Snapshot()
	g.frame = render.Frame(g.frame, snap, g.opts)
	g.tex.WritePixels(g.frame.Pix)

	scale := float64(g.layout.Scale)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.tex, op)

	if g.showVelocity {
		g.drawVelocity(screen, snap)
	}
	g.drawDial(screen)

	grav := g.sim.Gravity()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS: %0.2f  tick: %d\nmax div: %.2e\ngravity: %.0f deg x %.1f\nfield: %s",
		ebiten.ActualTPS(), snap.Tick, g.sim.MaxDivergence(), grav.Angle*180/math.Pi, grav.Magnitude, g.opts.Field))
}

func (g *Game) drawVelocity(screen *ebiten.Image, snap fluid.Snapshot) {
	vel := snap.Velocity()
	s := float32(g.layout.Scale)
	for r := 0; r < snap.Rows; r += arrowStride {
		for c := 0; c < snap.Cols; c += arrowStride {
			if !snap.IsFluid(r, c) {
				continue
			}
			u, v, err := vel.Value(r, c)
			if err != nil {
				continue
			}
			x0 := (float32(c) + 0.5) * s
			y0 := (float32(r) + 0.5) * s
			vector.StrokeLine(screen, x0, y0, x0+float32(u)*s, y0+float32(v)*s, 1, arrowColor, true)
		}
	}
}

func (g *Game) drawDial(screen *ebiten.Image) {
	cx, cy := g.layout.DialCenter()
	tx, ty := g.layout.DialTip(g.sim.Gravity())
	vector.StrokeCircle(screen, float32(cx), float32(cy), view.DialRadius, 2, dialColor, true)
	vector.StrokeLine(screen, float32(cx), float32(cy), float32(tx), float32(ty), 3, needleColor, true)
	vector.DrawFilledCircle(screen, float32(cx), float32(cy), 5, needleColor, true)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.layout.ScreenSize()
}

// options are the command line settings.
type options struct {
	configPath string
	debug      bool
	logPath    string
	cpuprofile string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "read settings from `file`")
	flag.BoolVar(&o.debug, "debug", false, "write a debug log")
	flag.StringVar(&o.logPath, "log", "logs/fluid.log", "debug log `file`")
	flag.StringVar(&o.cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: fluid [-config <file>] [-debug] [-cpuprofile <file>]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Exit only once every deferred close and profile stop in run is done.
	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "fluid:", err)
		os.Exit(1)
	}
}

func run(o options) error {
	logger, logFile, err := logging.Setup(o.debug, o.logPath)
	if err != nil {
		return fmt.Errorf("could not open log: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if o.cpuprofile != "" {
		f, err := os.Create(o.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	file := config.Default()
	if o.configPath != "" {
		if file, err = config.Load(o.configPath); err != nil {
			return err
		}
	}
	cfg := file.Simulation()
	cfg.Logger = logger
	sim, err := fluid.New(cfg)
	if err != nil {
		return err
	}
	opts, err := file.RenderOptions()
	if err != nil {
		return err
	}

	game := NewGame(sim, file, opts)
	w, h := game.layout.ScreenSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Gravity Fluid")
	ebiten.SetTPS(file.View.TPS)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Printf("viewer stopped: %v", err)
		return err
	}
	return nil
}
