// Command term shows the simulation in a terminal. Each character cell
// draws two grid rows with a half block.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/TheFellow/gravity-fluid/pkg/config"
	"github.com/TheFellow/gravity-fluid/pkg/fluid"
	"github.com/TheFellow/gravity-fluid/pkg/logging"
	"github.com/TheFellow/gravity-fluid/pkg/render"
	"github.com/TheFellow/gravity-fluid/pkg/view"
)

const halfBlock = '▀'

type viewer struct {
	screen tcell.Screen
	sim    *fluid.Simulation
	opts   render.Options
	dt     float64
	rows   int
	cols   int

	frame    *image.RGBA
	paused   bool
	dragging bool
}

func newViewer(screen tcell.Screen, sim *fluid.Simulation, opts render.Options, dt float64) *viewer {
	snap := sim.Snapshot()
	return &viewer{screen: screen, sim: sim, opts: opts, dt: dt, rows: snap.Rows, cols: snap.Cols}
}

// cellAt maps a terminal position to the grid cell drawn in its upper half.
// The last line holds the status and maps to nothing.
func (v *viewer) cellAt(x, y int) (int, int, bool) {
	w, h := v.screen.Size()
	h--
	if x < 0 || y < 0 || x >= w || y >= h || w == 0 || h <= 0 {
		return 0, 0, false
	}
	return y * v.rows / h, x * v.cols / w, true
}

func (v *viewer) draw() {
	snap := v.sim.Snapshot()
	v.frame = render.Frame(v.frame, snap, v.opts)

	w, h := v.screen.Size()
	field := h - 1
	if field > 0 && w > 0 {
		for y := 0; y < field; y++ {
			top := 2 * y * v.rows / (2 * field)
			bottom := (2*y + 1) * v.rows / (2 * field)
			for x := 0; x < w; x++ {
				c := x * v.cols / w
				style := tcell.StyleDefault.
					Foreground(rgb(v.frame.RGBAAt(c, top))).
					Background(rgb(v.frame.RGBAAt(c, bottom)))
				v.screen.SetContent(x, y, halfBlock, nil, style)
			}
		}
	}

	grav := v.sim.Gravity()
	status := fmt.Sprintf("tick %d  gravity %.0f deg x %.1f  %s  max div %.2e",
		snap.Tick, grav.Angle*180/math.Pi, grav.Magnitude, v.opts.Field, v.sim.MaxDivergence())
	if v.paused {
		status += "  [paused]"
	}
	v.print(0, h-1, status)
	v.screen.Show()
}

func (v *viewer) print(x, y int, s string) {
	w, _ := v.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
	for ; x < w; x++ {
		v.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

// key handles one key press and reports whether the viewer keeps running.
func (v *viewer) key(k tcell.Key) (bool, error) {
	grav := v.sim.Gravity()
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false, nil
	case tcell.KeyLeft:
		grav = view.Rotate(grav, -1)
	case tcell.KeyRight:
		grav = view.Rotate(grav, 1)
	case tcell.KeyUp:
		grav = view.Strengthen(grav, 1)
	case tcell.KeyDown:
		grav = view.Strengthen(grav, -1)
	case tcell.KeyCtrlR:
		v.sim.Reset()
		return true, nil
	case tcell.KeyTab:
		if v.opts.Field == render.Density {
			v.opts.Field = render.Speed
		} else {
			v.opts.Field = render.Density
		}
		return true, nil
	case tcell.KeyEnter:
		v.paused = !v.paused
		return true, nil
	default:
		return true, nil
	}
	return true, v.sim.SetGravity(grav.Angle, grav.Magnitude)
}

// mouse drags the obstacle while the primary button is held on it.
func (v *viewer) mouse(x, y int, buttons tcell.ButtonMask) error {
	if buttons&tcell.Button1 == 0 {
		v.dragging = false
		return nil
	}
	r, c, ok := v.cellAt(x, y)
	if !ok {
		return nil
	}
	o, has := v.sim.Obstacle()
	if !has {
		return nil
	}
	if !v.dragging {
		v.dragging = o.Contains(r, c)
		return nil
	}
	if moved, ok := view.Drag(o, r, c, v.rows, v.cols); ok && moved != o {
		return v.sim.MoveObstacle(moved.Row, moved.Col, moved.Radius)
	}
	return nil
}

func (v *viewer) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.key(ev.Key())
	case *tcell.EventMouse:
		x, y := ev.Position()
		return true, v.mouse(x, y, ev.Buttons())
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true, nil
}

func (v *viewer) run(tps int) error {
	ticker := time.NewTicker(time.Second / time.Duration(max(tps, 1)))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go v.pump(events, done)

	for {
		select {
		case ev := <-events:
			running, err := v.handle(ev)
			if err != nil {
				return err
			}
			if !running {
				return nil
			}
		case <-ticker.C:
			if !v.paused {
				if err := v.sim.Step(v.dt); err != nil {
					return err
				}
			}
			v.draw()
		}
	}
}

// pump forwards screen events until the screen is finalised or done is
// closed.
func (v *viewer) pump(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func main() {
	var (
		configPath = flag.String("config", "", "read settings from `file`")
		debug      = flag.Bool("debug", false, "write a debug log")
		logPath    = flag.String("log", "logs/term.log", "debug log `file`")
	)
	flag.Parse()

	logger, logFile, err := logging.Setup(*debug, *logPath)
	if err != nil {
		log.Fatal("could not open log: ", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	file := config.Default()
	if *configPath != "" {
		if file, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}
	cfg := file.Simulation()
	cfg.Logger = logger
	sim, err := fluid.New(cfg)
	if err != nil {
		fatal(err)
	}
	opts, err := file.RenderOptions()
	if err != nil {
		fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fatal(err)
	}
	if err := screen.Init(); err != nil {
		fatal(err)
	}
	screen.EnableMouse()

	err = newViewer(screen, sim, opts, file.View.Dt).run(file.View.TPS)
	screen.Fini()
	if err != nil {
		logger.Printf("viewer stopped: %v", err)
		fmt.Fprintln(os.Stderr, "term:", err)
		os.Exit(1)
	}
}

// fatal prints to stderr since the standard logger may be discarded.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "term:", err)
	os.Exit(1)
}
