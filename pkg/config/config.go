// Package config reads simulation and viewer settings from an INI-style
// file.
//
//	[grid]
//	width = 100
//	height = 100
//
//	[gravity]
//	angle-degrees = 0
//	magnitude = 10
//
//	[source "bottom"]
//	row = 98
//	from = 45
//	to = 55
//	value = 1
package config

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/gcfg.v1"

	"github.com/TheFellow/gravity-fluid/pkg/fluid"
	"github.com/TheFellow/gravity-fluid/pkg/render"
)

type GridSection struct {
	Width         int
	Height        int
	WallThickness int     `gcfg:"wall-thickness"`
	CellSize      float64 `gcfg:"cell-size"`
}

type SolverSection struct {
	Iterations     int
	Overrelaxation float64
	AllowUnstable  bool    `gcfg:"allow-unstable"`
	MaxVelocity    float64 `gcfg:"max-velocity"`
	CornerDamping  float64 `gcfg:"corner-damping"`
	Parallel       bool
	Strict         bool
}

type GravitySection struct {
	AngleDegrees float64 `gcfg:"angle-degrees"`
	Magnitude    float64
}

// ObstacleSection places the circle. A negative row or column means the
// middle of the grid, a zero radius means no obstacle.
type ObstacleSection struct {
	Row    float64
	Col    float64
	Radius float64
}

type SourceSection struct {
	Row   int
	From  int
	To    int
	Value float64
}

type ViewSection struct {
	Scale     int
	Palette   string
	Field     string
	AutoRange bool `gcfg:"auto-range"`
	TPS       int
	Dt        float64
}

type File struct {
	Grid     GridSection
	Solver   SolverSection
	Gravity  GravitySection
	Obstacle ObstacleSection
	Source   map[string]*SourceSection
	View     ViewSection
}

// Default mirrors fluid.DefaultConfig with the obstacle and the source band
// placed relative to the grid size.
func Default() File {
	d := fluid.DefaultConfig()
	return File{
		Grid: GridSection{
			Width:         d.Width,
			Height:        d.Height,
			WallThickness: d.WallThickness,
			CellSize:      d.CellSize,
		},
		Solver: SolverSection{
			Iterations:     d.Iterations,
			Overrelaxation: d.Overrelaxation,
			CornerDamping:  d.CornerDamping,
			Parallel:       d.Parallel,
		},
		Gravity:  GravitySection{Magnitude: d.Gravity.Magnitude},
		Obstacle: ObstacleSection{Row: -1, Col: -1, Radius: d.Obstacle.Radius},
		View: ViewSection{
			Scale:   7,
			Palette: "sci",
			Field:   "density",
			TPS:     60,
			Dt:      1.0 / 3,
		},
	}
}

func Load(path string) (File, error) {
	f := Default()
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

func Parse(s string) (File, error) {
	f := Default()
	if err := gcfg.ReadStringInto(&f, s); err != nil {
		return File{}, fmt.Errorf("parsing config: %w", err)
	}
	return f, nil
}

// Simulation converts the file into a solver configuration. Sources are
// ordered by name; with no source section a ten cell band is placed on the
// lowest fluid row.
func (f File) Simulation() fluid.Config {
	cfg := fluid.DefaultConfig()
	cfg.Width = f.Grid.Width
	cfg.Height = f.Grid.Height
	cfg.WallThickness = f.Grid.WallThickness
	cfg.CellSize = f.Grid.CellSize

	cfg.Iterations = f.Solver.Iterations
	cfg.Overrelaxation = f.Solver.Overrelaxation
	cfg.AllowUnstableOverrelaxation = f.Solver.AllowUnstable
	cfg.MaxVelocity = f.Solver.MaxVelocity
	cfg.CornerDamping = f.Solver.CornerDamping
	cfg.Parallel = f.Solver.Parallel
	cfg.Strict = f.Solver.Strict

	cfg.Gravity = fluid.Gravity{
		Angle:     f.Gravity.AngleDegrees * math.Pi / 180,
		Magnitude: f.Gravity.Magnitude,
	}

	cfg.Obstacle = fluid.Obstacle{}
	if f.Obstacle.Radius != 0 {
		o := fluid.Obstacle{Row: f.Obstacle.Row, Col: f.Obstacle.Col, Radius: f.Obstacle.Radius}
		if o.Row < 0 {
			o.Row = float64(f.Grid.Height / 2)
		}
		if o.Col < 0 {
			o.Col = float64(f.Grid.Width / 2)
		}
		cfg.Obstacle = o
	}

	cfg.Sources = nil
	names := make([]string, 0, len(f.Source))
	for name := range f.Source {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := f.Source[name]
		cfg.Sources = append(cfg.Sources, fluid.DensitySource{
			Row:   s.Row,
			Cols:  fluid.ColRange{From: s.From, To: s.To},
			Value: s.Value,
		})
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []fluid.DensitySource{defaultSource(f.Grid)}
	}
	return cfg
}

func defaultSource(g GridSection) fluid.DensitySource {
	row := g.Height - 1 - g.WallThickness
	mid := g.Width / 2
	from := max(mid-5, g.WallThickness)
	to := min(mid+5, g.Width-g.WallThickness)
	if row < 0 || from > to {
		row, from, to = 0, 0, 0
	}
	return fluid.DensitySource{Row: row, Cols: fluid.ColRange{From: from, To: to}, Value: 1}
}

// RenderOptions builds the colouring options of the [view] section.
func (f File) RenderOptions() (render.Options, error) {
	o := render.DefaultOptions()
	p, err := render.PaletteByName(f.View.Palette)
	if err != nil {
		return o, err
	}
	field, err := render.ParseField(f.View.Field)
	if err != nil {
		return o, err
	}
	o.Palette = p
	o.Field = field
	o.AutoRange = f.View.AutoRange
	return o, nil
}
