package fluid

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"
)

// Config holds every parameter of a simulation. Start from DefaultConfig.
type Config struct {
	Width, Height int // columns and rows, walls included
	WallThickness int
	CellSize      float64

	// Projection
	Iterations     int
	Overrelaxation float64
	// Values of Overrelaxation >= 2 are rejected unless this is set.
	AllowUnstableOverrelaxation bool

	// Forces
	Gravity       Gravity
	MaxVelocity   float64 // per component; 0 disables the clamp
	CornerDamping float64 // applied to fluid cells touching a solid only diagonally

	Obstacle Obstacle // Radius 0 means no obstacle
	Sources  []DensitySource

	// Parallel splits the force and advection stages by rows.
	Parallel bool
	// Strict aborts a tick on an invariant violation. Otherwise the
	// offending value is clamped and the violation logged.
	Strict bool
	Logger *log.Logger
}

func DefaultConfig() Config {
	const size = 100
	return Config{
		Width:          size,
		Height:         size,
		WallThickness:  1,
		CellSize:       1,
		Iterations:     35,
		Overrelaxation: 1.9,
		Gravity:        Gravity{Angle: 0, Magnitude: 10},
		CornerDamping:  0.5,
		Obstacle:       Obstacle{Row: size / 2, Col: size / 2, Radius: 10},
		Sources: []DensitySource{
			{Row: size - 2, Cols: ColRange{From: size/2 - 5, To: size/2 + 5}, Value: 1},
		},
		Parallel: true,
	}
}

// Validate reports the first parameter New would refuse.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return configErr("size", "grid dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.WallThickness < 1 {
		return configErr("wall_thickness", "must be at least 1, got %d", c.WallThickness)
	}
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return configErr("cell_size", "must be positive and finite, got %v", c.CellSize)
	}
	if c.Iterations < 1 {
		return configErr("iterations", "must be at least 1, got %d", c.Iterations)
	}
	if !(c.Overrelaxation > 0) || math.IsInf(c.Overrelaxation, 0) {
		return configErr("overrelaxation", "must be positive and finite, got %v", c.Overrelaxation)
	}
	if c.Overrelaxation >= 2 && !c.AllowUnstableOverrelaxation {
		return configErr("overrelaxation", "%v >= 2 does not converge", c.Overrelaxation)
	}
	if !(c.MaxVelocity >= 0) {
		return configErr("max_velocity", "must not be negative, got %v", c.MaxVelocity)
	}
	if !(c.CornerDamping >= 0 && c.CornerDamping <= 1) {
		return configErr("corner_damping", "must be within [0,1], got %v", c.CornerDamping)
	}
	if err := c.Gravity.validate(); err != nil {
		return err
	}
	if c.Obstacle.Radius != 0 {
		if err := c.Obstacle.validate(); err != nil {
			return err
		}
	}
	for _, src := range c.Sources {
		if err := src.validate(c.Height, c.Width); err != nil {
			return err
		}
	}
	return nil
}

// Phase is the stage a simulation is currently running.
type Phase int32

const (
	Idle Phase = iota
	SteppingForces
	SteppingProjection
	SteppingAdvection
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case SteppingForces:
		return "forces"
	case SteppingProjection:
		return "projection"
	case SteppingAdvection:
		return "advection"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// State is everything a tick reads and writes. It is owned by a Simulation
// and handed to the stages.
type State struct {
	cfg         Config
	log         *log.Logger
	Grid        *Grid
	Gravity     Gravity
	Obstacle    Obstacle
	hasObstacle bool
	Sources     []DensitySource
}

// violation returns the error for an invariant failure in strict mode. In
// release mode it logs and returns nil, and the caller clamps.
func (s *State) violation(stage string, r, c int, reason string) error {
	err := &InvariantViolation{Stage: stage, Row: r, Col: c, Reason: reason}
	if s.cfg.Strict {
		return err
	}
	s.log.Printf("clamped: %v", err)
	return nil
}

// checkFinite scans fluid cells for NaN or infinite values.
func (s *State) checkFinite() error {
	g := s.Grid
	for i, t := range g.S {
		if t != Fluid {
			continue
		}
		if finite(g.U[i]) && finite(g.V[i]) && finite(g.D[i]) {
			continue
		}
		r, c := i/g.cols, i%g.cols
		reason := fmt.Sprintf("non-finite cell u=%v v=%v density=%v", g.U[i], g.V[i], g.D[i])
		if err := s.violation("step", r, c, reason); err != nil {
			return err
		}
		if !finite(g.U[i]) {
			g.U[i] = 0
		}
		if !finite(g.V[i]) {
			g.V[i] = 0
		}
		if !finite(g.D[i]) {
			g.D[i] = 0
		}
	}
	return nil
}

// applySources resets every source band to its value.
func (s *State) applySources() {
	for _, src := range s.Sources {
		for c := src.Cols.From; c < src.Cols.To; c++ {
			// Bounds and value were validated when the source was added.
			_ = s.Grid.setDensity(src.Row, c, src.Value)
		}
	}
}

type pending struct {
	gravity  *Gravity
	obstacle *Obstacle
	clear    bool
}

// Simulation runs ticks over one State. A tick holds the state exclusively;
// gravity and obstacle changes requested meanwhile are latched and applied
// at the start of the next tick.
type Simulation struct {
	mu     sync.Mutex
	state  *State
	backup *Grid
	tick   uint64
	phase  atomic.Int32

	pendMu  sync.Mutex
	pending pending
}

// New builds the grid, marks the walls, rasterises the initial obstacle and
// installs the configured sources.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	g := newGrid(cfg.Height, cfg.Width, cfg.WallThickness)
	g.setWalls()

	s := &State{
		cfg:     cfg,
		log:     logger,
		Grid:    g,
		Gravity: cfg.Gravity,
		Sources: append([]DensitySource(nil), cfg.Sources...),
	}
	if cfg.Obstacle.Radius != 0 {
		if err := g.moveObstacle(cfg.Obstacle); err != nil {
			return nil, err
		}
		s.Obstacle = cfg.Obstacle
		s.hasObstacle = true
	}
	s.applySources()

	return &Simulation{
		state:  s,
		backup: newGrid(g.rows, g.cols, g.wall),
	}, nil
}

// Step runs one tick: forces, projection, advection, then sources. On error
// the grid is left as it was after the previous tick.
func (sim *Simulation) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return configErr("dt", "time step must be positive and finite, got %v", dt)
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	defer sim.phase.Store(int32(Idle))

	if err := sim.latch(); err != nil {
		return err
	}

	s := sim.state
	s.Grid.copyInto(sim.backup)

	if err := sim.run(dt); err != nil {
		sim.backup.copyInto(s.Grid)
		return fmt.Errorf("tick %d: %w", sim.tick+1, err)
	}
	sim.tick++
	return nil
}

func (sim *Simulation) run(dt float64) error {
	s := sim.state

	sim.phase.Store(int32(SteppingForces))
	s.applyForces(dt)

	sim.phase.Store(int32(SteppingProjection))
	if err := s.project(); err != nil {
		return err
	}

	sim.phase.Store(int32(SteppingAdvection))
	if err := s.advect(dt); err != nil {
		return err
	}

	s.applySources()
	return s.checkFinite()
}

// latch applies the changes requested since the last tick.
func (sim *Simulation) latch() error {
	sim.pendMu.Lock()
	p := sim.pending
	sim.pending = pending{}
	sim.pendMu.Unlock()

	s := sim.state
	if p.gravity != nil {
		s.Gravity = *p.gravity
	}
	switch {
	case p.obstacle != nil:
		if err := s.Grid.moveObstacle(*p.obstacle); err != nil {
			return err
		}
		s.Obstacle = *p.obstacle
		s.hasObstacle = true
	case p.clear:
		s.Grid.clearObstacle()
		s.Obstacle = Obstacle{}
		s.hasObstacle = false
	}
	return nil
}

// SetGravity requests a new gravity for the next tick.
func (sim *Simulation) SetGravity(angle, magnitude float64) error {
	g := Gravity{Angle: angle, Magnitude: magnitude}
	if err := g.validate(); err != nil {
		return err
	}
	sim.pendMu.Lock()
	sim.pending.gravity = &g
	sim.pendMu.Unlock()
	return nil
}

// MoveObstacle requests the obstacle be re-rasterised at (row,col) with the
// given radius before the next tick.
func (sim *Simulation) MoveObstacle(row, col, radius float64) error {
	o := Obstacle{Row: row, Col: col, Radius: radius}
	if err := o.validate(); err != nil {
		return err
	}
	sim.pendMu.Lock()
	sim.pending.obstacle = &o
	sim.pending.clear = false
	sim.pendMu.Unlock()
	return nil
}

// RemoveObstacle requests every non-wall cell be fluid again before the
// next tick.
func (sim *Simulation) RemoveObstacle() {
	sim.pendMu.Lock()
	sim.pending.obstacle = nil
	sim.pending.clear = true
	sim.pendMu.Unlock()
}

// Gravity returns the gravity the next tick will use.
func (sim *Simulation) Gravity() Gravity {
	sim.pendMu.Lock()
	p := sim.pending.gravity
	sim.pendMu.Unlock()
	if p != nil {
		return *p
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state.Gravity
}

// Obstacle returns the obstacle the next tick will use.
func (sim *Simulation) Obstacle() (Obstacle, bool) {
	sim.pendMu.Lock()
	p := sim.pending
	sim.pendMu.Unlock()
	if p.obstacle != nil {
		return *p.obstacle, true
	}
	if p.clear {
		return Obstacle{}, false
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state.Obstacle, sim.state.hasObstacle
}

// InjectDensity sets the density of one fluid cell. Solid cells are left
// untouched.
func (sim *Simulation) InjectDensity(row, col int, value float64) error {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state.Grid.setDensity(row, col, value)
}

// InjectDensityBand sets the density of the fluid cells of row within cols.
func (sim *Simulation) InjectDensityBand(row int, cols ColRange, value float64) error {
	src := DensitySource{Row: row, Cols: cols, Value: value}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	g := sim.state.Grid
	if err := src.validate(g.rows, g.cols); err != nil {
		return err
	}
	for c := cols.From; c < cols.To; c++ {
		if err := g.setDensity(row, c, value); err != nil {
			return err
		}
	}
	return nil
}

// AddSource installs a band that is reset to its value after every tick.
func (sim *Simulation) AddSource(src DensitySource) error {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	g := sim.state.Grid
	if err := src.validate(g.rows, g.cols); err != nil {
		return err
	}
	sim.state.Sources = append(sim.state.Sources, src)
	return nil
}

func (sim *Simulation) ClearSources() {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.state.Sources = nil
}

// Reset zeroes velocity and density. The solid mask and sources stay.
func (sim *Simulation) Reset() {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.state.Grid.reset()
	sim.tick = 0
}

// Phase returns the stage currently running.
func (sim *Simulation) Phase() Phase { return Phase(sim.phase.Load()) }

// Tick returns the number of completed ticks.
func (sim *Simulation) Tick() uint64 {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.tick
}

// MaxDivergence returns the largest residual divergence left by the last
// projection and advection.
func (sim *Simulation) MaxDivergence() float64 {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state.Grid.MaxDivergence()
}

// Snapshot copies the state of the last completed tick.
func (sim *Simulation) Snapshot() Snapshot {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return newSnapshot(sim.state.Grid, sim.tick)
}
