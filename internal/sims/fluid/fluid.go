// Package fluid runs a two-dimensional stable-fluids simulation: velocity,
// pressure and temperature on a coarse grid, dye on a finer one, all advanced
// by one fixed sequence of kernel passes per tick.
package fluid

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"fluidsim/internal/core"
	"fluidsim/internal/device"
	"fluidsim/internal/kernels"

	"golang.org/x/image/draw"
)

// Field names accepted by Simulation.Field.
const (
	FieldVelocity    = "velocity"
	FieldPressure    = "pressure"
	FieldTemperature = "temperature"
	FieldDivergence  = "divergence"
	FieldCurl        = "curl"
	FieldDye         = "dye"
)

var fieldNames = []string{FieldDye, FieldVelocity, FieldPressure, FieldTemperature, FieldDivergence, FieldCurl}

// Simulation owns every grid of one fluid instance. Tick, Step, Reset,
// Resize and SeedImage must be called from a single goroutine; pointer input,
// burst requests and parameter updates are safe from any goroutine.
type Simulation struct {
	cfg      Config
	name     string
	log      *log.Logger
	settings *Settings
	proc     device.Processor
	clock    *core.Clock
	forcing  *Forcing

	viewport core.Size
	simSize  core.Size
	dyeSize  core.Size

	velocity    *core.FieldPair
	pressure    *core.FieldPair
	temperature *core.FieldPair
	dye         *core.FieldPair
	divergence  *core.Field
	curl        *core.Field
	// scratch holds the right-hand side of the diffusion solve.
	scratch *core.Field

	seed      int64
	ticks     uint64
	residual  float64
	projected float64
}

// New allocates a stopped simulation. Call Start before the first Tick.
func New(cfg Config) (*Simulation, error) {
	settings, err := NewSettings(cfg.Params)
	if err != nil {
		return nil, err
	}
	proc, err := device.New(cfg.Backend, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Simulation{
		cfg:      cfg,
		name:     "fluid",
		log:      logger,
		settings: settings,
		proc:     proc,
		clock:    core.NewClock(cfg.Params.MaxDt, cfg.Now),
		forcing:  NewForcing(cfg.Seed),
	}
	if err := s.allocate(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if err := s.seedFields(cfg.Seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the preset name the simulation was built under.
func (s *Simulation) Name() string { return s.name }

// Size returns the velocity grid resolution.
func (s *Simulation) Size() core.Size { return s.simSize }

// DyeSize returns the dye grid resolution.
func (s *Simulation) DyeSize() core.Size { return s.dyeSize }

// Viewport returns the display size the grids were derived from.
func (s *Simulation) Viewport() core.Size { return s.viewport }

// Settings exposes the parameter store for hot reload.
func (s *Simulation) Settings() *Settings { return s.settings }

// Params returns the current parameter snapshot.
func (s *Simulation) Params() Params { return s.settings.Snapshot().Params }

// Processor reports the backend running the kernels.
func (s *Simulation) Processor() device.Processor { return s.proc }

// Start runs the clock from scratch.
func (s *Simulation) Start() { s.clock.Start() }

// Pause stops the clock. Ticks become no-ops until Resume.
func (s *Simulation) Pause() { s.clock.Pause() }

// Resume restarts the clock without reporting the time spent paused.
func (s *Simulation) Resume() { s.clock.Resume() }

// Running reports whether ticks advance the simulation.
func (s *Simulation) Running() bool { return s.clock.Running() }

// Ticks counts completed steps since the last reset.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// SetSeedMode selects how the next Reset fills the grids.
func (s *Simulation) SetSeedMode(mode string) error {
	switch mode {
	case SeedZero, SeedNoise:
		s.cfg.SeedMode = mode
		return nil
	}
	return fmt.Errorf("seed mode %q: %w", mode, core.ErrInvalidParameter)
}

// Seed returns the seed of the last reset.
func (s *Simulation) Seed() int64 { return s.seed }

// Reset clears every field, reseeds the random stream and starts the clock.
func (s *Simulation) Reset(seed int64) error {
	s.forcing.Reseed(seed)
	if err := s.seedFields(seed); err != nil {
		return err
	}
	s.clock.Start()
	s.log.Printf("%s: reset seed=%d sim=%dx%d dye=%dx%d", s.name, seed, s.simSize.W, s.simSize.H, s.dyeSize.W, s.dyeSize.H)
	return nil
}

// Resize re-derives the grids for a new viewport. Velocity, temperature and
// dye are resampled onto the new grids; pressure starts from zero. On error
// the previous grids stay in place.
func (s *Simulation) Resize(viewW, viewH int) error {
	simSize, err := core.ResolutionFor(viewW, viewH, s.cfg.SimResolution)
	if err != nil {
		return err
	}
	dyeSize, err := core.ResolutionFor(viewW, viewH, s.cfg.DyeResolution)
	if err != nil {
		return err
	}
	if simSize == s.simSize && dyeSize == s.dyeSize {
		s.viewport = core.Size{W: viewW, H: viewH}
		s.forcing.SetAspect(s.viewport.Aspect())
		return nil
	}
	old := struct{ velocity, temperature, dye *core.Field }{
		s.velocity.Current(), s.temperature.Current(), s.dye.Current(),
	}
	if err := s.allocate(viewW, viewH); err != nil {
		return err
	}
	for _, r := range []struct{ dst, src *core.Field }{
		{s.velocity.Current(), old.velocity},
		{s.temperature.Current(), old.temperature},
		{s.dye.Current(), old.dye},
	} {
		if err := kernels.Resample(s.proc, r.dst, r.src); err != nil {
			return err
		}
	}
	s.log.Printf("%s: resized to sim=%dx%d dye=%dx%d", s.name, simSize.W, simSize.H, dyeSize.W, dyeSize.H)
	return nil
}

// allocate builds fresh grids for the viewport and swaps them in only when
// every allocation succeeded.
func (s *Simulation) allocate(viewW, viewH int) error {
	simSize, err := core.ResolutionFor(viewW, viewH, s.cfg.SimResolution)
	if err != nil {
		return err
	}
	dyeSize, err := core.ResolutionFor(viewW, viewH, s.cfg.DyeResolution)
	if err != nil {
		return err
	}
	velocity, err := core.NewFieldPair(simSize, 2)
	if err != nil {
		return err
	}
	pressure, err := core.NewFieldPair(simSize, 1)
	if err != nil {
		return err
	}
	temperature, err := core.NewFieldPair(simSize, 1)
	if err != nil {
		return err
	}
	dye, err := core.NewFieldPair(dyeSize, 3)
	if err != nil {
		return err
	}
	divergence, err := core.Allocate(simSize, 1)
	if err != nil {
		return err
	}
	curl, err := core.Allocate(simSize, 1)
	if err != nil {
		return err
	}
	scratch, err := core.Allocate(simSize, 2)
	if err != nil {
		return err
	}
	s.viewport = core.Size{W: viewW, H: viewH}
	s.simSize, s.dyeSize = simSize, dyeSize
	s.velocity, s.pressure, s.temperature, s.dye = velocity, pressure, temperature, dye
	s.divergence, s.curl, s.scratch = divergence, curl, scratch
	s.forcing.SetAspect(s.viewport.Aspect())
	return nil
}

// Tick samples the clock and advances by the elapsed time. It does nothing
// while paused; queued input stays pending.
func (s *Simulation) Tick() error {
	if !s.clock.Running() {
		return nil
	}
	s.clock.SetMaxDt(s.settings.Snapshot().Params.MaxDt)
	return s.Step(s.clock.Sample())
}

// Step advances by dt seconds, clamped to [0, MaxDt], regardless of the
// clock state.
func (s *Simulation) Step(dt float64) error {
	p := s.settings.Snapshot().Params
	if !(dt > 0) {
		dt = 0
	}
	if dt > p.MaxDt {
		dt = p.MaxDt
	}
	if err := s.step(float32(dt), p); err != nil {
		return err
	}
	s.ticks++
	return nil
}

// UpdatePointer forwards a pointer sample to the forcing queue.
func (s *Simulation) UpdatePointer(sample core.PointerSample) { s.forcing.UpdatePointer(sample) }

// RequestSplats queues a burst of random splats for the next tick.
func (s *Simulation) RequestSplats(count int) error { return s.forcing.RequestSplats(count) }

// Forcing exposes the input queue for diagnostics.
func (s *Simulation) Forcing() *Forcing { return s.forcing }

// Splat applies one event immediately with the current parameters.
func (s *Simulation) Splat(e Event) error {
	return s.splat(e, s.settings.Snapshot().Params)
}

// Field returns a read-only view of a named field. A view tracks the buffer
// that was current when it was taken; fetch a new one after every tick.
func (s *Simulation) Field(name string) (core.FieldView, error) {
	switch name {
	case FieldVelocity:
		return s.velocity.Current().View(), nil
	case FieldPressure:
		return s.pressure.Current().View(), nil
	case FieldTemperature:
		return s.temperature.Current().View(), nil
	case FieldDivergence:
		return s.divergence.View(), nil
	case FieldCurl:
		return s.curl.View(), nil
	case FieldDye:
		return s.dye.Current().View(), nil
	}
	return core.FieldView{}, fmt.Errorf("field %q: %w", name, core.ErrUnknownField)
}

// FieldNames lists the names accepted by Field, dye first.
func (s *Simulation) FieldNames() []string {
	out := make([]string, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// Obstacle returns the obstacle circle and whether it is enabled.
func (s *Simulation) Obstacle() (kernels.Circle, bool) {
	p := s.settings.Snapshot().Params
	return obstacleCircle(p), p.Obstacle
}

func obstacleCircle(p Params) kernels.Circle {
	return kernels.Circle{X: float32(p.ObstacleX), Y: float32(p.ObstacleY), Radius: float32(p.ObstacleRadius)}
}

// SeedImage replaces the dye with img scaled to the dye grid, clears the flow
// and restarts the clock.
func (s *Simulation) SeedImage(img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("seed image: empty image: %w", core.ErrInvalidParameter)
	}
	w, h := s.dyeSize.W, s.dyeSize.H
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	p := s.settings.Snapshot().Params
	s.clearFlow(p)
	dye := s.dye.Current()
	for y := 0; y < h; y++ {
		// Image rows run top-down, grid rows bottom-up.
		row := h - 1 - y
		for x := 0; x < w; x++ {
			c := color.RGBAModel.Convert(scaled.At(x, row)).(color.RGBA)
			dye.Set(x, y, 0, float32(c.R)/255)
			dye.Set(x, y, 1, float32(c.G)/255)
			dye.Set(x, y, 2, float32(c.B)/255)
		}
	}
	s.ticks = 0
	s.clock.Start()
	return nil
}

// clearFlow zeroes every field and sets temperature to the rest value.
func (s *Simulation) clearFlow(p Params) {
	for _, pair := range []*core.FieldPair{s.velocity, s.pressure, s.dye} {
		pair.Current().Clear()
		pair.Next().Clear()
	}
	s.temperature.Current().Fill(float32(p.RestTemp))
	s.temperature.Next().Fill(float32(p.RestTemp))
	s.divergence.Clear()
	s.curl.Clear()
	s.scratch.Clear()
	s.residual = 0
	s.projected = 0
}

// Stats summarises the current state for logs and remote clients.
type Stats struct {
	Tick       uint64     `json:"tick"`
	Dt         float64    `json:"dt"`
	// Divergence is mean |div u| of the current velocity; Projected is the
	// same measure taken right after the last projection, before advection.
	Divergence float64    `json:"divergence"`
	Projected  float64    `json:"projected"`
	Momentum   [2]float64 `json:"momentum"`
	Residual   float64    `json:"residual"`
	Pending    int        `json:"pending"`
	Dropped    int        `json:"dropped"`
	Version    uint64     `json:"version"`
}

// Stats measures the velocity field as it stands between ticks.
func (s *Simulation) Stats() Stats {
	vel := s.velocity.Current()
	mx, my := Momentum(vel)
	return Stats{
		Tick:       s.ticks,
		Dt:         s.clock.LastDt(),
		Divergence: MeanAbsDivergence(vel),
		Projected:  s.projected,
		Momentum:   [2]float64{mx, my},
		Residual:   s.residual,
		Pending:    s.forcing.PendingBursts(),
		Dropped:    s.forcing.DroppedSamples(),
		Version:    s.settings.Snapshot().Version,
	}
}
