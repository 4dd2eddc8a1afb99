package app

import (
	"errors"
	"fmt"
	"log"

	"fluidsim/internal/core"
	"fluidsim/internal/sims/fluid"
)

// Action is a front-end command bound to a key.
type Action int

const (
	ActionTogglePause Action = iota
	ActionReset
	ActionReseed
	ActionBurst
	ActionNoise
	ActionObstacle
	ActionNextField
	ActionReloadParams
	ActionSeedImage
)

var actionNames = map[Action]string{
	ActionTogglePause:  "pause",
	ActionReset:        "reset",
	ActionReseed:       "reseed",
	ActionBurst:        "burst",
	ActionNoise:        "noise",
	ActionObstacle:     "obstacle",
	ActionNextField:    "next-field",
	ActionReloadParams: "reload",
	ActionSeedImage:    "image",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction looks an action up by its String name.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return 0, false
}

var runeActions = map[rune]Action{
	' ': ActionTogglePause,
	'r': ActionReset,
	's': ActionReseed,
	'b': ActionBurst,
	'n': ActionNoise,
	'o': ActionObstacle,
	'v': ActionNextField,
	'l': ActionReloadParams,
	'i': ActionSeedImage,
}

// KeyAction maps a typed character to its action, ignoring case.
func KeyAction(r rune) (Action, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	a, ok := runeActions[r]
	return a, ok
}

// ErrNoSource is returned by reload and image actions when no file was
// configured.
var ErrNoSource = errors.New("no file configured")

const (
	burstMin = 5
	burstMax = 24
)

// Controller applies front-end actions to a simulation. It is not safe for
// concurrent use; call it from the goroutine that ticks the simulation.
type Controller struct {
	sim   *fluid.Simulation
	cfg   *Config
	log   *log.Logger
	rng   *core.RNG
	field int
}

// NewController binds actions to sim. cfg supplies the parameter and image
// paths; logger may be nil.
func NewController(sim *fluid.Simulation, cfg *Config, logger *log.Logger) *Controller {
	if cfg == nil {
		cfg = NewConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{sim: sim, cfg: cfg, log: logger, rng: core.NewRNG(sim.Seed() ^ 0x5eed)}
}

// Sim returns the controlled simulation.
func (c *Controller) Sim() *fluid.Simulation { return c.sim }

// Field is the name of the field currently on display.
func (c *Controller) Field() string {
	names := c.sim.FieldNames()
	return names[c.field%len(names)]
}

// Do performs a.
func (c *Controller) Do(a Action) error {
	s := c.sim
	switch a {
	case ActionTogglePause:
		if s.Running() {
			s.Pause()
		} else {
			s.Resume()
		}
		return nil
	case ActionReset:
		return s.Reset(s.Seed())
	case ActionReseed:
		return s.Reset(c.rng.Int64())
	case ActionBurst:
		return s.RequestSplats(c.rng.Between(burstMin, burstMax))
	case ActionNoise:
		if err := s.SetSeedMode(fluid.SeedNoise); err != nil {
			return err
		}
		return s.Reset(c.rng.Int64())
	case ActionObstacle:
		return s.SetParameter("obstacle", fmt.Sprint(!s.Params().Obstacle))
	case ActionNextField:
		c.field = (c.field + 1) % len(s.FieldNames())
		return nil
	case ActionReloadParams:
		return c.reload()
	case ActionSeedImage:
		return c.seedImage()
	}
	return fmt.Errorf("%v: %w", a, core.ErrInvalidParameter)
}

func (c *Controller) reload() error {
	if c.cfg.ParamsFile == "" {
		return fmt.Errorf("reload params: %w", ErrNoSource)
	}
	found, err := c.sim.Settings().LoadFile(c.cfg.ParamsFile)
	if err != nil {
		return err
	}
	if !found {
		c.log.Printf("params: %s not found, keeping current values", c.cfg.ParamsFile)
		return nil
	}
	c.log.Printf("params: reloaded %s (v%d)", c.cfg.ParamsFile, c.sim.Settings().Snapshot().Version)
	return nil
}

func (c *Controller) seedImage() error {
	if c.cfg.Image == "" {
		return fmt.Errorf("seed image: %w", ErrNoSource)
	}
	img, err := LoadImage(c.cfg.Image)
	if err != nil {
		return err
	}
	return c.sim.SeedImage(img)
}
