package app

import (
	"flag"
	"fmt"

	"fluidsim/internal/core"
	"fluidsim/internal/sims/fluid"
)

// Launch builds the configured preset, applies the parameter file and seed
// image, and starts the clock.
func (c *Config) Launch(fs *flag.FlagSet) (*fluid.Simulation, error) {
	factory, ok := core.Sims()[c.Sim]
	if !ok {
		return nil, fmt.Errorf("unknown sim %q (%s)", c.Sim, Usage(core.SimNames()))
	}
	built, err := factory(c.Overrides(fs))
	if err != nil {
		return nil, err
	}
	sim, ok := built.(*fluid.Simulation)
	if !ok {
		return nil, fmt.Errorf("sim %q has no fluid fields", c.Sim)
	}
	if c.ParamsFile != "" {
		if _, err := sim.Settings().LoadFile(c.ParamsFile); err != nil {
			return nil, err
		}
	}
	if c.Image != "" {
		img, err := LoadImage(c.Image)
		if err != nil {
			return nil, err
		}
		if err := sim.SeedImage(img); err != nil {
			return nil, err
		}
		return sim, nil
	}
	sim.Start()
	return sim, nil
}
