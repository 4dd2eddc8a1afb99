package fluid

import (
	"fmt"

	"fluidsim/internal/core"
)

// Presets are registered as separate sims so the launcher can pick them by
// name; map overrides apply on top of each preset.
var presets = map[string]func() Config{
	"fluid": DefaultConfig,
	"smoke": func() Config {
		c := DefaultConfig()
		c.Params.Ambient = true
		c.Params.Gravity = 0
		c.Params.Buoyancy = 1
		c.Params.Vorticity = 20
		c.InitialSplats = 0
		return c
	},
	"ink": func() Config {
		c := DefaultConfig()
		c.Params.Buoyancy = 0
		c.Params.Vorticity = 0
		c.Params.DensityDissipation = 0.001
		c.Params.VelocityDissipation = 0.002
		return c
	},
}

// NewPreset builds the named preset with overrides applied.
func NewPreset(name string, overrides map[string]string) (*Simulation, error) {
	base, ok := presets[name]
	if !ok {
		base = DefaultConfig
		name = "fluid"
	}
	cfg, err := ApplyMap(base(), overrides)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	s.name = name
	return s, nil
}

func init() {
	for name := range presets {
		name := name
		core.Register(name, func(cfg map[string]string) (core.Sim, error) {
			return NewPreset(name, cfg)
		})
	}
}
