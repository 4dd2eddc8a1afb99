package fluid

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"fluidsim/internal/core"
)

// Params holds the tunables read once at the start of every tick.
type Params struct {
	DensityDissipation     float64 `json:"density_dissipation"`
	VelocityDissipation    float64 `json:"velocity_dissipation"`
	TemperatureDissipation float64 `json:"temperature_dissipation"`

	Viscosity         float64 `json:"viscosity"`
	DiffuseIterations int     `json:"diffuse_iterations"`
	Vorticity         float64 `json:"vorticity"`

	Buoyancy      float64 `json:"buoyancy"`
	BuoyancyKappa float64 `json:"buoyancy_kappa"`
	BuoyancySigma float64 `json:"buoyancy_sigma"`
	Gravity       float64 `json:"gravity"`
	RestTemp      float64 `json:"rest_temp"`

	PressureBias       float64 `json:"pressure_bias"`
	PressureIterations int     `json:"pressure_iterations"`

	// SplatRadius is a percentage of the unit domain.
	SplatRadius float64 `json:"splat_radius"`
	SplatForce  float64 `json:"splat_force"`
	SplatHeat   float64 `json:"splat_heat"`
	BurstForce  float64 `json:"burst_force"`

	MaxDt float64 `json:"max_dt"`

	Obstacle       bool    `json:"obstacle"`
	ObstacleX      float64 `json:"obstacle_x"`
	ObstacleY      float64 `json:"obstacle_y"`
	ObstacleRadius float64 `json:"obstacle_radius"`

	Ambient         bool    `json:"ambient"`
	AmbientX        float64 `json:"ambient_x"`
	AmbientY        float64 `json:"ambient_y"`
	AmbientRadius   float64 `json:"ambient_radius"`
	AmbientVelocity float64 `json:"ambient_velocity"`
	AmbientDensity  float64 `json:"ambient_density"`
	AmbientHeat     float64 `json:"ambient_heat"`

	DebugResidual bool `json:"debug_residual"`
}

// DefaultParams mirrors the reference smoke tuning.
func DefaultParams() Params {
	return Params{
		DensityDissipation:     0.01,
		VelocityDissipation:    0.01,
		TemperatureDissipation: 0.01,
		Viscosity:              0.101,
		DiffuseIterations:      50,
		Vorticity:              40,
		Buoyancy:               1,
		BuoyancyKappa:          0.25,
		BuoyancySigma:          0.1,
		Gravity:                0,
		RestTemp:               10,
		PressureBias:           0.8,
		PressureIterations:     50,
		SplatRadius:            0.1,
		SplatForce:             6000,
		SplatHeat:              5,
		BurstForce:             1000,
		MaxDt:                  1.0 / 60.0,
		ObstacleX:              0.5,
		ObstacleY:              0.5,
		ObstacleRadius:         0.1,
		AmbientX:               0.5,
		AmbientY:               0.08,
		AmbientRadius:          0.3,
		AmbientVelocity:        20,
		AmbientDensity:         0.05,
		AmbientHeat:            2,
	}
}

// Validate reports the first out-of-range value.
func (p Params) Validate() error {
	finite := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s=%v: %w", name, v, core.ErrInvalidParameter)
		}
		return nil
	}
	nonNegative := map[string]float64{
		"density_dissipation":     p.DensityDissipation,
		"velocity_dissipation":    p.VelocityDissipation,
		"temperature_dissipation": p.TemperatureDissipation,
		"viscosity":               p.Viscosity,
		"vorticity":               p.Vorticity,
		"buoyancy":                p.Buoyancy,
		"splat_force":             p.SplatForce,
		"burst_force":             p.BurstForce,
		"ambient_radius":          p.AmbientRadius,
	}
	for name, v := range nonNegative {
		if err := finite(name, v); err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%s=%v must not be negative: %w", name, v, core.ErrInvalidParameter)
		}
	}
	for name, v := range map[string]float64{
		"buoyancy_kappa":   p.BuoyancyKappa,
		"buoyancy_sigma":   p.BuoyancySigma,
		"gravity":          p.Gravity,
		"rest_temp":        p.RestTemp,
		"splat_heat":       p.SplatHeat,
		"ambient_velocity": p.AmbientVelocity,
		"ambient_density":  p.AmbientDensity,
		"ambient_heat":     p.AmbientHeat,
	} {
		if err := finite(name, v); err != nil {
			return err
		}
	}
	switch {
	case p.DiffuseIterations < 0 || p.DiffuseIterations > maxIterations:
		return fmt.Errorf("diffuse_iterations=%d outside [0,%d]: %w", p.DiffuseIterations, maxIterations, core.ErrInvalidParameter)
	case p.PressureIterations < 0 || p.PressureIterations > maxIterations:
		return fmt.Errorf("pressure_iterations=%d outside [0,%d]: %w", p.PressureIterations, maxIterations, core.ErrInvalidParameter)
	case !(p.PressureBias >= 0 && p.PressureBias <= 1):
		return fmt.Errorf("pressure_bias=%v outside [0,1]: %w", p.PressureBias, core.ErrInvalidParameter)
	case !(p.SplatRadius > 0) || math.IsInf(p.SplatRadius, 0):
		return fmt.Errorf("splat_radius=%v must be positive: %w", p.SplatRadius, core.ErrInvalidParameter)
	case !(p.MaxDt > 0) || p.MaxDt > 1:
		return fmt.Errorf("max_dt=%v outside (0,1]: %w", p.MaxDt, core.ErrInvalidParameter)
	case !(p.ObstacleRadius >= 0 && p.ObstacleRadius <= 0.5):
		return fmt.Errorf("obstacle_radius=%v outside [0,0.5]: %w", p.ObstacleRadius, core.ErrInvalidParameter)
	case !unit(p.ObstacleX) || !unit(p.ObstacleY) || !unit(p.AmbientX) || !unit(p.AmbientY):
		return fmt.Errorf("obstacle and ambient positions must lie in [0,1]: %w", core.ErrInvalidParameter)
	}
	return nil
}

const maxIterations = 1000

func unit(v float64) bool { return v >= 0 && v <= 1 }

// Seed modes accepted by Config.SeedMode.
const (
	SeedZero  = "zero"
	SeedNoise = "noise"
)

// Config controls grid sizing, seeding and the processor backend.
type Config struct {
	// Viewport is the display size the grids follow in aspect ratio.
	Width  int
	Height int

	SimResolution int
	DyeResolution int

	Seed     int64
	SeedMode string
	// InitialSplats random splats are injected on every reset. A negative
	// value picks between 2 and 5 from the seed.
	InitialSplats int

	Backend string
	Workers int

	Params Params

	Logger *log.Logger
	// Now overrides the clock's time source.
	Now func() time.Time
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:         960,
		Height:        540,
		SimResolution: 128,
		DyeResolution: 512,
		Seed:          1337,
		SeedMode:      SeedZero,
		InitialSplats: -1,
		Backend:       "pool",
		Params:        DefaultParams(),
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) (Config, error) {
	return ApplyMap(DefaultConfig(), cfg)
}

// ApplyMap overlays flag-style key/value pairs onto base. Every valid pair is
// applied; unknown keys and unparsable values are reported together, each
// wrapping core.ErrInvalidParameter.
func ApplyMap(base Config, cfg map[string]string) (Config, error) {
	c := base
	var errs []error
	positive := func(key, v string, dst *int) {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			errs = append(errs, fmt.Errorf("%s=%q: want a positive integer: %w", key, v, core.ErrInvalidParameter))
			return
		}
		*dst = parsed
	}
	keys := make([]string, 0, len(cfg))
	for key := range cfg {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := cfg[key]
		switch key {
		case "w":
			positive(key, v, &c.Width)
		case "h":
			positive(key, v, &c.Height)
		case "sim_res":
			positive(key, v, &c.SimResolution)
		case "dye_res":
			positive(key, v, &c.DyeResolution)
		case "seed":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("seed=%q: %w", v, core.ErrInvalidParameter))
				continue
			}
			c.Seed = parsed
		case "seed_mode":
			switch mode := strings.ToLower(v); mode {
			case SeedZero, SeedNoise:
				c.SeedMode = mode
			default:
				errs = append(errs, fmt.Errorf("seed_mode=%q: %w", v, core.ErrInvalidParameter))
			}
		case "initial_splats":
			parsed, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("initial_splats=%q: %w", v, core.ErrInvalidParameter))
				continue
			}
			c.InitialSplats = parsed
		case "backend":
			c.Backend = v
		case "workers":
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 {
				errs = append(errs, fmt.Errorf("workers=%q: %w", v, core.ErrInvalidParameter))
				continue
			}
			c.Workers = parsed
		default:
			if err := setParam(&c.Params, key, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return c, errors.Join(errs...)
}
