package fluid

import (
	"fmt"
	"strconv"

	"fluidsim/internal/core"
)

// paramDef binds a parameter key to its Params field and HUD bounds. Exactly
// one of f, i, b is set.
type paramDef struct {
	group string
	key   string
	label string
	step  float64
	min   float64
	max   float64
	hud   bool

	f func(*Params) *float64
	i func(*Params) *int
	b func(*Params) *bool
}

func (s paramDef) kind() core.ParamType {
	switch {
	case s.i != nil:
		return core.ParamTypeInt
	case s.b != nil:
		return core.ParamTypeBool
	default:
		return core.ParamTypeFloat
	}
}

var paramTable = []paramDef{
	{group: "Dissipation", key: "density_dissipation", label: "Density dissipation", step: 0.01, max: 0.5, hud: true, f: func(p *Params) *float64 { return &p.DensityDissipation }},
	{group: "Dissipation", key: "velocity_dissipation", label: "Velocity dissipation", step: 0.01, max: 0.5, hud: true, f: func(p *Params) *float64 { return &p.VelocityDissipation }},
	{group: "Dissipation", key: "temperature_dissipation", label: "Temperature dissipation", step: 0.01, max: 0.5, hud: true, f: func(p *Params) *float64 { return &p.TemperatureDissipation }},

	{group: "Forces", key: "buoyancy", label: "Buoyancy", step: 0.1, max: 2, hud: true, f: func(p *Params) *float64 { return &p.Buoyancy }},
	{group: "Forces", key: "buoyancy_kappa", label: "Buoyancy kappa", step: 0.05, max: 1, hud: true, f: func(p *Params) *float64 { return &p.BuoyancyKappa }},
	{group: "Forces", key: "buoyancy_sigma", label: "Buoyancy sigma", step: 0.05, max: 1, hud: true, f: func(p *Params) *float64 { return &p.BuoyancySigma }},
	{group: "Forces", key: "gravity", label: "Gravity", step: 10, max: 1000, hud: true, f: func(p *Params) *float64 { return &p.Gravity }},
	{group: "Forces", key: "rest_temp", label: "Rest temperature", step: 1, max: 30, hud: true, f: func(p *Params) *float64 { return &p.RestTemp }},
	{group: "Forces", key: "vorticity", label: "Vorticity", step: 5, max: 100, hud: true, f: func(p *Params) *float64 { return &p.Vorticity }},
	{group: "Forces", key: "viscosity", label: "Viscosity", step: 0.1, max: 500, hud: true, f: func(p *Params) *float64 { return &p.Viscosity }},

	{group: "Solver", key: "pressure_bias", label: "Pressure bias", step: 0.05, max: 1, hud: true, f: func(p *Params) *float64 { return &p.PressureBias }},
	{group: "Solver", key: "pressure_iterations", label: "Pressure iterations", step: 5, max: maxIterations, hud: true, i: func(p *Params) *int { return &p.PressureIterations }},
	{group: "Solver", key: "diffuse_iterations", label: "Diffuse iterations", step: 5, max: maxIterations, i: func(p *Params) *int { return &p.DiffuseIterations }},
	{group: "Solver", key: "max_dt", label: "Max dt", step: 0.001, min: 0.001, max: 1, f: func(p *Params) *float64 { return &p.MaxDt }},
	{group: "Solver", key: "debug_residual", label: "Log residual", b: func(p *Params) *bool { return &p.DebugResidual }},

	{group: "Splats", key: "splat_radius", label: "Splat radius", step: 0.05, min: 0.001, max: 10, hud: true, f: func(p *Params) *float64 { return &p.SplatRadius }},
	{group: "Splats", key: "splat_force", label: "Splat force", step: 500, max: 10000, hud: true, f: func(p *Params) *float64 { return &p.SplatForce }},
	{group: "Splats", key: "splat_heat", label: "Splat heat", step: 1, max: 50, f: func(p *Params) *float64 { return &p.SplatHeat }},
	{group: "Splats", key: "burst_force", label: "Burst force", step: 100, max: 10000, f: func(p *Params) *float64 { return &p.BurstForce }},

	{group: "Scene", key: "obstacle", label: "Obstacle", step: 1, max: 1, hud: true, b: func(p *Params) *bool { return &p.Obstacle }},
	{group: "Scene", key: "obstacle_x", label: "Obstacle x", step: 0.05, max: 1, f: func(p *Params) *float64 { return &p.ObstacleX }},
	{group: "Scene", key: "obstacle_y", label: "Obstacle y", step: 0.05, max: 1, f: func(p *Params) *float64 { return &p.ObstacleY }},
	{group: "Scene", key: "obstacle_radius", label: "Obstacle radius", step: 0.01, max: 0.5, f: func(p *Params) *float64 { return &p.ObstacleRadius }},
	{group: "Scene", key: "ambient", label: "Ambient source", step: 1, max: 1, hud: true, b: func(p *Params) *bool { return &p.Ambient }},
	{group: "Scene", key: "ambient_x", label: "Ambient x", step: 0.05, max: 1, f: func(p *Params) *float64 { return &p.AmbientX }},
	{group: "Scene", key: "ambient_y", label: "Ambient y", step: 0.05, max: 1, f: func(p *Params) *float64 { return &p.AmbientY }},
	{group: "Scene", key: "ambient_radius", label: "Ambient radius", step: 0.05, max: 10, f: func(p *Params) *float64 { return &p.AmbientRadius }},
	{group: "Scene", key: "ambient_velocity", label: "Ambient velocity", step: 5, min: -500, max: 500, f: func(p *Params) *float64 { return &p.AmbientVelocity }},
	{group: "Scene", key: "ambient_density", label: "Ambient density", step: 0.01, max: 1, f: func(p *Params) *float64 { return &p.AmbientDensity }},
	{group: "Scene", key: "ambient_heat", label: "Ambient heat", step: 0.5, min: -50, max: 50, f: func(p *Params) *float64 { return &p.AmbientHeat }},
}

func lookupParam(key string) (paramDef, bool) {
	for _, s := range paramTable {
		if s.key == key {
			return s, true
		}
	}
	return paramDef{}, false
}

// setParam parses value into the field named by key.
func setParam(p *Params, key, value string) error {
	def, ok := lookupParam(key)
	if !ok {
		return fmt.Errorf("unknown parameter %q: %w", key, core.ErrInvalidParameter)
	}
	switch {
	case def.f != nil:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, value, core.ErrInvalidParameter)
		}
		*def.f(p) = v
	case def.i != nil:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, value, core.ErrInvalidParameter)
		}
		*def.i(p) = v
	case def.b != nil:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, value, core.ErrInvalidParameter)
		}
		*def.b(p) = v
	}
	return nil
}

func (s *Simulation) Parameters() core.ParameterSnapshot {
	snap := s.settings.Snapshot()
	p := snap.Params
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("sim_w", "Sim width", s.simSize.W),
				intParam("sim_h", "Sim height", s.simSize.H),
				intParam("dye_w", "Dye width", s.dyeSize.W),
				intParam("dye_h", "Dye height", s.dyeSize.H),
				int64Param("seed", "Seed", s.seed),
				{Key: "backend", Label: "Backend", Value: s.proc.Name()},
			},
		},
	}
	for _, def := range paramTable {
		if len(groups) == 0 || groups[len(groups)-1].Name != def.group {
			groups = append(groups, core.ParameterGroup{Name: def.group})
		}
		g := &groups[len(groups)-1]
		switch {
		case def.f != nil:
			g.Params = append(g.Params, floatParam(def.key, def.label, *def.f(&p)))
		case def.i != nil:
			g.Params = append(g.Params, intParam(def.key, def.label, *def.i(&p)))
		case def.b != nil:
			g.Params = append(g.Params, boolParam(def.key, def.label, *def.b(&p)))
		}
	}
	return core.ParameterSnapshot{Version: snap.Version, Groups: groups}
}

// ParameterControls lists the parameters adjustable from the HUD.
func (s *Simulation) ParameterControls() []core.ParameterControl {
	controls := make([]core.ParameterControl, 0, len(paramTable))
	for _, def := range paramTable {
		if !def.hud {
			continue
		}
		controls = append(controls, core.ParameterControl{
			Key:    def.key,
			Label:  def.label,
			Type:   def.kind(),
			Step:   def.step,
			Min:    def.min,
			Max:    def.max,
			HasMin: true,
			HasMax: def.max > def.min,
		})
	}
	return controls
}

// SetFloatParameter publishes a new snapshot with key set to value. It reports
// false for unknown keys or values that fail validation.
func (s *Simulation) SetFloatParameter(key string, value float64) bool {
	def, ok := lookupParam(key)
	if !ok || def.f == nil {
		return false
	}
	return s.settings.Apply(func(p *Params) error {
		*def.f(p) = value
		return nil
	}) == nil
}

// SetIntParameter is the integer counterpart of SetFloatParameter.
func (s *Simulation) SetIntParameter(key string, value int) bool {
	def, ok := lookupParam(key)
	if !ok || def.i == nil {
		return false
	}
	return s.settings.Apply(func(p *Params) error {
		*def.i(p) = value
		return nil
	}) == nil
}

// SetBoolParameter toggles a boolean parameter.
func (s *Simulation) SetBoolParameter(key string, value bool) bool {
	def, ok := lookupParam(key)
	if !ok || def.b == nil {
		return false
	}
	return s.settings.Apply(func(p *Params) error {
		*def.b(p) = value
		return nil
	}) == nil
}

// SetParameter parses value according to the parameter's type.
func (s *Simulation) SetParameter(key, value string) error {
	return s.settings.Apply(func(p *Params) error { return setParam(p, key, value) })
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
