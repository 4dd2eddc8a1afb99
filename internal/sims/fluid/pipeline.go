package fluid

import (
	"fmt"
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/kernels"
)

// step runs one full pass sequence with a single parameter snapshot.
func (s *Simulation) step(dt float32, p Params) error {
	if err := s.applyEvents(s.forcing.Drain(p), p); err != nil {
		return err
	}

	vel := s.velocity
	if p.Viscosity > 0 {
		if err := kernels.Diffuse(s.proc, vel, s.scratch, p.DiffuseIterations, float32(p.Viscosity), dt); err != nil {
			return err
		}
		if err := s.enforce(vel, -1); err != nil {
			return err
		}
	}

	b := kernels.Buoyancy{
		Strength: float32(p.Buoyancy),
		Kappa:    float32(p.BuoyancyKappa),
		Sigma:    float32(p.BuoyancySigma),
		Gravity:  float32(p.Gravity),
		RestTemp: float32(p.RestTemp),
	}
	if !b.Zero() {
		if err := kernels.AddForces(s.proc, vel.Next(), vel.Current(), s.temperature.Current(), s.dye.Current(), dt, b); err != nil {
			return err
		}
		vel.Commit()
	}

	if p.Vorticity > 0 {
		if err := kernels.Curl(s.proc, s.curl, vel.Current()); err != nil {
			return err
		}
		if err := kernels.Vorticity(s.proc, vel.Next(), vel.Current(), s.curl, dt, float32(p.Vorticity)); err != nil {
			return err
		}
		vel.Commit()
	}

	if err := s.project(p); err != nil {
		return err
	}

	if err := kernels.Advect(s.proc, vel.Next(), vel.Current(), vel.Current(), dt, float32(p.VelocityDissipation)); err != nil {
		return err
	}
	vel.Commit()
	if err := kernels.Advect(s.proc, s.temperature.Next(), s.temperature.Current(), vel.Current(), dt, float32(p.TemperatureDissipation)); err != nil {
		return err
	}
	s.temperature.Commit()
	if err := kernels.Advect(s.proc, s.dye.Next(), s.dye.Current(), vel.Current(), dt, float32(p.DensityDissipation)); err != nil {
		return err
	}
	s.dye.Commit()
	return nil
}

// project removes the divergent part of the velocity and re-applies the wall
// and obstacle conditions.
func (s *Simulation) project(p Params) error {
	vel := s.velocity
	if err := kernels.Divergence(s.proc, s.divergence, vel.Current()); err != nil {
		return err
	}
	var obstacles []kernels.Circle
	if p.Obstacle {
		obstacles = append(obstacles, obstacleCircle(p))
	}
	if err := kernels.SolvePressure(s.proc, s.pressure, s.divergence, p.PressureIterations, float32(p.PressureBias), obstacles...); err != nil {
		return err
	}
	if p.DebugResidual {
		r, err := kernels.Residual(s.proc, s.pressure.Current(), s.divergence)
		if err != nil {
			return err
		}
		s.residual = r
		s.log.Printf("%s: tick %d pressure residual %.6g after %d iterations", s.name, s.ticks, r, p.PressureIterations)
	}
	if err := kernels.SubtractGradient(s.proc, vel.Next(), vel.Current(), s.pressure.Current()); err != nil {
		return err
	}
	vel.Commit()
	if err := s.enforce(vel, -1); err != nil {
		return err
	}
	if p.Obstacle {
		if err := kernels.Obstacle(s.proc, vel.Next(), vel.Current(), obstacleCircle(p), -1); err != nil {
			return err
		}
		vel.Commit()
	}
	s.projected = MeanAbsDivergence(vel.Current())
	return nil
}

func (s *Simulation) enforce(pair *core.FieldPair, scale float32) error {
	if err := kernels.Boundary(s.proc, pair.Next(), pair.Current(), scale); err != nil {
		return err
	}
	pair.Commit()
	return nil
}

func (s *Simulation) applyEvents(events []Event, p Params) error {
	for _, e := range events {
		if err := s.splat(e, p); err != nil {
			return err
		}
	}
	return nil
}

// splat stamps one event into velocity, dye and, when it carries heat,
// temperature.
func (s *Simulation) splat(e Event, p Params) error {
	for _, v := range []float32{e.Pos[0], e.Pos[1], e.Delta[0], e.Delta[1], e.Heat, e.Radius} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("splat at %v: non-finite value: %w", e.Pos, core.ErrInvalidParameter)
		}
	}
	radius := e.Radius
	if radius <= 0 {
		radius = float32(p.SplatRadius)
	}
	aspect := float32(s.viewport.Aspect())
	// Radii are percentages of the unit domain.
	r := kernels.ScaleRadius(radius/100, aspect)
	x, y := e.Pos[0], e.Pos[1]

	if err := kernels.Splat(s.proc, s.velocity.Next(), s.velocity.Current(), x, y, e.Delta[:], r, aspect); err != nil {
		return err
	}
	s.velocity.Commit()
	if err := kernels.Splat(s.proc, s.dye.Next(), s.dye.Current(), x, y, e.Color[:], r, aspect); err != nil {
		return err
	}
	s.dye.Commit()
	if e.Heat != 0 {
		if err := kernels.Splat(s.proc, s.temperature.Next(), s.temperature.Current(), x, y, []float32{e.Heat}, r, aspect); err != nil {
			return err
		}
		s.temperature.Commit()
	}
	return nil
}
