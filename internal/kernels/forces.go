package kernels

import (
	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

// Buoyancy holds the coefficients of the Boussinesq body force.
type Buoyancy struct {
	Strength float32
	Kappa    float32 // weight of dye density
	Sigma    float32 // weight of temperature above rest
	Gravity  float32
	RestTemp float32
}

// Zero reports whether the force would leave velocity unchanged.
func (b Buoyancy) Zero() bool {
	return b.Gravity == 0 && (b.Strength == 0 || (b.Sigma == 0 && b.Kappa == 0))
}

// AddForces writes vel plus dt*(B*(sigma*(T-T0) - kappa*rho) - g) on the
// vertical component into dst. rho is the mean dye channel, sampled from dye
// at the matching normalized position.
func AddForces(p device.Processor, dst, vel, temperature, dye *core.Field, dt float32, b Buoyancy) error {
	if err := distinct("forces", dst, vel, temperature, dye); err != nil {
		return err
	}
	if err := sameShape("forces", dst, vel); err != nil {
		return err
	}
	if err := sameSize("forces", dst, temperature); err != nil {
		return err
	}
	if err := channels("forces velocity", vel, 2); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		rgb := make([]float32, dye.C)
		for y := y0; y < y1; y++ {
			dy := toGrid(y, dst.H, dye.H)
			for x := 0; x < dst.W; x++ {
				sampleInto(dye, toGrid(x, dst.W, dye.W), dy, rgb)
				var rho float32
				for _, c := range rgb {
					rho += c
				}
				rho /= float32(len(rgb))
				t := temperature.At(x, y, 0)
				lift := b.Strength*(b.Sigma*(t-b.RestTemp)-b.Kappa*rho) - b.Gravity
				i := dst.Index(x, y)
				dst.Data[i] = vel.Data[i]
				dst.Data[i+1] = vel.Data[i+1] + dt*lift
			}
		}
	})
	return nil
}
