package kernels

import (
	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

// Divergence writes the central difference 0.5*((uR - uL) + (vT - vB)) of vel
// into dst.
func Divergence(p device.Processor, dst, vel *core.Field) error {
	if err := distinct("divergence", dst, vel); err != nil {
		return err
	}
	if err := sameSize("divergence", dst, vel); err != nil {
		return err
	}
	if err := channels("divergence velocity", vel, 2); err != nil {
		return err
	}
	if err := channels("divergence output", dst, 1); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				xl, xr, yb, yt := neighbours(vel, x, y)
				d := (vel.At(xr, y, 0) - vel.At(xl, y, 0)) + (vel.At(x, yt, 1) - vel.At(x, yb, 1))
				dst.Set(x, y, 0, 0.5*d)
			}
		}
	})
	return nil
}

// SubtractGradient writes vel - 0.5*(pR - pL, pT - pB) into dst.
func SubtractGradient(p device.Processor, dst, vel, pressure *core.Field) error {
	if err := distinct("gradient", dst, vel, pressure); err != nil {
		return err
	}
	if err := sameShape("gradient", dst, vel); err != nil {
		return err
	}
	if err := sameSize("gradient", dst, pressure); err != nil {
		return err
	}
	if err := channels("gradient velocity", vel, 2); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				xl, xr, yb, yt := neighbours(pressure, x, y)
				i := dst.Index(x, y)
				dst.Data[i] = vel.Data[i] - 0.5*(pressure.At(xr, y, 0)-pressure.At(xl, y, 0))
				dst.Data[i+1] = vel.Data[i+1] - 0.5*(pressure.At(x, yt, 0)-pressure.At(x, yb, 0))
			}
		}
	})
	return nil
}
