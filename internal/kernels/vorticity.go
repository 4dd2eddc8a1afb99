package kernels

import (
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

const confinementEpsilon = 1e-5

// Curl writes the scalar vorticity 0.5*((vR - vL) - (uT - uB)) of vel into dst.
func Curl(p device.Processor, dst, vel *core.Field) error {
	if err := distinct("curl", dst, vel); err != nil {
		return err
	}
	if err := sameSize("curl", dst, vel); err != nil {
		return err
	}
	if err := channels("curl velocity", vel, 2); err != nil {
		return err
	}
	if err := channels("curl output", dst, 1); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				xl, xr, yb, yt := neighbours(vel, x, y)
				vL := vel.At(xl, y, 1)
				vR := vel.At(xr, y, 1)
				uB := vel.At(x, yb, 0)
				uT := vel.At(x, yt, 0)
				dst.Set(x, y, 0, 0.5*((vR-vL)-(uT-uB)))
			}
		}
	})
	return nil
}

// Vorticity adds the confinement force strength*curl*N to vel, where N is the
// normalized gradient of |curl| rotated a quarter turn, and writes the result
// into dst.
func Vorticity(p device.Processor, dst, vel, curl *core.Field, dt, strength float32) error {
	if err := distinct("vorticity", dst, vel, curl); err != nil {
		return err
	}
	if err := sameShape("vorticity", dst, vel); err != nil {
		return err
	}
	if err := sameSize("vorticity", dst, curl); err != nil {
		return err
	}
	if err := channels("vorticity velocity", vel, 2); err != nil {
		return err
	}
	abs := func(v float32) float32 { return float32(math.Abs(float64(v))) }
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				xl, xr, yb, yt := neighbours(curl, x, y)
				fx := 0.5 * (abs(curl.At(x, yt, 0)) - abs(curl.At(x, yb, 0)))
				fy := 0.5 * (abs(curl.At(xr, y, 0)) - abs(curl.At(xl, y, 0)))
				length := float32(math.Hypot(float64(fx), float64(fy))) + confinementEpsilon
				w := curl.At(x, y, 0) * strength / length
				fx *= w
				fy *= -w
				i := dst.Index(x, y)
				dst.Data[i] = vel.Data[i] + fx*dt
				dst.Data[i+1] = vel.Data[i+1] + fy*dt
			}
		}
	})
	return nil
}
