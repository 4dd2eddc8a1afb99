package kernels

import (
	"fmt"
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

// ScaleRadius stretches a splat radius on landscape viewports so splats stay
// circular after the x axis is aspect-corrected.
func ScaleRadius(r, aspect float32) float32 {
	if aspect > 1 {
		return r * aspect
	}
	return r
}

// Splat writes src + value*exp(-|d|^2/radius) into dst, where d is the offset
// of each cell centre from (px, py) in normalized coordinates with d.x scaled
// by aspect. value supplies one amplitude per channel.
func Splat(p device.Processor, dst, src *core.Field, px, py float32, value []float32, radius, aspect float32) error {
	if err := distinct("splat", dst, src); err != nil {
		return err
	}
	if err := sameShape("splat", dst, src); err != nil {
		return err
	}
	if radius <= 0 {
		return fmt.Errorf("splat radius %v: %w", radius, core.ErrInvalidParameter)
	}
	amp := make([]float32, dst.C)
	copy(amp, value)
	w, h := float32(dst.W), float32(dst.H)
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			dy := (float32(y)+0.5)/h - py
			for x := 0; x < dst.W; x++ {
				dx := ((float32(x)+0.5)/w - px) * aspect
				g := float32(math.Exp(float64(-(dx*dx + dy*dy) / radius)))
				i := dst.Index(x, y)
				for c := 0; c < dst.C; c++ {
					dst.Data[i+c] = src.Data[i+c] + amp[c]*g
				}
			}
		}
	})
	return nil
}
