package kernels

import (
	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

// Advect moves q along vel by semi-Lagrangian back-tracing and writes the
// result into dst, scaled by max(0, 1 - dissipation*dt). vel may have a
// different resolution from q; it is sampled at the matching normalized
// position. q and vel may be the same field.
func Advect(p device.Processor, dst, q, vel *core.Field, dt, dissipation float32) error {
	if err := distinct("advect", dst, q, vel); err != nil {
		return err
	}
	if err := sameShape("advect", dst, q); err != nil {
		return err
	}
	if err := channels("advect velocity", vel, 2); err != nil {
		return err
	}
	decay := 1 - dissipation*dt
	if decay < 0 {
		decay = 0
	}
	// Cells of q per cell of vel.
	rx := float32(q.W) / float32(vel.W)
	ry := float32(q.H) / float32(vel.H)

	p.Rows(q.H, func(y0, y1 int) {
		buf := make([]float32, q.C)
		for y := y0; y < y1; y++ {
			vy := toGrid(y, q.H, vel.H)
			for x := 0; x < q.W; x++ {
				vx := toGrid(x, q.W, vel.W)
				u := vel.Sample(vx, vy, 0)
				v := vel.Sample(vx, vy, 1)
				sampleInto(q, float32(x)-dt*u*rx, float32(y)-dt*v*ry, buf)
				i := dst.Index(x, y)
				for c, s := range buf {
					dst.Data[i+c] = s * decay
				}
			}
		}
	})
	return nil
}

// Resample bilinearly maps src onto dst, which may have any resolution but
// must carry the same channel count.
func Resample(p device.Processor, dst, src *core.Field) error {
	if err := distinct("resample", dst, src); err != nil {
		return err
	}
	if err := channels("resample", dst, src.C); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			sy := toGrid(y, dst.H, src.H)
			for x := 0; x < dst.W; x++ {
				i := dst.Index(x, y)
				sampleInto(src, toGrid(x, dst.W, src.W), sy, dst.Data[i:i+dst.C])
			}
		}
	})
	return nil
}
