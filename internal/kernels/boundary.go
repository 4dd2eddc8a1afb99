package kernels

import (
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/device"
)

// Boundary copies src into dst and overwrites every edge cell with scale times
// its inward neighbour. Corners take the diagonal neighbour. Use scale -1 for
// velocity and +1 for pressure.
func Boundary(p device.Processor, dst, src *core.Field, scale float32) error {
	if err := distinct("boundary", dst, src); err != nil {
		return err
	}
	if err := sameShape("boundary", dst, src); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			dy := 0
			switch {
			case y == 0:
				dy = 1
			case y == dst.H-1:
				dy = -1
			}
			for x := 0; x < dst.W; x++ {
				dx := 0
				switch {
				case x == 0:
					dx = 1
				case x == dst.W-1:
					dx = -1
				}
				i := dst.Index(x, y)
				if dx == 0 && dy == 0 {
					copy(dst.Data[i:i+dst.C], src.Data[i:i+src.C])
					continue
				}
				sx, sy := src.Clamp(x+dx, y+dy)
				j := src.Index(sx, sy)
				for c := 0; c < dst.C; c++ {
					dst.Data[i+c] = scale * src.Data[j+c]
				}
			}
		}
	})
	return nil
}

// Circle is a solid obstacle in normalized domain coordinates. Radius is a
// fraction of the shorter grid side.
type Circle struct {
	X, Y   float32
	Radius float32
}

// cells converts the circle into grid units for a w by h field.
func (o Circle) cells(w, h int) (cx, cy, r float32) {
	short := w
	if h < short {
		short = h
	}
	return o.X * float32(w), o.Y * float32(h), o.Radius * float32(short)
}

// Contains reports whether cell (x, y) of a w by h grid lies inside the circle.
func (o Circle) Contains(x, y, w, h int) bool {
	cx, cy, r := o.cells(w, h)
	dx := float32(x) + 0.5 - cx
	dy := float32(y) + 0.5 - cy
	return dx*dx+dy*dy < r*r
}

// Obstacle applies the boundary rule around a circular obstacle: every cell
// inside takes scale times the value of the first cell outside along the
// outward normal. Cells outside are copied unchanged.
func Obstacle(p device.Processor, dst, src *core.Field, o Circle, scale float32) error {
	if err := distinct("obstacle", dst, src); err != nil {
		return err
	}
	if err := sameShape("obstacle", dst, src); err != nil {
		return err
	}
	cx, cy, r := o.cells(dst.W, dst.H)
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < dst.W; x++ {
				i := dst.Index(x, y)
				if r <= 0 || !o.Contains(x, y, dst.W, dst.H) {
					copy(dst.Data[i:i+dst.C], src.Data[i:i+src.C])
					continue
				}
				nx := float32(x) + 0.5 - cx
				ny := float32(y) + 0.5 - cy
				n := float32(math.Hypot(float64(nx), float64(ny)))
				if n < 1e-6 {
					nx, ny, n = 1, 0, 1
				}
				ox := cx + nx/n*(r+1)
				oy := cy + ny/n*(r+1)
				sx, sy := src.Clamp(int(math.Floor(float64(ox))), int(math.Floor(float64(oy))))
				j := src.Index(sx, sy)
				for c := 0; c < dst.C; c++ {
					dst.Data[i+c] = scale * src.Data[j+c]
				}
			}
		}
	})
	return nil
}
