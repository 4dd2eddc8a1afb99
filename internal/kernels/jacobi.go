package kernels

import (
	"fmt"
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/device"

	"gonum.org/v1/gonum/floats"
)

// Jacobi performs one relaxation step dst = (xL + xR + xB + xT + alpha*b) * rBeta
// with edge-clamped neighbour reads. b must differ from dst but may equal x.
func Jacobi(p device.Processor, dst, x, b *core.Field, alpha, rBeta float32) error {
	if err := distinct("jacobi", dst, x, b); err != nil {
		return err
	}
	if err := sameShape("jacobi", dst, x, b); err != nil {
		return err
	}
	p.Rows(dst.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for cx := 0; cx < dst.W; cx++ {
				xl, xr, yb, yt := neighbours(x, cx, y)
				il, ir := x.Index(xl, y), x.Index(xr, y)
				ib, it := x.Index(cx, yb), x.Index(cx, yt)
				i := dst.Index(cx, y)
				for c := 0; c < dst.C; c++ {
					sum := x.Data[il+c] + x.Data[ir+c] + x.Data[ib+c] + x.Data[it+c]
					dst.Data[i+c] = (sum + alpha*b.Data[i+c]) * rBeta
				}
			}
		}
	})
	return nil
}

// Diffuse applies implicit viscosity to pair by solving (I - nu*dt*lap) x = x0
// with a fixed number of Jacobi iterations. scratch holds x0 for the whole
// solve. Nothing happens when viscosity or dt is not positive.
func Diffuse(p device.Processor, pair *core.FieldPair, scratch *core.Field, iterations int, viscosity, dt float32) error {
	if viscosity <= 0 || dt <= 0 || iterations <= 0 {
		return nil
	}
	if err := scratch.CopyFrom(pair.Current()); err != nil {
		return fmt.Errorf("diffuse: %w", err)
	}
	alpha := 1 / (viscosity * dt)
	rBeta := 1 / (4 + alpha)
	for i := 0; i < iterations; i++ {
		if err := Jacobi(p, pair.Next(), pair.Current(), scratch, alpha, rBeta); err != nil {
			return err
		}
		pair.Commit()
	}
	return nil
}

// SolvePressure relaxes pressure toward lap(p) = div. The previous result is
// kept as a warm start after scaling by bias. The zero-gradient boundary is
// re-applied after every iteration, at the walls and around each obstacle.
func SolvePressure(p device.Processor, pressure *core.FieldPair, div *core.Field, iterations int, bias float32, obstacles ...Circle) error {
	if err := sameShape("pressure", pressure.Current(), div); err != nil {
		return err
	}
	cur := pressure.Current()
	for i := range cur.Data {
		cur.Data[i] *= bias
	}
	if err := enforceAround(p, pressure, obstacles); err != nil {
		return err
	}
	for i := 0; i < iterations; i++ {
		if err := Jacobi(p, pressure.Next(), pressure.Current(), div, -1, 0.25); err != nil {
			return err
		}
		pressure.Commit()
		if err := enforceAround(p, pressure, obstacles); err != nil {
			return err
		}
	}
	return nil
}

func enforceAround(p device.Processor, pair *core.FieldPair, obstacles []Circle) error {
	if err := enforce(p, pair, 1); err != nil {
		return err
	}
	for _, o := range obstacles {
		if err := Obstacle(p, pair.Next(), pair.Current(), o, 1); err != nil {
			return err
		}
		pair.Commit()
	}
	return nil
}

func enforce(p device.Processor, pair *core.FieldPair, scale float32) error {
	if err := Boundary(p, pair.Next(), pair.Current(), scale); err != nil {
		return err
	}
	pair.Commit()
	return nil
}

// Residual returns the mean absolute error of the compact Poisson stencil
// lap(p) - div over interior cells.
func Residual(p device.Processor, pressure, div *core.Field) (float64, error) {
	if err := sameShape("residual", pressure, div); err != nil {
		return 0, err
	}
	if pressure.W < 3 || pressure.H < 3 {
		return 0, nil
	}
	rows := make([]float64, pressure.H)
	p.Rows(pressure.H, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			if y == 0 || y == pressure.H-1 {
				continue
			}
			var sum float64
			for x := 1; x < pressure.W-1; x++ {
				lap := pressure.At(x-1, y, 0) + pressure.At(x+1, y, 0) +
					pressure.At(x, y-1, 0) + pressure.At(x, y+1, 0) - 4*pressure.At(x, y, 0)
				sum += math.Abs(float64(lap - div.At(x, y, 0)))
			}
			rows[y] = sum
		}
	})
	return floats.Sum(rows) / float64((pressure.W-2)*(pressure.H-2)), nil
}
