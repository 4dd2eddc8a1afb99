// Package kernels implements the per-cell passes of the stable-fluids solver.
//
// Every kernel reads from source fields and writes a distinct destination
// field, validating shapes before touching any output. Grid spacing is one
// simulation cell and velocities are measured in simulation cells per second.
// Row y = 0 is the bottom of the domain.
package kernels

import (
	"fmt"

	"fluidsim/internal/core"
)

// distinct fails if dst aliases any source.
func distinct(op string, dst *core.Field, srcs ...*core.Field) error {
	if dst == nil {
		return fmt.Errorf("%s: nil destination: %w", op, core.ErrResolutionMismatch)
	}
	for _, s := range srcs {
		if s == nil {
			return fmt.Errorf("%s: nil source: %w", op, core.ErrResolutionMismatch)
		}
		if s == dst {
			return fmt.Errorf("%s: %w", op, core.ErrAliasedBuffers)
		}
	}
	return nil
}

// sameSize fails unless every field shares dst's resolution.
func sameSize(op string, dst *core.Field, others ...*core.Field) error {
	for _, o := range others {
		if !dst.SameSize(o) {
			return fmt.Errorf("%s: %dx%d vs %dx%d: %w", op, dst.W, dst.H, o.W, o.H, core.ErrResolutionMismatch)
		}
	}
	return nil
}

// sameShape fails unless every field matches dst's resolution and channels.
func sameShape(op string, dst *core.Field, others ...*core.Field) error {
	for _, o := range others {
		if !dst.SameShape(o) {
			return fmt.Errorf("%s: %dx%dx%d vs %dx%dx%d: %w", op, dst.W, dst.H, dst.C, o.W, o.H, o.C, core.ErrResolutionMismatch)
		}
	}
	return nil
}

func channels(op string, f *core.Field, want int) error {
	if f.C != want {
		return fmt.Errorf("%s: %d channels, want %d: %w", op, f.C, want, core.ErrResolutionMismatch)
	}
	return nil
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// neighbours returns the clamped left, right, bottom and top cell coordinates.
func neighbours(f *core.Field, x, y int) (xl, xr, yb, yt int) {
	return clampIndex(x-1, f.W), clampIndex(x+1, f.W), clampIndex(y-1, f.H), clampIndex(y+1, f.H)
}

// sampleInto bilinearly samples every channel of f at grid position (x, y).
func sampleInto(f *core.Field, x, y float32, out []float32) {
	x0, y0, x1, y1, fx, fy := f.Weights(x, y)
	i00, i10 := f.Index(x0, y0), f.Index(x1, y0)
	i01, i11 := f.Index(x0, y1), f.Index(x1, y1)
	for c := 0; c < f.C; c++ {
		a := f.Data[i00+c] + (f.Data[i10+c]-f.Data[i00+c])*fx
		b := f.Data[i01+c] + (f.Data[i11+c]-f.Data[i01+c])*fx
		out[c] = a + (b-a)*fy
	}
}

// toGrid maps a cell of a grid n cells wide onto the equivalent position of a
// grid m cells wide, aligning cell centres.
func toGrid(i, n, m int) float32 {
	return (float32(i)+0.5)*float32(m)/float32(n) - 0.5
}
