package fluid

import (
	"fluidsim/internal/core"

	"gonum.org/v1/gonum/floats"
)

// MeanAbsDivergence returns the mean |div u| over interior cells of a
// two-channel velocity field, using the same central difference as the
// projection.
func MeanAbsDivergence(vel *core.Field) float64 {
	if vel == nil || vel.C != 2 || vel.W < 3 || vel.H < 3 {
		return 0
	}
	div := make([]float64, 0, (vel.W-2)*(vel.H-2))
	for y := 1; y < vel.H-1; y++ {
		for x := 1; x < vel.W-1; x++ {
			d := (vel.At(x+1, y, 0) - vel.At(x-1, y, 0)) + (vel.At(x, y+1, 1) - vel.At(x, y-1, 1))
			div = append(div, 0.5*float64(d))
		}
	}
	return floats.Norm(div, 1) / float64(len(div))
}

// Momentum sums each velocity component over interior cells. Edge cells are
// overwritten by the wall condition every tick and are left out.
func Momentum(vel *core.Field) (mx, my float64) {
	if vel == nil || vel.C != 2 || vel.W < 3 || vel.H < 3 {
		return 0, 0
	}
	n := (vel.W - 2) * (vel.H - 2)
	u := make([]float64, 0, n)
	v := make([]float64, 0, n)
	for y := 1; y < vel.H-1; y++ {
		for x := 1; x < vel.W-1; x++ {
			u = append(u, float64(vel.At(x, y, 0)))
			v = append(v, float64(vel.At(x, y, 1)))
		}
	}
	return floats.Sum(u), floats.Sum(v)
}

// ChannelRange returns the smallest and largest value of channel c.
func ChannelRange(view core.FieldView, c int) (lo, hi float64) {
	if !view.Valid() || c < 0 || c >= view.Channels() {
		return 0, 0
	}
	size := view.Size()
	vals := make([]float64, 0, size.Cells())
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			vals = append(vals, float64(view.At(x, y, c)))
		}
	}
	return floats.Min(vals), floats.Max(vals)
}
