package core

import (
	"fmt"
	"math"
)

// ResolutionFor derives a grid size whose short side is base cells and whose
// long side follows the viewport aspect ratio.
func ResolutionFor(viewW, viewH, base int) (Size, error) {
	if viewW <= 0 || viewH <= 0 || base <= 0 {
		return Size{}, fmt.Errorf("resolution for %dx%d base %d: %w", viewW, viewH, base, ErrInvalidResolution)
	}
	aspect := float64(viewW) / float64(viewH)
	if aspect < 1 {
		aspect = 1 / aspect
	}
	short := int(math.Round(float64(base)))
	long := int(math.Round(float64(base) * aspect))
	if viewW > viewH {
		return Size{W: long, H: short}, nil
	}
	return Size{W: short, H: long}, nil
}

// Aspect returns W/H, or 1 for an empty size.
func (s Size) Aspect() float64 {
	if s.W <= 0 || s.H <= 0 {
		return 1
	}
	return float64(s.W) / float64(s.H)
}

// Cells returns W*H.
func (s Size) Cells() int { return s.W * s.H }
