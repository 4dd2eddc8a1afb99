package core

import (
	"fmt"
	"math"
)

// Field stores a 2D grid of float32 samples in row-major order. Each cell holds
// C interleaved channels: 1 for scalars, 2 for velocity, 3 for dye.
type Field struct {
	W, H, C int
	Data    []float32
}

// Allocate returns a zeroed field of the given size and channel count.
func Allocate(size Size, channels int) (*Field, error) {
	if size.W <= 0 || size.H <= 0 {
		return nil, fmt.Errorf("allocate %dx%d: %w", size.W, size.H, ErrInvalidResolution)
	}
	if channels < 1 || channels > 4 {
		return nil, fmt.Errorf("allocate %d channels: %w", channels, ErrInvalidChannels)
	}
	return &Field{W: size.W, H: size.H, C: channels, Data: make([]float32, size.W*size.H*channels)}, nil
}

// Size reports the field dimensions.
func (f *Field) Size() Size { return Size{W: f.W, H: f.H} }

// Index returns the slice offset of channel 0 at (x, y).
func (f *Field) Index(x, y int) int { return (y*f.W + x) * f.C }

// At reads channel c at (x, y).
func (f *Field) At(x, y, c int) float32 { return f.Data[f.Index(x, y)+c] }

// Set writes channel c at (x, y).
func (f *Field) Set(x, y, c int, v float32) { f.Data[f.Index(x, y)+c] = v }

// Clamp pins coordinates to the nearest valid cell.
func (f *Field) Clamp(x, y int) (int, int) {
	if x < 0 {
		x = 0
	} else if x >= f.W {
		x = f.W - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.H {
		y = f.H - 1
	}
	return x, y
}

// Sample bilinearly interpolates channel c at grid position (x, y), where cell
// (i, j) sits at (i, j). Positions outside the grid clamp to the edge.
func (f *Field) Sample(x, y float32, c int) float32 {
	x0, y0, x1, y1, fx, fy := f.Weights(x, y)
	a := f.At(x0, y0, c) + (f.At(x1, y0, c)-f.At(x0, y0, c))*fx
	b := f.At(x0, y1, c) + (f.At(x1, y1, c)-f.At(x0, y1, c))*fx
	return a + (b-a)*fy
}

// Weights resolves the four clamped neighbours and fractional offsets used by
// bilinear sampling at (x, y).
func (f *Field) Weights(x, y float32) (x0, y0, x1, y1 int, fx, fy float32) {
	maxX := float32(f.W - 1)
	maxY := float32(f.H - 1)
	if x < 0 || x != x {
		x = 0
	} else if x > maxX {
		x = maxX
	}
	if y < 0 || y != y {
		y = 0
	} else if y > maxY {
		y = maxY
	}
	fx0 := float32(math.Floor(float64(x)))
	fy0 := float32(math.Floor(float64(y)))
	x0, y0 = int(fx0), int(fy0)
	x1, y1 = x0+1, y0+1
	if x1 >= f.W {
		x1 = f.W - 1
	}
	if y1 >= f.H {
		y1 = f.H - 1
	}
	return x0, y0, x1, y1, x - fx0, y - fy0
}

// Fill sets every cell to values, one per channel. Missing channels are zeroed.
func (f *Field) Fill(values ...float32) {
	for i := 0; i < len(f.Data); i += f.C {
		for c := 0; c < f.C; c++ {
			var v float32
			if c < len(values) {
				v = values[c]
			}
			f.Data[i+c] = v
		}
	}
}

// Clear fills the field with zeros.
func (f *Field) Clear() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// SameShape reports whether o has the same resolution and channel count.
func (f *Field) SameShape(o *Field) bool {
	return f != nil && o != nil && f.W == o.W && f.H == o.H && f.C == o.C
}

// SameSize reports whether o has the same resolution, ignoring channels.
func (f *Field) SameSize(o *Field) bool {
	return f != nil && o != nil && f.W == o.W && f.H == o.H
}

// CopyFrom overwrites f with the contents of o.
func (f *Field) CopyFrom(o *Field) error {
	if !f.SameShape(o) {
		return fmt.Errorf("copy %s into %s: %w", o.describe(), f.describe(), ErrResolutionMismatch)
	}
	copy(f.Data, o.Data)
	return nil
}

// View returns a read-only handle to the field.
func (f *Field) View() FieldView { return FieldView{f: f} }

func (f *Field) describe() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%dx%d", f.W, f.H, f.C)
}

// FieldView is a read-only window onto a Field handed to display code. It is
// only meaningful between ticks.
type FieldView struct {
	f *Field
}

// Valid reports whether the view points at a field.
func (v FieldView) Valid() bool { return v.f != nil }

// Size reports the underlying resolution.
func (v FieldView) Size() Size {
	if v.f == nil {
		return Size{}
	}
	return v.f.Size()
}

// Channels reports the number of interleaved channels.
func (v FieldView) Channels() int {
	if v.f == nil {
		return 0
	}
	return v.f.C
}

// At reads channel c at (x, y).
func (v FieldView) At(x, y, c int) float32 { return v.f.At(x, y, c) }

// Sample bilinearly interpolates channel c at grid position (x, y).
func (v FieldView) Sample(x, y float32, c int) float32 { return v.f.Sample(x, y, c) }

// CopyTo copies the raw samples into dst, growing it as needed.
func (v FieldView) CopyTo(dst []float32) []float32 {
	if v.f == nil {
		return dst[:0]
	}
	dst = append(dst[:0], v.f.Data...)
	return dst
}

// FieldPair double-buffers a field so a pass can read Current while writing
// Next. Commit swaps the two without copying.
type FieldPair struct {
	cur, nxt *Field
}

// NewFieldPair allocates both buffers of a pair.
func NewFieldPair(size Size, channels int) (*FieldPair, error) {
	cur, err := Allocate(size, channels)
	if err != nil {
		return nil, err
	}
	nxt, err := Allocate(size, channels)
	if err != nil {
		return nil, err
	}
	return &FieldPair{cur: cur, nxt: nxt}, nil
}

// Current is the buffer holding the latest committed state.
func (p *FieldPair) Current() *Field { return p.cur }

// Next is the scratch buffer a pass writes into.
func (p *FieldPair) Next() *Field { return p.nxt }

// Commit promotes Next to Current.
func (p *FieldPair) Commit() { p.cur, p.nxt = p.nxt, p.cur }

// Size reports the resolution shared by both buffers.
func (p *FieldPair) Size() Size { return p.cur.Size() }
