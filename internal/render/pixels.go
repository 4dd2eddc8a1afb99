// Package render turns simulation fields into RGBA pixel buffers. Grid row 0
// is the bottom of the domain, so every fill flips rows into image order.
package render

import (
	"image/color"
	"math"

	"fluidsim/internal/core"

	"github.com/mazznoer/colorgrad"
)

const paletteSize = 256

// Palette returns n colours sampled from a named gradient. Unknown names fall
// back to viridis.
func Palette(name string, n int) []color.RGBA {
	if n <= 0 {
		n = paletteSize
	}
	var g colorgrad.Gradient
	switch name {
	case "inferno":
		g = colorgrad.Inferno()
	case "turbo":
		g = colorgrad.Turbo()
	case "rdbu":
		g = colorgrad.RdBu()
	case "sinebow":
		g = colorgrad.Sinebow()
	default:
		g = colorgrad.Viridis()
	}
	cols := g.Colors(uint(n))
	out := make([]color.RGBA, len(cols))
	for i, c := range cols {
		out[i] = toRGBA(c)
	}
	return out
}

func toRGBA(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// Fill writes field name into buf, choosing a mapping that suits it: dye is
// shown as colour, velocity as speed, signed fields on a diverging palette
// centred on zero and temperature over its current range.
func Fill(buf []byte, name string, f core.FieldView, palettes map[string][]color.RGBA) {
	if !f.Valid() || len(buf) < 4*f.Size().Cells() {
		return
	}
	switch name {
	case "dye":
		FillDyeRGBA(buf, f)
	case "velocity":
		FillSpeedRGBA(buf, f, maxSpeed(f), palettes["turbo"])
	case "temperature":
		lo, hi := channelRange(f, 0)
		FillScalarRGBA(buf, f, 0, lo, hi, palettes["inferno"])
	default:
		lo, hi := channelRange(f, 0)
		m := math.Max(math.Abs(lo), math.Abs(hi))
		FillScalarRGBA(buf, f, 0, -m, m, palettes["rdbu"])
	}
}

// DefaultPalettes builds the palettes Fill expects.
func DefaultPalettes() map[string][]color.RGBA {
	return map[string][]color.RGBA{
		"turbo":   Palette("turbo", paletteSize),
		"inferno": Palette("inferno", paletteSize),
		"rdbu":    Palette("rdbu", paletteSize),
	}
}

// FillDyeRGBA writes the first three channels of f as opaque colour,
// clamped to [0, 1].
func FillDyeRGBA(buf []byte, f core.FieldView) {
	size := f.Size()
	ch := f.Channels()
	for y := 0; y < size.H; y++ {
		row := (size.H - 1 - y) * size.W
		for x := 0; x < size.W; x++ {
			base := (row + x) * 4
			for c := 0; c < 3; c++ {
				v := float32(0)
				if c < ch {
					v = f.At(x, y, c)
				}
				buf[base+c] = unit8(float64(v))
			}
			buf[base+3] = 0xff
		}
	}
}

// FillScalarRGBA maps channel c of f from [lo, hi] onto palette.
func FillScalarRGBA(buf []byte, f core.FieldView, c int, lo, hi float64, palette []color.RGBA) {
	size := f.Size()
	if len(palette) == 0 {
		clear(buf[:4*size.Cells()])
		return
	}
	span := hi - lo
	last := len(palette) - 1
	for y := 0; y < size.H; y++ {
		row := (size.H - 1 - y) * size.W
		for x := 0; x < size.W; x++ {
			t := 0.5
			if span > 0 {
				t = (float64(f.At(x, y, c)) - lo) / span
			}
			put(buf, (row+x)*4, palette[index(t, last)])
		}
	}
}

// FillSpeedRGBA maps |v| of a two-channel field from [0, max] onto palette.
func FillSpeedRGBA(buf []byte, f core.FieldView, max float64, palette []color.RGBA) {
	size := f.Size()
	if len(palette) == 0 || f.Channels() < 2 {
		clear(buf[:4*size.Cells()])
		return
	}
	last := len(palette) - 1
	for y := 0; y < size.H; y++ {
		row := (size.H - 1 - y) * size.W
		for x := 0; x < size.W; x++ {
			t := 0.0
			if max > 0 {
				t = math.Hypot(float64(f.At(x, y, 0)), float64(f.At(x, y, 1))) / max
			}
			put(buf, (row+x)*4, palette[index(t, last)])
		}
	}
}

func put(buf []byte, base int, col color.RGBA) {
	buf[base+0] = col.R
	buf[base+1] = col.G
	buf[base+2] = col.B
	buf[base+3] = col.A
}

func index(t float64, last int) int {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return last
	}
	return int(math.Round(t * float64(last)))
}

func unit8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(math.Round(v * 255))
}

func channelRange(f core.FieldView, c int) (lo, hi float64) {
	size := f.Size()
	lo, hi = math.Inf(1), math.Inf(-1)
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			v := float64(f.At(x, y, c))
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func maxSpeed(f core.FieldView) float64 {
	if f.Channels() < 2 {
		return 0
	}
	size := f.Size()
	var m float64
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			m = math.Max(m, math.Hypot(float64(f.At(x, y, 0)), float64(f.At(x, y, 1))))
		}
	}
	return m
}

// Luminance returns the Rec. 601 brightness of an RGB triple, clamped to
// [0, 1].
func Luminance(r, g, b float64) float64 {
	l := 0.299*r + 0.587*g + 0.114*b
	return math.Min(math.Max(l, 0), 1)
}
