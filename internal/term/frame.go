// Package term draws the dye field as coloured ASCII art in a terminal.
package term

import (
	"math"

	"fluidsim/internal/core"
	"fluidsim/internal/render"

	"github.com/nsf/termbox-go"
)

// Ramp orders glyphs from empty to dense.
const Ramp = " .:-=+*#%@"

// Glyph picks the ramp character for brightness l in [0, 1].
func Glyph(l float64) rune {
	if !(l > 0) {
		return rune(Ramp[0])
	}
	i := int(math.Round(l * float64(len(Ramp)-1)))
	if i >= len(Ramp) {
		i = len(Ramp) - 1
	}
	return rune(Ramp[i])
}

// Color256 maps an RGB triple in [0, 1] onto the xterm 6x6x6 colour cube as
// a termbox attribute for Output256 mode.
func Color256(r, g, b float64) termbox.Attribute {
	q := func(v float64) int {
		if !(v > 0) {
			return 0
		}
		if v >= 1 {
			return 5
		}
		return int(math.Round(v * 5))
	}
	return termbox.Attribute(16+36*q(r)+6*q(g)+q(b)) + 1
}

// Frame fills cells, a w by h row-major buffer with row 0 at the top, from
// the dye field. The first statusRows rows are left untouched.
func Frame(cells []termbox.Cell, w, h, statusRows int, dye core.FieldView) {
	if !dye.Valid() || w <= 0 || h <= statusRows || len(cells) < w*h {
		return
	}
	size := dye.Size()
	rows := h - statusRows
	for ty := 0; ty < rows; ty++ {
		gy := toGrid(rows-1-ty, rows, size.H)
		for tx := 0; tx < w; tx++ {
			gx := toGrid(tx, w, size.W)
			var rgb [3]float64
			for c := 0; c < 3 && c < dye.Channels(); c++ {
				rgb[c] = float64(dye.Sample(gx, gy, c))
			}
			l := render.Luminance(rgb[0], rgb[1], rgb[2])
			cells[(ty+statusRows)*w+tx] = termbox.Cell{
				Ch: Glyph(l),
				Fg: Color256(rgb[0], rgb[1], rgb[2]),
				Bg: termbox.ColorDefault,
			}
		}
	}
}

// toGrid maps terminal cell i of n onto a grid of m cells, matching centres.
func toGrid(i, n, m int) float32 {
	return (float32(i)+0.5)*float32(m)/float32(n) - 0.5
}

// Text writes s into row y of cells, clipped to w columns.
func Text(cells []termbox.Cell, w, y int, s string, fg termbox.Attribute) {
	x := 0
	for _, r := range s {
		if x >= w {
			return
		}
		cells[y*w+x] = termbox.Cell{Ch: r, Fg: fg, Bg: termbox.ColorDefault}
		x++
	}
	for ; x < w; x++ {
		cells[y*w+x] = termbox.Cell{Ch: ' ', Fg: fg, Bg: termbox.ColorDefault}
	}
}
