//go:build ebiten

package render

import (
	"image/color"

	"fluidsim/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
)

// FieldPainter uploads one field into an RGBA image and stretches it over a
// screen rectangle.
type FieldPainter struct {
	w, h     int
	img      *ebiten.Image
	buf      []byte
	palettes map[string][]color.RGBA
}

// NewFieldPainter allocates a painter for a grid of size w*h.
func NewFieldPainter(w, h int) *FieldPainter {
	fp := &FieldPainter{palettes: DefaultPalettes()}
	fp.resize(w, h)
	return fp
}

func (fp *FieldPainter) resize(w, h int) {
	fp.w, fp.h = w, h
	fp.buf = make([]byte, 4*w*h)
	fp.img = ebiten.NewImage(w, h)
}

// Blit renders the named field into a viewW by viewH rectangle at the origin
// of dst. The painter follows the field if its resolution changed.
func (fp *FieldPainter) Blit(dst *ebiten.Image, name string, f core.FieldView, viewW, viewH int) {
	if !f.Valid() {
		return
	}
	size := f.Size()
	if size.W != fp.w || size.H != fp.h {
		fp.resize(size.W, size.H)
	}
	Fill(fp.buf, name, f, fp.palettes)
	fp.img.WritePixels(fp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(viewW)/float64(fp.w), float64(viewH)/float64(fp.h))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(fp.img, op)
}

// Size returns the dimensions of the underlying image.
func (fp *FieldPainter) Size() (int, int) { return fp.w, fp.h }
