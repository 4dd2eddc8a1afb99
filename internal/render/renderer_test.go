//go:build ebiten

package render

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestBlitFollowsFieldSize(t *testing.T) {
	fp := NewFieldPainter(4, 4)
	dye := newField(t, 3, 2, 3)
	dye.Fill(0.5, 0.25, 1)
	dst := ebiten.NewImage(30, 20)

	// The upload buffer must match the new field exactly or WritePixels panics.
	fp.Blit(dst, "dye", dye.View(), 30, 20)
	if w, h := fp.Size(); w != 3 || h != 2 {
		t.Fatalf("painter size = %dx%d, want 3x2", w, h)
	}
	if len(fp.buf) != 4*3*2 {
		t.Fatalf("buffer = %d bytes", len(fp.buf))
	}
}
