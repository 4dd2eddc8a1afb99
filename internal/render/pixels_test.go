package render

import (
	"image/color"
	"testing"

	"fluidsim/internal/core"
)

func newField(t *testing.T, w, h, c int) *core.Field {
	t.Helper()
	f, err := core.Allocate(core.Size{W: w, H: h}, c)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return f
}

func TestFillDyeFlipsRows(t *testing.T) {
	f := newField(t, 2, 2, 3)
	f.Set(0, 0, 0, 1)   // bottom-left red
	f.Set(1, 1, 2, 0.5) // top-right half blue
	f.Set(1, 0, 1, 7)   // clamped
	buf := make([]byte, 4*4)
	FillDyeRGBA(buf, f.View())

	px := func(x, y int) [4]byte {
		i := (y*2 + x) * 4
		return [4]byte{buf[i], buf[i+1], buf[i+2], buf[i+3]}
	}
	if got := px(0, 1); got != [4]byte{255, 0, 0, 255} {
		t.Fatalf("bottom-left pixel = %v", got)
	}
	if got := px(1, 0); got != [4]byte{0, 0, 128, 255} {
		t.Fatalf("top-right pixel = %v", got)
	}
	if got := px(1, 1); got[1] != 255 {
		t.Fatalf("overbright green = %v", got)
	}
}

func TestFillScalarUsesPaletteEnds(t *testing.T) {
	f := newField(t, 3, 1, 1)
	f.Set(0, 0, 0, -5)
	f.Set(1, 0, 0, 0)
	f.Set(2, 0, 0, 5)
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}, {B: 3, A: 255}}
	buf := make([]byte, 4*3)
	FillScalarRGBA(buf, f.View(), 0, -1, 1, palette)
	if buf[0] != 1 || buf[5] != 2 || buf[10] != 3 {
		t.Fatalf("buf = %v", buf)
	}
}

func TestFillSpeed(t *testing.T) {
	f := newField(t, 2, 1, 2)
	f.Set(1, 0, 0, 3)
	f.Set(1, 0, 1, 4)
	palette := Palette("turbo", 16)
	buf := make([]byte, 4*2)
	FillSpeedRGBA(buf, f.View(), 5, palette)
	if got := (color.RGBA{buf[0], buf[1], buf[2], buf[3]}); got != palette[0] {
		t.Fatalf("still cell = %v, want %v", got, palette[0])
	}
	if got := (color.RGBA{buf[4], buf[5], buf[6], buf[7]}); got != palette[15] {
		t.Fatalf("fast cell = %v, want %v", got, palette[15])
	}
}

func TestPalettes(t *testing.T) {
	for _, name := range []string{"viridis", "inferno", "turbo", "rdbu", "sinebow", "unknown"} {
		p := Palette(name, 8)
		if len(p) != 8 {
			t.Fatalf("%s: %d colours", name, len(p))
		}
		// Sinebow wraps around, so the ends may match; the middle never does.
		if p[0] == p[4] {
			t.Fatalf("%s: flat palette", name)
		}
	}
}

func TestFillHandlesEveryField(t *testing.T) {
	palettes := DefaultPalettes()
	scalar := newField(t, 4, 4, 1)
	scalar.Set(1, 1, 0, -2)
	scalar.Set(2, 2, 0, 3)
	vel := newField(t, 4, 4, 2)
	vel.Set(0, 0, 0, 1)
	dye := newField(t, 4, 4, 3)
	cases := map[string]*core.Field{
		"dye": dye, "velocity": vel, "temperature": scalar,
		"pressure": scalar, "divergence": scalar, "curl": scalar,
	}
	for name, f := range cases {
		buf := make([]byte, 4*16)
		Fill(buf, name, f.View(), palettes)
		for i := 3; i < len(buf); i += 4 {
			if buf[i] != 255 {
				t.Fatalf("%s: pixel %d not opaque", name, i/4)
			}
		}
	}
}

func TestLuminance(t *testing.T) {
	if l := Luminance(1, 1, 1); l < 0.999 || l > 1 {
		t.Fatalf("white luminance = %v", l)
	}
	if l := Luminance(-1, 0, 0); l != 0 {
		t.Fatalf("negative luminance = %v", l)
	}
	if l := Luminance(0, 1, 0); l != 0.587 {
		t.Fatalf("green luminance = %v", l)
	}
}
