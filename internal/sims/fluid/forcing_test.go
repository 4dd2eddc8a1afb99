package fluid

import (
	"errors"
	"math"
	"testing"

	"fluidsim/internal/core"
)

func press(f *Forcing, id int, x, y float64) {
	f.UpdatePointer(core.PointerSample{ID: id, X: x, Y: y, Down: true})
}

func move(f *Forcing, id int, x, y float64) {
	f.UpdatePointer(core.PointerSample{ID: id, X: x, Y: y, Down: true, Moved: true})
}

func TestBurstsPopMostRecentFirst(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	for _, n := range []int{1, 3, 2} {
		if err := f.RequestSplats(n); err != nil {
			t.Fatalf("RequestSplats(%d): %v", n, err)
		}
	}
	for _, want := range []int{2, 3, 1, 0} {
		if got := len(f.Drain(p)); got != want {
			t.Fatalf("drained %d events, want %d", got, want)
		}
	}
}

func TestRequestSplatsRejectsNonPositive(t *testing.T) {
	f := NewForcing(1)
	for _, n := range []int{0, -4} {
		if err := f.RequestSplats(n); !errors.Is(err, core.ErrInvalidBurstCount) {
			t.Fatalf("RequestSplats(%d) error = %v", n, err)
		}
	}
	if f.PendingBursts() != 0 {
		t.Fatalf("rejected bursts were queued")
	}
}

func TestBurstEventsStayInDomain(t *testing.T) {
	f := NewForcing(9)
	p := DefaultParams()
	for _, e := range f.Burst(50, p) {
		if e.Pos[0] < 0 || e.Pos[0] >= 1 || e.Pos[1] < 0 || e.Pos[1] >= 1 {
			t.Fatalf("burst position %v outside unit square", e.Pos)
		}
		limit := float32(p.BurstForce / 2)
		if math.Abs(float64(e.Delta[0])) > float64(limit) || math.Abs(float64(e.Delta[1])) > float64(limit) {
			t.Fatalf("burst delta %v exceeds %v", e.Delta, limit)
		}
		if e.Color[0]+e.Color[1]+e.Color[2] == 0 {
			t.Fatalf("burst colour is black")
		}
	}
}

func TestPointerMovesAreEdgeTriggered(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	press(f, core.MouseID, 0.5, 0.5)
	if n := len(f.Drain(p)); n != 0 {
		t.Fatalf("press alone produced %d events", n)
	}
	move(f, core.MouseID, 0.6, 0.5)
	events := f.Drain(p)
	if len(events) != 1 {
		t.Fatalf("move produced %d events, want 1", len(events))
	}
	e := events[0]
	wantDx := float32(0.1 * p.SplatForce)
	if math.Abs(float64(e.Delta[0]-wantDx)) > 1e-2 || e.Delta[1] != 0 {
		t.Fatalf("delta = %v, want (%v, 0)", e.Delta, wantDx)
	}
	if e.Pos[0] != 0.6 || e.Pos[1] != 0.5 {
		t.Fatalf("pos = %v", e.Pos)
	}
	if n := len(f.Drain(p)); n != 0 {
		t.Fatalf("second drain produced %d events", n)
	}
}

func TestPointerDeltasAccumulateBetweenDrains(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	press(f, 3, 0.2, 0.2)
	move(f, 3, 0.25, 0.2)
	move(f, 3, 0.3, 0.25)
	events := f.Drain(p)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	d := events[0].Delta.Mul(float32(1 / p.SplatForce))
	if math.Abs(float64(d[0]-0.1)) > 1e-5 || math.Abs(float64(d[1]-0.05)) > 1e-5 {
		t.Fatalf("accumulated delta = %v, want (0.1, 0.05)", d)
	}
}

func TestPointerDeltaAspectScaling(t *testing.T) {
	p := DefaultParams()
	cases := []struct {
		aspect float64
		dx, dy float32
	}{
		{aspect: 2, dx: 0.1, dy: 0.05},
		{aspect: 0.5, dx: 0.05, dy: 0.1},
		{aspect: 1, dx: 0.1, dy: 0.1},
	}
	for _, tc := range cases {
		f := NewForcing(1)
		f.SetAspect(tc.aspect)
		press(f, 1, 0.4, 0.4)
		move(f, 1, 0.5, 0.5)
		d := f.Drain(p)[0].Delta.Mul(float32(1 / p.SplatForce))
		if math.Abs(float64(d[0]-tc.dx)) > 1e-5 || math.Abs(float64(d[1]-tc.dy)) > 1e-5 {
			t.Fatalf("aspect %v: delta = %v, want (%v, %v)", tc.aspect, d, tc.dx, tc.dy)
		}
	}
}

func TestPointerReleaseAndTouches(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	press(f, 1, 0.1, 0.1)
	press(f, 2, 0.9, 0.9)
	move(f, 1, 0.2, 0.1)
	move(f, 2, 0.8, 0.9)
	if n := len(f.Drain(p)); n != 2 {
		t.Fatalf("two touches produced %d events", n)
	}
	f.UpdatePointer(core.PointerSample{ID: 1, X: 0.3, Y: 0.1})
	move(f, 1, 0.4, 0.1)
	events := f.Drain(p)
	if len(events) != 0 {
		t.Fatalf("move right after release should re-baseline, got %d events", len(events))
	}
	// Hover samples for unknown pointers are ignored.
	f.UpdatePointer(core.PointerSample{ID: 7, X: 0.5, Y: 0.5, Moved: true})
	if n := len(f.Drain(p)); n != 0 {
		t.Fatalf("hover produced %d events", n)
	}
}

func TestMalformedPointerSamplesAreDropped(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	press(f, 1, 0.5, 0.5)
	move(f, 1, math.NaN(), 0.5)
	move(f, 1, 0.5, math.Inf(1))
	if got := f.DroppedSamples(); got != 2 {
		t.Fatalf("DroppedSamples = %d, want 2", got)
	}
	if n := len(f.Drain(p)); n != 0 {
		t.Fatalf("malformed samples produced %d events", n)
	}
	// Out-of-range samples are pinned to the domain edge.
	move(f, 1, 1.5, 0.5)
	events := f.Drain(p)
	if len(events) != 1 || events[0].Pos[0] != 1 {
		t.Fatalf("clamped move = %+v", events)
	}
}

func TestAmbientSourceFollowsParams(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	if n := len(f.Drain(p)); n != 0 {
		t.Fatalf("ambient off produced %d events", n)
	}
	p.Ambient = true
	events := f.Drain(p)
	if len(events) != 1 {
		t.Fatalf("ambient on produced %d events", len(events))
	}
	e := events[0]
	if e.Radius != float32(p.AmbientRadius) || e.Delta[1] != float32(p.AmbientVelocity) || e.Heat != float32(p.AmbientHeat) {
		t.Fatalf("ambient event = %+v", e)
	}
}

func TestForcingSeedsAreReproducible(t *testing.T) {
	a, b := NewForcing(5), NewForcing(5)
	p := DefaultParams()
	ea, eb := a.Burst(4, p), b.Burst(4, p)
	for i := range ea {
		if ea[i] != eb[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, ea[i], eb[i])
		}
	}
}

func TestReleasedPointersAreForgotten(t *testing.T) {
	f := NewForcing(1)
	p := DefaultParams()
	for id := 1; id <= 1000; id++ {
		press(f, id, 0.2, 0.2)
		move(f, id, 0.3, 0.2)
		f.UpdatePointer(core.PointerSample{ID: id, X: 0.3, Y: 0.2})
		if n := len(f.Drain(p)); n != 1 {
			t.Fatalf("touch %d: drained %d events, want 1", id, n)
		}
	}
	if n := len(f.pointers); n != 0 {
		t.Fatalf("%d released pointers still tracked", n)
	}

	// A release without pending motion is dropped right away; a held
	// pointer survives.
	press(f, core.MouseID, 0.5, 0.5)
	press(f, 5, 0.5, 0.5)
	f.UpdatePointer(core.PointerSample{ID: 5, X: 0.5, Y: 0.5})
	if len(f.pointers) != 1 || f.pointers[0].id != core.MouseID {
		t.Fatalf("pointers = %+v", f.pointers)
	}
}

func TestHueWheelHasNoRepeatedEnds(t *testing.T) {
	hues := hueWheel(360)
	if len(hues) != 360 {
		t.Fatalf("%d hues", len(hues))
	}
	r0, g0, b0, _ := hues[0].RGBA()
	r1, g1, b1, _ := hues[len(hues)-1].RGBA()
	if r0 == r1 && g0 == g1 && b0 == b1 {
		t.Fatalf("first and last hue match: %v", hues[0])
	}
}
