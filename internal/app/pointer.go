package app

import (
	"sort"

	"fluidsim/internal/core"
)

// Viewport maps window pixels onto the normalized domain.
type Viewport struct {
	W, H int
}

// Normalize converts pixel (x, y), y down, into domain coordinates with y up.
// inside reports whether the pixel lies within the viewport.
func (v Viewport) Normalize(x, y int) (nx, ny float64, inside bool) {
	if v.W <= 0 || v.H <= 0 {
		return 0, 0, false
	}
	nx = (float64(x) + 0.5) / float64(v.W)
	ny = 1 - (float64(y)+0.5)/float64(v.H)
	inside = x >= 0 && y >= 0 && x < v.W && y < v.H
	return nx, ny, inside
}

// Contact is one raw pointer reading in window pixels.
type Contact struct {
	ID   int
	X, Y int
}

// PointerTracker turns per-frame contact lists into pointer samples. Pointers
// that vanish from the list produce a release sample.
type PointerTracker struct {
	last map[int]core.PointerSample
}

func NewPointerTracker() *PointerTracker {
	return &PointerTracker{last: map[int]core.PointerSample{}}
}

// Frame reports the samples for the contacts held down this frame. New
// contacts outside the viewport are ignored; contacts that started inside keep
// tracking when dragged out.
func (t *PointerTracker) Frame(vp Viewport, contacts []Contact) []core.PointerSample {
	var out []core.PointerSample
	seen := make(map[int]bool, len(contacts))
	for _, c := range contacts {
		nx, ny, inside := vp.Normalize(c.X, c.Y)
		prev, held := t.last[c.ID]
		if !held && !inside {
			continue
		}
		seen[c.ID] = true
		s := core.PointerSample{ID: c.ID, X: nx, Y: ny, Down: true}
		s.Moved = held && (prev.X != nx || prev.Y != ny)
		t.last[c.ID] = s
		out = append(out, s)
	}
	var released []int
	for id := range t.last {
		if !seen[id] {
			released = append(released, id)
		}
	}
	sort.Ints(released)
	for _, id := range released {
		s := t.last[id]
		delete(t.last, id)
		out = append(out, core.PointerSample{ID: id, X: s.X, Y: s.Y})
	}
	return out
}
