package fluid

import (
	"fmt"
	"image/color"
	"math"
	"sync"

	"fluidsim/internal/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mazznoer/colorgrad"
)

// Event is one splat: a normalized position, a velocity delta in sim cells per
// second, a dye colour and a temperature impulse. A zero Radius uses the
// current splat radius.
type Event struct {
	Pos    mgl32.Vec2
	Delta  mgl32.Vec2
	Color  mgl32.Vec3
	Heat   float32
	Radius float32
}

type pointer struct {
	id    int
	pos   mgl32.Vec2
	delta mgl32.Vec2
	down  bool
	moved bool
	color mgl32.Vec3
}

// Forcing collects pointer motion and burst requests from any goroutine and
// turns them into splat events when the orchestrator drains it.
type Forcing struct {
	mu       sync.Mutex
	aspect   float32
	pointers []*pointer
	bursts   []int
	dropped  int
	rng      *core.RNG
	hues     []color.Color
}

// NewForcing returns an empty forcing queue seeded for reproducible colours
// and burst placement.
func NewForcing(seed int64) *Forcing {
	return &Forcing{
		aspect: 1,
		rng:    core.NewRNG(seed),
		hues:   hueWheel(360),
	}
}

// SetAspect records the viewport aspect ratio used to scale pointer deltas.
func (f *Forcing) SetAspect(aspect float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if aspect > 0 && !math.IsInf(aspect, 0) {
		f.aspect = float32(aspect)
	}
}

// Reseed clears all pending input and restarts the random stream.
func (f *Forcing) Reseed(seed int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rng = core.NewRNG(seed)
	f.pointers = nil
	f.bursts = nil
}

// UpdatePointer applies one pointer sample. Samples with non-finite
// coordinates are dropped and the pointer keeps its last good state.
func (f *Forcing) UpdatePointer(s core.PointerSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !finite(s.X) || !finite(s.Y) {
		f.dropped++
		return
	}
	pos := mgl32.Vec2{float32(clamp01(s.X)), float32(clamp01(s.Y))}
	p := f.find(s.ID)
	switch {
	case p == nil && !s.Down:
		return
	case p == nil:
		p = &pointer{id: s.ID}
		f.pointers = append(f.pointers, p)
		fallthrough
	case s.Down && !p.down:
		p.pos = pos
		p.delta = mgl32.Vec2{}
		p.down = true
		p.moved = false
		p.color = f.randomColor()
	case s.Down:
		if !s.Moved && pos == p.pos {
			return
		}
		d := pos.Sub(p.pos)
		p.pos = pos
		if f.aspect < 1 {
			d[0] *= f.aspect
		}
		if f.aspect > 1 {
			d[1] /= f.aspect
		}
		// Motion between drains accumulates so fast producers lose nothing.
		p.delta = p.delta.Add(d)
		p.moved = p.delta[0] != 0 || p.delta[1] != 0
	default:
		p.down = false
		f.prune()
	}
}

// RequestSplats queues a burst of count random splats.
func (f *Forcing) RequestSplats(count int) error {
	if count <= 0 {
		return fmt.Errorf("request %d splats: %w", count, core.ErrInvalidBurstCount)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bursts = append(f.bursts, count)
	return nil
}

// PendingBursts reports how many bursts wait to be drained.
func (f *Forcing) PendingBursts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bursts)
}

// DroppedSamples counts malformed pointer samples seen so far.
func (f *Forcing) DroppedSamples() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

// Drain returns this tick's events: the most recently queued burst, then one
// event per pointer that moved, then the ambient source.
func (f *Forcing) Drain(p Params) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []Event
	if n := len(f.bursts); n > 0 {
		count := f.bursts[n-1]
		f.bursts = f.bursts[:n-1]
		events = append(events, f.burst(count, p)...)
	}
	force := float32(p.SplatForce)
	for _, ptr := range f.pointers {
		if !ptr.moved {
			continue
		}
		events = append(events, Event{
			Pos:   ptr.pos,
			Delta: ptr.delta.Mul(force),
			Color: ptr.color,
			Heat:  float32(p.SplatHeat),
		})
		ptr.moved = false
		ptr.delta = mgl32.Vec2{}
	}
	f.prune()
	if p.Ambient {
		d := float32(p.AmbientDensity)
		events = append(events, Event{
			Pos:    mgl32.Vec2{float32(p.AmbientX), float32(p.AmbientY)},
			Delta:  mgl32.Vec2{0, float32(p.AmbientVelocity)},
			Color:  mgl32.Vec3{d, d, d},
			Heat:   float32(p.AmbientHeat),
			Radius: float32(p.AmbientRadius),
		})
	}
	return events
}

// Burst expands count random splats immediately, bypassing the queue.
func (f *Forcing) Burst(count int, p Params) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.burst(count, p)
}

// burst builds count splats at random positions with random colours boosted
// well above pointer splats.
func (f *Forcing) burst(count int, p Params) []Event {
	events := make([]Event, 0, count)
	force := float32(p.BurstForce)
	for i := 0; i < count; i++ {
		events = append(events, Event{
			Pos:   mgl32.Vec2{f.rng.Float32(), f.rng.Float32()},
			Delta: mgl32.Vec2{force * f.rng.Centered(), force * f.rng.Centered()},
			Color: f.randomColor().Mul(10),
			Heat:  float32(p.SplatHeat),
		})
	}
	return events
}

// hueWheel samples n distinct hues. Sinebow is cyclic, so the closing sample
// repeats the first and is dropped.
func hueWheel(n int) []color.Color {
	return colorgrad.Sinebow().Colors(uint(n + 1))[:n]
}

// randomColor picks a fully saturated hue at 15% brightness.
func (f *Forcing) randomColor() mgl32.Vec3 {
	r, g, b, _ := f.hues[f.rng.IntN(len(f.hues))].RGBA()
	const scale = 0.15 / 0xffff
	return mgl32.Vec3{float32(r) * scale, float32(g) * scale, float32(b) * scale}
}

func (f *Forcing) find(id int) *pointer {
	for _, p := range f.pointers {
		if p.id == id {
			return p
		}
	}
	return nil
}

// prune forgets released pointers once their last motion has been drained.
func (f *Forcing) prune() {
	live := f.pointers[:0]
	for _, p := range f.pointers {
		if p.down || p.moved {
			live = append(live, p)
		}
	}
	clear(f.pointers[len(live):])
	f.pointers = live
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
