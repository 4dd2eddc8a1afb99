package core

import "sort"

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Sim defines the minimal contract a tick-driven simulation must implement.
type Sim interface {
	Name() string
	Size() Size
	Reset(seed int64) error
	Tick() error
}

// Pausable is implemented by sims whose clock can be stopped between ticks.
type Pausable interface {
	Pause()
	Resume()
	Running() bool
}

// PointerSample is one normalized pointer reading. X grows right and Y grows
// up, both in [0, 1]. The mouse uses ID -1, touches use positive IDs.
type PointerSample struct {
	ID    int
	X, Y  float64
	Down  bool
	Moved bool
}

// MouseID identifies the mouse pointer.
const MouseID = -1

// PointerSink accepts pointer samples from input collaborators.
type PointerSink interface {
	UpdatePointer(PointerSample)
}

// SplatRequester queues bursts of random splats.
type SplatRequester interface {
	RequestSplats(count int) error
}

// FieldSource exposes named read-only fields for display.
type FieldSource interface {
	Field(name string) (FieldView, error)
	FieldNames() []string
}

// Factory constructs a Sim using an optional configuration map.
type Factory func(cfg map[string]string) (Sim, error)

var sims = map[string]Factory{}

// Register adds a simulation factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	sims[name] = f
}

// Sims exposes the registry of available simulation factories.
func Sims() map[string]Factory {
	return sims
}

// SimNames lists registered factories in lexical order.
func SimNames() []string {
	names := make([]string, 0, len(sims))
	for name := range sims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
