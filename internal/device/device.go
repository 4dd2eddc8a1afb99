// Package device runs per-cell stage work across rows of a grid. A Processor
// returns only after every row has been processed, so consecutive passes never
// observe partial output.
package device

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Processor fans a row range out to workers and joins before returning.
type Processor interface {
	Name() string
	Rows(h int, fn func(y0, y1 int))
}

// Serial runs every row on the calling goroutine.
type Serial struct{}

func (Serial) Name() string { return "serial" }

func (Serial) Rows(h int, fn func(y0, y1 int)) {
	if h > 0 {
		fn(0, h)
	}
}

// Pool splits rows into bands and runs them on a bounded errgroup.
type Pool struct {
	workers int
	// minRows keeps bands from getting so thin that scheduling dominates.
	minRows int
}

// NewPool returns a pool with the given worker count, or GOMAXPROCS when
// workers <= 0.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers, minRows: 8}
}

func (p *Pool) Name() string { return fmt.Sprintf("pool(%d)", p.workers) }

// Workers reports the configured concurrency.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) Rows(h int, fn func(y0, y1 int)) {
	if h <= 0 {
		return
	}
	bands := p.workers
	if max := (h + p.minRows - 1) / p.minRows; bands > max {
		bands = max
	}
	if bands <= 1 {
		fn(0, h)
		return
	}
	chunk := (h + bands - 1) / bands
	var g errgroup.Group
	g.SetLimit(p.workers)
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		lo, hi := y0, y1
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

// New selects a processor by name. It fails for unknown backends so a
// misconfigured run stops at startup rather than mid-tick.
func New(backend string, workers int) (Processor, error) {
	switch backend {
	case "", "pool", "cpu":
		return NewPool(workers), nil
	case "serial":
		return Serial{}, nil
	default:
		return nil, fmt.Errorf("device: unknown backend %q", backend)
	}
}
