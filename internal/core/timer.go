package core

import (
	"sync"
	"time"
)

// Clock turns wall-clock timestamps into bounded simulation time steps.
type Clock struct {
	mu      sync.Mutex
	now     func() time.Time
	prev    time.Time
	primed  bool
	running bool
	maxDt   float64
	lastDt  float64
}

// NewClock constructs a stopped clock that never reports a step longer than
// maxDt seconds. A nil now uses time.Now.
func NewClock(maxDt float64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	c := &Clock{now: now}
	c.SetMaxDt(maxDt)
	return c
}

// SetMaxDt changes the step ceiling. Non-positive values fall back to 1/60s.
func (c *Clock) SetMaxDt(maxDt float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxDt <= 0 {
		maxDt = 1.0 / 60.0
	}
	c.maxDt = maxDt
}

// MaxDt returns the current step ceiling.
func (c *Clock) MaxDt() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxDt
}

// Sample returns min(now - previous, maxDt) and records now. The first sample
// after construction yields 0. A stopped clock always yields 0.
func (c *Clock) Sample() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		c.lastDt = 0
		return 0
	}
	now := c.now()
	if !c.primed {
		c.prev = now
		c.primed = true
		c.lastDt = 0
		return 0
	}
	dt := now.Sub(c.prev).Seconds()
	c.prev = now
	if dt < 0 {
		dt = 0
	}
	if dt > c.maxDt {
		dt = c.maxDt
	}
	c.lastDt = dt
	return dt
}

// LastDt returns the most recent sampled step.
func (c *Clock) LastDt() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDt
}

// Start runs the clock from scratch: the next sample yields 0.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primed = false
	c.running = true
}

// Resume starts the clock and re-baselines the previous timestamp so time
// spent paused is never reported.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prev = c.now()
	c.primed = true
	c.running = true
}

// Pause stops the clock.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Running reports whether the clock is advancing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
