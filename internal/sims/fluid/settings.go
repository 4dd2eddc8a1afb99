package fluid

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable, versioned set of parameters. A tick samples one
// snapshot and uses it for every pass.
type Snapshot struct {
	Version uint64
	Params  Params
}

// Settings publishes parameter snapshots. Readers never block; writers are
// serialised and an update that fails validation leaves the current snapshot
// in place.
type Settings struct {
	mu  sync.Mutex
	cur atomic.Pointer[Snapshot]
}

// NewSettings validates p and publishes it as version 1.
func NewSettings(p Params) (*Settings, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Settings{}
	s.cur.Store(&Snapshot{Version: 1, Params: p})
	return s, nil
}

// Snapshot returns the latest published parameters.
func (s *Settings) Snapshot() *Snapshot { return s.cur.Load() }

// Apply edits a copy of the current parameters and publishes it if fn and
// validation both succeed.
func (s *Settings) Apply(fn func(*Params) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.cur.Load()
	next := prev.Params
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if next == prev.Params {
		return nil
	}
	s.cur.Store(&Snapshot{Version: prev.Version + 1, Params: next})
	return nil
}

// Replace publishes p wholesale.
func (s *Settings) Replace(p Params) error {
	return s.Apply(func(dst *Params) error {
		*dst = p
		return nil
	})
}

// ReloadJSON decodes a JSON object over the current parameters. Keys that are
// absent keep their current values.
func (s *Settings) ReloadJSON(r io.Reader) error {
	return s.Apply(func(p *Params) error {
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
		return nil
	})
}

// LoadFile reloads parameters from a JSON file. A missing file is not an
// error; the current snapshot stays in effect.
func (s *Settings) LoadFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := s.ReloadJSON(f); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}
