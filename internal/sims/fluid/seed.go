package fluid

import (
	"fmt"

	"fluidsim/internal/core"

	"github.com/aquilax/go-perlin"
)

const (
	noiseAlpha  = 2
	noiseBeta   = 2
	noiseOctave = 3
	// noiseScale is the number of noise periods across the short side.
	noiseScale = 3
	// noiseSpeed is the peak seeded velocity in sim cells per second.
	noiseSpeed = 60
)

// seedFields clears the grids, fills them according to the seed mode and
// stamps the initial bursts. The same seed always produces the same state.
func (s *Simulation) seedFields(seed int64) error {
	p := s.settings.Snapshot().Params
	s.clearFlow(p)
	s.seed = seed
	s.ticks = 0

	rng := core.NewRNG(seed)
	switch s.cfg.SeedMode {
	case "", SeedZero:
	case SeedNoise:
		s.seedNoise(seed)
	default:
		return fmt.Errorf("seed mode %q: %w", s.cfg.SeedMode, core.ErrInvalidParameter)
	}

	count := s.cfg.InitialSplats
	if count < 0 {
		count = rng.Between(2, 5)
	}
	if count == 0 {
		return nil
	}
	return s.applyEvents(s.forcing.Burst(count, p), p)
}

// seedNoise fills velocity with a smooth Perlin flow and tints the dye by the
// local speed.
func (s *Simulation) seedNoise(seed int64) {
	pu := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed)
	pv := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed+1)
	vel := s.velocity.Current()
	short := float64(min(vel.W, vel.H))
	for y := 0; y < vel.H; y++ {
		ny := float64(y) / short * noiseScale
		for x := 0; x < vel.W; x++ {
			nx := float64(x) / short * noiseScale
			vel.Set(x, y, 0, float32(noiseSpeed*pu.Noise2D(nx, ny)))
			vel.Set(x, y, 1, float32(noiseSpeed*pv.Noise2D(nx, ny)))
		}
	}

	pd := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctave, seed+2)
	dye := s.dye.Current()
	dshort := float64(min(dye.W, dye.H))
	for y := 0; y < dye.H; y++ {
		ny := float64(y) / dshort * noiseScale
		for x := 0; x < dye.W; x++ {
			nx := float64(x) / dshort * noiseScale
			v := float32(0.5 + pd.Noise2D(nx, ny))
			if v < 0 {
				v = 0
			}
			dye.Set(x, y, 0, 0.15*v)
			dye.Set(x, y, 1, 0.05*v)
			dye.Set(x, y, 2, 0.2*v)
		}
	}
}
