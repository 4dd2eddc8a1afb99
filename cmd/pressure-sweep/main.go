// Command pressure-sweep measures how the pressure solver settings trade
// divergence against time on a fixed splat scenario.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"fluidsim/internal/sims/fluid"
)

type paramSet struct {
	iterations int
	bias       float64
}

func (p paramSet) String() string {
	return fmt.Sprintf("iters=%d bias=%.2f", p.iterations, p.bias)
}

type scenarioResult struct {
	params     paramSet
	meanDiv    float64
	peakDiv    float64
	residual   float64
	perStep    time.Duration
	finalSpeed float64
	err        error
}

func main() {
	steps := flag.Int("steps", 120, "ticks to simulate per scenario")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	res := flag.Int("sim_res", 96, "velocity grid resolution")
	splats := flag.Int("splats", 8, "random splats stamped at reset")
	flag.Parse()

	base := fluid.DefaultConfig()
	base.Width, base.Height = 960, 540
	base.SimResolution = *res
	base.DyeResolution = *res
	base.InitialSplats = *splats
	base.Backend = "serial"
	base.Params.DebugResidual = true
	base.Logger = log.New(io.Discard, "", 0)

	var sets []paramSet
	for _, iters := range []int{5, 10, 20, 40, 80} {
		for _, bias := range []float64{0, 0.4, 0.8, 1} {
			sets = append(sets, paramSet{iterations: iters, bias: bias})
		}
	}

	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps)\n", len(sets), *workers, *steps)

	jobs := make(chan paramSet)
	results := make(chan scenarioResult)
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for params := range jobs {
				results <- runScenario(base, params, *steps)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, params := range sets {
			jobs <- params
		}
		close(jobs)
	}()

	start := time.Now()
	var all []scenarioResult
	for res := range results {
		if res.err != nil {
			fmt.Printf("%s failed: %v\n", res.params, res.err)
			continue
		}
		all = append(all, res)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].meanDiv < all[j].meanDiv })
	fmt.Printf("\nResults by mean |div| (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for i, res := range all {
		fmt.Printf("%2d) mean|div|=%.3e peak=%.3e residual=%.3e step=%s speed=%.2f %s\n",
			i+1, res.meanDiv, res.peakDiv, res.residual, res.perStep.Round(time.Microsecond), res.finalSpeed, res.params)
	}
	if best := fastestUnder(all, 2*minDiv(all)); best != nil {
		fmt.Printf("\nFastest within 2x of the best divergence: %s (%s/step)\n", best.params, best.perStep.Round(time.Microsecond))
	}
}

// runScenario resets a simulation with the shared seed and steps it at a fixed
// dt, sampling the divergence left by every projection.
func runScenario(base fluid.Config, params paramSet, steps int) scenarioResult {
	cfg := base
	cfg.Params.PressureIterations = params.iterations
	cfg.Params.PressureBias = params.bias
	out := scenarioResult{params: params}

	sim, err := fluid.New(cfg)
	if err != nil {
		out.err = err
		return out
	}
	dt := cfg.Params.MaxDt
	start := time.Now()
	var sum float64
	for i := 0; i < steps; i++ {
		if err := sim.Step(dt); err != nil {
			out.err = err
			return out
		}
		st := sim.Stats()
		sum += st.Projected
		if st.Projected > out.peakDiv {
			out.peakDiv = st.Projected
		}
		out.residual = st.Residual
	}
	if steps > 0 {
		out.meanDiv = sum / float64(steps)
		out.perStep = time.Since(start) / time.Duration(steps)
	}
	if vel, err := sim.Field(fluid.FieldVelocity); err == nil {
		lo, hi := fluid.ChannelRange(vel, 0)
		out.finalSpeed = max(-lo, hi)
	}
	return out
}

func minDiv(all []scenarioResult) float64 {
	if len(all) == 0 {
		return 0
	}
	m := all[0].meanDiv
	for _, r := range all[1:] {
		m = min(m, r.meanDiv)
	}
	return m
}

func fastestUnder(all []scenarioResult, limit float64) *scenarioResult {
	var best *scenarioResult
	for i := range all {
		r := &all[i]
		if r.meanDiv > limit {
			continue
		}
		if best == nil || r.perStep < best.perStep {
			best = r
		}
	}
	return best
}
