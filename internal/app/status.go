package app

import (
	"fmt"

	"fluidsim/internal/sims/fluid"
)

// StatusLines formats simulation stats for the HUD and terminal front-ends.
func StatusLines(st fluid.Stats, field string, running bool) []string {
	state := "running"
	if !running {
		state = "paused"
	}
	lines := []string{
		fmt.Sprintf("%s  view: %s", state, field),
		fmt.Sprintf("tick %d  dt %.1fms", st.Tick, st.Dt*1000),
		fmt.Sprintf("|div| %.2e", st.Divergence),
		fmt.Sprintf("p (%.1f, %.1f)", st.Momentum[0], st.Momentum[1]),
		fmt.Sprintf("bursts %d  dropped %d", st.Pending, st.Dropped),
		fmt.Sprintf("params v%d", st.Version),
	}
	if st.Residual > 0 {
		lines = append(lines, fmt.Sprintf("residual %.2e", st.Residual))
	}
	return lines
}
