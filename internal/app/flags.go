package app

import (
	"flag"
	"fmt"
	"sort"
	"strings"
)

// Config represents the command-line parameters for the front-ends.
type Config struct {
	Sim      string
	Width    int
	Height   int
	SimRes   int
	DyeRes   int
	TPS      int
	Seed     int64
	SeedMode string
	Splats   int
	Backend  string
	Workers  int

	ParamsFile string
	Image      string
	HUDWidth   int
	Set        KVList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Sim:      "fluid",
		Width:    960,
		Height:   540,
		SimRes:   128,
		DyeRes:   512,
		TPS:      60,
		Seed:     1337,
		SeedMode: "zero",
		Splats:   -1,
		Backend:  "pool",
		HUDWidth: 260,
	}
}

// Bind attaches the configuration to the provided FlagSet. Flags that feed
// the simulation factory are named after their config keys.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "preset to run")
	fs.IntVar(&c.Width, "w", c.Width, "viewport width in pixels")
	fs.IntVar(&c.Height, "h", c.Height, "viewport height in pixels")
	fs.IntVar(&c.SimRes, "sim_res", c.SimRes, "velocity grid resolution along the short side")
	fs.IntVar(&c.DyeRes, "dye_res", c.DyeRes, "dye grid resolution along the short side")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.StringVar(&c.SeedMode, "seed_mode", c.SeedMode, "initial field seeding: zero or noise")
	fs.IntVar(&c.Splats, "initial_splats", c.Splats, "random splats on reset (-1 picks 2-5)")
	fs.StringVar(&c.Backend, "backend", c.Backend, "kernel backend: serial or pool")
	fs.IntVar(&c.Workers, "workers", c.Workers, "worker goroutines for the pool backend (0 = GOMAXPROCS)")
	fs.StringVar(&c.ParamsFile, "params", c.ParamsFile, "JSON parameter file, reloadable at runtime")
	fs.StringVar(&c.Image, "image", c.Image, "image to seed the dye with")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "parameter panel width (0 hides it)")
	fs.Var(&c.Set, "set", "parameter override key=value (repeatable)")
}

var factoryKeys = map[string]bool{
	"w": true, "h": true, "sim_res": true, "dye_res": true, "seed": true,
	"seed_mode": true, "initial_splats": true, "backend": true, "workers": true,
}

// Overrides collects the factory configuration: every factory flag that was
// set explicitly on fs, then every -set pair. Unset flags are left out so a
// preset keeps its own defaults.
func (c *Config) Overrides(fs *flag.FlagSet) map[string]string {
	out := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			if factoryKeys[f.Name] {
				out[f.Name] = f.Value.String()
			}
		})
	}
	for _, kv := range c.Set {
		out[kv.Key] = kv.Value
	}
	return out
}

// KV is one key=value pair.
type KV struct {
	Key   string
	Value string
}

// KVList is a repeatable key=value flag.
type KVList []KV

func (l *KVList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, kv := range *l {
		parts[i] = kv.Key + "=" + kv.Value
	}
	return strings.Join(parts, ",")
}

// Set parses one key=value pair.
func (l *KVList) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	*l = append(*l, KV{Key: key, Value: strings.TrimSpace(value)})
	return nil
}

// Usage lists the registered presets for flag help.
func Usage(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return "presets: " + strings.Join(sorted, ", ")
}
