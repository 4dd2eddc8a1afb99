package fluid

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fluidsim/internal/core"
)

func TestSettingsVersioning(t *testing.T) {
	s, err := NewSettings(DefaultParams())
	if err != nil {
		t.Fatalf("NewSettings: %v", err)
	}
	first := s.Snapshot()
	if first.Version != 1 {
		t.Fatalf("initial version = %d", first.Version)
	}
	if err := s.Apply(func(p *Params) error { p.Vorticity = 10; return nil }); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	second := s.Snapshot()
	if second.Version != 2 || second.Params.Vorticity != 10 {
		t.Fatalf("after apply: %+v", second)
	}
	if first.Params.Vorticity != DefaultParams().Vorticity {
		t.Fatal("published snapshot was mutated")
	}

	// Unchanged values keep the version.
	if err := s.Apply(func(p *Params) error { p.Vorticity = 10; return nil }); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.Snapshot().Version != 2 {
		t.Fatalf("no-op apply bumped version to %d", s.Snapshot().Version)
	}
}

func TestSettingsRejectInvalidUpdates(t *testing.T) {
	s, _ := NewSettings(DefaultParams())
	bad := []func(*Params){
		func(p *Params) { p.PressureBias = 1.5 },
		func(p *Params) { p.SplatRadius = 0 },
		func(p *Params) { p.PressureIterations = -1 },
		func(p *Params) { p.MaxDt = 0 },
		func(p *Params) { p.Viscosity = -1 },
		func(p *Params) { p.ObstacleX = 2 },
	}
	for i, mutate := range bad {
		err := s.Apply(func(p *Params) error { mutate(p); return nil })
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("case %d: error = %v", i, err)
		}
	}
	if s.Snapshot().Version != 1 || s.Snapshot().Params != DefaultParams() {
		t.Fatal("rejected updates changed the snapshot")
	}
	if _, err := NewSettings(Params{}); err == nil {
		t.Fatal("zero params accepted")
	}
}

func TestSettingsReloadJSON(t *testing.T) {
	s, _ := NewSettings(DefaultParams())
	if err := s.ReloadJSON(strings.NewReader(`{"vorticity": 12.5, "obstacle": true}`)); err != nil {
		t.Fatalf("ReloadJSON: %v", err)
	}
	p := s.Snapshot().Params
	if p.Vorticity != 12.5 || !p.Obstacle || p.PressureIterations != 50 {
		t.Fatalf("reloaded params = %+v", p)
	}
	for _, doc := range []string{`{"vortex": 1}`, `{"pressure_bias": 3}`, `not json`} {
		if err := s.ReloadJSON(strings.NewReader(doc)); err == nil {
			t.Fatalf("ReloadJSON(%q) succeeded", doc)
		}
	}
	if s.Snapshot().Params != p {
		t.Fatal("failed reload changed params")
	}
}

func TestSettingsLoadFile(t *testing.T) {
	s, _ := NewSettings(DefaultParams())
	dir := t.TempDir()
	if ok, err := s.LoadFile(filepath.Join(dir, "missing.json")); ok || err != nil {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}
	path := filepath.Join(dir, "params.json")
	if err := os.WriteFile(path, []byte(`{"pressure_iterations": 20}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err := s.LoadFile(path)
	if !ok || err != nil {
		t.Fatalf("LoadFile: ok=%v err=%v", ok, err)
	}
	if got := s.Snapshot().Params.PressureIterations; got != 20 {
		t.Fatalf("pressure_iterations = %d", got)
	}
}

func TestFromMapOverrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"w":                   "320",
		"h":                   "200",
		"sim_res":             "48",
		"seed":                "99",
		"seed_mode":           "NOISE",
		"backend":             "serial",
		"vorticity":           "7",
		"pressure_iterations": "30",
		"obstacle":            "true",
		"viscosity":           "abc",
		"unknown":             "1",
	})
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("FromMap error = %v", err)
	}
	for _, key := range []string{"viscosity", "unknown"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q does not name %s", err, key)
		}
	}
	if cfg.Width != 320 || cfg.Height != 200 || cfg.SimResolution != 48 || cfg.Seed != 99 {
		t.Fatalf("grid overrides not applied: %+v", cfg)
	}
	if cfg.SeedMode != SeedNoise || cfg.Backend != "serial" {
		t.Fatalf("mode/backend = %q/%q", cfg.SeedMode, cfg.Backend)
	}
	p := cfg.Params
	if p.Vorticity != 7 || p.PressureIterations != 30 || !p.Obstacle {
		t.Fatalf("param overrides not applied: %+v", p)
	}
	if p.Viscosity != DefaultParams().Viscosity {
		t.Fatalf("unparsable viscosity overwrote default: %v", p.Viscosity)
	}
}

func TestApplyMapReportsBadValues(t *testing.T) {
	cases := map[string]string{
		"vorticty":            "30",
		"vorticity":           "lots",
		"pressure_iterations": "1.5",
		"obstacle":            "maybe",
		"w":                   "-3",
		"seed_mode":           "chaos",
		"workers":             "x",
	}
	for key, value := range cases {
		cfg, err := ApplyMap(DefaultConfig(), map[string]string{key: value, "sim_res": "40"})
		if !errors.Is(err, core.ErrInvalidParameter) {
			t.Fatalf("%s=%s: error = %v", key, value, err)
		}
		if cfg.SimResolution != 40 {
			t.Fatalf("%s=%s: valid pair dropped alongside the bad one", key, value)
		}
	}
	if _, err := ApplyMap(DefaultConfig(), nil); err != nil {
		t.Fatalf("nil map: %v", err)
	}
	if _, err := NewPreset("ink", map[string]string{"vorticty": "30"}); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("NewPreset with a typo: %v", err)
	}
}

func TestSimulationParameters(t *testing.T) {
	s := newSim(t, testConfig())
	snap := s.Parameters()
	if p, ok := snap.Lookup("pressure_iterations"); !ok || p.Value != "50" {
		t.Fatalf("pressure_iterations = %+v %v", p, ok)
	}
	if p, ok := snap.Lookup("backend"); !ok || p.Value != "serial" {
		t.Fatalf("backend = %+v %v", p, ok)
	}

	if !s.SetIntParameter("pressure_iterations", 20) {
		t.Fatal("SetIntParameter rejected a valid value")
	}
	if s.SetFloatParameter("pressure_bias", 2) {
		t.Fatal("SetFloatParameter accepted an out-of-range value")
	}
	if s.SetFloatParameter("pressure_iterations", 3) {
		t.Fatal("SetFloatParameter accepted an int key")
	}
	if !s.SetBoolParameter("obstacle", true) {
		t.Fatal("SetBoolParameter rejected obstacle")
	}
	if err := s.SetParameter("vorticity", "15"); err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if err := s.SetParameter("nope", "1"); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("unknown key error = %v", err)
	}

	next := s.Parameters()
	if next.Version <= snap.Version {
		t.Fatalf("version %d did not advance past %d", next.Version, snap.Version)
	}
	if p, _ := next.Lookup("pressure_iterations"); p.Value != "20" {
		t.Fatalf("pressure_iterations = %q", p.Value)
	}
	if p, _ := next.Lookup("vorticity"); p.Value != "15" {
		t.Fatalf("vorticity = %q", p.Value)
	}
}

func TestParameterControlsAreBounded(t *testing.T) {
	s := newSim(t, testConfig())
	controls := s.ParameterControls()
	if len(controls) == 0 {
		t.Fatal("no HUD controls")
	}
	p := s.Params()
	for _, c := range controls {
		if !c.HasMin || c.Step <= 0 {
			t.Fatalf("control %q missing bounds: %+v", c.Key, c)
		}
		def, ok := lookupParam(c.Key)
		if !ok {
			t.Fatalf("control %q has no table entry", c.Key)
		}
		var v float64
		switch {
		case def.f != nil:
			v = *def.f(&p)
		case def.i != nil:
			v = float64(*def.i(&p))
		}
		if c.Clamp(v) != v {
			t.Fatalf("default %s=%v outside control bounds", c.Key, v)
		}
	}
}
