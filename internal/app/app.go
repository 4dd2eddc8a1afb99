//go:build ebiten

package app

import (
	"log"

	"fluidsim/internal/core"
	"fluidsim/internal/render"
	"fluidsim/internal/sims/fluid"
	"fluidsim/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keyActions = map[ebiten.Key]Action{
	ebiten.KeySpace: ActionTogglePause,
	ebiten.KeyR:     ActionReset,
	ebiten.KeyS:     ActionReseed,
	ebiten.KeyB:     ActionBurst,
	ebiten.KeyN:     ActionNoise,
	ebiten.KeyO:     ActionObstacle,
	ebiten.KeyV:     ActionNextField,
	ebiten.KeyL:     ActionReloadParams,
	ebiten.KeyI:     ActionSeedImage,
}

// Game adapts a fluid simulation to the ebiten.Game interface.
type Game struct {
	ctl      *Controller
	sim      *fluid.Simulation
	painter  *render.FieldPainter
	overlay  *ui.Overlay
	hud      *ui.HUD
	pointers *PointerTracker
	log      *log.Logger

	view    Viewport
	pending Viewport
}

// New constructs a Game for the provided simulation.
func New(sim *fluid.Simulation, cfg *Config, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	size := sim.DyeSize()
	vp := sim.Viewport()
	hudWidth := 0
	if cfg != nil {
		hudWidth = cfg.HUDWidth
	}
	return &Game{
		ctl:      NewController(sim, cfg, logger),
		sim:      sim,
		painter:  render.NewFieldPainter(size.W, size.H),
		overlay:  ui.NewOverlay(sim),
		hud:      ui.NewHUD(sim, hudWidth),
		pointers: NewPointerTracker(),
		log:      logger,
		view:     Viewport{W: vp.W, H: vp.H},
		pending:  Viewport{W: vp.W, H: vp.H},
	}
}

// WindowSize is the outer window size for the simulation viewport plus HUD.
func (g *Game) WindowSize() (int, int) {
	return g.view.W + g.hud.Width(), g.view.H
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.pending != g.view {
		if err := g.sim.Resize(g.pending.W, g.pending.H); err != nil {
			g.log.Printf("resize %dx%d: %v", g.pending.W, g.pending.H, err)
		}
		g.view = g.pending
	}
	for key, action := range keyActions {
		if inpututil.IsKeyJustPressed(key) {
			if err := g.ctl.Do(action); err != nil {
				g.log.Printf("%v: %v", action, err)
			}
		}
	}
	g.overlay.Update()

	overPanel := g.hud.Update(g.view.W)
	for _, s := range g.pointers.Frame(g.view, g.contacts(overPanel)) {
		g.sim.UpdatePointer(s)
	}
	if err := g.sim.Tick(); err != nil {
		return err
	}
	g.hud.SetStatus(StatusLines(g.sim.Stats(), g.ctl.Field(), g.sim.Running())...)
	return nil
}

func (g *Game) contacts(overPanel bool) []Contact {
	var out []Contact
	if !overPanel && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		out = append(out, Contact{ID: core.MouseID, X: x, Y: y})
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		out = append(out, Contact{ID: int(id), X: x, Y: y})
	}
	return out
}

// Draw renders the selected field, the overlay and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	name := g.ctl.Field()
	view, err := g.sim.Field(name)
	if err == nil {
		g.painter.Blit(screen, name, view, g.view.W, g.view.H)
	}
	g.overlay.Draw(screen, g.view.W, g.view.H)
	g.hud.Draw(screen, g.view.W, g.view.H)
}

// Layout tracks the window size; the grids follow on the next Update.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := outsideWidth - g.hud.Width()
	if w > 0 && outsideHeight > 0 {
		g.pending = Viewport{W: w, H: outsideHeight}
	}
	return outsideWidth, outsideHeight
}
