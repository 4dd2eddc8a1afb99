package term

import (
	"context"
	"log"
	"strings"
	"time"

	"fluidsim/internal/app"
	"fluidsim/internal/core"
	"fluidsim/internal/sims/fluid"

	"github.com/nsf/termbox-go"
)

const statusRows = 1

// Terminal runs a simulation in the terminal: the dye fills the screen, the
// mouse stirs it and the front-end keys act through ctl.
type Terminal struct {
	ctl      *app.Controller
	sim      *fluid.Simulation
	log      *log.Logger
	tick     time.Duration
	pointers *app.PointerTracker

	w, h  int
	mouse *app.Contact
}

// New binds a terminal front-end to ctl, ticking tps times per second.
func New(ctl *app.Controller, tps int, logger *log.Logger) *Terminal {
	if tps <= 0 {
		tps = 30
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Terminal{
		ctl:      ctl,
		sim:      ctl.Sim(),
		log:      logger,
		tick:     time.Second / time.Duration(tps),
		pointers: app.NewPointerTracker(),
	}
}

// Run takes over the terminal until ctx ends or the user quits.
func (t *Terminal) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	termbox.SetOutputMode(termbox.Output256)
	t.resize(termbox.Size())

	events := make(chan termbox.Event, 64)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				close(events)
				return
			}
			events <- ev
		}
	}()
	defer termbox.Interrupt()

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			quit, err := t.handle(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case <-ticker.C:
			if err := t.frame(); err != nil {
				return err
			}
		}
	}
}

// handle applies one terminal event. It reports true when the user quits.
func (t *Terminal) handle(ev termbox.Event) (bool, error) {
	switch ev.Type {
	case termbox.EventError:
		return true, ev.Err
	case termbox.EventResize:
		t.resize(ev.Width, ev.Height)
	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' || ev.Ch == 'Q' {
			return true, nil
		}
		ch := ev.Ch
		if ev.Key == termbox.KeySpace {
			ch = ' '
		}
		if a, ok := app.KeyAction(ch); ok {
			if err := t.ctl.Do(a); err != nil {
				t.log.Printf("%v: %v", a, err)
			}
		}
	case termbox.EventMouse:
		switch ev.Key {
		case termbox.MouseLeft:
			t.mouse = &app.Contact{ID: core.MouseID, X: ev.MouseX, Y: ev.MouseY - statusRows}
		case termbox.MouseRelease:
			t.mouse = nil
		}
	}
	return false, nil
}

func (t *Terminal) resize(w, h int) {
	t.w, t.h = w, h
	if w <= 0 || h <= statusRows {
		return
	}
	// Terminal cells are about twice as tall as they are wide.
	if err := t.sim.Resize(w, 2*(h-statusRows)); err != nil {
		t.log.Printf("resize %dx%d: %v", w, h, err)
	}
}

func (t *Terminal) frame() error {
	vp := app.Viewport{W: t.w, H: t.h - statusRows}
	var contacts []app.Contact
	if t.mouse != nil {
		contacts = append(contacts, *t.mouse)
	}
	for _, s := range t.pointers.Frame(vp, contacts) {
		t.sim.UpdatePointer(s)
	}
	if err := t.sim.Tick(); err != nil {
		return err
	}
	w, h := termbox.Size()
	if w != t.w || h != t.h {
		t.resize(w, h)
	}
	cells := termbox.CellBuffer()
	if dye, err := t.sim.Field(fluid.FieldDye); err == nil {
		Frame(cells, w, h, statusRows, dye)
	}
	if h > 0 {
		status := StatusLine(app.StatusLines(t.sim.Stats(), fluid.FieldDye, t.sim.Running()))
		Text(cells, w, 0, status, termbox.ColorWhite)
	}
	return termbox.Flush()
}

// StatusLine joins the front-end status lines into one row.
func StatusLine(lines []string) string {
	return strings.Join(lines, " | ")
}
