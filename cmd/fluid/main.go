//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"fluidsim/internal/app"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	sim, err := cfg.Launch(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(sim, cfg, log.Default())
	w, h := game.WindowSize()

	ebiten.SetWindowTitle("fluidsim - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
