package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"

	"fluidsim/internal/app"
	"fluidsim/internal/term"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	logPath := flag.String("log", "", "write logs here instead of discarding them")
	flag.Parse()

	// The terminal owns stdout while running.
	logger := log.New(io.Discard, "", log.LstdFlags)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}
	log.SetOutput(logger.Writer())

	sim, err := cfg.Launch(flag.CommandLine)
	if err != nil {
		log.New(os.Stderr, "", 0).Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctl := app.NewController(sim, cfg, logger)
	if err := term.New(ctl, cfg.TPS, logger).Run(ctx); err != nil {
		log.New(os.Stderr, "", 0).Fatal(err)
	}
}
