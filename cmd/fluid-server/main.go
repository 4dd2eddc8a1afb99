package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"fluidsim/internal/app"
	"fluidsim/internal/remote"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	addr := flag.String("addr", ":8080", "listen address")
	statsEvery := flag.Duration("stats", time.Second, "stats broadcast interval")
	flag.Parse()

	sim, err := cfg.Launch(flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	hub := remote.NewHub(app.NewController(sim, cfg, log.Default()), log.Default())

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/params", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sim.Settings().Snapshot())
	})
	srv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	tps := max(cfg.TPS, 1)
	g.Go(func() error {
		return hub.Run(ctx, time.Second/time.Duration(tps), *statsEvery)
	})
	g.Go(func() error {
		log.Printf("fluidsim: %s on %s (ws://%s/ws)", sim.Name(), *addr, *addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
