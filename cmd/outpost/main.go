// Command outpost runs the colony simulation headless: it restores the saved
// world, fast-forwards through time spent offline, then ticks live while
// serving the observation API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/outpost/internal/api"
	"github.com/talgya/outpost/internal/colony"
	"github.com/talgya/outpost/internal/events"
	"github.com/talgya/outpost/internal/persistence"
	"github.com/talgya/outpost/internal/sim"
)

func main() {
	dbPath := flag.String("db", "data/outpost.db", "save database path")
	apiPort := flag.Int("port", 8080, "observation API port")
	autosaveTicks := flag.Int("autosave-ticks", 600, "fixed ticks between autosaves (600 = 30s)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Outpost — colony simulation core")

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		slog.Error("failed to create save directory", "error", err)
		os.Exit(1)
	}
	store, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open save store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("save store opened", "path", *dbPath)

	dispatcher := events.NewDispatcher()
	clock := sim.RealClock{}
	loop := sim.NewLoop(clock, dispatcher)

	col := colony.New(loop.Clock(), dispatcher)
	col.Wire(nil)

	for _, system := range col.Systems() {
		loop.Register(system)
	}

	snap, savedAt, found, err := store.LoadColony()
	if err != nil {
		slog.Error("failed to load save", "error", err)
		os.Exit(1)
	}
	if found {
		col.Restore(snap)
		slog.Info("colony restored", "saved", humanize.Time(savedAt))
		if !savedAt.IsZero() {
			simulated := loop.CatchUp(savedAt)
			if simulated > 0 {
				slog.Info("offline progress applied", "simulated", simulated)
			}
		}
		// Settle heads the replay did not cover (short gaps, beyond-window time).
		col.DrainExpired()
	} else {
		slog.Info("no save found, founding a new colony")
	}

	// Autosave registers after catch-up so the replay itself does not save.
	loop.Register(&autosaver{col: col, store: store, clock: clock, every: *autosaveTicks})

	server := &api.Server{Colony: col, Loop: loop, Clock: loop.Clock(), Port: *apiPort}
	server.Attach(dispatcher)
	server.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop.Run(ctx)

	if err := store.SaveColony(col.Serialize(), clock.Now()); err != nil {
		slog.Error("final save failed", "error", err)
	} else {
		slog.Info("final save written", "tick", loop.Tick())
	}
}

// autosaver persists the colony every N fixed ticks, from the loop goroutine,
// so saves always land on a tick boundary.
type autosaver struct {
	col   *colony.Colony
	store *persistence.Store
	clock sim.Clock
	every int
	n     int
}

func (a *autosaver) Name() string { return "autosave" }

func (a *autosaver) Update(dt float64) {
	a.n++
	if a.n < a.every {
		return
	}
	a.n = 0
	if err := a.store.SaveColony(a.col.Serialize(), a.clock.Now()); err != nil {
		slog.Error("autosave failed", "error", err)
	}
}
