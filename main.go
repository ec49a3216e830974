package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/game"
	"github.com/pthm-cable/hexcraft/spectate"
	"github.com/pthm-cable/hexcraft/telemetry"
	"github.com/pthm-cable/hexcraft/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per frame in windowed mode")
	holdFire := flag.Bool("hold-fire", false, "Start with friendly weapons holding fire")
	debug := flag.Bool("debug", false, "Log per-cell and per-craft events")
	archivePath := flag.String("archive", "", "SQLite file to append the result to (empty = disabled)")
	spectateAddr := flag.String("spectate", "", "Serve a websocket frame feed on this address, e.g. :8080")
	spectateEvery := flag.Int("spectate-every", 2, "Ticks between spectator frames")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI override for the stats window
	if *statsWindow > 0 {
		cfg = cfg.Clone()
		cfg.Telemetry.StatsWindow = *statsWindow
		config.Set(cfg)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *archivePath != "" {
		archive, err := telemetry.OpenArchive(*archivePath)
		if err != nil {
			slog.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
		defer archive.Close()
		opts.Archive = archive
	}

	var feed *spectate.Broadcaster
	if *spectateAddr != "" {
		ctx, stop := context.WithCancel(context.Background())
		defer stop()
		hub, err := serveSpectators(ctx, *spectateAddr)
		if err != nil {
			slog.Error("failed to start spectator feed", "error", err)
			os.Exit(1)
		}
		feed = spectate.NewBroadcaster(hub, int32(*spectateEvery))
	}

	var code int
	if *headless {
		code = runHeadless(cfg, opts, int32(*maxTicks), *holdFire, feed)
	} else {
		code = runWindowed(cfg, opts, int32(*maxTicks), *stepsPerUpdate, *holdFire, feed)
	}
	if code != 0 {
		os.Exit(code)
	}
}

// serveSpectators starts the hub and its HTTP listener. Both stop when ctx
// is cancelled.
func serveSpectators(ctx context.Context, addr string) (*spectate.Hub, error) {
	hub := spectate.NewHub(slog.Default())
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return nil, err
	case <-time.After(100 * time.Millisecond):
	}

	go hub.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	slog.Info("spectator feed listening", "addr", addr, "path", "/ws")
	return hub, nil
}

// observe forwards the skirmish to spectators, if any.
func observe(feed *spectate.Broadcaster, s *game.Skirmish) {
	if feed == nil {
		return
	}
	if err := feed.Observe(s); err != nil {
		slog.Warn("failed to publish frame", "error", err)
	}
}

// runHeadless plays the skirmish to completion without raylib.
// With a spectator feed the simulation is paced to real time.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int32, holdFire bool, feed *spectate.Broadcaster) int {
	s, err := game.NewSkirmish(cfg, opts)
	if err != nil {
		slog.Error("failed to start skirmish", "error", err)
		return 1
	}
	s.SetHoldFire(holdFire)

	slog.Info("starting headless skirmish",
		"seed", opts.Seed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
	)

	var result game.Result
	if feed == nil {
		result = s.Run(maxTicks)
	} else {
		ticker := time.NewTicker(time.Duration(cfg.Simulation.DT * float64(time.Second)))
		for !s.Done() && (maxTicks <= 0 || s.Tick() < maxTicks) {
			<-ticker.C
			s.Step()
			observe(feed, s)
		}
		ticker.Stop()
		result = s.Outcome()
	}
	slog.Info("skirmish finished",
		"ticks", result.Ticks,
		"friends", result.Friends,
		"foes", result.Foes,
		"friend_viability", result.FriendViability,
		"foe_viability", result.FoeViability,
	)

	if err := s.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
		return 1
	}
	return 0
}

// runWindowed shows the skirmish in a raylib window until it is closed.
func runWindowed(cfg *config.Config, opts game.Options, maxTicks int32, steps int, holdFire bool, feed *spectate.Broadcaster) int {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Hexcraft")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	s, err := game.NewSkirmish(cfg, opts)
	if err != nil {
		slog.Error("failed to start skirmish", "error", err)
		return 1
	}
	s.SetHoldFire(holdFire)
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	v := viewer.New(s, cfg, steps)
	for !rl.WindowShouldClose() {
		v.Update()
		observe(feed, s)
		v.Draw()

		if maxTicks > 0 && s.Tick() >= maxTicks {
			break
		}
	}
	return 0
}
