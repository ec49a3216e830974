// Package game runs a skirmish between fleets of crafts: it spawns ships into
// an ECS world, steers them, turns weapon shots into hits and feeds telemetry.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"go.opentelemetry.io/otel/metric"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/craft"
	"github.com/pthm-cable/hexcraft/telemetry"
)

// Ship is the ECS component binding an entity to its craft.
type Ship struct {
	ID     int
	Layout string // Blueprint name, or "procedural"
	Craft  *craft.Craft
	Target int // ID of the foe being chased, -1 if none
}

// Options configures a skirmish run.
type Options struct {
	Seed      int64
	OutputDir string // Empty disables CSV output
	LogStats  bool

	// Archive receives the result and craft lifetimes on Close. Optional.
	Archive *telemetry.Archive
	// MeterProvider receives combat metrics. Nil uses the global provider.
	MeterProvider metric.MeterProvider
}

// Skirmish holds the complete state of one engagement.
type Skirmish struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	shipMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Rotation,
		Ship,
	]
	shipFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Rotation,
		Ship,
	]

	// State
	seed     int64
	tick     int32
	nextID   int
	holdFire bool
	friends  int
	foes     int

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	lifetime  *telemetry.LifetimeTracker
	output    *telemetry.OutputManager
	metrics   *telemetry.Metrics
	archive   *telemetry.Archive
	finished  []telemetry.LifetimeRow
	logStats  bool
	logger    *slog.Logger

	// Worker pool for craft updates
	parallel *parallelState

	// Reused per tick
	contacts []shipSnapshot
	grid     *contactGrid
	nearby   []int
}

// NewSkirmish creates the world and spawns every fleet in cfg.
func NewSkirmish(cfg *config.Config, opts Options) (*Skirmish, error) {
	world := ecs.NewWorld()

	s := &Skirmish{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		shipMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Rotation,
			Ship,
		](world),
		shipFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Rotation,
			Ship,
		](world),
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.DT32),
		perf:      telemetry.NewPerfCollector(60),
		lifetime:  telemetry.NewLifetimeTracker(),
		parallel:  newParallelState(),
		grid: newContactGrid(
			float32(cfg.Simulation.ArenaWidth),
			float32(cfg.Simulation.ArenaHeight),
			float32(cfg.Simulation.EngageRange),
		),
		archive:   opts.Archive,
		seed:      opts.Seed,
		logStats:  opts.LogStats,
		logger:    slog.Default().With("seed", opts.Seed),
	}

	metrics, err := telemetry.NewMetrics(opts.MeterProvider)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.metrics.Close()
		return nil, err
	}
	s.output = output
	if err := s.output.WriteConfig(cfg); err != nil {
		s.output.Close()
		s.metrics.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if err := s.spawnFleets(); err != nil {
		s.output.Close()
		s.metrics.Close()
		return nil, err
	}
	s.metrics.SetFleets(s.friends, s.foes)
	return s, nil
}

// Step runs a single tick of the skirmish.
func (s *Skirmish) Step() {
	s.perf.StartTick()

	// 1. Chase the nearest foe and move
	s.perf.StartPhase(telemetry.PhaseSteering)
	s.updateSteering()

	// 2. Connectivity, power and cell steps for every craft
	s.perf.StartPhase(telemetry.PhaseCraftUpdate)
	s.updateCrafts()

	// 3. Turn shots into hits
	s.perf.StartPhase(telemetry.PhaseWeapons)
	s.updateWeapons()

	// 4. Remove destroyed crafts
	s.perf.StartPhase(telemetry.PhaseCleanup)
	s.cleanupDestroyed()

	s.tick++

	// 5. Stats window
	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.EndTick()
}

// Tick returns the number of steps run.
func (s *Skirmish) Tick() int32 {
	return s.tick
}

// Done reports whether one side has no ships left.
func (s *Skirmish) Done() bool {
	return s.friends == 0 || s.foes == 0
}

// SetHoldFire stops or resumes fire for the friendly fleet.
func (s *Skirmish) SetHoldFire(hold bool) {
	s.holdFire = hold
}

// HoldFire reports whether the friendly fleet is holding fire.
func (s *Skirmish) HoldFire() bool {
	return s.holdFire
}

// Fleets returns the number of surviving friends and foes.
func (s *Skirmish) Fleets() (friends, foes int) {
	return s.friends, s.foes
}

// RecordFrame forwards frame timing to the perf collector in windowed mode.
func (s *Skirmish) RecordFrame() {
	s.perf.RecordFrame()
}

// PerfStats returns the rolling step timings.
func (s *Skirmish) PerfStats() telemetry.PerfStats {
	return s.perf.Stats()
}

// Close records the surviving crafts, archives the result and closes
// output files. It is safe to call more than once.
func (s *Skirmish) Close() error {
	s.parallel.stopWorkers()
	if s.metrics == nil {
		return nil
	}

	query := s.shipFilter.Query()
	for query.Next() {
		_, _, _, ship := query.Get()
		s.lifetime.UpdateSurvivalTime(ship.ID, s.tick, s.cfg.Derived.DT32)
		if ls := s.lifetime.Remove(ship.ID); ls != nil {
			s.finishCraft(ls, false)
		}
	}

	var firstErr error
	if s.archive != nil {
		if err := s.archive.Save(context.Background(), s.archiveRecord()); err != nil {
			s.logger.Error("failed to archive skirmish", "error", err)
			firstErr = err
		}
	}
	if err := s.metrics.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.output.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	s.metrics = nil
	return firstErr
}

// finishCraft writes a craft's lifetime row and keeps it for the archive.
func (s *Skirmish) finishCraft(ls *telemetry.LifetimeStats, destroyed bool) {
	row := ls.ToRow(destroyed)
	s.finished = append(s.finished, row)
	if err := s.output.WriteCraft(row); err != nil {
		s.logger.Error("failed to write craft", "error", err)
	}
}

func (s *Skirmish) archiveRecord() *telemetry.SkirmishRecord {
	r := s.Outcome()
	rec := &telemetry.SkirmishRecord{
		Seed:            s.seed,
		Ticks:           r.Ticks,
		Friends:         r.Friends,
		Foes:            r.Foes,
		FriendViability: r.FriendViability,
		FoeViability:    r.FoeViability,
		Winner:          telemetry.WinnerOf(r.Friends, r.Foes),
		Crafts:          make([]telemetry.CraftRecord, len(s.finished)),
	}
	for i, row := range s.finished {
		rec.Crafts[i] = telemetry.NewCraftRecord(row)
	}
	return rec
}
