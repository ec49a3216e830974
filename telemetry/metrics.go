package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
)

const instrumentationName = "github.com/pthm-cable/hexcraft/telemetry"

// Metrics exports combat events as OpenTelemetry instruments. Without an
// installed provider every call is a no-op.
type Metrics struct {
	shots        metric.Int64Counter
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	cellsLost    metric.Int64Counter
	craftsLost   metric.Int64Counter
	damage       metric.Float64Counter
	satisfaction metric.Float64Histogram
	fleetSize    metric.Int64ObservableGauge
	registration metric.Registration

	friends atomic.Int64
	foes    atomic.Int64

	// Combat counters key on the shooter's side ("attacker"), crafts lost on
	// the destroyed craft's side ("victim"), power and fleet size on the
	// owning side ("alignment").
	attacker sideAttrs
	victim   sideAttrs
	owner    sideAttrs
}

type sideAttrs struct {
	friend, foe metric.MeasurementOption
}

func newSideAttrs(key string) sideAttrs {
	return sideAttrs{
		friend: metric.WithAttributes(attribute.String(key, "friend")),
		foe:    metric.WithAttributes(attribute.String(key, "foe")),
	}
}

func (s sideAttrs) of(a components.Alignment) metric.MeasurementOption {
	if a == components.Friend {
		return s.friend
	}
	return s.foe
}

// NewMetrics creates the instruments on provider, or on the global
// provider when nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	m := provider.Meter(instrumentationName)
	mt := &Metrics{
		attacker: newSideAttrs("attacker"),
		victim:   newSideAttrs("victim"),
		owner:    newSideAttrs("alignment"),
	}

	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&mt.shots, "skirmish.shots", "Projectiles released, by attacker side"},
		{&mt.hits, "skirmish.hits", "Shots that damaged a cell, by attacker side"},
		{&mt.misses, "skirmish.misses", "Shots that found no cell, by attacker side"},
		{&mt.cellsLost, "skirmish.cells.lost", "Enemy cells destroyed by hits, by attacker side"},
		{&mt.craftsLost, "skirmish.crafts.lost", "Crafts whose core died, by victim side"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	mt.damage, err = m.Float64Counter(
		"skirmish.damage",
		metric.WithDescription("Damage dealt into shields, armor and hull, by attacker side"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}

	mt.satisfaction, err = m.Float64Histogram(
		"craft.power.satisfaction",
		metric.WithDescription("Fraction of requested power granted per craft update"),
		metric.WithExplicitBucketBoundaries(0, 0.25, 0.5, 0.75, 0.9, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating satisfaction histogram: %w", err)
	}

	mt.fleetSize, err = m.Int64ObservableGauge(
		"skirmish.fleet.size",
		metric.WithDescription("Surviving crafts per side"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fleet gauge: %w", err)
	}
	mt.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.fleetSize, mt.friends.Load(), mt.owner.friend)
			o.ObserveInt64(mt.fleetSize, mt.foes.Load(), mt.owner.foe)
			return nil
		},
		mt.fleetSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering fleet callback: %w", err)
	}

	return mt, nil
}

// Record counts one combat event. ev.Alignment is the shooter's side for
// shots, hits and misses, and the destroyed craft's side for crafts lost.
func (mt *Metrics) Record(ctx context.Context, ev Event) {
	attr := mt.attacker.of(ev.Alignment)
	switch ev.Type {
	case EventShot:
		mt.shots.Add(ctx, 1, attr)
	case EventHit:
		mt.hits.Add(ctx, 1, attr)
		mt.damage.Add(ctx, float64(ev.Amount), attr)
		if ev.CellsLost > 0 {
			mt.cellsLost.Add(ctx, int64(ev.CellsLost), attr)
		}
	case EventMiss:
		mt.misses.Add(ctx, 1, attr)
	case EventCraftLost:
		mt.craftsLost.Add(ctx, 1, mt.victim.of(ev.Alignment))
	}
}

// RecordPower samples a craft's power satisfaction. Updates with no demand
// are skipped.
func (mt *Metrics) RecordPower(ctx context.Context, a components.Alignment, r cells.PowerReport) {
	if r.Demand <= 0 {
		return
	}
	mt.satisfaction.Record(ctx, float64(r.Satisfaction()), mt.owner.of(a))
}

// SetFleets updates the values reported by the fleet gauge.
func (mt *Metrics) SetFleets(friends, foes int) {
	mt.friends.Store(int64(friends))
	mt.foes.Store(int64(foes))
}

// Close unregisters the fleet gauge callback.
func (mt *Metrics) Close() error {
	return mt.registration.Unregister()
}
