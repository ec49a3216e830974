package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, side string) int64 {
	t.Helper()
	var points []metricdata.DataPoint[int64]
	switch d := data.(type) {
	case metricdata.Sum[int64]:
		points = d.DataPoints
	case metricdata.Gauge[int64]:
		points = d.DataPoints
	default:
		t.Fatalf("unexpected aggregation %T", data)
	}
	want := attribute.NewSet(attribute.String(key, side))
	for _, p := range points {
		if p.Attributes.Equals(&want) {
			return p.Value
		}
	}
	return 0
}

func TestMetrics_RecordsCombat(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewMetrics(provider)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	ctx := context.Background()
	m.Record(ctx, NewShotEvent(1, 1, components.Friend, 5))
	m.Record(ctx, NewShotEvent(1, 1, components.Friend, 5))
	m.Record(ctx, NewShotEvent(1, 2, components.Foe, 5))
	m.Record(ctx, NewHitEvent(1, 1, components.Friend, 2, cells.HitResult{Target: 0, Armor: -1, Hull: 5, Killed: []int{0, 1}}))
	m.Record(ctx, NewHitEvent(1, 2, components.Foe, 1, cells.HitResult{Target: -1, Armor: -1}))
	m.Record(ctx, NewCraftLostEvent(2, 2, components.Foe))
	m.RecordPower(ctx, components.Friend, cells.PowerReport{Demand: 4, Granted: 2})
	m.RecordPower(ctx, components.Friend, cells.PowerReport{})
	m.SetFleets(3, 1)

	got := collect(t, reader)
	checks := []struct {
		name, key, side string
		want            int64
	}{
		{"skirmish.shots", "attacker", "friend", 2},
		{"skirmish.shots", "attacker", "foe", 1},
		{"skirmish.hits", "attacker", "friend", 1},
		{"skirmish.misses", "attacker", "foe", 1},
		{"skirmish.cells.lost", "attacker", "friend", 2},
		{"skirmish.crafts.lost", "victim", "foe", 1},
		{"skirmish.crafts.lost", "attacker", "foe", 0},
		{"skirmish.fleet.size", "alignment", "friend", 3},
		{"skirmish.fleet.size", "alignment", "foe", 1},
	}
	for _, c := range checks {
		data, ok := got[c.name]
		if !ok {
			t.Errorf("%s not exported", c.name)
			continue
		}
		if v := sumFor(t, data, c.key, c.side); v != c.want {
			t.Errorf("%s{%s=%s} = %d, want %d", c.name, c.key, c.side, v, c.want)
		}
	}

	hist, ok := got["craft.power.satisfaction"].(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) != 1 {
		t.Fatalf("satisfaction histogram = %#v", got["craft.power.satisfaction"])
	}
	if p := hist.DataPoints[0]; p.Count != 1 || p.Sum != 0.5 {
		t.Errorf("satisfaction count=%d sum=%v, want 1 sample of 0.5", p.Count, p.Sum)
	}
}

func TestMetrics_GlobalProviderIsNoop(t *testing.T) {
	m, err := NewMetrics(nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Record(context.Background(), NewShotEvent(0, 1, components.Foe, 1))
	if err := m.Close(); err != nil {
		t.Error(err)
	}
}
