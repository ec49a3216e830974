package cells

import (
	"math"
	"testing"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
)

const tol = 1e-5

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tol
}

func core(q, r int) Spec {
	return Spec{Pos: hex.Coord{Q: q, R: r}, Capability: components.CapCore, MaxHealth: 50}
}

func gen(q, r int, rate float32) Spec {
	return Spec{Pos: hex.Coord{Q: q, R: r}, Capability: components.CapGeneration, MaxHealth: 10, GenerationRate: rate}
}

func store(q, r int, capacity, charge float32) Spec {
	return Spec{Pos: hex.Coord{Q: q, R: r}, Capability: components.CapStorage, MaxHealth: 10, Capacity: capacity, InitialCharge: charge}
}

func consumer(q, r int, c components.Capability, demand, effect float32) Spec {
	return Spec{Pos: hex.Coord{Q: q, R: r}, Capability: c, MaxHealth: 10, Demand: demand, MaxEffect: effect}
}

func weapon(q, r int, demand, interval float32) Spec {
	s := consumer(q, r, components.CapWeapon, demand, 7)
	s.FireInterval = interval
	return s
}

func armor(q, r int, health float32) Spec {
	return Spec{Pos: hex.Coord{Q: q, R: r}, Capability: components.CapArmor, MaxHealth: health}
}

func mustGraph(t *testing.T, specs ...Spec) *Graph {
	t.Helper()
	g, err := NewGraph(specs)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func at(t *testing.T, g *Graph, q, r int) int {
	t.Helper()
	i, ok := g.IndexAt(hex.Coord{Q: q, R: r})
	if !ok {
		t.Fatalf("no cell at (%d,%d)", q, r)
	}
	return i
}

// ---------- GenerationCell grant ----------

func TestGetPower_SaturatesMidRequest(t *testing.T) {
	c := newCell(gen(0, 0, 10))

	want := []float32{4, 4, 2}
	for i, w := range want {
		if got := c.getPower(4); got != w {
			t.Errorf("request %d: granted %v, want %v", i, got, w)
		}
	}
	if c.DrawRate() != 10 {
		t.Errorf("expected drawRate 10, got %v", c.DrawRate())
	}
	if got := c.getPower(1); got != 0 {
		t.Errorf("saturated generator granted %v", got)
	}
}

// ---------- Allocation ordering ----------

func TestDistributePower_GenerationBeforeStorage(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 10),
		store(-1, 0, 20, 0.5),
		consumer(0, 1, components.CapPropulsion, 12, 40),
	)

	r := g.DistributePower(false)

	if !approx(r.FromGeneration, 10) {
		t.Errorf("expected 10 from generation, got %v", r.FromGeneration)
	}
	if !approx(r.FromStorage, 2) {
		t.Errorf("expected 2 from storage, got %v", r.FromStorage)
	}
	if !approx(g.Cell(at(t, g, -1, 0)).Stored(), 8) {
		t.Errorf("expected storage at 8, got %v", g.Cell(at(t, g, -1, 0)).Stored())
	}
	prop := g.Cell(at(t, g, 0, 1))
	if !approx(prop.Fraction(), 1) || !approx(prop.Effect(), 40) {
		t.Errorf("propulsion should be fully powered: fraction=%v effect=%v", prop.Fraction(), prop.Effect())
	}
	if r.Charged != 0 {
		t.Errorf("no surplus expected, charged %v", r.Charged)
	}
}

func TestDistributePower_SurplusChargesStorage(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 10),
		store(-1, 0, 20, 0),
		consumer(0, 1, components.CapShield, 3, 6),
	)

	r := g.DistributePower(false)

	if !approx(r.Charged, 7) {
		t.Errorf("expected 7 charged, got %v", r.Charged)
	}
	if !approx(g.Cell(at(t, g, -1, 0)).Stored(), 7) {
		t.Errorf("expected stored 7, got %v", g.Cell(at(t, g, -1, 0)).Stored())
	}
	if !approx(g.Cell(at(t, g, 1, 0)).DrawRate(), 10) {
		t.Errorf("charging should commit generator headroom, drawRate=%v", g.Cell(at(t, g, 1, 0)).DrawRate())
	}

	// Charging stops at capacity.
	for range 5 {
		g.DistributePower(false)
	}
	if s := g.Cell(at(t, g, -1, 0)).Stored(); s > 20+tol {
		t.Errorf("storage overfilled: %v", s)
	}
}

func TestDistributePower_FirstComeFirstServed(t *testing.T) {
	// Shield is inserted first but propulsion demands are collected first.
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 10),
		consumer(0, 1, components.CapShield, 6, 6),
		consumer(-1, 1, components.CapPropulsion, 6, 30),
		consumer(-1, 0, components.CapPropulsion, 6, 30),
	)

	r := g.DistributePower(false)

	first := g.Cell(at(t, g, -1, 1))
	second := g.Cell(at(t, g, -1, 0))
	shield := g.Cell(at(t, g, 0, 1))

	if !approx(first.Granted(), 6) {
		t.Errorf("first propulsion granted %v, want 6", first.Granted())
	}
	if !approx(second.Granted(), 4) {
		t.Errorf("second propulsion granted %v, want 4", second.Granted())
	}
	if shield.Granted() != 0 {
		t.Errorf("shield should receive nothing, got %v", shield.Granted())
	}
	if !approx(second.Effect(), 20) {
		t.Errorf("partial thrust expected 20, got %v", second.Effect())
	}
	if !approx(r.Shortfall, 8) {
		t.Errorf("expected shortfall 8, got %v", r.Shortfall)
	}
}

func TestDistributePower_ShortfallSpillsAcrossGenerators(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 3),
		gen(-1, 0, 5),
		consumer(0, 1, components.CapPropulsion, 6, 10),
	)

	g.DistributePower(false)

	if !approx(g.Cell(at(t, g, 1, 0)).DrawRate(), 3) {
		t.Errorf("first generator should saturate at 3, got %v", g.Cell(at(t, g, 1, 0)).DrawRate())
	}
	if !approx(g.Cell(at(t, g, -1, 0)).DrawRate(), 3) {
		t.Errorf("second generator should cover the remaining 3, got %v", g.Cell(at(t, g, -1, 0)).DrawRate())
	}
}

func TestDistributePower_DrawRateResetsEachTick(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 10),
		consumer(0, 1, components.CapPropulsion, 4, 10),
	)
	for tick := 0; tick < 3; tick++ {
		g.DistributePower(false)
		if d := g.Cell(at(t, g, 1, 0)).DrawRate(); !approx(d, 4) {
			t.Fatalf("tick %d: drawRate %v, want 4", tick, d)
		}
	}
}

// ---------- Invariants over many ticks ----------

func TestDistributePower_Invariants(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 6),
		gen(-1, 0, 4),
		store(0, -1, 15, 0.3),
		store(1, -1, 10, 1),
		consumer(0, 1, components.CapPropulsion, 3, 20),
		consumer(-1, 1, components.CapShield, 4, 5),
		weapon(2, -1, 5, 0.25),
		weapon(2, 0, 5, 0.25),
		armor(-2, 1, 30),
	)

	for tick := 0; tick < 200; tick++ {
		firing := tick%3 != 0
		if tick == 80 {
			g.DamageCell(at(t, g, 1, 0), 1000)
		}

		r := g.DistributePower(firing)

		if r.Granted > r.Headroom+r.StorageAvailable+tol {
			t.Fatalf("tick %d: granted %v exceeds headroom %v + storage %v",
				tick, r.Granted, r.Headroom, r.StorageAvailable)
		}
		if !approx(r.Granted, r.FromGeneration+r.FromStorage) {
			t.Fatalf("tick %d: granted %v != generation %v + storage %v",
				tick, r.Granted, r.FromGeneration, r.FromStorage)
		}
		for _, i := range g.Group(components.CapGeneration) {
			c := g.Cell(i)
			if !c.Connected() {
				continue
			}
			if c.DrawRate() < 0 || c.DrawRate() > c.GenerationRate()+tol {
				t.Fatalf("tick %d: generator %d drawRate %v outside [0, %v]",
					tick, i, c.DrawRate(), c.GenerationRate())
			}
		}
		for _, i := range g.Group(components.CapStorage) {
			c := g.Cell(i)
			if c.Stored() < -tol || c.Stored() > c.Capacity()+tol {
				t.Fatalf("tick %d: storage %d holds %v outside [0, %v]", tick, i, c.Stored(), c.Capacity())
			}
		}
		g.UpdateCells(1.0 / 60)
	}
}

// ---------- Weapons ----------

func TestWeapon_PartialPowerFiresProportionally(t *testing.T) {
	full := mustGraph(t, core(0, 0), gen(1, 0, 5), weapon(0, 1, 5, 1))
	partial := mustGraph(t, core(0, 0), gen(1, 0, 3), weapon(0, 1, 5, 1))

	var fullShots, partialShots int
	for range 20 {
		full.DistributePower(true)
		partial.DistributePower(true)
		full.UpdateCells(0.5)
		partial.UpdateCells(0.5)
		fullShots += full.Cell(at(t, full, 0, 1)).Shots()
		partialShots += partial.Cell(at(t, partial, 0, 1)).Shots()
	}

	w := partial.Cell(at(t, partial, 0, 1))
	if !approx(w.Fraction(), 0.6) {
		t.Errorf("expected fraction 0.6, got %v", w.Fraction())
	}
	if fullShots != 10 {
		t.Errorf("full power: expected 10 shots, got %d", fullShots)
	}
	if partialShots < 5 || partialShots > 6 {
		t.Errorf("3/5 power: expected ~6 shots, got %d", partialShots)
	}
}

func TestWeapon_NoFireWithoutIntentOrPower(t *testing.T) {
	idle := mustGraph(t, core(0, 0), gen(1, 0, 10), weapon(0, 1, 5, 0.1))
	starved := mustGraph(t, core(0, 0), weapon(0, 1, 5, 0.1))

	for range 10 {
		idle.DistributePower(false)
		idle.UpdateCells(0.5)
		starved.DistributePower(true)
		starved.UpdateCells(0.5)

		if s := idle.Cell(at(t, idle, 0, 1)).Shots(); s != 0 {
			t.Fatalf("weapon fired %d shots without firing intent", s)
		}
		if s := starved.Cell(at(t, starved, 0, 1)).Shots(); s != 0 {
			t.Fatalf("weapon fired %d shots with no power", s)
		}
	}
	if r := idle.DistributePower(false); r.Demand != 0 {
		t.Errorf("idle weapon should request nothing, demand=%v", r.Demand)
	}
}

// ---------- Core loss ----------

func TestDistributePower_DeadCoreAllocatesNothing(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 10),
		store(-1, 0, 10, 1),
		consumer(0, 1, components.CapPropulsion, 4, 10),
	)
	g.DistributePower(false)

	g.DamageCell(g.Core(), 1e6)
	r := g.DistributePower(false)

	if r != (PowerReport{}) {
		t.Errorf("expected empty report after core loss, got %+v", r)
	}
	for i := 0; i < g.Len(); i++ {
		c := g.Cell(i)
		if c.Connected() {
			t.Errorf("cell %d still connected after core loss", i)
		}
		if c.Granted() != 0 || c.DrawRate() != 0 {
			t.Errorf("cell %d still powered: granted=%v draw=%v", i, c.Granted(), c.DrawRate())
		}
	}
	if !approx(g.Cell(at(t, g, -1, 0)).Stored(), 10) {
		t.Errorf("storage should be untouched after core loss")
	}
}
