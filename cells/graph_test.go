package cells

import (
	"errors"
	"slices"
	"testing"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
)

func TestNewGraph_LayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		want  error
	}{
		{"no core", []Spec{gen(0, 0, 5)}, ErrNoCore},
		{"two cores", []Spec{core(0, 0), core(1, 0)}, ErrMultipleCores},
		{"duplicate position", []Spec{core(0, 0), gen(1, 0, 5), armor(1, 0, 5)}, ErrDuplicatePosition},
		{"zero health", []Spec{core(0, 0), armor(1, 0, 0)}, ErrInvalidCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.specs)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewGraph_GroupsAndAdjacency(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		gen(1, 0, 5),
		armor(3, 0, 5), // not adjacent to anything
		gen(-1, 0, 5),
	)

	if got := g.Group(components.CapGeneration); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("generation group = %v, want [1 3] in insertion order", got)
	}
	if got := g.Group(components.CapArmor); !slices.Equal(got, []int{2}) {
		t.Errorf("armor group = %v, want [2]", got)
	}
	if n := g.Neighbors(0); len(n) != 2 {
		t.Errorf("core should have 2 neighbors, got %v", n)
	}
	if n := g.Neighbors(2); len(n) != 0 {
		t.Errorf("isolated armor should have no neighbors, got %v", n)
	}

	g.Refresh()
	if g.Cell(2).Connected() {
		t.Error("isolated cell must not be connected")
	}
	for _, i := range []int{0, 1, 3} {
		if !g.Cell(i).Connected() {
			t.Errorf("cell %d should be connected", i)
		}
	}
}

func TestLink_InvalidTopologyPanics(t *testing.T) {
	g := mustGraph(t, core(0, 0), gen(1, 0, 5))

	for _, pair := range [][2]int{{0, 2}, {-1, 1}, {1, 1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Link(%d, %d) should panic", pair[0], pair[1])
				}
			}()
			g.Link(pair[0], pair[1])
		}()
	}
}

func TestLink_ConduitConnectsDistantCell(t *testing.T) {
	g := mustGraph(t, core(0, 0), gen(3, 0, 5))
	g.Refresh()
	if g.Cell(1).Connected() {
		t.Fatal("distant generator should start disconnected")
	}

	g.Link(0, 1)
	if !g.Dirty() {
		t.Error("Link should invalidate connectivity")
	}
	g.Refresh()
	if !g.Cell(1).Connected() {
		t.Error("linked generator should be connected")
	}
}

// ---------- Connectivity ----------

func TestRefresh_IsLazy(t *testing.T) {
	g := mustGraph(t, core(0, 0), gen(1, 0, 5), armor(2, 0, 10))

	if !g.Refresh() {
		t.Error("first refresh should recompute")
	}
	if g.Refresh() {
		t.Error("refresh without changes should be skipped")
	}

	g.DamageCell(2, 3) // survives
	if g.Refresh() {
		t.Error("non-lethal damage should not trigger recomputation")
	}

	g.DamageCell(2, 100)
	if !g.Refresh() {
		t.Error("cell death should trigger recomputation")
	}
}

func TestCutVertex_DisconnectsBranch(t *testing.T) {
	// core - bridge - propulsion - weapon, generator on the other side of core.
	g := mustGraph(t,
		core(0, 0),
		gen(-1, 0, 10),
		armor(1, 0, 5),
		consumer(2, 0, components.CapPropulsion, 2, 8),
		weapon(3, 0, 2, 0.5),
	)
	prop := at(t, g, 2, 0)
	wpn := at(t, g, 3, 0)

	g.DistributePower(true)
	if !approx(g.Cell(prop).Granted(), 2) || !approx(g.Cell(wpn).Granted(), 2) {
		t.Fatalf("branch should be powered before the cut")
	}

	g.DamageCell(at(t, g, 1, 0), 100)
	r := g.DistributePower(true)

	for _, i := range []int{prop, wpn} {
		c := g.Cell(i)
		if !c.Alive() {
			t.Fatalf("cell %d should still be alive", i)
		}
		if c.Connected() {
			t.Errorf("cell %d should be disconnected", i)
		}
		if c.Granted() != 0 || c.Effect() != 0 {
			t.Errorf("cell %d still powered: granted=%v effect=%v", i, c.Granted(), c.Effect())
		}
	}
	if r.Demand != 0 {
		t.Errorf("disconnected consumers should not demand, got %v", r.Demand)
	}
}

func TestCycle_SurvivesSingleLoss(t *testing.T) {
	// Ring around the core: losing one ring cell keeps the far side reachable.
	specs := []Spec{core(0, 0)}
	for _, c := range hex.Ring(hex.Origin, 1) {
		specs = append(specs, armor(c.Q, c.R, 10))
	}
	specs = append(specs, consumer(2, -1, components.CapShield, 1, 1))
	g := mustGraph(t, specs...)

	g.DamageCell(at(t, g, 1, 0), 100)
	g.Refresh()

	if !g.Cell(at(t, g, 2, -1)).Connected() {
		t.Error("shield should stay connected through (1,-1)")
	}

	g.DamageCell(at(t, g, 1, -1), 100)
	g.Refresh()
	if g.Cell(at(t, g, 2, -1)).Connected() {
		t.Error("shield should be disconnected once both bridges are gone")
	}
}

func TestFragments(t *testing.T) {
	g := mustGraph(t,
		core(0, 0),
		armor(1, 0, 5),
		gen(2, 0, 5),
		gen(3, 0, 5),
		armor(-1, 0, 5),
	)
	g.DamageCell(1, 100)

	frags := g.Fragments()
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %v", frags)
	}
	if !slices.Equal(frags[0], []int{0, 4}) {
		t.Errorf("core fragment = %v, want [0 4]", frags[0])
	}
	if !slices.Equal(frags[1], []int{2, 3}) {
		t.Errorf("debris fragment = %v, want [2 3]", frags[1])
	}
}

// ---------- Cell lifecycle ----------

func TestDamageCell_ClampsAndKills(t *testing.T) {
	g := mustGraph(t, core(0, 0), armor(1, 0, 10))

	if dealt := g.DamageCell(1, 4); !approx(dealt, 4) {
		t.Errorf("expected 4 dealt, got %v", dealt)
	}
	if dealt := g.DamageCell(1, -3); dealt != 0 {
		t.Errorf("negative damage should be ignored, dealt %v", dealt)
	}
	if dealt := g.DamageCell(1, 50); !approx(dealt, 6) {
		t.Errorf("expected remaining 6 dealt, got %v", dealt)
	}
	c := g.Cell(1)
	if c.Alive() || c.Health() != 0 {
		t.Errorf("cell should be dead at 0 health: alive=%v health=%v", c.Alive(), c.Health())
	}
	if dealt := g.DamageCell(1, 5); dealt != 0 {
		t.Errorf("damage on a dead cell should be a no-op, dealt %v", dealt)
	}
	if g.Deaths() != 1 {
		t.Errorf("expected 1 death, got %d", g.Deaths())
	}
}

func TestUpdateCells_DeadCellIdempotent(t *testing.T) {
	s := armor(1, 0, 10)
	s.RegenRate = 5
	g := mustGraph(t, core(0, 0), s)
	g.DamageCell(1, 100)

	before := g.Cell(1).View(1)
	g.UpdateCells(1)
	g.UpdateCells(1)
	if after := g.Cell(1).View(1); after != before {
		t.Errorf("dead cell changed across updates: %+v -> %+v", before, after)
	}
}

func TestUpdateCells_RegenClampsAtMax(t *testing.T) {
	s := armor(1, 0, 10)
	s.RegenRate = 2
	g := mustGraph(t, core(0, 0), s)
	g.DamageCell(1, 5)

	g.UpdateCells(1)
	if h := g.Cell(1).Health(); !approx(h, 7) {
		t.Errorf("expected 7 after one second of regen, got %v", h)
	}
	g.UpdateCells(10)
	if h := g.Cell(1).Health(); h != 10 {
		t.Errorf("regen should clamp at max health, got %v", h)
	}
}

func TestTotals(t *testing.T) {
	g := mustGraph(t, core(0, 0), armor(1, 0, 10), armor(-1, 0, 20))
	g.DamageCell(1, 100)
	g.DamageCell(2, 5)

	health, full := g.Totals()
	if !approx(health, 65) || !approx(full, 70) {
		t.Errorf("Totals() = %v/%v, want 65/70", health, full)
	}
}
