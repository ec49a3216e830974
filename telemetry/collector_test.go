package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
)

func TestCollector_WindowTicks(t *testing.T) {
	c := NewCollector(5, 0.5)
	if c.WindowDurationTicks() != 10 {
		t.Errorf("expected 10 ticks per window, got %d", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}

	if NewCollector(0, 1).WindowDurationTicks() != 1 {
		t.Error("window must be at least one tick")
	}
}

func TestCollector_Flush(t *testing.T) {
	c := NewCollector(1, 0.1)

	c.Record(NewShotEvent(1, 1, components.Friend, 12))
	c.Record(NewShotEvent(1, 1, components.Friend, 12))
	c.Record(NewShotEvent(2, 2, components.Foe, 12))
	c.Record(NewHitEvent(3, 1, components.Friend, 2, cells.HitResult{Target: 0, Armor: 3, Shielded: 2, Armored: 6, Hull: 4, Killed: []int{3}}))
	c.Record(NewHitEvent(3, 1, components.Friend, 2, cells.HitResult{Target: -1, Armor: -1}))
	c.Record(NewCraftLostEvent(4, 2, components.Foe))

	c.RecordPower(cells.PowerReport{Demand: 10, Granted: 10, FromStorage: 2, Charged: 1})
	c.RecordPower(cells.PowerReport{Demand: 10, Granted: 5})
	c.RecordPower(cells.PowerReport{})

	s := c.Flush(10, 3, 1, []float64{1, 0.5})

	if s.Shots != 3 || s.Hits != 1 || s.Misses != 1 {
		t.Errorf("shots/hits/misses = %d/%d/%d, want 3/1/1", s.Shots, s.Hits, s.Misses)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", s.HitRate)
	}
	if s.Shielded != 2 || s.Armored != 6 || s.Hull != 4 || s.CellsLost != 1 {
		t.Errorf("damage split wrong: %+v", s)
	}
	if s.FriendsLost != 0 || s.FoesLost != 1 {
		t.Errorf("losses = %d/%d, want 0/1", s.FriendsLost, s.FoesLost)
	}
	if s.PowerDemand != 20 || s.PowerGranted != 15 || s.PowerFromStorage != 2 || s.PowerCharged != 1 {
		t.Errorf("power totals wrong: %+v", s)
	}
	// Satisfaction samples: 1, 0.5, 1 (no demand counts as satisfied)
	if math.Abs(s.SatisfactionMean-2.5/3) > 1e-9 {
		t.Errorf("satisfaction mean = %v", s.SatisfactionMean)
	}
	if s.ViabilityMean != 0.75 {
		t.Errorf("viability mean = %v, want 0.75", s.ViabilityMean)
	}
	if s.WindowStartTick != 0 || s.WindowEndTick != 10 || math.Abs(s.SimTimeSec-1) > 1e-6 {
		t.Errorf("window bounds wrong: %d-%d @ %v", s.WindowStartTick, s.WindowEndTick, s.SimTimeSec)
	}

	next := c.Flush(20, 3, 1, nil)
	if next.Shots != 0 || next.PowerDemand != 0 || next.SatisfactionMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != 10 {
		t.Errorf("next window should start at 10, got %d", next.WindowStartTick)
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Register(1, 0, components.Friend, "interceptor")
	lt.Register(2, 5, components.Foe, "procedural")

	lt.Record(NewShotEvent(6, 1, components.Friend, 12))
	lt.Record(NewHitEvent(6, 1, components.Friend, 2, cells.HitResult{Target: 0, Armor: -1, Shielded: 3, Hull: 9, Killed: []int{0}}))
	lt.RecordKill(1)
	lt.UpdateSurvivalTime(2, 25, 0.5)

	shooter := lt.Get(1)
	if shooter.ShotsFired != 1 || shooter.Hits != 1 || shooter.DamageDealt != 9 || shooter.Kills != 1 {
		t.Errorf("shooter stats wrong: %+v", shooter)
	}

	target := lt.Remove(2)
	if target.DamageTaken != 9 || target.CellsLost != 1 || target.SurvivalTimeSec != 10 {
		t.Errorf("target stats wrong: %+v", target)
	}
	if lt.Count() != 1 || lt.Get(2) != nil {
		t.Error("removed craft still tracked")
	}

	row := target.ToRow(true)
	if row.Alignment != "Foe" || row.Layout != "procedural" || !row.Destroyed {
		t.Errorf("row wrong: %+v", row)
	}

	// Unknown crafts are ignored.
	lt.Record(NewShotEvent(7, 99, components.Foe, 1))
	lt.RecordKill(99)
}
