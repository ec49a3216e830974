package craft

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/hex"
)

func loadDefaults(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func interceptor(t *testing.T, cfg *config.Config) *Craft {
	t.Helper()
	bp, ok := cfg.Blueprint("interceptor")
	if !ok {
		t.Fatal("interceptor blueprint missing from defaults")
	}
	c, err := FromBlueprint(1, bp, cfg, components.Friend)
	if err != nil {
		t.Fatalf("FromBlueprint: %v", err)
	}
	return c
}

func TestFromBlueprint_Aggregates(t *testing.T) {
	cfg := loadDefaults(t)
	c := interceptor(t, cfg)

	if c.Destroyed() {
		t.Fatal("fresh craft should not be destroyed")
	}
	if c.Health() != c.FullHealth() || c.Viability() != 1 {
		t.Errorf("fresh craft health %v/%v", c.Health(), c.FullHealth())
	}
	if c.Alignment() != components.Friend {
		t.Errorf("alignment = %v, want Friend", c.Alignment())
	}

	c.Update(cfg.Derived.DT32)
	want := 2 * float32(cfg.Cells.Propulsion.MaxThrust)
	if math.Abs(float64(c.Thrust()-want)) > 1e-3 {
		t.Errorf("thrust = %v, want %v", c.Thrust(), want)
	}
	if c.ShieldPool() <= 0 {
		t.Error("connected shield should hold a pool")
	}
	if s := c.LastPower().Satisfaction(); s < 0.999 {
		t.Errorf("interceptor should be fully powered, satisfaction %v", s)
	}
}

func TestFiring_ProducesShotsOnlyWhileFiring(t *testing.T) {
	cfg := loadDefaults(t)
	c := interceptor(t, cfg)

	total := 0
	for range 120 {
		c.Update(cfg.Derived.DT32)
		total += len(c.Shots())
	}
	if total != 0 {
		t.Errorf("holding fire produced %d shots", total)
	}

	c.StartFiring()
	if !c.Firing() {
		t.Fatal("Firing() should report intent")
	}
	for range 120 {
		c.Update(cfg.Derived.DT32)
		for _, s := range c.Shots() {
			if s.Damage != float32(cfg.Cells.Weapon.WeaponDamage) {
				t.Errorf("shot damage %v", s.Damage)
			}
		}
		total += len(c.Shots())
	}
	// Two weapons at one shot per 0.5s for two seconds.
	if total < 6 || total > 8 {
		t.Errorf("expected about 8 shots, got %d", total)
	}

	c.StopFiring()
	c.Update(cfg.Derived.DT32)
	if c.LastPower().Demand >= 20 {
		t.Errorf("weapons should stop requesting power, demand %v", c.LastPower().Demand)
	}
}

func TestWeapon_PartialPowerRate(t *testing.T) {
	g, err := cells.NewGraph([]cells.Spec{
		{Pos: hex.Origin, Capability: components.CapCore, MaxHealth: 10},
		{Pos: hex.Coord{Q: 1, R: 0}, Capability: components.CapGeneration, MaxHealth: 10, GenerationRate: 3},
		{Pos: hex.Coord{Q: -1, R: 0}, Capability: components.CapWeapon, MaxHealth: 10, Demand: 5, MaxEffect: 1, FireInterval: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := New(1, g, components.Foe)
	c.StartFiring()

	shots := 0
	for range 50 {
		c.Update(1)
		shots += len(c.Shots())
	}
	// 3/5 of full rate over 50 intervals.
	if shots < 29 || shots > 30 {
		t.Errorf("expected 30 shots at 3/5 rate, got %d", shots)
	}
}

func TestCoreDeath(t *testing.T) {
	cfg := loadDefaults(t)
	c := interceptor(t, cfg)
	c.StartFiring()
	c.Update(cfg.Derived.DT32)

	core := c.Graph().Core()
	c.ApplyDamage(core, 10000)

	if !c.Destroyed() {
		t.Fatal("craft should be destroyed after core loss")
	}
	if c.Health() != 0 {
		t.Errorf("health should be 0 after core loss, got %v", c.Health())
	}
	if c.FullHealth() <= 0 {
		t.Error("surviving cells should still count towards full health")
	}

	for range 60 {
		c.Update(cfg.Derived.DT32)
		if c.LastPower() != (cells.PowerReport{}) {
			t.Fatalf("dead craft allocated power: %+v", c.LastPower())
		}
		if c.Thrust() != 0 || len(c.Shots()) != 0 {
			t.Fatalf("dead craft still acting: thrust=%v shots=%d", c.Thrust(), len(c.Shots()))
		}
	}
	if c.Health() != 0 {
		t.Errorf("regen must not revive health after core loss, got %v", c.Health())
	}
}

func TestApplyDamageAt_UsesRules(t *testing.T) {
	cfg := loadDefaults(t)
	c := interceptor(t, cfg)
	c.Update(cfg.Derived.DT32)
	before := c.Health()

	res := c.ApplyDamageAt(hex.Coord{Q: 1, R: -1}, 10)
	if res.Missed() {
		t.Fatal("hit on a weapon cell should not miss")
	}
	if res.Shielded <= 0 {
		t.Error("connected shield should absorb part of the hit")
	}
	if res.Armor < 0 {
		t.Error("armor beside the weapon should intercept")
	}
	if got := before - c.Health(); math.Abs(float64(got-(res.Armored+res.Hull))) > 1e-3 {
		t.Errorf("health drop %v does not match routed damage %+v", got, res)
	}

	miss := c.ApplyDamageAt(hex.Coord{Q: 10, R: 10}, 10)
	if !miss.Missed() {
		t.Errorf("far hit should miss: %+v", miss)
	}
}

func TestApplyDamage_ArmorIntercepts(t *testing.T) {
	g, err := cells.NewGraph([]cells.Spec{
		{Pos: hex.Origin, Capability: components.CapCore, MaxHealth: 100},
		{Pos: hex.Coord{Q: 1, R: 0}, Capability: components.CapArmor, MaxHealth: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := New(1, g, components.Friend)
	core, armor := g.Core(), 1

	res := c.ApplyDamage(core, 40)
	if res.Target != core || res.Armor != armor {
		t.Fatalf("hit routed to target %d armor %d", res.Target, res.Armor)
	}
	if got := g.Cell(core).Health(); got != 100 {
		t.Errorf("core health = %v, want 100 behind armor", got)
	}
	if got := g.Cell(armor).Health(); got != 60 {
		t.Errorf("armor health = %v, want 60", got)
	}

	// Same routing as a hit landing on the core's hex.
	at := c.ApplyDamageAt(hex.Origin, 40)
	if at.Target != res.Target || at.Armor != res.Armor || at.Armored != res.Armored {
		t.Errorf("ApplyDamageAt %+v disagrees with ApplyDamage %+v", at, res)
	}

	// Overflow past dead armor reaches the core.
	res = c.ApplyDamage(core, 50)
	if g.Cell(armor).Alive() {
		t.Fatal("armor should be destroyed")
	}
	if res.Armored != 20 || res.Hull != 30 {
		t.Errorf("split armor=%v hull=%v, want 20/30", res.Armored, res.Hull)
	}

	if dead := c.ApplyDamage(armor, 10); !dead.Missed() || dead.Absorbed() != 0 {
		t.Errorf("dead cell took damage: %+v", dead)
	}
}

func TestUpdate_DisconnectsAfterBridgeLoss(t *testing.T) {
	g, err := cells.NewGraph([]cells.Spec{
		{Pos: hex.Origin, Capability: components.CapCore, MaxHealth: 10},
		{Pos: hex.Coord{Q: -1, R: 0}, Capability: components.CapGeneration, MaxHealth: 10, GenerationRate: 10},
		{Pos: hex.Coord{Q: 1, R: -1}, Capability: components.CapArmor, MaxHealth: 10},
		{Pos: hex.Coord{Q: 2, R: -2}, Capability: components.CapPropulsion, MaxHealth: 10, Demand: 2, MaxEffect: 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := New(1, g, components.Friend)
	c.Update(1)
	if c.Thrust() != 5 {
		t.Fatalf("thrust = %v, want 5 before the bridge is lost", c.Thrust())
	}

	g.DamageCell(2, 100)
	c.Update(1)
	if g.Cell(3).Connected() {
		t.Error("propulsion beyond the lost bridge should be disconnected")
	}
	if c.Thrust() != 0 || c.LastPower().Demand != 0 {
		t.Errorf("disconnected branch still active: thrust=%v demand=%v", c.Thrust(), c.LastPower().Demand)
	}
}

func TestFromBlueprint_Errors(t *testing.T) {
	cfg := loadDefaults(t)
	tests := []struct {
		name  string
		cells []config.BlueprintCell
		want  error
	}{
		{"unknown type", []config.BlueprintCell{{Q: 0, R: 0, Type: "core"}, {Q: 1, R: 0, Type: "laser"}}, ErrUnknownCapability},
		{"two cores", []config.BlueprintCell{{Q: 0, R: 0, Type: "core"}, {Q: 1, R: 0, Type: "Core"}}, cells.ErrMultipleCores},
		{"no core", []config.BlueprintCell{{Q: 0, R: 0, Type: "armor"}}, cells.ErrNoCore},
		{"duplicate", []config.BlueprintCell{{Q: 0, R: 0, Type: "core"}, {Q: 0, R: 0, Type: "armor"}}, cells.ErrDuplicatePosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := config.BlueprintConfig{Name: tt.name, Cells: tt.cells}
			_, err := FromBlueprint(1, bp, cfg, components.Foe)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcedural(t *testing.T) {
	cfg := loadDefaults(t)
	rng := rand.New(rand.NewSource(7))

	for i := range 20 {
		c, err := Procedural(i, rng, cfg, components.Foe)
		if err != nil {
			t.Fatalf("Procedural: %v", err)
		}
		c.Update(cfg.Derived.DT32)
		for _, v := range c.Snapshot() {
			if !v.Connected {
				t.Errorf("craft %d: generated cell %v starts disconnected", i, v.Pos)
			}
		}
	}
}
