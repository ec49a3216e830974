// Package cells implements the hex-cell component graph of a craft: the cell
// arena, capability groups, connectivity to the core, the per-tick power
// distribution protocol and damage routing.
package cells

import (
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/hex"
)

// powerEpsilon absorbs float32 residue when splitting a request across sources.
const powerEpsilon = 1e-6

// Spec describes a cell at assembly time.
type Spec struct {
	Pos        hex.Coord
	Capability components.Capability

	MaxHealth float32
	RegenRate float32 // health per second

	GenerationRate float32 // Generation: power per tick
	Capacity       float32 // Storage: max stored power
	InitialCharge  float32 // Storage: fraction of capacity stored at assembly

	Demand       float32 // Consumers: power requested per tick while active
	MaxEffect    float32 // Propulsion thrust, shield absorption or weapon damage at full power
	FireInterval float32 // Weapon: seconds between shots at full power
}

// SpecFromStats builds a Spec from a config template.
func SpecFromStats(pos hex.Coord, capability components.Capability, s config.CellStats) Spec {
	spec := Spec{
		Pos:            pos,
		Capability:     capability,
		MaxHealth:      float32(s.MaxHealth),
		RegenRate:      float32(s.RegenRate),
		GenerationRate: float32(s.GenerationRate),
		Capacity:       float32(s.Capacity),
		InitialCharge:  float32(s.InitialCharge),
		Demand:         float32(s.Demand),
		FireInterval:   float32(s.FireInterval),
	}
	switch capability {
	case components.CapPropulsion:
		spec.MaxEffect = float32(s.MaxThrust)
	case components.CapShield:
		spec.MaxEffect = float32(s.ShieldStrength)
	case components.CapWeapon:
		spec.MaxEffect = float32(s.WeaponDamage)
	}
	return spec
}

// Cell is one hex of a craft. All state is owned by the Graph; callers read it
// through accessors. drawRate and stored are only changed by the power protocol.
type Cell struct {
	pos        hex.Coord
	capability components.Capability

	health    float32
	maxHealth float32
	regenRate float32
	alive     bool
	connected bool

	// Generation
	generationRate float32
	drawRate       float32

	// Storage
	capacity float32
	stored   float32

	// Consumers
	demand    float32
	requested float32
	granted   float32
	fraction  float32

	// Capability effect for the current tick
	maxEffect    float32
	effect       float32
	fireInterval float32
	cycle        float32
	shots        int
}

func newCell(s Spec) Cell {
	c := Cell{
		pos:            s.Pos,
		capability:     s.Capability,
		health:         s.MaxHealth,
		maxHealth:      s.MaxHealth,
		regenRate:      s.RegenRate,
		alive:          s.MaxHealth > 0,
		generationRate: max(s.GenerationRate, 0),
		capacity:       max(s.Capacity, 0),
		demand:         max(s.Demand, 0),
		maxEffect:      max(s.MaxEffect, 0),
		fireInterval:   s.FireInterval,
	}
	charge := min(max(s.InitialCharge, 0), 1)
	c.stored = c.capacity * charge
	return c
}

// Pos returns the cell's hex position.
func (c *Cell) Pos() hex.Coord { return c.pos }

// Capability returns the cell's capability tag.
func (c *Cell) Capability() components.Capability { return c.capability }

// Health returns current health.
func (c *Cell) Health() float32 { return c.health }

// MaxHealth returns the health the cell was built with.
func (c *Cell) MaxHealth() float32 { return c.maxHealth }

// Alive reports whether the cell still has health.
func (c *Cell) Alive() bool { return c.alive }

// Connected reports whether the cell was reachable from the core at the last refresh.
func (c *Cell) Connected() bool { return c.connected }

// GenerationRate returns the maximum power a generation cell supplies per tick.
func (c *Cell) GenerationRate() float32 { return c.generationRate }

// DrawRate returns the power a generation cell has committed this tick.
func (c *Cell) DrawRate() float32 { return c.drawRate }

// Headroom returns the power a generation cell can still supply this tick.
func (c *Cell) Headroom() float32 { return c.generationRate - c.drawRate }

// Capacity returns a storage cell's capacity.
func (c *Cell) Capacity() float32 { return c.capacity }

// Stored returns a storage cell's current charge.
func (c *Cell) Stored() float32 { return c.stored }

// Requested returns the power a consumer asked for this tick.
func (c *Cell) Requested() float32 { return c.requested }

// Granted returns the power a consumer received this tick.
func (c *Cell) Granted() float32 { return c.granted }

// Fraction returns granted/requested for this tick, 0 when nothing was requested.
func (c *Cell) Fraction() float32 { return c.fraction }

// Effect returns the scaled capability output for this tick: thrust for
// propulsion, remaining absorption for shields, power fraction for weapons.
func (c *Cell) Effect() float32 { return c.effect }

// Shots returns the number of shots a weapon emitted this tick.
func (c *Cell) Shots() int { return c.shots }

// ShotDamage returns the damage carried by each shot of a weapon.
func (c *Cell) ShotDamage() float32 { return c.maxEffect }

// View returns the render/persistence view of the cell.
func (c *Cell) View(index int) components.CellView {
	return components.CellView{
		Index:      index,
		Pos:        c.pos,
		Capability: c.capability,
		Health:     c.health,
		MaxHealth:  c.maxHealth,
		Alive:      c.alive,
		Connected:  c.connected,
	}
}

// getPower grants up to requested units from a generation cell's remaining
// headroom and commits them to drawRate.
func (c *Cell) getPower(requested float32) float32 {
	if requested <= 0 {
		return 0
	}
	if c.drawRate+requested > c.generationRate {
		available := c.generationRate - c.drawRate
		c.drawRate = c.generationRate
		return available
	}
	c.drawRate += requested
	return requested
}

// discharge draws up to requested units from a storage cell.
func (c *Cell) discharge(requested float32) float32 {
	if requested <= 0 || c.stored <= 0 {
		return 0
	}
	got := min(requested, c.stored)
	c.stored -= got
	return got
}

// charge stores up to offered units, bounded by remaining capacity.
func (c *Cell) charge(offered float32) float32 {
	room := c.capacity - c.stored
	if offered <= 0 || room <= 0 {
		return 0
	}
	got := min(offered, room)
	c.stored += got
	return got
}

// applyDamage removes health and reports the amount removed and whether the
// cell died. Dead cells ignore damage.
func (c *Cell) applyDamage(amount float32) (dealt float32, died bool) {
	if !c.alive || amount <= 0 {
		return 0, false
	}
	dealt = min(amount, c.health)
	c.health -= dealt
	if c.health <= 0 {
		c.health = 0
		c.alive = false
		c.connected = false
		c.deenergize()
		return dealt, true
	}
	return dealt, false
}

// deenergize clears all per-tick power and effect state.
func (c *Cell) deenergize() {
	c.drawRate = 0
	c.requested = 0
	c.granted = 0
	c.fraction = 0
	c.effect = 0
	c.shots = 0
}
