// Package craft aggregates a cell graph into a flyable fighter: it drives the
// per-tick update, exposes aggregate health and capability output, and routes
// incoming damage.
package craft

import (
	"log/slog"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
)

// Shot is one projectile released by a weapon cell this tick.
type Shot struct {
	From   hex.Coord // Weapon cell position in craft space
	Damage float32
}

// Craft owns one cell graph and the state derived from it each tick.
type Craft struct {
	id        int
	graph     *cells.Graph
	alignment components.Alignment
	firing    bool
	rules     cells.DamageRules

	health     float32
	fullHealth float32
	destroyed  bool

	lastPower cells.PowerReport
	shots     []Shot
	tick      int

	logger *slog.Logger
}

// New wraps an assembled graph. The craft takes ownership of g.
func New(id int, g *cells.Graph, alignment components.Alignment) *Craft {
	c := &Craft{
		id:        id,
		graph:     g,
		alignment: alignment,
		rules:     cells.DefaultDamageRules,
		logger:    slog.Default(),
	}
	c.recompute()
	return c
}

// SetDamageRules replaces the hit routing parameters.
func (c *Craft) SetDamageRules(r cells.DamageRules) {
	c.rules = r
}

// SetLogger replaces the logger used for cell deaths and core loss.
func (c *Craft) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.logger = l
}

// ID returns the identifier given at construction.
func (c *Craft) ID() int { return c.id }

// Graph returns the underlying cell graph.
func (c *Craft) Graph() *cells.Graph { return c.graph }

// Alignment returns the craft's side.
func (c *Craft) Alignment() components.Alignment { return c.alignment }

// Update advances the craft one tick: power (which refreshes connectivity
// first), cell steps, then aggregates. A craft whose core is dead allocates
// no power.
func (c *Craft) Update(dt float32) {
	c.tick++
	c.lastPower = c.graph.DistributePower(c.firing)
	c.graph.UpdateCells(dt)
	c.collectShots()
	c.recompute()
}

// StartFiring makes weapon cells request power from the next tick on.
func (c *Craft) StartFiring() { c.firing = true }

// StopFiring clears firing intent.
func (c *Craft) StopFiring() { c.firing = false }

// Firing reports the current firing intent.
func (c *Craft) Firing() bool { return c.firing }

// Health returns the summed health of alive cells, or 0 once the core is dead.
func (c *Craft) Health() float32 { return c.health }

// FullHealth returns the summed max health of alive cells.
func (c *Craft) FullHealth() float32 { return c.fullHealth }

// Viability returns Health/FullHealth in [0, 1].
func (c *Craft) Viability() float32 {
	if c.fullHealth <= 0 {
		return 0
	}
	return c.health / c.fullHealth
}

// Destroyed reports whether the core cell has died.
func (c *Craft) Destroyed() bool { return c.destroyed }

// ApplyDamage hits cell i with the same routing as a hit landing on its hex:
// shields, then adjacent armor, then the cell. A dead cell takes nothing.
func (c *Craft) ApplyDamage(i int, amount float32) cells.HitResult {
	if !c.graph.Cell(i).Alive() {
		return cells.HitResult{Target: -1, Armor: -1}
	}
	return c.ApplyDamageAt(c.graph.Cell(i).Pos(), amount)
}

// ApplyDamageAt routes a hit landing at point (craft space) through shields,
// nearby armor and the struck cell.
func (c *Craft) ApplyDamageAt(point hex.Coord, amount float32) cells.HitResult {
	res := c.graph.ApplyHit(point, amount, c.rules)
	for _, i := range res.Killed {
		c.logDeath(i)
	}
	c.recompute()
	return res
}

// Thrust returns the propulsion output of the last tick.
func (c *Craft) Thrust() float32 {
	return c.sumEffect(components.CapPropulsion)
}

// ShieldPool returns the shield absorption still available this tick.
func (c *Craft) ShieldPool() float32 {
	return c.sumEffect(components.CapShield)
}

// Shots returns the projectiles released during the last Update. The slice
// is reused across ticks.
func (c *Craft) Shots() []Shot { return c.shots }

// LastPower returns the report of the last power distribution.
func (c *Craft) LastPower() cells.PowerReport { return c.lastPower }

// Tick returns the number of updates run.
func (c *Craft) Tick() int { return c.tick }

// Snapshot returns the per-cell view of the craft in arena order.
func (c *Craft) Snapshot() []components.CellView {
	return c.graph.Views()
}

func (c *Craft) sumEffect(group components.Capability) float32 {
	var total float32
	for _, i := range c.graph.Group(group) {
		cell := c.graph.Cell(i)
		if cell.Alive() && cell.Connected() {
			total += cell.Effect()
		}
	}
	return total
}

func (c *Craft) collectShots() {
	c.shots = c.shots[:0]
	for _, i := range c.graph.Group(components.CapWeapon) {
		cell := c.graph.Cell(i)
		if !cell.Alive() || !cell.Connected() {
			continue
		}
		for range cell.Shots() {
			c.shots = append(c.shots, Shot{From: cell.Pos(), Damage: cell.ShotDamage()})
		}
	}
}

func (c *Craft) recompute() {
	c.health, c.fullHealth = c.graph.Totals()
	if c.graph.CoreAlive() {
		return
	}
	c.health = 0
	if !c.destroyed {
		c.destroyed = true
		c.logger.Debug("core lost",
			"craft", c.id,
			"alignment", c.alignment,
			"tick", c.tick,
			"cells_lost", c.graph.Deaths(),
		)
	}
}

func (c *Craft) logDeath(i int) {
	cell := c.graph.Cell(i)
	c.logger.Debug("cell destroyed",
		"craft", c.id,
		"cell", i,
		"capability", cell.Capability(),
		"q", cell.Pos().Q,
		"r", cell.Pos().R,
		"tick", c.tick,
	)
}
