package cells

import (
	"log/slog"

	"github.com/pthm-cable/hexcraft/components"
)

// consumerOrder is the order in which consumer groups submit demands.
var consumerOrder = [...]components.Capability{
	components.CapPropulsion,
	components.CapShield,
	components.CapWeapon,
}

// PowerReport summarizes one run of the distribution protocol.
type PowerReport struct {
	Headroom         float32 // Generation capacity of connected generators at the start
	StorageAvailable float32 // Charge held by connected storage at the start
	Demand           float32 // Total requested by connected consumers
	Granted          float32 // Total delivered to consumers
	FromGeneration   float32 // Part of Granted supplied by generators
	FromStorage      float32 // Part of Granted discharged from storage
	Charged          float32 // Surplus generation moved into storage
	Shortfall        float32 // Demand - Granted
	Consumers        int     // Consumers that requested power
}

// Satisfaction returns Granted/Demand, or 1 when nothing was requested.
func (r PowerReport) Satisfaction() float32 {
	if r.Demand <= 0 {
		return 1
	}
	return r.Granted / r.Demand
}

// LogValue implements slog.LogValuer for structured logging.
func (r PowerReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("headroom", float64(r.Headroom)),
		slog.Float64("storage", float64(r.StorageAvailable)),
		slog.Float64("demand", float64(r.Demand)),
		slog.Float64("granted", float64(r.Granted)),
		slog.Float64("from_generation", float64(r.FromGeneration)),
		slog.Float64("from_storage", float64(r.FromStorage)),
		slog.Float64("charged", float64(r.Charged)),
		slog.Float64("shortfall", float64(r.Shortfall)),
		slog.Int("consumers", r.Consumers),
	)
}

// demandEntry is one consumer's request for the current tick.
type demandEntry struct {
	cell   int
	amount float32
}

// DistributePower runs one tick of the allocation protocol:
//
//  1. reset drawRate on connected generators and clear consumer state
//  2. collect demands from connected consumers (Propulsion, Shield, Weapon,
//     insertion order within each group)
//  3. satisfy each demand from generators in insertion order, then storage
//  4. charge storage from leftover generator headroom
//  5. scale each consumer's effect by granted/requested
//
// Unmet demand is dropped, never queued. Disconnected cells neither supply
// nor receive power. A graph whose core is dead allocates nothing.
func (g *Graph) DistributePower(firing bool) PowerReport {
	g.Refresh()

	var report PowerReport
	g.resetPhase()
	if !g.CoreAlive() {
		return report
	}

	gens := g.connected(components.CapGeneration)
	stores := g.connected(components.CapStorage)
	for _, i := range gens {
		report.Headroom += g.cells[i].generationRate
	}
	for _, i := range stores {
		report.StorageAvailable += g.cells[i].stored
	}

	demands := g.collectDemands(firing)
	for _, d := range demands {
		granted := g.allocate(d.amount, gens, stores, &report)
		c := &g.cells[d.cell]
		c.requested = d.amount
		c.granted = granted
		c.fraction = granted / d.amount
		report.Demand += d.amount
		report.Granted += granted
		report.Consumers++
	}
	report.Shortfall = report.Demand - report.Granted
	if report.Shortfall < powerEpsilon {
		report.Shortfall = 0
	}

	report.Charged = g.chargeStorage(gens, stores)

	for _, group := range consumerOrder {
		op := opsFor(group)
		for _, i := range g.groups[group] {
			c := &g.cells[i]
			if c.alive && c.connected {
				op.apply(c)
			}
		}
	}

	return report
}

// resetPhase zeroes drawRate on generators and all consumer state so that
// disconnected cells carry nothing from earlier ticks.
func (g *Graph) resetPhase() {
	for _, i := range g.groups[components.CapGeneration] {
		g.cells[i].drawRate = 0
	}
	for _, group := range consumerOrder {
		for _, i := range g.groups[group] {
			c := &g.cells[i]
			c.requested = 0
			c.granted = 0
			c.fraction = 0
			c.effect = 0
		}
	}
}

// connected returns alive, connected cells of a group in insertion order.
func (g *Graph) connected(group components.Capability) []int {
	var out []int
	for _, i := range g.groups[group] {
		if g.cells[i].alive && g.cells[i].connected {
			out = append(out, i)
		}
	}
	return out
}

func (g *Graph) collectDemands(firing bool) []demandEntry {
	var demands []demandEntry
	for _, group := range consumerOrder {
		op := opsFor(group)
		for _, i := range g.groups[group] {
			c := &g.cells[i]
			if !c.alive || !c.connected {
				continue
			}
			if amount := op.demand(c, firing); amount > 0 {
				demands = append(demands, demandEntry{cell: i, amount: amount})
			}
		}
	}
	return demands
}

// allocate satisfies one demand, generators first, storage as last resort.
func (g *Graph) allocate(amount float32, gens, stores []int, report *PowerReport) float32 {
	remaining := amount
	for _, i := range gens {
		if remaining <= powerEpsilon {
			break
		}
		got := g.cells[i].getPower(remaining)
		remaining -= got
		report.FromGeneration += got
	}
	for _, i := range stores {
		if remaining <= powerEpsilon {
			break
		}
		got := g.cells[i].discharge(remaining)
		remaining -= got
		report.FromStorage += got
	}
	if remaining < powerEpsilon {
		remaining = 0
	}
	return amount - remaining
}

// chargeStorage moves leftover generator headroom into storage.
func (g *Graph) chargeStorage(gens, stores []int) float32 {
	var total float32
	for _, gi := range gens {
		gen := &g.cells[gi]
		for _, si := range stores {
			headroom := gen.Headroom()
			if headroom <= powerEpsilon {
				break
			}
			got := g.cells[si].charge(headroom)
			gen.drawRate += got
			total += got
		}
	}
	return total
}
