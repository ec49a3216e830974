package craft

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/hex"
)

// ErrUnknownCapability is returned when a layout names a capability that
// does not exist.
var ErrUnknownCapability = errors.New("unknown capability")

// Placement puts one capability at one hex.
type Placement struct {
	Pos        hex.Coord
	Capability components.Capability
}

// BuildGraph assembles a cell graph from placements using the per-capability
// templates in stats.
func BuildGraph(placements []Placement, stats *config.CellsConfig) (*cells.Graph, error) {
	specs := make([]cells.Spec, 0, len(placements))
	for _, p := range placements {
		if !p.Capability.Valid() {
			return nil, fmt.Errorf("cell at %v: %w %d", p.Pos, ErrUnknownCapability, p.Capability)
		}
		specs = append(specs, cells.SpecFromStats(p.Pos, p.Capability, stats.For(p.Capability)))
	}
	g, err := cells.NewGraph(specs)
	if err != nil {
		return nil, fmt.Errorf("assembling graph: %w", err)
	}
	return g, nil
}

// BlueprintPlacements converts a YAML layout into placements.
func BlueprintPlacements(bp config.BlueprintConfig) ([]Placement, error) {
	out := make([]Placement, 0, len(bp.Cells))
	for _, bc := range bp.Cells {
		capability, err := components.ParseCapability(bc.Type)
		if err != nil {
			return nil, fmt.Errorf("blueprint %q at (%d,%d): %w: %q", bp.Name, bc.Q, bc.R, ErrUnknownCapability, bc.Type)
		}
		out = append(out, Placement{Pos: hex.Coord{Q: bc.Q, R: bc.R}, Capability: capability})
	}
	return out, nil
}

// FromBlueprint assembles a craft from a named layout.
func FromBlueprint(id int, bp config.BlueprintConfig, cfg *config.Config, alignment components.Alignment) (*Craft, error) {
	placements, err := BlueprintPlacements(bp)
	if err != nil {
		return nil, err
	}
	g, err := BuildGraph(placements, &cfg.Cells)
	if err != nil {
		return nil, fmt.Errorf("blueprint %q: %w", bp.Name, err)
	}
	c := New(id, g, alignment)
	c.SetDamageRules(cells.RulesFromConfig(cfg.Damage))
	return c, nil
}

// Procedural assembles a craft from a generated layout.
func Procedural(id int, rng *rand.Rand, cfg *config.Config, alignment components.Alignment) (*Craft, error) {
	placements, err := Generate(rng, cfg.Generator)
	if err != nil {
		return nil, err
	}
	g, err := BuildGraph(placements, &cfg.Cells)
	if err != nil {
		return nil, fmt.Errorf("generated layout: %w", err)
	}
	c := New(id, g, alignment)
	c.SetDamageRules(cells.RulesFromConfig(cfg.Damage))
	return c, nil
}

// Generate grows a layout outward from a core at the origin. Each hex of the
// spiral up to gen.Rings is filled with probability gen.Fill, but only when it
// touches a hex already placed, so every cell starts connected. Capabilities
// are drawn from gen.Weights. A layout always carries at least one generator.
func Generate(rng *rand.Rand, gen config.GeneratorConfig) ([]Placement, error) {
	weights, err := parseWeights(gen.Weights)
	if err != nil {
		return nil, err
	}

	placements := []Placement{{Pos: hex.Origin, Capability: components.CapCore}}
	occupied := map[hex.Coord]bool{hex.Origin: true}

	for _, pos := range hex.Spiral(hex.Origin, gen.Rings)[1:] {
		if !touches(pos, occupied) || rng.Float64() >= gen.Fill {
			continue
		}
		placements = append(placements, Placement{Pos: pos, Capability: pick(rng, weights)})
		occupied[pos] = true
	}

	ensureGenerator(placements)
	if len(placements) == 1 {
		// Nothing grew; fall back to a single generator beside the core.
		placements = append(placements, Placement{Pos: hex.Directions[0], Capability: components.CapGeneration})
	}
	return placements, nil
}

// parseWeights maps weight names onto capabilities. The core is placed
// explicitly and may not be weighted.
func parseWeights(named map[string]float64) ([components.NumCapabilities]float64, error) {
	var weights [components.NumCapabilities]float64
	var total float64
	for name, w := range named {
		capability, err := components.ParseCapability(name)
		if err != nil {
			return weights, fmt.Errorf("generator weight %q: %w", name, ErrUnknownCapability)
		}
		if capability == components.CapCore {
			return weights, fmt.Errorf("generator weight %q: core cannot be weighted", name)
		}
		if w < 0 {
			return weights, fmt.Errorf("generator weight %q: negative weight %v", name, w)
		}
		weights[capability] = w
		total += w
	}
	if total <= 0 {
		weights[components.CapGeneration] = 1
	}
	return weights, nil
}

// pick draws a capability proportionally to its weight. Iteration follows
// capability order so a seeded rng gives the same layout every run.
func pick(rng *rand.Rand, weights [components.NumCapabilities]float64) components.Capability {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	last := components.CapGeneration
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = components.Capability(i)
		if r < w {
			return last
		}
		r -= w
	}
	return last
}

func touches(pos hex.Coord, occupied map[hex.Coord]bool) bool {
	for _, n := range pos.Neighbors() {
		if occupied[n] {
			return true
		}
	}
	return false
}

// ensureGenerator converts the first placed cell into a generator when none
// was drawn.
func ensureGenerator(placements []Placement) {
	for _, p := range placements {
		if p.Capability == components.CapGeneration {
			return
		}
	}
	if len(placements) > 1 {
		placements[1].Capability = components.CapGeneration
	}
}
