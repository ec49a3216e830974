package cells

import (
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/hex"
)

// DamageRules controls how a hit is routed through a craft.
type DamageRules struct {
	ArmorRadius  int // Armor within this many hexes of the impact intercepts the hit
	SplashRadius int // A hit on an empty hex lands on the nearest alive cell within this distance
}

// DefaultDamageRules intercepts with adjacent armor and lets near misses land
// on an adjacent cell.
var DefaultDamageRules = DamageRules{ArmorRadius: 1, SplashRadius: 1}

// RulesFromConfig converts the damage section of the config.
func RulesFromConfig(c config.DamageConfig) DamageRules {
	return DamageRules{ArmorRadius: c.ArmorRadius, SplashRadius: c.SplashRadius}
}

// HitResult describes where a hit's damage went.
type HitResult struct {
	Target   int     // Cell struck, -1 on a miss
	Armor    int     // Armor cell that intercepted, -1 if none
	Shielded float32 // Absorbed by shield pools
	Armored  float32 // Taken by the intercepting armor cell
	Hull     float32 // Taken by the target cell
	Killed   []int   // Cells destroyed by this hit
}

// Absorbed returns the total damage accounted for.
func (h HitResult) Absorbed() float32 {
	return h.Shielded + h.Armored + h.Hull
}

// Missed reports whether no cell was in reach of the impact.
func (h HitResult) Missed() bool {
	return h.Target < 0
}

// ApplyHit routes damage landing at point: connected shield pools absorb
// first, then the nearest alive armor cell near the impact, then the targeted
// cell. Damage left after the target dies is lost.
func (g *Graph) ApplyHit(point hex.Coord, amount float32, rules DamageRules) HitResult {
	res := HitResult{Target: -1, Armor: -1}
	if amount <= 0 {
		return res
	}

	target := g.nearestAlive(point, rules.SplashRadius, func(*Cell) bool { return true })
	if target < 0 {
		return res
	}
	res.Target = target
	remaining := amount

	for _, i := range g.groups[components.CapShield] {
		if remaining <= 0 {
			break
		}
		c := &g.cells[i]
		if !c.alive || !c.connected || c.effect <= 0 {
			continue
		}
		absorbed := min(c.effect, remaining)
		c.effect -= absorbed
		remaining -= absorbed
		res.Shielded += absorbed
	}

	if remaining > 0 && g.cells[target].capability != components.CapArmor {
		armor := g.nearestAlive(point, rules.ArmorRadius, func(c *Cell) bool {
			return c.capability == components.CapArmor
		})
		if armor >= 0 {
			res.Armor = armor
			dealt := g.hit(armor, remaining, &res)
			res.Armored = dealt
			remaining -= dealt
		}
	}

	if remaining > 0 {
		res.Hull = g.hit(target, remaining, &res)
	}
	return res
}

func (g *Graph) hit(i int, amount float32, res *HitResult) float32 {
	wasAlive := g.cells[i].alive
	dealt := g.DamageCell(i, amount)
	if wasAlive && !g.cells[i].alive {
		res.Killed = append(res.Killed, i)
	}
	return dealt
}

// nearestAlive returns the alive cell closest to point within radius that
// satisfies match, preferring the lower index on ties. Returns -1 if none.
func (g *Graph) nearestAlive(point hex.Coord, radius int, match func(*Cell) bool) int {
	if i, ok := g.byPos[point]; ok && g.cells[i].alive && match(&g.cells[i]) {
		return i
	}
	best, bestDist := -1, radius+1
	for i := range g.cells {
		c := &g.cells[i]
		if !c.alive || !match(c) {
			continue
		}
		if d := hex.Distance(point, c.pos); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
