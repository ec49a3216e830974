package cells

import "github.com/pthm-cable/hexcraft/components"

// capabilityOps is the behavior table entry for one capability. Nil entries
// mean the capability takes no part in that phase.
type capabilityOps struct {
	// demand returns the power a connected cell requests this tick.
	demand func(c *Cell, firing bool) float32
	// apply sets the cell's effect from its satisfied fraction.
	apply func(c *Cell)
	// step advances capability state once per tick after regeneration.
	step func(c *Cell, dt float32)
}

var ops = [components.NumCapabilities]capabilityOps{
	components.CapCore:       {},
	components.CapGeneration: {},
	components.CapStorage:    {},
	components.CapPropulsion: {
		demand: constantDemand,
		apply:  scaleEffect,
	},
	components.CapShield: {
		demand: constantDemand,
		apply:  scaleEffect,
	},
	components.CapWeapon: {
		demand: weaponDemand,
		apply:  weaponApply,
		step:   weaponStep,
	},
	components.CapArmor: {},
}

func opsFor(c components.Capability) *capabilityOps {
	if !c.Valid() {
		panic("cells: unknown capability " + c.String())
	}
	return &ops[c]
}

func constantDemand(c *Cell, _ bool) float32 {
	return c.demand
}

func weaponDemand(c *Cell, firing bool) float32 {
	if !firing {
		return 0
	}
	return c.demand
}

// scaleEffect gives partial output for partial power.
func scaleEffect(c *Cell) {
	c.effect = c.maxEffect * c.fraction
}

// weaponApply records the fire-rate multiplier; shots are emitted in step.
func weaponApply(c *Cell) {
	c.effect = c.fraction
}

// weaponStep advances the firing cycle by dt scaled by the power fraction and
// emits a shot each time the cycle completes. Unpowered weapons hold their cycle.
func weaponStep(c *Cell, dt float32) {
	c.shots = 0
	if c.effect <= 0 || c.fireInterval <= 0 {
		return
	}
	c.cycle += dt * c.effect
	for c.cycle >= c.fireInterval {
		c.cycle -= c.fireInterval
		c.shots++
	}
}

// regenerate restores health at the cell's regen rate.
func regenerate(c *Cell, dt float32) {
	if c.regenRate <= 0 || c.health >= c.maxHealth {
		return
	}
	c.health = min(c.health+c.regenRate*dt, c.maxHealth)
}
