// Package components defines the plain data shared between the cell core,
// the skirmish world and external renderers.
package components

// Capability is the functional role of a cell. The order is the per-tick
// update order: Core first, producers before consumers, Armor last.
type Capability uint8

const (
	CapCore       Capability = iota // Root of connectivity; its loss destroys the craft
	CapGeneration                   // Produces power each tick
	CapStorage                      // Buffers power; charged from surplus, discharged on deficit
	CapPropulsion                   // Consumes power for thrust
	CapShield                       // Consumes power for damage absorption
	CapWeapon                       // Consumes power while firing
	CapArmor                        // No power role; soaks damage near impacts

	NumCapabilities int = iota
)

// Consumes reports whether cells of this capability request power.
func (c Capability) Consumes() bool {
	return c == CapPropulsion || c == CapShield || c == CapWeapon
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	return int(c) < NumCapabilities
}

// Alignment distinguishes the player's side from enemies.
type Alignment uint8

const (
	Friend Alignment = iota // Flown by the player or allies
	Foe                     // Enemy fighter
)

// Opposes reports whether a and o are on different sides.
func (a Alignment) Opposes(o Alignment) bool {
	return a != o
}
