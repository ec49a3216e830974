package components

import "github.com/pthm-cable/hexcraft/hex"

// CellView is the read-only per-cell state handed to renderers and
// serializers. It carries no power internals.
type CellView struct {
	Index      int
	Pos        hex.Coord
	Capability Capability
	Health     float32
	MaxHealth  float32
	Alive      bool
	Connected  bool
}

// HealthFraction returns health/maxHealth in [0, 1].
func (v CellView) HealthFraction() float32 {
	if v.MaxHealth <= 0 {
		return 0
	}
	return v.Health / v.MaxHealth
}
