package telemetry

import (
	"github.com/pthm-cable/hexcraft/components"
)

// SnapshotRow is one cell of one craft at one tick, flattened for CSV.
type SnapshotRow struct {
	Tick       int32   `csv:"tick"`
	CraftID    int     `csv:"craft"`
	Alignment  string  `csv:"alignment"`
	Cell       int     `csv:"cell"`
	Q          int     `csv:"q"`
	R          int     `csv:"r"`
	Capability string  `csv:"capability"`
	Health     float32 `csv:"health"`
	MaxHealth  float32 `csv:"max_health"`
	HealthFrac float32 `csv:"health_frac"`
	Alive      bool    `csv:"alive"`
	Connected  bool    `csv:"connected"`
}

// SnapshotRows flattens a craft's cell views.
func SnapshotRows(tick int32, craftID int, alignment components.Alignment, views []components.CellView) []SnapshotRow {
	rows := make([]SnapshotRow, len(views))
	for i, v := range views {
		rows[i] = SnapshotRow{
			Tick:       tick,
			CraftID:    craftID,
			Alignment:  alignment.String(),
			Cell:       v.Index,
			Q:          v.Pos.Q,
			R:          v.Pos.R,
			Capability: v.Capability.String(),
			Health:     v.Health,
			MaxHealth:  v.MaxHealth,
			HealthFrac: v.HealthFraction(),
			Alive:      v.Alive,
			Connected:  v.Connected,
		}
	}
	return rows
}
