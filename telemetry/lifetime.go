package telemetry

import "github.com/pthm-cable/hexcraft/components"

// LifetimeStats tracks per-craft statistics from spawn to removal.
type LifetimeStats struct {
	CraftID   int
	Alignment components.Alignment
	Layout    string // Blueprint name, or "procedural"

	SpawnTick       int32
	SurvivalTimeSec float32

	ShotsFired  int
	Hits        int
	DamageDealt float32
	DamageTaken float32
	Kills       int
	CellsLost   int
}

// LifetimeTracker manages per-craft lifetime statistics.
type LifetimeTracker struct {
	stats map[int]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[int]*LifetimeStats),
	}
}

// Register creates lifetime stats for a newly spawned craft.
func (lt *LifetimeTracker) Register(craftID int, spawnTick int32, alignment components.Alignment, layout string) {
	lt.stats[craftID] = &LifetimeStats{
		CraftID:   craftID,
		Alignment: alignment,
		Layout:    layout,
		SpawnTick: spawnTick,
	}
}

// Get returns the lifetime stats for a craft, or nil if not found.
func (lt *LifetimeTracker) Get(craftID int) *LifetimeStats {
	return lt.stats[craftID]
}

// Remove removes a craft's stats and returns them.
func (lt *LifetimeTracker) Remove(craftID int) *LifetimeStats {
	stats := lt.stats[craftID]
	delete(lt.stats, craftID)
	return stats
}

// Record folds a combat event into the shooter's and target's stats.
func (lt *LifetimeTracker) Record(ev Event) {
	switch ev.Type {
	case EventShot:
		if s := lt.stats[ev.CraftID]; s != nil {
			s.ShotsFired++
		}
	case EventHit:
		dealt := ev.Armored + ev.Hull
		if s := lt.stats[ev.CraftID]; s != nil {
			s.Hits++
			s.DamageDealt += dealt
		}
		if s := lt.stats[ev.TargetID]; s != nil {
			s.DamageTaken += dealt
			s.CellsLost += ev.CellsLost
		}
	}
}

// RecordKill credits a craft with destroying another craft's core.
func (lt *LifetimeTracker) RecordKill(craftID int) {
	if s := lt.stats[craftID]; s != nil {
		s.Kills++
	}
}

// UpdateSurvivalTime updates the survival time based on current tick.
func (lt *LifetimeTracker) UpdateSurvivalTime(craftID int, currentTick int32, dt float32) {
	if s := lt.stats[craftID]; s != nil {
		s.SurvivalTimeSec = float32(currentTick-s.SpawnTick) * dt
	}
}

// All returns all tracked stats.
func (lt *LifetimeTracker) All() map[int]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked crafts.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// LifetimeRow is the flat CSV form of LifetimeStats.
type LifetimeRow struct {
	CraftID         int     `csv:"craft"`
	Alignment       string  `csv:"alignment"`
	Layout          string  `csv:"layout"`
	SpawnTick       int32   `csv:"spawn_tick"`
	SurvivalTimeSec float32 `csv:"survival_time"`
	Destroyed       bool    `csv:"destroyed"`
	ShotsFired      int     `csv:"shots_fired"`
	Hits            int     `csv:"hits"`
	DamageDealt     float32 `csv:"damage_dealt"`
	DamageTaken     float32 `csv:"damage_taken"`
	Kills           int     `csv:"kills"`
	CellsLost       int     `csv:"cells_lost"`
}

// ToRow converts LifetimeStats to its CSV form.
func (ls *LifetimeStats) ToRow(destroyed bool) LifetimeRow {
	return LifetimeRow{
		CraftID:         ls.CraftID,
		Alignment:       ls.Alignment.String(),
		Layout:          ls.Layout,
		SpawnTick:       ls.SpawnTick,
		SurvivalTimeSec: ls.SurvivalTimeSec,
		Destroyed:       destroyed,
		ShotsFired:      ls.ShotsFired,
		Hits:            ls.Hits,
		DamageDealt:     ls.DamageDealt,
		DamageTaken:     ls.DamageTaken,
		Kills:           ls.Kills,
		CellsLost:       ls.CellsLost,
	}
}
