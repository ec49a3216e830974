// Package telemetry provides skirmish statistics, per-craft lifetime tracking,
// cell snapshots and CSV export.
package telemetry

import (
	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventShot EventType = iota
	EventHit
	EventMiss
	EventCraftLost
)

// Event represents a single combat event.
type Event struct {
	Type      EventType
	Tick      int32
	CraftID   int
	Alignment components.Alignment

	// Optional fields depending on event type
	TargetID  int     // hit/miss events
	Amount    float32 // shot damage, or total damage routed by a hit
	Shielded  float32
	Armored   float32
	Hull      float32
	CellsLost int
}

// NewShotEvent records a projectile released by a craft.
func NewShotEvent(tick int32, craftID int, alignment components.Alignment, damage float32) Event {
	return Event{
		Type:      EventShot,
		Tick:      tick,
		CraftID:   craftID,
		Alignment: alignment,
		Amount:    damage,
	}
}

// NewHitEvent records where a shot's damage went on the target. A hit that
// found no cell in reach becomes a miss.
func NewHitEvent(tick int32, shooterID int, alignment components.Alignment, targetID int, res cells.HitResult) Event {
	ev := Event{
		Type:      EventHit,
		Tick:      tick,
		CraftID:   shooterID,
		Alignment: alignment,
		TargetID:  targetID,
		Amount:    res.Absorbed(),
		Shielded:  res.Shielded,
		Armored:   res.Armored,
		Hull:      res.Hull,
		CellsLost: len(res.Killed),
	}
	if res.Missed() {
		ev.Type = EventMiss
	}
	return ev
}

// NewCraftLostEvent records a craft whose core died.
func NewCraftLostEvent(tick int32, craftID int, alignment components.Alignment) Event {
	return Event{
		Type:      EventCraftLost,
		Tick:      tick,
		CraftID:   craftID,
		Alignment: alignment,
	}
}
