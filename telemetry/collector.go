package telemetry

import (
	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Combat counters for current window
	shots       int
	hits        int
	misses      int
	shielded    float64
	armored     float64
	hull        float64
	cellsLost   int
	friendsLost int
	foesLost    int

	// Power totals for current window
	demand       float64
	granted      float64
	fromStorage  float64
	charged      float64
	satisfaction []float64 // one sample per craft per tick
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one combat event to the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventShot:
		c.shots++
	case EventHit:
		c.hits++
		c.shielded += float64(ev.Shielded)
		c.armored += float64(ev.Armored)
		c.hull += float64(ev.Hull)
		c.cellsLost += ev.CellsLost
	case EventMiss:
		c.misses++
	case EventCraftLost:
		if ev.Alignment == components.Friend {
			c.friendsLost++
		} else {
			c.foesLost++
		}
	}
}

// RecordPower adds one craft's power report for the current tick.
func (c *Collector) RecordPower(r cells.PowerReport) {
	c.demand += float64(r.Demand)
	c.granted += float64(r.Granted)
	c.fromStorage += float64(r.FromStorage)
	c.charged += float64(r.Charged)
	c.satisfaction = append(c.satisfaction, float64(r.Satisfaction()))
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// The caller provides the fleet sizes at window end and the viability
// (health / full health) of every surviving craft.
func (c *Collector) Flush(currentTick int32, friends, foes int, viability []float64) WindowStats {
	var hitRate float64
	if resolved := c.hits + c.misses; resolved > 0 {
		hitRate = float64(c.hits) / float64(resolved)
	}

	satMean, satStd, satP10, satP50, satP90 := ComputeStats(c.satisfaction)
	vMean, _, vP10, vP50, vP90 := ComputeStats(viability)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Friends: friends,
		Foes:    foes,

		Shots:       c.shots,
		Hits:        c.hits,
		Misses:      c.misses,
		HitRate:     hitRate,
		Shielded:    c.shielded,
		Armored:     c.armored,
		Hull:        c.hull,
		CellsLost:   c.cellsLost,
		FriendsLost: c.friendsLost,
		FoesLost:    c.foesLost,

		PowerDemand:      c.demand,
		PowerGranted:     c.granted,
		PowerFromStorage: c.fromStorage,
		PowerCharged:     c.charged,

		SatisfactionMean: satMean,
		SatisfactionStd:  satStd,
		SatisfactionP10:  satP10,
		SatisfactionP50:  satP50,
		SatisfactionP90:  satP90,

		ViabilityMean: vMean,
		ViabilityP10:  vP10,
		ViabilityP50:  vP50,
		ViabilityP90:  vP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.shots = 0
	c.hits = 0
	c.misses = 0
	c.shielded = 0
	c.armored = 0
	c.hull = 0
	c.cellsLost = 0
	c.friendsLost = 0
	c.foesLost = 0
	c.demand = 0
	c.granted = 0
	c.fromStorage = 0
	c.charged = 0
	c.satisfaction = c.satisfaction[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
