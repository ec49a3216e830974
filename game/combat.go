package game

import (
	"context"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
	"github.com/pthm-cable/hexcraft/telemetry"
)

// Combat tuning
const (
	standoffFraction = 0.6  // Ships back off inside this fraction of engage range
	shotScatter      = 0.25 // Chance a shot lands one hex off its aim point
	wallBounce       = 0.5  // Velocity kept when bouncing off the arena edge
)

// shipSnapshot captures read-only ship state for targeting.
type shipSnapshot struct {
	entity    ecs.Entity
	id        int
	alignment components.Alignment
	pos       components.Position
	ship      *Ship
}

// snapshotShips rebuilds the contact list from the world.
func (s *Skirmish) snapshotShips() []shipSnapshot {
	s.contacts = s.contacts[:0]
	query := s.shipFilter.Query()
	for query.Next() {
		pos, _, _, ship := query.Get()
		s.contacts = append(s.contacts, shipSnapshot{
			entity:    query.Entity(),
			id:        ship.ID,
			alignment: ship.Craft.Alignment(),
			pos:       *pos,
			ship:      ship,
		})
	}
	return s.contacts
}

// nearestFoe returns the closest opposing live ship among candidates (all
// contacts when candidates is nil), or nil. Ties go to the lower ship ID.
func nearestFoe(contacts []shipSnapshot, candidates []int, self int, alignment components.Alignment, pos components.Position) (*shipSnapshot, float32) {
	var best *shipSnapshot
	bestDist := float32(math.MaxFloat32)
	consider := func(c *shipSnapshot) {
		if c.id == self || !alignment.Opposes(c.alignment) || c.ship.Craft.Destroyed() {
			return
		}
		d := distance(pos, c.pos)
		if d < bestDist || (d == bestDist && best != nil && c.id < best.id) {
			best, bestDist = c, d
		}
	}
	if candidates == nil {
		for i := range contacts {
			consider(&contacts[i])
		}
	} else {
		for _, i := range candidates {
			consider(&contacts[i])
		}
	}
	return best, bestDist
}

// findTarget looks for the nearest foe within engage range through the
// contact grid, and scans every contact only when none is that close.
func (s *Skirmish) findTarget(contacts []shipSnapshot, self int, alignment components.Alignment, pos components.Position, engage float32) (*shipSnapshot, float32) {
	s.nearby = s.grid.queryRadiusInto(s.nearby[:0], contacts, pos.X, pos.Y, engage)
	if target, dist := nearestFoe(contacts, s.nearby, self, alignment, pos); target != nil {
		return target, dist
	}
	return nearestFoe(contacts, nil, self, alignment, pos)
}

// updateSteering turns each ship toward its nearest foe, applies thrust from
// the last power distribution and sets firing intent.
func (s *Skirmish) updateSteering() {
	contacts := s.snapshotShips()
	s.grid.rebuild(contacts)
	dt := s.cfg.Derived.DT32
	sim := s.cfg.Simulation
	drag := float32(math.Exp(-sim.Drag * float64(dt)))
	engage := float32(sim.EngageRange)
	turnRate := float32(sim.TurnRate)
	w, h := float32(sim.ArenaWidth), float32(sim.ArenaHeight)

	query := s.shipFilter.Query()
	for query.Next() {
		pos, vel, rot, ship := query.Get()
		c := ship.Craft

		target, dist := s.findTarget(contacts, ship.ID, c.Alignment(), *pos, engage)
		ship.Target = -1
		rot.AngVel = 0
		if target != nil {
			ship.Target = target.id
			want := float32(math.Atan2(float64(target.pos.Y-pos.Y), float64(target.pos.X-pos.X)))
			rot.AngVel = clampf(normalizeAngle(want-rot.Heading)/dt, -turnRate, turnRate)
			rot.Heading = normalizeAngle(rot.Heading + rot.AngVel*dt)
		}

		// Thrust is shared across the craft's surviving mass.
		g := c.Graph()
		mass := float32(sim.ShipMass) * float32(g.Len()-g.Deaths())
		var accel float32
		if mass > 0 {
			accel = c.Thrust() / mass
		}
		if target != nil && dist < engage*standoffFraction {
			accel = -accel
		}
		vel.X += float32(math.Cos(float64(rot.Heading))) * accel * dt
		vel.Y += float32(math.Sin(float64(rot.Heading))) * accel * dt
		vel.X *= drag
		vel.Y *= drag

		pos.X, vel.X = bounce(pos.X+vel.X*dt, vel.X, w)
		pos.Y, vel.Y = bounce(pos.Y+vel.Y*dt, vel.Y, h)

		firing := target != nil && dist <= engage
		if c.Alignment() == components.Friend && s.holdFire {
			firing = false
		}
		if firing {
			c.StartFiring()
		} else {
			c.StopFiring()
		}
	}
}

// updateCrafts advances every craft one tick, then records power in world
// order so telemetry does not depend on worker scheduling.
func (s *Skirmish) updateCrafts() {
	s.parallel.crafts = s.parallel.crafts[:0]
	query := s.shipFilter.Query()
	for query.Next() {
		_, _, _, ship := query.Get()
		s.parallel.crafts = append(s.parallel.crafts, ship.Craft)
	}

	s.parallel.update(s.cfg.Derived.DT32)

	ctx := context.Background()
	for _, c := range s.parallel.crafts {
		s.collector.RecordPower(c.LastPower())
		s.metrics.RecordPower(ctx, c.Alignment(), c.LastPower())
	}
}

// updateWeapons resolves this tick's shots. Each shot aims at a random alive
// cell of the shooter's target and may scatter one hex off.
func (s *Skirmish) updateWeapons() {
	contacts := s.snapshotShips()
	byID := make(map[int]*shipSnapshot, len(contacts))
	for i := range contacts {
		byID[contacts[i].id] = &contacts[i]
	}
	engage := float32(s.cfg.Simulation.EngageRange)

	for i := range contacts {
		shooter := &contacts[i]
		c := shooter.ship.Craft
		for _, shot := range c.Shots() {
			s.record(telemetry.NewShotEvent(s.tick, shooter.id, c.Alignment(), shot.Damage))

			target, ok := byID[shooter.ship.Target]
			if !ok || target.ship.Craft.Destroyed() || distance(shooter.pos, target.pos) > engage {
				continue
			}
			aim, ok := s.aimPoint(target)
			if !ok {
				continue
			}
			res := target.ship.Craft.ApplyDamageAt(aim, shot.Damage)
			s.record(telemetry.NewHitEvent(s.tick, shooter.id, c.Alignment(), target.id, res))
			if target.ship.Craft.Destroyed() {
				s.lifetime.RecordKill(shooter.id)
				s.logger.Info("craft destroyed",
					"tick", s.tick,
					"craft", target.id,
					"alignment", target.alignment,
					"by", shooter.id,
				)
			}
		}
	}
}

// aimPoint picks a random alive cell of the target, scattered one hex off
// with probability shotScatter.
func (s *Skirmish) aimPoint(target *shipSnapshot) (hex.Coord, bool) {
	views := target.ship.Craft.Snapshot()
	alive := 0
	for _, v := range views {
		if v.Alive {
			alive++
		}
	}
	if alive == 0 {
		return hex.Coord{}, false
	}
	n := s.rng.Intn(alive)
	var aim hex.Coord
	for _, v := range views {
		if !v.Alive {
			continue
		}
		if n == 0 {
			aim = v.Pos
			break
		}
		n--
	}
	if s.rng.Float32() < shotScatter {
		aim = aim.Neighbor(s.rng.Intn(6))
	}
	return aim, true
}

func (s *Skirmish) record(ev telemetry.Event) {
	s.collector.Record(ev)
	s.lifetime.Record(ev)
	s.metrics.Record(context.Background(), ev)
}

// cleanupDestroyed removes ships whose core has died.
func (s *Skirmish) cleanupDestroyed() {
	// First pass: collect destroyed ships (must complete before modifying)
	type lostInfo struct {
		entity    ecs.Entity
		id        int
		alignment components.Alignment
	}
	var toRemove []lostInfo

	query := s.shipFilter.Query()
	for query.Next() {
		_, _, _, ship := query.Get()
		if ship.Craft.Destroyed() {
			toRemove = append(toRemove, lostInfo{entity: query.Entity(), id: ship.ID, alignment: ship.Craft.Alignment()})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, lost := range toRemove {
		s.record(telemetry.NewCraftLostEvent(s.tick, lost.id, lost.alignment))

		s.lifetime.UpdateSurvivalTime(lost.id, s.tick, s.cfg.Derived.DT32)
		if ls := s.lifetime.Remove(lost.id); ls != nil {
			s.finishCraft(ls, true)
		}

		s.world.RemoveEntity(lost.entity)
		if lost.alignment == components.Friend {
			s.friends--
		} else {
			s.foes--
		}
	}
	if len(toRemove) > 0 {
		s.metrics.SetFleets(s.friends, s.foes)
	}
}

func distance(a, b components.Position) float32 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func clampf(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}

// bounce keeps a coordinate inside [0, limit], reflecting velocity at walls.
func bounce(p, v, limit float32) (float32, float32) {
	switch {
	case p < 0:
		return 0, -v * wallBounce
	case p > limit:
		return limit, -v * wallBounce
	}
	return p, v
}
