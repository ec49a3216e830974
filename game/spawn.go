package game

import (
	"fmt"
	"math"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/craft"
)

// layoutProcedural names generated layouts in telemetry.
const layoutProcedural = "procedural"

// spawnFleets creates every fleet listed in the skirmish config. Friends
// enter on the left third of the arena, foes on the right third.
func (s *Skirmish) spawnFleets() error {
	for _, fleet := range s.cfg.Skirmish.Fleets {
		var alignment components.Alignment
		if err := alignment.UnmarshalText([]byte(fleet.Alignment)); err != nil {
			return fmt.Errorf("fleet %q: %w", fleet.Blueprint, err)
		}
		for range fleet.Count {
			if err := s.spawnShip(fleet, alignment); err != nil {
				return err
			}
		}
	}
	s.logger.Info("fleets spawned", "friends", s.friends, "foes", s.foes)
	return nil
}

// spawnShip assembles one craft and adds it to the world.
func (s *Skirmish) spawnShip(fleet config.FleetConfig, alignment components.Alignment) error {
	id := s.nextID
	s.nextID++

	var (
		c      *craft.Craft
		err    error
		layout = fleet.Blueprint
	)
	if fleet.Blueprint == "" {
		layout = layoutProcedural
		c, err = craft.Procedural(id, s.rng, s.cfg, alignment)
	} else {
		bp, ok := s.cfg.Blueprint(fleet.Blueprint)
		if !ok {
			return fmt.Errorf("fleet references unknown blueprint %q", fleet.Blueprint)
		}
		c, err = craft.FromBlueprint(id, bp, s.cfg, alignment)
	}
	if err != nil {
		return fmt.Errorf("spawning %s craft %d: %w", alignment, id, err)
	}
	c.SetLogger(s.logger)

	w := float32(s.cfg.Simulation.ArenaWidth)
	h := float32(s.cfg.Simulation.ArenaHeight)
	x := w/6 + s.rng.Float32()*w/6
	heading := float32(0)
	if alignment == components.Foe {
		x = w - x
		heading = math.Pi
	}
	y := h*0.1 + s.rng.Float32()*h*0.8

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: heading}
	ship := Ship{ID: id, Layout: layout, Craft: c, Target: -1}
	s.shipMapper.NewEntity(&pos, &vel, &rot, &ship)

	s.lifetime.Register(id, s.tick, alignment, layout)
	if alignment == components.Friend {
		s.friends++
	} else {
		s.foes++
	}
	return nil
}
