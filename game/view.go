package game

import (
	"math"

	"github.com/pthm-cable/hexcraft/cells"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/hex"
)

// ShipView is the read-only state of one ship handed to renderers.
type ShipView struct {
	ID        int
	Layout    string
	Alignment components.Alignment
	Pos       components.Position
	Heading   float32
	Viability float32
	Firing    bool
	Target    int // ID of the foe being chased, -1 if none
	Thrust    float32
	Shield    float32
	Power     cells.PowerReport
	Cells     []components.CellView
}

// Ships returns a view of every ship in the world.
func (s *Skirmish) Ships() []ShipView {
	var out []ShipView
	query := s.shipFilter.Query()
	for query.Next() {
		pos, _, rot, ship := query.Get()
		c := ship.Craft
		out = append(out, ShipView{
			ID:        ship.ID,
			Layout:    ship.Layout,
			Alignment: c.Alignment(),
			Pos:       *pos,
			Heading:   rot.Heading,
			Viability: c.Viability(),
			Firing:    c.Firing(),
			Target:    ship.Target,
			Thrust:    c.Thrust(),
			Shield:    c.ShieldPool(),
			Power:     c.LastPower(),
			Cells:     c.Snapshot(),
		})
	}
	return out
}

// CellWorld returns the world position of a cell at c, with the ship's
// layout rotated by its heading around the core.
func (v ShipView) CellWorld(c hex.Coord, hexSize float32) (x, y float32) {
	lx, ly := hex.ToPixel(c, hexSize)
	sin, cos := math.Sincos(float64(v.Heading))
	x = v.Pos.X + lx*float32(cos) - ly*float32(sin)
	y = v.Pos.Y + lx*float32(sin) + ly*float32(cos)
	return x, y
}

// ShipAt returns the ship with an alive cell closest to (x, y), if any
// alive cell lies within one hex of the point.
func (s *Skirmish) ShipAt(x, y, hexSize float32) (ShipView, bool) {
	var best ShipView
	found := false
	bestDist := hexSize * hexSize
	for _, v := range s.Ships() {
		for _, c := range v.Cells {
			if !c.Alive {
				continue
			}
			cx, cy := v.CellWorld(c.Pos, hexSize)
			d := (cx-x)*(cx-x) + (cy-y)*(cy-y)
			if d <= bestDist {
				bestDist = d
				best = v
				found = true
			}
		}
	}
	return best, found
}

// Ship returns the view of the ship with the given id.
func (s *Skirmish) Ship(id int) (ShipView, bool) {
	for _, v := range s.Ships() {
		if v.ID == id {
			return v, true
		}
	}
	return ShipView{}, false
}

// Result summarizes the state of both fleets.
type Result struct {
	Ticks           int32
	Friends         int
	Foes            int
	FriendViability float64 // Summed over surviving friends
	FoeViability    float64 // Summed over surviving foes
}

// Outcome reports the current standing of the skirmish.
func (s *Skirmish) Outcome() Result {
	r := Result{Ticks: s.tick, Friends: s.friends, Foes: s.foes}
	query := s.shipFilter.Query()
	for query.Next() {
		_, _, _, ship := query.Get()
		v := float64(ship.Craft.Viability())
		if ship.Craft.Alignment() == components.Friend {
			r.FriendViability += v
		} else {
			r.FoeViability += v
		}
	}
	return r
}

// Run steps until one side is gone or maxTicks is reached (0 = unlimited).
func (s *Skirmish) Run(maxTicks int32) Result {
	for !s.Done() && (maxTicks <= 0 || s.tick < maxTicks) {
		s.Step()
	}
	return s.Outcome()
}
