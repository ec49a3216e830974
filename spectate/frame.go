package spectate

import (
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/game"
)

// CellFrame is one cell as seen by spectators.
type CellFrame struct {
	Q          int                   `json:"q"`
	R          int                   `json:"r"`
	Capability components.Capability `json:"capability"`
	Health     float32               `json:"health"`
	Alive      bool                  `json:"alive"`
	Connected  bool                  `json:"connected"`
}

// ShipFrame is one ship as seen by spectators.
type ShipFrame struct {
	ID           int                  `json:"id"`
	Layout       string               `json:"layout"`
	Alignment    components.Alignment `json:"alignment"`
	X            float32              `json:"x"`
	Y            float32              `json:"y"`
	Heading      float32              `json:"heading"`
	Viability    float32              `json:"viability"`
	Firing       bool                 `json:"firing"`
	Satisfaction float32              `json:"satisfaction"`
	Cells        []CellFrame          `json:"cells"`
}

// Frame is the full arena state for one tick.
type Frame struct {
	Friends int         `json:"friends"`
	Foes    int         `json:"foes"`
	Ships   []ShipFrame `json:"ships"`
}

// NewFrame builds a frame from ship views.
func NewFrame(ships []game.ShipView) Frame {
	f := Frame{Ships: make([]ShipFrame, 0, len(ships))}
	for _, v := range ships {
		if v.Alignment == components.Friend {
			f.Friends++
		} else {
			f.Foes++
		}
		sf := ShipFrame{
			ID:           v.ID,
			Layout:       v.Layout,
			Alignment:    v.Alignment,
			X:            v.Pos.X,
			Y:            v.Pos.Y,
			Heading:      v.Heading,
			Viability:    v.Viability,
			Firing:       v.Firing,
			Satisfaction: v.Power.Satisfaction(),
			Cells:        make([]CellFrame, len(v.Cells)),
		}
		for i, c := range v.Cells {
			sf.Cells[i] = CellFrame{
				Q:          c.Pos.Q,
				R:          c.Pos.R,
				Capability: c.Capability,
				Health:     c.Health,
				Alive:      c.Alive,
				Connected:  c.Connected,
			}
		}
		f.Ships = append(f.Ships, sf)
	}
	return f
}

// Broadcaster publishes skirmish frames to a hub every few ticks.
type Broadcaster struct {
	hub   *Hub
	every int32
	last  int32
	done  bool
}

// NewBroadcaster publishes one frame per every ticks (at least 1).
func NewBroadcaster(hub *Hub, every int32) *Broadcaster {
	return &Broadcaster{hub: hub, every: max(every, 1)}
}

// Observe publishes the current frame once every ticks have passed since
// the last one, and the outcome once when the skirmish is over. Nothing is
// encoded without spectators.
func (b *Broadcaster) Observe(s *game.Skirmish) error {
	if b.done || b.hub.Clients() == 0 {
		return nil
	}
	tick := s.Tick()
	if s.Done() {
		b.done = true
		_, err := b.hub.Publish(TypeOutcome, tick, s.Outcome())
		return err
	}
	if tick-b.last < b.every {
		return nil
	}
	b.last = tick
	_, err := b.hub.Publish(TypeFrame, tick, NewFrame(s.Ships()))
	return err
}
