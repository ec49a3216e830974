// Package renderer draws the skirmish arena and its crafts with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/camera"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/game"
)

// Base colors per capability, indexed by components.Capability.
var capabilityColors = [components.NumCapabilities]rl.Color{
	components.CapCore:       {R: 240, G: 240, B: 240, A: 255},
	components.CapGeneration: {R: 250, G: 200, B: 60, A: 255},
	components.CapStorage:    {R: 90, G: 200, B: 220, A: 255},
	components.CapPropulsion: {R: 240, G: 130, B: 50, A: 255},
	components.CapShield:     {R: 90, G: 130, B: 250, A: 255},
	components.CapWeapon:     {R: 230, G: 60, B: 60, A: 255},
	components.CapArmor:      {R: 140, G: 140, B: 150, A: 255},
}

var (
	friendOutline = rl.Color{R: 100, G: 220, B: 120, A: 255}
	foeOutline    = rl.Color{R: 220, G: 90, B: 90, A: 255}
	deadCell      = rl.Color{R: 50, G: 50, B: 55, A: 160}
)

// CellColor returns the fill color for a cell. Damaged cells darken with
// lost health and disconnected cells are drawn at half alpha.
func CellColor(v components.CellView) rl.Color {
	if !v.Alive {
		return deadCell
	}
	c := capabilityColors[v.Capability]
	shade := 0.35 + 0.65*v.HealthFraction()
	c.R = uint8(float32(c.R) * shade)
	c.G = uint8(float32(c.G) * shade)
	c.B = uint8(float32(c.B) * shade)
	if !v.Connected {
		c.A = 110
	}
	return c
}

// CraftRenderer draws ships as rotated hex layouts.
type CraftRenderer struct {
	hexSize float32
}

// NewCraftRenderer creates a renderer for hexes of the given circumradius.
func NewCraftRenderer(hexSize float32) *CraftRenderer {
	return &CraftRenderer{hexSize: hexSize}
}

// Draw renders every visible ship. The selected ship, if any, is ringed.
func (r *CraftRenderer) Draw(ships []game.ShipView, cam *camera.Camera, selected int) {
	for i := range ships {
		v := &ships[i]
		if !cam.IsVisible(v.Pos.X, v.Pos.Y, r.hexSize*8) {
			continue
		}
		r.drawShip(v, cam, v.ID == selected)
	}
}

func (r *CraftRenderer) drawShip(v *game.ShipView, cam *camera.Camera, selected bool) {
	size := r.hexSize * cam.Zoom
	// Pointy-top hexes are rotated 30 degrees from raylib's flat polygon.
	rotation := 30 + v.Heading*180/math.Pi

	outline := friendOutline
	if v.Alignment == components.Foe {
		outline = foeOutline
	}

	for _, cell := range v.Cells {
		wx, wy := v.CellWorld(cell.Pos, r.hexSize)
		sx, sy := cam.WorldToScreen(wx, wy)
		center := rl.Vector2{X: sx, Y: sy}
		rl.DrawPoly(center, 6, size*0.92, rotation, CellColor(cell))
		if cell.Alive {
			rl.DrawPolyLines(center, 6, size, rotation, outline)
		}
	}

	sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
	if v.Firing {
		// Muzzle marker ahead of the core
		fx := sx + float32(math.Cos(float64(v.Heading)))*size*3
		fy := sy + float32(math.Sin(float64(v.Heading)))*size*3
		rl.DrawCircleV(rl.Vector2{X: fx, Y: fy}, size*0.25, rl.Yellow)
	}
	if selected {
		rl.DrawCircleLines(int32(sx), int32(sy), size*5, rl.Yellow)
	}
}
