package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/camera"
	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/game"
)

var (
	targetLine   = rl.Color{R: 255, G: 255, B: 255, A: 60}
	rangeRing    = rl.Color{R: 255, G: 220, B: 120, A: 50}
	cutOutline   = rl.Color{R: 255, G: 80, B: 220, A: 255}
	barBg        = rl.Color{R: 40, G: 40, B: 40, A: 200}
	barHigh      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	barMedium    = rl.Color{R: 200, G: 180, B: 100, A: 255}
	barLow       = rl.Color{R: 200, G: 100, B: 100, A: 255}
	barWidthHexs = float32(6)
)

// OverlayRenderer draws debug overlays on top of the ships.
type OverlayRenderer struct {
	hexSize float32
}

// NewOverlayRenderer creates an overlay renderer for the given hex size.
func NewOverlayRenderer(hexSize float32) *OverlayRenderer {
	return &OverlayRenderer{hexSize: hexSize}
}

// DrawTargets draws a line from each ship to the foe it chases.
func (o *OverlayRenderer) DrawTargets(ships []game.ShipView, cam *camera.Camera) {
	byID := make(map[int]*game.ShipView, len(ships))
	for i := range ships {
		byID[ships[i].ID] = &ships[i]
	}
	for i := range ships {
		v := &ships[i]
		t, ok := byID[v.Target]
		if !ok {
			continue
		}
		x0, y0 := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
		x1, y1 := cam.WorldToScreen(t.Pos.X, t.Pos.Y)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, targetLine)
	}
}

// DrawEngageRange rings every visible ship with its firing range.
func (o *OverlayRenderer) DrawEngageRange(ships []game.ShipView, cam *camera.Camera, engage float32) {
	for i := range ships {
		v := &ships[i]
		if !cam.IsVisible(v.Pos.X, v.Pos.Y, engage) {
			continue
		}
		sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
		rl.DrawCircleLines(int32(sx), int32(sy), engage*cam.Zoom, rangeRing)
	}
}

// DrawConnectivity outlines alive cells that have lost their path to the core.
func (o *OverlayRenderer) DrawConnectivity(ships []game.ShipView, cam *camera.Camera) {
	size := o.hexSize * cam.Zoom
	for i := range ships {
		v := &ships[i]
		rotation := 30 + v.Heading*180/math.Pi
		for _, c := range v.Cells {
			if !c.Alive || c.Connected {
				continue
			}
			wx, wy := v.CellWorld(c.Pos, o.hexSize)
			sx, sy := cam.WorldToScreen(wx, wy)
			rl.DrawPolyLinesEx(rl.Vector2{X: sx, Y: sy}, 6, size, rotation, 2, cutOutline)
		}
	}
}

// BarValue selects what a status bar shows for a ship.
type BarValue func(v *game.ShipView) float32

// Viability shows the ship's health over full health.
func Viability(v *game.ShipView) float32 { return v.Viability }

// PowerSatisfaction shows the fraction of requested power granted last tick.
func PowerSatisfaction(v *game.ShipView) float32 { return v.Power.Satisfaction() }

// DrawBars draws a small bar above every visible ship.
func (o *OverlayRenderer) DrawBars(ships []game.ShipView, cam *camera.Camera, value BarValue) {
	w := barWidthHexs * o.hexSize * cam.Zoom
	h := max(3, o.hexSize*0.4*cam.Zoom)
	for i := range ships {
		v := &ships[i]
		if !cam.IsVisible(v.Pos.X, v.Pos.Y, o.hexSize*8) {
			continue
		}
		sx, sy := cam.WorldToScreen(v.Pos.X, v.Pos.Y)
		x := sx - w/2
		y := sy - o.hexSize*6*cam.Zoom
		f := min(max(value(v), 0), 1)
		rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, barBg)
		rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w * f, Height: h}, BarColor(f))
		if v.Alignment == components.Foe {
			rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, 1, foeOutline)
		}
	}
}

// BarColor grades a fraction from red through yellow to green.
func BarColor(f float32) rl.Color {
	switch {
	case f < 0.3:
		return barLow
	case f < 0.7:
		return barMedium
	default:
		return barHigh
	}
}
