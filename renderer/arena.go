package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/camera"
)

var (
	arenaFill   = rl.Color{R: 12, G: 14, B: 22, A: 255}
	arenaGrid   = rl.Color{R: 28, G: 32, B: 46, A: 255}
	arenaBorder = rl.Color{R: 70, G: 80, B: 110, A: 255}
)

// ArenaRenderer draws the arena floor, a reference grid and its walls.
type ArenaRenderer struct {
	gridSpacing float32
	ShowGrid    bool
}

// NewArenaRenderer creates an arena renderer with grid lines every
// gridSpacing world units.
func NewArenaRenderer(gridSpacing float32) *ArenaRenderer {
	return &ArenaRenderer{gridSpacing: gridSpacing, ShowGrid: true}
}

// Draw renders the arena as seen through cam.
func (a *ArenaRenderer) Draw(cam *camera.Camera) {
	x0, y0 := cam.WorldToScreen(0, 0)
	x1, y1 := cam.WorldToScreen(cam.WorldW, cam.WorldH)
	rl.DrawRectangleRec(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, arenaFill)

	if a.ShowGrid && a.gridSpacing > 0 {
		for gx := a.gridSpacing; gx < cam.WorldW; gx += a.gridSpacing {
			sx, _ := cam.WorldToScreen(gx, 0)
			rl.DrawLineV(rl.Vector2{X: sx, Y: y0}, rl.Vector2{X: sx, Y: y1}, arenaGrid)
		}
		for gy := a.gridSpacing; gy < cam.WorldH; gy += a.gridSpacing {
			_, sy := cam.WorldToScreen(0, gy)
			rl.DrawLineV(rl.Vector2{X: x0, Y: sy}, rl.Vector2{X: x1, Y: sy}, arenaGrid)
		}
	}

	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, arenaBorder)
}
