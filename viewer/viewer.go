// Package viewer runs a skirmish in a raylib window with camera, HUD and
// player controls. The simulation itself lives in package game and never
// touches raylib.
package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/camera"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/game"
	"github.com/pthm-cable/hexcraft/renderer"
	"github.com/pthm-cable/hexcraft/telemetry"
	"github.com/pthm-cable/hexcraft/ui"
)

const maxSpeed = 10

// Viewer holds the windowed presentation of a skirmish.
type Viewer struct {
	skirmish *game.Skirmish
	hexSize  float32

	camera   *camera.Camera
	arena    *renderer.ArenaRenderer
	crafts   *renderer.CraftRenderer
	overlays *renderer.OverlayRenderer
	engage   float32

	hud       *ui.HUD
	controls  *ui.ControlsPanel
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	overlay   *ui.OverlayRegistry
	widgets   *ui.Renderer

	// State
	paused     bool
	speed      int // simulation ticks per frame (1-10)
	selected   int // ship id under inspection, -1 for none
	follow     bool
	showPerf   bool
	showLegend bool

	// Window dimensions
	screenWidth, screenHeight float32
}

// New creates a viewer for s. The raylib window must already be open.
func New(s *game.Skirmish, cfg *config.Config, speed int) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if speed < 1 {
		speed = 1
	}
	return &Viewer{
		skirmish:     s,
		hexSize:      float32(cfg.Screen.HexSize),
		camera:       camera.New(w, h, float32(cfg.Simulation.ArenaWidth), float32(cfg.Simulation.ArenaHeight)),
		arena:        renderer.NewArenaRenderer(80),
		crafts:       renderer.NewCraftRenderer(float32(cfg.Screen.HexSize)),
		overlays:     renderer.NewOverlayRenderer(float32(cfg.Screen.HexSize)),
		engage:       float32(cfg.Simulation.EngageRange),
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, int32(h)-80),
		inspector:    ui.NewInspector(int32(w)-290, 10, 280),
		perfPanel:    ui.NewPerfPanel(10, 110),
		overlay:      ui.NewOverlayRegistry(),
		widgets:      ui.NewRenderer(),
		speed:        min(speed, maxSpeed),
		selected:     -1,
		screenWidth:  w,
		screenHeight: h,
	}
}

// Update handles input and advances the skirmish by the current speed.
func (v *Viewer) Update() {
	v.handleInput()

	if v.paused || v.skirmish.Done() {
		return
	}

	for range v.speed {
		v.skirmish.Step()
		if v.skirmish.Done() {
			break
		}
	}

	if v.follow {
		if ship, ok := v.skirmish.Ship(v.selected); ok {
			v.camera.Follow(ship.Pos.X, ship.Pos.Y, 0.1)
		}
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.skirmish.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.arena.ShowGrid = v.overlay.IsEnabled(ui.OverlayGrid)
	v.arena.Draw(v.camera)

	ships := v.skirmish.Ships()
	if v.overlay.IsEnabled(ui.OverlayEngageRange) {
		v.overlays.DrawEngageRange(ships, v.camera, v.engage)
	}
	if v.overlay.IsEnabled(ui.OverlayTargets) {
		v.overlays.DrawTargets(ships, v.camera)
	}
	v.crafts.Draw(ships, v.camera, v.selected)
	if v.overlay.IsEnabled(ui.OverlayConnectivity) {
		v.overlays.DrawConnectivity(ships, v.camera)
	}
	if v.overlay.IsEnabled(ui.OverlayHealthBars) {
		v.overlays.DrawBars(ships, v.camera, renderer.Viability)
	}
	if v.overlay.IsEnabled(ui.OverlayPowerBars) {
		v.overlays.DrawBars(ships, v.camera, renderer.PowerSatisfaction)
	}

	friends, foes := v.skirmish.Fleets()
	v.hud.Draw(ui.HUDData{
		Title:    "Hexcraft",
		Friends:  friends,
		Foes:     foes,
		Tick:     v.skirmish.Tick(),
		Speed:    v.speed,
		FPS:      rl.GetFPS(),
		Paused:   v.paused,
		HoldFire: v.skirmish.HoldFire(),
	})
	if v.skirmish.Done() {
		v.hud.DrawOutcome(int32(v.screenWidth), int32(v.screenHeight), friends, foes)
	}

	if v.showPerf {
		v.drawPerf()
	}
	if v.showLegend {
		v.overlay.DrawLegend(v.widgets, 10, int32(v.screenHeight)-230)
	}

	if ship, ok := v.skirmish.Ship(v.selected); ok {
		v.inspector.Draw(ship)
	}

	v.applyAction(v.controls.Draw(ui.ControlsState{
		HoldFire: v.skirmish.HoldFire(),
		Paused:   v.paused,
	}))
	v.hud.DrawControls(int32(v.screenHeight), "[Space] pause  [H] hold fire  [</>] speed  [RMB] inspect  [F] follow  [P] perf  [L] overlays  [Home] reset view")

	rl.EndDrawing()
}

func (v *Viewer) drawPerf() {
	stats := v.skirmish.PerfStats()
	v.perfPanel.Draw(ui.PerfPanelData{
		PhaseTimes: stats.PhaseAvg,
		Phases:     telemetry.Phases,
		Total:      stats.AvgTickDuration,
		TPS:        stats.TicksPerSecond,
	})
}
