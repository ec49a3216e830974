package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.applyAction(ui.ActionTogglePause)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.applyAction(ui.ActionToggleHoldFire)
	}

	// Speed control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.applyAction(ui.ActionSlower)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.applyAction(ui.ActionFaster)
	}

	if rl.IsKeyPressed(rl.KeyF) {
		v.follow = !v.follow
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyL) {
		v.showLegend = !v.showLegend
	}
	if key := rl.GetKeyPressed(); key != 0 {
		v.overlay.HandleKeyPress(key)
	}

	v.handleCameraInput()
	v.handleSelection()
}

// applyAction carries out a control request from the keyboard or buttons.
func (v *Viewer) applyAction(a ui.ControlAction) {
	switch a {
	case ui.ActionToggleHoldFire:
		v.skirmish.SetHoldFire(!v.skirmish.HoldFire())
	case ui.ActionTogglePause:
		v.paused = !v.paused
	case ui.ActionSlower:
		if v.speed > 1 {
			v.speed--
		}
	case ui.ActionFaster:
		if v.speed < maxSpeed {
			v.speed++
		}
	case ui.ActionResetCamera:
		v.follow = false
		v.camera.Reset()
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.controls.SetPosition(10, int32(h)-80)
	v.inspector.SetPosition(int32(w)-290, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.applyAction(ui.ActionResetCamera)
	}
}

// handleSelection picks the ship under a right click, or clears the
// selection when clicking empty space.
func (v *Viewer) handleSelection() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		return
	}
	mouse := rl.GetMousePosition()
	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	if ship, ok := v.skirmish.ShipAt(wx, wy, v.hexSize); ok {
		v.selected = ship.ID
		return
	}
	v.selected = -1
	v.follow = false
}
