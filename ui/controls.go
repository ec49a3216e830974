package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlAction is a request raised by the controls panel this frame.
type ControlAction int

const (
	ActionNone ControlAction = iota
	ActionToggleHoldFire
	ActionTogglePause
	ActionSlower
	ActionFaster
	ActionResetCamera
)

// ControlsState is what the panel needs to label its buttons.
type ControlsState struct {
	HoldFire bool
	Paused   bool
}

// ControlsPanel renders the button strip for player commands.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the buttons and returns the action clicked this frame.
func (c *ControlsPanel) Draw(state ControlsState) ControlAction {
	if !c.visible {
		return ActionNone
	}

	const (
		buttonW = 110
		buttonH = 28
		gap     = 6
	)
	r := c.renderer
	padding := r.Theme.Padding
	panelW := int32(buttonW*5+gap*4) + padding*2
	panelH := int32(buttonH) + padding*2
	r.DrawPanel(c.x, c.y, panelW, panelH)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	button := func(label string) bool {
		hit := gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonW, Height: buttonH}, label)
		x += buttonW + gap
		return hit
	}

	action := ActionNone
	if button(toggleText(state.HoldFire, "Open fire", "Hold fire")) {
		action = ActionToggleHoldFire
	}
	if button(toggleText(state.Paused, "Resume", "Pause")) {
		action = ActionTogglePause
	}
	if button("Slower") {
		action = ActionSlower
	}
	if button("Faster") {
		action = ActionFaster
	}
	if button("Reset view") {
		action = ActionResetCamera
	}
	return action
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
