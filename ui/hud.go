package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title    string
	Friends  int
	Foes     int
	Tick     int32
	Speed    int
	FPS      int32
	Paused   bool
	HoldFire bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Friends: %d | Foes: %d", data.Friends, data.Foes),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.HoldFire {
		status += " | HOLDING FIRE"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// DrawOutcome renders a banner once one side has been wiped out.
func (h *HUD) DrawOutcome(screenWidth, screenHeight int32, friends, foes int) {
	text := "VICTORY"
	color := rl.Green
	if friends == 0 {
		text = "DEFEAT"
		color = rl.Red
	}
	if friends == 0 && foes == 0 {
		text = "DRAW"
		color = rl.LightGray
	}
	w := rl.MeasureText(text, 40)
	rl.DrawText(text, (screenWidth-w)/2, screenHeight/2-20, 40, color)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseTimes map[string]time.Duration
	Phases     []string
	Total      time.Duration
	TPS        float64
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s  TPS: %.0f", data.Total.Round(time.Microsecond), data.TPS), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range data.Phases {
		avg := data.PhaseTimes[name]
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
