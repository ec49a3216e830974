package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayRegistry_Defaults(t *testing.T) {
	r := NewOverlayRegistry()
	if !r.IsEnabled(OverlayGrid) {
		t.Error("grid should start enabled")
	}
	for _, d := range r.All() {
		if d.ID != OverlayGrid && r.IsEnabled(d.ID) {
			t.Errorf("%s should start disabled", d.ID)
		}
	}
}

func TestOverlayRegistry_ExclusiveBars(t *testing.T) {
	r := NewOverlayRegistry()

	if !r.Toggle(OverlayHealthBars) {
		t.Fatal("toggle should enable health bars")
	}
	r.Toggle(OverlayPowerBars)
	if r.IsEnabled(OverlayHealthBars) || !r.IsEnabled(OverlayPowerBars) {
		t.Error("power bars should replace health bars")
	}
	if r.Toggle(OverlayPowerBars) {
		t.Error("second toggle should disable power bars")
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	r := NewOverlayRegistry()

	id, on, ok := r.HandleKeyPress(rl.KeyT)
	if !ok || id != OverlayTargets || !on {
		t.Errorf("KeyT = %q, %v, %v", id, on, ok)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyZ); ok {
		t.Error("KeyZ should not be bound")
	}
	if r.Toggle("unknown") {
		t.Error("unknown overlay toggled on")
	}
}
