package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Viewer overlays.
const (
	OverlayTargets      OverlayID = "targets"
	OverlayEngageRange  OverlayID = "engage_range"
	OverlayHealthBars   OverlayID = "health_bars"
	OverlayPowerBars    OverlayID = "power_bars"
	OverlayConnectivity OverlayID = "connectivity"
	OverlayGrid         OverlayID = "grid"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "T")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the viewer overlays. The arena
// grid starts enabled.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	for _, d := range []OverlayDescriptor{
		{OverlayTargets, "Targets", "Line from each ship to the foe it chases", rl.KeyT, "T", nil},
		{OverlayEngageRange, "Engage Range", "Firing range around each ship", rl.KeyE, "E", nil},
		{OverlayHealthBars, "Health Bars", "Viability bar above each ship", rl.KeyB, "B", []OverlayID{OverlayPowerBars}},
		{OverlayPowerBars, "Power Bars", "Power satisfaction bar above each ship", rl.KeyO, "O", []OverlayID{OverlayHealthBars}},
		{OverlayConnectivity, "Connectivity", "Outline cells cut off from the core", rl.KeyC, "C", nil},
		{OverlayGrid, "Grid", "Arena grid lines", rl.KeyG, "G", nil},
	} {
		reg.Register(d)
	}
	reg.enabled[OverlayGrid] = true
	return reg
}

// Register adds an overlay to the registry, disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state. Enabling an overlay turns
// off the overlays it excludes.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress toggles the overlay bound to key. It reports the overlay,
// its new state and whether the key was bound.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// DrawLegend lists every overlay with its key, highlighting enabled ones.
func (r *OverlayRegistry) DrawLegend(renderer *Renderer, x, y int32) {
	t := renderer.Theme
	h := int32(len(r.descriptors))*t.LineHeight + t.Padding*2 + t.LineHeight
	renderer.DrawPanel(x, y, 190, h)
	cy := renderer.DrawSectionHeader(x+t.Padding, y+t.Padding, "Overlays")
	for _, d := range r.descriptors {
		color := t.LabelColor
		mark := " "
		if r.enabled[d.ID] {
			color = t.SectionHeader
			mark = "*"
		}
		rl.DrawText(fmt.Sprintf("%s [%s] %s", mark, d.KeyLabel, d.Name), x+t.Padding, cy, t.FontSize, color)
		cy += t.LineHeight
	}
}
