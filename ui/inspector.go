package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/game"
)

// Inspector renders the selected ship's power and cell state.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: shipSections(),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given ship.
func (ins *Inspector) Draw(ship game.ShipView) {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	// Header, sections and one line per capability
	rows := 2 + int32(components.NumCapabilities)
	for _, sd := range ins.sections {
		rows += int32(len(sd.Fields)) + 1
	}
	r.DrawPanel(ins.x, ins.y, ins.width, rows*(r.Theme.LineHeight+2)+padding*2)

	y := ins.y + padding
	title := fmt.Sprintf("Craft #%d  %s  %s", ship.ID, ship.Layout, ship.Alignment)
	rl.DrawText(title, ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, ship, contentWidth)
	}

	y = r.DrawSectionHeader(ins.x+padding, y, "Cells")
	for _, cs := range CountCells(ship.Cells) {
		if cs.Total == 0 {
			continue
		}
		label := fmt.Sprintf("%-10s", cs.Capability)
		value := fmt.Sprintf("%d/%d alive, %d cut off", cs.Alive, cs.Total, cs.Disconnected)
		y = r.DrawLabelValue(ins.x+padding, y, label, value)
	}
}

// shipSections describes the numeric panels drawn for a ship.
func shipSections() []SectionDescriptor {
	ship := func(data any) game.ShipView { return data.(game.ShipView) }
	return []SectionDescriptor{
		{
			ID:    "status",
			Title: "Status",
			Fields: []FieldDescriptor{
				{ID: "viability", Label: "Viability", Widget: WidgetBar,
					Getter: func(d any) float32 { return ship(d).Viability }},
				{ID: "thrust", Label: "Thrust", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return ship(d).Thrust }},
				{ID: "shield", Label: "Shield", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float32 { return ship(d).Shield }},
				{ID: "firing", Label: "Weapons", Widget: WidgetText,
					TextGetter: func(d any) string { return toggleText(ship(d).Firing, "firing", "idle") }},
			},
		},
		{
			ID:    "power",
			Title: "Power",
			Fields: []FieldDescriptor{
				{ID: "satisfaction", Label: "Supplied", Widget: WidgetBar,
					Getter: func(d any) float32 { return ship(d).Power.Satisfaction() }},
				{ID: "demand", Label: "Demand", Widget: WidgetMeter,
					Getter:    func(d any) float32 { return ship(d).Power.Granted },
					MaxGetter: func(d any) float32 { return ship(d).Power.Demand }},
				{ID: "headroom", Label: "Generated", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float32 { return ship(d).Power.Headroom }},
				{ID: "storage", Label: "Stored", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float32 { return ship(d).Power.StorageAvailable }},
			},
		},
	}
}

// CellCount tallies one capability's cells for display.
type CellCount struct {
	Capability   components.Capability
	Total        int
	Alive        int
	Disconnected int
}

// CountCells groups cell views by capability in update order.
func CountCells(views []components.CellView) []CellCount {
	out := make([]CellCount, components.NumCapabilities)
	for i := range out {
		out[i].Capability = components.Capability(i)
	}
	for _, v := range views {
		c := &out[v.Capability]
		c.Total++
		if v.Alive {
			c.Alive++
			if !v.Connected {
				c.Disconnected++
			}
		}
	}
	return out
}
