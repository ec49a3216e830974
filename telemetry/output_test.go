package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hexcraft/components"
	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/hex"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// Nil manager methods are no-ops.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteCells([]SnapshotRow{{}}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should report no dir")
	}
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, end := range []int32{60, 120} {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: end, Shots: 4}); err != nil {
			t.Fatal(err)
		}
	}

	views := []components.CellView{
		{Index: 0, Pos: hex.Origin, Capability: components.CapCore, Health: 60, MaxHealth: 120, Alive: true, Connected: true},
		{Index: 1, Pos: hex.Coord{Q: 1, R: 0}, Capability: components.CapArmor, MaxHealth: 90},
	}
	if err := om.WriteCells(SnapshotRows(120, 7, components.Foe, views)); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	var windows []WindowStats
	if err := readCSV(filepath.Join(dir, "telemetry.csv"), &windows); err != nil {
		t.Fatal(err)
	}
	if len(windows) != 2 || windows[1].WindowEndTick != 120 || windows[0].Shots != 4 {
		t.Errorf("telemetry.csv round trip: %+v", windows)
	}

	var rows []SnapshotRow
	if err := readCSV(filepath.Join(dir, "cells.csv"), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 cell rows, got %d", len(rows))
	}
	if rows[0].Capability != "Core" || rows[0].HealthFrac != 0.5 || rows[0].Alignment != "Foe" {
		t.Errorf("core row wrong: %+v", rows[0])
	}
	if rows[1].Q != 1 || rows[1].Alive || rows[1].Connected {
		t.Errorf("armor row wrong: %+v", rows[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}
