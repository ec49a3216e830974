package game

import (
	"github.com/pthm-cable/hexcraft/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it.
func (s *Skirmish) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	// Sample viability of surviving crafts and their cells
	var viability []float64
	var rows []telemetry.SnapshotRow
	query := s.shipFilter.Query()
	for query.Next() {
		_, _, _, ship := query.Get()
		c := ship.Craft
		viability = append(viability, float64(c.Viability()))
		if s.output != nil {
			rows = append(rows, telemetry.SnapshotRows(s.tick, ship.ID, c.Alignment(), c.Snapshot())...)
		}
	}

	stats := s.collector.Flush(s.tick, s.friends, s.foes, viability)
	perfStats := s.perf.Stats()

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
		if err := s.output.WriteCells(rows); err != nil {
			s.logger.Error("failed to write cells", "error", err)
		}
	}
}
