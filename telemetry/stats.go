package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Fleet sizes at window end
	Friends int `csv:"friends"`
	Foes    int `csv:"foes"`

	// Combat during window
	Shots       int     `csv:"shots"`
	Hits        int     `csv:"hits"`
	Misses      int     `csv:"misses"`
	HitRate     float64 `csv:"hit_rate"`
	Shielded    float64 `csv:"shielded"` // Damage absorbed by shield pools
	Armored     float64 `csv:"armored"`  // Damage taken by intercepting armor
	Hull        float64 `csv:"hull"`     // Damage taken by struck cells
	CellsLost   int     `csv:"cells_lost"`
	FriendsLost int     `csv:"friends_lost"`
	FoesLost    int     `csv:"foes_lost"`

	// Power flow summed over all crafts and ticks
	PowerDemand      float64 `csv:"power_demand"`
	PowerGranted     float64 `csv:"power_granted"`
	PowerFromStorage float64 `csv:"power_from_storage"`
	PowerCharged     float64 `csv:"power_charged"`

	// Per craft, per tick granted/demand
	SatisfactionMean float64 `csv:"satisfaction_mean"`
	SatisfactionStd  float64 `csv:"satisfaction_std"`
	SatisfactionP10  float64 `csv:"satisfaction_p10"`
	SatisfactionP50  float64 `csv:"satisfaction_p50"`
	SatisfactionP90  float64 `csv:"satisfaction_p90"`

	// Health / full health of surviving crafts (sampled at window end)
	ViabilityMean float64 `csv:"viability_mean"`
	ViabilityP10  float64 `csv:"viability_p10"`
	ViabilityP50  float64 `csv:"viability_p50"`
	ViabilityP90  float64 `csv:"viability_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean, sample standard deviation and percentiles.
// A single value has zero spread.
func ComputeStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.MeanStdDev(values, nil)
	if n == 1 {
		std = 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("friends", s.Friends),
		slog.Int("foes", s.Foes),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Int("misses", s.Misses),
		slog.Float64("hit_rate", s.HitRate),
		slog.Float64("shielded", s.Shielded),
		slog.Float64("armored", s.Armored),
		slog.Float64("hull", s.Hull),
		slog.Int("cells_lost", s.CellsLost),
		slog.Int("friends_lost", s.FriendsLost),
		slog.Int("foes_lost", s.FoesLost),
		slog.Float64("power_demand", s.PowerDemand),
		slog.Float64("power_granted", s.PowerGranted),
		slog.Float64("power_from_storage", s.PowerFromStorage),
		slog.Float64("power_charged", s.PowerCharged),
		slog.Float64("satisfaction_mean", s.SatisfactionMean),
		slog.Float64("satisfaction_std", s.SatisfactionStd),
		slog.Float64("satisfaction_p10", s.SatisfactionP10),
		slog.Float64("satisfaction_p50", s.SatisfactionP50),
		slog.Float64("satisfaction_p90", s.SatisfactionP90),
		slog.Float64("viability_mean", s.ViabilityMean),
		slog.Float64("viability_p10", s.ViabilityP10),
		slog.Float64("viability_p50", s.ViabilityP50),
		slog.Float64("viability_p90", s.ViabilityP90),
	)
}

// LogStats logs the headline window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"friends", s.Friends,
		"foes", s.Foes,
		"shots", s.Shots,
		"hit_rate", s.HitRate,
		"cells_lost", s.CellsLost,
		"friends_lost", s.FriendsLost,
		"foes_lost", s.FoesLost,
		"satisfaction_mean", s.SatisfactionMean,
		"satisfaction_p10", s.SatisfactionP10,
		"viability_mean", s.ViabilityMean,
	)
}
