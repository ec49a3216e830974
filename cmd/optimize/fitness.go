package main

import (
	"sync"

	"github.com/pthm-cable/hexcraft/config"
	"github.com/pthm-cable/hexcraft/game"
)

// Outcome weights. Winning dominates; viability separates close results.
const (
	winBonus     = 2.0
	lossPenalty  = 2.0
	tempoBonus   = 0.5 // Scaled by how early the skirmish ended
	invalidScore = 10.0
)

// FitnessEvaluator runs headless skirmishes where a procedural friendly
// fleet faces the base config's foe fleets, and scores the outcome.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	friends    int

	mu          sync.Mutex
	lastWinRate float64 // win rate from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator fielding friends procedural
// crafts per run.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, friends int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		friends:    friends,
	}
}

// LastWinRate returns the share of seeds won in the most recent evaluation.
func (fe *FitnessEvaluator) LastWinRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWinRate
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.ConfigFor(x)

	// Run all seeds in parallel
	results := make([]game.Result, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSkirmish(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var wins int
	for i, r := range results {
		if errs[i] != nil {
			total += invalidScore
			continue
		}
		total += Score(r, fe.maxTicks)
		if r.Foes == 0 && r.Friends > 0 {
			wins++
		}
	}

	n := float64(len(fe.seeds))
	avg := total / n

	fe.mu.Lock()
	fe.lastWinRate = float64(wins) / n
	fe.mu.Unlock()

	return avg
}

// ConfigFor returns a copy of the base config with x applied and the
// friendly side replaced by one procedural fleet.
func (fe *FitnessEvaluator) ConfigFor(x []float64) *config.Config {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	fleets := []config.FleetConfig{{Alignment: "friend", Count: fe.friends}}
	for _, f := range cfg.Skirmish.Fleets {
		if f.Alignment != "friend" {
			fleets = append(fleets, f)
		}
	}
	cfg.Skirmish.Fleets = fleets
	return cfg
}

// runSkirmish executes a single headless skirmish.
func (fe *FitnessEvaluator) runSkirmish(cfg *config.Config, seed int64) (game.Result, error) {
	s, err := game.NewSkirmish(cfg, game.Options{Seed: seed})
	if err != nil {
		return game.Result{}, err
	}
	defer s.Close()
	return s.Run(fe.maxTicks), nil
}

// Score turns a skirmish result into a fitness (lower = better):
// foe viability minus friend viability, shifted by the win/loss outcome,
// with quicker wins scoring better.
func Score(r game.Result, maxTicks int32) float64 {
	score := r.FoeViability - r.FriendViability
	switch {
	case r.Foes == 0 && r.Friends > 0:
		score -= winBonus
		if maxTicks > 0 {
			score -= tempoBonus * (1 - float64(r.Ticks)/float64(maxTicks))
		}
	case r.Friends == 0 && r.Foes > 0:
		score += lossPenalty
	}
	return score
}
