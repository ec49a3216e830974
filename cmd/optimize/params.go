package main

import (
	"github.com/pthm-cable/hexcraft/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// weightNames lists the generator weights in parameter order.
var weightNames = []string{"generation", "storage", "propulsion", "shield", "weapon", "armor"}

// NewParamVector creates the procedural generator parameters, with defaults
// taken from base.
func NewParamVector(base config.GeneratorConfig) *ParamVector {
	specs := []ParamSpec{
		{Name: "fill", Path: "generator.fill", Min: 0.3, Max: 1.0, Default: base.Fill},
	}
	for _, name := range weightNames {
		specs = append(specs, ParamSpec{
			Name:    name + "_weight",
			Path:    "generator.weights." + name,
			Min:     0,
			Max:     6,
			Default: base.Weights[name],
		})
	}
	pv := &ParamVector{Specs: specs}
	// Keep defaults inside the search box
	for i := range pv.Specs {
		s := &pv.Specs[i]
		s.Default = min(max(s.Default, s.Min), s.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg's generator section.
// The weights map is replaced so cfg never aliases another config's map.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Generator.Fill = clamped[0]
	weights := make(map[string]float64, len(weightNames))
	for i, name := range weightNames {
		weights[name] = clamped[i+1]
	}
	cfg.Generator.Weights = weights
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := []float64{cfg.Generator.Fill}
	for _, name := range weightNames {
		out = append(out, cfg.Generator.Weights[name])
	}
	return out
}
