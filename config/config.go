// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/hexcraft/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	Simulation SimulationConfig  `yaml:"simulation"`
	Cells      CellsConfig       `yaml:"cells"`
	Damage     DamageConfig      `yaml:"damage"`
	Generator  GeneratorConfig   `yaml:"generator"`
	Blueprints []BlueprintConfig `yaml:"blueprints"`
	Skirmish   SkirmishConfig    `yaml:"skirmish"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	HexSize   float64 `yaml:"hex_size"` // Circumradius of a drawn cell in pixels
}

// SimulationConfig holds tick and arena parameters.
type SimulationConfig struct {
	DT          float64 `yaml:"dt"`           // Seconds per tick
	ArenaWidth  float64 `yaml:"arena_width"`  // World units
	ArenaHeight float64 `yaml:"arena_height"` // World units
	EngageRange float64 `yaml:"engage_range"` // Ships open fire on foes closer than this
	ShipMass    float64 `yaml:"ship_mass"`    // Mass per alive cell, divides thrust
	Drag        float64 `yaml:"drag"`         // Velocity damping per second
	TurnRate    float64 `yaml:"turn_rate"`    // Maximum heading change in radians per second
}

// CellStats holds the template for one capability. Only the fields that
// apply to the capability are read.
type CellStats struct {
	MaxHealth      float64 `yaml:"max_health"`
	RegenRate      float64 `yaml:"regen_rate"`      // Health per second while alive
	GenerationRate float64 `yaml:"generation_rate"` // Generation: power per tick
	Capacity       float64 `yaml:"capacity"`        // Storage: max stored power
	InitialCharge  float64 `yaml:"initial_charge"`  // Storage: fraction of capacity at assembly
	Demand         float64 `yaml:"demand"`          // Consumers: power requested per tick
	MaxThrust      float64 `yaml:"max_thrust"`      // Propulsion: thrust at full power
	ShieldStrength float64 `yaml:"shield_strength"` // Shield: damage absorbed per tick at full power
	WeaponDamage   float64 `yaml:"weapon_damage"`   // Weapon: damage per shot
	FireInterval   float64 `yaml:"fire_interval"`   // Weapon: seconds between shots at full power
}

// CellsConfig holds per-capability cell templates.
type CellsConfig struct {
	Core       CellStats `yaml:"core"`
	Generation CellStats `yaml:"generation"`
	Storage    CellStats `yaml:"storage"`
	Propulsion CellStats `yaml:"propulsion"`
	Shield     CellStats `yaml:"shield"`
	Weapon     CellStats `yaml:"weapon"`
	Armor      CellStats `yaml:"armor"`
}

// For returns the template for the given capability.
func (c *CellsConfig) For(capability components.Capability) CellStats {
	switch capability {
	case components.CapCore:
		return c.Core
	case components.CapGeneration:
		return c.Generation
	case components.CapStorage:
		return c.Storage
	case components.CapPropulsion:
		return c.Propulsion
	case components.CapShield:
		return c.Shield
	case components.CapWeapon:
		return c.Weapon
	case components.CapArmor:
		return c.Armor
	}
	panic(fmt.Sprintf("config: no cell stats for capability %d", capability))
}

// DamageConfig holds damage routing parameters.
type DamageConfig struct {
	ArmorRadius  int `yaml:"armor_radius"`  // Hex distance within which armor intercepts a hit
	SplashRadius int `yaml:"splash_radius"` // Hits on empty hexes land on the nearest cell within this distance
}

// GeneratorConfig holds procedural layout parameters.
type GeneratorConfig struct {
	Rings   int                `yaml:"rings"`   // Layout radius around the core
	Fill    float64            `yaml:"fill"`    // Probability a candidate hex receives a cell
	Weights map[string]float64 `yaml:"weights"` // Relative capability weights by name
}

// BlueprintConfig is a fixed craft layout.
type BlueprintConfig struct {
	Name  string          `yaml:"name"`
	Cells []BlueprintCell `yaml:"cells"`
}

// BlueprintCell places one capability at an axial position.
type BlueprintCell struct {
	Q    int    `yaml:"q"`
	R    int    `yaml:"r"`
	Type string `yaml:"type"`
}

// SkirmishConfig describes the fleets spawned by the headless driver.
type SkirmishConfig struct {
	Fleets []FleetConfig `yaml:"fleets"`
}

// FleetConfig spawns Count crafts of one alignment. An empty Blueprint means
// procedurally generated layouts.
type FleetConfig struct {
	Alignment string `yaml:"alignment"`
	Blueprint string `yaml:"blueprint"`
	Count     int    `yaml:"count"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32        // Simulation.DT as float32
	BlueprintIndex map[string]int // name -> index into Blueprints
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set installs cfg as the global configuration. Used by tools that mutate a
// loaded config between runs.
func Set(cfg *Config) {
	cfg.computeDerived()
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Blueprints = make([]BlueprintConfig, len(c.Blueprints))
	for i, bp := range c.Blueprints {
		cp.Blueprints[i] = BlueprintConfig{Name: bp.Name, Cells: append([]BlueprintCell(nil), bp.Cells...)}
	}
	cp.Skirmish.Fleets = append([]FleetConfig(nil), c.Skirmish.Fleets...)
	cp.Generator.Weights = make(map[string]float64, len(c.Generator.Weights))
	for k, v := range c.Generator.Weights {
		cp.Generator.Weights[k] = v
	}
	cp.computeDerived()
	return &cp
}

// Blueprint returns the named layout.
func (c *Config) Blueprint(name string) (BlueprintConfig, bool) {
	i, ok := c.Derived.BlueprintIndex[name]
	if !ok {
		return BlueprintConfig{}, false
	}
	return c.Blueprints[i], true
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("simulation.dt must be positive, got %v", c.Simulation.DT)
	}
	if c.Simulation.TurnRate <= 0 {
		return fmt.Errorf("simulation.turn_rate must be positive, got %v", c.Simulation.TurnRate)
	}
	if c.Simulation.EngageRange <= 0 {
		return fmt.Errorf("simulation.engage_range must be positive, got %v", c.Simulation.EngageRange)
	}
	if c.Simulation.ArenaWidth <= 0 || c.Simulation.ArenaHeight <= 0 {
		return fmt.Errorf("simulation arena must have a positive size")
	}
	if c.Damage.ArmorRadius < 0 || c.Damage.SplashRadius < 0 {
		return fmt.Errorf("damage radii must be non-negative")
	}
	seen := make(map[string]bool, len(c.Blueprints))
	for _, bp := range c.Blueprints {
		if bp.Name == "" {
			return fmt.Errorf("blueprint with empty name")
		}
		if seen[bp.Name] {
			return fmt.Errorf("duplicate blueprint %q", bp.Name)
		}
		seen[bp.Name] = true
	}
	for _, f := range c.Skirmish.Fleets {
		if f.Blueprint != "" && !seen[f.Blueprint] {
			return fmt.Errorf("fleet references unknown blueprint %q", f.Blueprint)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)

	c.Derived.BlueprintIndex = make(map[string]int, len(c.Blueprints))
	for i, bp := range c.Blueprints {
		c.Derived.BlueprintIndex[bp.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
