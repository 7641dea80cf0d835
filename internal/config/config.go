package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives one ranking run. The battle model parameters are required;
// the core defaults nothing.
type Config struct {
	// StrikeIntervalSec is the cadence of the simulated opponent's attacks.
	StrikeIntervalSec float64 `yaml:"strike_interval_sec"`
	// BattleDurationSec is the simulated battle length.
	BattleDurationSec float64 `yaml:"battle_duration_sec"`
	// RegenLifetimeSec is how long the creature survives incoming damage,
	// used to model passive energy gain.
	RegenLifetimeSec float64 `yaml:"regen_lifetime_sec"`
	// TargetCP is the combat power ceiling of the restricted metric.
	TargetCP float64 `yaml:"target_cp"`
	// CombatMultiplier is the attacker power multiplier of the main run.
	CombatMultiplier float64 `yaml:"combat_multiplier"`

	// Excluded lists creature names (the part after the id prefix) dropped
	// before extraction.
	Excluded []string `yaml:"excluded"`
	// LegacyMoves are appended to movepools after decoding and rank as
	// legacy.
	LegacyMoves []LegacyMove `yaml:"legacy_moves"`

	ReportName string `yaml:"report_name"`
	ExportXlsx bool   `yaml:"export_xlsx"`
}

// LegacyMove names one creature's historically available abilities.
type LegacyMove struct {
	Creature string   `yaml:"creature"`
	Fast     []string `yaml:"fast"`
	Charged  []string `yaml:"charged"`
}

func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if value != nil && value.Kind == yaml.MappingNode {
		allowed := map[string]struct{}{
			"strike_interval_sec": {},
			"battle_duration_sec": {},
			"regen_lifetime_sec":  {},
			"target_cp":           {},
			"combat_multiplier":   {},
			"excluded":            {},
			"legacy_moves":        {},
			"report_name":         {},
			"export_xlsx":         {},
		}
		for i := 0; i+1 < len(value.Content); i += 2 {
			k := value.Content[i]
			if k.Kind != yaml.ScalarNode {
				continue
			}
			if _, ok := allowed[k.Value]; !ok {
				return fmt.Errorf("config: unsupported key %q", k.Value)
			}
		}
	}

	// Keep default decoding behavior for the known keys.
	type raw Config
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*c = Config(tmp)
	return nil
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the required battle parameters.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"strike_interval_sec", c.StrikeIntervalSec},
		{"battle_duration_sec", c.BattleDurationSec},
		{"regen_lifetime_sec", c.RegenLifetimeSec},
		{"target_cp", c.TargetCP},
		{"combat_multiplier", c.CombatMultiplier},
	}
	for _, ch := range checks {
		if ch.value <= 0 {
			return fmt.Errorf("config: %s must be positive, got %g", ch.name, ch.value)
		}
	}
	return nil
}

// ExcludedSet returns the excluded creature names as a lookup set.
func (c *Config) ExcludedSet() map[string]bool {
	if len(c.Excluded) == 0 {
		return nil
	}
	set := make(map[string]bool, len(c.Excluded))
	for _, name := range c.Excluded {
		set[name] = true
	}
	return set
}
