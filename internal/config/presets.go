package config

import (
	"sort"

	"github.com/san-kum/particles/internal/scenario"
)

// Presets pairs each scenario with run settings: its tuned time step under
// the plain pass, under adaptive substepping, and across a worker pool.
var Presets = buildPresets()

func buildPresets() map[string]map[string]*Config {
	out := make(map[string]map[string]*Config)
	for _, name := range scenario.Names() {
		s, _ := scenario.Lookup(name)
		base := func(strategy string) *Config {
			cfg := DefaultConfig()
			cfg.Scenario = name
			cfg.Strategy = strategy
			cfg.TimeStep = s.TimeStep
			return cfg
		}
		precise := base("adaptive")
		precise.MinSubstep = s.TimeStep / 1000
		out[name] = map[string]*Config{
			"default": base("default"),
			"precise": precise,
			"fast":    base("parallel"),
		}
	}
	return out
}

func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
