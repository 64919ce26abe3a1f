package config

import (
	"sort"

	"github.com/kursatkara/govpm/internal/scenario"
)

// Preset bundles a solver configuration with an initial vorticity
// distribution.
type Preset struct {
	Config *Config
	Seed   func() scenario.Seeder
}

var presets = map[string]Preset{
	"ring": {
		Config: &Config{
			Capacity: 1000, Dt: 0.005, Steps: 2000, Integrator: "rk3",
			Kernel:      "gaussianerf",
			Formulation: FormulationConfig{Scheme: "reformulated"},
			Relaxation:  RelaxationConfig{Scheme: "correctedpedrizzetti", Lambda: 0.3, Every: 1},
			UJ:          UJConfig{Strategy: "direct"},
		},
		Seed: func() scenario.Seeder {
			return scenario.Ring{Radius: 1, Circulation: 1, Sigma: 0.2, N: 100}
		},
	},
	"ring-viscous": {
		Config: &Config{
			Capacity: 1000, Dt: 0.005, Steps: 2000, Integrator: "rk3",
			Kernel:  "gaussianerf",
			Viscous: ViscousConfig{Scheme: "corespreading", Nu: 1e-3},
			UJ:      UJConfig{Strategy: "direct"},
		},
		Seed: func() scenario.Seeder {
			return scenario.Ring{Radius: 1, Circulation: 1, Sigma: 0.2, N: 100}
		},
	},
	"ring-les": {
		Config: &Config{
			Capacity: 2000, Dt: 0.005, Steps: 2000, Integrator: "rk3",
			Kernel: "gaussianerf",
			SFS:    SFSConfig{Model: "dynamic", Alpha: 0.999, Cmax: 1, Clip: true},
			UJ:     UJConfig{Strategy: "accelerated", Theta: 0.4, Parallel: true},
		},
		Seed: func() scenario.Seeder {
			return scenario.Ring{Radius: 1, Circulation: 1, Sigma: 0.15, N: 200}
		},
	},
	"pair": {
		Config: &Config{
			Capacity: 10, Dt: 0.001, Steps: 1000, Integrator: "euler",
			Kernel:     "gaussianerf",
			Relaxation: RelaxationConfig{Scheme: "none"},
			UJ:         UJConfig{Strategy: "direct"},
		},
		Seed: func() scenario.Seeder {
			return scenario.Pair{Separation: 1, Circulation: 1, Sigma: 0.1}
		},
	},
}

// GetPreset returns the named preset, or nil when unknown.
func GetPreset(name string) *Preset {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	return &p
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
