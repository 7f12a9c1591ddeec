package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dpend/internal/physics"
)

var untraced = 0

var Presets = map[string]*Config{
	// One traced pendulum released horizontally.
	"single": {
		Theme: "dark", IntervalMs: DefaultInterval, Trace: physics.DefaultTraceCap,
		Pendulums: []PendulumConfig{DefaultPendulum()},
	},
	// 99 untraced pendulums whose theta2 differ by 1e-8 rad.
	"many": {
		Theme: "dark", IntervalMs: DefaultInterval, Trace: 0, Parallel: true,
		Spread: &SpreadConfig{Count: 99, Base: DefaultPendulum(), Start: 1e-8, Step: 1e-8},
	},
	// A coarser fan that separates within a few seconds.
	"fan": {
		Theme: "dark", IntervalMs: DefaultInterval, Trace: 0, Parallel: true,
		Spread: &SpreadConfig{Count: 12, Base: DefaultPendulum(), Start: 0, Step: 1e-3},
	},
	// Hanging straight down; nothing moves.
	"rest": {
		Theme: "light", IntervalMs: DefaultInterval, Trace: physics.DefaultTraceCap,
		Pendulums: []PendulumConfig{{L1: 1, L2: 1, M1: 1, M2: 1}},
	},
	// Heavy short upper link with an untraced twin for comparison.
	"pair": {
		Theme: "dark", IntervalMs: DefaultInterval, Trace: physics.Unbounded,
		Pendulums: []PendulumConfig{
			{L1: 0.6, L2: 1.2, M1: 3, M2: 1, Theta1: math.Pi * 0.75, Theta2: math.Pi},
			{L1: 0.6, L2: 1.2, M1: 3, M2: 1, Theta1: math.Pi*0.75 + 1e-6, Theta2: math.Pi, Trace: &untraced},
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
