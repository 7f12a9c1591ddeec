package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/san-kum/dpend/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTheme    = "dark"
	DefaultInterval = 10.5 // ms
)

var (
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalidScene  = errors.New("config: invalid scene")
)

type Config struct {
	Theme      string           `yaml:"theme"`
	IntervalMs float64          `yaml:"interval_ms"`
	Parallel   bool             `yaml:"parallel"`
	Trace      int              `yaml:"trace"`
	Pendulums  []PendulumConfig `yaml:"pendulums,omitempty"`
	Spread     *SpreadConfig    `yaml:"spread,omitempty"`
}

// PendulumConfig describes one pendulum. Omitted fields take the physics
// defaults; a nil Trace falls back to the scene-wide capacity.
type PendulumConfig struct {
	L1     float64 `yaml:"l1"`
	L2     float64 `yaml:"l2"`
	M1     float64 `yaml:"m1"`
	M2     float64 `yaml:"m2"`
	Theta1 float64 `yaml:"theta1"`
	Theta2 float64 `yaml:"theta2"`
	Trace  *int    `yaml:"trace,omitempty"`
}

// SpreadConfig generates Count copies of Base whose theta2 is lowered by
// Start + i*Step. This is how a fan of nearly identical pendulums is set up
// to show sensitivity to initial conditions.
type SpreadConfig struct {
	Count int            `yaml:"count"`
	Base  PendulumConfig `yaml:"base"`
	Start float64        `yaml:"start"`
	Step  float64        `yaml:"step"`
}

func DefaultPendulum() PendulumConfig {
	d := physics.DefaultParams()
	return PendulumConfig{
		L1: d.L1, L2: d.L2,
		M1: d.M1, M2: d.M2,
		Theta1: d.Theta1, Theta2: d.Theta2,
	}
}

func (p *PendulumConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw PendulumConfig
	r := raw(DefaultPendulum())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*p = PendulumConfig(r)
	return nil
}

func (s *SpreadConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw SpreadConfig
	r := raw{Base: DefaultPendulum()}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*s = SpreadConfig(r)
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Theme:      DefaultTheme,
		IntervalMs: DefaultInterval,
		Trace:      physics.DefaultTraceCap,
		Pendulums:  []PendulumConfig{DefaultPendulum()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Pendulums = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if len(cfg.Pendulums) == 0 && cfg.Spread == nil {
		cfg.Pendulums = []PendulumConfig{DefaultPendulum()}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMs * float64(time.Millisecond))
}

// Params expands the explicit pendulums followed by the spread.
func (c *Config) Params() []physics.Params {
	out := make([]physics.Params, 0, len(c.Pendulums)+c.spreadCount())
	for _, p := range c.Pendulums {
		out = append(out, c.params(p))
	}
	if c.Spread != nil {
		for i := 0; i < c.Spread.Count; i++ {
			p := c.Spread.Base
			p.Theta2 -= c.Spread.Start + float64(i)*c.Spread.Step
			out = append(out, c.params(p))
		}
	}
	return out
}

func (c *Config) spreadCount() int {
	if c.Spread == nil || c.Spread.Count < 0 {
		return 0
	}
	return c.Spread.Count
}

func (c *Config) params(p PendulumConfig) physics.Params {
	traceCap := c.Trace
	if p.Trace != nil {
		traceCap = *p.Trace
	}
	return physics.Params{
		L1: p.L1, L2: p.L2,
		M1: p.M1, M2: p.M2,
		Theta1: p.Theta1, Theta2: p.Theta2,
		TraceCap: traceCap,
	}
}

// Validate checks the scene at the configuration boundary. The physics
// core itself never validates its inputs.
func (c *Config) Validate() error {
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("%w: theme must be dark or light, got %q", ErrInvalidScene, c.Theme)
	}
	if !(c.IntervalMs > 0) {
		return fmt.Errorf("%w: interval_ms must be positive, got %v", ErrInvalidScene, c.IntervalMs)
	}
	if c.Spread != nil && c.Spread.Count < 0 {
		return fmt.Errorf("%w: spread count must not be negative", ErrInvalidScene)
	}
	params := c.Params()
	if len(params) == 0 {
		return fmt.Errorf("%w: no pendulums", ErrInvalidScene)
	}
	for i, p := range params {
		fields := []struct {
			name string
			v    float64
		}{{"l1", p.L1}, {"l2", p.L2}, {"m1", p.M1}, {"m2", p.M2}}
		for _, f := range fields {
			if !(f.v > 0) || math.IsInf(f.v, 0) {
				return fmt.Errorf("%w: pendulum %d: %s must be positive, got %v", ErrInvalidScene, i, f.name, f.v)
			}
		}
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Pendulums = make([]PendulumConfig, len(c.Pendulums))
	for i, p := range c.Pendulums {
		cp.Pendulums[i] = p
		if p.Trace != nil {
			tr := *p.Trace
			cp.Pendulums[i].Trace = &tr
		}
	}
	if c.Spread != nil {
		s := *c.Spread
		if s.Base.Trace != nil {
			tr := *s.Base.Trace
			s.Base.Trace = &tr
		}
		cp.Spread = &s
	}
	return &cp
}
