package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kmataru/mdbox/internal/md"
)

const (
	DefaultParticles    = 64
	DefaultBox          = 10.0
	DefaultMass         = 1.0
	DefaultTemperature  = 1.0
	DefaultDt           = 0.001
	DefaultSteps        = 10000
	DefaultDumpInterval = 100
	DefaultSigma        = 1.0
	DefaultEpsilon      = 1.0
)

// Config describes one run. Zero values are filled from defaults on Load;
// Validate must pass before any numeric work starts.
type Config struct {
	Particles    int     `yaml:"particles"`
	Box          float64 `yaml:"box"`
	Mass         float64 `yaml:"mass"`
	Temperature  float64 `yaml:"temperature"`
	Dt           float64 `yaml:"dt"`
	Steps        int     `yaml:"steps"`
	DumpInterval int     `yaml:"dump_interval"`
	Seed         int64   `yaml:"seed"`

	// SampleInterval controls how often the diagnostics series is
	// recorded; every sample costs one extra O(N²) energy evaluation.
	SampleInterval int `yaml:"sample_interval"`

	// Workers sets the force-kernel parallelism: 1 serial (the default),
	// 0 one worker per CPU.
	Workers int `yaml:"workers"`

	ForceField ForceFieldConfig `yaml:"forcefield"`
	Thermostat ThermostatConfig `yaml:"thermostat"`
}

type ForceFieldConfig struct {
	LennardJones LJConfig      `yaml:"lennard_jones"`
	Coulomb      CoulombConfig `yaml:"coulomb"`
}

type LJConfig struct {
	Sigma   float64 `yaml:"sigma"`
	Epsilon float64 `yaml:"epsilon"`
}

// CoulombConfig adds point-charge electrostatics. Particles get charges of
// alternating sign and magnitude Charge, keeping the box neutral for even
// particle counts.
type CoulombConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Coupling float64 `yaml:"coupling"`
	Charge   float64 `yaml:"charge"`
}

// ThermostatConfig selects velocity rescaling between steps.
// Kind is one of "none", "rescale", "berendsen".
type ThermostatConfig struct {
	Kind     string  `yaml:"kind"`
	Tau      float64 `yaml:"tau"`
	Interval int     `yaml:"interval"`
}

func Default() *Config {
	return &Config{
		Particles:      DefaultParticles,
		Box:            DefaultBox,
		Mass:           DefaultMass,
		Temperature:    DefaultTemperature,
		Dt:             DefaultDt,
		Steps:          DefaultSteps,
		DumpInterval:   DefaultDumpInterval,
		SampleInterval: 10,
		Workers:        1,
		ForceField: ForceFieldConfig{
			LennardJones: LJConfig{Sigma: DefaultSigma, Epsilon: DefaultEpsilon},
			Coulomb:      CoulombConfig{Coupling: 1.0},
		},
		Thermostat: ThermostatConfig{Kind: "none", Tau: 0.1, Interval: 10},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fails fast on parameters that would produce undefined numeric
// behavior further in.
func (c *Config) Validate() error {
	switch {
	case c.Particles <= 0:
		return fmt.Errorf("%w: particles must be positive, got %d", md.ErrConfig, c.Particles)
	case c.Box <= 0:
		return fmt.Errorf("%w: box must be positive, got %g", md.ErrConfig, c.Box)
	case c.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", md.ErrConfig, c.Mass)
	case c.Temperature < 0:
		return fmt.Errorf("%w: temperature must be non-negative, got %g", md.ErrConfig, c.Temperature)
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", md.ErrConfig, c.Dt)
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must be non-negative, got %d", md.ErrConfig, c.Steps)
	case c.DumpInterval <= 0:
		return fmt.Errorf("%w: dump_interval must be positive, got %d", md.ErrConfig, c.DumpInterval)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be non-negative, got %d", md.ErrConfig, c.Workers)
	case c.ForceField.LennardJones.Sigma <= 0:
		return fmt.Errorf("%w: lennard_jones.sigma must be positive, got %g", md.ErrConfig, c.ForceField.LennardJones.Sigma)
	case c.ForceField.LennardJones.Epsilon <= 0:
		return fmt.Errorf("%w: lennard_jones.epsilon must be positive, got %g", md.ErrConfig, c.ForceField.LennardJones.Epsilon)
	}

	switch c.Thermostat.Kind {
	case "", "none", "rescale", "berendsen":
	default:
		return fmt.Errorf("%w: unknown thermostat %q", md.ErrConfig, c.Thermostat.Kind)
	}
	if c.Thermostat.Kind == "berendsen" && c.Thermostat.Tau <= 0 {
		return fmt.Errorf("%w: thermostat.tau must be positive, got %g", md.ErrConfig, c.Thermostat.Tau)
	}
	return nil
}
