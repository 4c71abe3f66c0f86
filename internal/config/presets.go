package config

// Presets are compiled-in starting points for common runs; values follow
// reduced-unit conventions (sigma = epsilon = mass = kB = 1).
var Presets = map[string]*Config{
	"dilute": {
		Particles: 32, Box: 20.0, Mass: 1.0, Temperature: 1.0,
		Dt: 0.001, Steps: 20000, DumpInterval: 200, SampleInterval: 20,
		ForceField: ForceFieldConfig{LennardJones: LJConfig{Sigma: 1.0, Epsilon: 1.0}},
		Thermostat: ThermostatConfig{Kind: "none"},
	},
	"liquid": {
		Particles: 125, Box: 6.0, Mass: 1.0, Temperature: 1.2,
		Dt: 0.0005, Steps: 50000, DumpInterval: 500, SampleInterval: 50,
		ForceField: ForceFieldConfig{LennardJones: LJConfig{Sigma: 1.0, Epsilon: 1.0}},
		Thermostat: ThermostatConfig{Kind: "berendsen", Tau: 0.1},
	},
	"quench": {
		Particles: 64, Box: 8.0, Mass: 1.0, Temperature: 0.1,
		Dt: 0.0005, Steps: 30000, DumpInterval: 300, SampleInterval: 30,
		ForceField: ForceFieldConfig{LennardJones: LJConfig{Sigma: 1.0, Epsilon: 1.0}},
		Thermostat: ThermostatConfig{Kind: "rescale", Interval: 100},
	},
	"plasma": {
		Particles: 64, Box: 12.0, Mass: 1.0, Temperature: 2.0,
		Dt: 0.0005, Steps: 20000, DumpInterval: 200, SampleInterval: 20,
		ForceField: ForceFieldConfig{
			LennardJones: LJConfig{Sigma: 1.0, Epsilon: 1.0},
			Coulomb:      CoulombConfig{Enabled: true, Coupling: 1.0, Charge: 0.5},
		},
		Thermostat: ThermostatConfig{Kind: "none"},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	if c.SampleInterval == 0 {
		c.SampleInterval = 10
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	return &c
}

// ListPresets returns the preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
