// Package experiment assembles a runnable simulation from a validated
// configuration: seeded initial conditions, force field, thermostat,
// integrator, metrics and the loop itself.
package experiment

import (
	"context"
	"math/rand"

	"github.com/kmataru/mdbox/internal/config"
	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/integrate"
	"github.com/kmataru/mdbox/internal/md"
	"github.com/kmataru/mdbox/internal/metrics"
	"github.com/kmataru/mdbox/internal/seed"
	"github.com/kmataru/mdbox/internal/sim"
	"github.com/kmataru/mdbox/internal/thermostat"
)

// Experiment owns everything needed for one run.
type Experiment struct {
	cfg      *config.Config
	field    *force.Field
	sys      *md.System
	integ    *integrate.VelocityVerlet
	thermo   thermostat.Thermostat
	recorder *metrics.Recorder
}

// New validates cfg and builds the system, field and diagnostics. The seed
// is the sole source of randomness; equal configs produce equal runs.
func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	field := buildField(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))
	sys := seed.System(rng, cfg.Particles, cfg.Mass, cfg.Box, cfg.Temperature)

	return &Experiment{
		cfg:      cfg,
		field:    field,
		sys:      sys,
		integ:    integrate.NewVelocityVerlet(field, cfg.Dt),
		thermo:   buildThermostat(cfg),
		recorder: metrics.NewRecorder(field, cfg.SampleInterval),
	}, nil
}

// Field returns the assembled force field.
func (e *Experiment) Field() *force.Field { return e.field }

// System returns the seeded system; the runner owns it during Run.
func (e *Experiment) System() *md.System { return e.sys }

// Integrator returns the velocity-Verlet stepper.
func (e *Experiment) Integrator() *integrate.VelocityVerlet { return e.integ }

// Thermostat returns the configured thermostat.
func (e *Experiment) Thermostat() thermostat.Thermostat { return e.thermo }

// Series returns the recorded diagnostics after Run.
func (e *Experiment) Series() *metrics.Series { return e.recorder.Series() }

// Run executes the configured number of steps, streaming frames to sink
// (which may be nil).
func (e *Experiment) Run(ctx context.Context, sink sim.Sink) (*sim.Result, error) {
	runner := sim.New(e.sys, e.integ, sink)
	runner.SetThermostat(e.thermo)
	runner.AddMetric(metrics.NewEnergyDrift(e.field))
	runner.AddMetric(metrics.NewMeanTemperature())
	runner.AddMetric(metrics.NewMomentumDrift())
	runner.AddObserver(e.recorder)

	return runner.Run(ctx, sim.Config{
		Steps:        e.cfg.Steps,
		DumpInterval: e.cfg.DumpInterval,
	})
}

func buildField(cfg *config.Config) *force.Field {
	terms := []force.Term{
		force.NewLennardJones(cfg.ForceField.LennardJones.Sigma, cfg.ForceField.LennardJones.Epsilon),
	}
	if cc := cfg.ForceField.Coulomb; cc.Enabled {
		charges := make([]float64, cfg.Particles)
		for i := range charges {
			charges[i] = cc.Charge
			if i%2 == 1 {
				charges[i] = -cc.Charge
			}
		}
		terms = append(terms, force.NewCoulomb(cc.Coupling, charges))
	}
	if cfg.Workers != 1 {
		return force.NewParallel(cfg.Workers, terms...)
	}
	return force.New(terms...)
}

func buildThermostat(cfg *config.Config) thermostat.Thermostat {
	switch cfg.Thermostat.Kind {
	case "rescale":
		return thermostat.NewRescale(cfg.Temperature, cfg.Thermostat.Interval)
	case "berendsen":
		return thermostat.NewBerendsen(cfg.Temperature, cfg.Thermostat.Tau, cfg.Dt)
	default:
		return thermostat.NewNone()
	}
}
