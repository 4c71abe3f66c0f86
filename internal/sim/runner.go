// Package sim drives a molecular dynamics run.
//
// A [Runner] exclusively owns one [md.System], advances it step by step
// with an integrator, feeds metrics and observers, and hands configurations
// to a frame sink on a fixed cadence. Runner instances are NOT safe for
// concurrent use.
package sim

import (
	"context"
	"fmt"

	"github.com/kmataru/mdbox/internal/md"
	"github.com/kmataru/mdbox/internal/thermostat"
)

// Stepper advances a system by one fixed timestep. Prime establishes the
// forces-match-positions invariant once before the first step.
type Stepper interface {
	Prime(sys *md.System) error
	Step(sys *md.System) error
	Dt() float64
}

// Sink receives a position frame every dump interval. Implementations own
// their resource; the caller releases it after the run on every path.
type Sink interface {
	WriteFrame(pos []md.Vec3, step int) error
}

// Metric accumulates a scalar over the run.
type Metric interface {
	Name() string
	Observe(sys *md.System, step int, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every step boundary, including step 0.
type Observer interface {
	OnStep(sys *md.System, step int, t float64)
}

// Config holds the loop parameters.
type Config struct {
	Steps        int
	DumpInterval int
}

// Result summarizes a completed run.
type Result struct {
	StepsTaken    int
	FramesWritten int
	Metrics       map[string]float64
}

// Runner owns the system for the duration of a run. No other component may
// mutate the system while Run is in flight; interruption via ctx happens
// only between steps, never mid-step.
type Runner struct {
	sys       *md.System
	stepper   Stepper
	sink      Sink
	thermo    thermostat.Thermostat
	metrics   []Metric
	observers []Observer
}

// New builds a runner. sink may be nil (no trajectory output).
func New(sys *md.System, stepper Stepper, sink Sink) *Runner {
	return &Runner{
		sys:     sys,
		stepper: stepper,
		sink:    sink,
		thermo:  thermostat.NewNone(),
	}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) SetThermostat(t thermostat.Thermostat) {
	if t != nil {
		r.thermo = t
	}
}

// System exposes the owned system for inspection after Run returns.
func (r *Runner) System() *md.System { return r.sys }

// Run advances the system cfg.Steps times, dumping a frame at every step
// index divisible by cfg.DumpInterval (step 0 included). A sink error
// aborts the run; the deterministic trajectory is invalid past the first
// failure, so nothing is retried.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := r.validate(cfg); err != nil {
		return nil, err
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	if err := r.stepper.Prime(r.sys); err != nil {
		return nil, err
	}

	result := &Result{Metrics: make(map[string]float64)}
	dt := r.stepper.Dt()

	r.notify(0, 0)
	if err := r.dump(result, 0, cfg.DumpInterval); err != nil {
		return nil, err
	}

	for step := 1; step <= cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := r.stepper.Step(r.sys); err != nil {
			return result, &md.StepError{Step: step, Time: float64(step) * dt, Wrapped: err}
		}

		r.thermo.Apply(r.sys, step)
		r.notify(step, float64(step)*dt)
		result.StepsTaken++

		if err := r.dump(result, step, cfg.DumpInterval); err != nil {
			return result, err
		}
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (r *Runner) validate(cfg Config) error {
	if err := r.sys.Check(); err != nil {
		return err
	}
	switch {
	case r.sys.N() == 0:
		return fmt.Errorf("%w: no particles", md.ErrConfig)
	case r.sys.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %g", md.ErrConfig, r.sys.Mass)
	case r.sys.Box <= 0:
		return fmt.Errorf("%w: box edge must be positive, got %g", md.ErrConfig, r.sys.Box)
	case cfg.Steps < 0:
		return fmt.Errorf("%w: steps must be non-negative, got %d", md.ErrConfig, cfg.Steps)
	case cfg.DumpInterval <= 0:
		return fmt.Errorf("%w: dump interval must be positive, got %d", md.ErrConfig, cfg.DumpInterval)
	case r.stepper.Dt() <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", md.ErrConfig, r.stepper.Dt())
	}
	return nil
}

func (r *Runner) notify(step int, t float64) {
	for _, m := range r.metrics {
		m.Observe(r.sys, step, t)
	}
	for _, o := range r.observers {
		o.OnStep(r.sys, step, t)
	}
}

func (r *Runner) dump(result *Result, step, interval int) error {
	if r.sink == nil || step%interval != 0 {
		return nil
	}
	if err := r.sink.WriteFrame(r.sys.Positions, step); err != nil {
		return fmt.Errorf("sim: frame sink failed at step %d: %w", step, err)
	}
	result.FramesWritten++
	return nil
}
