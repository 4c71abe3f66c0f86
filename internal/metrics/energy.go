// Package metrics implements scalar run diagnostics: energy drift,
// temperature, momentum conservation. Metrics follow the Observe/Value/
// Reset lifecycle driven by the simulation loop.
package metrics

import (
	"math"

	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/md"
)

// EnergyDrift tracks the maximum relative drift of the total energy
// (kinetic + potential) from its value at step 0. For velocity-Verlet on a
// Hamiltonian system this should stay small and bounded.
type EnergyDrift struct {
	field    *force.Field
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(f *force.Field) *EnergyDrift {
	return &EnergyDrift{field: f}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(sys *md.System, step int, t float64) {
	pe, err := e.field.Energy(sys.Positions, sys.Box)
	if err != nil {
		return
	}
	total := sys.KineticEnergy() + pe

	if e.samples == 0 {
		e.initial = total
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(total-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MeanTemperature averages the instantaneous temperature over the run.
type MeanTemperature struct {
	sum     float64
	samples int
}

func NewMeanTemperature() *MeanTemperature { return &MeanTemperature{} }

func (m *MeanTemperature) Name() string { return "mean_temperature" }

func (m *MeanTemperature) Observe(sys *md.System, step int, t float64) {
	m.sum += sys.Temperature()
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.samples = 0
}

// MomentumDrift tracks |p(t) − p(0)|, which antisymmetric pair forces keep
// at floating-point round-off.
type MomentumDrift struct {
	initial  md.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(sys *md.System, step int, t float64) {
	p := sys.Momentum()
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = md.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}
