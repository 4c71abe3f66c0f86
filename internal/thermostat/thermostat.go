// Package thermostat adjusts velocities between integration steps to steer
// the system toward a target temperature. Thermostats never run mid-step;
// the simulation loop applies them only on step boundaries.
package thermostat

import (
	"math"

	"github.com/kmataru/mdbox/internal/md"
)

// Thermostat rescales the velocities of sys after a completed step.
type Thermostat interface {
	Apply(sys *md.System, step int)
}

// None leaves velocities untouched (the NVE ensemble).
type None struct{}

func NewNone() *None { return &None{} }

func (*None) Apply(*md.System, int) {}

// Rescale hard-rescales velocities to the target temperature every Interval
// steps: v *= sqrt(T₀/T). Crude but effective for equilibration.
type Rescale struct {
	Target   float64
	Interval int
}

func NewRescale(target float64, interval int) *Rescale {
	if interval < 1 {
		interval = 1
	}
	return &Rescale{Target: target, Interval: interval}
}

func (r *Rescale) Apply(sys *md.System, step int) {
	if step%r.Interval != 0 {
		return
	}
	t := sys.Temperature()
	if t == 0 {
		return
	}
	scale(sys, math.Sqrt(r.Target/t))
}

// Berendsen weakly couples the system to a heat bath with time constant
// Tau: v *= sqrt(1 + dt/τ·(T₀/T − 1)). Gentler than Rescale; does not
// sample a true canonical ensemble but relaxes temperature exponentially.
type Berendsen struct {
	Target float64
	Tau    float64
	Dt     float64
}

func NewBerendsen(target, tau, dt float64) *Berendsen {
	return &Berendsen{Target: target, Tau: tau, Dt: dt}
}

func (b *Berendsen) Apply(sys *md.System, step int) {
	t := sys.Temperature()
	if t == 0 || b.Tau == 0 {
		return
	}
	lambda2 := 1 + b.Dt/b.Tau*(b.Target/t-1)
	if lambda2 <= 0 {
		return
	}
	scale(sys, math.Sqrt(lambda2))
}

func scale(sys *md.System, factor float64) {
	for i := range sys.Velocities {
		sys.Velocities[i] = sys.Velocities[i].Scale(factor)
	}
}
