// Package integrate advances a particle system in time.
//
// The only scheme provided is velocity-Verlet, which is symplectic and
// second-order accurate: positions are updated from the current velocity
// and force, and velocities from the trapezoidal average of the old and
// new forces. For Hamiltonian systems this bounds long-term energy drift,
// unlike plain Euler stepping.
package integrate

import (
	"fmt"

	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/md"
)

// VelocityVerlet steps a system under a force field with a fixed timestep.
//
// A step assumes sys.Forces matches sys.Positions on entry (call Prime once
// after initialization) and restores that invariant before returning, so no
// caller ever observes a position-updated-but-force-stale state. The
// integrator holds exclusive write access to the system for the duration of
// Step; it is not safe for concurrent use.
type VelocityVerlet struct {
	field *force.Field
	dt    float64

	// prev holds the positions at entry to Step so a mid-step field error
	// can be unwound; reused across steps.
	prev []md.Vec3
}

// NewVelocityVerlet returns an integrator over the given field and timestep.
func NewVelocityVerlet(f *force.Field, dt float64) *VelocityVerlet {
	return &VelocityVerlet{field: f, dt: dt}
}

// Dt returns the fixed timestep.
func (v *VelocityVerlet) Dt() float64 { return v.dt }

// Prime computes the forces for the system's current positions,
// establishing the invariant Step depends on.
func (v *VelocityVerlet) Prime(sys *md.System) error {
	if err := sys.Check(); err != nil {
		return err
	}
	f, err := v.field.Compute(sys.Positions, sys.Box)
	if err != nil {
		return err
	}
	copy(sys.Forces, f)
	return nil
}

// Step advances the system by one timestep:
//
//  1. x += v·dt + dt²/2·f₀/m
//  2. wrap each coordinate back into [0, box)
//  3. f₁ = field(x)
//  4. v += dt/2·(f₀ + f₁)/m
//  5. f₁ becomes the system's current force
//
// A single step must never displace a particle by more than one box length;
// larger displacements are a caller error (timestep too large) and are not
// corrected iteratively. If the field fails mid-step the positions are
// restored to their entry values, so no partially advanced state is ever
// observable. A finite step that produces NaN or Inf surfaces as
// md.ErrNumeric; the system state is not usable afterwards.
func (v *VelocityVerlet) Step(sys *md.System) error {
	dt := v.dt
	halfDtM := 0.5 * dt / sys.Mass
	box := sys.Box

	if cap(v.prev) < len(sys.Positions) {
		v.prev = make([]md.Vec3, len(sys.Positions))
	}
	v.prev = v.prev[:len(sys.Positions)]
	copy(v.prev, sys.Positions)

	for i := range sys.Positions {
		vel := sys.Velocities[i]
		f0 := sys.Forces[i]
		p := sys.Positions[i]
		for k := 0; k < 3; k++ {
			c := p[k] + vel[k]*dt + halfDtM*dt*f0[k]
			if c < 0 {
				c += box
			} else if c >= box {
				c -= box
			}
			p[k] = c
		}
		sys.Positions[i] = p
	}

	f1, err := v.field.Compute(sys.Positions, sys.Box)
	if err != nil {
		copy(sys.Positions, v.prev)
		return err
	}

	for i := range sys.Velocities {
		f0 := sys.Forces[i]
		sys.Velocities[i] = sys.Velocities[i].Add(f0.Add(f1[i]).Scale(halfDtM))
	}

	// Carried by value: f1 is a fresh slice from the field, copied into
	// the system's own storage.
	copy(sys.Forces, f1)

	if !sys.IsValid() {
		return fmt.Errorf("%w: state no longer finite after step", md.ErrNumeric)
	}
	return nil
}
