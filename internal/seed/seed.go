// Package seed generates initial conditions for a run.
//
// All randomness flows through an explicit *rand.Rand handle so runs are
// reproducible from a single seed; nothing here touches the global source.
package seed

import (
	"math"
	"math/rand"

	"github.com/kmataru/mdbox/internal/md"
)

// Positions places n particles uniformly at random in the cube [0, box)³.
func Positions(rng *rand.Rand, n int, box float64) []md.Vec3 {
	pos := make([]md.Vec3, n)
	for i := range pos {
		for k := 0; k < 3; k++ {
			pos[i][k] = rng.Float64() * box
		}
	}
	return pos
}

// Velocities draws n velocities with independent Gaussian components of
// standard deviation sqrt(temp/mass), approximating a Maxwell-Boltzmann
// distribution in reduced units (kB = 1).
//
// No center-of-mass momentum removal is performed: the net momentum is
// generally nonzero, and the antisymmetric pair forces conserve it for the
// rest of the run.
func Velocities(rng *rand.Rand, n int, mass, temp float64) []md.Vec3 {
	scale := math.Sqrt(temp / mass)
	vel := make([]md.Vec3, n)
	for i := range vel {
		for k := 0; k < 3; k++ {
			vel[i][k] = rng.NormFloat64() * scale
		}
	}
	return vel
}

// System builds a fully seeded system: uniform positions, Maxwell-Boltzmann
// velocities, zeroed forces (prime the integrator before stepping).
func System(rng *rand.Rand, n int, mass, box, temp float64) *md.System {
	sys := md.NewSystem(n, mass, box)
	copy(sys.Positions, Positions(rng, n, box))
	copy(sys.Velocities, Velocities(rng, n, mass, temp))
	return sys
}
