// Package md provides the core primitives for molecular dynamics runs.
//
// The package defines the fundamental types shared by the force, integrate
// and sim packages:
//
//   - [Vec3]: a 3-D real vector
//   - [System]: the mutable particle state (positions, velocities, forces)
//   - domain errors for configuration, numeric and degeneracy failures
//
// All quantities are in reduced units: the Boltzmann constant is 1, so the
// instantaneous temperature of a system is 2·KE/(3·N).
//
// # Ownership
//
// A System is created once by an initializer, mutated in place by exactly
// one integrator, and owned by a single simulation loop for the duration of
// a run. System is NOT safe for concurrent mutation.
package md
