// Package force evaluates pairwise interaction forces under periodic
// boundary conditions using the minimum-image convention.
//
// A [Field] is an ordered set of [Term] values, each contributing
// additively to the force on every particle. Terms iterate over all
// unordered pairs (i, j), i < j (a direct O(N²) evaluation with no cutoff
// and no neighbor list) and accumulate equal and opposite contributions on
// the two partners, so the total force over the system is the zero vector
// to round-off.
//
// Available terms:
//
//   - [LennardJones]: the standard 12-6 potential
//   - [Coulomb]: inverse-square electrostatics between point charges
package force
