package force

import (
	"fmt"

	"github.com/kmataru/mdbox/internal/md"
)

// Term is one pairwise interaction contributing additively to the force
// array. Accumulate must add equal and opposite vectors to the two
// particles of every pair.
type Term interface {
	// Accumulate adds the term's force contribution for every unordered
	// pair to out. out must have the same length as pos.
	Accumulate(pos []md.Vec3, box float64, out []md.Vec3) error

	// Energy returns the term's total potential energy.
	Energy(pos []md.Vec3, box float64) (float64, error)
}

// LennardJones is the 12-6 interaction with length scale Sigma and energy
// scale Epsilon. The force on particle i from particle j is
//
//	24·ε·(σ/r)⁶·(2·(σ/r)⁶ − 1)/r² · dx
//
// with dx the minimum-image separation x_i − x_j: repulsive inside the
// potential minimum r₀ = 2^(1/6)·σ, attractive beyond it.
type LennardJones struct {
	Sigma   float64
	Epsilon float64
}

// NewLennardJones returns an LJ term with explicit scales.
func NewLennardJones(sigma, epsilon float64) *LennardJones {
	return &LennardJones{Sigma: sigma, Epsilon: epsilon}
}

func (lj *LennardJones) Accumulate(pos []md.Vec3, box float64, out []md.Vec3) error {
	return lj.accumulateRange(pos, box, 0, len(pos), out)
}

// accumulateRange handles pairs (i, j), i < j, for lo <= i < hi.
func (lj *LennardJones) accumulateRange(pos []md.Vec3, box float64, lo, hi int, out []md.Vec3) error {
	sigma2 := lj.Sigma * lj.Sigma
	for i := lo; i < hi; i++ {
		for j := i + 1; j < len(pos); j++ {
			dx := pos[i].Sub(pos[j]).MinImage(box)
			r2 := dx.Dot(dx)
			if r2 == 0 {
				return fmt.Errorf("%w: particles %d and %d", md.ErrCoincident, i, j)
			}

			s2 := sigma2 / r2
			s6 := s2 * s2 * s2
			f := 24 * lj.Epsilon * s6 * (2*s6 - 1) / r2

			fv := dx.Scale(f)
			out[i] = out[i].Add(fv)
			out[j] = out[j].Sub(fv)
		}
	}
	return nil
}

func (lj *LennardJones) Energy(pos []md.Vec3, box float64) (float64, error) {
	sigma2 := lj.Sigma * lj.Sigma
	pe := 0.0
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			dx := pos[i].Sub(pos[j]).MinImage(box)
			r2 := dx.Dot(dx)
			if r2 == 0 {
				return 0, fmt.Errorf("%w: particles %d and %d", md.ErrCoincident, i, j)
			}

			s2 := sigma2 / r2
			s6 := s2 * s2 * s2
			pe += 4 * lj.Epsilon * (s6*s6 - s6)
		}
	}
	return pe, nil
}
