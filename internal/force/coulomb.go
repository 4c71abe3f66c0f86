package force

import (
	"fmt"
	"math"

	"github.com/kmataru/mdbox/internal/md"
)

// Coulomb is the inverse-square interaction between point charges,
// F = k·qᵢ·qⱼ/r² along the minimum-image separation. Like charges repel.
type Coulomb struct {
	// Coupling is the electrostatic constant k in reduced units.
	Coupling float64

	// Charges holds one charge per particle.
	Charges []float64
}

// NewCoulomb returns a Coulomb term over the given per-particle charges.
func NewCoulomb(coupling float64, charges []float64) *Coulomb {
	return &Coulomb{Coupling: coupling, Charges: charges}
}

func (c *Coulomb) Accumulate(pos []md.Vec3, box float64, out []md.Vec3) error {
	return c.accumulateRange(pos, box, 0, len(pos), out)
}

func (c *Coulomb) accumulateRange(pos []md.Vec3, box float64, lo, hi int, out []md.Vec3) error {
	if len(c.Charges) != len(pos) {
		return fmt.Errorf("%w: %d charges for %d particles", md.ErrDimensionMismatch, len(c.Charges), len(pos))
	}

	for i := lo; i < hi; i++ {
		for j := i + 1; j < len(pos); j++ {
			dx := pos[i].Sub(pos[j]).MinImage(box)
			r2 := dx.Dot(dx)
			if r2 == 0 {
				return fmt.Errorf("%w: particles %d and %d", md.ErrCoincident, i, j)
			}

			r := math.Sqrt(r2)
			f := c.Coupling * c.Charges[i] * c.Charges[j] / (r2 * r)

			fv := dx.Scale(f)
			out[i] = out[i].Add(fv)
			out[j] = out[j].Sub(fv)
		}
	}
	return nil
}

func (c *Coulomb) Energy(pos []md.Vec3, box float64) (float64, error) {
	if len(c.Charges) != len(pos) {
		return 0, fmt.Errorf("%w: %d charges for %d particles", md.ErrDimensionMismatch, len(c.Charges), len(pos))
	}

	pe := 0.0
	for i := 0; i < len(pos); i++ {
		for j := i + 1; j < len(pos); j++ {
			dx := pos[i].Sub(pos[j]).MinImage(box)
			r2 := dx.Dot(dx)
			if r2 == 0 {
				return 0, fmt.Errorf("%w: particles %d and %d", md.ErrCoincident, i, j)
			}
			pe += c.Coupling * c.Charges[i] * c.Charges[j] / math.Sqrt(r2)
		}
	}
	return pe, nil
}
