package force

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/kmataru/mdbox/internal/md"
)

func randomPositions(rng *rand.Rand, n int, box float64) []md.Vec3 {
	pos := make([]md.Vec3, n)
	for i := range pos {
		for k := 0; k < 3; k++ {
			pos[i][k] = rng.Float64() * box
		}
	}
	return pos
}

func netForce(forces []md.Vec3) md.Vec3 {
	var sum md.Vec3
	for _, f := range forces {
		sum = sum.Add(f)
	}
	return sum
}

func TestLennardJonesAntisymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	field := New(NewLennardJones(1.0, 1.0))

	for trial := 0; trial < 10; trial++ {
		pos := randomPositions(rng, 20, 8.0)
		forces, err := field.Compute(pos, 8.0)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		sum := netForce(forces)
		tol := 1e-10 * float64(len(pos))
		if sum.Norm() > tol {
			t.Errorf("trial %d: net force %v exceeds %g", trial, sum, tol)
		}
	}
}

func TestLennardJonesZeroAtMinimum(t *testing.T) {
	r0 := math.Pow(2, 1.0/6.0)
	field := New(NewLennardJones(1.0, 1.0))

	// Separation along each axis in a box large enough that periodic
	// images contribute nothing measurable.
	for axis := 0; axis < 3; axis++ {
		pos := make([]md.Vec3, 2)
		pos[0] = md.Vec3{50, 50, 50}
		pos[1] = pos[0]
		pos[1][axis] += r0

		forces, err := field.Compute(pos, 100.0)
		if err != nil {
			t.Fatal(err)
		}
		if forces[0].Norm() > 1e-10 || forces[1].Norm() > 1e-10 {
			t.Errorf("axis %d: force at r0 = %v, %v; want ~0", axis, forces[0], forces[1])
		}
	}
}

func TestLennardJonesRepulsiveInsideMinimum(t *testing.T) {
	field := New(NewLennardJones(1.0, 1.0))
	pos := []md.Vec3{{5, 5, 5}, {5.9, 5, 5}} // r = 0.9 < r0

	forces, err := field.Compute(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	if forces[0][0] >= 0 {
		t.Errorf("particle 0 force %v; want repulsion toward -x", forces[0])
	}
	if forces[1][0] <= 0 {
		t.Errorf("particle 1 force %v; want repulsion toward +x", forces[1])
	}
}

func TestLennardJonesAttractiveBeyondMinimum(t *testing.T) {
	field := New(NewLennardJones(1.0, 1.0))
	pos := []md.Vec3{{5, 5, 5}, {7, 5, 5}} // r = 2 > r0

	forces, err := field.Compute(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	if forces[0][0] <= 0 {
		t.Errorf("particle 0 force %v; want attraction toward +x", forces[0])
	}
}

func TestMinimumImageAcrossBoundary(t *testing.T) {
	// Two particles on opposite faces of the box are nearest through the
	// boundary: 0.2 apart, not 9.8.
	field := New(NewLennardJones(1.0, 1.0))
	pos := []md.Vec3{{0.1, 5, 5}, {9.9, 5, 5}}

	forces, err := field.Compute(pos, 10.0)
	if err != nil {
		t.Fatal(err)
	}

	// At r = 0.2 the interaction is strongly repulsive; particle 0 is
	// pushed in +x (away from the image at -0.1).
	if forces[0][0] <= 0 {
		t.Errorf("particle 0 force %v; want push away from periodic image", forces[0])
	}
	if forces[0].Norm() < 1 {
		t.Errorf("force magnitude %v too small for r=0.2", forces[0].Norm())
	}
}

func TestCoincidentParticles(t *testing.T) {
	field := New(NewLennardJones(1.0, 1.0))
	pos := []md.Vec3{{1, 1, 1}, {1, 1, 1}}

	_, err := field.Compute(pos, 10.0)
	if !errors.Is(err, md.ErrCoincident) {
		t.Errorf("expected ErrCoincident, got %v", err)
	}

	_, err = field.Energy(pos, 10.0)
	if !errors.Is(err, md.ErrCoincident) {
		t.Errorf("Energy: expected ErrCoincident, got %v", err)
	}
}

func TestCoulombAntisymmetryAndSign(t *testing.T) {
	charges := []float64{0.5, -0.5, 0.5, -0.5}
	rng := rand.New(rand.NewSource(7))
	field := New(NewCoulomb(1.0, charges))

	pos := randomPositions(rng, 4, 6.0)
	forces, err := field.Compute(pos, 6.0)
	if err != nil {
		t.Fatal(err)
	}
	if sum := netForce(forces); sum.Norm() > 1e-12*4 {
		t.Errorf("net coulomb force %v", sum)
	}

	// Like charges repel.
	same := New(NewCoulomb(1.0, []float64{1, 1}))
	forces, err = same.Compute([]md.Vec3{{5, 5, 5}, {6, 5, 5}}, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	if forces[0][0] >= 0 || forces[1][0] <= 0 {
		t.Errorf("like charges must repel, got %v, %v", forces[0], forces[1])
	}
}

func TestCoulombChargeCountMismatch(t *testing.T) {
	field := New(NewCoulomb(1.0, []float64{1}))
	_, err := field.Compute([]md.Vec3{{0, 0, 0}, {1, 0, 0}}, 10.0)
	if !errors.Is(err, md.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCompositeFieldAdds(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0)
	cl := NewCoulomb(1.0, []float64{1, -1})
	pos := []md.Vec3{{5, 5, 5}, {6.5, 5, 5}}

	fLJ, err := New(lj).Compute(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	fCL, err := New(cl).Compute(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	fBoth, err := New(lj, cl).Compute(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}

	for i := range fBoth {
		want := fLJ[i].Add(fCL[i])
		if fBoth[i].Sub(want).Norm() > 1e-12 {
			t.Errorf("particle %d: composite %v != %v", i, fBoth[i], want)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pos := randomPositions(rng, 128, 12.0)

	serial, err := New(NewLennardJones(1.0, 1.0)).Compute(pos, 12.0)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := NewParallel(4, NewLennardJones(1.0, 1.0)).Compute(pos, 12.0)
	if err != nil {
		t.Fatal(err)
	}

	for i := range serial {
		if serial[i].Sub(parallel[i]).Norm() > 1e-9 {
			t.Fatalf("particle %d: serial %v, parallel %v", i, serial[i], parallel[i])
		}
	}

	if sum := netForce(parallel); sum.Norm() > 1e-9*float64(len(pos)) {
		t.Errorf("parallel net force %v", sum)
	}
}

func TestParallelCoincidentSurfacesError(t *testing.T) {
	pos := randomPositions(rand.New(rand.NewSource(5)), 128, 12.0)
	pos[70] = pos[10]

	_, err := NewParallel(4, NewLennardJones(1.0, 1.0)).Compute(pos, 12.0)
	if !errors.Is(err, md.ErrCoincident) {
		t.Errorf("expected ErrCoincident, got %v", err)
	}
}

func TestFieldEnergyAtMinimum(t *testing.T) {
	r0 := math.Pow(2, 1.0/6.0)
	field := New(NewLennardJones(1.0, 1.0))
	pos := []md.Vec3{{50, 50, 50}, {50 + r0, 50, 50}}

	pe, err := field.Energy(pos, 100.0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(pe-(-1.0)) > 1e-10 {
		t.Errorf("PE at r0 = %v, want -epsilon", pe)
	}
}
