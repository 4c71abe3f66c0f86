package md

// System is the mutable state of a molecular dynamics run: N particles of
// uniform mass in a cubic periodic box of edge Box.
//
// Positions, Velocities and Forces always have equal length. Forces holds
// the force corresponding to the current Positions; integrators rely on
// this invariant to avoid recomputing the field at the start of a step.
type System struct {
	Positions  []Vec3
	Velocities []Vec3
	Forces     []Vec3
	Mass       float64
	Box        float64
}

// NewSystem allocates a zeroed system of n particles.
func NewSystem(n int, mass, box float64) *System {
	return &System{
		Positions:  make([]Vec3, n),
		Velocities: make([]Vec3, n),
		Forces:     make([]Vec3, n),
		Mass:       mass,
		Box:        box,
	}
}

// N returns the particle count.
func (s *System) N() int { return len(s.Positions) }

// Check verifies the equal-length invariant.
func (s *System) Check() error {
	if len(s.Velocities) != len(s.Positions) || len(s.Forces) != len(s.Positions) {
		return ErrDimensionMismatch
	}
	return nil
}

// Clone returns a deep copy sharing no storage with s.
func (s *System) Clone() *System {
	c := &System{
		Positions:  make([]Vec3, len(s.Positions)),
		Velocities: make([]Vec3, len(s.Velocities)),
		Forces:     make([]Vec3, len(s.Forces)),
		Mass:       s.Mass,
		Box:        s.Box,
	}
	copy(c.Positions, s.Positions)
	copy(c.Velocities, s.Velocities)
	copy(c.Forces, s.Forces)
	return c
}

// IsValid reports whether every component of the state is finite.
func (s *System) IsValid() bool {
	for i := range s.Positions {
		if !s.Positions[i].IsValid() || !s.Velocities[i].IsValid() || !s.Forces[i].IsValid() {
			return false
		}
	}
	return true
}

// KineticEnergy returns 0.5·m·Σ|v|².
func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for _, v := range s.Velocities {
		ke += v.Dot(v)
	}
	return 0.5 * s.Mass * ke
}

// Momentum returns the total momentum m·Σv.
func (s *System) Momentum() Vec3 {
	var p Vec3
	for _, v := range s.Velocities {
		p = p.Add(v)
	}
	return p.Scale(s.Mass)
}

// Temperature returns the instantaneous temperature 2·KE/(3·N) in reduced
// units (kB = 1). Zero for an empty system.
func (s *System) Temperature() float64 {
	n := s.N()
	if n == 0 {
		return 0
	}
	return 2 * s.KineticEnergy() / (3 * float64(n))
}
