package sim_test

import (
	"context"
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/integrate"
	"github.com/kmataru/mdbox/internal/md"
	"github.com/kmataru/mdbox/internal/metrics"
	"github.com/kmataru/mdbox/internal/seed"
	"github.com/kmataru/mdbox/internal/sim"
)

// gridSystem places n³ particles on a cubic lattice with the given spacing,
// centered in the box, avoiding the pathological overlaps random placement
// can produce.
func gridSystem(n int, spacing, box, mass float64) *md.System {
	sys := md.NewSystem(n*n*n, mass, box)
	offset := (box - float64(n-1)*spacing) / 2
	i := 0
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				sys.Positions[i] = md.Vec3{
					offset + float64(x)*spacing,
					offset + float64(y)*spacing,
					offset + float64(z)*spacing,
				}
				i++
			}
		}
	}
	return sys
}

type countingSink struct {
	frames []int
}

func (c *countingSink) WriteFrame(pos []md.Vec3, step int) error {
	c.frames = append(c.frames, step)
	return nil
}

type failingSink struct{}

var errDiskFull = errors.New("disk full")

func (failingSink) WriteFrame([]md.Vec3, int) error { return errDiskFull }

var _ = Describe("Runner", func() {
	var field *force.Field

	BeforeEach(func() {
		field = force.New(force.NewLennardJones(1.0, 1.0))
	})

	Describe("conservation laws", func() {
		It("conserves total momentum over a multi-particle run", func() {
			sys := gridSystem(2, 1.3, 8.0, 1.0)
			rng := rand.New(rand.NewSource(11))
			copy(sys.Velocities, seed.Velocities(rng, sys.N(), sys.Mass, 0.5))

			p0 := sys.Momentum()

			runner := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), nil)
			_, err := runner.Run(context.Background(), sim.Config{Steps: 500, DumpInterval: 100})
			Expect(err).NotTo(HaveOccurred())

			p1 := sys.Momentum()
			Expect(p1.Sub(p0).Norm()).To(BeNumerically("<", 1e-10*float64(sys.N())))
		})

		It("keeps total energy drift under 1% for a short run", func() {
			sys := gridSystem(2, 1.3, 50.0, 1.0)

			runner := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), nil)
			drift := metrics.NewEnergyDrift(field)
			runner.AddMetric(drift)

			result, err := runner.Run(context.Background(), sim.Config{Steps: 100, DumpInterval: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics["energy_drift"]).To(BeNumerically("<", 0.01))
		})
	})

	Describe("frame dumping", func() {
		It("dumps at every step index divisible by the interval, step 0 included", func() {
			sys := gridSystem(2, 1.5, 10.0, 1.0)
			sink := &countingSink{}

			runner := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), sink)
			result, err := runner.Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 5})
			Expect(err).NotTo(HaveOccurred())

			Expect(sink.frames).To(Equal([]int{0, 5, 10}))
			Expect(result.FramesWritten).To(Equal(3))
		})

		It("aborts the run when the sink fails", func() {
			sys := gridSystem(2, 1.5, 10.0, 1.0)

			runner := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), failingSink{})
			_, err := runner.Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 5})
			Expect(err).To(MatchError(errDiskFull))
		})
	})

	Describe("configuration validation", func() {
		It("rejects bad loop parameters before stepping", func() {
			sys := gridSystem(2, 1.5, 10.0, 1.0)
			stepper := integrate.NewVelocityVerlet(field, 0.001)

			_, err := sim.New(sys, stepper, nil).Run(context.Background(), sim.Config{Steps: -1, DumpInterval: 5})
			Expect(err).To(MatchError(md.ErrConfig))

			_, err = sim.New(sys, stepper, nil).Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 0})
			Expect(err).To(MatchError(md.ErrConfig))

			bad := gridSystem(2, 1.5, 10.0, 1.0)
			bad.Mass = -1
			_, err = sim.New(bad, stepper, nil).Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 5})
			Expect(err).To(MatchError(md.ErrConfig))

			_, err = sim.New(sys, integrate.NewVelocityVerlet(field, 0), nil).
				Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 5})
			Expect(err).To(MatchError(md.ErrConfig))
		})

		It("accepts a zero-step run and still dumps the initial frame", func() {
			sys := gridSystem(2, 1.5, 10.0, 1.0)
			sink := &countingSink{}

			result, err := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), sink).
				Run(context.Background(), sim.Config{Steps: 0, DumpInterval: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.StepsTaken).To(Equal(0))
			Expect(sink.frames).To(Equal([]int{0}))
		})
	})

	Describe("cancellation", func() {
		It("stops between steps when the context is canceled", func() {
			sys := gridSystem(2, 1.5, 10.0, 1.0)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), nil).
				Run(ctx, sim.Config{Steps: 1000, DumpInterval: 100})
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.StepsTaken).To(Equal(0))
		})
	})

	Describe("numeric failure", func() {
		It("surfaces a step error with step context", func() {
			sys := md.NewSystem(2, 1.0, 10.0)
			sys.Positions[0] = md.Vec3{0, 5, 5}
			sys.Positions[1] = md.Vec3{1e-60, 5, 5}

			_, err := sim.New(sys, integrate.NewVelocityVerlet(field, 0.001), nil).
				Run(context.Background(), sim.Config{Steps: 10, DumpInterval: 5})
			Expect(err).To(MatchError(md.ErrNumeric))

			var stepErr *md.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Step).To(Equal(1))
		})
	})
})
