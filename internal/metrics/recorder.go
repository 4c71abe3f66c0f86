package metrics

import (
	"github.com/kmataru/mdbox/internal/force"
	"github.com/kmataru/mdbox/internal/md"
)

// Series is a per-step time series of run diagnostics, one sample per
// observed step boundary.
type Series struct {
	Times       []float64
	Kinetic     []float64
	Potential   []float64
	Total       []float64
	Temperature []float64
	Momentum    []float64
}

// Len returns the sample count.
func (s *Series) Len() int { return len(s.Times) }

// Recorder is an observer that captures a Series for storage and plotting.
// Every sample costs one O(N²) potential-energy evaluation, so recording
// at every step doubles the run cost.
type Recorder struct {
	field  *force.Field
	every  int
	series Series
}

// NewRecorder samples every n-th step (n < 1 records every step).
func NewRecorder(f *force.Field, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{field: f, every: every}
}

func (r *Recorder) OnStep(sys *md.System, step int, t float64) {
	if step%r.every != 0 {
		return
	}
	pe, err := r.field.Energy(sys.Positions, sys.Box)
	if err != nil {
		return
	}
	ke := sys.KineticEnergy()

	r.series.Times = append(r.series.Times, t)
	r.series.Kinetic = append(r.series.Kinetic, ke)
	r.series.Potential = append(r.series.Potential, pe)
	r.series.Total = append(r.series.Total, ke+pe)
	r.series.Temperature = append(r.series.Temperature, sys.Temperature())
	r.series.Momentum = append(r.series.Momentum, sys.Momentum().Norm())
}

// Series returns the captured samples.
func (r *Recorder) Series() *Series { return &r.series }
