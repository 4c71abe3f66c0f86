// Package analysis post-processes stored runs: mean-square displacement
// from trajectory frames and power spectra of diagnostics series.
package analysis

import (
	"fmt"

	"github.com/kmataru/mdbox/internal/md"
	"github.com/kmataru/mdbox/internal/traj"
)

// MSD computes the mean-square displacement of every stored frame relative
// to the first one.
//
// Stored positions are wrapped into [0, box), so the displacement between
// consecutive frames is first corrected by the minimum-image convention and
// then accumulated into an unwrapped trajectory per particle. This assumes
// no particle travels more than half a box length between dumps.
func MSD(frames []*traj.Frame, box float64) ([]float64, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("analysis: no frames")
	}
	n := len(frames[0].Positions)
	for _, f := range frames {
		if len(f.Positions) != n {
			return nil, fmt.Errorf("analysis: frame at step %d has %d particles, want %d",
				f.Step, len(f.Positions), n)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("analysis: empty frames")
	}

	// Cumulative unwrapped displacement per particle.
	disp := make([]md.Vec3, n)
	msd := make([]float64, len(frames))

	prev := frames[0].Positions
	for fi := 1; fi < len(frames); fi++ {
		cur := frames[fi].Positions
		sum := 0.0
		for i := 0; i < n; i++ {
			step := cur[i].Sub(prev[i]).MinImage(box)
			disp[i] = disp[i].Add(step)
			sum += disp[i].Dot(disp[i])
		}
		msd[fi] = sum / float64(n)
		prev = cur
	}
	return msd, nil
}
