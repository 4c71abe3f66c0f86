package force

import (
	"runtime"
	"sync"

	"github.com/kmataru/mdbox/internal/md"
)

func defaultWorkers() int { return runtime.GOMAXPROCS(0) }

// minParallel is the particle count below which the serial kernel wins.
const minParallel = 64

// pairRanger is implemented by terms whose pair loop can be split by row.
type pairRanger interface {
	accumulateRange(pos []md.Vec3, box float64, lo, hi int, out []md.Vec3) error
}

// Field is an ordered, additive composition of interaction terms.
//
// Compute is a pure function of the positions: it never retains or mutates
// its arguments and returns a fresh force slice on every call.
type Field struct {
	terms   []Term
	workers int
}

// New builds a field over the given terms, evaluated serially.
func New(terms ...Term) *Field {
	return &Field{terms: terms, workers: 1}
}

// NewParallel builds a field whose pair loops run on up to workers
// goroutines; workers <= 0 selects GOMAXPROCS. Each worker accumulates into
// a private buffer, and buffers are reduced in a fixed order, so every pair
// still contributes exactly antisymmetrically and the total force sums to
// zero regardless of the schedule.
func NewParallel(workers int, terms ...Term) *Field {
	if workers == 1 {
		return New(terms...)
	}
	return &Field{terms: terms, workers: workers}
}

// Terms returns the composed terms in evaluation order.
func (f *Field) Terms() []Term { return f.terms }

// Compute returns the total force on every particle for the given
// positions in a cubic periodic box of edge box.
func (f *Field) Compute(pos []md.Vec3, box float64) ([]md.Vec3, error) {
	out := md.Zero3(len(pos))
	for _, t := range f.terms {
		if f.workers != 1 && len(pos) >= minParallel {
			if rt, ok := t.(pairRanger); ok {
				if err := f.computeParallel(rt, pos, box, out); err != nil {
					return nil, err
				}
				continue
			}
		}
		if err := t.Accumulate(pos, box, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Energy returns the total potential energy of all terms.
func (f *Field) Energy(pos []md.Vec3, box float64) (float64, error) {
	total := 0.0
	for _, t := range f.terms {
		pe, err := t.Energy(pos, box)
		if err != nil {
			return 0, err
		}
		total += pe
	}
	return total, nil
}

func (f *Field) computeParallel(t pairRanger, pos []md.Vec3, box float64, out []md.Vec3) error {
	n := len(pos)
	workers := f.workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	if workers > n {
		workers = n
	}

	bufs := make([][]md.Vec3, workers)
	errs := make([]error, workers)

	// Row i owns pairs (i, j>i), so early rows carry more work; interleave
	// rows across workers to balance the triangle.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			buf := md.Zero3(n)
			bufs[w] = buf
			for i := w; i < n; i += workers {
				if err := t.accumulateRange(pos, box, i, i+1, buf); err != nil {
					errs[w] = err
					return
				}
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	// Deterministic reduction: buffers are summed in worker order for
	// every particle index.
	md.ParallelFor(n, 256, workers, func(start, end int) {
		for i := start; i < end; i++ {
			for w := 0; w < workers; w++ {
				out[i] = out[i].Add(bufs[w][i])
			}
		}
	})

	return nil
}
