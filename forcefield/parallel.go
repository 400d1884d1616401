package forcefield

import (
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/dockgrid/tricubic"
)

// evaluateParallel splits the atom range into one chunk per worker. Each
// worker owns a tricubic.Scratch and a private energy cell; gradient and
// Hessian writes go straight to per-atom slots, which no two workers share,
// so the whole fan-out needs no locks. There is deliberately no cross-call
// coefficient cache: cached voxel state shared between workers was the
// classic data race here.
func (t *GridTerm) evaluateParallel(positions [][3]float64, req Request, out *Output) float64 {
	n := len(positions)
	workers := t.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	energies := make([]float64, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			scratch := tricubic.NewScratch()
			var e float64
			for i := start; i < end; i++ {
				if t.factors[i] == 0 {
					continue
				}
				e += t.evaluateAtom(i, positions[i], scratch, req, out)
			}
			energies[w] = e
		}(w, start, end)
	}
	wg.Wait()

	return floats.Sum(energies)
}
