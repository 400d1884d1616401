package forcefield

import (
	"fmt"
	"runtime"

	"github.com/pthm-cable/dockgrid/grid"
	"github.com/pthm-cable/dockgrid/tricubic"
)

// defaultParallelThreshold is the minimum atom count before Evaluate fans out
// to workers. Below this the goroutine overhead costs more than it saves.
const defaultParallelThreshold = 64

// Options tunes a GridTerm beyond its required construction parameters.
// Zero values select defaults.
type Options struct {
	RestraintK        float64 // boundary restraint stiffness; 0 = DefaultRestraintK
	ParallelThreshold int     // 0 = defaultParallelThreshold
	Workers           int     // 0 = GOMAXPROCS
}

// GridTerm couples a set of atoms to one interaction grid. Each atom i
// contributes strength*factors[i] times the interpolated potential at its
// position; atoms with a zero scaling factor do not couple at all. The term
// is read-only during Evaluate and safe to share across goroutines.
type GridTerm struct {
	grid     *grid.Grid
	strength float64
	factors  []float64

	restraintK float64
	threshold  int
	workers    int
}

// NewGridTerm builds a term over g for a system with one scaling factor per
// atom. The factors slice is retained, not copied; the host owns it and must
// not mutate it during Evaluate.
func NewGridTerm(g *grid.Grid, strength float64, factors []float64, opt Options) *GridTerm {
	t := &GridTerm{
		grid:       g,
		strength:   strength,
		factors:    factors,
		restraintK: opt.RestraintK,
		threshold:  opt.ParallelThreshold,
		workers:    opt.Workers,
	}
	if t.restraintK <= 0 {
		t.restraintK = DefaultRestraintK
	}
	if t.threshold <= 0 {
		t.threshold = defaultParallelThreshold
	}
	if t.workers <= 0 {
		t.workers = runtime.GOMAXPROCS(0)
	}
	return t
}

// Grid returns the term's lattice.
func (t *GridTerm) Grid() *grid.Grid { return t.grid }

// Strength returns the current global multiplier.
func (t *GridTerm) Strength() float64 { return t.strength }

// SetStrength retunes the global multiplier, e.g. between annealing steps.
// Not safe to call while Evaluate is running.
func (t *GridTerm) SetStrength(s float64) { t.strength = s }

// Evaluate adds this term's contribution for the given atom positions into
// out and returns the term's own total energy. Gradient and Hessian buffers
// are touched only when requested and only ever added to.
//
// Positions must match the scaling-factor count the term was built with, and
// requested buffers must cover every atom; a mismatch is a wiring defect in
// the host, not a runtime condition, and panics.
func (t *GridTerm) Evaluate(positions [][3]float64, req Request, out *Output) float64 {
	if len(positions) != len(t.factors) {
		panic(fmt.Sprintf("forcefield: %d positions for %d scaling factors",
			len(positions), len(t.factors)))
	}
	if req.Gradient && len(out.Gradient) < len(positions) {
		panic(fmt.Sprintf("forcefield: gradient buffer holds %d atoms, need %d",
			len(out.Gradient), len(positions)))
	}
	if req.Hessian && len(out.Hessian) < len(positions) {
		panic(fmt.Sprintf("forcefield: hessian buffer holds %d atoms, need %d",
			len(out.Hessian), len(positions)))
	}

	var total float64
	if len(positions) >= t.threshold && t.workers > 1 {
		total = t.evaluateParallel(positions, req, out)
	} else {
		scratch := tricubic.NewScratch()
		for i := range positions {
			if t.factors[i] == 0 {
				continue
			}
			total += t.evaluateAtom(i, positions[i], scratch, req, out)
		}
	}
	out.Energy += total
	return total
}

// evaluateAtom computes one atom's energy and writes its gradient and
// Hessian block when requested. The scratch must be private to the calling
// goroutine.
func (t *GridTerm) evaluateAtom(i int, pos [3]float64, scratch *tricubic.Scratch, req Request, out *Output) float64 {
	voxel, frac, ok := t.grid.Locate(pos)
	if !ok {
		// Out of the hull: the boundary restraint takes over. It is not
		// scaled by the coupling factor; it is a wall, not a potential.
		e, g, h := restraint(pos, t.grid.CornerExtent(), t.restraintK)
		if req.Gradient {
			for a := 0; a < 3; a++ {
				out.Gradient[i][a] += g[a]
			}
		}
		if req.Hessian {
			for a := 0; a < 3; a++ {
				out.Hessian[i][a][a] += h[a]
			}
		}
		return e
	}

	s := t.strength * t.factors[i]
	c := scratch.Fit(t.grid, voxel)
	dx, dy, dz := frac[0], frac[1], frac[2]
	e := s * c.Value(dx, dy, dz)

	// Chain rule: fractional derivatives become spatial ones with one 1/h
	// factor per differentiated axis.
	h := t.grid.Spacing()
	if req.Gradient {
		out.Gradient[i][0] += s * c.DX(dx, dy, dz) / h[0]
		out.Gradient[i][1] += s * c.DY(dx, dy, dz) / h[1]
		out.Gradient[i][2] += s * c.DZ(dx, dy, dz) / h[2]
	}
	if req.Hessian {
		hb := &out.Hessian[i]
		hb[0][0] += s * c.DXX(dx, dy, dz) / (h[0] * h[0])
		hb[1][1] += s * c.DYY(dx, dy, dz) / (h[1] * h[1])
		hb[2][2] += s * c.DZZ(dx, dy, dz) / (h[2] * h[2])
		xy := s * c.DXY(dx, dy, dz) / (h[0] * h[1])
		xz := s * c.DXZ(dx, dy, dz) / (h[0] * h[2])
		yz := s * c.DYZ(dx, dy, dz) / (h[1] * h[2])
		hb[0][1] += xy
		hb[1][0] += xy
		hb[0][2] += xz
		hb[2][0] += xz
		hb[1][2] += yz
		hb[2][1] += yz
	}
	return e
}

// TermSet evaluates several grid terms into the same buffers, e.g. the
// repulsive, attractive, and electrostatic interaction grids of one
// receptor. Additivity of Output is what makes this a plain loop.
type TermSet []*GridTerm

// Evaluate runs every term and returns the summed energy.
func (ts TermSet) Evaluate(positions [][3]float64, req Request, out *Output) float64 {
	var total float64
	for _, t := range ts {
		total += t.Evaluate(positions, req, out)
	}
	return total
}
