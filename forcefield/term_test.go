package forcefield

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/dockgrid/grid"
)

// smoothSurface is a pair of Gaussian wells, smooth enough for
// finite-difference checks of the analytic derivatives.
func smoothSurface(x, y, z float64) float64 {
	well := func(cx, cy, cz, depth, sigma float64) float64 {
		r2 := (x-cx)*(x-cx) + (y-cy)*(y-cy) + (z-cz)*(z-cz)
		return depth * math.Exp(-r2/(2*sigma*sigma))
	}
	return well(0.8, 1.0, 1.0, -8, 0.3) + well(1.3, 0.9, 1.1, 4, 0.25)
}

func smoothGrid(t testing.TB, maxCap float64) *grid.Grid {
	t.Helper()
	g, err := grid.FromFunc([3]int{21, 21, 21}, [3]float64{0.1, 0.1, 0.1}, maxCap, smoothSurface)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func singleAtomTerm(t testing.TB, g *grid.Grid, strength float64) *GridTerm {
	t.Helper()
	return NewGridTerm(g, strength, []float64{1}, Options{})
}

// awayFromFaces nudges coordinates off voxel faces so a finite-difference
// stencil around the point stays within one voxel, where the interpolant is
// an ordinary polynomial.
func awayFromFaces(pos [3]float64, spacing float64) [3]float64 {
	for a := range pos {
		cell := math.Floor(pos[a] / spacing)
		f := pos[a]/spacing - cell
		if f < 0.01 {
			pos[a] = (cell + 0.01) * spacing
		} else if f > 0.99 {
			pos[a] = (cell + 0.99) * spacing
		}
	}
	return pos
}

func TestLatticePointExactness(t *testing.T) {
	const maxCap = 6.0
	g := smoothGrid(t, maxCap)
	term := singleAtomTerm(t, g, 1)
	req := Request{}

	// Strictly inside the guard margin, evaluating at an exact lattice
	// coordinate must reproduce the capped stored value.
	for _, p := range [][3]int{{5, 10, 10}, {8, 8, 12}, {13, 9, 10}} {
		pos := [3]float64{float64(p[0]) * 0.1, float64(p[1]) * 0.1, float64(p[2]) * 0.1}
		out := NewOutput(1, req)
		e := term.Evaluate([][3]float64{pos}, req, out)

		raw := smoothSurface(pos[0], pos[1], pos[2])
		want := maxCap * math.Tanh(raw/maxCap)
		if math.Abs(e-want) > 1e-9 {
			t.Errorf("energy at lattice point %v = %g, want %g", p, e, want)
		}
	}
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	g := smoothGrid(t, 0)
	term := singleAtomTerm(t, g, 1.7)
	rng := rand.New(rand.NewSource(3))

	energyAt := func(pos [3]float64) float64 {
		out := NewOutput(1, Request{})
		return term.Evaluate([][3]float64{pos}, Request{}, out)
	}

	const h = 1e-5
	for n := 0; n < 25; n++ {
		pos := awayFromFaces([3]float64{
			0.3 + 1.4*rng.Float64(),
			0.3 + 1.4*rng.Float64(),
			0.3 + 1.4*rng.Float64(),
		}, 0.1)
		req := Request{Gradient: true}
		out := NewOutput(1, req)
		term.Evaluate([][3]float64{pos}, req, out)

		for a := 0; a < 3; a++ {
			lo, hi := pos, pos
			lo[a] -= h
			hi[a] += h
			fd := (energyAt(hi) - energyAt(lo)) / (2 * h)
			if math.Abs(out.Gradient[0][a]-fd) > 1e-5*math.Max(1, math.Abs(fd)) {
				t.Errorf("gradient[%d] at %v = %g, finite difference gives %g",
					a, pos, out.Gradient[0][a], fd)
			}
		}
	}
}

func TestHessianMatchesFiniteDifference(t *testing.T) {
	g := smoothGrid(t, 0)
	term := singleAtomTerm(t, g, 1)
	rng := rand.New(rand.NewSource(9))

	gradAt := func(pos [3]float64) [3]float64 {
		req := Request{Gradient: true}
		out := NewOutput(1, req)
		term.Evaluate([][3]float64{pos}, req, out)
		return out.Gradient[0]
	}

	const h = 1e-5
	for n := 0; n < 10; n++ {
		pos := awayFromFaces([3]float64{
			0.3 + 1.4*rng.Float64(),
			0.3 + 1.4*rng.Float64(),
			0.3 + 1.4*rng.Float64(),
		}, 0.1)
		req := Request{Hessian: true}
		out := NewOutput(1, req)
		term.Evaluate([][3]float64{pos}, req, out)

		for a := 0; a < 3; a++ {
			lo, hi := pos, pos
			lo[a] -= h
			hi[a] += h
			glo, ghi := gradAt(lo), gradAt(hi)
			for b := 0; b < 3; b++ {
				fd := (ghi[b] - glo[b]) / (2 * h)
				if math.Abs(out.Hessian[0][a][b]-fd) > 1e-4*math.Max(1, math.Abs(fd)) {
					t.Errorf("hessian[%d][%d] at %v = %g, finite difference gives %g",
						a, b, pos, out.Hessian[0][a][b], fd)
				}
			}
		}
	}
}

func TestHessianBlockSymmetry(t *testing.T) {
	g := smoothGrid(t, 0)
	term := singleAtomTerm(t, g, 1)

	req := Request{Hessian: true}
	out := NewOutput(1, req)
	term.Evaluate([][3]float64{{0.83, 1.07, 0.95}}, req, out)

	hb := out.Hessian[0]
	for a := 0; a < 3; a++ {
		for b := a + 1; b < 3; b++ {
			if hb[a][b] != hb[b][a] {
				t.Errorf("hessian block not symmetric: [%d][%d]=%g, [%d][%d]=%g",
					a, b, hb[a][b], b, a, hb[b][a])
			}
		}
	}
}

func TestZeroCouplingSkip(t *testing.T) {
	g := smoothGrid(t, 0)
	// Second atom does not couple and sits far outside the hull; it must
	// contribute exactly nothing, not even restraint energy.
	term := NewGridTerm(g, 2, []float64{1, 0}, Options{})

	req := Request{Gradient: true, Hessian: true}
	out := NewOutput(2, req)
	positions := [][3]float64{
		{1.0, 1.0, 1.0},
		{-50, 1e6, 3},
	}
	term.Evaluate(positions, req, out)

	if out.Gradient[1] != ([3]float64{}) {
		t.Errorf("zero-coupling atom got gradient %v", out.Gradient[1])
	}
	if out.Hessian[1] != ([3][3]float64{}) {
		t.Errorf("zero-coupling atom got hessian %v", out.Hessian[1])
	}

	// Energy must equal the coupled atom's alone.
	soloTerm := NewGridTerm(g, 2, []float64{1}, Options{})
	soloOut := NewOutput(1, req)
	want := soloTerm.Evaluate(positions[:1], req, soloOut)
	if got := out.Energy; got != want {
		t.Errorf("energy with zero-coupled atom = %g, want %g", got, want)
	}
}

func TestScalingFactorScalesLinearly(t *testing.T) {
	g := smoothGrid(t, 0)
	pos := [][3]float64{{0.9, 1.1, 1.0}}
	req := Request{Gradient: true}

	t1 := NewGridTerm(g, 1, []float64{1}, Options{})
	t3 := NewGridTerm(g, 1, []float64{3}, Options{})
	o1 := NewOutput(1, req)
	o3 := NewOutput(1, req)
	e1 := t1.Evaluate(pos, req, o1)
	e3 := t3.Evaluate(pos, req, o3)

	if math.Abs(e3-3*e1) > 1e-12*math.Abs(e1) {
		t.Errorf("tripled scaling factor: energy %g, want %g", e3, 3*e1)
	}
	for a := 0; a < 3; a++ {
		if math.Abs(o3.Gradient[0][a]-3*o1.Gradient[0][a]) > 1e-10 {
			t.Errorf("tripled scaling factor: gradient[%d] %g, want %g",
				a, o3.Gradient[0][a], 3*o1.Gradient[0][a])
		}
	}
}

func TestEvaluateAddsNeverOverwrites(t *testing.T) {
	g := smoothGrid(t, 0)
	term := singleAtomTerm(t, g, 1)
	pos := [][3]float64{{0.7, 1.2, 0.9}}
	req := Request{Gradient: true, Hessian: true}

	fresh := NewOutput(1, req)
	e := term.Evaluate(pos, req, fresh)

	// Determinism: a second run into fresh buffers gives identical results.
	again := NewOutput(1, req)
	if e2 := term.Evaluate(pos, req, again); e2 != e {
		t.Errorf("second evaluation energy %g != first %g", e2, e)
	}
	if again.Gradient[0] != fresh.Gradient[0] {
		t.Errorf("second evaluation gradient %v != first %v", again.Gradient[0], fresh.Gradient[0])
	}

	// Pre-populated buffers accumulate.
	pre := NewOutput(1, req)
	pre.Energy = 10
	pre.Gradient[0] = [3]float64{1, 2, 3}
	pre.Hessian[0][1][2] = 4
	term.Evaluate(pos, req, pre)

	if math.Abs(pre.Energy-(10+e)) > 1e-12 {
		t.Errorf("pre-populated energy = %g, want %g", pre.Energy, 10+e)
	}
	for a := 0; a < 3; a++ {
		want := float64(a+1) + fresh.Gradient[0][a]
		if math.Abs(pre.Gradient[0][a]-want) > 1e-12 {
			t.Errorf("pre-populated gradient[%d] = %g, want %g", a, pre.Gradient[0][a], want)
		}
	}
	if want := 4 + fresh.Hessian[0][1][2]; math.Abs(pre.Hessian[0][1][2]-want) > 1e-12 {
		t.Errorf("pre-populated hessian[1][2] = %g, want %g", pre.Hessian[0][1][2], want)
	}
}

func TestTermSetSumsContributions(t *testing.T) {
	g := smoothGrid(t, 0)
	pos := [][3]float64{{0.9, 1.0, 1.1}}
	req := Request{Gradient: true}

	set := TermSet{
		NewGridTerm(g, 1.0, []float64{1}, Options{}),
		NewGridTerm(g, 0.5, []float64{1}, Options{}),
	}
	out := NewOutput(1, req)
	total := set.Evaluate(pos, req, out)

	single := NewOutput(1, req)
	e := set[0].Evaluate(pos, req, single)

	if math.Abs(total-1.5*e) > 1e-12*math.Abs(e) {
		t.Errorf("term set energy = %g, want %g", total, 1.5*e)
	}
	if math.Abs(out.Energy-total) > 1e-12 {
		t.Errorf("out.Energy = %g, want %g", out.Energy, total)
	}
}

func TestEvaluatePanicsOnMismatch(t *testing.T) {
	g := smoothGrid(t, 0)
	term := NewGridTerm(g, 1, []float64{1, 1}, Options{})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for position/factor count mismatch")
		}
	}()
	out := NewOutput(1, Request{})
	term.Evaluate([][3]float64{{1, 1, 1}}, Request{}, out)
}

func BenchmarkEvaluateSerial(b *testing.B) {
	benchmarkEvaluate(b, Options{ParallelThreshold: 1 << 30})
}

func BenchmarkEvaluateParallel(b *testing.B) {
	benchmarkEvaluate(b, Options{ParallelThreshold: 1})
}

func benchmarkEvaluate(b *testing.B, opt Options) {
	g := smoothGrid(b, 0)
	const n = 512
	factors := make([]float64, n)
	positions := make([][3]float64, n)
	rng := rand.New(rand.NewSource(1))
	for i := range positions {
		factors[i] = rng.Float64()
		positions[i] = [3]float64{
			0.2 + 1.6*rng.Float64(),
			0.2 + 1.6*rng.Float64(),
			0.2 + 1.6*rng.Float64(),
		}
	}
	term := NewGridTerm(g, 1, factors, opt)
	req := Request{Gradient: true}
	out := NewOutput(n, req)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out.Reset()
		term.Evaluate(positions, req, out)
	}
}
