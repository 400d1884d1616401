// Package tricubic fits and evaluates tricubic polynomials over single voxels
// of a regular lattice. A voxel's polynomial is determined by 64 corner
// quantities: the value, the three first partials, the three second mixed
// partials, and the third mixed partial at each of its 8 corners, all in
// fractional (lattice-unit) coordinates.
package tricubic

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/dockgrid/grid"
)

// hermite converts the 1D constraints [f(0), f(1), f'(0), f'(1)] into the
// coefficients of a0 + a1*t + a2*t^2 + a3*t^3.
var hermite = [4][4]float64{
	{1, 0, 0, 0},
	{0, 0, 1, 0},
	{-3, 3, -2, -1},
	{2, -2, 1, 1},
}

// quantityIndex maps the derivative-axis bits (bx,by,bz) of a corner quantity
// to its slot order: f, fx, fy, fz, fxy, fxz, fyz, fxyz.
var quantityIndex = [2][2][2]int{
	{{0, 3}, {2, 6}}, // bx=0: (by,bz) -> f, fz, fy, fyz
	{{1, 5}, {4, 7}}, // bx=1: (by,bz) -> fx, fxz, fxy, fxyz
}

// basis is the 64x64 tensor-product Hermite-to-power transform. Row
// i + 4*j + 16*k holds the contribution of every corner quantity to the
// coefficient of dx^i dy^j dz^k. Built once at package init and shared
// read-only by all grids and evaluations.
var basis = newBasisMatrix()

func newBasisMatrix() *mat.Dense {
	m := mat.NewDense(64, 64, nil)
	// A 1D constraint index p encodes a derivative bit (p>>1) and a corner
	// bit (p&1). The tensor product of one constraint per axis selects one
	// corner quantity at one corner.
	for px := 0; px < 4; px++ {
		for py := 0; py < 4; py++ {
			for pz := 0; pz < 4; pz++ {
				q := quantityIndex[px>>1][py>>1][pz>>1]
				corner := (px & 1) + 2*(py&1) + 4*(pz&1)
				col := 8*q + corner
				for i := 0; i < 4; i++ {
					for j := 0; j < 4; j++ {
						for k := 0; k < 4; k++ {
							m.Set(i+4*j+16*k, col,
								hermite[i][px]*hermite[j][py]*hermite[k][pz])
						}
					}
				}
			}
		}
	}
	return m
}

// Scratch holds the work buffers for fitting one voxel polynomial. It is not
// safe for concurrent use; parallel callers keep one Scratch per worker.
type Scratch struct {
	corners [64]float64
	coeffs  Coeffs
	bv, cv  *mat.VecDense
}

// NewScratch returns a Scratch with its gonum vector views wired to the
// internal buffers.
func NewScratch() *Scratch {
	s := &Scratch{}
	s.bv = mat.NewVecDense(64, s.corners[:])
	s.cv = mat.NewVecDense(64, s.coeffs[:])
	return s
}

// Fit estimates the corner quantities of the voxel rooted at the given
// stencil origin and converts them to polynomial coefficients. The returned
// pointer aliases the Scratch and is valid until the next Fit.
func (s *Scratch) Fit(g *grid.Grid, voxel [3]int) *Coeffs {
	Corners(g, voxel, &s.corners)
	s.cv.MulVec(basis, s.bv)
	return &s.coeffs
}
