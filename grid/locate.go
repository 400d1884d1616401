package grid

import "math"

// Locate maps a continuous position to the voxel containing it. The returned
// voxel index is the lower corner of the 4x4x4 stencil used by the tricubic
// fit (one below the cell's own lower corner), and frac is the fractional
// offset inside the cell, in [0,1) per axis.
//
// A position is in bounds iff 0 < pos[a] < CornerExtent()[a] strictly on
// every axis; coordinates touching the hull exactly are out of bounds. When
// the position is out of bounds Locate reports ok=false and the other return
// values are meaningless.
func (g *Grid) Locate(pos [3]float64) (voxel [3]int, frac [3]float64, ok bool) {
	for a := 0; a < 3; a++ {
		if pos[a] <= 0 || pos[a] >= g.extent[a] {
			return voxel, frac, false
		}
	}
	for a := 0; a < 3; a++ {
		t := pos[a] / g.spacing[a]
		cell := math.Floor(t)
		voxel[a] = int(cell) - 1
		frac[a] = t - cell
	}
	return voxel, frac, true
}

// StencilInRange reports whether the 4x4x4 neighborhood rooted at voxel lies
// entirely inside the lattice. For any in-bounds position this must hold as
// long as the grid was populated with its one-voxel guard margin; a failure
// is a precondition violation by the grid loader, not a recoverable
// condition.
func (g *Grid) StencilInRange(voxel [3]int) bool {
	for a := 0; a < 3; a++ {
		if voxel[a] < 0 || voxel[a]+3 > g.counts[a]-1 {
			return false
		}
	}
	return true
}
