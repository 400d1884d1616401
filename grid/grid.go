// Package grid provides an immutable regular 3D lattice of scalar potential
// values with voxel lookup for continuous coordinates.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// Construction errors.
var (
	ErrShape   = errors.New("grid: value count does not match lattice counts")
	ErrCounts  = errors.New("grid: lattice counts must be positive")
	ErrSpacing = errors.New("grid: lattice spacing must be positive")
)

// Grid is a regular 3D lattice of scalar values. Values are stored flat in
// row-major order with z fastest. A Grid is immutable after construction and
// safe for concurrent reads.
type Grid struct {
	counts  [3]int
	spacing [3]float64
	values  []float64
	extent  [3]float64

	nyz int // counts[1]*counts[2], x stride
}

// New builds a Grid from externally tabulated values. The values slice is
// copied. If maxCap > 0 every value is passed once through the saturating
// transform maxCap*tanh(v/maxCap); otherwise values are stored unchanged.
func New(counts [3]int, spacing [3]float64, values []float64, maxCap float64) (*Grid, error) {
	for a := 0; a < 3; a++ {
		if counts[a] <= 0 {
			return nil, fmt.Errorf("%w: axis %d count %d", ErrCounts, a, counts[a])
		}
		if spacing[a] <= 0 {
			return nil, fmt.Errorf("%w: axis %d spacing %g", ErrSpacing, a, spacing[a])
		}
	}
	n := counts[0] * counts[1] * counts[2]
	if len(values) != n {
		return nil, fmt.Errorf("%w: got %d values for %dx%dx%d lattice",
			ErrShape, len(values), counts[0], counts[1], counts[2])
	}

	g := &Grid{
		counts:  counts,
		spacing: spacing,
		values:  make([]float64, n),
		nyz:     counts[1] * counts[2],
	}
	if maxCap > 0 {
		for i, v := range values {
			g.values[i] = maxCap * math.Tanh(v/maxCap)
		}
	} else {
		copy(g.values, values)
	}
	for a := 0; a < 3; a++ {
		g.extent[a] = spacing[a] * float64(counts[a]-1)
	}
	return g, nil
}

// FromFunc tabulates f at every lattice point and builds a Grid from the
// result. Lattice point (ix,iy,iz) maps to spatial position
// (ix*spacing[0], iy*spacing[1], iz*spacing[2]).
func FromFunc(counts [3]int, spacing [3]float64, maxCap float64, f func(x, y, z float64) float64) (*Grid, error) {
	if counts[0] <= 0 || counts[1] <= 0 || counts[2] <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrCounts, counts)
	}
	values := make([]float64, counts[0]*counts[1]*counts[2])
	i := 0
	for ix := 0; ix < counts[0]; ix++ {
		x := float64(ix) * spacing[0]
		for iy := 0; iy < counts[1]; iy++ {
			y := float64(iy) * spacing[1]
			for iz := 0; iz < counts[2]; iz++ {
				values[i] = f(x, y, float64(iz)*spacing[2])
				i++
			}
		}
	}
	return New(counts, spacing, values, maxCap)
}

// index folds a lattice triple into the flat value slice. All index
// arithmetic in the package goes through here.
func (g *Grid) index(ix, iy, iz int) int {
	return ix*g.nyz + iy*g.counts[2] + iz
}

// At returns the stored value at a lattice point. Indexing is unchecked;
// callers guarantee the point is in range.
func (g *Grid) At(ix, iy, iz int) float64 {
	return g.values[g.index(ix, iy, iz)]
}

// Counts returns the number of lattice points per axis.
func (g *Grid) Counts() [3]int { return g.counts }

// Spacing returns the lattice spacing per axis in nm.
func (g *Grid) Spacing() [3]float64 { return g.spacing }

// CornerExtent returns the upper-bound coordinate spacing*(counts-1) per
// axis. Together with the origin it defines the grid hull used for boundary
// tests.
func (g *Grid) CornerExtent() [3]float64 { return g.extent }
