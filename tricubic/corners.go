package tricubic

import (
	"fmt"

	"github.com/pthm-cable/dockgrid/grid"
)

// Corners estimates the 64 corner quantities of the voxel whose 4x4x4
// stencil is rooted at voxel, writing them quantity-major into b: b[8*q+c]
// where c = cx + 2*cy + 4*cz walks the 8 corners x-fastest.
//
// Every derivative is a centered difference over the lattice points adjacent
// along the differentiated axes: half-difference for first order, quarter for
// second, eighth for third. Adjacent voxels share corner estimates built from
// the same lattice points, which is what makes the fit C1 across faces.
//
// The stencil must lie inside the lattice; Corners panics otherwise, since
// that means the grid was populated without its guard margin.
func Corners(g *grid.Grid, voxel [3]int, b *[64]float64) {
	if !g.StencilInRange(voxel) {
		panic(fmt.Sprintf("tricubic: stencil at %v leaves %v lattice (missing guard margin)",
			voxel, g.Counts()))
	}

	for cz := 0; cz <= 1; cz++ {
		for cy := 0; cy <= 1; cy++ {
			for cx := 0; cx <= 1; cx++ {
				x := voxel[0] + 1 + cx
				y := voxel[1] + 1 + cy
				z := voxel[2] + 1 + cz
				c := cx + 2*cy + 4*cz

				b[c] = g.At(x, y, z)
				b[8+c] = (g.At(x+1, y, z) - g.At(x-1, y, z)) / 2
				b[16+c] = (g.At(x, y+1, z) - g.At(x, y-1, z)) / 2
				b[24+c] = (g.At(x, y, z+1) - g.At(x, y, z-1)) / 2
				b[32+c] = (g.At(x+1, y+1, z) - g.At(x-1, y+1, z) -
					g.At(x+1, y-1, z) + g.At(x-1, y-1, z)) / 4
				b[40+c] = (g.At(x+1, y, z+1) - g.At(x-1, y, z+1) -
					g.At(x+1, y, z-1) + g.At(x-1, y, z-1)) / 4
				b[48+c] = (g.At(x, y+1, z+1) - g.At(x, y-1, z+1) -
					g.At(x, y+1, z-1) + g.At(x, y-1, z-1)) / 4
				b[56+c] = (g.At(x+1, y+1, z+1) - g.At(x-1, y+1, z+1) -
					g.At(x+1, y-1, z+1) + g.At(x-1, y-1, z+1) -
					g.At(x+1, y+1, z-1) + g.At(x-1, y+1, z-1) +
					g.At(x+1, y-1, z-1) - g.At(x-1, y-1, z-1)) / 8
			}
		}
	}
}
