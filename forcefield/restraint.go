package forcefield

// DefaultRestraintK is the boundary restraint stiffness used when Options
// does not override it. It is deliberately stiff: the restraint exists to
// stop atoms from leaving the tabulated region, not to model anything.
const DefaultRestraintK = 1e4

// restraint computes the harmonic penalty for a position outside the grid
// hull. Each axis is treated independently: an axis contributes k/2*d^2
// energy and k*d gradient, where d is the signed excursion past the nearer
// bound, and nothing if the coordinate is within range on that axis. The
// Hessian contribution is k on the diagonal of each restrained axis.
func restraint(pos, extent [3]float64, k float64) (e float64, g [3]float64, h [3]float64) {
	for a := 0; a < 3; a++ {
		var d float64
		switch {
		case pos[a] <= 0:
			d = pos[a]
		case pos[a] >= extent[a]:
			d = pos[a] - extent[a]
		default:
			continue
		}
		e += k / 2 * d * d
		g[a] = k * d
		h[a] = k
	}
	return e, g, h
}
