package tricubic

// Coeffs holds the 64 power-basis coefficients of one voxel's tricubic
// polynomial, indexed c[16*k + 4*j + i] for the dx^i dy^j dz^k term.
// All evaluation happens in fractional coordinates (dx,dy,dz) in [0,1)^3;
// callers convert to spatial derivatives by dividing by the lattice spacing
// once per differentiated axis.
type Coeffs [64]float64

// cubic evaluates c0 + c1*t + c2*t^2 + c3*t^3 or one of its derivatives in
// Horner form.
func cubic(c0, c1, c2, c3, t float64, order int) float64 {
	switch order {
	case 0:
		return c0 + t*(c1+t*(c2+t*c3))
	case 1:
		return c1 + t*(2*c2+t*(3*c3))
	default:
		return 2*c2 + t*(6*c3)
	}
}

// eval computes the (ox,oy,oz) mixed partial of the polynomial at (dx,dy,dz)
// by nested Horner evaluation: the x axis innermost, then y, then z. Each
// derivative order applies standard polynomial differentiation along its
// axis; no finite differencing is involved.
func (c *Coeffs) eval(dx, dy, dz float64, ox, oy, oz int) float64 {
	var zc [4]float64
	for k := 0; k < 4; k++ {
		var yc [4]float64
		for j := 0; j < 4; j++ {
			n := 16*k + 4*j
			yc[j] = cubic(c[n], c[n+1], c[n+2], c[n+3], dx, ox)
		}
		zc[k] = cubic(yc[0], yc[1], yc[2], yc[3], dy, oy)
	}
	return cubic(zc[0], zc[1], zc[2], zc[3], dz, oz)
}

// Value evaluates the polynomial.
func (c *Coeffs) Value(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 0, 0) }

// First partials.

func (c *Coeffs) DX(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 1, 0, 0) }
func (c *Coeffs) DY(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 1, 0) }
func (c *Coeffs) DZ(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 0, 1) }

// Pure second partials, used for the diagonal of the Hessian block.

func (c *Coeffs) DXX(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 2, 0, 0) }
func (c *Coeffs) DYY(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 2, 0) }
func (c *Coeffs) DZZ(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 0, 2) }

// Mixed second partials, used for the off-diagonal of the Hessian block.

func (c *Coeffs) DXY(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 1, 1, 0) }
func (c *Coeffs) DXZ(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 1, 0, 1) }
func (c *Coeffs) DYZ(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 0, 1, 1) }

// DXYZ is the third mixed partial.
func (c *Coeffs) DXYZ(dx, dy, dz float64) float64 { return c.eval(dx, dy, dz, 1, 1, 1) }
