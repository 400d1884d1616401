// Package forcefield implements the grid potential energy term: per-atom
// tricubic interpolation of a tabulated potential with a harmonic boundary
// restraint, accumulating energy, gradient, and per-atom Hessian blocks into
// caller-owned buffers.
package forcefield

// Request selects which derivatives the host wants this step. Energy is
// always computed.
type Request struct {
	Gradient bool
	Hessian  bool
}

// Output collects contributions from one or more energy terms. All terms add
// into it; nothing is ever overwritten, so buffers may already carry
// contributions from other terms when a GridTerm runs.
//
// The Hessian of a grid term is block-diagonal per atom, so it is stored as
// one 3x3 block per atom. Slots are per-atom-indexed, which is what lets
// parallel workers write without locking.
type Output struct {
	Energy   float64
	Gradient [][3]float64
	Hessian  [][3][3]float64
}

// NewOutput returns a zeroed Output sized for n atoms, allocating only the
// buffers the request asks for.
func NewOutput(n int, req Request) *Output {
	o := &Output{}
	if req.Gradient {
		o.Gradient = make([][3]float64, n)
	}
	if req.Hessian {
		o.Hessian = make([][3][3]float64, n)
	}
	return o
}

// Reset zeroes all buffers in place.
func (o *Output) Reset() {
	o.Energy = 0
	for i := range o.Gradient {
		o.Gradient[i] = [3]float64{}
	}
	for i := range o.Hessian {
		o.Hessian[i] = [3][3]float64{}
	}
}
