package lvlset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/dual"
)

// Householder returns the unit vector v defining the reflection
//
//	Q = I - 2*v*v^T
//
// that maps g onto the first coordinate axis with magnitude |g|.  The
// shift sign(g0)*|g|*e0 (sign taken as +1 when g0 == 0) keeps the leading
// entry of the shifted copy away from catastrophic cancellation.  Q is
// orthogonal and symmetric, so the columns of Q beyond the first span the
// orthogonal complement of g without ever forming the matrix.
//
// g must be nonzero: a vanishing gradient means the iterate sits at a
// critical point of the field and no tangent frame exists there.
func Householder(g []float64) ([]float64, error) {
	nrm := floats.Norm(g, 2)
	if nrm == 0 {
		return nil, ErrZeroGrad
	}

	v := make([]float64, len(g))
	copy(v, g)
	if g[0] < 0 {
		v[0] -= nrm
	} else {
		v[0] += nrm
	}
	floats.Scale(1/floats.Norm(v, 2), v)
	return v, nil
}

// Reflect applies the reflection defined by v to d without forming Q,
// returning d - 2*v*(v.d).
func Reflect(v, d []float64) []float64 {
	vd := floats.Dot(v, d)
	out := make([]float64, len(d))
	for i := range d {
		out[i] = d[i] - 2*v[i]*vd
	}
	return out
}

// HouseholderDual is Householder over dual numbers, so residual Jacobians
// can be taken straight through the reflector.  The branch on the sign of
// g0 follows the real part only; the sign is locally constant wherever the
// construction is differentiable.
func HouseholderDual(g []dual.Number) ([]dual.Number, error) {
	var sq dual.Number
	for _, gi := range g {
		sq = dual.Add(sq, dual.Mul(gi, gi))
	}
	if sq.Real == 0 {
		return nil, ErrZeroGrad
	}
	nrm := dual.Sqrt(sq)
	if g[0].Real < 0 {
		nrm = dual.Scale(-1, nrm)
	}

	v := make([]dual.Number, len(g))
	copy(v, g)
	v[0] = dual.Add(v[0], nrm)

	var vsq dual.Number
	for _, vi := range v {
		vsq = dual.Add(vsq, dual.Mul(vi, vi))
	}
	inv := dual.Inv(dual.Sqrt(vsq))
	for i := range v {
		v[i] = dual.Mul(v[i], inv)
	}
	return v, nil
}

// ReflectDual is Reflect over dual numbers.
func ReflectDual(v, d []dual.Number) []dual.Number {
	var vd dual.Number
	for i := range v {
		vd = dual.Add(vd, dual.Mul(v[i], d[i]))
	}
	out := make([]dual.Number, len(d))
	for i := range d {
		out[i] = dual.Sub(d[i], dual.Scale(2, dual.Mul(v[i], vd)))
	}
	return out
}
