// Package diff supplies exact derivatives - gradients, Hessians, and
// residual Jacobians - by forward-mode evaluation over dual and hyperdual
// numbers.  Derivatives match the mathematical ones to floating-point
// precision; nothing here approximates by finite differences.
package diff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/lvlset/lvlset"
)

// Func is a scalar field written over hyperdual numbers.  Writing the
// field once in hyperdual arithmetic yields its value, gradient, and
// Hessian from seeded evaluations.
type Func func(y []hyperdual.Number) hyperdual.Number

// Field derives the lvlset.SecondOrder contract from a hyperdual field
// definition.  A seeded evaluation with E1 = e_i reads off the i-th
// partial; seeding E1 = e_i, E2 = e_j reads off the (i,j) second partial.
type Field struct {
	n  int
	fn Func
}

func NewField(n int, fn Func) *Field { return &Field{n: n, fn: fn} }

func (f *Field) Dim() int { return f.n }

// eval runs fn at y with optional unit seeds on coordinates i and j
// (negative means unseeded).
func (f *Field) eval(y []float64, i, j int) (hyperdual.Number, error) {
	args := make([]hyperdual.Number, f.n)
	for k, yk := range y {
		args[k] = hyperdual.Number{Real: yk}
	}
	if i >= 0 {
		args[i].E1mag = 1
	}
	if j >= 0 {
		args[j].E2mag = 1
	}

	r := f.fn(args)
	if math.IsNaN(r.Real) || math.IsInf(r.Real, 0) {
		return r, fmt.Errorf("%w at %v", lvlset.ErrUndefined, y)
	}
	return r, nil
}

func (f *Field) F(y []float64) (float64, error) {
	r, err := f.eval(y, -1, -1)
	return r.Real, err
}

func (f *Field) Grad(y []float64) ([]float64, error) {
	g := make([]float64, f.n)
	for i := range g {
		r, err := f.eval(y, i, -1)
		if err != nil {
			return nil, err
		}
		g[i] = r.E1mag
	}
	return g, nil
}

func (f *Field) Hess(y []float64) (*mat.SymDense, error) {
	h := mat.NewSymDense(f.n, nil)
	for i := 0; i < f.n; i++ {
		for j := i; j < f.n; j++ {
			r, err := f.eval(y, i, j)
			if err != nil {
				return nil, err
			}
			h.SetSym(i, j, r.E1E2mag)
		}
	}
	return h, nil
}

// VectorFunc evaluates an m-dimensional residual at a dual point, writing
// the result into dst.
type VectorFunc func(dst, y []dual.Number) error

// Jacobian fills square dst with the derivative of fn at x, one seeded
// forward pass per column.
func Jacobian(dst *mat.Dense, fn VectorFunc, x []float64) error {
	m, n := dst.Dims()
	if n != len(x) {
		panic(fmt.Sprintf("jacobian cols %v incompatible with point len %v", n, len(x)))
	}

	args := make([]dual.Number, n)
	out := make([]dual.Number, m)
	for j := 0; j < n; j++ {
		for k, xk := range x {
			args[k] = dual.Number{Real: xk}
		}
		args[j].Emag = 1
		if err := fn(out, args); err != nil {
			return err
		}
		for i := 0; i < m; i++ {
			dst.Set(i, j, out[i].Emag)
		}
	}
	return nil
}

// FieldAt evaluates t at the dual point y.  By the chain rule
// f(y + eps*u) = f(y) + eps*grad(y).u, so only the field gradient is
// needed to propagate the perturbation.
func FieldAt(t lvlset.Field, y []dual.Number) (dual.Number, error) {
	x := reals(y)
	fv, err := t.F(x)
	if err != nil {
		return dual.Number{}, err
	}
	g, err := t.Grad(x)
	if err != nil {
		return dual.Number{}, err
	}

	var e float64
	for i, gi := range g {
		e += gi * y[i].Emag
	}
	return dual.Number{Real: fv, Emag: e}, nil
}

// GradAt evaluates the gradient of t at the dual point y; the perturbation
// propagates through the Hessian applied to the perturbation direction.
func GradAt(t lvlset.SecondOrder, y []dual.Number) ([]dual.Number, error) {
	x := reals(y)
	g, err := t.Grad(x)
	if err != nil {
		return nil, err
	}
	h, err := t.Hess(x)
	if err != nil {
		return nil, err
	}

	out := make([]dual.Number, len(y))
	for i := range out {
		var e float64
		for j := range y {
			e += h.At(i, j) * y[j].Emag
		}
		out[i] = dual.Number{Real: g[i], Emag: e}
	}
	return out, nil
}

func reals(y []dual.Number) []float64 {
	x := make([]float64, len(y))
	for i, yi := range y {
		x[i] = yi.Real
	}
	return x
}
