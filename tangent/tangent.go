// Package tangent computes nearest points on implicit level sets by
// driving the tangent-projection residual to zero.  The residual keeps
// the iterate on the surface and forces the displacement from the query
// point out of the surface tangent space, using a Householder frame built
// from the field gradient at every iterate.
package tangent

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/diff"
)

// Model is the n-dimensional residual for projecting X onto the zero
// level set of T.  Slot 0 always holds the surface constraint f(y).
// Slots 1..n-1 hold the trailing components of the reflected displacement
// Q*(y-X); the reflection maps the gradient direction onto the first
// axis, so those components vanish exactly when y-X is parallel to the
// gradient.  Both T and X are read-only; one Model may back concurrent
// solves.
type Model struct {
	T lvlset.SecondOrder
	X []float64
}

func New(t lvlset.SecondOrder, x []float64) *Model {
	pos := make([]float64, len(x))
	copy(pos, x)
	return &Model{T: t, X: pos}
}

func (m *Model) Dim() int { return len(m.X) }

func (m *Model) Residual(y []float64) ([]float64, error) {
	r := make([]float64, m.Dim())
	if err := m.ResidualTo(r, y); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Model) ResidualTo(dst, y []float64) error {
	fv, err := m.T.F(y)
	if err != nil {
		return err
	}
	g, err := m.T.Grad(y)
	if err != nil {
		return err
	}
	// The frame is rebuilt from the gradient every call; it changes with y
	// and must not be cached.
	v, err := lvlset.Householder(g)
	if err != nil {
		return err
	}

	d := make([]float64, len(y))
	for i := range d {
		d[i] = y[i] - m.X[i]
	}
	qd := lvlset.Reflect(v, d)

	dst[0] = fv
	copy(dst[1:], qd[1:])
	return nil
}

func (m *Model) Jacobian(y []float64) (*mat.Dense, error) {
	j := mat.NewDense(m.Dim(), m.Dim(), nil)
	if err := m.JacobianTo(j, y); err != nil {
		return nil, err
	}
	return j, nil
}

func (m *Model) JacobianTo(dst *mat.Dense, y []float64) error {
	return diff.Jacobian(dst, m.residualDual, y)
}

// residualDual is ResidualTo in dual arithmetic.  The field value needs
// the gradient to propagate the perturbation and the gradient needs the
// Hessian, which is why the model demands a SecondOrder field.
func (m *Model) residualDual(dst, y []dual.Number) error {
	fv, err := diff.FieldAt(m.T, y)
	if err != nil {
		return err
	}
	g, err := diff.GradAt(m.T, y)
	if err != nil {
		return err
	}
	v, err := lvlset.HouseholderDual(g)
	if err != nil {
		return err
	}

	d := make([]dual.Number, len(y))
	for i := range d {
		d[i] = dual.Sub(y[i], dual.Number{Real: m.X[i]})
	}
	qd := lvlset.ReflectDual(v, d)

	dst[0] = fv
	copy(dst[1:], qd[1:])
	return nil
}

// Nearest projects x onto the zero level set of t, starting the Newton
// iteration from guess.  It returns the final iterate whether or not the
// solve converged within budget; check Point.Norm against the tolerance
// to detect non-convergence.
func Nearest(t lvlset.SecondOrder, x, guess []float64, opts ...lvlset.Option) (lvlset.Point, error) {
	s := &lvlset.Solver{Model: New(t, x), State: append([]float64{}, guess...)}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Run(); err != nil {
		return lvlset.Point{}, err
	}
	return s.Best(), nil
}
