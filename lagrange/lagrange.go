// Package lagrange computes nearest points on implicit level sets from
// the stationarity conditions of the Lagrangian
//
//	L(y, lam) = |y-x|^2/2 + lam*f(y)
//
// over the combined state [y, lam].  It reaches the same solutions as
// package tangent at regular points but along a different, often slower
// path: the multiplier can swing widely before settling, which is
// expected behavior rather than a defect.
package lagrange

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/diff"
)

// Model is the (n+1)-dimensional stationarity residual
//
//	[y - X + lam*grad f(y), f(y)]
//
// over the state [y, lam].  T and X are read-only; one Model may back
// concurrent solves.
type Model struct {
	T lvlset.SecondOrder
	X []float64
}

func New(t lvlset.SecondOrder, x []float64) *Model {
	pos := make([]float64, len(x))
	copy(pos, x)
	return &Model{T: t, X: pos}
}

func (m *Model) Dim() int { return len(m.X) + 1 }

func (m *Model) Residual(state []float64) ([]float64, error) {
	r := make([]float64, m.Dim())
	if err := m.ResidualTo(r, state); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Model) ResidualTo(dst, state []float64) error {
	n := len(m.X)
	y, lam := state[:n], state[n]

	fv, err := m.T.F(y)
	if err != nil {
		return err
	}
	g, err := m.T.Grad(y)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		dst[i] = y[i] - m.X[i] + lam*g[i]
	}
	dst[n] = fv
	return nil
}

func (m *Model) Jacobian(state []float64) (*mat.Dense, error) {
	j := mat.NewDense(m.Dim(), m.Dim(), nil)
	if err := m.JacobianTo(j, state); err != nil {
		return nil, err
	}
	return j, nil
}

func (m *Model) JacobianTo(dst *mat.Dense, state []float64) error {
	return diff.Jacobian(dst, m.residualDual, state)
}

func (m *Model) residualDual(dst, state []dual.Number) error {
	n := len(m.X)
	y, lam := state[:n], state[n]

	fv, err := diff.FieldAt(m.T, y)
	if err != nil {
		return err
	}
	g, err := diff.GradAt(m.T, y)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		d := dual.Sub(y[i], dual.Number{Real: m.X[i]})
		dst[i] = dual.Add(d, dual.Mul(lam, g[i]))
	}
	dst[n] = fv
	return nil
}

// Nearest projects x onto the zero level set of t, starting from guess
// with the multiplier seeded at zero.  It returns the final iterate and
// multiplier whether or not the solve converged within budget.
func Nearest(t lvlset.SecondOrder, x, guess []float64, opts ...lvlset.Option) (lvlset.Point, float64, error) {
	n := len(guess)
	state := make([]float64, n+1)
	copy(state, guess)

	s := &lvlset.Solver{Model: New(t, x), State: state}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Run(); err != nil {
		return lvlset.Point{}, 0, err
	}
	p := s.Best()
	return lvlset.NewPoint(p.Pos()[:n], p.Norm), p.At(n), nil
}
