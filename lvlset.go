// Package lvlset computes the nearest point on an implicit curve or
// surface (the zero level set of a scalar field) to a query point.  The
// problem is recast as root finding: a residual model pins the iterate to
// the surface and aligns the displacement from the query point with the
// field gradient, and a plain Newton iteration with exact Jacobians drives
// the residual to zero.  Subpackages tangent and lagrange provide the two
// residual formulations; package diff supplies the exact derivatives.
package lvlset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrZeroGrad indicates the field gradient vanished where a tangent
	// direction was needed.  Callers must keep iterates away from critical
	// points of the field.
	ErrZeroGrad = errors.New("lvlset: zero gradient")

	// ErrSingular indicates the Newton linear solve met a singular or
	// near-singular Jacobian.  The affected solve is aborted, never retried.
	ErrSingular = errors.New("lvlset: singular jacobian")

	// ErrUndefined indicates a user field evaluated to NaN or Inf.
	ErrUndefined = errors.New("lvlset: field undefined")
)

// Field is an implicit scalar function f: R^n -> R together with its exact
// gradient.  Grad must be the true derivative of F to floating-point
// precision - finite differences break Newton convergence and are not
// acceptable.  Implementations must be pure; concurrent solves may share
// one Field.
type Field interface {
	Dim() int
	F(y []float64) (float64, error)
	Grad(y []float64) ([]float64, error)
}

// SecondOrder is a Field that also exposes its Hessian.  Both residual
// formulations differentiate through the field gradient, so their
// Jacobians need second derivatives.
type SecondOrder interface {
	Field
	Hess(y []float64) (*mat.SymDense, error)
}

// Analytic adapts closed-form function definitions to the SecondOrder
// contract.  HessFunc may be nil for fields only ever used directly, not
// through a residual Jacobian.
type Analytic struct {
	N        int
	Func     func(y []float64) float64
	GradFunc func(y []float64) []float64
	HessFunc func(y []float64) *mat.SymDense
}

func (a Analytic) Dim() int { return a.N }

func (a Analytic) F(y []float64) (float64, error) { return a.Func(y), nil }

func (a Analytic) Grad(y []float64) ([]float64, error) { return a.GradFunc(y), nil }

func (a Analytic) Hess(y []float64) (*mat.SymDense, error) {
	if a.HessFunc == nil {
		return nil, fmt.Errorf("lvlset: analytic field without hessian")
	}
	return a.HessFunc(y), nil
}

// Point is an immutable position paired with the residual norm the solver
// observed there.
type Point struct {
	pos []float64
	// Norm is the Euclidean norm of the residual at pos.
	Norm float64
}

func NewPoint(pos []float64, norm float64) Point {
	cpos := make([]float64, len(pos))
	copy(cpos, pos)
	return Point{pos: cpos, Norm: norm}
}

func (p Point) At(i int) float64 { return p.pos[i] }

func (p Point) Len() int { return len(p.pos) }

func (p Point) Pos() []float64 {
	pos := make([]float64, len(p.pos))
	copy(pos, p.pos)
	return pos
}

// Model is a square residual system r(state) = 0 for the Solver to drive.
// Dim is the state (and residual) dimension.  Jacobian must be the exact
// derivative of Residual.
type Model interface {
	Dim() int
	Residual(state []float64) ([]float64, error)
	Jacobian(state []float64) (*mat.Dense, error)
}

// InPlace is implemented by models that can evaluate into caller-owned
// storage.  Prepared (compiled) solves use it to avoid per-iteration
// allocation; results must match the allocating methods bit for bit.
type InPlace interface {
	Model
	ResidualTo(dst, state []float64) error
	JacobianTo(dst *mat.Dense, state []float64) error
}
