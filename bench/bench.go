// Package bench provides implicit fields with known geometry for tests
// and demos.  Each problem names a field, box bounds for generating
// starting guesses, and representative nearest-point queries with the
// closed-form answer where one exists.
package bench

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/hyperdual"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/diff"
	"github.com/lvlset/lvlset/tangent"
)

// Query pairs a query point with a starting guess and, when closed form,
// the true nearest point on the zero set.
type Query struct {
	X     []float64
	Start []float64
	Want  []float64 // nil when no closed form exists
}

// Prob is a named implicit field with box bounds and queries.
type Prob interface {
	Name() string
	Field() lvlset.SecondOrder
	Box() (low, up []float64)
	Queries() []Query
}

var All = []Prob{
	Circle{R: 2},
	Sphere{R: 1.5},
	Plane{N: []float64{1, 2, -1}, D: 3},
	CosCurve{},
}

// Run solves q against p's field with the tangent-projection formulation.
func Run(p Prob, q Query, opts ...lvlset.Option) (lvlset.Point, error) {
	return tangent.Nearest(p.Field(), q.X, q.Start, opts...)
}

// Circle is f(y) = y0^2 + y1^2 - R^2.  The nearest point to any x away
// from the origin is the radial projection R*x/|x|.
type Circle struct{ R float64 }

func (c Circle) Name() string { return "Circle" }

func (c Circle) Field() lvlset.SecondOrder {
	return diff.NewField(2, func(y []hyperdual.Number) hyperdual.Number {
		sq := hyperdual.Add(hyperdual.Mul(y[0], y[0]), hyperdual.Mul(y[1], y[1]))
		return hyperdual.Sub(sq, hyperdual.Number{Real: c.R * c.R})
	})
}

// Analytic is the closed-form twin of Field, kept for cross-checking the
// differentiation provider.
func (c Circle) Analytic() lvlset.SecondOrder {
	return lvlset.Analytic{
		N:        2,
		Func:     func(y []float64) float64 { return y[0]*y[0] + y[1]*y[1] - c.R*c.R },
		GradFunc: func(y []float64) []float64 { return []float64{2 * y[0], 2 * y[1]} },
		HessFunc: func(y []float64) *mat.SymDense {
			return mat.NewSymDense(2, []float64{2, 0, 0, 2})
		},
	}
}

func (c Circle) Box() (low, up []float64) {
	return []float64{-2 * c.R, -2 * c.R}, []float64{2 * c.R, 2 * c.R}
}

func (c Circle) Queries() []Query {
	return []Query{
		{
			X:     []float64{3, 4},
			Start: []float64{1, 1},
			Want:  []float64{3 * c.R / 5, 4 * c.R / 5},
		},
		{
			X:     []float64{-0.5, 0},
			Start: []float64{-1.5, 0.3},
			Want:  []float64{-c.R, 0},
		},
	}
}

// Sphere is f(y) = |y|^2 - R^2 in three dimensions.
type Sphere struct{ R float64 }

func (s Sphere) Name() string { return "Sphere" }

func (s Sphere) Field() lvlset.SecondOrder {
	return diff.NewField(3, func(y []hyperdual.Number) hyperdual.Number {
		sq := hyperdual.Mul(y[0], y[0])
		sq = hyperdual.Add(sq, hyperdual.Mul(y[1], y[1]))
		sq = hyperdual.Add(sq, hyperdual.Mul(y[2], y[2]))
		return hyperdual.Sub(sq, hyperdual.Number{Real: s.R * s.R})
	})
}

func (s Sphere) Box() (low, up []float64) {
	return []float64{-2 * s.R, -2 * s.R, -2 * s.R}, []float64{2 * s.R, 2 * s.R, 2 * s.R}
}

func (s Sphere) Queries() []Query {
	// x = (2,2,1) has |x| = 3; the projection scales by R/3.
	k := s.R / 3
	return []Query{
		{
			X:     []float64{2, 2, 1},
			Start: []float64{1, 1, 1},
			Want:  []float64{2 * k, 2 * k, k},
		},
	}
}

// Plane is f(y) = N.y - D.  The zero set is affine, so a single Newton
// step lands exactly on the orthogonal projection x - (N.x-D)/|N|^2 * N.
type Plane struct {
	N []float64
	D float64
}

func (p Plane) Name() string { return "Plane" }

func (p Plane) Field() lvlset.SecondOrder {
	return diff.NewField(len(p.N), func(y []hyperdual.Number) hyperdual.Number {
		acc := hyperdual.Number{Real: -p.D}
		for i, ni := range p.N {
			acc = hyperdual.Add(acc, hyperdual.Scale(ni, y[i]))
		}
		return acc
	})
}

func (p Plane) Box() (low, up []float64) {
	low = make([]float64, len(p.N))
	up = make([]float64, len(p.N))
	for i := range p.N {
		low[i], up[i] = -5, 5
	}
	return low, up
}

func (p Plane) Queries() []Query {
	x := make([]float64, len(p.N))
	for i := range x {
		x[i] = float64(i + 1)
	}
	scale := (floats.Dot(p.N, x) - p.D) / floats.Dot(p.N, p.N)
	want := make([]float64, len(x))
	for i := range want {
		want[i] = x[i] - scale*p.N[i]
	}
	return []Query{{X: x, Start: make([]float64, len(x)), Want: want}}
}

// CosCurve is f(y) = cos(y0+y1) - cos(y0*y1) + 1/2, a wavy implicit curve
// with no closed-form projection.
type CosCurve struct{}

func (CosCurve) Name() string { return "CosCurve" }

func (CosCurve) Field() lvlset.SecondOrder {
	return diff.NewField(2, func(y []hyperdual.Number) hyperdual.Number {
		a := hyperdual.Cos(hyperdual.Add(y[0], y[1]))
		b := hyperdual.Cos(hyperdual.Mul(y[0], y[1]))
		return hyperdual.Add(hyperdual.Sub(a, b), hyperdual.Number{Real: 0.5})
	})
}

func (CosCurve) Box() (low, up []float64) {
	return []float64{-2, -2}, []float64{2, 2}
}

func (CosCurve) Queries() []Query {
	return []Query{{X: []float64{1.5, 0}, Start: []float64{1, 0}}}
}
