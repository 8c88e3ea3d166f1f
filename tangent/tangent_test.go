package tangent_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/bench"
	"github.com/lvlset/lvlset/tangent"
)

// At the true projection of x onto the circle, every residual slot must
// vanish: the point is on the curve and the displacement is radial.
func TestResidualAtSolution(t *testing.T) {
	c := bench.Circle{R: 2}
	m := tangent.New(c.Field(), []float64{3, 4})

	r, err := m.Residual([]float64{1.2, 1.6})
	if err != nil {
		t.Fatal(err)
	}
	for i, ri := range r {
		if math.Abs(ri) > 1e-12 {
			t.Errorf("residual[%v] = %v, want 0", i, ri)
		}
	}
}

func TestConvergence(t *testing.T) {
	prob := bench.CosCurve{}
	q := prob.Queries()[0]

	p, err := tangent.Nearest(prob.Field(), q.X, q.Start)
	if err != nil {
		t.Fatal(err)
	}
	if p.Norm >= 1e-6 {
		t.Errorf("residual norm %v did not reach tolerance within budget", p.Norm)
	}

	// the solution lies on the curve
	if fv, _ := prob.Field().F(p.Pos()); math.Abs(fv) > 1e-6 {
		t.Errorf("f at solution = %v, want 0", fv)
	}
}

func TestKnownQueries(t *testing.T) {
	for _, prob := range bench.All {
		for _, q := range prob.Queries() {
			p, err := bench.Run(prob, q)
			if err != nil {
				t.Errorf("[%v] x=%v: %v", prob.Name(), q.X, err)
				continue
			}
			if p.Norm >= 1e-6 {
				t.Errorf("[%v] x=%v: norm %v did not converge", prob.Name(), q.X, p.Norm)
			}
			if q.Want != nil && !floats.EqualApprox(p.Pos(), q.Want, 1e-4) {
				t.Errorf("[%v] x=%v: got %v, want %v", prob.Name(), q.X, p.Pos(), q.Want)
			}
		}
	}
}

// The point dimension always matches the field dimension.
func TestShape(t *testing.T) {
	s := bench.Sphere{R: 1.5}
	q := s.Queries()[0]

	p, err := tangent.Nearest(s.Field(), q.X, q.Start)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Errorf("point has dimension %v, want 3", p.Len())
	}
}

// Starting on the field's critical point leaves no gradient to build a
// tangent frame from.
func TestZeroGradStart(t *testing.T) {
	c := bench.Circle{R: 2}
	_, err := tangent.Nearest(c.Field(), []float64{3, 4}, []float64{0, 0})
	if !errors.Is(err, lvlset.ErrZeroGrad) {
		t.Errorf("expected ErrZeroGrad, got %v", err)
	}
}

// An analytically-defined field and its autodiff twin drive the solver to
// the same answer.
func TestAnalyticField(t *testing.T) {
	c := bench.Circle{R: 2}
	q := c.Queries()[0]

	pa, err := tangent.Nearest(c.Analytic(), q.X, q.Start)
	if err != nil {
		t.Fatal(err)
	}
	pd, err := tangent.Nearest(c.Field(), q.X, q.Start)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(pa.Pos(), pd.Pos(), 1e-10) {
		t.Errorf("analytic %v != autodiff %v", pa.Pos(), pd.Pos())
	}
}
