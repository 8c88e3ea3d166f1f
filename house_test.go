package lvlset

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/dual"
)

func TestHouseholder(t *testing.T) {
	tests := [][]float64{
		{1, 0},
		{3, 4},
		{-2, 1},
		{0, 5},
		{1e-8, -2, 0.5},
		{-1, -1, -1, -1},
	}

	for _, g := range tests {
		v, err := Householder(g)
		if err != nil {
			t.Errorf("g=%v: unexpected error: %v", g, err)
			continue
		}

		if nrm := floats.Norm(v, 2); math.Abs(nrm-1) > 1e-10 {
			t.Errorf("g=%v: |v| = %v, want 1", g, nrm)
		}

		q := Reflect(v, g)
		gnorm := floats.Norm(g, 2)
		if math.Abs(math.Abs(q[0])-gnorm) > 1e-10*gnorm {
			t.Errorf("g=%v: |Qg[0]| = %v, want %v", g, math.Abs(q[0]), gnorm)
		}
		for i, qi := range q[1:] {
			if math.Abs(qi) > 1e-10*gnorm {
				t.Errorf("g=%v: Qg[%v] = %v, want 0", g, i+1, qi)
			}
		}
	}
}

func TestHouseholderZeroGrad(t *testing.T) {
	if _, err := Householder([]float64{0, 0, 0}); !errors.Is(err, ErrZeroGrad) {
		t.Errorf("expected ErrZeroGrad, got %v", err)
	}
	if _, err := HouseholderDual(make([]dual.Number, 2)); !errors.Is(err, ErrZeroGrad) {
		t.Errorf("dual: expected ErrZeroGrad, got %v", err)
	}
}

func TestReflectInvolution(t *testing.T) {
	g := []float64{2, -1, 0.5}
	d := []float64{0.3, 1.7, -2}

	v, err := Householder(g)
	if err != nil {
		t.Fatal(err)
	}
	qqd := Reflect(v, Reflect(v, d))
	if !floats.EqualApprox(qqd, d, 1e-12) {
		t.Errorf("QQd = %v, want %v", qqd, d)
	}
}

// The dual construction must agree with the float one in value, and its
// derivative part must agree with a divided difference through the float
// construction.
func TestHouseholderDual(t *testing.T) {
	g := []float64{1.5, -0.7, 2.2}
	u := []float64{0.4, 1.1, -0.9}

	dg := make([]dual.Number, len(g))
	for i := range g {
		dg[i] = dual.Number{Real: g[i], Emag: u[i]}
	}
	v, err := HouseholderDual(dg)
	if err != nil {
		t.Fatal(err)
	}

	vf, err := Householder(g)
	if err != nil {
		t.Fatal(err)
	}
	for i := range vf {
		if math.Abs(v[i].Real-vf[i]) > 1e-14 {
			t.Errorf("v[%v].Real = %v, want %v", i, v[i].Real, vf[i])
		}
	}

	const h = 1e-6
	gp := make([]float64, len(g))
	gm := make([]float64, len(g))
	for i := range g {
		gp[i] = g[i] + h*u[i]
		gm[i] = g[i] - h*u[i]
	}
	vp, err := Householder(gp)
	if err != nil {
		t.Fatal(err)
	}
	vm, err := Householder(gm)
	if err != nil {
		t.Fatal(err)
	}
	for i := range vf {
		want := (vp[i] - vm[i]) / (2 * h)
		if math.Abs(v[i].Emag-want) > 1e-6 {
			t.Errorf("v[%v].Emag = %v, want about %v", i, v[i].Emag, want)
		}
	}
}
