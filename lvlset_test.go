package lvlset

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPointCopies(t *testing.T) {
	pos := []float64{1, 2, 3}
	p := NewPoint(pos, 0.5)

	pos[0] = 99
	if p.At(0) != 1 {
		t.Errorf("NewPoint aliased its input: p.At(0) = %v", p.At(0))
	}

	out := p.Pos()
	out[1] = -1
	if p.At(1) != 2 {
		t.Errorf("Pos aliased internal state: p.At(1) = %v", p.At(1))
	}
	if p.Len() != 3 || p.Norm != 0.5 {
		t.Errorf("got Len=%v Norm=%v, want 3 and 0.5", p.Len(), p.Norm)
	}
}

func TestAnalytic(t *testing.T) {
	f := Analytic{
		N:        2,
		Func:     func(y []float64) float64 { return y[0]*y[0] + y[1]*y[1] - 4 },
		GradFunc: func(y []float64) []float64 { return []float64{2 * y[0], 2 * y[1]} },
		HessFunc: func(y []float64) *mat.SymDense {
			return mat.NewSymDense(2, []float64{2, 0, 0, 2})
		},
	}

	y := []float64{1, 2}
	if v, _ := f.F(y); v != 1 {
		t.Errorf("F = %v, want 1", v)
	}
	g, _ := f.Grad(y)
	if g[0] != 2 || g[1] != 4 {
		t.Errorf("Grad = %v, want [2 4]", g)
	}
	h, _ := f.Hess(y)
	if h.At(0, 0) != 2 || h.At(0, 1) != 0 {
		t.Errorf("unexpected Hess %v", mat.Formatted(h))
	}

	f.HessFunc = nil
	if _, err := f.Hess(y); err == nil {
		t.Errorf("expected error for missing HessFunc")
	}
}
