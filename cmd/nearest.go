package main

import (
	"fmt"
	"math"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/bench"
	"github.com/lvlset/lvlset/lagrange"
	"github.com/lvlset/lvlset/multi"
	"github.com/lvlset/lvlset/tangent"
)

func main() {
	prob := bench.CosCurve{}
	f := prob.Field()
	x := []float64{1.5, 0}
	guess := []float64{1, 0}

	s := &lvlset.Solver{Model: tangent.New(f, x), State: append([]float64{}, guess...)}
	for s.Next() {
		fmt.Printf("  iter %v: y=%v |r|=%v\n", s.Niter(), s.Best().Pos(), s.Best().Norm)
	}
	pt := s.Best()
	fmt.Printf("tangent:  y=%v  |r|=%v  (%v iters, converged=%v)\n",
		pt.Pos(), pt.Norm, s.Niter(), s.Converged())

	lp, lam, err := lagrange.Nearest(f, x, guess, lvlset.MaxIter(25))
	if err != nil {
		fmt.Println("lagrange failed:", err)
		return
	}
	fmt.Printf("lagrange: y=%v  |r|=%v  lambda=%v\n", lp.Pos(), lp.Norm, lam)

	gap := 0.0
	for i := 0; i < pt.Len(); i++ {
		gap += math.Abs(pt.At(i) - lp.At(i))
	}
	fmt.Printf("formulation disagreement: %v\n", gap)

	low, up := prob.Box()
	mp, err := multi.Nearest(f, x, 30, low, up)
	if err != nil {
		fmt.Println("multistart failed:", err)
		return
	}
	fmt.Printf("multistart nearest root: y=%v  |r|=%v\n", mp.Pos(), mp.Norm)
}
