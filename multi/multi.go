// Package multi runs Newton solves from many random starting guesses and
// keeps the converged root nearest the query point.  The core solver is
// deliberately local; scattering guesses over a box is how a caller gets
// the globally nearest point on a zero set with several candidate roots.
package multi

import (
	"errors"
	"math"
	"math/rand"

	"github.com/petar/GoLLRB/llrb"

	"github.com/lvlset/lvlset"
	"github.com/lvlset/lvlset/tangent"
)

// ErrNoRoots indicates no solve converged within budget from any guess.
var ErrNoRoots = errors.New("multi: no solve converged")

var Rand Rng = rand.New(rand.NewSource(1))

type Rng interface {
	Float64() float64
}

// Guesses generates n randomly positioned starting points in the boxed
// bounds defined by low and up.  The number of dimensions is equal to
// len(low).
func Guesses(n int, low, up []float64) [][]float64 {
	if len(low) != len(up) {
		panic("low and up vectors are not same length")
	}

	ndims := len(low)

	points := make([][]float64, n)
	for i := 0; i < n; i++ {
		pos := make([]float64, ndims)
		for j := range pos {
			pos[j] = low[j] + Rand.Float64()*(up[j]-low[j])
		}
		points[i] = pos
	}
	return points
}

type item struct {
	lvlset.Point
	dist float64
}

func (p1 item) Less(than llrb.Item) bool {
	p2 := than.(item)
	return p1.dist < p2.dist
}

// Nearest runs a tangent-projection solve from each of n random guesses
// in the box [low, up] and returns the converged root closest to x.
// Guesses whose solves hit hard errors or run out of budget are skipped,
// not fatal; ErrNoRoots is returned only when every guess fails.
func Nearest(t lvlset.SecondOrder, x []float64, n int, low, up []float64, opts ...lvlset.Option) (lvlset.Point, error) {
	model := tangent.New(t, x)
	cache := lvlset.NewCache()

	roots := llrb.New()
	for _, guess := range Guesses(n, low, up) {
		s := &lvlset.Solver{Model: model, State: guess, Cache: cache}
		for _, opt := range opts {
			opt(s)
		}
		if err := s.Run(); err != nil || !s.Converged() {
			continue
		}
		p := s.Best()
		roots.InsertNoReplace(item{Point: p, dist: dist(p, x)})
	}

	if roots.Len() == 0 {
		return lvlset.Point{}, ErrNoRoots
	}
	return roots.Min().(item).Point, nil
}

func dist(p lvlset.Point, x []float64) float64 {
	sum := 0.0
	for i, xi := range x {
		d := p.At(i) - xi
		sum += d * d
	}
	return math.Sqrt(sum)
}
