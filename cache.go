package lvlset

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Cache pools prepared evaluation storage keyed by model identity and
// state dimension.  Preparation is a one-time cost per key: the residual
// slice, Jacobian matrix, right-hand side, step vector, and LU workspace
// are allocated once and reused every iteration.  Prepared solves produce
// exactly the numbers the unprepared path does.
//
// A solver checks an evaluator out for a whole solve and returns it when
// iteration stops, so one Cache may safely back concurrent solves against
// the same model.
//
// Models used with a Cache must be comparable; pointer models always are.
type Cache struct {
	mu   sync.Mutex
	free map[ckey][]*prepared
}

type ckey struct {
	model Model
	dim   int
}

func NewCache() *Cache {
	return &Cache{free: map[ckey][]*prepared{}}
}

// Len returns the number of idle prepared evaluators currently pooled.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ps := range c.free {
		n += len(ps)
	}
	return n
}

func (c *Cache) get(m Model) *prepared {
	k := ckey{model: m, dim: m.Dim()}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ps := c.free[k]; len(ps) > 0 {
		p := ps[len(ps)-1]
		c.free[k] = ps[:len(ps)-1]
		return p
	}
	return newPrepared(k.dim)
}

func (c *Cache) put(m Model, p *prepared) {
	k := ckey{model: m, dim: m.Dim()}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.free[k] = append(c.free[k], p)
}

type prepared struct {
	resid []float64
	rvec  *mat.VecDense
	jac   *mat.Dense
	delta *mat.VecDense
	lu    mat.LU
}

func newPrepared(dim int) *prepared {
	p := &prepared{
		resid: make([]float64, dim),
		jac:   mat.NewDense(dim, dim, nil),
		delta: mat.NewVecDense(dim, nil),
	}
	// rvec aliases resid so a residual evaluation doubles as the RHS.
	p.rvec = mat.NewVecDense(dim, p.resid)
	return p
}

func (p *prepared) residual(m Model, state []float64) ([]float64, error) {
	if ip, ok := m.(InPlace); ok {
		if err := ip.ResidualTo(p.resid, state); err != nil {
			return nil, err
		}
		return p.resid, nil
	}
	r, err := m.Residual(state)
	if err != nil {
		return nil, err
	}
	copy(p.resid, r)
	return p.resid, nil
}

func (p *prepared) step(m Model, state []float64) error {
	if ip, ok := m.(InPlace); ok {
		if err := ip.JacobianTo(p.jac, state); err != nil {
			return err
		}
	} else {
		j, err := m.Jacobian(state)
		if err != nil {
			return err
		}
		p.jac.Copy(j)
	}

	p.lu.Factorize(p.jac)
	if err := p.lu.SolveVecTo(p.delta, false, p.rvec); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	for i := range state {
		state[i] -= p.delta.AtVec(i)
	}
	return nil
}
