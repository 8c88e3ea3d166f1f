package lvlset

import (
	"database/sql"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultMaxIter = 10
	DefaultTol     = 1e-6
)

// TblIters is the table iterates are recorded into when the solver is
// given a database.
const TblIters = "newtoniters"

// Option adjusts solver configuration in the convenience entry points
// (tangent.Nearest, lagrange.Nearest, multi.Nearest).
type Option func(*Solver)

// MaxIter sets the iteration budget.
func MaxIter(n int) Option { return func(s *Solver) { s.MaxIter = n } }

// Tol sets the residual norm below which a solve counts as converged.
func Tol(tol float64) Option { return func(s *Solver) { s.Tol = tol } }

// Compiled turns on prepared evaluation backed by a solver-owned cache.
func Compiled() Option {
	return func(s *Solver) {
		if s.Cache == nil {
			s.Cache = NewCache()
		}
	}
}

// WithCache turns on prepared evaluation backed by c, which may be shared
// across solvers.
func WithCache(c *Cache) Option { return func(s *Solver) { s.Cache = c } }

// Record makes the solver insert one row per iteration into db.
func Record(db *sql.DB) Option { return func(s *Solver) { s.Db = db } }

// Solver drives a residual model to zero with Newton's method:
//
//	solve J(y)*step = r(y),  y <- y - step
//
// using exact Jacobians and no globalization.  Running out of budget is
// soft termination: the last iterate is kept and no error is reported;
// callers that care check Converged or the residual norm in Best.  Hard
// errors (undefined field, zero gradient, singular Jacobian) abort the
// solve immediately.
type Solver struct {
	Model Model
	// State is the current iterate.  Set it to the initial guess before
	// the first call to Next; the solver owns and mutates it afterward.
	State []float64
	// MaxIter is the iteration budget (default DefaultMaxIter).
	MaxIter int
	// Tol is the convergence threshold on the residual norm (default
	// DefaultTol).
	Tol float64
	// Cache, if non-nil, supplies prepared evaluation storage.  Results
	// are identical to the unprepared path.
	Cache *Cache
	// Db, if non-nil, receives one row per iteration.
	Db *sql.DB

	niter     int
	norm      float64
	converged bool
	done      bool
	err       error
	prep      *prepared
	dbready   bool
}

// Next runs a single Newton iteration and reports whether the solve can
// continue.  It returns false once the residual norm drops below Tol, the
// budget is spent, or a hard error occurs; State holds the final iterate
// in every case.
func (s *Solver) Next() bool {
	if s.done {
		return false
	}
	if s.MaxIter == 0 {
		s.MaxIter = DefaultMaxIter
	}
	if s.Tol == 0 {
		s.Tol = DefaultTol
	}
	if s.Cache != nil && s.prep == nil {
		s.prep = s.Cache.get(s.Model)
	}

	resid, err := s.residual()
	if err != nil {
		s.fail(err)
		return false
	}
	s.norm = floats.Norm(resid, 2)
	s.updatedb()

	if s.norm < s.Tol {
		s.converged = true
		s.finish()
		return false
	}
	if s.niter >= s.MaxIter {
		s.finish()
		return false
	}

	if err := s.step(resid); err != nil {
		s.fail(err)
		return false
	}
	s.niter++
	return true
}

// Run drives Next until the solve terminates and returns the first hard
// error, if any.  Budget exhaustion returns nil.
func (s *Solver) Run() error {
	for s.Next() {
	}
	return s.err
}

// Best returns the current iterate and its residual norm.
func (s *Solver) Best() Point { return NewPoint(s.State, s.norm) }

// Niter returns the number of Newton updates taken so far.
func (s *Solver) Niter() int { return s.niter }

// Converged reports whether the residual norm reached Tol.
func (s *Solver) Converged() bool { return s.converged }

func (s *Solver) Err() error { return s.err }

func (s *Solver) residual() ([]float64, error) {
	if s.prep != nil {
		return s.prep.residual(s.Model, s.State)
	}
	return s.Model.Residual(s.State)
}

func (s *Solver) step(resid []float64) error {
	if s.prep != nil {
		return s.prep.step(s.Model, s.State)
	}

	jac, err := s.Model.Jacobian(s.State)
	if err != nil {
		return err
	}
	var delta mat.VecDense
	if err := delta.SolveVec(jac, mat.NewVecDense(len(resid), resid)); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	for i := range s.State {
		s.State[i] -= delta.AtVec(i)
	}
	return nil
}

func (s *Solver) finish() {
	s.done = true
	if s.prep != nil {
		s.Cache.put(s.Model, s.prep)
		s.prep = nil
	}
}

func (s *Solver) fail(err error) {
	s.err = err
	s.finish()
}

func (s *Solver) initdb() {
	if s.Db == nil {
		return
	}
	q := "CREATE TABLE IF NOT EXISTS " + TblIters + " (iter INTEGER,norm REAL"
	q += s.xdbsql("define")
	q += ");"
	_, err := s.Db.Exec(q)
	panicif(err)
}

func (s *Solver) xdbsql(op string) string {
	str := ""
	for i := range s.State {
		if op == "?" {
			str += ",?"
		} else if op == "define" {
			str += fmt.Sprintf(",x%v REAL", i)
		} else if op == "x" {
			str += fmt.Sprintf(",x%v", i)
		} else {
			panic("invalid db op " + op)
		}
	}
	return str
}

func (s *Solver) updatedb() {
	if s.Db == nil {
		return
	}
	if !s.dbready {
		s.initdb()
		s.dbready = true
	}

	args := []interface{}{s.niter, s.norm}
	for _, x := range s.State {
		args = append(args, x)
	}
	q := "INSERT INTO " + TblIters + " (iter,norm" + s.xdbsql("x") + ") VALUES (?,?" + s.xdbsql("?") + ");"
	_, err := s.Db.Exec(q, args...)
	panicif(err)
}

func panicif(err error) {
	if err != nil {
		panic(err.Error())
	}
}

// ResidPrinter wraps a Model and prints every residual evaluation - the
// evaluation count, the state, and the residual norm - to W.
type ResidPrinter struct {
	Model
	W     io.Writer
	Count int
}

func NewResidPrinter(m Model, w io.Writer) *ResidPrinter {
	return &ResidPrinter{Model: m, W: w}
}

func (rp *ResidPrinter) Residual(state []float64) ([]float64, error) {
	r, err := rp.Model.Residual(state)

	rp.Count++
	fmt.Fprint(rp.W, rp.Count, " ")
	for _, x := range state {
		fmt.Fprint(rp.W, x, " ")
	}
	fmt.Fprintln(rp.W, "    ", floats.Norm(r, 2))

	return r, err
}
