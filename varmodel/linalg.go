package varmodel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Backend is the small linear-algebra kernel the engine is built on. The
// estimator, the confidence bands, and the variance decomposition reach
// gonum only through it, so the numerical backend can be swapped or tested
// in isolation.
type Backend interface {
	// SolveLS solves the least-squares system X*B = Y for B.
	SolveLS(x, y *mat.Dense) (*mat.Dense, error)
	// CholeskyLower returns the lower-triangular factor L with S = L*Lt.
	CholeskyLower(s *mat.SymDense) (*mat.TriDense, error)
	// LogDet returns ln det S, or -Inf when the determinant is not positive.
	LogDet(s *mat.SymDense) float64
}

// DefaultBackend is used by Estimate and by models restored from snapshots.
var DefaultBackend Backend = GonumBackend{}

// errNotPositiveDefinite is returned by CholeskyLower when factorization
// fails; callers wrap it with dimension context.
var errNotPositiveDefinite = errors.New("matrix is not positive definite")

// GonumBackend implements Backend on gonum/mat. The least-squares solve
// goes through a QR factorization, never an explicit inverse.
type GonumBackend struct{}

func (GonumBackend) SolveLS(x, y *mat.Dense) (*mat.Dense, error) {
	var b mat.Dense
	if err := b.Solve(x, y); err != nil {
		return nil, err
	}
	return &b, nil
}

func (GonumBackend) CholeskyLower(s *mat.SymDense) (*mat.TriDense, error) {
	k, _ := s.Dims()
	var ch mat.Cholesky
	if !ch.Factorize(s) {
		return nil, errNotPositiveDefinite
	}
	l := mat.NewTriDense(k, mat.Lower, nil)
	ch.LTo(l)
	return l, nil
}

func (GonumBackend) LogDet(s *mat.SymDense) float64 {
	ld, sign := mat.LogDet(s)
	if sign <= 0 || math.IsNaN(ld) {
		return math.Inf(-1)
	}
	return ld
}

// conditionOf extracts the condition-number diagnostic from a gonum solve
// error. Any failed solve is treated as singular; when gonum did not report
// a condition number the diagnostic is +Inf.
func conditionOf(err error) float64 {
	var cond mat.Condition
	if errors.As(err, &cond) {
		return float64(cond)
	}
	return math.Inf(1)
}
