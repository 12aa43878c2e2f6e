package varmodel

import "fmt"

// The estimation errors below are deliberately distinct types so callers can
// tell "not enough data" from "numerically unstable" from plain misuse with
// errors.As. Estimation failures abort model construction entirely; forecast
// and decomposition failures reject only that call.

// InsufficientDataError reports a panel too short for the requested lag
// order: either no usable rows remain or the system is underdetermined.
type InsufficientDataError struct {
	T int // panel length
	K int // variables
	P int // requested lag order
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for VAR(%d): T=%d, k=%d leaves %d rows for %d regressors per equation",
		e.P, e.T, e.K, e.T-e.P, 1+e.K*e.P)
}

// SingularDesignError reports collinear lagged regressors that prevent the
// least-squares fit. Cond carries the estimated condition number of the
// design matrix (+Inf when exactly singular).
type SingularDesignError struct {
	K    int
	P    int
	N    int
	Cond float64
}

func (e *SingularDesignError) Error() string {
	return fmt.Sprintf("singular design matrix for VAR(%d): k=%d, n=%d, condition number %.3g",
		e.P, e.K, e.N, e.Cond)
}

// NoFeasibleLagError reports that no candidate lag order in [1, MaxLag]
// leaves more observations than parameters.
type NoFeasibleLagError struct {
	T      int
	K      int
	MaxLag int
}

func (e *NoFeasibleLagError) Error() string {
	return fmt.Sprintf("no feasible lag order in [1, %d]: T=%d observations of k=%d variables", e.MaxLag, e.T, e.K)
}

// DimensionMismatchError reports an input whose width does not match the
// dimension the model or panel was built with.
type DimensionMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch in %s: want %d, got %d", e.What, e.Want, e.Got)
}

// NonPositiveDefiniteError reports a residual covariance whose Cholesky
// factorization failed. LogDet carries the log-determinant of the matrix as
// a diagnostic (-Inf when the determinant is not positive).
type NonPositiveDefiniteError struct {
	K      int
	LogDet float64
}

func (e *NonPositiveDefiniteError) Error() string {
	return fmt.Sprintf("residual covariance (k=%d) is not positive definite: log-determinant %.3g", e.K, e.LogDet)
}

// UnknownVariableError reports a scenario override naming a variable the
// model does not track.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}
