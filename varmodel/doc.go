// Package varmodel fits vector autoregressions to multivariate time series
// and projects them forward.
//
// The workflow is an explicit progression of immutable values: a Panel of
// observations goes through SelectLag to a LagSelection, then through
// Estimate to a fitted Model. Forecasting, scenario evaluation, impulse
// responses and variance decomposition are methods on Model only, so an
// unfit value cannot be forecast by construction. Every operation is a
// pure computation over its inputs; models and panels are safe to share
// across goroutines without locking.
package varmodel
