package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// BuildDesign turns a panel and a lag order p into the regression pair
// (X, Y). Row i of both matrices corresponds to absolute time index i+p.
// X has 1+k*p columns: an intercept column of ones followed by p lag blocks
// of k columns each, most recent lag first, so column 1+(j-1)*k+v holds
// variable v at time t-j. Y has k columns holding the observations at time t.
//
// The function is pure: it never modifies the panel and allocates fresh
// matrices on every call.
func BuildDesign(panel *Panel, p int) (x, y *mat.Dense, err error) {
	if p < 1 {
		return nil, nil, fmt.Errorf("lag order must be positive, got %d", p)
	}
	t := panel.Len()
	k := panel.Width()
	n := t - p
	if n < 1 || n <= 1+k*p {
		return nil, nil, &InsufficientDataError{T: t, K: k, P: p}
	}

	x = mat.NewDense(n, 1+k*p, nil)
	y = mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j := 1; j <= p; j++ {
			src := i + p - j
			for v := 0; v < k; v++ {
				x.Set(i, 1+(j-1)*k+v, panel.At(src, v))
			}
		}
		for v := 0; v < k; v++ {
			y.Set(i, v, panel.At(i+p, v))
		}
	}
	return x, y, nil
}
