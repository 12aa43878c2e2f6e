package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GrangerResult is one directed causality test: whether the cause
// variable's lags improve the prediction of the effect variable beyond the
// effect's own history and the other variables' lags.
type GrangerResult struct {
	Cause       string
	Effect      string
	FStatistic  float64
	PValue      float64
	Lags        int
	Significant bool // at the 5% level
}

// GrangerCausality runs the F-test of the null "cause does not
// Granger-cause effect" on the panel the model was selected for, using the
// model's lag order. The unrestricted regression uses the full lag design;
// the restricted one drops every lag of the cause variable.
func (m *Model) GrangerCausality(panel *Panel, cause, effect int) (*GrangerResult, error) {
	k := panel.Width()
	if panel.Len() == 0 || k != m.k {
		return nil, &DimensionMismatchError{What: "granger panel", Want: m.k, Got: k}
	}
	if cause < 0 || cause >= k || effect < 0 || effect >= k {
		return nil, fmt.Errorf("variable index out of range: cause=%d effect=%d k=%d", cause, effect, k)
	}
	if cause == effect {
		return nil, fmt.Errorf("cause and effect must differ")
	}

	x, y, err := BuildDesign(panel, m.p)
	if err != nil {
		return nil, err
	}
	n, full := x.Dims()
	yEffect := mat.DenseCopyOf(y.Slice(0, n, effect, effect+1))

	// Restricted design: intercept plus all lag columns except the cause's.
	restricted := mat.NewDense(n, full-m.p, nil)
	for i := 0; i < n; i++ {
		col := 0
		for c := 0; c < full; c++ {
			if c > 0 && (c-1)%k == cause {
				continue
			}
			restricted.Set(i, col, x.At(i, c))
			col++
		}
	}

	rssU, err := m.residualSS(x, yEffect)
	if err != nil {
		return nil, err
	}
	rssR, err := m.residualSS(restricted, yEffect)
	if err != nil {
		return nil, err
	}

	q := float64(m.p)         // restrictions: p lags of the cause
	dof := float64(n - full)  // residual degrees of freedom, unrestricted
	if dof <= 0 {
		return nil, &InsufficientDataError{T: panel.Len(), K: k, P: m.p}
	}

	num := rssR - rssU
	if num < 0 {
		num = 0 // floating point; RSS_r >= RSS_u in exact arithmetic
	}
	f, p := 0.0, 1.0
	if den := rssU / dof; den > 0 && num > 0 {
		f = (num / q) / den
		p = 1 - distuv.F{D1: q, D2: dof}.CDF(f)
		if p < 0 {
			p = 0
		}
	}

	names := panel.Names()
	return &GrangerResult{
		Cause:       names[cause],
		Effect:      names[effect],
		FStatistic:  f,
		PValue:      p,
		Lags:        m.p,
		Significant: p < 0.05,
	}, nil
}

// GrangerMatrix runs the pairwise tests for every ordered variable pair.
// The diagonal stays nil.
func (m *Model) GrangerMatrix(panel *Panel) ([][]*GrangerResult, error) {
	k := panel.Width()
	out := make([][]*GrangerResult, k)
	for i := range out {
		out[i] = make([]*GrangerResult, k)
		for j := 0; j < k; j++ {
			if i == j {
				continue
			}
			r, err := m.GrangerCausality(panel, i, j)
			if err != nil {
				return nil, fmt.Errorf("granger %d -> %d: %w", i, j, err)
			}
			out[i][j] = r
		}
	}
	return out, nil
}

// residualSS fits y on x by least squares and returns the residual sum of
// squares.
func (m *Model) residualSS(x, y *mat.Dense) (float64, error) {
	b, err := m.alg.SolveLS(x, y)
	if err != nil {
		n, _ := x.Dims()
		return 0, &SingularDesignError{K: m.k, P: m.p, N: n, Cond: conditionOf(err)}
	}
	var fitted, resid mat.Dense
	fitted.Mul(x, b)
	resid.Sub(y, &fitted)
	rss := 0.0
	rows, _ := resid.Dims()
	for i := 0; i < rows; i++ {
		v := resid.At(i, 0)
		rss += v * v
	}
	return rss, nil
}
