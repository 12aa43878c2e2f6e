package varmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Scores holds the information-criterion values of one fitted lag order.
// All four are computed with m = k*(1+k*p), the total parameter count of
// the system, and n = T-p. FPE is NaN when n <= m, where its
// (n+m)/(n-m) factor is undefined; such fits are never eligible during lag
// selection.
type Scores struct {
	AIC  float64 `msgpack:"aic"`
	BIC  float64 `msgpack:"bic"`
	HQIC float64 `msgpack:"hqic"`
	FPE  float64 `msgpack:"fpe"`
}

// Model is a fitted VAR(p). It is a value: every field is private, every
// accessor returns a copy, and a re-fit produces a new instance, so
// concurrent forecasts and scenario runs against one Model need no
// coordination.
type Model struct {
	k      int
	p      int
	n      int
	names  []string
	c      *mat.VecDense // k intercepts
	coef   []*mat.Dense  // A_1..A_p, each k x k
	sigma  *mat.SymDense // residual covariance, k x k
	logLik float64
	scores Scores
	tail   *mat.Dense // last p observations of the fitting panel, oldest first
	alg    Backend
}

// Estimate fits a VAR(p) to the panel by multivariate least squares. The
// coefficient matrix B solves X*B = Y through the backend's QR solve, then
// splits into the intercept vector c (first row) and the lag matrices
// A_1..A_p.
//
// The residual covariance uses the maximum-likelihood convention
// Sigma = Ut*U / n with n = T-p. That choice is fixed: the criterion
// scores in Scores are only comparable across lag orders because every fit
// divides by its own n rather than a parameter-adjusted count.
func Estimate(panel *Panel, p int) (*Model, error) {
	x, y, err := BuildDesign(panel, p)
	if err != nil {
		return nil, err
	}
	k := panel.Width()
	n := panel.Len() - p

	alg := DefaultBackend
	b, err := alg.SolveLS(x, y)
	if err != nil {
		return nil, &SingularDesignError{K: k, P: p, N: n, Cond: conditionOf(err)}
	}

	c := mat.NewVecDense(k, nil)
	for eq := 0; eq < k; eq++ {
		c.SetVec(eq, b.At(0, eq))
	}
	coef := make([]*mat.Dense, p)
	for j := 0; j < p; j++ {
		a := mat.NewDense(k, k, nil)
		for eq := 0; eq < k; eq++ {
			for v := 0; v < k; v++ {
				a.Set(eq, v, b.At(1+j*k+v, eq))
			}
		}
		coef[j] = a
	}

	var fitted, resid, utu mat.Dense
	fitted.Mul(x, b)
	resid.Sub(y, &fitted)
	utu.Mul(resid.T(), &resid)

	// Symmetrize explicitly so Sigma is positive semi-definite even under
	// floating-point asymmetry in Ut*U.
	sigmaData := make([]float64, k*k)
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			sigmaData[i*k+j] = (utu.At(i, j) + utu.At(j, i)) / 2 / float64(n)
		}
	}
	sigma := mat.NewSymDense(k, sigmaData)

	logDet := alg.LogDet(sigma)
	nf, kf := float64(n), float64(k)
	logLik := -(nf*kf/2)*math.Log(2*math.Pi) - (nf/2)*logDet - nf*kf/2

	return &Model{
		k:      k,
		p:      p,
		n:      n,
		names:  panel.Names(),
		c:      c,
		coef:   coef,
		sigma:  sigma,
		logLik: logLik,
		scores: criterionScores(logDet, n, k, p),
		tail:   panel.Tail(p),
		alg:    alg,
	}, nil
}

// criterionScores evaluates the four information criteria for a fit with
// log-determinant logDet of Sigma, n usable observations, k variables and
// lag order p.
func criterionScores(logDet float64, n, k, p int) Scores {
	m := k * (1 + k*p)
	nf, mf := float64(n), float64(m)
	s := Scores{
		AIC:  logDet + 2*mf/nf,
		BIC:  logDet + mf*math.Log(nf)/nf,
		HQIC: logDet + 2*mf*math.Log(math.Log(nf))/nf,
		FPE:  math.NaN(),
	}
	if n > m {
		s.FPE = math.Exp(logDet) * math.Pow((nf+mf)/(nf-mf), float64(k))
	}
	return s
}

// K returns the number of variables.
func (m *Model) K() int { return m.k }

// P returns the lag order.
func (m *Model) P() int { return m.p }

// NumObs returns n, the observations used in the fit.
func (m *Model) NumObs() int { return m.n }

// Names returns the variable names in column order.
func (m *Model) Names() []string {
	cp := make([]string, len(m.names))
	copy(cp, m.names)
	return cp
}

// Intercept returns a copy of the intercept vector c.
func (m *Model) Intercept() []float64 {
	out := make([]float64, m.k)
	for i := range out {
		out[i] = m.c.AtVec(i)
	}
	return out
}

// Coef returns a copy of the coefficient matrix A_lag for lag in [1, p].
func (m *Model) Coef(lag int) *mat.Dense {
	return mat.DenseCopyOf(m.coef[lag-1])
}

// Sigma returns a copy of the residual covariance matrix.
func (m *Model) Sigma() *mat.SymDense {
	data := make([]float64, m.k*m.k)
	for i := 0; i < m.k; i++ {
		for j := 0; j < m.k; j++ {
			data[i*m.k+j] = m.sigma.At(i, j)
		}
	}
	return mat.NewSymDense(m.k, data)
}

// LogLikelihood returns the Gaussian log-likelihood of the fit.
func (m *Model) LogLikelihood() float64 { return m.logLik }

// CriterionScores returns the information-criterion values of this fit.
func (m *Model) CriterionScores() Scores { return m.scores }

// Tail returns a copy of the last p observations the model was fitted on,
// oldest first. This is the default forecast origin.
func (m *Model) Tail() *mat.Dense { return mat.DenseCopyOf(m.tail) }

// varIndex resolves an override name against the model's variables.
func (m *Model) varIndex(name string) (int, bool) {
	for j, n := range m.names {
		if n == name {
			return j, true
		}
	}
	return 0, false
}

// sigmaDense returns sigma as a Dense for use in matrix products.
func (m *Model) sigmaDense() *mat.Dense {
	d := mat.NewDense(m.k, m.k, nil)
	for i := 0; i < m.k; i++ {
		for j := 0; j < m.k; j++ {
			d.Set(i, j, m.sigma.At(i, j))
		}
	}
	return d
}
