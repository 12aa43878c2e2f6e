package varmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Snapshot is the flat, codec-friendly form of a fitted model. It carries
// every field a persistence collaborator needs to reconstruct a Model whose
// forecasts match the original bit for bit: exact coefficients, covariance,
// dimensions, scores and the forecast origin.
type Snapshot struct {
	K         int       `msgpack:"k"`
	P         int       `msgpack:"p"`
	N         int       `msgpack:"n"`
	Names     []string  `msgpack:"names"`
	Intercept []float64 `msgpack:"intercept"`
	// Coef holds A_1..A_p, each flattened row-major to k*k values.
	Coef [][]float64 `msgpack:"coef"`
	// Sigma is the residual covariance flattened row-major.
	Sigma  []float64 `msgpack:"sigma"`
	LogLik float64   `msgpack:"loglik"`
	Scores Scores    `msgpack:"scores"`
	// Tail is the p*k forecast origin, oldest row first.
	Tail []float64 `msgpack:"tail"`
}

// Snapshot flattens the model into its serializable form.
func (m *Model) Snapshot() Snapshot {
	coef := make([][]float64, m.p)
	for j := 0; j < m.p; j++ {
		flat := make([]float64, m.k*m.k)
		for i := 0; i < m.k; i++ {
			for v := 0; v < m.k; v++ {
				flat[i*m.k+v] = m.coef[j].At(i, v)
			}
		}
		coef[j] = flat
	}
	sigma := make([]float64, m.k*m.k)
	tail := make([]float64, m.p*m.k)
	for i := 0; i < m.k; i++ {
		for v := 0; v < m.k; v++ {
			sigma[i*m.k+v] = m.sigma.At(i, v)
		}
	}
	for i := 0; i < m.p; i++ {
		for v := 0; v < m.k; v++ {
			tail[i*m.k+v] = m.tail.At(i, v)
		}
	}
	return Snapshot{
		K:         m.k,
		P:         m.p,
		N:         m.n,
		Names:     m.Names(),
		Intercept: m.Intercept(),
		Coef:      coef,
		Sigma:     sigma,
		LogLik:    m.logLik,
		Scores:    m.scores,
		Tail:      tail,
	}
}

// FromSnapshot reconstructs a Model. Shapes are validated and the
// covariance is checked for symmetry; a reconstructed model forecasts
// identically to the one that produced the snapshot.
func FromSnapshot(s Snapshot) (*Model, error) {
	if s.K < 1 || s.P < 1 {
		return nil, fmt.Errorf("snapshot has invalid dimensions k=%d, p=%d", s.K, s.P)
	}
	if len(s.Names) != s.K {
		return nil, &DimensionMismatchError{What: "snapshot names", Want: s.K, Got: len(s.Names)}
	}
	if len(s.Intercept) != s.K {
		return nil, &DimensionMismatchError{What: "snapshot intercept", Want: s.K, Got: len(s.Intercept)}
	}
	if len(s.Coef) != s.P {
		return nil, &DimensionMismatchError{What: "snapshot coefficients", Want: s.P, Got: len(s.Coef)}
	}
	for j, flat := range s.Coef {
		if len(flat) != s.K*s.K {
			return nil, &DimensionMismatchError{What: fmt.Sprintf("snapshot A_%d", j+1), Want: s.K * s.K, Got: len(flat)}
		}
	}
	if len(s.Sigma) != s.K*s.K {
		return nil, &DimensionMismatchError{What: "snapshot covariance", Want: s.K * s.K, Got: len(s.Sigma)}
	}
	if len(s.Tail) != s.P*s.K {
		return nil, &DimensionMismatchError{What: "snapshot tail", Want: s.P * s.K, Got: len(s.Tail)}
	}
	for i := 0; i < s.K; i++ {
		for j := i + 1; j < s.K; j++ {
			a, b := s.Sigma[i*s.K+j], s.Sigma[j*s.K+i]
			if diff := math.Abs(a - b); diff > 1e-9*(1+math.Abs(a)) {
				return nil, fmt.Errorf("snapshot covariance is not symmetric at (%d,%d): %g vs %g", i, j, a, b)
			}
		}
	}

	c := mat.NewVecDense(s.K, nil)
	for i, v := range s.Intercept {
		c.SetVec(i, v)
	}
	coef := make([]*mat.Dense, s.P)
	for j, flat := range s.Coef {
		cp := make([]float64, len(flat))
		copy(cp, flat)
		coef[j] = mat.NewDense(s.K, s.K, cp)
	}
	sigmaData := make([]float64, len(s.Sigma))
	copy(sigmaData, s.Sigma)
	tailData := make([]float64, len(s.Tail))
	copy(tailData, s.Tail)
	names := make([]string, len(s.Names))
	copy(names, s.Names)

	return &Model{
		k:      s.K,
		p:      s.P,
		n:      s.N,
		names:  names,
		c:      c,
		coef:   coef,
		sigma:  mat.NewSymDense(s.K, sigmaData),
		logLik: s.LogLik,
		scores: s.Scores,
		tail:   mat.NewDense(s.P, s.K, tailData),
		alg:    DefaultBackend,
	}, nil
}
