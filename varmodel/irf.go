package varmodel

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ImpulseResponse holds the shock-propagation matrices of a fitted system.
// Responses[j].At(i, s) is the effect on variable i at horizon j of a unit
// shock to source s at horizon 0; Responses[0] is the identity for plain
// responses. Orthogonalized responses replace unit shocks with mutually
// uncorrelated ones via the Cholesky factor of Sigma, in which case
// Ordering records the causal-attribution order that was used.
type ImpulseResponse struct {
	Horizon        int
	Responses      []*mat.Dense // H+1 matrices, k x k
	Orthogonalized bool
	Ordering       []int // nil unless orthogonalized
	Names          []string
}

// Series extracts the response of one variable to one shock source across
// all horizons.
func (ir *ImpulseResponse) Series(variable, shock int) []float64 {
	out := make([]float64, len(ir.Responses))
	for j, r := range ir.Responses {
		out[j] = r.At(variable, shock)
	}
	return out
}

// ImpulseResponses computes the plain (non-orthogonalized) responses
// Phi_0 = I, Phi_1, ..., Phi_H.
func (m *Model) ImpulseResponses(H int) (*ImpulseResponse, error) {
	if H < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", H)
	}
	return &ImpulseResponse{
		Horizon:   H,
		Responses: m.maCoefficients(H),
		Names:     m.Names(),
	}, nil
}

// OrthogonalImpulseResponses computes Theta_j = Phi_j * P where P is the
// lower Cholesky factor of Sigma taken under the given variable ordering.
// The ordering decides which variable's shock absorbs the contemporaneous
// correlation; nil means natural column order. Matrices are reported in
// the original variable indices regardless of ordering.
func (m *Model) OrthogonalImpulseResponses(H int, ordering []int) (*ImpulseResponse, error) {
	if H < 0 {
		return nil, fmt.Errorf("horizon must be non-negative, got %d", H)
	}
	ordering, err := m.normalizeOrdering(ordering)
	if err != nil {
		return nil, err
	}
	theta, err := m.orthogonalized(H, ordering)
	if err != nil {
		return nil, err
	}
	return &ImpulseResponse{
		Horizon:        H,
		Responses:      theta,
		Orthogonalized: true,
		Ordering:       ordering,
		Names:          m.Names(),
	}, nil
}

// orthogonalized returns Theta_0..Theta_H in original variable indices.
// Internally the system is permuted into the requested ordering, the
// permuted Sigma is factorized, and the result is mapped back.
func (m *Model) orthogonalized(H int, ordering []int) ([]*mat.Dense, error) {
	k := m.k
	pos := make([]int, k) // pos[original index] = position under ordering
	for at, orig := range ordering {
		pos[orig] = at
	}

	permSigma := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			permSigma.SetSym(i, j, m.sigma.At(ordering[i], ordering[j]))
		}
	}
	l, err := m.alg.CholeskyLower(permSigma)
	if err != nil {
		return nil, &NonPositiveDefiniteError{K: k, LogDet: m.alg.LogDet(m.sigma)}
	}

	phi := m.maCoefficients(H)
	theta := make([]*mat.Dense, H+1)
	var permPhi, permTheta mat.Dense
	for h := 0; h <= H; h++ {
		permPhi.ReuseAs(k, k)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				permPhi.Set(i, j, phi[h].At(ordering[i], ordering[j]))
			}
		}
		permTheta.Mul(&permPhi, l)

		out := mat.NewDense(k, k, nil)
		for i := 0; i < k; i++ {
			for s := 0; s < k; s++ {
				out.Set(i, s, permTheta.At(pos[i], pos[s]))
			}
		}
		theta[h] = out
		permPhi.Reset()
		permTheta.Reset()
	}
	return theta, nil
}

// normalizeOrdering validates a variable ordering, defaulting to natural
// column order when nil.
func (m *Model) normalizeOrdering(ordering []int) ([]int, error) {
	if ordering == nil {
		ordering = make([]int, m.k)
		for i := range ordering {
			ordering[i] = i
		}
		return ordering, nil
	}
	if len(ordering) != m.k {
		return nil, &DimensionMismatchError{What: "variable ordering", Want: m.k, Got: len(ordering)}
	}
	seen := make([]bool, m.k)
	for _, idx := range ordering {
		if idx < 0 || idx >= m.k || seen[idx] {
			return nil, fmt.Errorf("ordering %v is not a permutation of 0..%d", ordering, m.k-1)
		}
		seen[idx] = true
	}
	cp := make([]int, m.k)
	copy(cp, ordering)
	return cp, nil
}

// OrderingByNames resolves a list of variable names into an ordering usable
// with OrthogonalImpulseResponses and VarianceDecomposition.
func (m *Model) OrderingByNames(names []string) ([]int, error) {
	if len(names) != m.k {
		return nil, &DimensionMismatchError{What: "variable ordering", Want: m.k, Got: len(names)}
	}
	ordering := make([]int, len(names))
	for i, name := range names {
		idx, ok := m.varIndex(name)
		if !ok {
			return nil, &UnknownVariableError{Name: name}
		}
		ordering[i] = idx
	}
	return m.normalizeOrdering(ordering)
}
