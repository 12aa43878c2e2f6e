package varmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompositionSharesSumToOne(t *testing.T) {
	m := coupledModel(t)
	d, err := m.VarianceDecomposition(10, nil)
	require.NoError(t, err)
	require.Len(t, d.Shares, 10)

	for h := 1; h <= 10; h++ {
		for i := 0; i < 2; i++ {
			total := 0.0
			for s := 0; s < 2; s++ {
				share := d.Share(h, i, s)
				assert.GreaterOrEqual(t, share, 0.0)
				total += share
			}
			assert.InDelta(t, 1.0, total, 1e-12, "horizon %d variable %d", h, i)
		}
	}
}

func TestDecompositionDiagonalModelOwnsItsVariance(t *testing.T) {
	// Diagonal dynamics and diagonal covariance: every variable's variance
	// comes entirely from its own shock at every horizon.
	m := decayModel(t)
	d, err := m.VarianceDecomposition(6, nil)
	require.NoError(t, err)

	for h := 1; h <= 6; h++ {
		for i := 0; i < 3; i++ {
			for s := 0; s < 3; s++ {
				want := 0.0
				if i == s {
					want = 1
				}
				assert.InDelta(t, want, d.Share(h, i, s), 1e-12)
			}
		}
	}
}

func TestDecompositionFirstHorizonMatchesImpactMatrix(t *testing.T) {
	// At h=1 only Theta_0 contributes, so for Sigma = [[1, .5], [.5, 1]]
	// with L = [[1, 0], [.5, sqrt(.75)]] the second variable splits
	// 0.25 / 0.75 between the two shocks.
	m := coupledModel(t)
	d, err := m.VarianceDecomposition(1, nil)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Share(1, 0, 0), 1e-12)
	assert.InDelta(t, 0.0, d.Share(1, 0, 1), 1e-12)
	assert.InDelta(t, 0.25, d.Share(1, 1, 0), 1e-12)
	assert.InDelta(t, 0.75, d.Share(1, 1, 1), 1e-12)
}

func TestDecompositionOrderingChangesAttribution(t *testing.T) {
	m := coupledModel(t)
	natural, err := m.VarianceDecomposition(4, []int{0, 1})
	require.NoError(t, err)
	reversed, err := m.VarianceDecomposition(4, []int{1, 0})
	require.NoError(t, err)

	// The first variable in the ordering absorbs the shared variance, so
	// flipping the order must move attribution between the shocks.
	assert.NotEqual(t, natural.Share(1, 1, 0), reversed.Share(1, 1, 0))

	// Shares still sum to one under either ordering.
	for h := 1; h <= 4; h++ {
		for i := 0; i < 2; i++ {
			assert.InDelta(t, 1.0, reversed.Share(h, i, 0)+reversed.Share(h, i, 1), 1e-12)
		}
	}
}

func TestDecompositionValidation(t *testing.T) {
	m := coupledModel(t)
	_, err := m.VarianceDecomposition(0, nil)
	assert.Error(t, err)

	_, err = m.VarianceDecomposition(3, []int{0, 0})
	assert.Error(t, err)
}
