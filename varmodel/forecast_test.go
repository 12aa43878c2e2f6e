package varmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// decayModel is the reference model used across the forecast tests:
// three variables, one lag, A1 = diag(0.5), zero intercept, unit
// covariance, last observation [1 2 3].
func decayModel(t *testing.T) *Model {
	t.Helper()
	m, err := FromSnapshot(Snapshot{
		K:         3,
		P:         1,
		N:         11,
		Names:     []string{"gdp_growth", "cpi_change", "yield_spread"},
		Intercept: []float64{0, 0, 0},
		Coef: [][]float64{{
			0.5, 0, 0,
			0, 0.5, 0,
			0, 0, 0.5,
		}},
		Sigma: []float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Tail: []float64{1, 2, 3},
	})
	require.NoError(t, err)
	return m
}

func TestForecastHalvesEachStep(t *testing.T) {
	m := decayModel(t)
	path, err := m.Forecast(2, ForecastOptions{})
	require.NoError(t, err)

	want := [][]float64{
		{0.5, 1.0, 1.5},
		{0.25, 0.5, 0.75},
	}
	for step := range want {
		for v := range want[step] {
			assert.InDelta(t, want[step][v], path.Values.At(step, v), 1e-12)
		}
	}
	assert.Equal(t, 2, path.Steps())
	assert.Nil(t, path.Lower)
	assert.Nil(t, path.Upper)
}

func TestForecastPrefixConsistency(t *testing.T) {
	m := decayModel(t)
	short, err := m.Forecast(4, ForecastOptions{})
	require.NoError(t, err)
	long, err := m.Forecast(9, ForecastOptions{})
	require.NoError(t, err)

	for step := 0; step < 4; step++ {
		for v := 0; v < 3; v++ {
			assert.Equal(t, short.Values.At(step, v), long.Values.At(step, v),
				"step %d var %d", step, v)
		}
	}
}

func TestForecastConfidenceBands(t *testing.T) {
	m := decayModel(t)
	path, err := m.Forecast(3, ForecastOptions{Confidence: 0.95})
	require.NoError(t, err)
	require.NotNil(t, path.Lower)
	require.NotNil(t, path.Upper)

	// With Sigma = I and A = diag(0.5), the step-h error variance is
	// sum of 0.25^j for j < h, the same for every variable.
	z := 1.9599639845400545
	variances := []float64{1, 1.25, 1.3125}
	for step := 0; step < 3; step++ {
		half := z * math.Sqrt(variances[step])
		for v := 0; v < 3; v++ {
			point := path.Values.At(step, v)
			assert.InDelta(t, point-half, path.Lower.At(step, v), 1e-9)
			assert.InDelta(t, point+half, path.Upper.At(step, v), 1e-9)
		}
	}

	// Bands only widen with horizon for this model.
	for step := 1; step < 3; step++ {
		prev := path.Upper.At(step-1, 0) - path.Values.At(step-1, 0)
		cur := path.Upper.At(step, 0) - path.Values.At(step, 0)
		assert.Greater(t, cur, prev)
	}
}

func TestForecastFromValidatesHistory(t *testing.T) {
	m := decayModel(t)

	_, err := m.ForecastFrom(mat.NewDense(4, 2, nil), 3, ForecastOptions{})
	var dme *DimensionMismatchError
	require.ErrorAs(t, err, &dme)
	assert.Equal(t, 3, dme.Want)
	assert.Equal(t, 2, dme.Got)

	_, err = m.ForecastFrom(nil, 3, ForecastOptions{})
	assert.Error(t, err)
}

func TestForecastFromUsesSuppliedTail(t *testing.T) {
	m := decayModel(t)
	hist := mat.NewDense(2, 3, []float64{
		9, 9, 9, // ignored: only the last p rows matter
		4, 8, 16,
	})
	path, err := m.ForecastFrom(hist, 1, ForecastOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, path.Values.At(0, 0), 1e-12)
	assert.InDelta(t, 4.0, path.Values.At(0, 1), 1e-12)
	assert.InDelta(t, 8.0, path.Values.At(0, 2), 1e-12)

	// The caller's history is untouched.
	assert.Equal(t, 4.0, hist.At(1, 0))
}

func TestForecastRejectsBadArguments(t *testing.T) {
	m := decayModel(t)
	_, err := m.Forecast(0, ForecastOptions{})
	assert.Error(t, err)
	_, err = m.Forecast(3, ForecastOptions{Confidence: 1.5})
	assert.Error(t, err)
	_, err = m.Forecast(3, ForecastOptions{Confidence: -0.9})
	assert.Error(t, err)
}

func TestForecastAgainstFittedModel(t *testing.T) {
	// End-to-end: fit on noiseless data, forecast continues the recursion.
	c := []float64{1, -0.5}
	a := [][]float64{{0.6, -0.5}, {0.4, 0.5}}
	panel := simulatePanel(t, c, a, []float64{3, 1}, 30, nil)
	m, err := Estimate(panel, 1)
	require.NoError(t, err)

	path, err := m.Forecast(1, ForecastOptions{})
	require.NoError(t, err)
	last := panel.Row(panel.Len() - 1)
	for i := 0; i < 2; i++ {
		want := c[i]
		for j := 0; j < 2; j++ {
			want += a[i][j] * last[j]
		}
		assert.InDelta(t, want, path.Values.At(0, i), 1e-7)
	}
}
