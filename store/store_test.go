package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varcast/varmodel"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "models.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fittedModel(t *testing.T) *varmodel.Model {
	t.Helper()
	m, err := varmodel.FromSnapshot(varmodel.Snapshot{
		K:         2,
		P:         1,
		N:         40,
		Names:     []string{"gdp_growth", "cpi_change"},
		Intercept: []float64{0.3, -0.1},
		Coef:      [][]float64{{0.6, -0.5, 0.4, 0.5}},
		Sigma:     []float64{1.2, 0.3, 0.3, 0.9},
		LogLik:    -87.5,
		Scores:    varmodel.Scores{AIC: 4.1, BIC: 4.4, HQIC: 4.2, FPE: 1.05},
		Tail:      []float64{1.7, -0.4},
	})
	require.NoError(t, err)
	return m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	m := fittedModel(t)

	id, err := s.Save(m, "baseline")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Load(id)
	require.NoError(t, err)

	// The reloaded model forecasts bit for bit like the original.
	want, err := m.Forecast(8, varmodel.ForecastOptions{Confidence: 0.95})
	require.NoError(t, err)
	have, err := got.Forecast(8, varmodel.ForecastOptions{Confidence: 0.95})
	require.NoError(t, err)
	for step := 0; step < 8; step++ {
		for v := 0; v < 2; v++ {
			assert.Equal(t, want.Values.At(step, v), have.Values.At(step, v))
			assert.Equal(t, want.Lower.At(step, v), have.Lower.At(step, v))
			assert.Equal(t, want.Upper.At(step, v), have.Upper.At(step, v))
		}
	}
	assert.Equal(t, m.Names(), got.Names())
	assert.Equal(t, m.CriterionScores(), got.CriterionScores())
	assert.Equal(t, m.LogLikelihood(), got.LogLikelihood())
}

func TestLoadByNameReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	first := fittedModel(t)
	_, err := s.Save(first, "quarterly")
	require.NoError(t, err)

	second, err := varmodel.FromSnapshot(varmodel.Snapshot{
		K:         2,
		P:         1,
		N:         60,
		Names:     []string{"gdp_growth", "cpi_change"},
		Intercept: []float64{0.1, 0.2},
		Coef:      [][]float64{{0.5, 0, 0, 0.5}},
		Sigma:     []float64{1, 0, 0, 1},
		Tail:      []float64{2, 2},
	})
	require.NoError(t, err)
	_, err = s.Save(second, "quarterly")
	require.NoError(t, err)

	got, err := s.LoadByName("quarterly")
	require.NoError(t, err)
	assert.Equal(t, 60, got.NumObs())
}

func TestListAndDelete(t *testing.T) {
	s := openTestStore(t)
	m := fittedModel(t)

	idA, err := s.Save(m, "a")
	require.NoError(t, err)
	_, err = s.Save(m, "b")
	require.NoError(t, err)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, 2, r.K)
		assert.Equal(t, 1, r.P)
		assert.False(t, r.CreatedAt.IsZero())
	}

	require.NoError(t, s.Delete(idA))
	records, err = s.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "b", records[0].Name)

	assert.ErrorIs(t, s.Delete(idA), ErrNotFound)
}

func TestMissingLookups(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LoadByName("no-such-name")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Save(fittedModel(t), "")
	assert.Error(t, err)
}
