package varmodel

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyVAR1Panel simulates a strongly autoregressive two-variable VAR(1)
// with small seeded noise, so the information criteria have an easy and
// reproducible choice.
func noisyVAR1Panel(t *testing.T, T int, seed int64) *Panel {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	c := []float64{0.5, -0.3}
	a := [][]float64{{0.7, 0.1}, {-0.2, 0.6}}
	rows := make([][]float64, T)
	rows[0] = []float64{1, 1}
	for ti := 1; ti < T; ti++ {
		row := make([]float64, 2)
		for i := 0; i < 2; i++ {
			v := c[i]
			for j := 0; j < 2; j++ {
				v += a[i][j] * rows[ti-1][j]
			}
			row[i] = v + 0.01*rng.NormFloat64()
		}
		rows[ti] = row
	}
	p, err := NewPanel(rows, []string{"a", "b"})
	require.NoError(t, err)
	return p
}

func TestSelectLagPicksGeneratingOrder(t *testing.T) {
	panel := noisyVAR1Panel(t, 150, 42)
	sel, err := SelectLag(context.Background(), panel, SelectOptions{MaxLag: 6})
	require.NoError(t, err)

	// With near-deterministic VAR(1) dynamics the vote lands on p=1: the
	// penalty-heavy criteria insist on it, and any split falls back to the
	// parsimony tie-break.
	assert.Equal(t, 1, sel.P)
	assert.False(t, sel.Partial)
	assert.Equal(t, 1, sel.ByCriterion[CriterionBIC])
	assert.Equal(t, 1, sel.ByCriterion[CriterionHQIC])
	assert.Len(t, sel.Candidates, 6)
}

func TestSelectLagDeterministic(t *testing.T) {
	panel := noisyVAR1Panel(t, 120, 7)
	opts := SelectOptions{MaxLag: 5}

	first, err := SelectLag(context.Background(), panel, opts)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := SelectLag(context.Background(), panel, opts)
		require.NoError(t, err)
		assert.Equal(t, first.P, again.P)
		assert.Equal(t, first.ByCriterion, again.ByCriterion)
		assert.Equal(t, first.Candidates, again.Candidates)
	}
}

func TestSelectLagSingleWorkerMatchesParallel(t *testing.T) {
	panel := noisyVAR1Panel(t, 120, 11)
	serial, err := SelectLag(context.Background(), panel, SelectOptions{MaxLag: 5, Workers: 1})
	require.NoError(t, err)
	parallel, err := SelectLag(context.Background(), panel, SelectOptions{MaxLag: 5, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, serial.P, parallel.P)
	assert.Equal(t, serial.Candidates, parallel.Candidates)
}

func TestSelectLagNoFeasibleCandidate(t *testing.T) {
	// k=3: even p=1 needs n > 12, so T=10 leaves nothing feasible.
	panel := seqPanel(t, 10, 3)
	_, err := SelectLag(context.Background(), panel, SelectOptions{MaxLag: 4})
	var nfe *NoFeasibleLagError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, 10, nfe.T)
	assert.Equal(t, 3, nfe.K)
}

func TestSelectLagCancelledBeforeStart(t *testing.T) {
	panel := noisyVAR1Panel(t, 120, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sel, err := SelectLag(ctx, panel, SelectOptions{MaxLag: 5})
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
		return
	}
	// A worker may have drained a job before observing cancellation; the
	// result must then be flagged partial rather than passed off as full.
	assert.True(t, sel.Partial)
}

func TestTallyVotesTieBreaks(t *testing.T) {
	// Two orders each take two criteria; the smaller order must win.
	scored := map[int]Scores{
		1: {AIC: 2.0, BIC: 1.0, HQIC: 1.5, FPE: 9.0},
		2: {AIC: 1.0, BIC: 2.0, HQIC: 2.5, FPE: 3.0},
	}
	sel := tallyVotes(scored)
	assert.Equal(t, 1, sel.P)
	assert.Equal(t, 2, sel.ByCriterion[CriterionAIC])
	assert.Equal(t, 1, sel.ByCriterion[CriterionBIC])
	assert.Equal(t, 1, sel.ByCriterion[CriterionHQIC])
	assert.Equal(t, 2, sel.ByCriterion[CriterionFPE])
}

func TestFitReturnsModelAtChosenOrder(t *testing.T) {
	panel := noisyVAR1Panel(t, 150, 42)
	m, sel, err := Fit(context.Background(), panel, SelectOptions{MaxLag: 4})
	require.NoError(t, err)
	assert.Equal(t, sel.P, m.P())
	assert.Equal(t, sel.Candidates[sel.P], m.CriterionScores())
}
