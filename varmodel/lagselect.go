package varmodel

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
)

// Criterion names one of the lag-selection information criteria.
type Criterion string

const (
	CriterionAIC  Criterion = "aic"
	CriterionBIC  Criterion = "bic"
	CriterionHQIC Criterion = "hqic"
	CriterionFPE  Criterion = "fpe"
)

var allCriteria = []Criterion{CriterionAIC, CriterionBIC, CriterionHQIC, CriterionFPE}

// SelectOptions configures the lag-order search.
type SelectOptions struct {
	// MaxLag is the largest candidate order; 0 means DefaultMaxLag.
	MaxLag int
	// Workers caps the number of concurrent candidate fits; 0 means one
	// per CPU.
	Workers int
}

// DefaultMaxLag is the candidate ceiling used when SelectOptions.MaxLag is
// zero.
const DefaultMaxLag = 12

// LagSelection is the outcome of a lag-order search: the chosen order, the
// per-candidate scores, which order each criterion preferred, and whether
// the search covered every candidate.
type LagSelection struct {
	// P is the chosen lag order.
	P int
	// ByCriterion maps each criterion to the order minimizing it.
	ByCriterion map[Criterion]int
	// Candidates holds the scores of every order that was fitted.
	Candidates map[int]Scores
	// Partial is true when the search was cancelled before evaluating all
	// candidates; P is then the best among those evaluated, not a silent
	// guess at the full answer.
	Partial bool
}

type lagFit struct {
	p      int
	scores Scores
	err    error
}

// SelectLag fits every candidate order p in [1, MaxLag] and picks one by
// majority vote across AIC, BIC, HQIC and FPE. Candidates whose usable
// observation count n = T-p does not exceed the parameter count
// m = k*(1+k*p) are infeasible; if every candidate is, the search fails
// with NoFeasibleLagError.
//
// Vote ties are broken by the smallest order first, then by the smallest
// AIC. The candidate fits are independent pure computations and run on a
// worker pool; the vote itself is order-independent, so the result is
// deterministic for a given panel and MaxLag.
//
// Cancelling ctx stops the search early and returns the vote over the
// candidates evaluated so far with Partial set. Cancellation before any
// candidate finished returns the context error.
func SelectLag(ctx context.Context, panel *Panel, opts SelectOptions) (*LagSelection, error) {
	maxLag := opts.MaxLag
	if maxLag <= 0 {
		maxLag = DefaultMaxLag
	}
	t := panel.Len()
	k := panel.Width()

	var candidates []int
	for p := 1; p <= maxLag; p++ {
		if n, m := t-p, k*(1+k*p); n > m {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, &NoFeasibleLagError{T: t, K: k, MaxLag: maxLag}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	jobs := make(chan int)
	results := make(chan lagFit, len(candidates))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for p := range jobs {
				m, err := Estimate(panel, p)
				if err != nil {
					results <- lagFit{p: p, err: err}
					continue
				}
				results <- lagFit{p: p, scores: m.CriterionScores()}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range candidates {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	scored := make(map[int]Scores)
	var fitErr error
	for r := range results {
		if r.err != nil {
			if fitErr == nil {
				fitErr = r.err
			}
			continue
		}
		scored[r.p] = r.scores
	}

	if len(scored) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if fitErr != nil {
			return nil, fitErr
		}
		return nil, &NoFeasibleLagError{T: t, K: k, MaxLag: maxLag}
	}

	sel := tallyVotes(scored)
	sel.Partial = len(scored) < len(candidates) || ctx.Err() != nil
	return sel, nil
}

// tallyVotes finds each criterion's minimizer and elects the order named by
// the most criteria. Ties go to the smallest order, then the smallest AIC.
func tallyVotes(scored map[int]Scores) *LagSelection {
	orders := make([]int, 0, len(scored))
	for p := range scored {
		orders = append(orders, p)
	}
	sort.Ints(orders)

	byCriterion := make(map[Criterion]int, len(allCriteria))
	for _, crit := range allCriteria {
		best := orders[0]
		bestScore := math.Inf(1)
		for _, p := range orders {
			if s := criterionValue(scored[p], crit); !math.IsNaN(s) && s < bestScore {
				best, bestScore = p, s
			}
		}
		byCriterion[crit] = best
	}

	votes := make(map[int]int)
	for _, p := range byCriterion {
		votes[p]++
	}
	chosen := orders[0]
	for _, p := range orders[1:] {
		if betterCandidate(p, chosen, votes, scored) {
			chosen = p
		}
	}

	return &LagSelection{P: chosen, ByCriterion: byCriterion, Candidates: scored}
}

// betterCandidate is the selection policy: more votes wins, then the
// smaller order, then the smaller AIC.
func betterCandidate(a, b int, votes map[int]int, scored map[int]Scores) bool {
	if votes[a] != votes[b] {
		return votes[a] > votes[b]
	}
	if a != b {
		return a < b
	}
	return scored[a].AIC < scored[b].AIC
}

func criterionValue(s Scores, c Criterion) float64 {
	switch c {
	case CriterionAIC:
		return s.AIC
	case CriterionBIC:
		return s.BIC
	case CriterionHQIC:
		return s.HQIC
	case CriterionFPE:
		return s.FPE
	}
	return math.NaN()
}

// Fit runs the lag-order search and then estimates the model at the chosen
// order. It is the usual entry point: panel in, immutable fitted model and
// the selection record out.
func Fit(ctx context.Context, panel *Panel, opts SelectOptions) (*Model, *LagSelection, error) {
	sel, err := SelectLag(ctx, panel, opts)
	if err != nil {
		return nil, nil, err
	}
	m, err := Estimate(panel, sel.P)
	if err != nil {
		return nil, nil, err
	}
	return m, sel, nil
}
