package greedy

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/DannyMorgant/searchkit/internal/score"
	"github.com/DannyMorgant/searchkit/internal/search"
	"github.com/DannyMorgant/searchkit/internal/search/exhaustive"
)

func plantedDataset(t *testing.T, rows, cols int, coeffs []float64, noise float64, seed int64) *score.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	features := mat.NewDense(rows, cols, nil)
	target := make([]float64, rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			features.Set(i, j, rng.Float64()*2-1)
		}
		y := rng.NormFloat64() * noise
		for j, c := range coeffs {
			y += c * features.At(i, j)
		}
		target[i] = y
	}
	d, err := score.NewDataset(features, target)
	require.NoError(t, err)
	return d
}

func namedSpace(t *testing.T, dims int) *search.Space {
	t.Helper()
	names := make([]string, dims)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	s, err := search.NewSubsetSpace(names...)
	require.NoError(t, err)
	return s
}

// weightScorer scores a subset as the sum of per-dimension weights, so the
// elimination path is fully predictable.
func weightScorer(weights []float64) search.ScorerFunc {
	return func(cfg search.Configuration) (float64, error) {
		sum := 0.0
		for _, idx := range cfg.Selected() {
			sum += weights[idx]
		}
		return sum, nil
	}
}

func TestEliminationWalk(t *testing.T) {
	// Weights make removal order deterministic: positive weights go first,
	// and score bottoms out at the two most negative dimensions.
	weights := []float64{-5, -4, 3, 2, 1}
	space := namedSpace(t, 5)

	s, err := New(Config{Space: space, Scorer: weightScorer(weights)})
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, result.Best.Config.Selected())
	assert.Equal(t, -9.0, result.Best.Score)
}

func TestExactlyDMinusOneSteps(t *testing.T) {
	const d = 6
	space := namedSpace(t, d)
	s, err := New(Config{Space: space, Scorer: weightScorer(make([]float64, d)), Workers: 2})
	require.NoError(t, err)
	result, err := s.Run(context.Background())
	require.NoError(t, err)

	// One trace entry for the full configuration plus one per elimination
	// step; step k compares the d-k+1 still-included dimensions.
	require.Len(t, result.Trace, d)
	assert.Equal(t, 1, result.Trace[0].Evaluations)
	for step := 1; step < d; step++ {
		assert.Equal(t, d-step+1, result.Trace[step].Evaluations)
	}
	// Total evaluations: 1 + d + (d-1) + ... + 2.
	assert.Equal(t, 1+d*(d+1)/2-1, result.Evaluations)
}

func TestRunsAreBitIdentical(t *testing.T) {
	// No randomness anywhere in backward elimination: repeated runs on the
	// same dataset and space must agree exactly.
	data := plantedDataset(t, 150, 8, []float64{2, -3, 1}, 0.25, 77)
	space := namedSpace(t, 8)
	scorer, err := score.NewInformationCriterion(space, data, score.BIC)
	require.NoError(t, err)

	run := func() *search.Result {
		s, err := New(Config{Space: space, Scorer: scorer, Workers: 3})
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()
	assert.Equal(t, a.Best.Config.Include, b.Best.Config.Include)
	assert.Equal(t, a.Best.Score, b.Best.Score)
	assert.Equal(t, a.Trace, b.Trace)
}

func TestExhaustiveDominatesGreedy(t *testing.T) {
	// Exhaustive search is globally optimal within its radius, so with the
	// radius covering the whole lattice its score can never exceed the
	// single-path greedy score.
	data := plantedDataset(t, 150, 7, []float64{1.5, -2, 0.8}, 0.3, 5)
	space := namedSpace(t, 7)
	scorer, err := score.NewInformationCriterion(space, data, score.BIC)
	require.NoError(t, err)

	g, err := New(Config{Space: space, Scorer: scorer, Workers: 4})
	require.NoError(t, err)
	greedyResult, err := g.Run(context.Background())
	require.NoError(t, err)

	e, err := exhaustive.New(exhaustive.Config{Space: space, Scorer: scorer, MaxSize: 7, Workers: 4})
	require.NoError(t, err)
	exhaustiveResult, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.LessOrEqual(t, exhaustiveResult.Best.Score, greedyResult.Best.Score)
}

func TestAllCandidatesFailingIsFatal(t *testing.T) {
	space := namedSpace(t, 3)
	scorer := search.ScorerFunc(func(cfg search.Configuration) (float64, error) {
		if cfg.IncludedCount() == 3 {
			return 1.0, nil
		}
		return 0, search.WrapError(search.ErrScorerFit, "singular design matrix")
	})

	s, err := New(Config{Space: space, Scorer: scorer})
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.Error(t, err)
}
