package search

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBatch(t *testing.T) {
	configs := []Configuration{
		{Include: []bool{true, false, false}},
		{Include: []bool{true, true, false}},
		{Include: []bool{true, true, true}},
	}

	scores, failures, err := EvaluateBatch(context.Background(), ScorerFunc(countScorer), configs, 4, nil)
	require.NoError(t, err)
	assert.Zero(t, failures)
	assertFloat64SlicesEqual(t, scores, []float64{1, 2, 3}, 0)
}

func TestEvaluateBatchDegradesFitFailures(t *testing.T) {
	configs := []Configuration{
		{Include: []bool{true, false}},
		{Include: []bool{false, true}},
		{Include: []bool{true, true}},
	}

	scorer := ScorerFunc(func(cfg Configuration) (float64, error) {
		if cfg.IncludedCount() == 2 {
			return 0, WrapError(ErrScorerFit, "singular design matrix")
		}
		return float64(cfg.Selected()[0]), nil
	})

	scores, failures, err := EvaluateBatch(context.Background(), scorer, configs, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 0.0, scores[0])
	assert.Equal(t, 1.0, scores[1])
	assert.True(t, math.IsInf(scores[2], 1), "failed candidate should score +Inf")
}

func TestEvaluateBatchAllFailedIsFatal(t *testing.T) {
	configs := []Configuration{
		{Include: []bool{true}},
		{Include: []bool{true}},
	}
	scorer := ScorerFunc(func(Configuration) (float64, error) {
		return 0, WrapError(ErrScorerFit, "did not converge")
	})

	_, _, err := EvaluateBatch(context.Background(), scorer, configs, 2, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrScorerFit))
}

func TestEvaluateBatchHardErrorAborts(t *testing.T) {
	configs := []Configuration{{Include: []bool{true}}}
	scorer := ScorerFunc(func(Configuration) (float64, error) {
		return 0, Invalidf("no dimensions included")
	})

	_, _, err := EvaluateBatch(context.Background(), scorer, configs, 1, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestEvaluateBatchHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	configs := make([]Configuration, 64)
	for i := range configs {
		configs[i] = Configuration{Include: []bool{true}}
	}

	var calls atomic.Int64
	scorer := ScorerFunc(func(Configuration) (float64, error) {
		calls.Add(1)
		return 1, nil
	})

	_, _, err := EvaluateBatch(ctx, scorer, configs, 4, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, calls.Load(), "no evaluation should run after cancellation")
}

func TestCachingScorer(t *testing.T) {
	var calls atomic.Int64
	inner := ScorerFunc(func(cfg Configuration) (float64, error) {
		calls.Add(1)
		return countScorer(cfg)
	})
	cached := NewCachingScorer(inner)

	cfg := Configuration{Include: []bool{true, true, false}}
	for i := 0; i < 3; i++ {
		score, err := cached.Evaluate(cfg)
		require.NoError(t, err)
		assert.Equal(t, 2.0, score)
	}
	assert.Equal(t, int64(1), calls.Load())

	hits, misses := cached.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestCachingScorerDoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int64
	inner := ScorerFunc(func(Configuration) (float64, error) {
		calls.Add(1)
		return 0, WrapError(ErrScorerFit, "transient")
	})
	cached := NewCachingScorer(inner)

	cfg := Configuration{Include: []bool{true}}
	_, err := cached.Evaluate(cfg)
	require.Error(t, err)
	_, err = cached.Evaluate(cfg)
	require.Error(t, err)
	assert.Equal(t, int64(2), calls.Load())
}
