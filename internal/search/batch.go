package search

import (
	"context"
	"errors"
	"math"
	"sync"

	"go.uber.org/zap"
)

// EvaluateBatch scores a batch of configurations concurrently on up to
// workers goroutines and waits for every evaluation before returning, so the
// caller's aggregation step sees a complete batch.
//
// A fit failure (ErrScorerFit) degrades that candidate's score to +Inf and
// is logged; any other scorer error aborts the batch. If every candidate in
// the batch fails the batch is fatal.
func EvaluateBatch(ctx context.Context, scorer Scorer, configs []Configuration, workers int, logger *zap.Logger) ([]float64, int, error) {
	if len(configs) == 0 {
		return nil, 0, NewError("empty evaluation batch")
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(configs) {
		workers = len(configs)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scores := make([]float64, len(configs))
	errs := make([]error, len(configs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					errs[i] = ctx.Err()
					continue
				default:
				}
				scores[i], errs[i] = scorer.Evaluate(configs[i])
			}
		}()
	}
	for i := range configs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	failures := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrScorerFit) {
			return nil, 0, WrapErrorf(err, "evaluating configuration %d", i)
		}
		failures++
		scores[i] = math.Inf(1)
		logger.Warn("scorer fit failure, candidate dropped from contention",
			zap.Int("index", i),
			zap.String("configuration", configs[i].Key()),
			zap.Error(err))
	}
	if failures == len(configs) {
		return nil, failures, WrapError(ErrScorerFit, "every candidate in the batch failed")
	}
	return scores, failures, nil
}

func isInf(v float64) bool { return math.IsInf(v, 1) }
