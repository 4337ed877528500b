// Package harness orchestrates search strategies under a shared evaluation
// protocol: one scorer bound to the training fold(s) for selection, and a
// separate re-scoring of the selected configuration on a held-out comparison
// split that the search never touches.
package harness

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Evaluator supplies both sides of the protocol. The same Evaluator instance
// must be shared by every algorithm in a study so all of them select against
// the identical fold partition or train/comparison split.
type Evaluator interface {
	// Scorer returns the selection scorer bound to the training data only.
	Scorer() search.Scorer

	// Holdout re-scores a selected configuration: one fit on the training
	// split evaluated on both the training and the comparison rows.
	Holdout(cfg search.Configuration) (train, comparison float64, err error)
}

// StrategyFactory builds a strategy bound to the given scorer. The seed
// varies across restarts; deterministic strategies may ignore it.
type StrategyFactory func(scorer search.Scorer, seed int64) (search.Strategy, error)

// Algorithm names one entrant of a comparison study.
type Algorithm struct {
	Name    string
	Factory StrategyFactory

	// Restarts is the number of independently seeded runs; the best-scoring
	// run wins. Values below 1 mean a single run. Deterministic strategies
	// should leave it at 1.
	Restarts int

	// Seed is the base random seed; restart i runs with Seed+i.
	Seed int64
}

// Report is the harness output for one algorithm: the selected
// configuration, the score that selected it, and the train/comparison
// re-scores of that same fitted configuration. Overfitting shows up as the
// positive gap between comparison and training error.
type Report struct {
	Algorithm       string
	Selected        search.Configuration
	SelectionScore  float64
	TrainScore      float64
	ComparisonScore float64
	Gap             float64
	Evaluations     int
	Failures        int
	Restarts        int
	Elapsed         time.Duration
	Trace           search.Trace
}

// Harness runs strategies against an Evaluator.
type Harness struct {
	logger *zap.Logger
}

// New creates a harness. A nil logger disables logging.
func New(logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{logger: logger}
}

// Run executes one algorithm, taking the best over its restarts, and
// re-scores the winner on the comparison split.
func (h *Harness) Run(ctx context.Context, ev Evaluator, alg Algorithm) (*Report, error) {
	if ev == nil || alg.Factory == nil {
		return nil, search.NewError("evaluator and strategy factory are required").WithComponent("harness")
	}
	restarts := alg.Restarts
	if restarts < 1 {
		restarts = 1
	}

	start := time.Now()
	scorer := ev.Scorer()

	report := &Report{Algorithm: alg.Name, Restarts: restarts}
	var best *search.ScoredConfiguration
	for i := 0; i < restarts; i++ {
		strategy, err := alg.Factory(scorer, alg.Seed+int64(i))
		if err != nil {
			return nil, search.WrapErrorf(err, "building strategy %q", alg.Name)
		}
		result, err := strategy.Run(ctx)
		if err != nil {
			return nil, search.WrapErrorf(err, "running strategy %q (restart %d)", alg.Name, i)
		}
		report.Evaluations += result.Evaluations
		report.Failures += result.Failures
		if best == nil || result.Best.Score < best.Score {
			best = &result.Best
			report.Trace = result.Trace
		}
	}

	report.Selected = best.Config
	report.SelectionScore = best.Score

	trainScore, comparisonScore, err := ev.Holdout(best.Config)
	if err != nil {
		return nil, search.WrapErrorf(err, "re-scoring selection of %q on comparison split", alg.Name)
	}
	report.TrainScore = trainScore
	report.ComparisonScore = comparisonScore
	report.Gap = comparisonScore - trainScore
	report.Elapsed = time.Since(start)

	h.logger.Info("search complete",
		zap.String("algorithm", alg.Name),
		zap.Float64("selection_score", report.SelectionScore),
		zap.Float64("train_score", report.TrainScore),
		zap.Float64("comparison_score", report.ComparisonScore),
		zap.Float64("gap", report.Gap),
		zap.Int("evaluations", report.Evaluations),
		zap.Duration("elapsed", report.Elapsed))

	return report, nil
}

// Compare runs every algorithm against the same Evaluator, so all of them
// select against the identical fold partition, and returns one report per
// algorithm in input order.
func (h *Harness) Compare(ctx context.Context, ev Evaluator, algorithms []Algorithm) ([]*Report, error) {
	reports := make([]*Report, 0, len(algorithms))
	for _, alg := range algorithms {
		report, err := h.Run(ctx, ev, alg)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
