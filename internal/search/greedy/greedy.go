// Package greedy implements backward elimination: a strict hill-descent on
// subset size, removing exactly one dimension per step regardless of score.
package greedy

import (
	"context"

	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Config parameterizes a backward-elimination search.
type Config struct {
	Space   *search.Space
	Scorer  search.Scorer
	Workers int
	Logger  *zap.Logger
}

// Search walks from the full-inclusion configuration down to a single
// dimension in exactly d-1 steps. At each step every configuration reachable
// by excluding one more dimension is scored and the lowest-scoring one
// becomes the next state; ties resolve to the lowest removed index. The
// returned best is the best configuration seen at ANY step along the path,
// since score is non-monotonic in size. The search explores a single path
// through the subset lattice in O(d^2) evaluations, so it is not guaranteed
// to reach the exhaustive optimum.
type Search struct {
	cfg   Config
	best  *search.ScoredConfiguration
	trace search.Trace
}

// New validates the configuration and constructs the search.
func New(cfg Config) (*Search, error) {
	if cfg.Space == nil || cfg.Scorer == nil {
		return nil, search.NewError("space and scorer are required").WithComponent("greedy")
	}
	if !cfg.Space.IsSubset() {
		return nil, search.NewError("backward elimination requires a subset space").WithComponent("greedy")
	}
	if cfg.Space.Dimensions() == 0 {
		return nil, search.WrapError(search.ErrEmptySearchSpace, "backward elimination")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Search{cfg: cfg}, nil
}

// Run performs the elimination walk.
func (s *Search) Run(ctx context.Context) (*search.Result, error) {
	result := &search.Result{}

	current := s.cfg.Space.Full()
	scores, failures, err := search.EvaluateBatch(ctx, s.cfg.Scorer, []search.Configuration{current}, 1, s.cfg.Logger)
	if err != nil {
		return nil, search.WrapError(err, "scoring full configuration")
	}
	result.Evaluations++
	result.Failures += failures
	s.best = &search.ScoredConfiguration{Config: current.Clone(), Score: scores[0]}
	s.trace = append(s.trace, search.StatsFor(0, scores))

	step := 0
	for current.IncludedCount() > 1 {
		step++

		// Candidates ordered by removed index, ascending, so a strict
		// comparison breaks ties toward the lowest-indexed removal.
		var candidates []search.Configuration
		for idx, included := range current.Include {
			if !included {
				continue
			}
			next := current.Clone()
			next.Include[idx] = false
			candidates = append(candidates, next)
		}

		scores, failures, err := search.EvaluateBatch(ctx, s.cfg.Scorer, candidates, s.cfg.Workers, s.cfg.Logger)
		if err != nil {
			return nil, search.WrapErrorf(err, "elimination step %d", step)
		}
		result.Evaluations += len(candidates)
		result.Failures += failures

		bestIdx := 0
		for i, sc := range scores {
			if sc < scores[bestIdx] {
				bestIdx = i
			}
		}
		current = candidates[bestIdx]
		if s.best == nil || scores[bestIdx] < s.best.Score {
			s.best = &search.ScoredConfiguration{Config: current.Clone(), Score: scores[bestIdx]}
		}
		s.trace = append(s.trace, search.StatsFor(step, scores))

		s.cfg.Logger.Debug("dimension eliminated",
			zap.Int("step", step),
			zap.Int("remaining", current.IncludedCount()),
			zap.Float64("step_best", scores[bestIdx]))
	}

	result.Best = *s.best
	result.Trace = s.trace
	return result, nil
}

// Best returns the best scored configuration found so far.
func (s *Search) Best() *search.ScoredConfiguration { return s.best }

// Trace returns one summary entry per elimination step.
func (s *Search) Trace() search.Trace { return s.trace }
