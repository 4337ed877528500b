// Package exhaustive enumerates and scores every configuration within a
// bounded radius: subsets of size 1..maxSize for subset spaces, and the full
// cartesian grid for discrete parameter spaces.
package exhaustive

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Config parameterizes a best-subset search.
type Config struct {
	Space  *search.Space
	Scorer search.Scorer

	// MaxSize bounds the enumerated subset size. The cost is combinatorial
	// in MaxSize; keep it far below the dimension count.
	MaxSize int

	// Workers bounds concurrent evaluations per batch. Defaults to 1.
	Workers int

	Logger *zap.Logger
}

// Search is the best-subset strategy: it enumerates every combination of
// included dimensions of size 1..MaxSize, in deterministic order (increasing
// size, then lexicographic), and keeps the global minimum. Ties are broken
// by first-encountered. This is a batch, non-resumable operation.
type Search struct {
	cfg   Config
	best  *search.ScoredConfiguration
	trace search.Trace
}

// New validates the configuration and constructs the search.
func New(cfg Config) (*Search, error) {
	if cfg.Space == nil || cfg.Scorer == nil {
		return nil, search.NewError("space and scorer are required").WithComponent("exhaustive")
	}
	if !cfg.Space.IsSubset() {
		return nil, search.NewError("best-subset search requires a subset space").WithComponent("exhaustive")
	}
	d := cfg.Space.Dimensions()
	if d == 0 {
		return nil, search.WrapError(search.ErrEmptySearchSpace, "exhaustive search")
	}
	if cfg.MaxSize < 1 || cfg.MaxSize > d {
		return nil, search.NewErrorf("max size %d outside [1,%d]", cfg.MaxSize, d).WithComponent("exhaustive")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Search{cfg: cfg}, nil
}

// Run enumerates and scores all subsets up to MaxSize.
func (s *Search) Run(ctx context.Context) (*search.Result, error) {
	d := s.cfg.Space.Dimensions()
	result := &search.Result{}

	for size := 1; size <= s.cfg.MaxSize; size++ {
		combos := combin.Combinations(d, size)
		configs := make([]search.Configuration, len(combos))
		for i, combo := range combos {
			cfg, err := search.FromSelected(s.cfg.Space, combo)
			if err != nil {
				return nil, err
			}
			configs[i] = cfg
		}

		scores, failures, err := search.EvaluateBatch(ctx, s.cfg.Scorer, configs, s.cfg.Workers, s.cfg.Logger)
		if err != nil {
			return nil, search.WrapErrorf(err, "enumerating size-%d subsets", size)
		}
		result.Evaluations += len(configs)
		result.Failures += failures

		// Scan in enumeration order so ties resolve to the first
		// combination encountered.
		for i, sc := range scores {
			if s.best == nil || sc < s.best.Score {
				s.best = &search.ScoredConfiguration{Config: configs[i], Score: sc}
			}
		}
		s.trace = append(s.trace, search.StatsFor(size, scores))

		s.cfg.Logger.Debug("subset size enumerated",
			zap.Int("size", size),
			zap.Int("combinations", len(configs)),
			zap.Float64("best", s.best.Score))
	}

	result.Best = *s.best
	result.Trace = s.trace
	return result, nil
}

// Best returns the best scored configuration found so far.
func (s *Search) Best() *search.ScoredConfiguration { return s.best }

// Trace returns one summary entry per enumerated subset size.
func (s *Search) Trace() search.Trace { return s.trace }
