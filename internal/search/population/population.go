// Package population implements evolutionary and swarm search over a shared
// generational control loop: a genetic algorithm on bit vectors and a
// particle swarm on normalized continuous coordinates.
package population

import (
	"context"

	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Individual is one candidate in the population. The velocity and
// personal-best fields are used by the swarm only.
type Individual struct {
	Config search.Configuration
	Score  float64

	Velocity  []float64
	BestCoord []float64
	BestScore float64
}

// Population is the ordered collection of current candidates. It is an
// explicit value passed through each generation step, not process-wide
// state, so independent runs can proceed in parallel.
type Population []*Individual

// Configs collects the population's configurations for batch evaluation.
func (p Population) Configs() []search.Configuration {
	out := make([]search.Configuration, len(p))
	for i, ind := range p {
		out[i] = ind.Config
	}
	return out
}

// variator produces the population of the next generation. The swarm needs
// the global best to pull particles toward; the genetic algorithm ignores
// it.
type variator interface {
	initialize() Population
	record(pop Population)
	advance(pop Population, best search.ScoredConfiguration) Population
}

// loopConfig parameterizes the shared generational loop.
type loopConfig struct {
	scorer      search.Scorer
	generations int
	workers     int
	logger      *zap.Logger
}

// runLoop evaluates, records, and varies the population for a fixed number
// of generations. Each generation's evaluations run concurrently and the
// loop waits on the whole batch before aggregating (one barrier per
// generation). The global best is replaced only on strictly better scores,
// so it is monotonically non-worsening by construction.
func runLoop(ctx context.Context, cfg loopConfig, v variator) (*search.Result, error) {
	pop := v.initialize()
	result := &search.Result{}
	var trace search.Trace
	var best *search.ScoredConfiguration

	for gen := 0; gen < cfg.generations; gen++ {
		scores, failures, err := search.EvaluateBatch(ctx, cfg.scorer, pop.Configs(), cfg.workers, cfg.logger)
		if err != nil {
			return nil, search.WrapErrorf(err, "generation %d", gen)
		}
		result.Evaluations += len(pop)
		result.Failures += failures
		for i, ind := range pop {
			ind.Score = scores[i]
		}

		v.record(pop)

		for _, ind := range pop {
			if best == nil || ind.Score < best.Score {
				best = &search.ScoredConfiguration{Config: ind.Config.Clone(), Score: ind.Score}
			}
		}
		trace = append(trace, search.StatsFor(gen, scores))

		cfg.logger.Debug("generation evaluated",
			zap.Int("generation", gen),
			zap.Float64("best", best.Score),
			zap.Int("failures", failures))

		if gen < cfg.generations-1 {
			pop = v.advance(pop, *best)
		}
	}

	result.Best = *best
	result.Trace = trace
	return result, nil
}
