// Package search defines the configuration-search core: spaces, scorers, and
// the contract shared by the exhaustive, greedy, and population strategies.
package search

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Scorer evaluates one configuration and returns its score. Lower is better;
// the harness owns sign conventions for higher-is-better metrics. Evaluate
// must be deterministic for a fixed seed and safe for concurrent use.
type Scorer interface {
	Evaluate(cfg Configuration) (float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(cfg Configuration) (float64, error)

// Evaluate calls f.
func (f ScorerFunc) Evaluate(cfg Configuration) (float64, error) { return f(cfg) }

// ScoredConfiguration pairs a configuration with its score.
type ScoredConfiguration struct {
	Config Configuration
	Score  float64
}

// GenerationStats summarizes one batch of evaluations: a generation for
// population search, an elimination round for greedy search, or one subset
// size for exhaustive search.
type GenerationStats struct {
	Generation  int
	Evaluations int
	Best        float64
	Mean        float64
	Worst       float64
}

// Trace is the ordered per-step diagnostic record of a search.
type Trace []GenerationStats

// Result is the outcome of a completed search.
type Result struct {
	Best        ScoredConfiguration
	Evaluations int
	Failures    int
	Trace       Trace
}

// Strategy is the interface implemented by all search algorithms.
type Strategy interface {
	// Run executes the search to completion and returns the best scored
	// configuration found.
	Run(ctx context.Context) (*Result, error)

	// Best returns the best scored configuration found so far.
	Best() *ScoredConfiguration

	// Trace returns per-step summary statistics for diagnostics.
	Trace() Trace
}

// StatsFor summarizes a batch of scores. Scores degraded to +Inf by fit
// failures are excluded from the summary so one bad candidate does not
// poison the diagnostic.
func StatsFor(generation int, scores []float64) GenerationStats {
	finite := make([]float64, 0, len(scores))
	for _, s := range scores {
		if !isInf(s) {
			finite = append(finite, s)
		}
	}
	st := GenerationStats{
		Generation:  generation,
		Evaluations: len(scores),
	}
	if len(finite) == 0 {
		return st
	}
	st.Best = floats.Min(finite)
	st.Worst = floats.Max(finite)
	st.Mean = stat.Mean(finite, nil)
	return st
}
