package exhaustive

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// GridConfig parameterizes a full-grid enumeration over a discrete
// parameter space.
type GridConfig struct {
	Space   *search.Space
	Scorer  search.Scorer
	Workers int
	Logger  *zap.Logger
}

// Grid scores every point of the cartesian product of the space's domain
// values, in row-major order over the domain indices, keeping the first
// minimum encountered.
type Grid struct {
	cfg   GridConfig
	best  *search.ScoredConfiguration
	trace search.Trace
}

// NewGrid validates the configuration and constructs the enumerator.
func NewGrid(cfg GridConfig) (*Grid, error) {
	if cfg.Space == nil || cfg.Scorer == nil {
		return nil, search.NewError("space and scorer are required").WithComponent("grid")
	}
	if cfg.Space.IsSubset() {
		return nil, search.NewError("grid enumeration requires a parameter space").WithComponent("grid")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Grid{cfg: cfg}, nil
}

// Run enumerates and scores the full grid as one batch.
func (g *Grid) Run(ctx context.Context) (*search.Result, error) {
	domains := g.cfg.Space.Domains()
	lens := make([]int, len(domains))
	for i, d := range domains {
		lens[i] = len(d.Values())
	}

	tuples := combin.Cartesian(lens)
	configs := make([]search.Configuration, len(tuples))
	for i, tuple := range tuples {
		coords := make([]float64, len(domains))
		for j, idx := range tuple {
			coords[j] = domains[j].Normalize(idx)
		}
		configs[i] = search.Configuration{Coords: coords}
	}

	scores, failures, err := search.EvaluateBatch(ctx, g.cfg.Scorer, configs, g.cfg.Workers, g.cfg.Logger)
	if err != nil {
		return nil, search.WrapError(err, "enumerating grid")
	}

	for i, sc := range scores {
		if g.best == nil || sc < g.best.Score {
			g.best = &search.ScoredConfiguration{Config: configs[i], Score: sc}
		}
	}
	g.trace = search.Trace{search.StatsFor(0, scores)}

	g.cfg.Logger.Debug("grid enumerated",
		zap.Int("points", len(configs)),
		zap.Float64("best", g.best.Score))

	return &search.Result{
		Best:        *g.best,
		Evaluations: len(configs),
		Failures:    failures,
		Trace:       g.trace,
	}, nil
}

// Best returns the best scored grid point found so far.
func (g *Grid) Best() *search.ScoredConfiguration { return g.best }

// Trace returns the single-batch summary.
func (g *Grid) Trace() search.Trace { return g.trace }
