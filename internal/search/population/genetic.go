package population

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// GeneticConfig parameterizes the genetic algorithm.
type GeneticConfig struct {
	Space  *search.Space
	Scorer search.Scorer

	PopulationSize int
	Generations    int

	// TournamentSize is the number of individuals drawn (with replacement)
	// per selection tournament. Defaults to 3.
	TournamentSize int

	// CrossoverProb is the probability that a mated pair exchanges a
	// single-point tail segment. Defaults to 0.7.
	CrossoverProb float64

	// MutationProb is the per-bit flip probability. Defaults to 1/d.
	MutationProb float64

	// RandomSeed makes the run reproducible; 0 seeds from the clock.
	RandomSeed int64

	Workers int
	Logger  *zap.Logger
}

// Genetic searches a subset space with tournament selection, single-point
// crossover, and per-bit mutation. Stochastic: single runs exhibit
// run-to-run variance, so comparisons should take the best of several
// independently seeded runs.
type Genetic struct {
	cfg   GeneticConfig
	rng   *rand.Rand
	best  *search.ScoredConfiguration
	trace search.Trace
}

// NewGenetic validates the configuration, applies defaults, and constructs
// the strategy.
func NewGenetic(cfg GeneticConfig) (*Genetic, error) {
	if cfg.Space == nil || cfg.Scorer == nil {
		return nil, search.NewError("space and scorer are required").WithComponent("genetic")
	}
	if !cfg.Space.IsSubset() {
		return nil, search.NewError("genetic search requires a subset space").WithComponent("genetic")
	}
	d := cfg.Space.Dimensions()
	if d == 0 {
		return nil, search.WrapError(search.ErrEmptySearchSpace, "genetic search")
	}
	if cfg.PopulationSize < 2 {
		cfg.PopulationSize = 40
	}
	if cfg.Generations < 1 {
		cfg.Generations = 30
	}
	if cfg.TournamentSize < 1 {
		cfg.TournamentSize = 3
	}
	if cfg.CrossoverProb <= 0 {
		cfg.CrossoverProb = 0.7
	}
	if cfg.MutationProb <= 0 {
		cfg.MutationProb = 1.0 / float64(d)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	if cfg.RandomSeed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Genetic{cfg: cfg, rng: rng}, nil
}

// Run executes the generational loop.
func (g *Genetic) Run(ctx context.Context) (*search.Result, error) {
	result, err := runLoop(ctx, loopConfig{
		scorer:      g.cfg.Scorer,
		generations: g.cfg.Generations,
		workers:     g.cfg.Workers,
		logger:      g.cfg.Logger,
	}, (*geneticVariator)(g))
	if err != nil {
		return nil, err
	}
	g.best = &result.Best
	g.trace = result.Trace
	return result, nil
}

// Best returns the best scored configuration found so far.
func (g *Genetic) Best() *search.ScoredConfiguration { return g.best }

// Trace returns per-generation summary statistics.
func (g *Genetic) Trace() search.Trace { return g.trace }

// geneticVariator adapts Genetic to the shared loop.
type geneticVariator Genetic

func (v *geneticVariator) initialize() Population {
	pop := make(Population, v.cfg.PopulationSize)
	for i := range pop {
		pop[i] = &Individual{Config: v.cfg.Space.RandomSubset(v.rng)}
	}
	return pop
}

func (v *geneticVariator) record(Population) {}

func (v *geneticVariator) advance(pop Population, _ search.ScoredConfiguration) Population {
	next := v.selectPool(pop)
	v.crossover(next)
	v.mutate(next)
	return next
}

// selectPool builds the mating pool by tournament selection, sampling with
// replacement so strong individuals may be selected repeatedly.
func (v *geneticVariator) selectPool(pop Population) Population {
	next := make(Population, len(pop))
	for i := range next {
		winner := pop[v.rng.Intn(len(pop))]
		for t := 1; t < v.cfg.TournamentSize; t++ {
			challenger := pop[v.rng.Intn(len(pop))]
			if challenger.Score < winner.Score {
				winner = challenger
			}
		}
		next[i] = &Individual{Config: winner.Config.Clone()}
	}
	return next
}

// crossover exchanges a randomly chosen tail segment between adjacent pairs
// with probability CrossoverProb per pair.
func (v *geneticVariator) crossover(pop Population) {
	d := v.cfg.Space.Dimensions()
	if d < 2 {
		return
	}
	for i := 0; i+1 < len(pop); i += 2 {
		if v.rng.Float64() >= v.cfg.CrossoverProb {
			continue
		}
		point := 1 + v.rng.Intn(d-1)
		a, b := pop[i].Config.Include, pop[i+1].Config.Include
		for j := point; j < d; j++ {
			a[j], b[j] = b[j], a[j]
		}
	}
}

// mutate flips each bit independently with probability MutationProb. The
// operator never emits an all-excluded configuration: if mutation clears the
// last included bit, one random dimension is re-included so the candidate
// stays scoreable.
func (v *geneticVariator) mutate(pop Population) {
	for _, ind := range pop {
		include := ind.Config.Include
		for j := range include {
			if v.rng.Float64() < v.cfg.MutationProb {
				include[j] = !include[j]
			}
		}
		if ind.Config.IncludedCount() == 0 {
			include[v.rng.Intn(len(include))] = true
		}
	}
}
