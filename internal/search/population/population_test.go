package population

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DannyMorgant/searchkit/internal/score"
	"github.com/DannyMorgant/searchkit/internal/search"
)

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

// weightScorer plants a known optimum: include every negative-weight
// dimension, exclude every positive one.
func weightScorer(weights []float64) search.ScorerFunc {
	return func(cfg search.Configuration) (float64, error) {
		sum := 0.0
		for _, idx := range cfg.Selected() {
			sum += weights[idx]
		}
		return sum, nil
	}
}

func TestGeneticFindsPlantedOptimum(t *testing.T) {
	weights := []float64{-3, -2, -1, 1, 2, 3, 0.5, 0.25}
	space := namedSpace(t, len(weights))

	g, err := NewGenetic(GeneticConfig{
		Space:          space,
		Scorer:         weightScorer(weights),
		PopulationSize: 40,
		Generations:    40,
		RandomSeed:     17,
		Workers:        4,
	})
	require.NoError(t, err)
	result, err := g.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, result.Best.Config.Selected())
	assert.Equal(t, -6.0, result.Best.Score)
	assert.Len(t, result.Trace, 40)
}

func TestGeneticGlobalBestNeverWorsens(t *testing.T) {
	weights := []float64{-2, 1, -1, 2, 0.5, -0.5}
	space := namedSpace(t, len(weights))

	g, err := NewGenetic(GeneticConfig{
		Space:       space,
		Scorer:      weightScorer(weights),
		Generations: 25,
		RandomSeed:  3,
	})
	require.NoError(t, err)
	result, err := g.Run(context.Background())
	require.NoError(t, err)

	// The recorded global best is the running minimum over generation
	// bests, so it must be monotonically non-increasing.
	running := math.Inf(1)
	for _, gen := range result.Trace {
		if gen.Best < running {
			running = gen.Best
		}
	}
	assert.Equal(t, running, result.Best.Score)
	assert.LessOrEqual(t, result.Best.Score, result.Trace[0].Best)
}

func TestGeneticReproducibleForSeed(t *testing.T) {
	weights := []float64{-1, 2, -3, 4, -5}
	space := namedSpace(t, len(weights))

	run := func() *search.Result {
		g, err := NewGenetic(GeneticConfig{
			Space:       space,
			Scorer:      weightScorer(weights),
			Generations: 15,
			RandomSeed:  99,
		})
		require.NoError(t, err)
		result, err := g.Run(context.Background())
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()
	assert.Equal(t, a.Best.Config.Include, b.Best.Config.Include)
	assert.Equal(t, a.Best.Score, b.Best.Score)
	assert.Equal(t, a.Trace, b.Trace)
}

func TestGeneticNeverScoresEmptyConfiguration(t *testing.T) {
	space := namedSpace(t, 4)
	scorer := search.ScorerFunc(func(cfg search.Configuration) (float64, error) {
		if cfg.IncludedCount() == 0 {
			t.Fatal("an all-excluded configuration reached the scorer")
		}
		// Push hard toward the empty set so mutation repair gets exercised.
		return float64(cfg.IncludedCount()), nil
	})

	g, err := NewGenetic(GeneticConfig{
		Space:        space,
		Scorer:       scorer,
		Generations:  30,
		MutationProb: 0.4,
		RandomSeed:   7,
	})
	require.NoError(t, err)
	_, err = g.Run(context.Background())
	require.NoError(t, err)
}

func paramSpace(t *testing.T) *search.Space {
	t.Helper()
	space, err := search.NewParameterSpace(
		search.NewCategorical("n_estimators", 10, 50, 100),
		search.NewCategorical("max_depth", 2, 5),
	)
	require.NoError(t, err)
	return space
}

func bowlObjective(values []float64) (float64, error) {
	n, depth := values[0], values[1]
	return (n-50)*(n-50) + (depth-5)*(depth-5), nil
}

func TestSwarmMatchesGridOptimum(t *testing.T) {
	space := paramSpace(t)
	scorer, err := score.NewParamScorer(space, bowlObjective)
	require.NoError(t, err)

	// The grid has 6 combinations; its best point scores 0 at (50, 5).
	// A swarm of 10 particles over 10 generations, best of 5 seeded runs,
	// must do no worse.
	best := math.Inf(1)
	for seed := int64(1); seed <= 5; seed++ {
		s, err := NewSwarm(SwarmConfig{
			Space:       space,
			Scorer:      scorer,
			Particles:   10,
			Generations: 10,
			RandomSeed:  seed,
			Workers:     2,
		})
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)
		if result.Best.Score < best {
			best = result.Best.Score
		}
	}
	assert.Equal(t, 0.0, best)
}

func TestSwarmReproducibleForSeed(t *testing.T) {
	space := paramSpace(t)
	scorer, err := score.NewParamScorer(space, bowlObjective)
	require.NoError(t, err)

	run := func() *search.Result {
		s, err := NewSwarm(SwarmConfig{
			Space:       space,
			Scorer:      scorer,
			Particles:   8,
			Generations: 12,
			RandomSeed:  21,
		})
		require.NoError(t, err)
		result, err := s.Run(context.Background())
		require.NoError(t, err)
		return result
	}

	a, b := run(), run()
	assert.Equal(t, a.Best.Config.Coords, b.Best.Config.Coords)
	assert.Equal(t, a.Best.Score, b.Best.Score)
	assert.Equal(t, a.Trace, b.Trace)
}

func TestSwarmVelocityClampIsSignPreserving(t *testing.T) {
	space := paramSpace(t)
	scorer, err := score.NewParamScorer(space, bowlObjective)
	require.NoError(t, err)

	s, err := NewSwarm(SwarmConfig{
		Space:       space,
		Scorer:      scorer,
		Particles:   6,
		Generations: 1,
		VMax:        0.3,
		RandomSeed:  4,
	})
	require.NoError(t, err)

	v := (*swarmVariator)(s)
	pop := v.initialize()
	for _, ind := range pop {
		ind.Score = 1
	}
	v.record(pop)
	best := search.ScoredConfiguration{Config: pop[0].Config.Clone(), Score: 1}

	for i := 0; i < 20; i++ {
		pop = v.advance(pop, best)
		for _, ind := range pop {
			for _, vel := range ind.Velocity {
				assert.LessOrEqual(t, math.Abs(vel), 0.3, "velocity magnitude exceeds vmax")
			}
			for _, x := range ind.Config.Coords {
				assert.GreaterOrEqual(t, x, 0.0)
				assert.LessOrEqual(t, x, 1.0)
			}
		}
	}
}

func TestSwarmVMaxDecays(t *testing.T) {
	space := paramSpace(t)
	scorer, err := score.NewParamScorer(space, bowlObjective)
	require.NoError(t, err)

	s, err := NewSwarm(SwarmConfig{
		Space:      space,
		Scorer:     scorer,
		VMax:       0.5,
		VMaxDecay:  0.9,
		RandomSeed: 2,
	})
	require.NoError(t, err)

	v := (*swarmVariator)(s)
	pop := v.initialize()
	v.record(pop)
	best := search.ScoredConfiguration{Config: pop[0].Config.Clone(), Score: 0}

	v.advance(pop, best)
	assert.InDelta(t, 0.45, s.vmax, 1e-12)
	v.advance(pop, best)
	assert.InDelta(t, 0.405, s.vmax, 1e-12)
}
