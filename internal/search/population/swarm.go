package population

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// SwarmConfig parameterizes the particle swarm.
type SwarmConfig struct {
	Space  *search.Space
	Scorer search.Scorer

	Particles   int
	Generations int

	// Phi1 and Phi2 bound the uniform pulls toward the personal and global
	// bests. Both default to 2.0.
	Phi1 float64
	Phi2 float64

	// VMax bounds the per-dimension velocity magnitude; it decays by
	// VMaxDecay every generation so the swarm progressively settles.
	// Defaults: 0.5 and 0.95.
	VMax      float64
	VMaxDecay float64

	// RandomSeed makes the run reproducible; 0 seeds from the clock.
	RandomSeed int64

	Workers int
	Logger  *zap.Logger
}

// Swarm searches a parameter space in normalized [0,1]^n coordinates. Each
// particle carries a position, a velocity, and its personal-best position;
// the per-dimension Domain scaling maps positions onto real hyperparameter
// values only at scoring time.
type Swarm struct {
	cfg   SwarmConfig
	rng   *rand.Rand
	vmax  float64
	best  *search.ScoredConfiguration
	trace search.Trace
}

// NewSwarm validates the configuration, applies defaults, and constructs
// the strategy.
func NewSwarm(cfg SwarmConfig) (*Swarm, error) {
	if cfg.Space == nil || cfg.Scorer == nil {
		return nil, search.NewError("space and scorer are required").WithComponent("swarm")
	}
	if cfg.Space.IsSubset() {
		return nil, search.NewError("swarm search requires a parameter space").WithComponent("swarm")
	}
	if cfg.Space.Dimensions() == 0 {
		return nil, search.WrapError(search.ErrEmptySearchSpace, "swarm search")
	}
	if cfg.Particles < 2 {
		cfg.Particles = 20
	}
	if cfg.Generations < 1 {
		cfg.Generations = 30
	}
	if cfg.Phi1 <= 0 {
		cfg.Phi1 = 2.0
	}
	if cfg.Phi2 <= 0 {
		cfg.Phi2 = 2.0
	}
	if cfg.VMax <= 0 {
		cfg.VMax = 0.5
	}
	if cfg.VMaxDecay <= 0 || cfg.VMaxDecay > 1 {
		cfg.VMaxDecay = 0.95
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

	return &Swarm{cfg: cfg, rng: rng, vmax: cfg.VMax}, nil
}

// Run executes the generational loop.
func (s *Swarm) Run(ctx context.Context) (*search.Result, error) {
	s.vmax = s.cfg.VMax
	result, err := runLoop(ctx, loopConfig{
		scorer:      s.cfg.Scorer,
		generations: s.cfg.Generations,
		workers:     s.cfg.Workers,
		logger:      s.cfg.Logger,
	}, (*swarmVariator)(s))
	if err != nil {
		return nil, err
	}
	s.best = &result.Best
	s.trace = result.Trace
	return result, nil
}

// Best returns the best scored configuration found so far.
func (s *Swarm) Best() *search.ScoredConfiguration { return s.best }

// Trace returns per-generation summary statistics.
func (s *Swarm) Trace() search.Trace { return s.trace }

// swarmVariator adapts Swarm to the shared loop.
type swarmVariator Swarm

func (v *swarmVariator) initialize() Population {
	d := v.cfg.Space.Dimensions()
	pop := make(Population, v.cfg.Particles)
	for i := range pop {
		velocity := make([]float64, d)
		for j := range velocity {
			velocity[j] = (v.rng.Float64()*2 - 1) * v.cfg.VMax
		}
		cfg := v.cfg.Space.RandomVector(v.rng)
		pop[i] = &Individual{
			Config:    cfg,
			Velocity:  velocity,
			BestCoord: append([]float64(nil), cfg.Coords...),
			BestScore: math.Inf(1),
		}
	}
	return pop
}

// record updates each particle's personal best after scoring.
func (v *swarmVariator) record(pop Population) {
	for _, ind := range pop {
		if ind.Score < ind.BestScore {
			ind.BestScore = ind.Score
			ind.BestCoord = append(ind.BestCoord[:0], ind.Config.Coords...)
		}
	}
}

// advance applies the velocity and position updates in place. Per dimension:
// v' = v + U(0,phi1)·(personalBest − x) + U(0,phi2)·(globalBest − x), with
// the magnitude clamped to vmax (sign preserved) and the position clamped to
// [0,1]. vmax decays once per generation.
func (v *swarmVariator) advance(pop Population, best search.ScoredConfiguration) Population {
	for _, ind := range pop {
		coords := ind.Config.Coords
		for j := range coords {
			pull := v.rng.Float64()*v.cfg.Phi1*(ind.BestCoord[j]-coords[j]) +
				v.rng.Float64()*v.cfg.Phi2*(best.Config.Coords[j]-coords[j])
			vel := ind.Velocity[j] + pull
			if math.Abs(vel) > v.vmax {
				vel = math.Copysign(v.vmax, vel)
			}
			ind.Velocity[j] = vel

			x := coords[j] + vel
			if x < 0 {
				x = 0
			} else if x > 1 {
				x = 1
			}
			coords[j] = x
		}
	}
	v.vmax *= v.cfg.VMaxDecay
	return pop
}
