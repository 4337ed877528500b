package score

import (
	"github.com/DannyMorgant/searchkit/internal/search"
)

// ParamObjective scores a decoded hyperparameter vector. The vector carries
// the actual domain values, one per dimension in declaration order. An error
// is treated as a per-candidate fit failure.
type ParamObjective func(values []float64) (float64, error)

// ParamScorer adapts a black-box objective over hyperparameter values to the
// search.Scorer contract. It decodes a configuration's normalized
// coordinates through the space's domains before each call, so swarm
// positions map onto real hyperparameters.
type ParamScorer struct {
	space     *search.Space
	objective ParamObjective
}

// NewParamScorer binds an objective to a parameter space.
func NewParamScorer(space *search.Space, objective ParamObjective) (*ParamScorer, error) {
	if space == nil || objective == nil {
		return nil, search.NewError("space and objective are required")
	}
	if space.IsSubset() {
		return nil, search.NewError("param scorer requires a parameter space")
	}
	return &ParamScorer{space: space, objective: objective}, nil
}

// Evaluate decodes and scores the configuration.
func (s *ParamScorer) Evaluate(cfg search.Configuration) (float64, error) {
	values, err := s.space.Decode(cfg)
	if err != nil {
		return 0, err
	}
	v, err := s.objective(values)
	if err != nil {
		return 0, search.WrapError(search.ErrScorerFit, err.Error())
	}
	return v, nil
}
