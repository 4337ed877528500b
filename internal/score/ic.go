package score

import (
	"math"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Criterion selects the penalized-likelihood score reported by the
// information-criterion scorer. Lower is better for both.
type Criterion int

const (
	// BIC is the Bayesian information criterion, -2·logLik + k·ln(n).
	BIC Criterion = iota
	// AIC is the Akaike information criterion, -2·logLik + 2·k.
	AIC
)

// InformationCriterion scores a subset configuration by fitting one OLS
// model on the full provided dataset restricted to the included columns and
// returning a penalized-likelihood criterion. The penalty trades fit quality
// against the number of included dimensions, which makes scores comparable
// across configurations of different sizes without a held-out set.
type InformationCriterion struct {
	space     *search.Space
	data      *Dataset
	criterion Criterion
	pool      *matrixPool
}

// NewInformationCriterion binds the scorer to a subset space and a dataset
// whose columns match the space's dimensions.
func NewInformationCriterion(space *search.Space, data *Dataset, criterion Criterion) (*InformationCriterion, error) {
	if space == nil || data == nil {
		return nil, search.NewError("space and dataset are required")
	}
	if !space.IsSubset() {
		return nil, search.NewError("information criterion requires a subset space")
	}
	if space.Dimensions() != data.Columns() {
		return nil, search.NewErrorf("space declares %d dimensions, dataset has %d columns",
			space.Dimensions(), data.Columns())
	}
	return &InformationCriterion{
		space:     space,
		data:      data,
		criterion: criterion,
		pool:      newMatrixPool(),
	}, nil
}

// Evaluate fits the included columns and returns the criterion value.
func (s *InformationCriterion) Evaluate(cfg search.Configuration) (float64, error) {
	if err := cfg.Validate(s.space); err != nil {
		return 0, err
	}

	model, err := fitOLS(s.data, cfg.Selected(), s.pool)
	if err != nil {
		return 0, err
	}

	n := float64(model.n)
	// Coefficients, intercept, and the residual variance all count as
	// estimated parameters.
	k := float64(len(model.cols) + 2)

	variance := model.rss / n
	if variance <= 0 {
		return 0, search.WrapError(search.ErrScorerFit, "degenerate residual variance")
	}
	logLik := -n / 2 * (math.Log(2*math.Pi) + math.Log(variance) + 1)

	switch s.criterion {
	case AIC:
		return -2*logLik + 2*k, nil
	default:
		return -2*logLik + k*math.Log(n), nil
	}
}
