package harness

import (
	"math/rand"

	"github.com/DannyMorgant/searchkit/internal/score"
	"github.com/DannyMorgant/searchkit/internal/search"
)

// RegressionEvaluatorConfig binds a subset-selection study to a dataset.
type RegressionEvaluatorConfig struct {
	Space *search.Space
	Data  *score.Dataset

	// ComparisonRows designates the held-out comparison split; these rows
	// are never seen during search.
	ComparisonRows []int

	// Folds selects K-fold cross-validated selection scoring. Zero selects
	// information-criterion scoring on the training split instead.
	Folds int

	// Criterion applies when Folds is zero. Defaults to BIC.
	Criterion score.Criterion

	// Seed fixes the fold partition so every compared algorithm sees the
	// same folds.
	Seed int64
}

// RegressionEvaluator implements Evaluator for linear-regression subset
// selection. The fold partition is constructed once here and reused verbatim
// by every configuration and every algorithm in the study.
type RegressionEvaluator struct {
	space      *search.Space
	train      *score.Dataset
	comparison *score.Dataset
	scorer     search.Scorer
}

// NewRegressionEvaluator splits the dataset and builds the selection scorer.
func NewRegressionEvaluator(cfg RegressionEvaluatorConfig) (*RegressionEvaluator, error) {
	if cfg.Space == nil || cfg.Data == nil {
		return nil, search.NewError("space and dataset are required").WithComponent("harness")
	}
	if len(cfg.ComparisonRows) == 0 {
		return nil, search.NewError("a held-out comparison split is required").WithComponent("harness")
	}

	train, comparison := cfg.Data.Split(cfg.ComparisonRows)

	var scorer search.Scorer
	if cfg.Folds > 0 {
		folds, err := score.NewKFold(train.Rows(), cfg.Folds, rand.New(rand.NewSource(cfg.Seed)))
		if err != nil {
			return nil, err
		}
		scorer, err = score.NewCrossValidated(score.CrossValidatedConfig{
			Space: cfg.Space,
			Data:  train,
			Folds: folds,
		})
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		scorer, err = score.NewInformationCriterion(cfg.Space, train, cfg.Criterion)
		if err != nil {
			return nil, err
		}
	}

	return &RegressionEvaluator{
		space:      cfg.Space,
		train:      train,
		comparison: comparison,
		scorer:     search.NewCachingScorer(scorer),
	}, nil
}

// Scorer returns the selection scorer bound to the training split.
func (e *RegressionEvaluator) Scorer() search.Scorer { return e.scorer }

// Holdout fits the selected columns once on the training split and reports
// the mean squared error on both splits.
func (e *RegressionEvaluator) Holdout(cfg search.Configuration) (float64, float64, error) {
	if err := cfg.Validate(e.space); err != nil {
		return 0, 0, err
	}
	return score.HoldoutMSE(e.train, e.comparison, cfg.Selected())
}

// FuncEvaluator adapts a black-box selection scorer and holdout function to
// the Evaluator interface, for hyperparameter studies where the model fit is
// external.
type FuncEvaluator struct {
	Selection search.Scorer
	Rescore   func(cfg search.Configuration) (train, comparison float64, err error)
}

// Scorer returns the selection scorer.
func (e *FuncEvaluator) Scorer() search.Scorer { return e.Selection }

// Holdout delegates to the rescore function.
func (e *FuncEvaluator) Holdout(cfg search.Configuration) (float64, float64, error) {
	return e.Rescore(cfg)
}
