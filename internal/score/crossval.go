package score

import (
	"github.com/DannyMorgant/searchkit/internal/search"
)

// FitPredictFunc fits the underlying model on train restricted to the
// included columns and predicts the target for every row of test. It is the
// black-box model primitive behind the cross-validated scorer.
type FitPredictFunc func(train *Dataset, cols []int, test *Dataset) ([]float64, error)

// LossFunc reduces predictions against a dataset's target to a single
// lower-is-better value.
type LossFunc func(preds []float64, d *Dataset) float64

// CrossValidated scores a subset configuration as the mean validation loss
// over a fixed, precomputed fold partition. The partition is identical
// across all configurations and all algorithms being compared.
type CrossValidated struct {
	space *search.Space
	data  *Dataset
	folds *FoldPartition
	fit   FitPredictFunc
	loss  LossFunc
}

// CrossValidatedConfig configures a cross-validated scorer. Fit defaults to
// an OLS fit-and-predict and Loss to mean squared error.
type CrossValidatedConfig struct {
	Space *search.Space
	Data  *Dataset
	Folds *FoldPartition
	Fit   FitPredictFunc
	Loss  LossFunc
}

// NewCrossValidated binds a scorer to a subset space, dataset, and fold
// partition.
func NewCrossValidated(cfg CrossValidatedConfig) (*CrossValidated, error) {
	if cfg.Space == nil || cfg.Data == nil || cfg.Folds == nil {
		return nil, search.NewError("space, dataset, and fold partition are required")
	}
	if !cfg.Space.IsSubset() {
		return nil, search.NewError("cross-validated scorer requires a subset space")
	}
	if cfg.Space.Dimensions() != cfg.Data.Columns() {
		return nil, search.NewErrorf("space declares %d dimensions, dataset has %d columns",
			cfg.Space.Dimensions(), cfg.Data.Columns())
	}
	if cfg.Folds.Rows() != cfg.Data.Rows() {
		return nil, search.NewErrorf("fold partition covers %d rows, dataset has %d",
			cfg.Folds.Rows(), cfg.Data.Rows())
	}
	if cfg.Fit == nil {
		cfg.Fit = OLSFitPredict
	}
	if cfg.Loss == nil {
		cfg.Loss = mse
	}
	return &CrossValidated{
		space: cfg.Space,
		data:  cfg.Data,
		folds: cfg.Folds,
		fit:   cfg.Fit,
		loss:  cfg.Loss,
	}, nil
}

// Evaluate fits one model per fold and returns the mean validation loss.
func (s *CrossValidated) Evaluate(cfg search.Configuration) (float64, error) {
	if err := cfg.Validate(s.space); err != nil {
		return 0, err
	}

	cols := cfg.Selected()
	total := 0.0
	for i := 0; i < s.folds.K(); i++ {
		trainRows, valRows := s.folds.Fold(i)
		train := s.data.Subset(trainRows)
		validation := s.data.Subset(valRows)

		preds, err := s.fit(train, cols, validation)
		if err != nil {
			return 0, search.WrapErrorf(err, "fold %d", i)
		}
		total += s.loss(preds, validation)
	}
	return total / float64(s.folds.K()), nil
}

// OLSFitPredict is the default FitPredictFunc: an ordinary-least-squares fit
// on the training fold evaluated on the validation fold.
func OLSFitPredict(train *Dataset, cols []int, test *Dataset) ([]float64, error) {
	model, err := fitOLS(train, cols, sharedPool)
	if err != nil {
		return nil, err
	}
	return model.predict(test), nil
}

// MSE is the default loss.
func MSE(preds []float64, d *Dataset) float64 { return mse(preds, d) }
