package server

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/DannyMorgant/searchkit/internal/config"
	"github.com/DannyMorgant/searchkit/internal/harness"
	"github.com/DannyMorgant/searchkit/internal/score"
	"github.com/DannyMorgant/searchkit/internal/search"
	"github.com/DannyMorgant/searchkit/internal/search/exhaustive"
	"github.com/DannyMorgant/searchkit/internal/search/greedy"
	"github.com/DannyMorgant/searchkit/internal/search/population"
)

// searchRequest is the POST /api/v1/searches payload. Exactly one dataset
// form must be given: a feature matrix with a target column, or a single
// series to be expanded into lagged predictors.
type searchRequest struct {
	Space     spaceSpec     `json:"space"`
	Dataset   datasetSpec   `json:"dataset"`
	Scoring   scoringSpec   `json:"scoring"`
	Algorithm algorithmSpec `json:"algorithm"`
}

type spaceSpec struct {
	// Features names the candidate predictors, matching the dataset's
	// feature columns in order.
	Features []string `json:"features,omitempty"`

	// MaxLag selects a lag-selection space instead; the dataset must then
	// supply a series.
	MaxLag int `json:"max_lag,omitempty"`
}

type datasetSpec struct {
	Features [][]float64 `json:"features,omitempty"`
	Target   []float64   `json:"target,omitempty"`
	Series   []float64   `json:"series,omitempty"`

	// ComparisonFraction is the tail fraction of rows held out for the
	// post-search comparison score. Defaults to 0.25.
	ComparisonFraction float64 `json:"comparison_fraction,omitempty"`
}

type scoringSpec struct {
	// Folds > 0 selects K-fold cross-validated scoring; zero selects an
	// information criterion on the training split.
	Folds     int    `json:"folds,omitempty"`
	Criterion string `json:"criterion,omitempty"` // "bic" (default) or "aic"
	Seed      int64  `json:"seed,omitempty"`
}

type algorithmSpec struct {
	Name string `json:"name"` // "exhaustive", "greedy" or "genetic"

	MaxSubsetSize  int   `json:"max_subset_size,omitempty"`
	PopulationSize int   `json:"population_size,omitempty"`
	Generations    int   `json:"generations,omitempty"`
	Restarts       int   `json:"restarts,omitempty"`
	Seed           int64 `json:"seed,omitempty"`
}

// buildStudy validates the payload and assembles the evaluator and the
// algorithm entry the harness will run.
func buildStudy(req *searchRequest, cfg *config.Config) (*harness.RegressionEvaluator, *search.Space, harness.Algorithm, error) {
	var zero harness.Algorithm

	space, data, err := buildSpaceAndData(req)
	if err != nil {
		return nil, nil, zero, err
	}

	frac := req.Dataset.ComparisonFraction
	if frac == 0 {
		frac = 0.25
	}
	if frac <= 0 || frac >= 1 {
		return nil, nil, zero, fmt.Errorf("comparison_fraction must be in (0, 1), got %g", frac)
	}
	holdout := data.Rows() - int(float64(data.Rows())*frac)
	if holdout < 1 || holdout >= data.Rows() {
		return nil, nil, zero, fmt.Errorf("dataset too small to hold out a comparison split")
	}
	comparisonRows := make([]int, 0, data.Rows()-holdout)
	for i := holdout; i < data.Rows(); i++ {
		comparisonRows = append(comparisonRows, i)
	}

	var criterion score.Criterion
	switch req.Scoring.Criterion {
	case "", "bic":
		criterion = score.BIC
	case "aic":
		criterion = score.AIC
	default:
		return nil, nil, zero, fmt.Errorf("unknown criterion %q", req.Scoring.Criterion)
	}

	ev, err := harness.NewRegressionEvaluator(harness.RegressionEvaluatorConfig{
		Space:          space,
		Data:           data,
		ComparisonRows: comparisonRows,
		Folds:          req.Scoring.Folds,
		Criterion:      criterion,
		Seed:           req.Scoring.Seed,
	})
	if err != nil {
		return nil, nil, zero, err
	}

	alg, err := buildAlgorithm(req.Algorithm, space, cfg)
	if err != nil {
		return nil, nil, zero, err
	}
	return ev, space, alg, nil
}

func buildSpaceAndData(req *searchRequest) (*search.Space, *score.Dataset, error) {
	switch {
	case req.Space.MaxLag > 0:
		if len(req.Space.Features) > 0 {
			return nil, nil, fmt.Errorf("space has both features and max_lag; pick one")
		}
		if len(req.Dataset.Series) == 0 {
			return nil, nil, fmt.Errorf("a lag space needs dataset.series")
		}
		space, err := search.NewLagSpace(req.Space.MaxLag)
		if err != nil {
			return nil, nil, err
		}
		data, err := score.LagDataset(req.Dataset.Series, req.Space.MaxLag)
		if err != nil {
			return nil, nil, err
		}
		return space, data, nil

	case len(req.Space.Features) > 0:
		if len(req.Dataset.Features) == 0 || len(req.Dataset.Target) == 0 {
			return nil, nil, fmt.Errorf("a feature space needs dataset.features and dataset.target")
		}
		space, err := search.NewSubsetSpace(req.Space.Features...)
		if err != nil {
			return nil, nil, err
		}
		rows := len(req.Dataset.Features)
		cols := len(req.Space.Features)
		features := mat.NewDense(rows, cols, nil)
		for i, row := range req.Dataset.Features {
			if len(row) != cols {
				return nil, nil, fmt.Errorf("dataset row %d has %d columns, space names %d features", i, len(row), cols)
			}
			for j, v := range row {
				features.Set(i, j, v)
			}
		}
		data, err := score.NewDataset(features, req.Dataset.Target)
		if err != nil {
			return nil, nil, err
		}
		return space, data, nil

	default:
		return nil, nil, fmt.Errorf("space needs either features or max_lag")
	}
}

func buildAlgorithm(spec algorithmSpec, space *search.Space, cfg *config.Config) (harness.Algorithm, error) {
	var zero harness.Algorithm
	workers := cfg.Search.Workers

	switch spec.Name {
	case "exhaustive":
		maxSize := spec.MaxSubsetSize
		if maxSize == 0 {
			maxSize = space.Dimensions()
		}
		return harness.Algorithm{
			Name: spec.Name,
			Factory: func(scorer search.Scorer, _ int64) (search.Strategy, error) {
				return exhaustive.New(exhaustive.Config{
					Space:   space,
					Scorer:  scorer,
					MaxSize: maxSize,
					Workers: workers,
				})
			},
		}, nil

	case "greedy":
		return harness.Algorithm{
			Name: spec.Name,
			Factory: func(scorer search.Scorer, _ int64) (search.Strategy, error) {
				return greedy.New(greedy.Config{
					Space:   space,
					Scorer:  scorer,
					Workers: workers,
				})
			},
		}, nil

	case "genetic":
		populationSize := spec.PopulationSize
		if populationSize == 0 {
			populationSize = cfg.Search.PopulationSize
		}
		generations := spec.Generations
		if generations == 0 {
			generations = cfg.Search.Generations
		}
		restarts := spec.Restarts
		if restarts == 0 {
			restarts = cfg.Search.Restarts
		}
		return harness.Algorithm{
			Name: spec.Name,
			Factory: func(scorer search.Scorer, seed int64) (search.Strategy, error) {
				return population.NewGenetic(population.GeneticConfig{
					Space:          space,
					Scorer:         scorer,
					PopulationSize: populationSize,
					Generations:    generations,
					RandomSeed:     seed,
					Workers:        workers,
				})
			},
			Restarts: restarts,
			Seed:     spec.Seed,
		}, nil

	default:
		return zero, fmt.Errorf("unknown algorithm %q", spec.Name)
	}
}
