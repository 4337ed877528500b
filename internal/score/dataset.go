// Package score implements the model-fit-and-score primitives consumed by
// the search strategies: an information-criterion scorer and a
// cross-validated scorer over an in-memory tabular dataset.
package score

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// Dataset is an in-memory feature matrix with a target vector, already
// cleaned and encoded by the data-preparation collaborator.
type Dataset struct {
	features *mat.Dense
	target   []float64
}

// NewDataset creates a dataset from a feature matrix and target vector with
// matching row counts.
func NewDataset(features *mat.Dense, target []float64) (*Dataset, error) {
	rows, cols := features.Dims()
	if rows == 0 || cols == 0 {
		return nil, search.NewError("dataset must have at least one row and one column")
	}
	if rows != len(target) {
		return nil, search.NewErrorf("feature matrix has %d rows, target has %d", rows, len(target))
	}
	return &Dataset{features: features, target: target}, nil
}

// LagDataset builds an autoregressive design from a series: column j holds
// the series lagged by j+1, the target is the unlagged value. The first
// maxLag observations are consumed as history.
func LagDataset(series []float64, maxLag int) (*Dataset, error) {
	if maxLag < 1 {
		return nil, search.NewError("maxLag must be at least 1")
	}
	n := len(series) - maxLag
	if n < 1 {
		return nil, search.NewErrorf("series of length %d too short for %d lags", len(series), maxLag)
	}
	features := mat.NewDense(n, maxLag, nil)
	target := make([]float64, n)
	for t := 0; t < n; t++ {
		target[t] = series[t+maxLag]
		for j := 0; j < maxLag; j++ {
			features.Set(t, j, series[t+maxLag-j-1])
		}
	}
	return &Dataset{features: features, target: target}, nil
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int {
	r, _ := d.features.Dims()
	return r
}

// Columns returns the number of feature columns.
func (d *Dataset) Columns() int {
	_, c := d.features.Dims()
	return c
}

// Target returns the target value of row i.
func (d *Dataset) Target(i int) float64 { return d.target[i] }

// At returns the feature value at row i, column j.
func (d *Dataset) At(i, j int) float64 { return d.features.At(i, j) }

// Subset copies the given rows into a new dataset.
func (d *Dataset) Subset(rows []int) *Dataset {
	_, cols := d.features.Dims()
	features := mat.NewDense(len(rows), cols, nil)
	target := make([]float64, len(rows))
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			features.Set(i, j, d.features.At(r, j))
		}
		target[i] = d.target[r]
	}
	return &Dataset{features: features, target: target}
}

// Split partitions the dataset into the rows listed in holdout and the rest,
// preserving row order within each part.
func (d *Dataset) Split(holdout []int) (train, comparison *Dataset) {
	held := make(map[int]bool, len(holdout))
	for _, r := range holdout {
		held[r] = true
	}
	var trainRows, holdRows []int
	for r := 0; r < d.Rows(); r++ {
		if held[r] {
			holdRows = append(holdRows, r)
		} else {
			trainRows = append(trainRows, r)
		}
	}
	return d.Subset(trainRows), d.Subset(holdRows)
}

// FoldPartition is a fixed assignment of rows to K cross-validation folds,
// constructed once per comparison study and reused verbatim for every
// algorithm and every configuration so the comparison stays fair.
type FoldPartition struct {
	folds [][]int
	n     int
}

// NewKFold shuffles row indices with the given generator and deals them into
// k folds of near-equal size. The partition is deterministic for a fixed
// seed.
func NewKFold(n, k int, rng *rand.Rand) (*FoldPartition, error) {
	if k < 2 {
		return nil, search.NewErrorf("need at least 2 folds, got %d", k)
	}
	if n < k {
		return nil, search.NewErrorf("cannot split %d rows into %d folds", n, k)
	}
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, r := range perm {
		folds[i%k] = append(folds[i%k], r)
	}
	return &FoldPartition{folds: folds, n: n}, nil
}

// K returns the number of folds.
func (p *FoldPartition) K() int { return len(p.folds) }

// Rows returns the number of partitioned rows.
func (p *FoldPartition) Rows() int { return p.n }

// Fold returns the train and validation row indices of fold i.
func (p *FoldPartition) Fold(i int) (train, validation []int) {
	validation = append([]int(nil), p.folds[i]...)
	for j, f := range p.folds {
		if j != i {
			train = append(train, f...)
		}
	}
	return train, validation
}
