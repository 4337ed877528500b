package score

import (
	"gonum.org/v1/gonum/mat"

	"github.com/DannyMorgant/searchkit/internal/search"
)

// olsModel is an ordinary-least-squares fit of the target on the selected
// feature columns plus an intercept.
type olsModel struct {
	cols []int
	beta []float64 // intercept first, then one coefficient per column
	rss  float64
	n    int
}

// fitOLS fits the target of d on the columns cols by QR decomposition. A
// rank-deficient or undersized design surfaces as ErrScorerFit so a single
// bad candidate degrades instead of aborting the batch.
func fitOLS(d *Dataset, cols []int, pool *matrixPool) (*olsModel, error) {
	n := d.Rows()
	k := len(cols) + 1
	if n < k {
		return nil, search.WrapErrorf(search.ErrScorerFit, "%d rows cannot support %d parameters", n, k)
	}

	design := pool.getDense(n, k)
	defer pool.putDense(design)
	y := pool.getVec(n)
	defer pool.putVec(y)

	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j, c := range cols {
			design.Set(i, j+1, d.At(i, c))
		}
		y.SetVec(i, d.Target(i))
	}

	var qr mat.QR
	qr.Factorize(design)

	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, search.WrapError(search.ErrScorerFit, "singular design matrix").WithOperation("fitOLS")
	}

	model := &olsModel{
		cols: append([]int(nil), cols...),
		beta: make([]float64, k),
		n:    n,
	}
	for j := 0; j < k; j++ {
		model.beta[j] = beta.AtVec(j)
	}

	for i := 0; i < n; i++ {
		r := d.Target(i) - model.predictRow(d, i)
		model.rss += r * r
	}
	return model, nil
}

// predictRow evaluates the fitted model on row i of any dataset sharing the
// original column layout.
func (m *olsModel) predictRow(d *Dataset, i int) float64 {
	pred := m.beta[0]
	for j, c := range m.cols {
		pred += m.beta[j+1] * d.At(i, c)
	}
	return pred
}

// predict evaluates the fitted model on every row of d.
func (m *olsModel) predict(d *Dataset) []float64 {
	out := make([]float64, d.Rows())
	for i := range out {
		out[i] = m.predictRow(d, i)
	}
	return out
}

// mse returns the mean squared error of predictions against the target of d.
func mse(preds []float64, d *Dataset) float64 {
	sum := 0.0
	for i, p := range preds {
		r := d.Target(i) - p
		sum += r * r
	}
	return sum / float64(len(preds))
}

// HoldoutMSE fits once on train restricted to the selected columns and
// returns the mean squared error on both the training rows and the untouched
// comparison rows. The positive gap between the two quantifies overfitting.
func HoldoutMSE(train, comparison *Dataset, cols []int) (trainMSE, comparisonMSE float64, err error) {
	model, err := fitOLS(train, cols, sharedPool)
	if err != nil {
		return 0, 0, err
	}
	trainMSE = mse(model.predict(train), train)
	comparisonMSE = mse(model.predict(comparison), comparison)
	return trainMSE, comparisonMSE, nil
}

// sharedPool backs one-shot fits that are not tied to a scorer instance.
var sharedPool = newMatrixPool()
