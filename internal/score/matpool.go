package score

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// matrixPool recycles dense matrices and vectors across OLS fits. Scorer
// evaluations run concurrently, so the pool is backed by sync.Pool rather
// than a free list.
type matrixPool struct {
	dense sync.Pool
	vec   sync.Pool
}

func newMatrixPool() *matrixPool {
	return &matrixPool{
		dense: sync.Pool{New: func() interface{} { return &mat.Dense{} }},
		vec:   sync.Pool{New: func() interface{} { return &mat.VecDense{} }},
	}
}

// getDense returns an r×c zeroed matrix from the pool.
func (p *matrixPool) getDense(r, c int) *mat.Dense {
	m := p.dense.Get().(*mat.Dense)
	m.Reset()
	m.ReuseAs(r, c)
	return m
}

// putDense returns a matrix to the pool.
func (p *matrixPool) putDense(m *mat.Dense) {
	p.dense.Put(m)
}

// getVec returns a length-n zeroed vector from the pool.
func (p *matrixPool) getVec(n int) *mat.VecDense {
	v := p.vec.Get().(*mat.VecDense)
	v.Reset()
	v.ReuseAsVec(n)
	return v
}

// putVec returns a vector to the pool.
func (p *matrixPool) putVec(v *mat.VecDense) {
	p.vec.Put(v)
}
