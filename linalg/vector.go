package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Vector stores one block of values per coarse-mesh cell in a single
// contiguous gonum vector. The block stride is the number of values tracked
// per cell: coarse energy groups for flux and source vectors, surfaces times
// groups for the surface-current store.
type Vector struct {
	v       *mat.VecDense
	numRows int
	stride  int
}

func NewVector(numRows, stride int) (v *Vector) {
	if numRows < 1 || stride < 1 {
		panic(fmt.Sprintf("invalid vector dimensions: %d rows, stride %d", numRows, stride))
	}
	v = &Vector{
		v:       mat.NewVecDense(numRows*stride, nil),
		numRows: numRows,
		stride:  stride,
	}
	return
}

func (v *Vector) NumRows() int { return v.numRows }
func (v *Vector) Stride() int  { return v.stride }
func (v *Vector) Len() int     { return v.numRows * v.stride }

// Data exposes the backing slice, laid out row-major by cell.
func (v *Vector) Data() []float64 { return v.v.RawVector().Data }

func (v *Vector) index(row, idx int) int {
	if row < 0 || row >= v.numRows || idx < 0 || idx >= v.stride {
		panic(fmt.Sprintf("vector index out of bounds: row %d, idx %d (rows %d, stride %d)",
			row, idx, v.numRows, v.stride))
	}
	return row*v.stride + idx
}

func (v *Vector) Value(row, idx int) float64 {
	return v.v.AtVec(v.index(row, idx))
}

func (v *Vector) SetValue(row, idx int, val float64) {
	v.v.SetVec(v.index(row, idx), val)
}

func (v *Vector) IncrementValue(row, idx int, val float64) {
	i := v.index(row, idx)
	v.v.SetVec(i, v.v.AtVec(i)+val)
}

// IncrementValues adds vals onto the [start, start+len(vals)) span of a row's
// block. Concurrent callers must hold the row's lock.
func (v *Vector) IncrementValues(row, start int, vals []float64) {
	base := v.index(row, start)
	if start+len(vals) > v.stride {
		panic(fmt.Sprintf("increment span [%d, %d) exceeds stride %d", start, start+len(vals), v.stride))
	}
	data := v.Data()
	for i, val := range vals {
		data[base+i] += val
	}
}

func (v *Vector) SetAll(val float64) {
	data := v.Data()
	for i := range data {
		data[i] = val
	}
}

func (v *Vector) Scale(factor float64) {
	v.v.ScaleVec(factor, v.v)
}

func (v *Vector) Sum() float64 {
	return floats.Sum(v.Data())
}

func (v *Vector) CopyFrom(src *Vector) {
	if v.Len() != src.Len() {
		panic(fmt.Sprintf("vector length mismatch: %d != %d", v.Len(), src.Len()))
	}
	copy(v.Data(), src.Data())
}

func (v *Vector) Clone() (c *Vector) {
	c = NewVector(v.numRows, v.stride)
	c.CopyFrom(v)
	return
}

// RMSE computes the root-mean-square relative difference between two vectors,
// skipping entries where the reference value is zero.
func RMSE(v, ref *Vector) (rmse float64) {
	var (
		sum   float64
		count int
		vd    = v.Data()
		rd    = ref.Data()
	)
	for i := range vd {
		if rd[i] != 0. {
			d := (vd[i] - rd[i]) / rd[i]
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
