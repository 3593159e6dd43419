package linalg

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Matrix is the stencil-sparse square matrix used for the CMFD loss and
// production operators. Unknowns are ordered cell-major: the row for coarse
// group g of cell c is c*stride + g, so a lexicographic sweep over rows is a
// lexicographic sweep over cells. Entries are accumulated into a DOK during
// assembly and converted to CSR for the solve; both operators are rebuilt
// from scratch each acceleration cycle via Clear.
type Matrix struct {
	dok     *sparse.DOK
	csr     *sparse.CSR
	numRows int
	stride  int
}

func NewMatrix(numCells, stride int) (m *Matrix) {
	if numCells < 1 || stride < 1 {
		panic(fmt.Sprintf("invalid matrix dimensions: %d cells, stride %d", numCells, stride))
	}
	n := numCells * stride
	m = &Matrix{
		dok:     sparse.NewDOK(n, n),
		numRows: n,
		stride:  stride,
	}
	return
}

func (m *Matrix) NumRows() int { return m.numRows }

// Clear discards all entries. Assembly always starts from an empty matrix;
// stale coefficients from the previous cycle must never survive.
func (m *Matrix) Clear() {
	m.dok = sparse.NewDOK(m.numRows, m.numRows)
	m.csr = nil
}

// IncrementValue adds val to the entry coupling the source unknown
// (cellFrom, idxFrom) into the destination equation (cellTo, idxTo).
func (m *Matrix) IncrementValue(cellFrom, idxFrom, cellTo, idxTo int, val float64) {
	var (
		row = cellTo*m.stride + idxTo
		col = cellFrom*m.stride + idxFrom
	)
	if row < 0 || row >= m.numRows || col < 0 || col >= m.numRows {
		panic(fmt.Sprintf("matrix index out of bounds: row %d, col %d (n %d)", row, col, m.numRows))
	}
	m.dok.Set(row, col, m.dok.At(row, col)+val)
}

func (m *Matrix) Value(row, col int) float64 {
	if m.csr != nil {
		return m.csr.At(row, col)
	}
	return m.dok.At(row, col)
}

// Finalize converts the assembled entries to CSR form for the solve phase.
func (m *Matrix) Finalize() {
	m.csr = m.dok.ToCSR()
}

// MulVec computes out = m * x over the finalized CSR storage.
func (m *Matrix) MulVec(x, out *Vector) {
	if m.csr == nil {
		panic("matrix not finalized")
	}
	if x.Len() != m.numRows || out.Len() != m.numRows {
		panic(fmt.Sprintf("dimension mismatch: matrix %d, x %d, out %d", m.numRows, x.Len(), out.Len()))
	}
	var (
		raw  = m.csr.RawMatrix()
		xd   = x.Data()
		outd = out.Data()
	)
	for i := 0; i < m.numRows; i++ {
		var sum float64
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			sum += raw.Data[k] * xd[raw.Ind[k]]
		}
		outd[i] = sum
	}
}

// rowSolveTerms returns the diagonal entry of a row and the off-diagonal dot
// product with x, used by the Gauss-Seidel sweep.
func (m *Matrix) rowSolveTerms(row int, x []float64) (diag, offDiag float64) {
	raw := m.csr.RawMatrix()
	for k := raw.Indptr[row]; k < raw.Indptr[row+1]; k++ {
		if raw.Ind[k] == row {
			diag = raw.Data[k]
		} else {
			offDiag += raw.Data[k] * x[raw.Ind[k]]
		}
	}
	return
}
