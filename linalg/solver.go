package linalg

import (
	"fmt"
	"math"
)

const (
	// Iteration caps. Exhausting either one is a structural failure of the
	// solve, surfaced as an error rather than a partial result.
	MaxLinearIterations = 10000
	MaxPowerIterations  = 25000

	// Minimum power iterations before convergence may be declared, so a
	// lucky initial guess cannot terminate the solve with a stale source.
	minPowerIterations = 25
)

// LinearSolve solves A*x = b in place with Gauss-Seidel iteration under SOR
// relaxation. Rows are swept in ascending order, which for the cell-major
// unknown ordering is the fixed lexicographic (x, y, z) cell order required
// for run-to-run reproducibility.
func LinearSolve(A *Matrix, x, b *Vector, tol, sorFactor float64) error {
	var (
		xd       = x.Data()
		bd       = b.Data()
		xOld     = x.Clone()
		residual float64
	)
	for iter := 0; iter < MaxLinearIterations; iter++ {
		xOld.CopyFrom(x)
		for row := 0; row < A.NumRows(); row++ {
			diag, offDiag := A.rowSolveTerms(row, xd)
			if diag == 0. {
				return fmt.Errorf("zero diagonal in row %d of the loss matrix", row)
			}
			xd[row] = (1.-sorFactor)*xd[row] + sorFactor*(bd[row]-offDiag)/diag
		}
		residual = RMSE(x, xOld)
		if residual < tol {
			return nil
		}
	}
	return fmt.Errorf("linear solve failed to converge in %d iterations (residual %.3e, tolerance %.3e)",
		MaxLinearIterations, residual, tol)
}

// EigenvalueSolve finds the dominant eigenpair of the generalized problem
// A*x = (1/k) M*x by power iteration. Each outer iteration solves the linear
// system for the flux given the previous fission source, recomputes the
// source, and updates k by the ratio of successive source totals. The flux
// vector doubles as the initial guess and the converged eigenvector.
func EigenvalueSolve(A, M *Matrix, flux *Vector, tol, sorFactor float64) (keff float64, err error) {
	var (
		n         = A.NumRows()
		oldSource = NewVector(flux.NumRows(), flux.Stride())
		newSource = NewVector(flux.NumRows(), flux.Stride())
		rhs       = NewVector(flux.NumRows(), flux.Stride())
		linTol    = math.Max(0.1*tol, 1e-12)
	)
	if M.NumRows() != n || flux.Len() != n {
		return 0, fmt.Errorf("dimension mismatch: A %d, M %d, flux %d", n, M.NumRows(), flux.Len())
	}

	// Normalize the initial flux so the starting fission source sums to the
	// number of unknowns
	M.MulVec(flux, oldSource)
	sumOld := oldSource.Sum()
	if sumOld <= 0. {
		return 0, fmt.Errorf("initial fission source is nonpositive (%.3e)", sumOld)
	}
	scale := float64(n) / sumOld
	oldSource.Scale(scale)
	flux.Scale(scale)
	sumOld = float64(n)

	keff = 1.0
	for iter := 0; iter < MaxPowerIterations; iter++ {
		// Solve A*flux = (1/k) M*flux_old
		rhs.CopyFrom(oldSource)
		rhs.Scale(1. / keff)
		if err = LinearSolve(A, flux, rhs, linTol, sorFactor); err != nil {
			return 0, fmt.Errorf("power iteration %d: %w", iter, err)
		}

		// Recompute the fission source and update k with the ratio of
		// successive source totals
		M.MulVec(flux, newSource)
		sumNew := newSource.Sum()
		if sumNew <= 0. {
			return 0, fmt.Errorf("power iteration %d: fission source driven nonpositive", iter)
		}
		keffNew := keff * sumNew / sumOld

		// Renormalize so the source comparison is scale-free
		newSource.Scale(float64(n) / sumNew)
		residual := RMSE(newSource, oldSource)
		kDelta := math.Abs(keffNew - keff)
		keff = keffNew
		oldSource.CopyFrom(newSource)

		if iter >= minPowerIterations && residual < tol && kDelta < tol {
			return keff, nil
		}
	}
	return 0, fmt.Errorf("eigenvalue solve failed to converge in %d power iterations", MaxPowerIterations)
}
