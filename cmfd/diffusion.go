package cmfd

import "math"

// diffusionCoefficient is the cell's collapsed diffusion coefficient for a
// coarse group.
func (c *Cmfd) diffusionCoefficient(cell, group int) float64 {
	return c.materials[cell].DifCoef[group]
}

// larsenEDCFactor is Larsen's effective diffusion coefficient correction
// factor for a cell of optical width delta. It damps the finite-difference
// coupling as cells grow optically thick, which keeps the corrected surface
// coefficients from going negative. Without a polar quadrature the factor
// degenerates to 1 (pure finite-difference coupling).
func (c *Cmfd) larsenEDCFactor(difCoef, delta float64) float64 {
	if c.quad == nil {
		return 1.0
	}
	var rho float64
	for p := 0; p < c.quad.NumPolar()/2; p++ {
		var (
			mu    = math.Cos(math.Asin(c.quad.SinTheta(0, p)))
			expon = math.Exp(-delta / (3 * difCoef * mu))
			alpha = (1+expon)/(1-expon) - 2*(3*difCoef*mu)/delta
		)
		rho += 2.0 * mu * c.quad.PolarWeight(0, p) * alpha
	}
	return 1.0 + delta*rho/(2*difCoef)
}

// surfaceDiffusionCoefficients computes, for one face of one cell in one
// coarse group, the finite-difference surface diffusion coefficient difSurf
// and the nonlinear correction difSurfCorr that forces the diffusion-solve
// surface current to reproduce the transport-tallied net current. On the
// first transport iteration there is no meaningful tally yet and the
// correction is forced to zero, reducing the solve to plain diffusion.
func (c *Cmfd) surfaceDiffusionCoefficients(cell, face, group, mocIteration int) (difSurf, difSurfCorr float64) {
	var (
		ncg      = c.groups.NumCoarseGroups()
		difCoef  = c.diffusionCoefficient(cell, group)
		flux     = c.oldFlux.Value(cell, group)
		cellNext = c.lattice.CellNext(cell, face)
		area     = c.lattice.SurfaceArea(face)
		delta    = c.lattice.PerpendicularWidth(face)
		sense    = surfaceSense(face)
	)
	difCoef *= c.larsenEDCFactor(difCoef, delta)

	if cellNext == -1 {
		// Domain boundary
		currentOut := sense * c.surfaceCurrents.Value(cell, face*ncg+group)
		switch c.lattice.Boundaries[face] {
		case Reflective:
			return 0, 0
		case Vacuum:
			currentOut /= area
			difSurf = 2 * difCoef / delta / (1 + 4*difCoef/delta)
			difSurfCorr = (sense*difSurf*flux - currentOut) / flux
		}
	} else {
		// Interface between two cells: width-weighted harmonic mean coupling
		var (
			faceNext    = oppositeFace(face)
			currentOut  = c.surfaceCurrents.Value(cell, face*ncg+group)
			currentIn   = c.surfaceCurrents.Value(cellNext, faceNext*ncg+group)
			difCoefNext = c.diffusionCoefficient(cellNext, group)
			fluxNext    = c.oldFlux.Value(cellNext, group)
		)
		difCoefNext *= c.larsenEDCFactor(difCoefNext, delta)
		difSurf = 2 * difCoef * difCoefNext / (delta*difCoef + delta*difCoefNext)

		// Surface-averaged net current, positive along the outward normal
		current := sense * (currentOut - currentIn) / area
		difSurfCorr = -(sense*difSurf*(fluxNext-flux) + current) / (fluxNext + flux)
	}

	if mocIteration == 0 {
		difSurfCorr = 0
	}
	return
}
