package cmfd

// constructMatrices rebuilds the destruction (loss) matrix A and the
// production matrix M from the collapsed cross sections, tallied cell
// volumes, and corrected surface diffusion coefficients. Both matrices are
// assembled from scratch every cycle; no entry survives from the previous
// one. No matrix row for a boundary-adjacent cell may be assembled before
// the distributed current reduction has completed, which ComputeKeff
// guarantees by ordering the phases.
func (c *Cmfd) constructMatrices(mocIteration int) {
	c.lossMatrix.Clear()
	c.prodMatrix.Clear()
	ncg := c.groups.NumCoarseGroups()
	for cell := 0; cell < c.lattice.NumCells(); cell++ {
		var (
			mat    = c.materials[cell]
			volume = c.tallies.volume[cell]
		)
		for e := 0; e < ncg; e++ {
			// Total collision term
			c.lossMatrix.IncrementValue(cell, e, cell, e, mat.SigmaT(e)*volume)

			// Scattering gain from every in-cell group; the within-group
			// entry cancels the scattering part of the total term, leaving
			// removal on the diagonal
			for g := 0; g < ncg; g++ {
				c.lossMatrix.IncrementValue(cell, g, cell, e, -mat.SigmaS(g, e)*volume)
			}

			// Streaming across each face with the corrected coupling. In 2D
			// solves the z boundaries are reflective, so the z faces
			// contribute nothing.
			for face := 0; face < NumFaces; face++ {
				var (
					sense            = surfaceSense(face)
					area             = c.lattice.SurfaceArea(face)
					difSurf, difCorr = c.surfaceDiffusionCoefficients(cell, face, e, mocIteration)
					neighbor         = c.lattice.CellNext(cell, face)
				)
				c.lossMatrix.IncrementValue(cell, e, cell, e, (difSurf-sense*difCorr)*area)
				if neighbor != -1 {
					c.lossMatrix.IncrementValue(neighbor, e, cell, e, -(difSurf+sense*difCorr)*area)
				}
			}

			// Fission production couples every in-cell group into e
			for g := 0; g < ncg; g++ {
				c.prodMatrix.IncrementValue(cell, g, cell, e,
					mat.Chi(e)*mat.NuSigmaF(g)*volume)
			}
		}
	}
	c.lossMatrix.Finalize()
	c.prodMatrix.Finalize()
}
