package cmfd

import (
	"fmt"
	"sync"
)

// collapseXS condenses the fine-group, region-level cross sections and
// fluxes into coarse-group, coarse-cell quantities. Every fine region
// contributes with weight volume*flux; the condensed cross section is the
// weighted sum divided by the cell's flux-volume (reaction) tally, and the
// cell's old flux is the reaction tally over the cell volume. Cells are
// independent, so the loop fans out one goroutine per domain range.
func (c *Cmfd) collapseXS() error {
	c.tallies.zero()
	var (
		wg   sync.WaitGroup
		errs = make([]error, c.numDomains)
	)
	for d := 0; d < c.numDomains; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			lo, hi := c.domains.Range(d)
			for cell := lo; cell < hi; cell++ {
				if err := c.collapseCell(cell); err != nil {
					errs[d] = err
					return
				}
			}
		}(d)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Cmfd) collapseCell(cell int) error {
	var (
		t   = c.tallies
		gs  = c.groups
		ncg = gs.NumCoarseGroups()
		ng  = c.numMOCGroups
	)
	for _, fsr := range c.cellFSRs[cell] {
		var (
			vol = c.fsrVolumes[fsr]
			mat = c.fsrMaterials[fsr]
		)
		t.volume[cell] += vol

		// Total fission production of this region, the chi condensation weight
		var fsrFission float64
		for h := 0; h < ng; h++ {
			fsrFission += mat.NuSigmaF(h) * c.fsrFluxes[fsr*ng+h] * vol
		}

		for h := 0; h < ng; h++ {
			var (
				e    = gs.CoarseGroup(h)
				flux = c.fsrFluxes[fsr*ng+h]
				wgt  = flux * vol
			)
			t.reaction[cell][e] += wgt
			t.total[cell][e] += mat.SigmaT(h) * wgt
			t.absorption[cell][e] += mat.SigmaA(h) * wgt
			t.nuFission[cell][e] += mat.NuSigmaF(h) * wgt
			t.chi[cell][e] += mat.Chi(h) * fsrFission

			dif := mat.DiffusionCoefficient(h)
			if dif <= 0 && mat.SigmaT(h) > 0 {
				dif = 1. / (3. * mat.SigmaT(h))
			}
			t.diffusion[cell][e] += dif * wgt

			for h2 := 0; h2 < ng; h2++ {
				e2 := gs.CoarseGroup(h2)
				t.scattering[cell][e*ncg+e2] += mat.SigmaS(h, h2) * wgt
			}
		}
	}

	if t.volume[cell] <= 0 {
		return fmt.Errorf("coarse cell %d has zero volume: no fine regions are assigned to it", cell)
	}

	var (
		mat    = c.materials[cell]
		chiSum float64
	)
	for e := 0; e < ncg; e++ {
		chiSum += t.chi[cell][e]
	}
	for e := 0; e < ncg; e++ {
		rxn := t.reaction[cell][e]
		if rxn <= 0 {
			return fmt.Errorf("coarse cell %d has zero flux-volume weight in coarse group %d", cell, e)
		}
		mat.TotalXS[e] = t.total[cell][e] / rxn
		mat.AbsorptionXS[e] = t.absorption[cell][e] / rxn
		mat.NuFissionXS[e] = t.nuFission[cell][e] / rxn
		mat.DifCoef[e] = t.diffusion[cell][e] / rxn
		if chiSum > 0 {
			mat.ChiSpectrum[e] = t.chi[cell][e] / chiSum
		} else {
			mat.ChiSpectrum[e] = 0
		}
		for e2 := 0; e2 < ncg; e2++ {
			mat.SetSigmaS(e, e2, t.scattering[cell][e*ncg+e2]/rxn)
		}
		c.oldFlux.SetValue(cell, e, rxn/t.volume[cell])
	}
	return nil
}
