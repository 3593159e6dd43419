package cmfd

import (
	"log"
	"math"
	"sort"
	"sync"

	"github.com/SenoritaSarker/OpenMOC/linalg"
	"github.com/SenoritaSarker/OpenMOC/utils"
)

// Old fluxes below this magnitude are treated as degenerate and get the
// neutral ratio instead of a division.
const zeroFluxGuard = 1e-12

type stencilEntry struct {
	cell     int
	distance float64
}

// generateKNearestStencils builds, for every flat source region, the list of
// the k coarse cells whose centroids lie nearest the region's centroid,
// sorted ascending by distance with cell id as the tie-break. The stencils
// depend only on geometry, so they are built once at Initialize and reused
// every cycle.
func (c *Cmfd) generateKNearestStencils() {
	var (
		numCells = c.lattice.NumCells()
		k        = c.kNearest
	)
	if k > numCells {
		k = numCells
	}
	c.stencils = make([][]stencilEntry, c.numFSRs)
	entries := make([]stencilEntry, numCells)
	for fsr := 0; fsr < c.numFSRs; fsr++ {
		p := c.fsrCentroids[fsr]
		for cell := 0; cell < numCells; cell++ {
			var (
				cent = c.lattice.Centroid(cell)
				dx   = p.X - cent.X
				dy   = p.Y - cent.Y
				dz   = p.Z - cent.Z
			)
			entries[cell] = stencilEntry{cell, math.Sqrt(dx*dx + dy*dy + dz*dz)}
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].distance != entries[j].distance {
				return entries[i].distance < entries[j].distance
			}
			return entries[i].cell < entries[j].cell
		})
		c.stencils[fsr] = append([]stencilEntry(nil), entries[:k]...)
	}
}

// rescaleFlux renormalizes the coarse fluxes before and after the solve to a
// common total fission source, so the update ratios carry only the shape
// change and the total neutron population of the fine mesh is preserved.
func (c *Cmfd) rescaleFlux() {
	var (
		n      = float64(c.prodMatrix.NumRows())
		source = linalg.NewVector(c.newFlux.NumRows(), c.newFlux.Stride())
	)
	c.prodMatrix.MulVec(c.newFlux, source)
	if sum := source.Sum(); sum > 0 {
		c.newFlux.Scale(n / sum)
	}
	c.prodMatrix.MulVec(c.oldFlux, source)
	if sum := source.Sum(); sum > 0 {
		c.oldFlux.Scale(n / sum)
	}
}

// computeFluxRatios fills fluxRatio = newFlux / oldFlux per cell and coarse
// group. Near-zero old fluxes take the neutral ratio 1 so a degenerate cell
// cannot poison the fine-mesh update; the substitution is logged.
func (c *Cmfd) computeFluxRatios() {
	var (
		ncg     = c.groups.NumCoarseGroups()
		guarded = 0
	)
	for cell := 0; cell < c.lattice.NumCells(); cell++ {
		for e := 0; e < ncg; e++ {
			old := c.oldFlux.Value(cell, e)
			if math.Abs(old) < zeroFluxGuard {
				c.fluxRatio.SetValue(cell, e, 1)
				guarded++
				continue
			}
			c.fluxRatio.SetValue(cell, e, c.newFlux.Value(cell, e)/old)
		}
	}
	if guarded > 0 {
		log.Printf("CMFD flux update: substituted the neutral ratio for %d near-zero coarse fluxes", guarded)
	}
}

// updateRatio is the multiplicative correction for one fine region in one
// MOC group. With centroid updating the ratio is interpolated from the
// region's k-nearest stencil with inverse-distance weights normalized to
// one; otherwise the containing cell's ratio is used directly.
func (c *Cmfd) updateRatio(cell, mocGroup, fsr int) float64 {
	e := c.groups.CoarseGroup(mocGroup)
	if !c.centroidUpdateOn {
		return c.fluxRatio.Value(cell, e)
	}
	var (
		stencil   = c.stencils[fsr]
		weightSum float64
	)
	for _, s := range stencil {
		if s.distance < zeroFluxGuard {
			// Coincident with a cell centroid: that cell's ratio outright
			return c.fluxRatio.Value(s.cell, e)
		}
		weightSum += 1. / s.distance
	}
	var ratio float64
	for _, s := range stencil {
		ratio += (1. / s.distance) / weightSum * c.fluxRatio.Value(s.cell, e)
	}
	return ratio
}

// updateMOCFlux prolongs the coarse flux change back onto the fine mesh,
// rescaling every region's scalar flux (and flux moments, when tracked) by
// its update ratio. The coarse-group ratio applies uniformly to every fine
// group condensed into it. Regions are independent; the loop fans out one
// goroutine per contiguous FSR range.
func (c *Cmfd) updateMOCFlux() {
	c.computeFluxRatios()
	var (
		ng = c.numMOCGroups
		dm = utils.NewDomainMap(c.numDomains, c.numFSRs)
		wg sync.WaitGroup
	)
	for d := 0; d < c.numDomains; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			lo, hi := dm.Range(d)
			for fsr := lo; fsr < hi; fsr++ {
				cell := c.ConvertFSRIdToCmfdCell(fsr)
				if cell < 0 {
					continue
				}
				for h := 0; h < ng; h++ {
					ratio := c.updateRatio(cell, h, fsr)
					c.fsrFluxes[fsr*ng+h] *= ratio
					if c.fluxMoments != nil {
						for axis := 0; axis < 3; axis++ {
							c.fluxMoments[(fsr*3+axis)*ng+h] *= ratio
						}
					}
				}
			}
		}(d)
	}
	wg.Wait()
}
