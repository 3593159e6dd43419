package cmfd

import (
	"sync"

	"github.com/SenoritaSarker/OpenMOC/utils"
)

// currentBlock is one cell's accumulated partial surface currents, posted
// from the domain that tallied them to the domain that owns the cell.
type currentBlock struct {
	cell     int
	currents []float64
}

// exchangeCurrents reduces the domain-private current tallies onto the
// shared store. Every domain folds in the cells it owns directly and posts
// each halo cell it touched to the owning domain; a barrier separates the
// post/deliver phase from the receive phase, so no cell's total can be read
// before all contributing partial sums have arrived. Matrix assembly only
// starts after this function returns.
func (c *Cmfd) exchangeCurrents() {
	var (
		numCells = c.lattice.NumCells()
		stride   = NumSurfaces * c.groups.NumCoarseGroups()
		mb       = utils.NewMailBox[currentBlock](c.numDomains)
		wg       sync.WaitGroup
	)

	// Post/deliver phase: owned cells go straight into the shared store
	// (ownership partitions the rows, so no two domains collide), halo
	// cells go to their owners' mailboxes.
	for d := 0; d < c.numDomains; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			lo, hi := c.domains.Range(d)
			local := c.domainCurrents[d].Data()
			for cell := 0; cell < numCells; cell++ {
				block := local[cell*stride : (cell+1)*stride]
				if allZero(block) {
					continue
				}
				if cell >= lo && cell < hi {
					c.surfaceCurrents.IncrementValues(cell, 0, block)
				} else {
					mb.Post(d, c.domains.Owner(cell), currentBlock{cell, block})
				}
			}
			mb.Deliver(d)
		}(d)
	}
	wg.Wait()

	// Receive phase: owners accumulate the halo contributions.
	for d := 0; d < c.numDomains; d++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			for _, blk := range mb.Receive(d) {
				c.surfaceCurrents.IncrementValues(blk.cell, 0, blk.currents)
			}
			mb.Clear(d)
		}(d)
	}
	wg.Wait()
}

func allZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}
	return true
}
