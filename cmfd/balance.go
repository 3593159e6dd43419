package cmfd

import (
	"math"

	"github.com/SenoritaSarker/OpenMOC/linalg"
)

// CheckNeutronBalance recomputes global production and destruction from the
// converged coarse flux and the assembled operators and returns the relative
// imbalance |production/k - destruction| / (production/k). A converged,
// correctly assembled system balances to numerical tolerance; a mismatch
// points at an assembly or correction bug. The check never fails the solve,
// it is a regression monitor.
func (c *Cmfd) CheckNeutronBalance() float64 {
	var (
		work        = linalg.NewVector(c.newFlux.NumRows(), c.newFlux.Stride())
		production  float64
		destruction float64
	)
	c.prodMatrix.MulVec(c.newFlux, work)
	production = work.Sum() / c.keff
	c.lossMatrix.MulVec(c.newFlux, work)
	destruction = work.Sum()
	if production == 0 {
		return math.Inf(1)
	}
	return math.Abs(production-destruction) / production
}
