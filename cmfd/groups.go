package cmfd

import "fmt"

// GroupStructure is the surjective map from fine (MOC) energy groups onto
// coarse (CMFD) groups. Coarse groups are contiguous, start at zero, and
// each collapses a contiguous run of fine groups.
type GroupStructure struct {
	numFine   int
	numCoarse int
	toCoarse  []int   // fine group -> coarse group
	fine      [][]int // coarse group -> fine groups, ascending
}

// NewIdentityGroupStructure maps every fine group onto a coarse group of its
// own, the default when no condensation is requested.
func NewIdentityGroupStructure(numFine int) (gs *GroupStructure, err error) {
	if numFine < 1 {
		return nil, fmt.Errorf("invalid group count %d", numFine)
	}
	ranges := make([][]int, numFine)
	for g := range ranges {
		ranges[g] = []int{g}
	}
	return NewGroupStructure(numFine, ranges)
}

// NewGroupStructure builds a condensation map from an explicit list of fine
// groups per coarse group. The lists must cover every fine group exactly
// once, in ascending contiguous order.
func NewGroupStructure(numFine int, fineGroups [][]int) (gs *GroupStructure, err error) {
	if numFine < 1 {
		return nil, fmt.Errorf("invalid group count %d", numFine)
	}
	if len(fineGroups) < 1 {
		return nil, fmt.Errorf("group structure defines no coarse groups")
	}
	gs = &GroupStructure{
		numFine:   numFine,
		numCoarse: len(fineGroups),
		toCoarse:  make([]int, numFine),
		fine:      make([][]int, len(fineGroups)),
	}
	next := 0
	for cg, fineList := range fineGroups {
		if len(fineList) == 0 {
			return nil, fmt.Errorf("coarse group %d collapses no fine groups", cg)
		}
		for _, fg := range fineList {
			if fg != next {
				return nil, fmt.Errorf("group structure is not contiguous: expected fine group %d in coarse group %d, got %d",
					next, cg, fg)
			}
			gs.toCoarse[fg] = cg
			next++
		}
		gs.fine[cg] = append([]int(nil), fineList...)
	}
	if next != numFine {
		return nil, fmt.Errorf("group structure covers %d of %d fine groups", next, numFine)
	}
	return gs, nil
}

func (gs *GroupStructure) NumFineGroups() int   { return gs.numFine }
func (gs *GroupStructure) NumCoarseGroups() int { return gs.numCoarse }

// CoarseGroup returns the coarse group a fine group condenses into.
func (gs *GroupStructure) CoarseGroup(fine int) int {
	return gs.toCoarse[fine]
}

// FineGroups returns the fine groups collapsed into a coarse group.
func (gs *GroupStructure) FineGroups(coarse int) []int {
	return gs.fine[coarse]
}
