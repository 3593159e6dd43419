package cmfd

import "github.com/SenoritaSarker/OpenMOC/linalg"

// Segment carries the coarse-mesh bookkeeping attached to one traced track
// segment: the encoded surface tags (cell*NumSurfaces + surface) crossed at
// the segment's forward and backward ends, or -1 when no coarse surface is
// crossed in that direction.
type Segment struct {
	SurfaceFwd int
	SurfaceBwd int
}

// tallies holds the per-cell, per-coarse-group accumulators populated during
// cross-section collapsing. All slices are carved from a single arena that is
// allocated once and cleared, not reallocated, each cycle.
type tallies struct {
	memory     []float64
	volume     []float64   // [cell]
	reaction   [][]float64 // [cell][g], flux-volume weight
	total      [][]float64
	absorption [][]float64
	nuFission  [][]float64
	diffusion  [][]float64
	chi        [][]float64
	scattering [][]float64 // [cell][from*ncg + to]
}

func newTallies(numCells, ncg int) (t *tallies) {
	perCell := 1 + 6*ncg + ncg*ncg
	t = &tallies{
		memory:     make([]float64, numCells*perCell),
		volume:     make([]float64, 0, numCells),
		reaction:   make([][]float64, numCells),
		total:      make([][]float64, numCells),
		absorption: make([][]float64, numCells),
		nuFission:  make([][]float64, numCells),
		diffusion:  make([][]float64, numCells),
		chi:        make([][]float64, numCells),
		scattering: make([][]float64, numCells),
	}
	// The single-value volume tallies occupy the head of the arena so the
	// per-group slices stay aligned per cell
	t.volume = t.memory[:numCells:numCells]
	offset := numCells
	carve := func(n int) []float64 {
		s := t.memory[offset : offset+n : offset+n]
		offset += n
		return s
	}
	for i := 0; i < numCells; i++ {
		t.reaction[i] = carve(ncg)
		t.total[i] = carve(ncg)
		t.absorption[i] = carve(ncg)
		t.nuFission[i] = carve(ncg)
		t.diffusion[i] = carve(ncg)
		t.chi[i] = carve(ncg)
		t.scattering[i] = carve(ncg * ncg)
	}
	return
}

func (t *tallies) zero() {
	for i := range t.memory {
		t.memory[i] = 0
	}
}

// TallyCurrent adds one segment's weighted, group-condensed partial current
// onto the coarse surface it crosses. For 3D solves the contribution per
// fine group is flux*weight for the track's angle; 2D-analytic solves carry
// the full polar half-space in the track flux and sum it with the per-polar
// weights. Safe for concurrent use by transport ray threads; mutation of a
// cell's current block is serialized by that cell's lock.
func (c *Cmfd) TallyCurrent(seg *Segment, trackFlux []float64, azim, polar int, fwd bool) {
	c.tallyCurrentTo(c.surfaceCurrents, seg, trackFlux, azim, polar, fwd)
}

// TallyCurrentLocal tallies into a domain-private current store. Domains
// accumulate partial sums for every cell their rays touch, including halo
// cells they do not own; ExchangeCurrents reduces the partial sums onto the
// owning domains before matrix assembly.
func (c *Cmfd) TallyCurrentLocal(domain int, seg *Segment, trackFlux []float64, azim, polar int, fwd bool) {
	c.tallyCurrentTo(c.domainCurrents[domain], seg, trackFlux, azim, polar, fwd)
}

func (c *Cmfd) tallyCurrentTo(store *linalg.Vector, seg *Segment, trackFlux []float64, azim, polar int, fwd bool) {
	tag := seg.SurfaceBwd
	if fwd {
		tag = seg.SurfaceFwd
	}
	if tag == -1 {
		return
	}
	var (
		cell     = tag / NumSurfaces
		surf     = tag % NumSurfaces
		ncg      = c.groups.NumCoarseGroups()
		currents = make([]float64, ncg)
	)
	if c.solve3D {
		wgt := c.quad.Weight(azim, polar)
		for e := 0; e < c.numMOCGroups; e++ {
			currents[c.groups.CoarseGroup(e)] += trackFlux[e] * wgt
		}
	} else {
		// 2D track fluxes are laid out group-major with the polar angles of
		// the upward half-space innermost; each carries the same combined
		// azimuthal-polar weight the 3D path uses
		var (
			halfPolar = c.quad.NumPolar() / 2
			pe        = 0
		)
		for e := 0; e < c.numMOCGroups; e++ {
			cg := c.groups.CoarseGroup(e)
			for p := 0; p < halfPolar; p++ {
				currents[cg] += trackFlux[pe] * c.quad.Weight(azim, p)
				pe++
			}
		}
	}
	c.cellLocks[cell].Lock()
	store.IncrementValues(cell, surf*ncg, currents)
	c.cellLocks[cell].Unlock()
}

// ZeroCurrents clears the surface-current store (and the domain-private
// stores in distributed mode) ahead of the next transport sweep. Buffers are
// reused, never reallocated.
func (c *Cmfd) ZeroCurrents() {
	c.surfaceCurrents.SetAll(0)
	for _, store := range c.domainCurrents {
		store.SetAll(0)
	}
}

// splitEdgeCurrents apportions every edge surface's tallied current onto the
// two faces sharing the edge, weighted by face area, then zeroes the edge.
// Must run after the distributed reduction and before collapse.
func (c *Cmfd) splitEdgeCurrents() {
	ncg := c.groups.NumCoarseGroups()
	for cell := 0; cell < c.lattice.NumCells(); cell++ {
		for e := 0; e < NumEdges; e++ {
			surf := edgeSurfaceBase + e
			c.splitSurfaceCurrents(cell, surf, edgeFaces[e][:], ncg)
		}
	}
}

// splitVertexCurrents does the same for vertex surfaces and their three
// adjoining faces.
func (c *Cmfd) splitVertexCurrents() {
	ncg := c.groups.NumCoarseGroups()
	for cell := 0; cell < c.lattice.NumCells(); cell++ {
		for v := 0; v < NumVertices; v++ {
			surf := vertexSurfaceBase + v
			c.splitSurfaceCurrents(cell, surf, vertexFaces[v][:], ncg)
		}
	}
}

func (c *Cmfd) splitSurfaceCurrents(cell, surf int, faces []int, ncg int) {
	var areaSum float64
	for _, f := range faces {
		areaSum += c.lattice.SurfaceArea(f)
	}
	for g := 0; g < ncg; g++ {
		val := c.surfaceCurrents.Value(cell, surf*ncg+g)
		if val == 0 {
			continue
		}
		for _, f := range faces {
			weight := c.lattice.SurfaceArea(f) / areaSum
			c.surfaceCurrents.IncrementValue(cell, f*ncg+g, val*weight)
		}
		c.surfaceCurrents.SetValue(cell, surf*ncg+g, 0)
	}
}
