package cmfd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExchangeCurrentsMatchesSerial tallies the same set of segments once
// through the shared store and once through domain-private stores followed by
// the reduction, and requires identical totals.
func TestExchangeCurrentsMatchesSerial(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	build := func(numDomains int) *Cmfd {
		c := NewCmfd()
		c.SetLatticeStructure(2, 2, 1)
		c.SetWidthX(10)
		c.SetWidthY(10)
		c.SetWidthZ(10)
		for face := 0; face < NumFaces; face++ {
			require.NoError(t, c.SetBoundary(face, Reflective))
		}
		c.SetNumMOCGroups(1)
		require.NoError(t, c.SetNumDomains(numDomains))
		c.SetSolve3D(true)
		c.SetQuadrature(NewEqualWeightQuadrature(4, 2))
		numCells := 4
		vols := make([]float64, numCells)
		mats := make([]Material, numCells)
		fluxes := make([]float64, numCells)
		cents := make([]Point, numCells)
		for cell := 0; cell < numCells; cell++ {
			vols[cell] = 250
			mats[cell] = mat
			fluxes[cell] = 1
		}
		c.SetNumFSRs(numCells)
		c.SetFSRVolumes(vols)
		c.SetFSRMaterials(mats)
		c.SetFSRFluxes(fluxes)
		c.SetFSRCentroids(cents)
		require.NoError(t, c.Initialize())
		return c
	}

	var (
		serial      = build(1)
		distributed = build(2)
	)

	// Segments touching every cell, including cells outside the tallying
	// domain's ownership range (the halo case the reduction exists for)
	segments := []struct {
		domain int
		seg    Segment
		flux   float64
	}{
		{0, Segment{SurfaceFwd: 0*NumSurfaces + SurfaceXMax, SurfaceBwd: -1}, 1.0},
		{0, Segment{SurfaceFwd: 3*NumSurfaces + SurfaceYMin, SurfaceBwd: -1}, 2.0},
		{1, Segment{SurfaceFwd: 0*NumSurfaces + SurfaceXMax, SurfaceBwd: -1}, 4.0},
		{1, Segment{SurfaceFwd: 2*NumSurfaces + edgeSurfaceBase, SurfaceBwd: -1}, 8.0},
		{1, Segment{SurfaceFwd: -1, SurfaceBwd: 1*NumSurfaces + SurfaceZMax}, 16.0},
	}
	for _, s := range segments {
		seg := s.seg
		serial.TallyCurrent(&seg, []float64{s.flux}, 0, 0, seg.SurfaceFwd != -1)
		distributed.TallyCurrentLocal(s.domain, &seg, []float64{s.flux}, 0, 0, seg.SurfaceFwd != -1)
	}

	distributed.exchangeCurrents()

	var (
		want = serial.surfaceCurrents.Data()
		got  = distributed.surfaceCurrents.Data()
	)
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-14, "current index %d", i)
	}
}
