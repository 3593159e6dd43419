package cmfd

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reflectiveBox() [NumFaces]BoundaryType {
	return [NumFaces]BoundaryType{
		Reflective, Reflective, Reflective, Reflective, Reflective, Reflective,
	}
}

func TestTallyCurrent3D(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	c := buildUniformEngine(t, 2, 2, 1, 10, 10, 10, reflectiveBox(), mat)
	c.SetSolve3D(true)
	c.SetQuadrature(NewEqualWeightQuadrature(4, 2))

	seg := &Segment{
		SurfaceFwd: 1*NumSurfaces + SurfaceXMax,
		SurfaceBwd: -1,
	}
	c.TallyCurrent(seg, []float64{2.0}, 0, 0, true)

	// weight = (1/4)*(1/2), current = flux * weight
	assert.InDelta(t, 2.0*0.125, c.surfaceCurrents.Value(1, SurfaceXMax), 1e-14)

	// The backward end carries no crossing, so the reverse tally is a no-op
	c.TallyCurrent(seg, []float64{2.0}, 0, 0, false)
	assert.InDelta(t, 2.0*0.125, c.surfaceCurrents.Value(1, SurfaceXMax), 1e-14)

	c.ZeroCurrents()
	assert.Zero(t, c.surfaceCurrents.Sum())
}

func TestTallyCurrentConcurrent(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	c := buildUniformEngine(t, 2, 2, 1, 10, 10, 10, reflectiveBox(), mat)
	c.SetSolve3D(true)
	c.SetQuadrature(NewEqualWeightQuadrature(4, 2))

	// Many rays hammering the same surface must accumulate additively
	const (
		numThreads = 8
		perThread  = 200
	)
	seg := &Segment{SurfaceFwd: 0*NumSurfaces + SurfaceYMin, SurfaceBwd: -1}
	var wg sync.WaitGroup
	for i := 0; i < numThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perThread; j++ {
				c.TallyCurrent(seg, []float64{1.0}, 0, 0, true)
			}
		}()
	}
	wg.Wait()
	assert.InDelta(t, numThreads*perThread*0.125,
		c.surfaceCurrents.Value(0, SurfaceYMin), 1e-9)
}

func TestTallyCurrent2D(t *testing.T) {
	mat := NewXSMaterial(2)
	mat.TotalXS = []float64{0.2, 0.3}
	mat.AbsorptionXS = []float64{0.2, 0.3}
	mat.NuFissionXS = []float64{0.1, 0.2}
	mat.ChiSpectrum = []float64{1, 0}
	mat.DifCoef = []float64{1, 1}
	c := buildUniformEngine(t, 2, 1, 1, 10, 10, 10, reflectiveBox(), mat)
	c.SetSolve3D(false)
	c.SetQuadrature(NewEqualWeightQuadrature(4, 4))

	// 2D track fluxes are group-major with the two upward polar angles
	// innermost; each polar contribution carries the combined
	// azimuthal-polar weight (1/4 * 1/4), same as a 3D tally would
	seg := &Segment{SurfaceFwd: 0*NumSurfaces + SurfaceXMax, SurfaceBwd: -1}
	trackFlux := []float64{1.0, 3.0, 5.0, 7.0}
	c.TallyCurrent(seg, trackFlux, 0, 0, true)

	ncg := c.NumCoarseGroups()
	require.Equal(t, 2, ncg)
	wgt := c.quad.Weight(0, 0)
	require.InDelta(t, 0.0625, wgt, 1e-14)
	assert.InDelta(t, (1.0+3.0)*wgt, c.surfaceCurrents.Value(0, SurfaceXMax*ncg+0), 1e-14)
	assert.InDelta(t, (5.0+7.0)*wgt, c.surfaceCurrents.Value(0, SurfaceXMax*ncg+1), 1e-14)
}

func TestTally2DMatches3DWeighting(t *testing.T) {
	// The 2D path condenses the polar half-space with the same combined
	// azimuthal-polar weights the 3D path applies angle by angle, so tallying
	// the upward fluxes either way must produce the same current
	mat := NewXSMaterial(2)
	mat.TotalXS = []float64{0.2, 0.3}
	mat.AbsorptionXS = []float64{0.2, 0.3}
	mat.NuFissionXS = []float64{0.1, 0.2}
	mat.ChiSpectrum = []float64{1, 0}
	mat.DifCoef = []float64{1, 1}
	c := buildUniformEngine(t, 2, 1, 1, 10, 10, 10, reflectiveBox(), mat)
	c.SetQuadrature(NewEqualWeightQuadrature(4, 4))

	var (
		seg       = &Segment{SurfaceFwd: 0*NumSurfaces + SurfaceXMax, SurfaceBwd: -1}
		trackFlux = []float64{1.0, 3.0, 5.0, 7.0} // group-major, polar innermost
		ncg       = c.NumCoarseGroups()
	)
	c.SetSolve3D(false)
	c.TallyCurrent(seg, trackFlux, 0, 0, true)
	var (
		from2D0 = c.surfaceCurrents.Value(0, SurfaceXMax*ncg+0)
		from2D1 = c.surfaceCurrents.Value(0, SurfaceXMax*ncg+1)
	)

	c.ZeroCurrents()
	c.SetSolve3D(true)
	for p := 0; p < 2; p++ {
		c.TallyCurrent(seg, []float64{trackFlux[p], trackFlux[2+p]}, 0, p, true)
	}
	assert.InDelta(t, from2D0, c.surfaceCurrents.Value(0, SurfaceXMax*ncg+0), 1e-14)
	assert.InDelta(t, from2D1, c.surfaceCurrents.Value(0, SurfaceXMax*ncg+1), 1e-14)
}

func TestSplitEdgeCurrents(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	// Unequal cell widths so the area weighting is visible: dx=5, dy=4, dz=10
	c := buildUniformEngine(t, 2, 2, 1, 10, 8, 10, reflectiveBox(), mat)

	// Edge 0 is shared by the x-min and y-min faces
	const edgeVal = 3.0
	c.surfaceCurrents.SetValue(0, edgeSurfaceBase+0, edgeVal)
	c.splitEdgeCurrents()

	var (
		areaX = c.Lattice().SurfaceArea(SurfaceXMin) // 4*10 = 40
		areaY = c.Lattice().SurfaceArea(SurfaceYMin) // 5*10 = 50
	)
	assert.InDelta(t, edgeVal*areaX/(areaX+areaY), c.surfaceCurrents.Value(0, SurfaceXMin), 1e-14)
	assert.InDelta(t, edgeVal*areaY/(areaX+areaY), c.surfaceCurrents.Value(0, SurfaceYMin), 1e-14)
	assert.Zero(t, c.surfaceCurrents.Value(0, edgeSurfaceBase+0))

	// The split conserves the total tallied current
	assert.InDelta(t, edgeVal, c.surfaceCurrents.Sum(), 1e-14)
}

func TestSplitVertexCurrents(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	c := buildUniformEngine(t, 2, 2, 2, 10, 8, 6, reflectiveBox(), mat)

	const vertexVal = 6.0
	c.surfaceCurrents.SetValue(3, vertexSurfaceBase+0, vertexVal)
	c.splitVertexCurrents()

	var areaSum float64
	for _, f := range vertexFaces[0] {
		areaSum += c.Lattice().SurfaceArea(f)
	}
	for _, f := range vertexFaces[0] {
		weight := c.Lattice().SurfaceArea(f) / areaSum
		assert.InDelta(t, vertexVal*weight, c.surfaceCurrents.Value(3, f), 1e-14)
	}
	assert.Zero(t, c.surfaceCurrents.Value(3, vertexSurfaceBase+0))
	assert.InDelta(t, vertexVal, c.surfaceCurrents.Sum(), 1e-14)
}
