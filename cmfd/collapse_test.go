package cmfd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseWeightedAverage(t *testing.T) {
	// Two regions with different cross sections, volumes and fluxes condense
	// into one cell; every collapsed value is the flux-volume weighted mean
	var (
		m1 = oneGroupMaterial(0.2, 0.05, 0.1, 1.2)
		m2 = oneGroupMaterial(0.4, 0.10, 0.3, 0.8)
	)
	c := NewCmfd()
	c.SetLatticeStructure(1, 1, 1)
	c.SetWidthX(10)
	c.SetWidthY(10)
	c.SetWidthZ(10)
	for face := 0; face < NumFaces; face++ {
		require.NoError(t, c.SetBoundary(face, Reflective))
	}
	c.SetNumMOCGroups(1)
	c.SetNumFSRs(2)
	c.SetFSRVolumes([]float64{600, 400})
	c.SetFSRMaterials([]Material{m1, m2})
	c.SetFSRFluxes([]float64{2.0, 1.0})
	require.NoError(t, c.Initialize())
	require.NoError(t, c.AddFSRToCell(0, 0))
	require.NoError(t, c.AddFSRToCell(0, 1))

	require.NoError(t, c.collapseXS())

	var (
		w1  = 2.0 * 600 // flux * volume
		w2  = 1.0 * 400
		mat = c.materials[0]
	)
	assert.InDelta(t, (0.2*w1+0.4*w2)/(w1+w2), mat.SigmaT(0), 1e-12)
	assert.InDelta(t, (0.15*w1+0.30*w2)/(w1+w2), mat.SigmaA(0), 1e-12)
	assert.InDelta(t, (0.1*w1+0.3*w2)/(w1+w2), mat.NuSigmaF(0), 1e-12)
	assert.InDelta(t, (0.05*w1+0.10*w2)/(w1+w2), mat.SigmaS(0, 0), 1e-12)
	assert.InDelta(t, (1.2*w1+0.8*w2)/(w1+w2), mat.DiffusionCoefficient(0), 1e-12)
	assert.InDelta(t, 1.0, mat.Chi(0), 1e-12)

	// The coarse cell flux is the flux-volume tally over the cell volume
	assert.InDelta(t, (w1+w2)/1000.0, c.oldFlux.Value(0, 0), 1e-12)
}

func TestCollapseDerivesDiffusionCoefficient(t *testing.T) {
	// A material carrying no explicit coefficient falls back to 1/(3*sigmaT)
	mat := oneGroupMaterial(0.5, 0.1, 0.2, 0)
	c := buildUniformEngine(t, 1, 1, 1, 10, 10, 10, reflectiveBox(), mat)
	require.NoError(t, c.collapseXS())
	assert.InDelta(t, 1.0/(3.0*0.5), c.materials[0].DiffusionCoefficient(0), 1e-12)
}

func TestCollapseGroupCondensation(t *testing.T) {
	// Four fine groups condensed pairwise into two coarse groups
	mat := NewXSMaterial(4)
	mat.TotalXS = []float64{0.1, 0.2, 0.3, 0.4}
	mat.AbsorptionXS = []float64{0.1, 0.2, 0.3, 0.4}
	mat.NuFissionXS = []float64{0.05, 0.05, 0.1, 0.1}
	mat.ChiSpectrum = []float64{0.6, 0.4, 0, 0}
	mat.DifCoef = []float64{1, 1, 1, 1}

	c := NewCmfd()
	c.SetLatticeStructure(1, 1, 1)
	c.SetWidthX(10)
	c.SetWidthY(10)
	c.SetWidthZ(10)
	for face := 0; face < NumFaces; face++ {
		require.NoError(t, c.SetBoundary(face, Reflective))
	}
	c.SetNumMOCGroups(4)
	require.NoError(t, c.SetGroupStructure([][]int{{0, 1}, {2, 3}}))
	c.SetNumFSRs(1)
	c.SetFSRVolumes([]float64{1000})
	c.SetFSRMaterials([]Material{mat})
	c.SetFSRFluxes([]float64{4.0, 2.0, 2.0, 1.0})
	require.NoError(t, c.Initialize())
	require.NoError(t, c.AddFSRToCell(0, 0))

	require.NoError(t, c.collapseXS())

	coarse := c.materials[0]
	// Coarse group 0 condenses fine groups 0 and 1 with flux weights 4 and 2
	assert.InDelta(t, (0.1*4+0.2*2)/6.0, coarse.SigmaT(0), 1e-12)
	assert.InDelta(t, (0.3*2+0.4*1)/3.0, coarse.SigmaT(1), 1e-12)
	// Chi condenses by fission production, not by flux, and sums to one
	assert.InDelta(t, 1.0, coarse.Chi(0)+coarse.Chi(1), 1e-12)
	assert.InDelta(t, 1.0, coarse.Chi(0), 1e-12)
	assert.InDelta(t, 0.0, coarse.Chi(1), 1e-12)
}

func TestCollapseEmptyCellFails(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	c := NewCmfd()
	c.SetLatticeStructure(2, 1, 1)
	c.SetWidthX(10)
	c.SetWidthY(10)
	c.SetWidthZ(10)
	c.SetNumMOCGroups(1)
	c.SetNumFSRs(1)
	c.SetFSRVolumes([]float64{500})
	c.SetFSRMaterials([]Material{mat})
	c.SetFSRFluxes([]float64{1.0})
	require.NoError(t, c.Initialize())
	require.NoError(t, c.AddFSRToCell(0, 0))

	// Cell 1 has no regions, so its volume tally stays zero
	err := c.collapseXS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero volume")
}

func TestCollapseZeroFluxFails(t *testing.T) {
	mat := oneGroupMaterial(0.25, 0.05, 0.3, 1.0)
	c := buildUniformEngine(t, 1, 1, 1, 10, 10, 10, reflectiveBox(), mat)
	c.fsrFluxes[0] = 0
	err := c.collapseXS()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero flux-volume weight")
}
