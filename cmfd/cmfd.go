package cmfd

import (
	"fmt"
	"log"
	"sync"

	"github.com/SenoritaSarker/OpenMOC/linalg"
	"github.com/SenoritaSarker/OpenMOC/utils"
)

// Cmfd accelerates convergence of a Method of Characteristics transport
// solve with Coarse Mesh Finite Difference diffusion. Between transport
// sweeps it condenses the fine-mesh cross sections and tallied surface
// currents onto the coarse lattice, solves the nonlinear-corrected diffusion
// eigenvalue problem, and prolongs the coarse flux change back onto the flat
// source regions.
//
// The engine owns every coarse-mesh structure it allocates; the transport
// collaborator's arrays (volumes, materials, fluxes, moments, centroids) are
// held as non-owning references and must stay valid across the cycle. The
// collaborator must not read or write the surface-current store or the
// coarse flux vectors while ComputeKeff is in progress.
type Cmfd struct {
	lattice Lattice
	groups  *GroupStructure
	quad    Quadrature

	numMOCGroups int
	solve3D      bool

	sorFactor        float64
	sourceThresh     float64
	balanceTolerance float64
	kNearest         int
	fluxUpdateOn     bool
	centroidUpdateOn bool
	rescaleOn        bool

	// Transport-side references, supplied per cycle
	numFSRs      int
	fsrVolumes   []float64
	fsrMaterials []Material
	fsrFluxes    []float64 // [fsr*numMOCGroups + g]
	fluxMoments  []float64 // optional, [(fsr*3 + axis)*numMOCGroups + g]
	fsrCentroids []Point
	cellFSRs     [][]int
	fsrToCell    []int

	// Engine-owned coarse-mesh state
	materials       []*XSMaterial
	surfaceCurrents *linalg.Vector // stride NumSurfaces*numCoarseGroups
	oldFlux         *linalg.Vector
	newFlux         *linalg.Vector
	fluxRatio       *linalg.Vector
	lossMatrix      *linalg.Matrix
	prodMatrix      *linalg.Matrix
	tallies         *tallies
	cellLocks       []sync.Mutex
	stencils        [][]stencilEntry
	keff            float64

	// Distributed domain decomposition
	numDomains     int
	domains        *utils.DomainMap
	domainCurrents []*linalg.Vector

	timer       *phaseTimer
	initialized bool
}

// NewCmfd returns an engine with the default solver knobs; the lattice,
// group structure and transport arrays must be configured before Initialize.
func NewCmfd() *Cmfd {
	return &Cmfd{
		sorFactor:        1.0,
		sourceThresh:     1e-7,
		balanceTolerance: 1e-5,
		kNearest:         3,
		fluxUpdateOn:     true,
		rescaleOn:        true,
		numDomains:       1,
		keff:             1.0,
		timer:            newPhaseTimer(),
	}
}

/* Configuration setters. All of these are setup-time only and must not be
 * called while a cycle is in progress. */

func (c *Cmfd) SetLatticeStructure(numX, numY, numZ int) {
	c.lattice.NumX, c.lattice.NumY, c.lattice.NumZ = numX, numY, numZ
}

func (c *Cmfd) SetWidthX(w float64) { c.lattice.WidthX = w }
func (c *Cmfd) SetWidthY(w float64) { c.lattice.WidthY = w }
func (c *Cmfd) SetWidthZ(w float64) { c.lattice.WidthZ = w }

func (c *Cmfd) SetOffset(p Point) { c.lattice.Offset = p }

func (c *Cmfd) SetBoundary(face int, b BoundaryType) error {
	if face < 0 || face >= NumFaces {
		return fmt.Errorf("invalid boundary face %d", face)
	}
	c.lattice.Boundaries[face] = b
	return nil
}

func (c *Cmfd) SetSORRelaxationFactor(factor float64) error {
	if factor <= 0 || factor >= 2 {
		return fmt.Errorf("SOR relaxation factor %g out of range (0, 2)", factor)
	}
	c.sorFactor = factor
	return nil
}

func (c *Cmfd) SetSourceConvergenceThreshold(thresh float64) error {
	if thresh <= 0 {
		return fmt.Errorf("source convergence threshold %g must be positive", thresh)
	}
	c.sourceThresh = thresh
	return nil
}

func (c *Cmfd) SetBalanceTolerance(tol float64) { c.balanceTolerance = tol }

func (c *Cmfd) SetKNearest(k int) error {
	if k < 1 {
		return fmt.Errorf("k-nearest count %d must be at least 1", k)
	}
	c.kNearest = k
	return nil
}

func (c *Cmfd) SetNumMOCGroups(n int)       { c.numMOCGroups = n }
func (c *Cmfd) SetFluxUpdateOn(on bool)     { c.fluxUpdateOn = on }
func (c *Cmfd) SetCentroidUpdateOn(on bool) { c.centroidUpdateOn = on }
func (c *Cmfd) SetRescaleOn(on bool)        { c.rescaleOn = on }
func (c *Cmfd) SetSolve3D(solve3D bool)     { c.solve3D = solve3D }
func (c *Cmfd) SetQuadrature(q Quadrature)  { c.quad = q }

// SetGroupStructure installs an explicit fine-to-coarse condensation map.
// Without one, Initialize defaults to the identity structure.
func (c *Cmfd) SetGroupStructure(fineGroups [][]int) (err error) {
	if c.numMOCGroups < 1 {
		return fmt.Errorf("number of MOC groups must be set before the group structure")
	}
	c.groups, err = NewGroupStructure(c.numMOCGroups, fineGroups)
	return
}

/* Transport-side data references. */

func (c *Cmfd) SetNumFSRs(n int)                 { c.numFSRs = n }
func (c *Cmfd) SetFSRVolumes(vols []float64)     { c.fsrVolumes = vols }
func (c *Cmfd) SetFSRMaterials(mats []Material)  { c.fsrMaterials = mats }
func (c *Cmfd) SetFSRFluxes(fluxes []float64)    { c.fsrFluxes = fluxes }
func (c *Cmfd) SetFluxMoments(moments []float64) { c.fluxMoments = moments }
func (c *Cmfd) SetFSRCentroids(pts []Point)      { c.fsrCentroids = pts }

// AddFSRToCell registers a flat source region as a member of a coarse cell.
func (c *Cmfd) AddFSRToCell(cell, fsr int) error {
	if cell < 0 || cell >= len(c.cellFSRs) {
		return fmt.Errorf("cell %d out of range (mesh has %d cells)", cell, len(c.cellFSRs))
	}
	c.cellFSRs[cell] = append(c.cellFSRs[cell], fsr)
	if fsr >= len(c.fsrToCell) {
		grown := make([]int, fsr+1)
		for i := range grown {
			grown[i] = -1
		}
		copy(grown, c.fsrToCell)
		c.fsrToCell = grown
	}
	c.fsrToCell[fsr] = cell
	return nil
}

// SetNumDomains selects the number of cooperating domains for distributed
// current tallying. One domain disables the exchange phase entirely.
func (c *Cmfd) SetNumDomains(n int) error {
	if n < 1 {
		return fmt.Errorf("number of domains %d must be at least 1", n)
	}
	c.numDomains = n
	return nil
}

/* Getters consumed by the transport collaborator. */

func (c *Cmfd) Keff() float64            { return c.keff }
func (c *Cmfd) Lattice() *Lattice        { return &c.lattice }
func (c *Cmfd) NumCells() int            { return c.lattice.NumCells() }
func (c *Cmfd) NumCoarseGroups() int     { return c.groups.NumCoarseGroups() }
func (c *Cmfd) NumMOCGroups() int        { return c.numMOCGroups }
func (c *Cmfd) IsFluxUpdateOn() bool     { return c.fluxUpdateOn }
func (c *Cmfd) IsCentroidUpdateOn() bool { return c.centroidUpdateOn }

func (c *Cmfd) CoarseGroup(mocGroup int) int { return c.groups.CoarseGroup(mocGroup) }

// ConvertFSRIdToCmfdCell returns the coarse cell containing a flat source
// region, or -1 when the region was never registered.
func (c *Cmfd) ConvertFSRIdToCmfdCell(fsr int) int {
	if fsr < 0 || fsr >= len(c.fsrToCell) {
		return -1
	}
	return c.fsrToCell[fsr]
}

// CellFSRs exposes the cell membership lists.
func (c *Cmfd) CellFSRs() [][]int { return c.cellFSRs }

// Initialize validates the configuration and allocates every coarse-mesh
// structure: flux and current vectors, the loss and production matrices, the
// reusable tally arenas, the per-cell tally locks, and (in centroid-update
// mode) the k-nearest stencils. Must be called once before the first cycle.
func (c *Cmfd) Initialize() error {
	if err := c.lattice.Validate(); err != nil {
		return err
	}
	if c.numMOCGroups < 1 {
		return fmt.Errorf("number of MOC groups must be positive, got %d", c.numMOCGroups)
	}
	if c.groups == nil {
		gs, err := NewIdentityGroupStructure(c.numMOCGroups)
		if err != nil {
			return err
		}
		c.groups = gs
	}
	var (
		numCells = c.lattice.NumCells()
		ncg      = c.groups.NumCoarseGroups()
	)
	c.materials = make([]*XSMaterial, numCells)
	for i := range c.materials {
		c.materials[i] = NewXSMaterial(ncg)
	}
	c.surfaceCurrents = linalg.NewVector(numCells, NumSurfaces*ncg)
	c.oldFlux = linalg.NewVector(numCells, ncg)
	c.newFlux = linalg.NewVector(numCells, ncg)
	c.fluxRatio = linalg.NewVector(numCells, ncg)
	c.lossMatrix = linalg.NewMatrix(numCells, ncg)
	c.prodMatrix = linalg.NewMatrix(numCells, ncg)
	c.tallies = newTallies(numCells, ncg)
	c.cellLocks = make([]sync.Mutex, numCells)
	if c.cellFSRs == nil {
		c.cellFSRs = make([][]int, numCells)
	}
	c.domains = utils.NewDomainMap(c.numDomains, numCells)
	if c.numDomains > 1 {
		c.domainCurrents = make([]*linalg.Vector, c.numDomains)
		for d := range c.domainCurrents {
			c.domainCurrents[d] = linalg.NewVector(numCells, NumSurfaces*ncg)
		}
	}
	if c.centroidUpdateOn {
		if len(c.fsrCentroids) != c.numFSRs {
			return fmt.Errorf("centroid updating requires %d FSR centroids, have %d",
				c.numFSRs, len(c.fsrCentroids))
		}
		c.generateKNearestStencils()
	}
	c.initialized = true
	return nil
}

// GenerateCellMap assigns every FSR to the coarse cell containing its
// centroid. Transport collaborators that track the mapping themselves use
// AddFSRToCell instead.
func (c *Cmfd) GenerateCellMap() error {
	if len(c.fsrCentroids) != c.numFSRs {
		return fmt.Errorf("cell map generation requires %d FSR centroids, have %d",
			c.numFSRs, len(c.fsrCentroids))
	}
	c.cellFSRs = make([][]int, c.lattice.NumCells())
	c.fsrToCell = make([]int, c.numFSRs)
	for fsr, p := range c.fsrCentroids {
		cell := c.lattice.FindCell(p)
		if cell < 0 {
			return fmt.Errorf("FSR %d centroid (%g, %g, %g) lies outside the coarse mesh",
				fsr, p.X, p.Y, p.Z)
		}
		c.cellFSRs[cell] = append(c.cellFSRs[cell], fsr)
		c.fsrToCell[fsr] = cell
	}
	return nil
}

// ComputeKeff runs one full acceleration cycle: boundary current reduction
// (distributed runs), edge/vertex current splitting, cross-section collapse,
// matrix assembly, the eigenvalue solve, and prolongation of the coarse flux
// change onto the fine mesh. mocIteration gates the nonlinear correction:
// on iteration 0 the solve is a plain diffusion problem.
//
// Numerical non-convergence and degenerate configurations return an error;
// the caller must treat it as fatal since a partial flux would silently
// corrupt the enclosing transport iteration. A neutron-balance mismatch is
// logged but never fails the cycle.
func (c *Cmfd) ComputeKeff(mocIteration int) (float64, error) {
	if !c.initialized {
		return 0, fmt.Errorf("ComputeKeff called before Initialize")
	}
	defer c.timer.Time("total")()

	if c.numDomains > 1 {
		stop := c.timer.Time("current exchange")
		c.exchangeCurrents()
		stop()
	}

	stop := c.timer.Time("current splitting")
	c.splitVertexCurrents()
	c.splitEdgeCurrents()
	stop()

	stop = c.timer.Time("cross-section collapse")
	if err := c.collapseXS(); err != nil {
		return 0, err
	}
	stop()

	stop = c.timer.Time("matrix assembly")
	c.constructMatrices(mocIteration)
	stop()

	stop = c.timer.Time("eigenvalue solve")
	c.newFlux.CopyFrom(c.oldFlux)
	keff, err := linalg.EigenvalueSolve(c.lossMatrix, c.prodMatrix, c.newFlux,
		c.sourceThresh, c.sorFactor)
	stop()
	if err != nil {
		return 0, fmt.Errorf("CMFD eigenvalue solve: %w", err)
	}
	c.keff = keff

	if c.rescaleOn {
		c.rescaleFlux()
	}

	if imbalance := c.CheckNeutronBalance(); imbalance > c.balanceTolerance {
		log.Printf("CMFD neutron balance mismatch: relative imbalance %.3e exceeds tolerance %.3e",
			imbalance, c.balanceTolerance)
	}

	if c.fluxUpdateOn {
		stop = c.timer.Time("flux update")
		c.updateMOCFlux()
		stop()
	}
	return c.keff, nil
}

// PrintTimerReport writes the accumulated per-phase timings.
func (c *Cmfd) PrintTimerReport() {
	c.timer.PrintReport()
}
