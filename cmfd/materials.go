package cmfd

// Material is the macroscopic cross-section view the engine consumes, both
// for the fine-group materials supplied per flat source region and for the
// coarse-group materials it condenses per cell. All cross sections are in
// units of 1/cm; groups are zero-indexed.
type Material interface {
	NumEnergyGroups() int
	SigmaT(group int) float64
	SigmaA(group int) float64
	// SigmaS is the scattering cross section from one group into another.
	SigmaS(from, to int) float64
	NuSigmaF(group int) float64
	Chi(group int) float64
	// DiffusionCoefficient may return 0 when no explicit coefficient is
	// carried; the engine then derives 1/(3*SigmaT).
	DiffusionCoefficient(group int) float64
}

// XSMaterial is a plain slice-backed Material. The engine uses it for the
// condensed per-cell materials it owns; transport collaborators may use it
// directly or supply their own implementation.
type XSMaterial struct {
	TotalXS      []float64
	AbsorptionXS []float64
	ScatterXS    []float64 // row-major [from*numGroups + to]
	NuFissionXS  []float64
	ChiSpectrum  []float64
	DifCoef      []float64
}

func NewXSMaterial(numGroups int) *XSMaterial {
	return &XSMaterial{
		TotalXS:      make([]float64, numGroups),
		AbsorptionXS: make([]float64, numGroups),
		ScatterXS:    make([]float64, numGroups*numGroups),
		NuFissionXS:  make([]float64, numGroups),
		ChiSpectrum:  make([]float64, numGroups),
		DifCoef:      make([]float64, numGroups),
	}
}

func (m *XSMaterial) NumEnergyGroups() int { return len(m.TotalXS) }

func (m *XSMaterial) SigmaT(group int) float64 { return m.TotalXS[group] }
func (m *XSMaterial) SigmaA(group int) float64 { return m.AbsorptionXS[group] }

func (m *XSMaterial) SigmaS(from, to int) float64 {
	return m.ScatterXS[from*len(m.TotalXS)+to]
}

func (m *XSMaterial) SetSigmaS(from, to int, val float64) {
	m.ScatterXS[from*len(m.TotalXS)+to] = val
}

func (m *XSMaterial) NuSigmaF(group int) float64 { return m.NuFissionXS[group] }
func (m *XSMaterial) Chi(group int) float64      { return m.ChiSpectrum[group] }

func (m *XSMaterial) DiffusionCoefficient(group int) float64 { return m.DifCoef[group] }
