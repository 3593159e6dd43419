package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type CmfdParameters struct {
	Title                 string            `yaml:"Title"`
	NumX                  int               `yaml:"NumX"`
	NumY                  int               `yaml:"NumY"`
	NumZ                  int               `yaml:"NumZ"`
	WidthX                float64           `yaml:"WidthX"`
	WidthY                float64           `yaml:"WidthY"`
	WidthZ                float64           `yaml:"WidthZ"`
	Boundaries            map[string]string `yaml:"Boundaries"` // keys xmin..zmax, values vacuum/reflective/periodic
	NumMOCGroups          int               `yaml:"NumMOCGroups"`
	GroupStructure        [][]int           `yaml:"GroupStructure"` // fine groups per coarse group; empty means identity
	SORFactor             float64           `yaml:"SORFactor"`
	SourceConvergence     float64           `yaml:"SourceConvergence"`
	KNearest              int               `yaml:"KNearest"`
	FluxUpdate            bool              `yaml:"FluxUpdate"`
	CentroidUpdate        bool              `yaml:"CentroidUpdate"`
	Solve3D               bool              `yaml:"Solve3D"`
	NumDomains            int               `yaml:"NumDomains"`
	TotalXS               []float64         `yaml:"TotalXS"`
	AbsorptionXS          []float64         `yaml:"AbsorptionXS"`
	NuFissionXS           []float64         `yaml:"NuFissionXS"`
	Chi                   []float64         `yaml:"Chi"`
	ScatterXS             [][]float64       `yaml:"ScatterXS"` // [from][to]
	DiffusionCoefficients []float64         `yaml:"DiffusionCoefficients"`
}

func (ip *CmfdParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *CmfdParameters) Validate() error {
	if ip.NumX < 1 || ip.NumY < 1 || ip.NumZ < 1 {
		return fmt.Errorf("mesh dimensions %dx%dx%d must all be positive", ip.NumX, ip.NumY, ip.NumZ)
	}
	if ip.NumMOCGroups < 1 {
		return fmt.Errorf("NumMOCGroups must be positive, got %d", ip.NumMOCGroups)
	}
	if len(ip.TotalXS) != ip.NumMOCGroups {
		return fmt.Errorf("TotalXS has %d entries, expected %d", len(ip.TotalXS), ip.NumMOCGroups)
	}
	for side, bc := range ip.Boundaries {
		switch bc {
		case "vacuum", "reflective", "periodic":
		default:
			return fmt.Errorf("unknown boundary condition %q on side %q", bc, side)
		}
	}
	return nil
}

func (ip *CmfdParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d x %d]\t\t= Mesh\n", ip.NumX, ip.NumY, ip.NumZ)
	fmt.Printf("%8.5f %8.5f %8.5f\t= Widths\n", ip.WidthX, ip.WidthY, ip.WidthZ)
	fmt.Printf("[%d]\t\t\t\t= MOC Groups\n", ip.NumMOCGroups)
	fmt.Printf("%8.5f\t\t= SOR Factor\n", ip.SORFactor)
	fmt.Printf("%8.2e\t\t= Source Convergence\n", ip.SourceConvergence)
	keys := make([]string, len(ip.Boundaries))
	i := 0
	for k := range ip.Boundaries {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Boundaries[%s] = %v\n", key, ip.Boundaries[key])
	}
}
