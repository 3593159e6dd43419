/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SenoritaSarker/OpenMOC/InputParameters"
	"github.com/SenoritaSarker/OpenMOC/cmfd"
)

// SolveCmd runs a standalone coarse-mesh diffusion eigenvalue solve from a
// YAML input deck: a uniform-material lattice with one flat source region
// per coarse cell and a flat initial flux. Useful for checking a deck's
// mesh, boundary, and cross-section setup before coupling to a transport
// sweep.
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Standalone CMFD diffusion eigenvalue solve from a YAML input deck",
	Long:  `Standalone CMFD diffusion eigenvalue solve from a YAML input deck`,
	Run: func(cmd *cobra.Command, args []string) {
		// Bound through viper, so the deck path may come from the flag or
		// from the config file
		inputFile := viper.GetString("inputFile")
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start(profile.CPUProfile).Stop()
		}
		ip := processSolveInput(inputFile)
		RunSolve(ip)
	},
}

func processSolveInput(inputFile string) (ip *InputParameters.CmfdParameters) {
	if len(inputFile) == 0 {
		err := fmt.Errorf("must supply an input deck (-I, --inputFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Bare Homogeneous Slab"
NumX: 2
NumY: 2
NumZ: 1
WidthX: 10.
WidthY: 10.
WidthZ: 10.
Boundaries: {xmin: vacuum, xmax: vacuum, ymin: vacuum, ymax: vacuum, zmin: reflective, zmax: reflective}
NumMOCGroups: 1
SORFactor: 1.5
SourceConvergence: 1.e-7
TotalXS: [0.2]
AbsorptionXS: [0.2]
NuFissionXS: [0.18]
Chi: [1.0]
DiffusionCoefficients: [1.0]
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	data, err := ioutil.ReadFile(inputFile)
	if err != nil {
		panic(err)
	}
	ip = &InputParameters.CmfdParameters{}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	if err = ip.Validate(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputFile", "I", "", "YAML input deck with mesh, boundary and cross-section parameters")
	SolveCmd.Flags().BoolP("profile", "p", false, "write a CPU profile for the solve")
	if err := viper.BindPFlag("inputFile", SolveCmd.Flags().Lookup("inputFile")); err != nil {
		panic(err)
	}
}

var boundaryFaces = map[string]int{
	"xmin": cmfd.SurfaceXMin,
	"ymin": cmfd.SurfaceYMin,
	"zmin": cmfd.SurfaceZMin,
	"xmax": cmfd.SurfaceXMax,
	"ymax": cmfd.SurfaceYMax,
	"zmax": cmfd.SurfaceZMax,
}

var boundaryTypes = map[string]cmfd.BoundaryType{
	"vacuum":     cmfd.Vacuum,
	"reflective": cmfd.Reflective,
	"periodic":   cmfd.Periodic,
}

// RunSolve builds the uniform-material problem described by the deck and
// runs one acceleration cycle in pure-diffusion mode.
func RunSolve(ip *InputParameters.CmfdParameters) {
	ip.Print()

	mat := cmfd.NewXSMaterial(ip.NumMOCGroups)
	copy(mat.TotalXS, ip.TotalXS)
	copy(mat.AbsorptionXS, ip.AbsorptionXS)
	copy(mat.NuFissionXS, ip.NuFissionXS)
	copy(mat.ChiSpectrum, ip.Chi)
	copy(mat.DifCoef, ip.DiffusionCoefficients)
	for from, row := range ip.ScatterXS {
		for to, xs := range row {
			mat.SetSigmaS(from, to, xs)
		}
	}

	c := cmfd.NewCmfd()
	c.SetLatticeStructure(ip.NumX, ip.NumY, ip.NumZ)
	c.SetWidthX(ip.WidthX)
	c.SetWidthY(ip.WidthY)
	c.SetWidthZ(ip.WidthZ)
	c.SetNumMOCGroups(ip.NumMOCGroups)
	c.SetSolve3D(ip.Solve3D)
	c.SetFluxUpdateOn(ip.FluxUpdate)
	c.SetCentroidUpdateOn(ip.CentroidUpdate)
	for side, bc := range ip.Boundaries {
		if err := c.SetBoundary(boundaryFaces[side], boundaryTypes[bc]); err != nil {
			panic(err)
		}
	}
	if ip.SORFactor != 0 {
		if err := c.SetSORRelaxationFactor(ip.SORFactor); err != nil {
			panic(err)
		}
	}
	if ip.SourceConvergence != 0 {
		if err := c.SetSourceConvergenceThreshold(ip.SourceConvergence); err != nil {
			panic(err)
		}
	}
	if ip.KNearest != 0 {
		if err := c.SetKNearest(ip.KNearest); err != nil {
			panic(err)
		}
	}
	if ip.NumDomains != 0 {
		if err := c.SetNumDomains(ip.NumDomains); err != nil {
			panic(err)
		}
	}
	if len(ip.GroupStructure) != 0 {
		if err := c.SetGroupStructure(ip.GroupStructure); err != nil {
			panic(err)
		}
	}

	// One flat source region per coarse cell, flat unit flux
	numCells := ip.NumX * ip.NumY * ip.NumZ
	lat := c.Lattice()
	var (
		volumes   = make([]float64, numCells)
		materials = make([]cmfd.Material, numCells)
		fluxes    = make([]float64, numCells*ip.NumMOCGroups)
		centroids = make([]cmfd.Point, numCells)
	)
	for cell := 0; cell < numCells; cell++ {
		volumes[cell] = lat.Volume()
		materials[cell] = mat
		centroids[cell] = lat.Centroid(cell)
	}
	for i := range fluxes {
		fluxes[i] = 1.0
	}
	c.SetNumFSRs(numCells)
	c.SetFSRVolumes(volumes)
	c.SetFSRMaterials(materials)
	c.SetFSRFluxes(fluxes)
	c.SetFSRCentroids(centroids)

	if err := c.Initialize(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	if err := c.GenerateCellMap(); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}

	keff, err := c.ComputeKeff(0)
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("\nCMFD eigenvalue solve converged: k-eff = %10.6f\n", keff)
	fmt.Printf("Neutron balance imbalance: %10.3e\n\n", c.CheckNeutronBalance())
	c.PrintTimerReport()
}
