package cmfd

import (
	"fmt"
	"math"
)

// Quadrature exposes the angular weights the transport collaborator traced
// its tracks with. NumPolar counts the full polar range (0, pi); polar
// indices below NumPolar()/2 select the upward half-space, the convention
// the 2D tally and the Larsen diffusion correction rely on. Weight is the
// combined azimuthal-polar weight used when tallying a segment in either
// mode.
type Quadrature interface {
	NumPolar() int
	Weight(azim, polar int) float64
	PolarWeight(azim, polar int) float64
	SinTheta(azim, polar int) float64
}

// EqualWeightQuadrature is a simple product quadrature with equally spaced
// polar angles over the full polar range and uniform weights. It is enough
// for standalone diffusion solves and for tests; production transport codes
// supply their own tabulated quadratures.
type EqualWeightQuadrature struct {
	numAzim, numPolar int
	sinThetas         []float64
	polarWeights      []float64
	azimWeight        float64
}

func NewEqualWeightQuadrature(numAzim, numPolar int) (q *EqualWeightQuadrature) {
	if numPolar < 2 || numPolar%2 != 0 {
		panic(fmt.Sprintf("polar angle count %d must be even so the half-spaces mirror", numPolar))
	}
	q = &EqualWeightQuadrature{
		numAzim:      numAzim,
		numPolar:     numPolar,
		sinThetas:    make([]float64, numPolar),
		polarWeights: make([]float64, numPolar),
		azimWeight:   1. / float64(numAzim),
	}
	for p := 0; p < numPolar; p++ {
		theta := math.Pi * (float64(p) + 0.5) / float64(numPolar)
		q.sinThetas[p] = math.Sin(theta)
		q.polarWeights[p] = 1. / float64(numPolar)
	}
	return
}

func (q *EqualWeightQuadrature) NumPolar() int { return q.numPolar }

func (q *EqualWeightQuadrature) Weight(azim, polar int) float64 {
	return q.azimWeight * q.polarWeights[polar]
}

func (q *EqualWeightQuadrature) PolarWeight(azim, polar int) float64 {
	return q.polarWeights[polar]
}

func (q *EqualWeightQuadrature) SinTheta(azim, polar int) float64 {
	return q.sinThetas[polar]
}
