package cmfd

// BoundaryType selects the condition applied on one face of the coarse mesh.
type BoundaryType int

const (
	Vacuum BoundaryType = iota
	Reflective
	Periodic
)

func (b BoundaryType) String() string {
	switch b {
	case Vacuum:
		return "vacuum"
	case Reflective:
		return "reflective"
	case Periodic:
		return "periodic"
	}
	return "unknown"
}

// Coarse-cell surface ids. The six faces come first; the edge and vertex
// surfaces exist only as tally targets for segments that cross a cell at a
// non-conforming corner, and their currents are redistributed onto the faces
// before any coefficient is computed.
const (
	SurfaceXMin = iota
	SurfaceYMin
	SurfaceZMin
	SurfaceXMax
	SurfaceYMax
	SurfaceZMax

	NumFaces    = 6
	NumEdges    = 12
	NumVertices = 8

	edgeSurfaceBase   = NumFaces
	vertexSurfaceBase = NumFaces + NumEdges

	// NumSurfaces is the per-cell surface count used to encode segment
	// surface tags as cell*NumSurfaces + surface.
	NumSurfaces = NumFaces + NumEdges + NumVertices
)

// edgeFaces lists, for each edge surface, the two faces that share it.
var edgeFaces = [NumEdges][2]int{
	{SurfaceXMin, SurfaceYMin},
	{SurfaceXMin, SurfaceYMax},
	{SurfaceXMax, SurfaceYMin},
	{SurfaceXMax, SurfaceYMax},
	{SurfaceXMin, SurfaceZMin},
	{SurfaceXMin, SurfaceZMax},
	{SurfaceXMax, SurfaceZMin},
	{SurfaceXMax, SurfaceZMax},
	{SurfaceYMin, SurfaceZMin},
	{SurfaceYMin, SurfaceZMax},
	{SurfaceYMax, SurfaceZMin},
	{SurfaceYMax, SurfaceZMax},
}

// vertexFaces lists, for each vertex surface, the three faces meeting there.
var vertexFaces = [NumVertices][3]int{
	{SurfaceXMin, SurfaceYMin, SurfaceZMin},
	{SurfaceXMin, SurfaceYMin, SurfaceZMax},
	{SurfaceXMin, SurfaceYMax, SurfaceZMin},
	{SurfaceXMin, SurfaceYMax, SurfaceZMax},
	{SurfaceXMax, SurfaceYMin, SurfaceZMin},
	{SurfaceXMax, SurfaceYMin, SurfaceZMax},
	{SurfaceXMax, SurfaceYMax, SurfaceZMin},
	{SurfaceXMax, SurfaceYMax, SurfaceZMax},
}

// oppositeFace maps a face to the matching face of the neighboring cell.
func oppositeFace(face int) int {
	return (face + NumFaces/2) % NumFaces
}

// surfaceSense is -1 on the min faces and +1 on the max faces, giving the
// orientation of the outward normal along the face's axis.
func surfaceSense(face int) float64 {
	if face < NumFaces/2 {
		return -1.
	}
	return 1.
}
