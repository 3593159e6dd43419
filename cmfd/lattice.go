package cmfd

import (
	"fmt"
	"math"
)

// Point is a position in the global coordinate system of the geometry.
type Point struct {
	X, Y, Z float64
}

// Lattice is the regular coarse mesh overlaid on the fine-mesh geometry. It
// answers the containment and neighbor queries that map flat source regions
// and track segments onto coarse cells and surfaces. Cell ids are flattened
// lexicographically: id = x + y*NumX + z*NumX*NumY.
type Lattice struct {
	NumX, NumY, NumZ       int
	WidthX, WidthY, WidthZ float64
	Offset                 Point // lower corner of the mesh
	Boundaries             [NumFaces]BoundaryType
}

func (l *Lattice) Validate() error {
	if l.NumX < 1 || l.NumY < 1 || l.NumZ < 1 {
		return fmt.Errorf("invalid lattice structure %dx%dx%d: all dimensions must be positive",
			l.NumX, l.NumY, l.NumZ)
	}
	if l.WidthX <= 0 || l.WidthY <= 0 || l.WidthZ <= 0 {
		return fmt.Errorf("invalid lattice widths (%g, %g, %g): all widths must be positive",
			l.WidthX, l.WidthY, l.WidthZ)
	}
	for face := 0; face < NumFaces; face++ {
		opp := oppositeFace(face)
		if l.Boundaries[face] == Periodic && l.Boundaries[opp] != Periodic {
			return fmt.Errorf("periodic boundary on face %d requires a periodic opposite face %d", face, opp)
		}
	}
	return nil
}

func (l *Lattice) NumCells() int { return l.NumX * l.NumY * l.NumZ }

func (l *Lattice) CellWidthX() float64 { return l.WidthX / float64(l.NumX) }
func (l *Lattice) CellWidthY() float64 { return l.WidthY / float64(l.NumY) }
func (l *Lattice) CellWidthZ() float64 { return l.WidthZ / float64(l.NumZ) }

func (l *Lattice) CellIndex(ix, iy, iz int) int {
	return ix + iy*l.NumX + iz*l.NumX*l.NumY
}

func (l *Lattice) CellCoords(cell int) (ix, iy, iz int) {
	ix = cell % l.NumX
	iy = (cell / l.NumX) % l.NumY
	iz = cell / (l.NumX * l.NumY)
	return
}

// Volume is the volume of one coarse cell; the lattice is uniform so all
// cells share it.
func (l *Lattice) Volume() float64 {
	return l.CellWidthX() * l.CellWidthY() * l.CellWidthZ()
}

// Centroid returns the center point of a cell in global coordinates.
func (l *Lattice) Centroid(cell int) (p Point) {
	ix, iy, iz := l.CellCoords(cell)
	p.X = l.Offset.X + (float64(ix)+0.5)*l.CellWidthX()
	p.Y = l.Offset.Y + (float64(iy)+0.5)*l.CellWidthY()
	p.Z = l.Offset.Z + (float64(iz)+0.5)*l.CellWidthZ()
	return
}

// CellNext returns the id of the neighbor across a face, honoring the mesh
// boundary conditions: -1 for vacuum and reflective edges, the wrapped cell
// for periodic edges.
func (l *Lattice) CellNext(cell, face int) int {
	ix, iy, iz := l.CellCoords(cell)
	switch face {
	case SurfaceXMin:
		ix--
	case SurfaceYMin:
		iy--
	case SurfaceZMin:
		iz--
	case SurfaceXMax:
		ix++
	case SurfaceYMax:
		iy++
	case SurfaceZMax:
		iz++
	default:
		panic(fmt.Sprintf("CellNext called with non-face surface %d", face))
	}
	wrap := func(i, n, face int) int {
		if i >= 0 && i < n {
			return i
		}
		if l.Boundaries[face] == Periodic {
			return (i + n) % n
		}
		return -1
	}
	if ix = wrap(ix, l.NumX, face); ix < 0 {
		return -1
	}
	if iy = wrap(iy, l.NumY, face); iy < 0 {
		return -1
	}
	if iz = wrap(iz, l.NumZ, face); iz < 0 {
		return -1
	}
	return l.CellIndex(ix, iy, iz)
}

// FindCell maps a global point to the coarse cell containing it, clamping
// points on the outer mesh boundary into the adjacent cell. Returns -1 for
// points outside the mesh.
func (l *Lattice) FindCell(p Point) int {
	locate := func(v, off, width float64, n int) int {
		i := int(math.Floor((v - off) / width))
		if i == n && v <= off+width*float64(n)+1e-12 {
			i = n - 1
		}
		if i < 0 || i >= n {
			return -1
		}
		return i
	}
	ix := locate(p.X, l.Offset.X, l.CellWidthX(), l.NumX)
	iy := locate(p.Y, l.Offset.Y, l.CellWidthY(), l.NumY)
	iz := locate(p.Z, l.Offset.Z, l.CellWidthZ(), l.NumZ)
	if ix < 0 || iy < 0 || iz < 0 {
		return -1
	}
	return l.CellIndex(ix, iy, iz)
}

// FindSurface returns the encoded surface tag (cell*NumSurfaces + face) for a
// point lying on one of the cell's face planes, or -1 when the point is
// interior to the cell. Used by the transport collaborator when attaching
// crossing tags to traced segments.
func (l *Lattice) FindSurface(cell int, p Point) int {
	const tol = 1e-10
	ix, iy, iz := l.CellCoords(cell)
	var (
		x0 = l.Offset.X + float64(ix)*l.CellWidthX()
		y0 = l.Offset.Y + float64(iy)*l.CellWidthY()
		z0 = l.Offset.Z + float64(iz)*l.CellWidthZ()
	)
	onPlane := []struct {
		face int
		dist float64
	}{
		{SurfaceXMin, math.Abs(p.X - x0)},
		{SurfaceYMin, math.Abs(p.Y - y0)},
		{SurfaceZMin, math.Abs(p.Z - z0)},
		{SurfaceXMax, math.Abs(p.X - (x0 + l.CellWidthX()))},
		{SurfaceYMax, math.Abs(p.Y - (y0 + l.CellWidthY()))},
		{SurfaceZMax, math.Abs(p.Z - (z0 + l.CellWidthZ()))},
	}
	for _, s := range onPlane {
		if s.dist < tol {
			return cell*NumSurfaces + s.face
		}
	}
	return -1
}

// SurfaceArea is the area of a face of one coarse cell.
func (l *Lattice) SurfaceArea(face int) float64 {
	switch face {
	case SurfaceXMin, SurfaceXMax:
		return l.CellWidthY() * l.CellWidthZ()
	case SurfaceYMin, SurfaceYMax:
		return l.CellWidthX() * l.CellWidthZ()
	case SurfaceZMin, SurfaceZMax:
		return l.CellWidthX() * l.CellWidthY()
	}
	panic(fmt.Sprintf("SurfaceArea called with non-face surface %d", face))
}

// PerpendicularWidth is the cell width along the axis normal to a face.
func (l *Lattice) PerpendicularWidth(face int) float64 {
	switch face {
	case SurfaceXMin, SurfaceXMax:
		return l.CellWidthX()
	case SurfaceYMin, SurfaceYMax:
		return l.CellWidthY()
	case SurfaceZMin, SurfaceZMax:
		return l.CellWidthZ()
	}
	panic(fmt.Sprintf("PerpendicularWidth called with non-face surface %d", face))
}
