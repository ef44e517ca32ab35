package render

import (
	"io"

	"github.com/soypat/tpms/volume"
	"gonum.org/v1/gonum/spatial/r3"
)

// Renderer streams triangles. ReadTriangles returns io.EOF once every
// triangle has been read.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

var (
	_ Renderer = (*meshRenderer)(nil)
	_ Renderer = (*volumeRenderer)(nil)
)

// NewMeshRenderer returns a Renderer that reads the faces of m in order.
func NewMeshRenderer(m *Mesh) Renderer {
	return &meshRenderer{mesh: m}
}

type meshRenderer struct {
	mesh *Mesh
	next int
}

func (mr *meshRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	for n < len(dst) && mr.next < len(mr.mesh.Faces) {
		dst[n] = mr.mesh.Triangle(mr.next)
		mr.next++
		n++
	}
	if mr.next == len(mr.mesh.Faces) {
		err = io.EOF
	}
	return n, err
}

// NewVolumeRenderer returns a Renderer that runs marching cubes over g one cube
// slab at a time and streams the triangles in world coordinates. The triangles read
// are the faces of MarchingCubes(g.Volume, g.Spacing, iso).Translate(g.Origin), in order,
// without holding the whole mesh in memory.
func NewVolumeRenderer(g *volume.Grid, iso float64) Renderer {
	return &volumeRenderer{
		grid:      g,
		iso:       iso,
		unwritten: triangle3Buffer{buf: make([]Triangle3, 0, 1024)},
	}
}

type volumeRenderer struct {
	grid      *volume.Grid
	iso       float64
	slab      int
	unwritten triangle3Buffer
	scratch   []Triangle3
}

// ReadTriangles writes triangles extracted from the volume into the argument buffer.
func (vr *volumeRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		panic("cannot write to empty triangle slice")
	}
	nx, _, _ := vr.grid.Volume.Dims()
	for {
		n += vr.unwritten.Read(dst[n:])
		if n == len(dst) {
			return n, nil
		}
		if vr.slab >= nx-1 {
			// Done extracting volume.
			return n, io.EOF
		}
		vr.scratch = mcSlab(vr.scratch[:0], vr.grid.Volume, vr.grid.Spacing, vr.iso, vr.slab)
		for i := range vr.scratch {
			for k := range vr.scratch[i] {
				vr.scratch[i][k] = r3.Add(vr.scratch[i][k], vr.grid.Origin)
			}
		}
		vr.unwritten.Write(vr.scratch)
		vr.slab++
	}
}
