package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/tpms/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyIsosurface is an advisory error reported by consumers that cannot
// handle a mesh without faces. An empty mesh is a valid extraction result.
var ErrEmptyIsosurface = errors.New("isosurface is empty")

// Mesh is an indexed triangle mesh. Faces index into Vertices.
// A Mesh returned by this package is not modified afterwards and
// is owned by the caller.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]uint32
}

// NewMesh returns a mesh with three new vertices per triangle, in order.
func NewMesh(model []Triangle3) *Mesh {
	if 3*int64(len(model)) > math.MaxUint32 {
		panic("too many triangles for 32 bit face indices")
	}
	m := &Mesh{
		Vertices: make([]r3.Vec, 0, 3*len(model)),
		Faces:    make([][3]uint32, 0, len(model)),
	}
	for _, t := range model {
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, t[0], t[1], t[2])
		m.Faces = append(m.Faces, [3]uint32{base, base + 1, base + 2})
	}
	return m
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) }

func (m *Mesh) FaceCount() int { return len(m.Faces) }

// Empty returns true if the mesh has no faces.
func (m *Mesh) Empty() bool { return len(m.Faces) == 0 }

// Triangle returns the i'th face as a triangle.
func (m *Mesh) Triangle(i int) Triangle3 {
	f := m.Faces[i]
	return Triangle3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Triangles returns every face of the mesh as a triangle, in face order.
func (m *Mesh) Triangles() []Triangle3 {
	return m.AppendTriangles(make([]Triangle3, 0, len(m.Faces)))
}

// AppendTriangles appends the faces of the mesh to dst.
func (m *Mesh) AppendTriangles(dst []Triangle3) []Triangle3 {
	for i := range m.Faces {
		dst = append(dst, m.Triangle(i))
	}
	return dst
}

// Triangles32 returns the faces of the mesh in single precision.
func (m *Mesh) Triangles32() []ms3.Triangle {
	out := make([]ms3.Triangle, len(m.Faces))
	for i := range m.Faces {
		out[i] = m.Triangle(i).float32()
	}
	return out
}

// Translate returns a copy of the mesh with offset added to every vertex.
// It maps meshes extracted in lattice space to world space when offset
// is the position of the first lattice point.
func (m *Mesh) Translate(offset r3.Vec) *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Faces:    append([][3]uint32(nil), m.Faces...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = r3.Add(v, offset)
	}
	return out
}

// Bounds returns the bounding box of the vertices. The box of an empty mesh is the zero box.
func (m *Mesh) Bounds() r3.Box {
	return d3.Set(m.Vertices).Bounds()
}

// Validate checks every face indexes existing, pairwise distinct vertices.
func (m *Mesh) Validate() error {
	nv := uint32(len(m.Vertices))
	for i, f := range m.Faces {
		if f[0] >= nv || f[1] >= nv || f[2] >= nv {
			return fmt.Errorf("face %d index out of range %v (%d vertices)", i, f, nv)
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return fmt.Errorf("face %d has repeated index %v", i, f)
		}
	}
	return nil
}
