package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdVertices{}
	_ kdtree.Comparable = kdVertex{}
)

// Weld returns a copy of the mesh where vertices within tol of an earlier
// vertex are merged into it. Merged vertices take the position of the first
// vertex of their cluster, clusters are numbered in order of first appearance.
// Faces are re-indexed and keep their order. A face left with repeated
// indices after merging is removed, so tol should stay well below the
// lattice spacing. Weld(0) merges exactly coincident vertices only, which
// for marching cubes output never removes a face.
func (m *Mesh) Weld(tol float64) *Mesh {
	if len(m.Vertices) == 0 {
		return &Mesh{}
	}
	pts := make(kdVertices, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = kdVertex{Vec: v, idx: i}
	}
	tree := kdtree.New(pts, false)
	// Keep points with squared distance <= tol². Nudging the sentinel up one
	// ulp avoids ties between the sentinel and exact matches.
	maxDist := math.Nextafter(tol*tol, math.Inf(1))

	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	out := &Mesh{}
	for i, v := range m.Vertices {
		if remap[i] >= 0 {
			continue
		}
		idx := len(out.Vertices)
		out.Vertices = append(out.Vertices, v)
		remap[i] = idx
		keep := kdtree.NewDistKeeper(maxDist)
		tree.NearestSet(keep, kdVertex{Vec: v})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			if j := c.Comparable.(kdVertex).idx; remap[j] < 0 {
				remap[j] = idx
			}
		}
	}
	out.Faces = make([][3]uint32, 0, len(m.Faces))
	for _, f := range m.Faces {
		wf := [3]uint32{uint32(remap[f[0]]), uint32(remap[f[1]]), uint32(remap[f[2]])}
		if wf[0] == wf[1] || wf[1] == wf[2] || wf[2] == wf[0] {
			continue
		}
		out.Faces = append(out.Faces, wf)
	}
	return out
}

type kdVertices []kdVertex

// kdVertex is a mesh vertex and its index in the mesh.
type kdVertex struct {
	r3.Vec
	idx int
}

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a.Vec, b.(kdVertex).Vec, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.Vec, b.(kdVertex).Vec))
}

// c = a.dim - b.dim
func kdComp(a, b r3.Vec, dim int) (c float64) {
	switch dim {
	case 0:
		c = a.X - b.X
	case 1:
		c = a.Y - b.Y
	case 2:
		c = a.Z - b.Z
	}
	return c
}

type kdPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.vertices[i].Vec, p.vertices[j].Vec, p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdPlane) Len() int {
	return len(p.vertices)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
