package render

import (
	"math"
	"runtime"

	"github.com/soypat/tpms/volume"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// interpEpsilon is the smallest corner value difference interpolated along an edge.
// Closer values place the vertex at the edge midpoint.
const interpEpsilon = 1e-12

// mcCorners is the lattice offset of each cube corner.
var mcCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// mcEdges holds the corners joined by each cube edge. The first corner is always
// the one with lower lattice coordinates so that edges shared between neighbouring
// cubes interpolate to the exact same vertex.
var mcEdges = [12][2]uint8{
	{0, 1}, {1, 2}, {3, 2}, {0, 3},
	{4, 5}, {5, 6}, {7, 6}, {4, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// MarchingCubes extracts the isosurface at iso from a sampled volume.
// Vertices are placed in lattice space scaled by spacing, that is, sample
// (i,j,k) lies at (i*spacing.X, j*spacing.Y, k*spacing.Z). Use Mesh.Translate
// to move the mesh to the world position of the first sample.
//
// Samples strictly less than iso are inside the surface. Face normals given
// by the right hand rule point toward increasing field values.
// Every triangle gets three new vertices. A volume that never crosses iso
// yields an empty mesh.
func MarchingCubes(v *volume.Volume, spacing r3.Vec, iso float64) *Mesh {
	return MarchingCubesConcurrent(v, spacing, iso, 1)
}

// MarchingCubesConcurrent is MarchingCubes with cube slabs distributed across
// workers goroutines. workers<=0 uses GOMAXPROCS. The output does not depend
// on the number of workers.
func MarchingCubesConcurrent(v *volume.Volume, spacing r3.Vec, iso float64, workers int) *Mesh {
	nx, ny, nz := v.Dims()
	if nx < 2 || ny < 2 || nz < 2 {
		return &Mesh{}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	slabs := make([][]Triangle3, nx-1)
	if workers == 1 {
		for i := range slabs {
			slabs[i] = mcSlab(nil, v, spacing, iso, i)
		}
	} else {
		var group errgroup.Group
		group.SetLimit(workers)
		for i := range slabs {
			group.Go(func() error {
				slabs[i] = mcSlab(nil, v, spacing, iso, i)
				return nil
			})
		}
		group.Wait() // Slab extraction does not fail.
	}
	total := 0
	for _, s := range slabs {
		total += len(s)
	}
	model := make([]Triangle3, 0, total)
	for _, s := range slabs {
		model = append(model, s...)
	}
	return NewMesh(model)
}

// mcSlab appends the triangles of the cubes with first lattice index i to dst.
func mcSlab(dst []Triangle3, v *volume.Volume, spacing r3.Vec, iso float64, i int) []Triangle3 {
	_, ny, nz := v.Dims()
	var (
		values [8]float64
		pos    [12]r3.Vec
	)
	for j := 0; j < ny-1; j++ {
		for k := 0; k < nz-1; k++ {
			config := 0
			for n, c := range mcCorners {
				values[n] = v.At(i+c[0], j+c[1], k+c[2])
				if values[n] < iso {
					config |= 1 << n
				}
			}
			if config == 0 || config == 255 {
				continue
			}
			cut := mcEdgeTable[config]
			for e, corners := range mcEdges {
				if cut&(1<<e) == 0 {
					continue
				}
				a, b := mcCorners[corners[0]], mcCorners[corners[1]]
				t := mcInterpolate(values[corners[0]], values[corners[1]], iso)
				pos[e] = r3.Vec{
					X: (float64(i+a[0]) + t*float64(b[0]-a[0])) * spacing.X,
					Y: (float64(j+a[1]) + t*float64(b[1]-a[1])) * spacing.Y,
					Z: (float64(k+a[2]) + t*float64(b[2]-a[2])) * spacing.Z,
				}
			}
			dst = mcTriangles(dst, &pos, mcTriangleTable[config])
		}
	}
	return dst
}

// mcTriangles appends the triangles described by a triangulation table entry.
// Table triangles are wound toward decreasing values and are reversed here.
// Triangles collapsed by corner values equal to the isovalue are dropped.
func mcTriangles(dst []Triangle3, pos *[12]r3.Vec, edges []uint8) []Triangle3 {
	for t := 0; t+2 < len(edges); t += 3 {
		tri := Triangle3{pos[edges[t]], pos[edges[t+2]], pos[edges[t+1]]}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			continue
		}
		dst = append(dst, tri)
	}
	return dst
}

// mcInterpolate returns the fraction of the way from v0 to v1 at which the
// linear interpolant equals iso, clamped to [0,1].
func mcInterpolate(v0, v1, iso float64) float64 {
	d := v1 - v0
	if math.Abs(d) < interpEpsilon {
		return 0.5
	}
	t := (iso - v0) / d
	return math.Max(0, math.Min(1, t))
}
