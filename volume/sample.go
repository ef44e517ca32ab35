package volume

import (
	"fmt"
	"runtime"

	"github.com/soypat/tpms"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is a sampled field: a volume together with the lattice it was sampled on.
type Grid struct {
	Volume *Volume
	// Lattice coordinates along each axis. X[0] == Origin.X and
	// X[len(X)-1] is exactly the upper bound of the sampled box.
	X, Y, Z []float64
	// Spacing is the distance between adjacent lattice points along each axis.
	Spacing r3.Vec
	// Origin is the world position of sample (0,0,0).
	Origin r3.Vec
}

// Point returns the world position of lattice point (i,j,k).
func (g *Grid) Point(i, j, k int) r3.Vec {
	return r3.Vec{X: g.X[i], Y: g.Y[j], Z: g.Z[k]}
}

// Sample evaluates f on a resolution³ lattice spanning b on every axis.
// workers limits the number of goroutines used, workers<=0 uses GOMAXPROCS.
func Sample(f tpms.Field, resolution int, b tpms.Bounds, workers int) (*Grid, error) {
	if err := tpms.ValidateResolution(resolution); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return SampleBox(f, b.Box(), resolution, resolution, resolution, workers)
}

// SampleBox evaluates f on an nx×ny×nz lattice spanning box, endpoints included.
func SampleBox(f tpms.Field, box r3.Box, nx, ny, nz int, workers int) (*Grid, error) {
	if nx < tpms.MinResolution || ny < tpms.MinResolution || nz < tpms.MinResolution {
		return nil, fmt.Errorf("%w: lattice %dx%dx%d", tpms.ErrInvalidResolution, nx, ny, nz)
	}
	for _, b := range []tpms.Bounds{{Lo: box.Min.X, Hi: box.Max.X}, {Lo: box.Min.Y, Hi: box.Max.Y}, {Lo: box.Min.Z, Hi: box.Max.Z}} {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	vol, err := New(nx, ny, nz)
	if err != nil {
		return nil, err
	}
	g := &Grid{
		Volume: vol,
		X:      linspace(box.Min.X, box.Max.X, nx),
		Y:      linspace(box.Min.Y, box.Max.Y, ny),
		Z:      linspace(box.Min.Z, box.Max.Z, nz),
		Spacing: r3.Vec{
			X: (box.Max.X - box.Min.X) / float64(nx-1),
			Y: (box.Max.Y - box.Min.Y) / float64(ny-1),
			Z: (box.Max.Z - box.Min.Z) / float64(nz-1),
		},
		Origin: box.Min,
	}

	var group errgroup.Group
	group.SetLimit(workerCount(workers))
	ge, vectorized := f.(tpms.GridEvaluator)
	for i := 0; i < nx; i++ {
		slab := vol.Slab(i)
		xs := g.X[i : i+1]
		group.Go(func() error {
			if vectorized {
				ge.EvaluateGrid(slab, xs, g.Y, g.Z)
				return nil
			}
			idx := 0
			for _, y := range g.Y {
				for _, z := range g.Z {
					slab[idx] = f.Evaluate(r3.Vec{X: xs[0], Y: y, Z: z})
					idx++
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return g, nil
}

// linspace returns n evenly spaced values over [lo, hi]. The last value is exactly hi.
func linspace(lo, hi float64, n int) []float64 {
	dst := floats.Span(make([]float64, n), lo, hi)
	dst[n-1] = hi
	return dst
}

func workerCount(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}
