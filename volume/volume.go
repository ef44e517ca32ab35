// Package volume samples scalar fields onto dense rectilinear lattices
// and filters the resulting volumes.
package volume

import (
	"errors"
	"fmt"

	"github.com/soypat/tpms"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Volume is a dense Nx×Ny×Nz array of scalar samples stored contiguously.
// The sample (i,j,k) lives at index i*Ny*Nz + j*Nz + k.
type Volume struct {
	nx, ny, nz int
	data       []float64
}

// New returns a zeroed volume of the given dimensions.
func New(nx, ny, nz int) (*Volume, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: volume dimensions %dx%dx%d", tpms.ErrInvalidResolution, nx, ny, nz)
	}
	return &Volume{nx: nx, ny: ny, nz: nz, data: make([]float64, nx*ny*nz)}, nil
}

// FromData wraps data as an nx×ny×nz volume without copying it.
func FromData(nx, ny, nz int, data []float64) (*Volume, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("%w: volume dimensions %dx%dx%d", tpms.ErrInvalidResolution, nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, errors.New("data length does not match volume dimensions")
	}
	return &Volume{nx: nx, ny: ny, nz: nz, data: data}, nil
}

// Dims returns the number of samples along each axis.
func (v *Volume) Dims() (nx, ny, nz int) { return v.nx, v.ny, v.nz }

// Len returns the total number of samples.
func (v *Volume) Len() int { return len(v.data) }

// Index returns the flat index of sample (i,j,k).
func (v *Volume) Index(i, j, k int) int { return (i*v.ny+j)*v.nz + k }

func (v *Volume) At(i, j, k int) float64 { return v.data[v.Index(i, j, k)] }

func (v *Volume) Set(i, j, k int, val float64) { v.data[v.Index(i, j, k)] = val }

// Data returns the underlying sample buffer. Callers must not modify
// a volume after handing it to a consumer.
func (v *Volume) Data() []float64 { return v.data }

// Slab returns the samples with first index i, a Ny*Nz row-major slice.
func (v *Volume) Slab(i int) []float64 {
	stride := v.ny * v.nz
	return v.data[i*stride : (i+1)*stride]
}

// Clone returns a deep copy of v.
func (v *Volume) Clone() *Volume {
	c := *v
	c.data = append([]float64(nil), v.data...)
	return &c
}

// Stats summarizes the samples of a volume.
type Stats struct {
	Min, Max     float64
	Mean, StdDev float64
}

// Describe returns summary statistics over all samples of v.
func Describe(v *Volume) Stats {
	mean, std := stat.MeanStdDev(v.data, nil)
	return Stats{
		Min:    floats.Min(v.data),
		Max:    floats.Max(v.data),
		Mean:   mean,
		StdDev: std,
	}
}

// Straddles reports whether iso lies within the range of the samples,
// that is whether a non-empty isosurface can exist.
func (s Stats) Straddles(iso float64) bool {
	return s.Min < iso && iso <= s.Max
}
