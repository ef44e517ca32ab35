package volume

import (
	"fmt"
	"os"

	"github.com/kshedden/gonpy"
)

// WriteNPY saves v to path as a C-ordered float64 NumPy array of shape (Nx, Ny, Nz).
func WriteNPY(path string, v *Volume) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	// The writer closes fp once data is written. Close again for early errors.
	defer fp.Close()
	w, err := gonpy.NewWriter(fp)
	if err != nil {
		return err
	}
	w.Shape = []int{v.nx, v.ny, v.nz}
	w.Version = 2
	return w.WriteFloat64(v.data)
}

// ReadNPY loads a 3 dimensional C-ordered float64 NumPy array written by WriteNPY or numpy.save.
func ReadNPY(path string) (*Volume, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	r, err := gonpy.NewReader(fp)
	if err != nil {
		return nil, err
	}
	if len(r.Shape) != 3 {
		return nil, fmt.Errorf("npy array has %d dimensions, want 3", len(r.Shape))
	}
	if r.ColumnMajor {
		return nil, fmt.Errorf("npy array in Fortran order not supported")
	}
	data, err := r.GetFloat64()
	if err != nil {
		return nil, err
	}
	return FromData(r.Shape[0], r.Shape[1], r.Shape[2], data)
}
