// Package d3 holds small r3.Vec helpers missing from gonum's r3 package.
package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// EqualWithin returns true if no component of a and b differ by more than tol.
func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

type Set []r3.Vec

// Bounds returns the smallest box containing every vector of the set.
// The box of an empty set is the zero box.
func (a Set) Bounds() r3.Box {
	if len(a) == 0 {
		return r3.Box{}
	}
	bb := r3.Box{Min: a[0], Max: a[0]}
	for _, v := range a[1:] {
		bb.Min = MinElem(bb.Min, v)
		bb.Max = MaxElem(bb.Max, v)
	}
	return bb
}
