// Package tpms implements scalar fields of triply periodic minimal surfaces
// and the configuration used to sample and triangulate them.
package tpms

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Field is the interface to an implicit scalar field.
type Field interface {
	// Evaluate returns the value of the field at p. The isosurface
	// is the set of points for which Evaluate returns the isovalue.
	Evaluate(p r3.Vec) float64
}

// GridEvaluator is implemented by fields that can evaluate a whole rectilinear
// lattice at once. dst is filled in row-major order so that the value at
// (xs[i], ys[j], zs[k]) is stored at dst[i*len(ys)*len(zs) + j*len(zs) + k].
// Results must be identical to calling Evaluate on every lattice point.
type GridEvaluator interface {
	Field
	EvaluateGrid(dst, xs, ys, zs []float64)
}

var (
	_ GridEvaluator = FischerKochS{}
	_ GridEvaluator = Gyroid{}
	_ GridEvaluator = SchwarzP{}
)

// FischerKochS is the approximated Fischer-Koch S surface
//
//	cos(2x)·sin(y)·cos(z) + cos(2y)·sin(z)·cos(x) + cos(2z)·sin(x)·cos(y)
type FischerKochS struct{}

func (FischerKochS) Evaluate(p r3.Vec) float64 {
	x, y, z := trigOf(p.X), trigOf(p.Y), trigOf(p.Z)
	return fischerKoch(x, y, z)
}

func (FischerKochS) EvaluateGrid(dst, xs, ys, zs []float64) {
	tx, ty, tz := newTrigAxis(xs), newTrigAxis(ys), newTrigAxis(zs)
	mustFit(dst, xs, ys, zs)
	idx := 0
	for i := range tx {
		for j := range ty {
			for k := range tz {
				dst[idx] = fischerKoch(tx[i], ty[j], tz[k])
				idx++
			}
		}
	}
}

// Gyroid is Schoen's gyroid sin(x)cos(y) + sin(y)cos(z) + sin(z)cos(x).
type Gyroid struct{}

func (Gyroid) Evaluate(p r3.Vec) float64 {
	return gyroid(trigOf(p.X), trigOf(p.Y), trigOf(p.Z))
}

func (Gyroid) EvaluateGrid(dst, xs, ys, zs []float64) {
	tx, ty, tz := newTrigAxis(xs), newTrigAxis(ys), newTrigAxis(zs)
	mustFit(dst, xs, ys, zs)
	idx := 0
	for i := range tx {
		for j := range ty {
			for k := range tz {
				dst[idx] = gyroid(tx[i], ty[j], tz[k])
				idx++
			}
		}
	}
}

// SchwarzP is the Schwarz primitive surface cos(x) + cos(y) + cos(z).
type SchwarzP struct{}

func (SchwarzP) Evaluate(p r3.Vec) float64 {
	return schwarzP(trigOf(p.X), trigOf(p.Y), trigOf(p.Z))
}

func (SchwarzP) EvaluateGrid(dst, xs, ys, zs []float64) {
	tx, ty, tz := newTrigAxis(xs), newTrigAxis(ys), newTrigAxis(zs)
	mustFit(dst, xs, ys, zs)
	idx := 0
	for i := range tx {
		for j := range ty {
			for k := range tz {
				dst[idx] = schwarzP(tx[i], ty[j], tz[k])
				idx++
			}
		}
	}
}

// FieldByName returns the field registered under name.
func FieldByName(name string) (Field, error) {
	switch name {
	case "fischer-koch-s", "fks":
		return FischerKochS{}, nil
	case "gyroid":
		return Gyroid{}, nil
	case "schwarz-p", "primitive":
		return SchwarzP{}, nil
	}
	return nil, fmt.Errorf("unknown field %q", name)
}

// trig holds the trigonometric terms of a single coordinate.
type trig struct {
	sin, cos, cos2 float64
}

func trigOf(v float64) trig {
	return trig{sin: math.Sin(v), cos: math.Cos(v), cos2: math.Cos(2 * v)}
}

func newTrigAxis(coords []float64) []trig {
	t := make([]trig, len(coords))
	for i, v := range coords {
		t[i] = trigOf(v)
	}
	return t
}

// The explicit float64 conversions keep the compiler from fusing the
// products and sums into FMA instructions so both evaluation paths round
// identically on every architecture.

func fischerKoch(x, y, z trig) float64 {
	a := float64(x.cos2 * y.sin * z.cos)
	b := float64(y.cos2 * z.sin * x.cos)
	c := float64(z.cos2 * x.sin * y.cos)
	return a + b + c
}

func gyroid(x, y, z trig) float64 {
	a := float64(x.sin * y.cos)
	b := float64(y.sin * z.cos)
	c := float64(z.sin * x.cos)
	return a + b + c
}

func schwarzP(x, y, z trig) float64 {
	return x.cos + y.cos + z.cos
}

func mustFit(dst, xs, ys, zs []float64) {
	if len(dst) < len(xs)*len(ys)*len(zs) {
		panic("destination too short for lattice")
	}
}
