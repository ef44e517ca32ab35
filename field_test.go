package tpms

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestFischerKochSFormula(t *testing.T) {
	var f FischerKochS
	for _, p := range []r3.Vec{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -math.Pi, Y: math.Pi / 2, Z: 0.25},
		{X: 1e3, Y: -7.5, Z: 0.001},
	} {
		x, y, z := p.X, p.Y, p.Z
		want := math.Cos(2*x)*math.Sin(y)*math.Cos(z) +
			math.Cos(2*y)*math.Sin(z)*math.Cos(x) +
			math.Cos(2*z)*math.Sin(x)*math.Cos(y)
		got := f.Evaluate(p)
		if math.Abs(got-want) > 1e-14 {
			t.Errorf("Evaluate(%v) = %g, want %g", p, got, want)
		}
	}
}

func TestFieldZeros(t *testing.T) {
	for _, test := range []struct {
		name string
		f    Field
		p    r3.Vec
		want float64
	}{
		{name: "fks origin", f: FischerKochS{}, p: r3.Vec{}, want: 0},
		{name: "gyroid origin", f: Gyroid{}, p: r3.Vec{}, want: 0},
		{name: "schwarz origin", f: SchwarzP{}, p: r3.Vec{}, want: 3},
		{name: "schwarz half period", f: SchwarzP{}, p: r3.Vec{X: math.Pi / 2, Y: math.Pi / 2, Z: math.Pi / 2}, want: 0},
	} {
		got := test.f.Evaluate(test.p)
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("%s: got %g, want %g", test.name, got, test.want)
		}
	}
}

func TestEvaluateGridMatchesEvaluate(t *testing.T) {
	xs := []float64{-math.Pi, -1, 0, 0.3, math.Pi}
	ys := []float64{-2, 0.5, 2.75}
	zs := []float64{-math.Pi, 1.1, 2, math.Pi}
	for _, f := range []GridEvaluator{FischerKochS{}, Gyroid{}, SchwarzP{}} {
		dst := make([]float64, len(xs)*len(ys)*len(zs))
		f.EvaluateGrid(dst, xs, ys, zs)
		for i, x := range xs {
			for j, y := range ys {
				for k, z := range zs {
					got := dst[i*len(ys)*len(zs)+j*len(zs)+k]
					want := f.Evaluate(r3.Vec{X: x, Y: y, Z: z})
					if got != want {
						t.Fatalf("%T grid value at (%d,%d,%d) = %v, point evaluation = %v", f, i, j, k, got, want)
					}
				}
			}
		}
	}
}

func TestFischerKochSPeriodic(t *testing.T) {
	var f FischerKochS
	p := r3.Vec{X: 0.3, Y: -1.2, Z: 2.2}
	shifted := r3.Add(p, r3.Vec{X: 2 * math.Pi, Y: -2 * math.Pi, Z: 4 * math.Pi})
	if got, want := f.Evaluate(shifted), f.Evaluate(p); math.Abs(got-want) > 1e-12 {
		t.Errorf("field not 2π periodic: %g != %g", got, want)
	}
}

func TestFieldByName(t *testing.T) {
	for _, name := range []string{"fischer-koch-s", "fks", "gyroid", "schwarz-p", "primitive"} {
		if _, err := FieldByName(name); err != nil {
			t.Errorf("FieldByName(%q): %v", name, err)
		}
	}
	if _, err := FieldByName("neovius"); err == nil {
		t.Error("expected error for unknown field")
	}
}
