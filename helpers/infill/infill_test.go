package infill

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/tpms"
)

func TestInfillSheet(t *testing.T) {
	size := v3.Vec{X: 20, Y: 20, Z: 10}
	s, err := Infill(tpms.FischerKochS{}, size, 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	bb := s.BoundingBox()
	if bb.Min.X > -10 || bb.Max.Z < 5 {
		t.Fatalf("bounding box %v does not enclose part", bb)
	}
	// Origin lies on the zero level set of the Fischer-Koch S field.
	if d := s.Evaluate(v3.Vec{}); d > 0 {
		t.Errorf("origin outside sheet: %g", d)
	}
	if d := s.Evaluate(v3.Vec{X: 30}); d <= 0 {
		t.Errorf("point outside box inside solid: %g", d)
	}
	m := Mesh(s, 40)
	if m.Empty() {
		t.Fatal("empty infill mesh")
	}
	const tol = 0.5
	box := m.Bounds()
	if box.Min.X < -10-tol || box.Max.X > 10+tol || box.Min.Z < -5-tol || box.Max.Z > 5+tol {
		t.Errorf("mesh bounds %v exceed part", box)
	}
}

func TestSolidNetwork(t *testing.T) {
	s, err := Solid(tpms.SchwarzP{}, v3.Vec{X: 4, Y: 4, Z: 4}, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	// cos(0)*3 > 0 so the origin is in the void.
	if d := s.Evaluate(v3.Vec{}); d <= 0 {
		t.Errorf("origin inside network: %g", d)
	}
	// Near the cell corner every cosine is close to -1.
	if d := s.Evaluate(v3.Vec{X: 1.99, Y: 1.99, Z: 1.99}); d >= 0 {
		t.Errorf("cell corner not solid: %g", d)
	}
	if Mesh(s, 24).Empty() {
		t.Error("empty network mesh")
	}
}

func TestInfillInvalid(t *testing.T) {
	good := v3.Vec{X: 1, Y: 1, Z: 1}
	for _, test := range []struct {
		name      string
		f         tpms.Field
		size      v3.Vec
		cell, thk float64
	}{
		{name: "nil field", f: nil, size: good, cell: 1, thk: 0.1},
		{name: "zero cell", f: tpms.Gyroid{}, size: good, cell: 0, thk: 0.1},
		{name: "nan cell", f: tpms.Gyroid{}, size: good, cell: math.NaN(), thk: 0.1},
		{name: "flat box", f: tpms.Gyroid{}, size: v3.Vec{X: 1, Y: 1}, cell: 1, thk: 0.1},
		{name: "thickness", f: tpms.Gyroid{}, size: good, cell: 1, thk: 0},
	} {
		if _, err := Infill(test.f, test.size, test.cell, test.thk); err == nil {
			t.Errorf("%s: expected error", test.name)
		}
	}
}
