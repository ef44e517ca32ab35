package matter

import (
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestPLAScale(t *testing.T) {
	box, err := sdf.Box3D(v3.Vec{X: 10, Y: 10, Z: 10}, 0)
	if err != nil {
		t.Fatal(err)
	}
	scaled := PLA.Scale(box)
	bb := scaled.BoundingBox()
	want := 5 * PLA.ScaleFactor()
	if math.Abs(bb.Max.X-want) > 1e-9 {
		t.Errorf("scaled half size %g, want %g", bb.Max.X, want)
	}
	if PLA.ScaleFactor() <= 1 {
		t.Error("shrink compensation must enlarge the part")
	}
	if got := PLA.InternalDimScale(3); got <= 3 {
		t.Errorf("internal dimension %g not enlarged", got)
	}
}

func TestByName(t *testing.T) {
	if m, err := ByName("pla"); err != nil || m != PLA {
		t.Errorf("got %v %v", m, err)
	}
	if _, err := ByName("abs"); err == nil {
		t.Error("expected unknown material error")
	}
}
