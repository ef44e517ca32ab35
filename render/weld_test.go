package render

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestWeldExact(t *testing.T) {
	g := sampleSphere(t, 12)
	m := MarchingCubes(g.Volume, g.Spacing, 0)
	w := m.Weld(0)
	if err := w.Validate(); err != nil {
		t.Fatal(err)
	}
	if w.FaceCount() != m.FaceCount() {
		t.Fatalf("exact weld changed face count %d -> %d", m.FaceCount(), w.FaceCount())
	}
	if w.VertexCount() >= m.VertexCount() {
		t.Fatalf("no vertices merged: %d -> %d", m.VertexCount(), w.VertexCount())
	}
	// Closed genus 0 surface: V - E + F = 2.
	if e := 3 * w.FaceCount() / 2; w.VertexCount()-e+w.FaceCount() != 2 {
		t.Errorf("Euler characteristic %d, want 2", w.VertexCount()-e+w.FaceCount())
	}
	for i := range m.Faces {
		if m.Triangle(i) != w.Triangle(i) {
			t.Fatalf("face %d geometry changed by weld", i)
		}
	}
}

func TestWeldTolerance(t *testing.T) {
	m := &Mesh{
		Vertices: []r3.Vec{
			{X: 0}, {X: 1}, {Y: 1},
			{X: 1e-9}, {X: 1, Z: -1e-9}, {X: 1, Y: 1},
		},
		Faces: [][3]uint32{{0, 1, 2}, {3, 5, 4}},
	}
	w := m.Weld(1e-6)
	if w.VertexCount() != 4 {
		t.Fatalf("got %d vertices, want 4", w.VertexCount())
	}
	want := [][3]uint32{{0, 1, 2}, {0, 3, 1}}
	for i, f := range w.Faces {
		if f != want[i] {
			t.Errorf("face %d = %v, want %v", i, f, want[i])
		}
	}
	// A tolerance larger than the triangle collapses it.
	if w := m.Weld(10); !w.Empty() || w.VertexCount() != 1 {
		t.Errorf("expected every vertex merged into one and no faces, got %d vertices %d faces", w.VertexCount(), w.FaceCount())
	}
	if w := (&Mesh{}).Weld(1); !w.Empty() {
		t.Error("weld of empty mesh not empty")
	}
}
