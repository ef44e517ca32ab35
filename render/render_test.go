package render_test

import (
	"math"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/tpms"
	"github.com/soypat/tpms/helpers/infill"
	"github.com/soypat/tpms/render"
	"github.com/soypat/tpms/volume"
)

const (
	benchQuality = 100
)

func BenchmarkSDFXFischerKochS(b *testing.B) {
	s, err := infill.Solid(tpms.FischerKochS{}, v3.Vec{X: 2 * math.Pi, Y: 2 * math.Pi, Z: 2 * math.Pi}, 2*math.Pi, 0)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		infill.Mesh(s, benchQuality)
	}
}

func BenchmarkFischerKochS(b *testing.B) {
	g := sampleFKS(b, benchQuality+1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		render.MarchingCubesConcurrent(g.Volume, g.Spacing, 0, 0)
	}
}

func BenchmarkFischerKochSSingle(b *testing.B) {
	g := sampleFKS(b, benchQuality+1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		render.MarchingCubes(g.Volume, g.Spacing, 0)
	}
}

func BenchmarkVolumeRendererSTL(b *testing.B) {
	g := sampleFKS(b, benchQuality+1)
	output := filepath.Join(b.TempDir(), "fks.stl")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := render.CreateSTL(output, render.NewVolumeRenderer(g, 0))
		if err != nil {
			b.Fatal(err)
		}
	}
}

// Both renderers must agree on where the surface is. sdfx places its lattice
// differently so compare bounds, not vertices.
func TestAgainstSDFX(t *testing.T) {
	const n = 40
	side := 2 * math.Pi
	s, err := infill.Solid(tpms.FischerKochS{}, v3.Vec{X: side, Y: side, Z: side}, side, 0)
	if err != nil {
		t.Fatal(err)
	}
	theirs := infill.Mesh(s, n)
	g, err := volume.Sample(tpms.FischerKochS{}, n+1, tpms.Bounds{Lo: -math.Pi, Hi: math.Pi}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ours := render.MarchingCubesConcurrent(g.Volume, g.Spacing, 0, 0).Translate(g.Origin)
	if theirs.Empty() || ours.Empty() {
		t.Fatal("empty mesh")
	}
	tol := 2 * side / n
	a, b := ours.Bounds(), theirs.Bounds()
	for _, d := range [][2]float64{
		{a.Min.X, b.Min.X}, {a.Min.Y, b.Min.Y}, {a.Min.Z, b.Min.Z},
		{a.Max.X, b.Max.X}, {a.Max.Y, b.Max.Y}, {a.Max.Z, b.Max.Z},
	} {
		if math.Abs(d[0]-d[1]) > tol {
			t.Errorf("bounds differ: ours %v sdfx %v", a, b)
			break
		}
	}
}
