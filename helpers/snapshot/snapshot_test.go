package snapshot

import (
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/tpms"
	"github.com/soypat/tpms/render"
	"github.com/soypat/tpms/volume"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

const imgDelta = 0.05

func fksGrid(t *testing.T, res int) *volume.Grid {
	g, err := volume.Sample(tpms.FischerKochS{}, res, tpms.Bounds{Lo: -math.Pi, Hi: math.Pi}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMeshPNG(t *testing.T) {
	g := fksGrid(t, 12)
	m := render.MarchingCubes(g.Volume, g.Spacing, 0).Translate(g.Origin)
	path := filepath.Join(t.TempDir(), "fks.png")
	const w, h = 180, 150
	err := MeshPNG(path, m, DefaultView(), w, h)
	if err != nil {
		t.Fatal(err)
	}
	fp, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fp.Close()
	img, err := png.Decode(fp)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h {
		t.Fatalf("image size %dx%d, want %dx%d", b.Dx(), b.Dy(), w, h)
	}
	// The mesh must fit the frame, leaving every border pixel as background.
	isBackground := func(x, y int) bool {
		r, g, bl, _ := img.At(x, y).RGBA()
		return r >= 0xf000 && g >= 0xf000 && bl >= 0xf000
	}
	cropped := map[string]int{}
	for x := b.Min.X; x < b.Max.X; x++ {
		if !isBackground(x, b.Min.Y) {
			cropped["top"]++
		}
		if !isBackground(x, b.Max.Y-1) {
			cropped["bottom"]++
		}
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if !isBackground(b.Min.X, y) {
			cropped["left"]++
		}
		if !isBackground(b.Max.X-1, y) {
			cropped["right"]++
		}
	}
	if len(cropped) > 0 {
		t.Errorf("mesh cut off by the frame, non-background border pixels: %v", cropped)
	}
	drawn := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isBackground(x, y) {
				drawn++
			}
		}
	}
	if drawn < w*h/10 {
		t.Errorf("mesh covers only %d of %d pixels", drawn, w*h)
	}
}

func TestFitDistance(t *testing.T) {
	d := FitDistance(30, 1.2)
	if d < math.Sqrt(3)/math.Sin(15*math.Pi/180) {
		t.Errorf("camera at %g inside the bounding sphere fit distance", d)
	}
	// Portrait images are limited by the horizontal field of view.
	if FitDistance(30, 0.5) <= d {
		t.Error("narrow image must place the camera farther away")
	}
	v := DefaultView()
	if math.Abs(r3.Norm(v.Eye)-d) > 1e-9 {
		t.Errorf("default camera distance %g", r3.Norm(v.Eye))
	}
	if v.Far <= r3.Norm(v.Eye)+math.Sqrt(3) || v.Near >= r3.Norm(v.Eye)-math.Sqrt(3) {
		t.Errorf("clip planes %g..%g cut the mesh at distance %g", v.Near, v.Far, r3.Norm(v.Eye))
	}
}

func TestMeshPNGEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := MeshPNG(path, &render.Mesh{}, DefaultView(), 10, 10)
	if !errors.Is(err, render.ErrEmptyIsosurface) {
		t.Fatalf("got %v, want ErrEmptyIsosurface", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("image written for empty mesh")
	}
}

func TestAngleView(t *testing.T) {
	v := AngleView(0, 90, 2)
	if math.Abs(v.Eye.X) > 1e-12 || math.Abs(v.Eye.Y-2) > 1e-12 || math.Abs(v.Eye.Z) > 1e-12 {
		t.Errorf("unexpected eye %v", v.Eye)
	}
	v = DefaultView()
	if v.Eye.X != v.Eye.Y || v.Eye.Z <= 0 {
		t.Errorf("default view eye %v not at 45° azimuth above XY plane", v.Eye)
	}
}

func TestSlicePNG(t *testing.T) {
	g := fksGrid(t, 20)
	smoothed, err := volume.Smooth(g.Volume, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	p1 := filepath.Join(dir, "slice1.png")
	p2 := filepath.Join(dir, "slice2.png")
	for _, path := range []string{p1, p2} {
		err := SlicePNG(path, g, smoothed, 10, 0)
		if err != nil {
			t.Fatal(err)
		}
	}
	b1, err := os.ReadFile(p1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(p2)
	if err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.EqualApprox("png", b1, b2, imgDelta)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("slice images of same volume differ")
	}
}

func TestSlicePlotErrors(t *testing.T) {
	g := fksGrid(t, 6)
	if _, err := SlicePlot(g, g.Volume, 6, 0); err == nil {
		t.Error("expected out of range slice error")
	}
	other, err := volume.New(6, 6, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SlicePlot(g, other, 0, 0); err == nil {
		t.Error("expected dimension mismatch error")
	}
	// Constant slice still plots.
	flat, err := volume.New(6, 6, 6)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := SlicePlot(g, flat, 0, 0); err != nil {
		t.Error(err)
	}
}
