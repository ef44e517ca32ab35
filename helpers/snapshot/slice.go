package snapshot

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/soypat/tpms/volume"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Slice plot size.
const (
	SliceWidth  = 8 * vg.Inch
	SliceHeight = 7 * vg.Inch
)

// sliceGrid exposes the constant k plane of a volume as a plotter.GridXYZ.
type sliceGrid struct {
	g *volume.Grid
	v *volume.Volume
	k int
}

func (s sliceGrid) Dims() (c, r int) {
	nx, ny, _ := s.v.Dims()
	return nx, ny
}

func (s sliceGrid) Z(c, r int) float64 { return s.v.At(c, r, s.k) }
func (s sliceGrid) X(c int) float64    { return s.g.X[c] }
func (s sliceGrid) Y(r int) float64    { return s.g.Y[r] }

var _ palette.Palette = solid{}

// solid is a single color palette for contour lines.
type solid struct{ c color.Color }

func (s solid) Colors() []color.Color { return []color.Color{s.c} }

// SlicePlot draws the k-th Z plane of v as a heat map with the iso contour
// overlaid. g supplies the world coordinates and must have v's dimensions.
// v is usually g.Volume or a smoothed copy of it.
func SlicePlot(g *volume.Grid, v *volume.Volume, k int, iso float64) (*plot.Plot, error) {
	if g == nil || v == nil {
		return nil, errors.New("nil grid or volume")
	}
	nx, ny, nz := v.Dims()
	gx, gy, gz := g.Volume.Dims()
	if nx != gx || ny != gy || nz != gz {
		return nil, fmt.Errorf("volume %dx%dx%d does not match grid %dx%dx%d", nx, ny, nz, gx, gy, gz)
	}
	if k < 0 || k >= nz {
		return nil, fmt.Errorf("slice %d out of range [0,%d)", k, nz)
	}
	grid := sliceGrid{g: g, v: v, k: k}
	zmin, zmax := grid.Z(0, 0), grid.Z(0, 0)
	for c := 0; c < nx; c++ {
		for r := 0; r < ny; r++ {
			z := grid.Z(c, r)
			zmin = min(zmin, z)
			zmax = max(zmax, z)
		}
	}
	if zmin == zmax {
		zmin -= 0.5
		zmax += 0.5
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(zmax)
	cmap.SetMin(zmin)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("z = %.4g", g.Z[k])
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewHeatMap(grid, cmap.Palette(255)))
	if zmin < iso && iso < zmax {
		p.Add(plotter.NewContour(grid, []float64{iso}, solid{c: color.Black}))
	}
	return p, nil
}

// SlicePNG saves SlicePlot's figure to path. The image format follows the
// file extension.
func SlicePNG(path string, g *volume.Grid, v *volume.Volume, k int, iso float64) error {
	p, err := SlicePlot(g, v, k, iso)
	if err != nil {
		return err
	}
	return p.Save(SliceWidth, SliceHeight, path)
}
