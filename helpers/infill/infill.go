// Package infill builds sdfx solids from triply periodic fields so a
// surface can be used as lattice infill for a CAD part.
package infill

import (
	"errors"
	"fmt"
	"math"

	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/tpms"
	"github.com/soypat/tpms/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sheet is the region within Thickness/2 field units of the zero level set
// of Field. Cell is the world size of one period of the field along each axis.
//
// Field values are not distances so the solid is only suitable for
// meshing, not for offsets or rounding.
type Sheet struct {
	Field     tpms.Field
	Cell      float64
	Thickness float64
	Box       sdf.Box3
}

// Evaluate implements sdf.SDF3.
func (s *Sheet) Evaluate(p v3.Vec) float64 {
	return math.Abs(s.Field.Evaluate(fieldPoint(p, s.Cell))) - s.Thickness/2
}

// BoundingBox implements sdf.SDF3.
func (s *Sheet) BoundingBox() sdf.Box3 { return s.Box }

// fieldPoint maps world position p to field coordinates, one period per cell.
func fieldPoint(p v3.Vec, cell float64) r3.Vec {
	k := 2 * math.Pi / cell
	return r3.Vec{X: k * p.X, Y: k * p.Y, Z: k * p.Z}
}

// Network is the solid region where Field is below Level.
type Network struct {
	Field tpms.Field
	Cell  float64
	Level float64
	Box   sdf.Box3
}

// Evaluate implements sdf.SDF3.
func (n *Network) Evaluate(p v3.Vec) float64 {
	return n.Field.Evaluate(fieldPoint(p, n.Cell)) - n.Level
}

// BoundingBox implements sdf.SDF3.
func (n *Network) BoundingBox() sdf.Box3 { return n.Box }

// Infill returns a sheet of f with the given thickness clipped to a box of
// the given size centered at the origin.
func Infill(f tpms.Field, size v3.Vec, cell, thickness float64) (sdf.SDF3, error) {
	if err := validate(f, size, cell); err != nil {
		return nil, err
	}
	if !(thickness > 0) || math.IsInf(thickness, 0) {
		return nil, fmt.Errorf("infill: invalid sheet thickness %g", thickness)
	}
	box, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, err
	}
	sheet := &Sheet{Field: f, Cell: cell, Thickness: thickness, Box: bounds(size)}
	return sdf.Intersect3D(sheet, box), nil
}

// Solid returns the network solid of f below level clipped to a box of the
// given size centered at the origin.
func Solid(f tpms.Field, size v3.Vec, cell, level float64) (sdf.SDF3, error) {
	if err := validate(f, size, cell); err != nil {
		return nil, err
	}
	box, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, err
	}
	network := &Network{Field: f, Cell: cell, Level: level, Box: bounds(size)}
	return sdf.Intersect3D(network, box), nil
}

func validate(f tpms.Field, size v3.Vec, cell float64) error {
	if f == nil {
		return errors.New("infill: nil field")
	}
	if !(cell > 0) || math.IsInf(cell, 0) {
		return fmt.Errorf("infill: invalid cell size %g", cell)
	}
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return fmt.Errorf("infill: invalid box size %v", size)
	}
	return nil
}

func bounds(size v3.Vec) sdf.Box3 {
	half := v3.Vec{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}
	return sdf.Box3{Min: v3.Vec{X: -half.X, Y: -half.Y, Z: -half.Z}, Max: half}
}

// Mesh tessellates s with sdfx's uniform marching cubes renderer using
// cells cells along the longest side of its bounding box.
func Mesh(s sdf.SDF3, cells int) *render.Mesh {
	tris := sdfxrender.ToTriangles(s, sdfxrender.NewMarchingCubesUniform(cells))
	model := make([]render.Triangle3, 0, len(tris))
	for _, tri := range tris {
		model = append(model, render.Triangle3{r3.Vec(tri[0]), r3.Vec(tri[1]), r3.Vec(tri[2])})
	}
	return render.NewMesh(model)
}
