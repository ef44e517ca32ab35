// Package snapshot renders meshes and volume slices to PNG images.
package snapshot

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/tpms/render"
	"gonum.org/v1/gonum/spatial/r3"
)

// Default image size, a 12x10 inch figure at 150 dpi.
const (
	DefaultWidth  = 1800
	DefaultHeight = 1500
)

// View configures the camera. The rendered mesh is first fit inside a
// bi-unit cube centered at the origin.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// Up direction of camera
	Up r3.Vec
	// Eye is the camera position.
	Eye       r3.Vec
	Near, Far float64
	// FovY is the vertical field of view in degrees.
	FovY float64
	// Supersampling factor, 1 disables antialiasing.
	Scale int
	// Hex colors of the mesh and background.
	Color, Background string
}

// DefaultFovY is the vertical field of view of AngleView in degrees.
const DefaultFovY = 30

// DefaultView looks at the mesh from 30° elevation and 45° azimuth, far
// enough for the whole mesh to fit a DefaultWidth×DefaultHeight image.
func DefaultView() View {
	return AngleView(30, 45, FitDistance(DefaultFovY, float64(DefaultWidth)/DefaultHeight))
}

// FitDistance returns the camera distance from the origin at which the
// sphere enclosing the bi-unit cube fits the view, with a 5% margin.
// fovy is in degrees and aspect is width over height.
func FitDistance(fovy, aspect float64) float64 {
	const margin = 1.05
	half := fovy * math.Pi / 360
	if aspect < 1 {
		// Horizontal field of view is the narrower one.
		half = math.Atan(aspect * math.Tan(half))
	}
	return margin * math.Sqrt(3) / math.Sin(half)
}

// AngleView returns a view of the origin from a camera at distance dist,
// elevation elev degrees above the XY plane and azimuth azim degrees from the X axis.
// Z is up.
func AngleView(elev, azim, dist float64) View {
	e := elev * math.Pi / 180
	a := azim * math.Pi / 180
	return View{
		Up: r3.Vec{Z: 1},
		Eye: r3.Vec{
			X: dist * math.Cos(e) * math.Cos(a),
			Y: dist * math.Cos(e) * math.Sin(a),
			Z: dist * math.Sin(e),
		},
		Near:       1,
		Far:        math.Max(10, dist+2*math.Sqrt(3)),
		FovY:       DefaultFovY,
		Scale:      2,
		Color:      "#21918C",
		Background: "#FFFFFF",
	}
}

// MeshPNG renders m as seen from view into a width×height PNG image at path.
func MeshPNG(path string, m *render.Mesh, view View, width, height int) error {
	if m.Empty() {
		return fmt.Errorf("mesh snapshot: %w", render.ErrEmptyIsosurface)
	}
	tmp, err := os.CreateTemp("", "snapshot-*.stl")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	err = render.WriteSTL(tmp, m.Triangles())
	if err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return STLToPNG(tmp.Name(), path, view, width, height)
}

// STLToPNG renders the STL file at stlName into a width×height PNG image at outputname.
func STLToPNG(stlName, outputname string, view View, width, height int) error {
	img, err := RenderSTL(stlName, view, width, height)
	if err != nil {
		return err
	}
	return fauxgl.SavePNG(outputname, img)
}

// RenderSTL renders the STL file at stlName with Phong shading.
func RenderSTL(stlName string, view View, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	mesh, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return nil, err
	}
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	var (
		fovy   = view.FovY
		eye    = fauxgl.V(view.Eye.X, view.Eye.Y, view.Eye.Z)          // camera position
		center = fauxgl.V(view.LookAt.X, view.LookAt.Y, view.LookAt.Z) // view center position
		up     = fauxgl.V(view.Up.X, view.Up.Y, view.Up.Z)             // up vector
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()                  // light direction
		color  = fauxgl.HexColor(view.Color)                           // object color
	)
	if fovy <= 0 {
		fovy = 30
	}
	if view.Color == "" {
		color = fauxgl.HexColor("#21918C")
	}
	background := fauxgl.HexColor("#FFFFFF")
	if view.Background != "" {
		background = fauxgl.HexColor(view.Background)
	}

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	// create a rendering context
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(background)
	// create transformation matrix and light direction
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, view.Near, view.Far)
	// use builtin phong shader
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(mesh)
	// downsample image for antialiasing
	img := context.Image()
	if scale > 1 {
		img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	}
	return img, nil
}
