// Package surface chains sampling, smoothing, marching cubes and coordinate
// mapping into a single isosurface generation call.
package surface

import (
	"time"

	"github.com/soypat/tpms"
	"github.com/soypat/tpms/render"
	"github.com/soypat/tpms/volume"
)

// Stage identifies a step of Generate.
type Stage int

const (
	StageSample Stage = iota
	StageSmooth
	StageExtract
	StageMap
)

func (s Stage) String() string {
	switch s {
	case StageSample:
		return "sample"
	case StageSmooth:
		return "smooth"
	case StageExtract:
		return "extract"
	case StageMap:
		return "map"
	}
	return "unknown"
}

// Event is reported to an Observer when a stage completes.
type Event struct {
	Stage   Stage
	Elapsed time.Duration
	// Samples is the number of volume samples, set for sample and smooth stages.
	Samples int
	// Vertices and Faces are set once the mesh exists.
	Vertices, Faces int
}

// Observer receives progress of Generate. Observe is called from the
// goroutine that called Generate, once per stage and in stage order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Options control how Generate runs. The zero value is ready to use.
type Options struct {
	// Workers limits goroutines used per stage. Zero or negative uses GOMAXPROCS.
	Workers int
	// Observer, if not nil, is notified as stages complete.
	Observer Observer
}

// Result holds the outputs of Generate.
type Result struct {
	// Mesh is the isosurface in world coordinates. It may be empty.
	Mesh *render.Mesh
	// Grid holds the raw field samples.
	Grid *volume.Grid
	// Smoothed is the volume marching cubes ran on. It is Grid.Volume's
	// copy when smoothing is disabled.
	Smoothed *volume.Volume
}

// Generate samples f over cfg.Bounds at cfg.Resolution points per axis,
// smooths the samples with a Gaussian of cfg.Sigma, extracts the cfg.IsoValue
// isosurface and translates it to world coordinates. The configuration is
// validated before any work is done. An empty mesh is not an error.
func Generate(cfg tpms.Config, f tpms.Field, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	obs := opts.Observer
	if obs == nil {
		obs = ObserverFunc(func(Event) {})
	}

	start := time.Now()
	grid, err := volume.Sample(f, cfg.Resolution, cfg.Bounds, opts.Workers)
	if err != nil {
		return nil, err
	}
	obs.Observe(Event{Stage: StageSample, Elapsed: time.Since(start), Samples: grid.Volume.Len()})

	start = time.Now()
	smoothed, err := volume.Smooth(grid.Volume, cfg.Sigma, opts.Workers)
	if err != nil {
		return nil, err
	}
	obs.Observe(Event{Stage: StageSmooth, Elapsed: time.Since(start), Samples: smoothed.Len()})

	start = time.Now()
	local := render.MarchingCubesConcurrent(smoothed, grid.Spacing, cfg.IsoValue, opts.Workers)
	obs.Observe(Event{Stage: StageExtract, Elapsed: time.Since(start), Vertices: local.VertexCount(), Faces: local.FaceCount()})

	start = time.Now()
	mesh := local.Translate(grid.Origin)
	obs.Observe(Event{Stage: StageMap, Elapsed: time.Since(start), Vertices: mesh.VertexCount(), Faces: mesh.FaceCount()})

	return &Result{Mesh: mesh, Grid: grid, Smoothed: smoothed}, nil
}
