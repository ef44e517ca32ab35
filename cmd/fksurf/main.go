// Command fksurf extracts an isosurface of a triply periodic minimal surface
// field, Fischer-Koch S by default, and writes it as STL and PNG images.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/tpms"
	"github.com/soypat/tpms/helpers/infill"
	"github.com/soypat/tpms/helpers/matter"
	"github.com/soypat/tpms/helpers/snapshot"
	"github.com/soypat/tpms/render"
	"github.com/soypat/tpms/surface"
	"github.com/soypat/tpms/volume"
)

// Resolution prompt limits.
const (
	promptDefault = 50
	promptMin     = 30
	promptMax     = 100
)

func main() {
	log.SetFlags(0)
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("fksurf: ", err)
	}
}

type options struct {
	config    string
	field     string
	weld      float64
	workers   int
	stl       string
	png       string
	slice     string
	npy       string
	infill    string
	thickness float64
	material  string
	prompt    bool
	verbose   bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := tpms.DefaultConfig()
	var opts options
	fs := flag.NewFlagSet("fksurf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.config, "config", "", "TOML or YAML configuration file, flags override its values")
	fs.StringVar(&opts.field, "field", "fischer-koch-s", "implicit field: fischer-koch-s, gyroid or schwarz-p")
	fs.IntVar(&cfg.Resolution, "res", cfg.Resolution, "samples per axis")
	fs.Float64Var(&cfg.Bounds.Lo, "lo", cfg.Bounds.Lo, "lower bound on every axis")
	fs.Float64Var(&cfg.Bounds.Hi, "hi", cfg.Bounds.Hi, "upper bound on every axis")
	fs.Float64Var(&cfg.IsoValue, "iso", cfg.IsoValue, "isosurface level")
	fs.Float64Var(&cfg.Sigma, "sigma", cfg.Sigma, "Gaussian smoothing standard deviation in samples, 0 disables")
	fs.IntVar(&opts.workers, "workers", 0, "goroutines per stage, 0 uses GOMAXPROCS")
	fs.Float64Var(&opts.weld, "weld", -1, "merge vertices closer than this distance, negative disables")
	fs.StringVar(&opts.stl, "stl", "", "write mesh to binary STL file")
	fs.StringVar(&opts.png, "png", "", "write shaded render of the mesh to PNG file")
	fs.StringVar(&opts.slice, "slice", "", "write heat map of the middle z slice to PNG file")
	fs.StringVar(&opts.npy, "npy", "", "write smoothed volume to NumPy .npy file")
	fs.StringVar(&opts.infill, "infill", "", "write sheet solid of the field clipped to the bounds to STL file")
	fs.Float64Var(&opts.thickness, "thickness", 0.3, "sheet thickness in field units for -infill")
	fs.StringVar(&opts.material, "material", "", "compensate -infill for printing material shrinkage, e.g. pla")
	fs.BoolVar(&opts.prompt, "prompt", false, "ask for the resolution on standard input")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.config != "" {
		fileCfg, err := readConfigFile(opts.config)
		if err != nil {
			return err
		}
		// Flags given on the command line take precedence over the file.
		flagCfg := cfg
		cfg = fileCfg
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "res":
				cfg.Resolution = flagCfg.Resolution
			case "lo":
				cfg.Bounds.Lo = flagCfg.Bounds.Lo
			case "hi":
				cfg.Bounds.Hi = flagCfg.Bounds.Hi
			case "iso":
				cfg.IsoValue = flagCfg.IsoValue
			case "sigma":
				cfg.Sigma = flagCfg.Sigma
			}
		})
	}
	if opts.prompt {
		cfg.Resolution = promptResolution(stdin, stdout)
	}
	field, err := tpms.FieldByName(opts.field)
	if err != nil {
		return err
	}
	logger.Debug("configuration", "field", opts.field, "resolution", cfg.Resolution,
		"lo", cfg.Bounds.Lo, "hi", cfg.Bounds.Hi, "iso", cfg.IsoValue, "sigma", cfg.Sigma)

	res, err := surface.Generate(cfg, field, surface.Options{
		Workers:  opts.workers,
		Observer: surface.ObserverFunc(func(e surface.Event) { logStage(logger, e) }),
	})
	if err != nil {
		return err
	}
	stats := volume.Describe(res.Smoothed)
	logger.Debug("volume", "min", stats.Min, "max", stats.Max, "mean", stats.Mean, "stddev", stats.StdDev)
	if !stats.Straddles(cfg.IsoValue) {
		logger.Warn("iso value outside sampled range", "iso", cfg.IsoValue, "min", stats.Min, "max", stats.Max)
	}

	mesh := res.Mesh
	if opts.weld >= 0 {
		before := mesh.VertexCount()
		mesh = mesh.Weld(opts.weld)
		logger.Debug("weld", "tolerance", opts.weld, "before", before, "after", mesh.VertexCount())
	}
	fmt.Fprintf(stdout, "Vertices: %d\n", mesh.VertexCount())
	fmt.Fprintf(stdout, "Faces: %d\n", mesh.FaceCount())

	if opts.npy != "" {
		if err := volume.WriteNPY(opts.npy, res.Smoothed); err != nil {
			return err
		}
		logger.Info("wrote volume", "path", opts.npy)
	}
	if opts.slice != "" {
		_, _, nz := res.Smoothed.Dims()
		if err := snapshot.SlicePNG(opts.slice, res.Grid, res.Smoothed, nz/2, cfg.IsoValue); err != nil {
			return err
		}
		logger.Info("wrote slice", "path", opts.slice)
	}
	if opts.infill != "" {
		if err := writeInfill(opts.infill, field, cfg, opts.thickness, opts.material); err != nil {
			return err
		}
		logger.Info("wrote infill", "path", opts.infill)
	}
	if mesh.Empty() {
		if opts.stl != "" || opts.png != "" {
			logger.Warn("skipping mesh output", "err", render.ErrEmptyIsosurface)
		}
		return nil
	}
	if opts.stl != "" {
		if err := render.CreateSTL(opts.stl, render.NewMeshRenderer(mesh)); err != nil {
			return err
		}
		logger.Info("wrote mesh", "path", opts.stl)
	}
	if opts.png != "" {
		err := snapshot.MeshPNG(opts.png, mesh, snapshot.DefaultView(), snapshot.DefaultWidth, snapshot.DefaultHeight)
		if err != nil {
			return err
		}
		logger.Info("wrote render", "path", opts.png)
	}
	return nil
}

func logStage(logger *slog.Logger, e surface.Event) {
	attrs := []any{"stage", e.Stage.String(), "elapsed", e.Elapsed}
	switch e.Stage {
	case surface.StageSample, surface.StageSmooth:
		attrs = append(attrs, "samples", e.Samples)
	default:
		attrs = append(attrs, "vertices", e.Vertices, "faces", e.Faces)
	}
	logger.Debug("stage done", attrs...)
}

func readConfigFile(path string) (tpms.Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return tpms.Config{}, err
	}
	defer fp.Close()
	return tpms.ReadConfig(fp, filepath.Ext(path))
}

// promptResolution asks for a resolution on r. Empty or non-numeric input
// selects the default and numbers are clamped to the prompt limits.
func promptResolution(r io.Reader, w io.Writer) int {
	fmt.Fprintf(w, "Resolution [%d-%d] (default %d): ", promptMin, promptMax, promptDefault)
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return promptDefault
	}
	n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return promptDefault
	}
	return max(promptMin, min(promptMax, n))
}

// writeInfill meshes a sheet of f in a cube the size of the configured
// bounds centered at the origin, one field period per 2π, and writes it as STL.
// A non-empty material scales the solid to compensate its shrinkage.
func writeInfill(path string, f tpms.Field, cfg tpms.Config, thickness float64, material string) error {
	side := cfg.Bounds.Hi - cfg.Bounds.Lo
	s, err := infill.Infill(f, v3.Vec{X: side, Y: side, Z: side}, 2*math.Pi, thickness)
	if err != nil {
		return err
	}
	if material != "" {
		m, err := matter.ByName(material)
		if err != nil {
			return err
		}
		s = m.Scale(s)
	}
	m := infill.Mesh(s, 2*cfg.Resolution)
	return render.CreateSTL(path, render.NewMeshRenderer(m))
}
