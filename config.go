package tpms

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Input validation errors. They are returned wrapped, use errors.Is to test for them.
var (
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrInvalidBounds     = errors.New("invalid bounds")
	ErrInvalidSigma      = errors.New("invalid smoothing sigma")
)

// MinResolution is the smallest number of lattice points per axis
// able to form a single cube.
const MinResolution = 2

// Bounds is the closed interval [Lo, Hi] sampled along every axis.
type Bounds struct {
	Lo float64 `toml:"lo" yaml:"lo"`
	Hi float64 `toml:"hi" yaml:"hi"`
}

// Box returns the axis aligned cube spanned by the bounds.
func (b Bounds) Box() r3.Box {
	return r3.Box{
		Min: r3.Vec{X: b.Lo, Y: b.Lo, Z: b.Lo},
		Max: r3.Vec{X: b.Hi, Y: b.Hi, Z: b.Hi},
	}
}

// Validate returns ErrInvalidBounds if Lo is not strictly less than Hi
// or either end is not finite.
func (b Bounds) Validate() error {
	if math.IsInf(b.Lo, 0) || math.IsInf(b.Hi, 0) || !(b.Lo < b.Hi) {
		return fmt.Errorf("%w: lo=%g must be finite and less than hi=%g", ErrInvalidBounds, b.Lo, b.Hi)
	}
	return nil
}

// Config holds the externally tunable parameters of isosurface generation.
type Config struct {
	// Resolution is the number of lattice points per axis.
	Resolution int    `toml:"resolution" yaml:"resolution"`
	Bounds     Bounds `toml:"bounds" yaml:"bounds"`
	// IsoValue is the field value of the extracted surface.
	IsoValue float64 `toml:"iso" yaml:"iso"`
	// Sigma is the standard deviation in lattice units of the Gaussian
	// smoothing applied before extraction. Zero disables smoothing.
	Sigma float64 `toml:"sigma" yaml:"sigma"`
}

// DefaultConfig returns the configuration for a single period cell of the
// Fischer-Koch S surface at moderate resolution.
func DefaultConfig() Config {
	return Config{
		Resolution: 50,
		Bounds:     Bounds{Lo: -math.Pi, Hi: math.Pi},
		IsoValue:   0,
		Sigma:      0.5,
	}
}

// Validate checks the configuration. It reports the first of
// ErrInvalidResolution, ErrInvalidBounds or ErrInvalidSigma found, in that order.
func (c Config) Validate() error {
	if err := ValidateResolution(c.Resolution); err != nil {
		return err
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if err := ValidateSigma(c.Sigma); err != nil {
		return err
	}
	return nil
}

// ValidateResolution returns ErrInvalidResolution for resolutions below MinResolution.
func ValidateResolution(res int) error {
	if res < MinResolution {
		return fmt.Errorf("%w: got %d, need at least %d points per axis", ErrInvalidResolution, res, MinResolution)
	}
	return nil
}

// ValidateSigma returns ErrInvalidSigma for negative or NaN sigma.
func ValidateSigma(sigma float64) error {
	if !(sigma >= 0) || math.IsInf(sigma, 0) {
		return fmt.Errorf("%w: got %g, must be finite and non-negative", ErrInvalidSigma, sigma)
	}
	return nil
}

// ReadConfig decodes a configuration document in the given format ("toml" or
// "yaml") on top of DefaultConfig. Keys absent from the document keep their
// default value and unknown keys are an error. The result is not validated.
func ReadConfig(r io.Reader, format string) (Config, error) {
	cfg := DefaultConfig()
	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		err = toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg)
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil // empty document.
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		return cfg, fmt.Errorf("decoding %s config: %w", format, err)
	}
	return cfg, nil
}
