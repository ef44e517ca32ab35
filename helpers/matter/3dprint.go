// Package matter compensates solids for the shrinkage of printing materials.
package matter

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

// ByName returns a known material. Names are lower case.
func ByName(name string) (ViscousMaterial, error) {
	switch name {
	case "pla":
		return PLA, nil
	}
	return ViscousMaterial{}, fmt.Errorf("unknown material %q", name)
}

type ViscousMaterial struct {
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Scale enlarges s so it has the intended size after cooling.
func (m ViscousMaterial) Scale(s sdf.SDF3) sdf.SDF3 {
	return sdf.ScaleUniform3D(s, m.ScaleFactor())
}

// ScaleFactor is the uniform scale applied by Scale.
func (m ViscousMaterial) ScaleFactor() float64 {
	return 1 / (1 - m.shrink)
}

// InternalDimScale returns the dimension to model so an internal feature such
// as a hole measures real after printing.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}
