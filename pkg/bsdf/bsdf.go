// Package bsdf implements the per-material directional scattering
// contract: sample a direction, evaluate the distribution, and compute
// its density, each restricted to a requested lobe mask. All directions
// are in the surface's local shading frame (Z = shading normal).
package bsdf

import (
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/texture"
)

// Lobe is one component of a BSDF's scattering behavior.
type Lobe uint8

const (
	DiffuseReflect Lobe = 1 << iota
	GlossyReflect
	SpecularReflect
	DiffuseTransmit
	GlossyTransmit
	SpecularTransmit
)

// Mask is a set of lobes, used both to declare what a BSDF may produce
// and to request a subset of that behavior from Sample/Eval/Pdf.
type Mask uint8

// All requests every lobe a BSDF supports.
const All Mask = Mask(DiffuseReflect | GlossyReflect | SpecularReflect | DiffuseTransmit | GlossyTransmit | SpecularTransmit)

func (m Mask) Has(l Lobe) bool { return m&Mask(l) != 0 }

// IsSpecular reports whether l is one of the delta lobes.
func (l Lobe) IsSpecular() bool { return l == SpecularReflect || l == SpecularTransmit }

// Event is a scatter query: an incoming direction, the lobes the caller
// is willing to accept, surface info the BSDF may need (UV for textured
// parameters), and the sampler to draw randomness from.
type Event struct {
	Wi             core.Vec3 // local frame; Wi.Z > 0 means light arrives from above the surface
	Wo             core.Vec3 // set by Sample; read by Eval/Pdf
	RequestedLobes Mask
	UV             core.Vec2
	Sampler        sampler.Sampler
}

// Result is what Sample produces.
type Result struct {
	Wo         core.Vec3
	Throughput core.Vec3 // eval(wo)/pdf(wo) already divided by any lobe-selection probability
	Pdf        float64   // 0 for a specular lobe: a delta density
	Lobe       Lobe
}

// BSDF is a directional scattering model with a declared lobe mask.
type BSDF interface {
	Lobes() Mask
	// Sample draws a Wo for event.Wi under event.RequestedLobes. Returns
	// false when the event is unsatisfiable (e.g. Wi in the wrong
	// hemisphere for every requested lobe).
	Sample(event *Event) (Result, bool)
	// Eval returns the BSDF value times cos(wo), for the requested
	// non-specular lobes only. Always zero for specular-only BSDFs.
	Eval(event Event) core.Vec3
	// Pdf returns the density of producing event.Wo from event.Wi under
	// Sample, restricted to the requested lobes.
	Pdf(event Event) float64
}

// AlbedoSource is implemented by BSDFs whose reflectance comes from a
// texture rather than a constant, so the integrator/tests can introspect it.
type AlbedoSource interface {
	Albedo(uv core.Vec2) core.Vec3
}

// textureOrConstant is the shared "either a texture or a flat color" knob
// every material parameter in this package uses.
type textureOrConstant struct {
	tex texture.Texture
}

func constant(c core.Vec3) textureOrConstant {
	return textureOrConstant{tex: texture.NewConstant(c)}
}

func fromTexture(t texture.Texture) textureOrConstant {
	return textureOrConstant{tex: t}
}

func (t textureOrConstant) at(uv core.Vec2) core.Vec3 {
	return t.tex.Lookup(uv)
}
