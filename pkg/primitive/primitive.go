// Package primitive implements ray-intersectable geometry: triangle
// meshes and analytic shapes, each exposing intersection, tangent-space
// derivation, and an area-sampling suite for use as emissive geometry.
package primitive

import (
	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// Hit is the result of Intersect: everything needed to later derive
// shading info without re-walking the acceleration structure.
type Hit struct {
	T        float64
	Ng       core.Vec3 // geometric normal
	UV       core.Vec2
	BackFace bool // Ng·dir > 0
	PrimRef  int  // primitive-internal reference (e.g. triangle index); -1 if unused
}

// Info is the richer per-hit surface record intersectionInfo builds.
type Info struct {
	Position core.Vec3
	Ng       core.Vec3
	Ns       core.Vec3 // shading normal; equals Ng unless the mesh is smooth
	UV       core.Vec2
}

// InboundSample is what SampleInboundDirection returns: a point on the
// primitive visible from the shading point, with its solid-angle pdf.
type InboundSample struct {
	Point     core.Vec3
	Normal    core.Vec3
	Direction core.Vec3 // normalize(Point - from)
	Distance  float64
	Pdf       float64
}

// OutboundSample is what SampleOutboundDirection returns: an emission
// point and a cosine-weighted direction in its local frame.
type OutboundSample struct {
	Point     core.Vec3
	Normal    core.Vec3
	Direction core.Vec3
	AreaPdf   float64
	DirPdf    float64
}

// Primitive is a geometric object addressable for ray queries and,
// optionally, area sampling for emissive use.
type Primitive interface {
	Bounds() core.AABB
	Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool)
	Occluded(ray core.Ray, tMin, tMax float64) bool
	IntersectionInfo(hit Hit) Info
	// TangentSpace returns false when the UV Jacobian determinant of the
	// hit triangle is below 1e-6.
	TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool)

	IsInfinite() bool
	IsDelta() bool

	BSDF() bsdf.BSDF
	// Emission returns the emitted radiance at uv; zero for non-emissive
	// primitives.
	Emission(uv core.Vec2) core.Vec3
	IsEmissive() bool

	// MakeSamplable builds the area-sampling distribution once; must be
	// called from prepareForRender (single-threaded).
	MakeSamplable(threadIndex int)
	SampleInboundDirection(p core.Vec3, s sampler.Sampler) (InboundSample, bool)
	SampleOutboundDirection(s sampler.Sampler) (OutboundSample, bool)
	// InboundPdf is the pdf SampleInboundDirection would have produced
	// for a hit at p, seen from point from.
	InboundPdf(hit Hit, from, p core.Vec3) float64
}
