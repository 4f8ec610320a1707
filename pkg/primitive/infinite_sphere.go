package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// InfiniteSphere is a background dome that always intersects any ray: it
// has no geometric surface, only a direction-keyed radiance function
// (typically an environment-map lookup). It carries no BSDF — rays that
// hit it terminate the path.
type InfiniteSphere struct {
	emit func(direction core.Vec3) core.Vec3
}

// NewInfiniteSphere creates a background dome whose radiance in a given
// direction is computed by emit.
func NewInfiniteSphere(emit func(direction core.Vec3) core.Vec3) *InfiniteSphere {
	return &InfiniteSphere{emit: emit}
}

func (s *InfiniteSphere) Bounds() core.AABB {
	inf := math.Inf(1)
	return core.NewAABB(core.NewVec3(-inf, -inf, -inf), core.NewVec3(inf, inf, inf))
}

func (s *InfiniteSphere) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	if tMax < math.MaxFloat64/2 {
		return Hit{}, false
	}
	return Hit{T: math.MaxFloat64, Ng: ray.Direction.Negate(), UV: directionToEquirect(ray.Direction), PrimRef: -1}, true
}

func (s *InfiniteSphere) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return false
}

// directionToEquirect and its inverse equirectToDirection let emission be
// keyed either by a stored UV (Emission) or the live ray direction
// (EmissionForDirection) without duplicating the environment lookup.
func directionToEquirect(d core.Vec3) core.Vec2 {
	phi := math.Atan2(d.Y, d.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(core.NewVec3(0, 0, 1).Dot(d.Normalize()))
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

func equirectToDirection(uv core.Vec2) core.Vec3 {
	phi := uv.X * 2 * math.Pi
	theta := uv.Y * math.Pi
	sinTheta := math.Sin(theta)
	return core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), math.Cos(theta))
}

func (s *InfiniteSphere) IntersectionInfo(hit Hit) Info {
	return Info{Position: hit.Ng.Negate().Multiply(math.MaxFloat64 / 2), Ng: hit.Ng, Ns: hit.Ng, UV: hit.UV}
}

func (s *InfiniteSphere) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	return core.Vec3{}, core.Vec3{}, false
}

func (s *InfiniteSphere) IsInfinite() bool { return true }
func (s *InfiniteSphere) IsDelta() bool    { return false }

func (s *InfiniteSphere) BSDF() bsdf.BSDF { return nil }

func (s *InfiniteSphere) Emission(uv core.Vec2) core.Vec3 {
	if s.emit == nil {
		return core.Vec3{}
	}
	return s.emit(equirectToDirection(uv))
}

// EmissionForDirection evaluates the dome's radiance directly, skipping
// the UV round-trip; the integrator uses this on a miss ray.
func (s *InfiniteSphere) EmissionForDirection(d core.Vec3) core.Vec3 {
	if s.emit == nil {
		return core.Vec3{}
	}
	return s.emit(d)
}

func (s *InfiniteSphere) IsEmissive() bool { return s.emit != nil }

func (s *InfiniteSphere) MakeSamplable(threadIndex int) {}

func (s *InfiniteSphere) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	dir := core.SampleOnUnitSphere(smp.Next2D())
	return InboundSample{
		Point:     p.Add(dir.Multiply(math.MaxFloat64 / 2)),
		Normal:    dir.Negate(),
		Direction: dir,
		Distance:  math.Inf(1),
		Pdf:       1 / (4 * math.Pi),
	}, true
}

func (s *InfiniteSphere) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	return OutboundSample{}, false
}

func (s *InfiniteSphere) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	return 1 / (4 * math.Pi)
}
