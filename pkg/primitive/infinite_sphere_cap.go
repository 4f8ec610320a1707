package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// InfiniteSphereCap is an InfiniteSphere restricted to a cone of directions
// around CapDirection — a distant, angularly small emitter such as a sun
// disk, sampled efficiently by cone sampling rather than full-sphere
// sampling.
type InfiniteSphereCap struct {
	CapDirection core.Vec3
	CapAngle     float64 // half-angle, radians
	Radiance     core.Vec3
	cosCapAngle  float64
}

// NewInfiniteSphereCap creates a sun-like distant emitter: constant
// radiance over a cone of half-angle capAngle (radians) around direction.
func NewInfiniteSphereCap(direction core.Vec3, capAngle float64, radiance core.Vec3) *InfiniteSphereCap {
	return &InfiniteSphereCap{
		CapDirection: direction.Normalize(),
		CapAngle:     capAngle,
		Radiance:     radiance,
		cosCapAngle:  math.Cos(capAngle),
	}
}

func (c *InfiniteSphereCap) Bounds() core.AABB {
	inf := math.Inf(1)
	return core.NewAABB(core.NewVec3(-inf, -inf, -inf), core.NewVec3(inf, inf, inf))
}

func (c *InfiniteSphereCap) inCap(d core.Vec3) bool {
	return d.Normalize().Dot(c.CapDirection) >= c.cosCapAngle
}

func (c *InfiniteSphereCap) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	if tMax < math.MaxFloat64/2 || !c.inCap(ray.Direction) {
		return Hit{}, false
	}
	return Hit{T: math.MaxFloat64, Ng: ray.Direction.Negate(), UV: core.Vec2{}, PrimRef: -1}, true
}

func (c *InfiniteSphereCap) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return false
}

func (c *InfiniteSphereCap) IntersectionInfo(hit Hit) Info {
	return Info{Position: hit.Ng.Negate().Multiply(math.MaxFloat64 / 2), Ng: hit.Ng, Ns: hit.Ng, UV: hit.UV}
}

func (c *InfiniteSphereCap) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	return core.Vec3{}, core.Vec3{}, false
}

func (c *InfiniteSphereCap) IsInfinite() bool { return true }
func (c *InfiniteSphereCap) IsDelta() bool    { return false }

func (c *InfiniteSphereCap) BSDF() bsdf.BSDF { return nil }

func (c *InfiniteSphereCap) Emission(core.Vec2) core.Vec3 { return c.Radiance }

// EmissionForDirection returns Radiance if d falls inside the cap, zero
// otherwise; used by the integrator on a miss ray.
func (c *InfiniteSphereCap) EmissionForDirection(d core.Vec3) core.Vec3 {
	if c.inCap(d) {
		return c.Radiance
	}
	return core.Vec3{}
}

func (c *InfiniteSphereCap) IsEmissive() bool {
	return c.Radiance.X > 0 || c.Radiance.Y > 0 || c.Radiance.Z > 0
}

func (c *InfiniteSphereCap) MakeSamplable(threadIndex int) {}

func (c *InfiniteSphereCap) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	dir := core.SampleUniformCone(c.CapDirection, c.cosCapAngle, smp.Next2D())
	return InboundSample{
		Point:     p.Add(dir.Multiply(math.MaxFloat64 / 2)),
		Normal:    dir.Negate(),
		Direction: dir,
		Distance:  math.Inf(1),
		Pdf:       1 / (2 * math.Pi * (1 - c.cosCapAngle)),
	}, true
}

func (c *InfiniteSphereCap) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	return OutboundSample{}, false
}

func (c *InfiniteSphereCap) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	return 1 / (2 * math.Pi * (1 - c.cosCapAngle))
}
