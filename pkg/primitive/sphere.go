package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// Sphere is an analytic sphere primitive.
type Sphere struct {
	shading
	Center core.Vec3
	Radius float64
}

// NewSphere creates a sphere with the given material and emission (zero
// emission for a non-emissive sphere).
func NewSphere(center core.Vec3, radius float64, material bsdf.BSDF, emission core.Vec3) *Sphere {
	return &Sphere{
		shading: shading{material: material, emission: emission},
		Center:  center,
		Radius:  radius,
	}
}

func (s *Sphere) Bounds() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

func (s *Sphere) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return Hit{}, false
		}
	}

	p := ray.At(root)
	ng := p.Subtract(s.Center).Multiply(1.0 / s.Radius)
	backFace := ng.Dot(ray.Direction) > 0

	return Hit{
		T:        root,
		Ng:       ng,
		UV:       sphereUV(ng),
		BackFace: backFace,
		PrimRef:  -1,
	}, true
}

func (s *Sphere) Occluded(ray core.Ray, tMin, tMax float64) bool {
	_, ok := s.Intersect(ray, tMin, tMax)
	return ok
}

// sphereUV is the standard spherical parameterization: u wraps longitude
// around the Z axis, v runs from the +Z pole (v=0) to the -Z pole (v=1).
func sphereUV(n core.Vec3) core.Vec2 {
	phi := math.Atan2(n.Y, n.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(core.NewVec3(0, 0, 1).Dot(n))
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

func (s *Sphere) IntersectionInfo(hit Hit) Info {
	p := s.Center.Add(hit.Ng.Multiply(s.Radius))
	return Info{Position: p, Ng: hit.Ng, Ns: hit.Ng, UV: hit.UV}
}

func (s *Sphere) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	n := hit.Ng
	theta := hit.UV.Y * math.Pi
	sinTheta := math.Sin(theta)
	if math.Abs(sinTheta) < 1e-6 {
		return core.Vec3{}, core.Vec3{}, false
	}
	// dP/dPhi, the tangent along lines of latitude.
	tangent = core.NewVec3(-n.Y, n.X, 0)
	if tangent.LengthSquared() < 1e-12 {
		return core.Vec3{}, core.Vec3{}, false
	}
	tangent = tangent.Normalize()
	bitangent = n.Cross(tangent).Normalize()
	return tangent, bitangent, true
}

func (s *Sphere) IsInfinite() bool { return false }
func (s *Sphere) IsDelta() bool    { return false }

// MakeSamplable is a no-op for spheres: area sampling is analytic.
func (s *Sphere) MakeSamplable(threadIndex int) {}

// SampleInboundDirection samples a direction from p toward the sphere using
// the standard cone-sampling technique: if p is outside the sphere, sample
// uniformly over the solid-angle cone the sphere subtends; otherwise fall
// back to uniform-sphere area sampling.
func (s *Sphere) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	toCenter := s.Center.Subtract(p)
	distSq := toCenter.LengthSquared()
	if distSq <= s.Radius*s.Radius {
		return s.sampleFromInside(p, smp)
	}

	dist := math.Sqrt(distSq)
	axis := toCenter.Multiply(1 / dist)
	sinThetaMaxSq := (s.Radius * s.Radius) / distSq
	cosThetaMax := math.Sqrt(max(0, 1-sinThetaMaxSq))

	dir := core.SampleUniformCone(axis, cosThetaMax, smp.Next2D())

	// Project onto the sphere: solve for the intersection of the ray
	// (p, dir) with the sphere to get the exact surface point.
	ray := core.NewRay(p, dir)
	hit, ok := s.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		return InboundSample{}, false
	}

	pdf := 1 / (2 * math.Pi * (1 - cosThetaMax))
	hitPoint := ray.At(hit.T)
	return InboundSample{
		Point:     hitPoint,
		Normal:    hit.Ng,
		Direction: dir,
		Distance:  hit.T,
		Pdf:       pdf,
	}, true
}

func (s *Sphere) sampleFromInside(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	n := core.SampleOnUnitSphere(smp.Next2D())
	point := s.Center.Add(n.Multiply(s.Radius))
	toPoint := point.Subtract(p)
	dist := toPoint.Length()
	if dist < 1e-9 {
		return InboundSample{}, false
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(n.Dot(dir))
	if cosTheta < 1e-6 {
		return InboundSample{}, false
	}
	area := 4 * math.Pi * s.Radius * s.Radius
	solidAnglePdf := (dist * dist) / (cosTheta * area)
	return InboundSample{
		Point:     point,
		Normal:    n,
		Direction: dir,
		Distance:  dist,
		Pdf:       solidAnglePdf,
	}, true
}

func (s *Sphere) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	n := core.SampleOnUnitSphere(smp.Next2D())
	point := s.Center.Add(n.Multiply(s.Radius))
	dir := core.SampleCosineHemisphere(n, smp.Next2D())

	area := 4 * math.Pi * s.Radius * s.Radius
	dirPdf := dir.Dot(n) / math.Pi
	return OutboundSample{
		Point:     point,
		Normal:    n,
		Direction: dir,
		AreaPdf:   1 / area,
		DirPdf:    dirPdf,
	}, true
}

// InboundPdf returns the pdf SampleInboundDirection would have produced for
// a hit at p (on the sphere) given the originating point from.
func (s *Sphere) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	toCenter := s.Center.Subtract(from)
	distSq := toCenter.LengthSquared()
	if distSq <= s.Radius*s.Radius {
		dir := p.Subtract(from)
		dist := dir.Length()
		if dist < 1e-9 {
			return 0
		}
		dir = dir.Multiply(1 / dist)
		cosTheta := math.Abs(hit.Ng.Dot(dir))
		if cosTheta < 1e-6 {
			return 0
		}
		area := 4 * math.Pi * s.Radius * s.Radius
		return (dist * dist) / (cosTheta * area)
	}

	sinThetaMaxSq := (s.Radius * s.Radius) / distSq
	cosThetaMax := math.Sqrt(max(0, 1-sinThetaMaxSq))
	if cosThetaMax >= 1 {
		return 0
	}
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}
