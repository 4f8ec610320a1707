package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// Quad is a planar rectangle defined by a corner and two edge vectors.
type Quad struct {
	shading
	Corner core.Vec3
	U, V   core.Vec3
	normal core.Vec3
	d      float64
	w      core.Vec3
	area   float64
}

// NewQuad creates a quad from a corner point and two edge vectors.
func NewQuad(corner, u, v core.Vec3, material bsdf.BSDF, emission core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()
	d := normal.Dot(corner)
	w := normal.Multiply(1.0 / normal.Dot(cross))

	return &Quad{
		shading: shading{material: material, emission: emission},
		Corner:  corner,
		U:       u,
		V:       v,
		normal:  normal,
		d:       d,
		w:       w,
		area:    cross.Length(),
	}
}

func (q *Quad) Bounds() core.AABB {
	p1 := q.Corner
	p2 := q.Corner.Add(q.U)
	p3 := q.Corner.Add(q.V)
	p4 := q.Corner.Add(q.U).Add(q.V)
	return core.NewAABBFromPoints(p1, p2, p3, p4).Expand(1e-4)
}

func (q *Quad) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	denom := ray.Direction.Dot(q.normal)
	if math.Abs(denom) < 1e-8 {
		return Hit{}, false
	}
	t := (q.d - ray.Origin.Dot(q.normal)) / denom
	if t < tMin || t > tMax {
		return Hit{}, false
	}

	p := ray.At(t)
	hitVec := p.Subtract(q.Corner)
	alpha := q.w.Dot(hitVec.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(hitVec))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return Hit{}, false
	}

	backFace := q.normal.Dot(ray.Direction) > 0
	return Hit{T: t, Ng: q.normal, UV: core.NewVec2(alpha, beta), BackFace: backFace, PrimRef: -1}, true
}

func (q *Quad) Occluded(ray core.Ray, tMin, tMax float64) bool {
	_, ok := q.Intersect(ray, tMin, tMax)
	return ok
}

func (q *Quad) IntersectionInfo(hit Hit) Info {
	p := q.Corner.Add(q.U.Multiply(hit.UV.X)).Add(q.V.Multiply(hit.UV.Y))
	return Info{Position: p, Ng: q.normal, Ns: q.normal, UV: hit.UV}
}

func (q *Quad) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	if q.U.LengthSquared() < 1e-12 || q.V.LengthSquared() < 1e-12 {
		return core.Vec3{}, core.Vec3{}, false
	}
	return q.U.Normalize(), q.V.Normalize(), true
}

func (q *Quad) IsInfinite() bool { return false }
func (q *Quad) IsDelta() bool    { return false }

func (q *Quad) MakeSamplable(threadIndex int) {}

func (q *Quad) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	uv := smp.Next2D()
	point := q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))
	toPoint := point.Subtract(p)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return InboundSample{}, false
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(q.normal.Dot(dir))
	if cosTheta < 1e-6 {
		return InboundSample{}, false
	}
	pdf := distSq / (cosTheta * q.area)
	return InboundSample{Point: point, Normal: q.normal, Direction: dir, Distance: dist, Pdf: pdf}, true
}

func (q *Quad) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	uv := smp.Next2D()
	point := q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))
	dir := core.SampleCosineHemisphere(q.normal, smp.Next2D())
	dirPdf := dir.Dot(q.normal) / math.Pi
	return OutboundSample{Point: point, Normal: q.normal, Direction: dir, AreaPdf: 1 / q.area, DirPdf: dirPdf}, true
}

func (q *Quad) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	toPoint := p.Subtract(from)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return 0
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(q.normal.Dot(dir))
	if cosTheta < 1e-6 {
		return 0
	}
	return distSq / (cosTheta * q.area)
}
