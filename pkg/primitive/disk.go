package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

// Disk is a circular planar primitive.
type Disk struct {
	shading
	Center core.Vec3
	Normal core.Vec3
	Radius float64
	right  core.Vec3
	up     core.Vec3
	area   float64
}

// NewDisk creates a disk centered at center, oriented by normal.
func NewDisk(center, normal core.Vec3, radius float64, material bsdf.BSDF, emission core.Vec3) *Disk {
	n := normal.Normalize()
	var right core.Vec3
	if math.Abs(n.X) > 0.1 {
		right = core.NewVec3(0, 1, 0)
	} else {
		right = core.NewVec3(1, 0, 0)
	}
	right = right.Cross(n).Normalize()
	up := n.Cross(right).Normalize()

	return &Disk{
		shading: shading{material: material, emission: emission},
		Center:  center,
		Normal:  n,
		Radius:  radius,
		right:   right,
		up:      up,
		area:    math.Pi * radius * radius,
	}
}

func (d *Disk) Bounds() core.AABB {
	rightExt := d.right.Multiply(d.Radius)
	upExt := d.up.Multiply(d.Radius)
	return core.NewAABBFromPoints(
		d.Center.Add(rightExt).Add(upExt),
		d.Center.Add(rightExt).Subtract(upExt),
		d.Center.Subtract(rightExt).Add(upExt),
		d.Center.Subtract(rightExt).Subtract(upExt),
	).Expand(1e-4)
}

func (d *Disk) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-8 {
		return Hit{}, false
	}
	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < tMin || t > tMax {
		return Hit{}, false
	}

	p := ray.At(t)
	toHit := p.Subtract(d.Center)
	if toHit.LengthSquared() > d.Radius*d.Radius {
		return Hit{}, false
	}

	localX := toHit.Dot(d.right)
	localY := toHit.Dot(d.up)
	u := 0.5 + localX/(2*d.Radius)
	v := 0.5 + localY/(2*d.Radius)

	backFace := d.Normal.Dot(ray.Direction) > 0
	return Hit{T: t, Ng: d.Normal, UV: core.NewVec2(u, v), BackFace: backFace, PrimRef: -1}, true
}

func (d *Disk) Occluded(ray core.Ray, tMin, tMax float64) bool {
	_, ok := d.Intersect(ray, tMin, tMax)
	return ok
}

func (d *Disk) IntersectionInfo(hit Hit) Info {
	localX := (hit.UV.X - 0.5) * 2 * d.Radius
	localY := (hit.UV.Y - 0.5) * 2 * d.Radius
	p := d.Center.Add(d.right.Multiply(localX)).Add(d.up.Multiply(localY))
	return Info{Position: p, Ng: d.Normal, Ns: d.Normal, UV: hit.UV}
}

func (d *Disk) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	return d.right, d.up, true
}

func (d *Disk) IsInfinite() bool { return false }
func (d *Disk) IsDelta() bool    { return false }

func (d *Disk) MakeSamplable(threadIndex int) {}

func (d *Disk) samplePoint(uv core.Vec2) core.Vec3 {
	r := math.Sqrt(uv.X) * d.Radius
	theta := 2 * math.Pi * uv.Y
	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	return d.Center.Add(d.right.Multiply(x)).Add(d.up.Multiply(y))
}

func (d *Disk) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	point := d.samplePoint(smp.Next2D())
	toPoint := point.Subtract(p)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return InboundSample{}, false
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(d.Normal.Dot(dir))
	if cosTheta < 1e-6 {
		return InboundSample{}, false
	}
	pdf := distSq / (cosTheta * d.area)
	return InboundSample{Point: point, Normal: d.Normal, Direction: dir, Distance: dist, Pdf: pdf}, true
}

func (d *Disk) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	point := d.samplePoint(smp.Next2D())
	dir := core.SampleCosineHemisphere(d.Normal, smp.Next2D())
	dirPdf := dir.Dot(d.Normal) / math.Pi
	return OutboundSample{Point: point, Normal: d.Normal, Direction: dir, AreaPdf: 1 / d.area, DirPdf: dirPdf}, true
}

func (d *Disk) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	toPoint := p.Subtract(from)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return 0
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(d.Normal.Dot(dir))
	if cosTheta < 1e-6 {
		return 0
	}
	return distSq / (cosTheta * d.area)
}
