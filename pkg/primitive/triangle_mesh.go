package primitive

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/texture"
)

// DefaultSmoothingThreshold is the dihedral angle (radians) below which two
// adjacent faces are blended into a shared shading normal. Faces meeting at
// a sharper angle than this keep a hard edge.
const DefaultSmoothingThreshold = math.Pi * 0.15

type face struct {
	v0, v1, v2 int
	normal     core.Vec3
	area       float64
}

// TriangleMesh is an indexed triangle mesh with its own internal BVH and,
// optionally, per-corner smoothed shading normals.
type TriangleMesh struct {
	shading
	vertices  []core.Vec3
	uvs       []core.Vec2 // optional, nil if the mesh has no UVs
	faces     []face
	cornerNs  [][3]core.Vec3 // per-face, per-corner shading normal
	bvh       *core.BVH
	bounds    core.AABB
	totalArea float64
	areaDist  *texture.Distribution1D
}

type meshBoundable struct {
	mesh *TriangleMesh
	idx  int
}

func (mb meshBoundable) Bounds() core.AABB {
	f := mb.mesh.faces[mb.idx]
	return core.NewAABBFromPoints(mb.mesh.vertices[f.v0], mb.mesh.vertices[f.v1], mb.mesh.vertices[f.v2])
}

// NewTriangleMesh builds a mesh from vertices and a flat face-index list
// (each run of 3 indices is one triangle). smoothingThreshold controls
// normal smoothing across face corners; pass DefaultSmoothingThreshold for
// the usual behavior, or 0 to force flat (hard-edged) shading everywhere.
func NewTriangleMesh(vertices []core.Vec3, indices []int, uvs []core.Vec2, material bsdf.BSDF, emission core.Vec3, smoothingThreshold float64) *TriangleMesh {
	if len(indices)%3 != 0 {
		panic("triangle mesh face indices must be a multiple of 3")
	}
	numFaces := len(indices) / 3

	m := &TriangleMesh{
		shading:  shading{material: material, emission: emission},
		vertices: vertices,
		uvs:      uvs,
		faces:    make([]face, numFaces),
	}

	for i := 0; i < numFaces; i++ {
		v0, v1, v2 := indices[i*3], indices[i*3+1], indices[i*3+2]
		e1 := vertices[v1].Subtract(vertices[v0])
		e2 := vertices[v2].Subtract(vertices[v0])
		cross := e1.Cross(e2)
		area := cross.Length() * 0.5
		normal := cross.Normalize()
		m.faces[i] = face{v0: v0, v1: v1, v2: v2, normal: normal, area: area}
	}

	m.computeCornerNormals(smoothingThreshold)

	boundables := make([]core.Boundable, numFaces)
	for i := range m.faces {
		boundables[i] = meshBoundable{mesh: m, idx: i}
	}
	m.bvh = core.NewBVH(boundables)

	if numFaces > 0 {
		m.bounds = boundables[0].Bounds()
		for _, b := range boundables[1:] {
			m.bounds = m.bounds.Union(b.Bounds())
		}
	}

	for _, f := range m.faces {
		m.totalArea += f.area
	}

	return m
}

// computeCornerNormals assigns each face corner a shading normal averaged
// over the faces incident to that vertex whose normal is within threshold
// radians of the corner's own face normal.
func (m *TriangleMesh) computeCornerNormals(threshold float64) {
	m.cornerNs = make([][3]core.Vec3, len(m.faces))

	incident := make(map[int][]int)
	for fi, f := range m.faces {
		incident[f.v0] = append(incident[f.v0], fi)
		incident[f.v1] = append(incident[f.v1], fi)
		incident[f.v2] = append(incident[f.v2], fi)
	}

	cosThreshold := math.Cos(threshold)

	vertexOf := func(f face, corner int) int {
		switch corner {
		case 0:
			return f.v0
		case 1:
			return f.v1
		default:
			return f.v2
		}
	}

	for fi, f := range m.faces {
		for corner := 0; corner < 3; corner++ {
			v := vertexOf(f, corner)
			sum := core.Vec3{}
			for _, other := range incident[v] {
				of := m.faces[other]
				if of.normal.Dot(f.normal) >= cosThreshold {
					sum = sum.Add(of.normal.Multiply(of.area))
				}
			}
			if sum.LengthSquared() < 1e-18 {
				m.cornerNs[fi][corner] = f.normal
			} else {
				m.cornerNs[fi][corner] = sum.Normalize()
			}
		}
	}
}

func (m *TriangleMesh) Bounds() core.AABB { return m.bounds }

// intersectFace runs Möller-Trumbore against face index fi, returning the
// hit distance and barycentric (u, v) for vertices v1 and v2.
func (m *TriangleMesh) intersectFace(fi int, ray core.Ray, tMin, tMax float64) (t, u, v float64, ok bool) {
	const epsilon = 1e-8
	f := m.faces[fi]
	v0, v1, v2 := m.vertices[f.v0], m.vertices[f.v1], m.vertices[f.v2]

	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, 0, 0, false
	}
	invA := 1.0 / a
	s := ray.Origin.Subtract(v0)
	u = invA * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := s.Cross(edge1)
	v = invA * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	t = invA * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

func (m *TriangleMesh) Intersect(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	item, _, ok := m.bvh.Hit(ray, tMin, tMax, func(item int, lo, hi float64) (float64, bool) {
		t, _, _, ok := m.intersectFace(item, ray, lo, hi)
		return t, ok
	})
	if !ok {
		return Hit{}, false
	}

	t, u, v, _ := m.intersectFace(item, ray, tMin, tMax)
	f := m.faces[item]
	backFace := f.normal.Dot(ray.Direction) > 0

	// UV holds the raw barycentric (u, v) pair; IntersectionInfo derives
	// position, shading normal, and (if present) texture UV from it.
	return Hit{T: t, Ng: f.normal, UV: core.NewVec2(u, v), BackFace: backFace, PrimRef: item}, true
}

func (m *TriangleMesh) Occluded(ray core.Ray, tMin, tMax float64) bool {
	return m.bvh.Occluded(ray, tMin, tMax, func(item int, lo, hi float64) bool {
		_, _, _, ok := m.intersectFace(item, ray, lo, hi)
		return ok
	})
}

func (m *TriangleMesh) IntersectionInfo(hit Hit) Info {
	f := m.faces[hit.PrimRef]
	v0, v1, v2 := m.vertices[f.v0], m.vertices[f.v1], m.vertices[f.v2]
	u, v := hit.UV.X, hit.UV.Y
	w := 1 - u - v

	position := v0.Multiply(w).Add(v1.Multiply(u)).Add(v2.Multiply(v))

	ns := m.cornerNs[hit.PrimRef]
	shadingNormal := ns[0].Multiply(w).Add(ns[1].Multiply(u)).Add(ns[2].Multiply(v))
	if shadingNormal.LengthSquared() < 1e-18 {
		shadingNormal = f.normal
	} else {
		shadingNormal = shadingNormal.Normalize()
	}

	uv := hit.UV
	if m.uvs != nil {
		uv0, uv1, uv2 := m.uvs[f.v0], m.uvs[f.v1], m.uvs[f.v2]
		uv = uv0.Multiply(w).Add(uv1.Multiply(u)).Add(uv2.Multiply(v))
	}

	return Info{Position: position, Ng: f.normal, Ns: shadingNormal, UV: uv}
}

func (m *TriangleMesh) TangentSpace(hit Hit) (tangent, bitangent core.Vec3, ok bool) {
	f := m.faces[hit.PrimRef]
	v0, v1, v2 := m.vertices[f.v0], m.vertices[f.v1], m.vertices[f.v2]

	if m.uvs == nil {
		tangent = v1.Subtract(v0)
		if tangent.LengthSquared() < 1e-12 {
			return core.Vec3{}, core.Vec3{}, false
		}
		tangent = tangent.Normalize()
		bitangent = f.normal.Cross(tangent).Normalize()
		return tangent, bitangent, true
	}

	uv0, uv1, uv2 := m.uvs[f.v0], m.uvs[f.v1], m.uvs[f.v2]
	duv1 := uv1.Subtract(uv0)
	duv2 := uv2.Subtract(uv0)
	det := duv1.X*duv2.Y - duv2.X*duv1.Y
	if math.Abs(det) < 1e-6 {
		return core.Vec3{}, core.Vec3{}, false
	}

	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)
	invDet := 1 / det
	tangent = e1.Multiply(duv2.Y * invDet).Subtract(e2.Multiply(duv1.Y * invDet))
	if tangent.LengthSquared() < 1e-12 {
		return core.Vec3{}, core.Vec3{}, false
	}
	tangent = tangent.Normalize()
	bitangent = f.normal.Cross(tangent).Normalize()
	return tangent, bitangent, true
}

func (m *TriangleMesh) IsInfinite() bool { return false }
func (m *TriangleMesh) IsDelta() bool    { return false }

// MakeSamplable builds the per-triangle area distribution used for
// emissive sampling. Must run single-threaded during scene preparation.
func (m *TriangleMesh) MakeSamplable(threadIndex int) {
	if m.areaDist != nil {
		return
	}
	weights := make([]float64, len(m.faces))
	for i, f := range m.faces {
		weights[i] = f.area
	}
	m.areaDist = texture.NewDistribution1D(weights)
}

func (m *TriangleMesh) sampleFacePoint(fi int, uv core.Vec2) (core.Vec3, core.Vec3) {
	f := m.faces[fi]
	v0, v1, v2 := m.vertices[f.v0], m.vertices[f.v1], m.vertices[f.v2]
	su0 := math.Sqrt(uv.X)
	b0 := 1 - su0
	b1 := uv.Y * su0
	point := v0.Multiply(b0).Add(v1.Multiply(b1)).Add(v2.Multiply(1 - b0 - b1))
	return point, f.normal
}

func (m *TriangleMesh) SampleInboundDirection(p core.Vec3, smp sampler.Sampler) (InboundSample, bool) {
	if m.areaDist == nil || m.totalArea <= 0 {
		return InboundSample{}, false
	}
	_, fi, _ := m.areaDist.SampleContinuous(smp.Next1D())
	point, normal := m.sampleFacePoint(fi, smp.Next2D())

	toPoint := point.Subtract(p)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return InboundSample{}, false
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(normal.Dot(dir))
	if cosTheta < 1e-6 {
		return InboundSample{}, false
	}
	pdf := distSq / (cosTheta * m.totalArea)
	return InboundSample{Point: point, Normal: normal, Direction: dir, Distance: dist, Pdf: pdf}, true
}

func (m *TriangleMesh) SampleOutboundDirection(smp sampler.Sampler) (OutboundSample, bool) {
	if m.areaDist == nil || m.totalArea <= 0 {
		return OutboundSample{}, false
	}
	_, fi, _ := m.areaDist.SampleContinuous(smp.Next1D())
	point, normal := m.sampleFacePoint(fi, smp.Next2D())
	dir := core.SampleCosineHemisphere(normal, smp.Next2D())
	dirPdf := dir.Dot(normal) / math.Pi
	return OutboundSample{Point: point, Normal: normal, Direction: dir, AreaPdf: 1 / m.totalArea, DirPdf: dirPdf}, true
}

func (m *TriangleMesh) InboundPdf(hit Hit, from, p core.Vec3) float64 {
	if m.totalArea <= 0 {
		return 0
	}
	toPoint := p.Subtract(from)
	distSq := toPoint.LengthSquared()
	dist := math.Sqrt(distSq)
	if dist < 1e-9 {
		return 0
	}
	dir := toPoint.Multiply(1 / dist)
	cosTheta := math.Abs(hit.Ng.Dot(dir))
	if cosTheta < 1e-6 {
		return 0
	}
	return distSq / (cosTheta * m.totalArea)
}
