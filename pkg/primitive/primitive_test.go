package primitive

import (
	"math"
	"testing"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

func newTestSampler(seed int) sampler.Sampler {
	s := sampler.NewUniform()
	s.Setup(seed, 0)
	return s
}

func TestSphere_IntersectRoundTrip(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 1, bsdf.NewLambertian(core.NewVec3(1, 1, 1)), core.Vec3{})
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := s.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("T = %v, want 4", hit.T)
	}
	info := s.IntersectionInfo(hit)
	if math.Abs(info.Position.Z-1) > 1e-9 {
		t.Errorf("hit point Z = %v, want 1", info.Position.Z)
	}
}

func TestSphere_AreaSamplingMatchesPdf(t *testing.T) {
	s := NewSphere(core.NewVec3(0, 0, 0), 1, bsdf.NewLambertian(core.NewVec3(1, 1, 1)), core.NewVec3(1, 1, 1))
	from := core.NewVec3(0, 0, 5)
	smp := newTestSampler(3)

	for i := 0; i < 50; i++ {
		sample, ok := s.SampleInboundDirection(from, smp)
		if !ok {
			t.Fatalf("draw %d: expected a sample", i)
		}
		hit := Hit{Ng: sample.Normal}
		pdf := s.InboundPdf(hit, from, sample.Point)
		if math.Abs(pdf-sample.Pdf) > 1e-9 {
			t.Errorf("draw %d: InboundPdf = %v, want sample pdf %v", i, pdf, sample.Pdf)
		}
		if sample.Pdf <= 0 {
			t.Errorf("draw %d: pdf should be positive", i)
		}
	}
}

func TestQuad_AreaSamplingMatchesPdf(t *testing.T) {
	q := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), nil, core.NewVec3(5, 5, 5))
	from := core.NewVec3(0, 0, 3)
	smp := newTestSampler(11)

	for i := 0; i < 50; i++ {
		sample, ok := q.SampleInboundDirection(from, smp)
		if !ok {
			t.Fatalf("draw %d: expected a sample", i)
		}
		pdf := q.InboundPdf(Hit{}, from, sample.Point)
		if math.Abs(pdf-sample.Pdf) > 1e-9 {
			t.Errorf("draw %d: InboundPdf = %v, want sample pdf %v", i, pdf, sample.Pdf)
		}
	}
}

func TestQuad_IntersectWithinBounds(t *testing.T) {
	q := NewQuad(core.NewVec3(-1, -1, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), nil, core.Vec3{})
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := q.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("expected a hit through the quad's center")
	}
	if math.Abs(hit.T-5) > 1e-9 {
		t.Errorf("T = %v, want 5", hit.T)
	}

	missRay := core.NewRay(core.NewVec3(10, 10, 5), core.NewVec3(0, 0, -1))
	if _, ok := q.Intersect(missRay, 1e-6, math.Inf(1)); ok {
		t.Error("expected a miss outside the quad's extent")
	}
}

func TestTriangleMesh_SingleTriangleIntersect(t *testing.T) {
	verts := []core.Vec3{
		core.NewVec3(-1, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(0, 1, 0),
	}
	mesh := NewTriangleMesh(verts, []int{0, 1, 2}, nil, bsdf.NewLambertian(core.NewVec3(1, 1, 1)), core.Vec3{}, DefaultSmoothingThreshold)

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := mesh.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("expected a hit")
	}
	info := mesh.IntersectionInfo(hit)
	if math.Abs(info.Position.Z) > 1e-9 {
		t.Errorf("hit Z = %v, want 0", info.Position.Z)
	}
}

func TestTriangleMesh_SmoothingBlendsCoplanarFaces(t *testing.T) {
	// Two coplanar triangles sharing an edge: smoothed normals must equal
	// the shared flat normal everywhere.
	verts := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	mesh := NewTriangleMesh(verts, indices, nil, bsdf.NewLambertian(core.NewVec3(1, 1, 1)), core.Vec3{}, DefaultSmoothingThreshold)

	ray := core.NewRay(core.NewVec3(0.5, 0.5, 5), core.NewVec3(0, 0, -1))
	hit, ok := mesh.Intersect(ray, 1e-6, math.Inf(1))
	if !ok {
		t.Fatal("expected a hit")
	}
	info := mesh.IntersectionInfo(hit)
	if math.Abs(info.Ns.Z-1) > 1e-9 {
		t.Errorf("smoothed normal = %v, want (0,0,1)", info.Ns)
	}
}

func TestLightSampler_SelectsOnlyEmissive(t *testing.T) {
	dark := NewSphere(core.NewVec3(0, 0, 0), 1, bsdf.NewLambertian(core.NewVec3(1, 1, 1)), core.Vec3{})
	bright := NewSphere(core.NewVec3(5, 0, 0), 1, nil, core.NewVec3(10, 10, 10))
	ls := NewLightSampler([]Primitive{dark, bright}, func(p Primitive) float64 { return 1 })

	if ls.Empty() {
		t.Fatal("expected one emissive light")
	}
	bright.MakeSamplable(0)
	smp := newTestSampler(5)
	light, _, pdf, ok := ls.Sample(core.NewVec3(0, 0, 10), smp)
	if !ok {
		t.Fatal("expected a light sample")
	}
	if light != Primitive(bright) {
		t.Error("sampler should only ever pick the emissive sphere")
	}
	if pdf <= 0 {
		t.Error("expected a positive combined pdf")
	}
}
