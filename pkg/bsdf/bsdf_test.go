package bsdf

import (
	"math"
	"math/rand"
	"testing"

	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
)

func newTestSampler(seed int) sampler.Sampler {
	s := sampler.NewUniform()
	s.Setup(seed, 0)
	return s
}

func randomHemisphereWi(rng *rand.Rand) core.Vec3 {
	z := 0.05 + 0.9*rng.Float64() // keep away from the grazing edge
	r := math.Sqrt(1 - z*z)
	a := 2 * math.Pi * rng.Float64()
	return core.NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

func TestLambertian_SamplePdfConsistency(t *testing.T) {
	l := NewLambertian(core.NewVec3(0.7, 0.5, 0.3))
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		wi := randomHemisphereWi(rng)
		s := newTestSampler(i)
		event := &Event{Wi: wi, RequestedLobes: All, Sampler: s}
		res, ok := l.Sample(event)
		if !ok {
			t.Fatalf("draw %d: Sample returned false for a valid hemisphere wi", i)
		}

		evalEvent := Event{Wi: wi, Wo: res.Wo, RequestedLobes: All}
		pdf := l.Pdf(evalEvent)
		if math.Abs(pdf-res.Pdf) > 1e-9 {
			t.Errorf("draw %d: pdf() = %v, want sample's pdf %v", i, pdf, res.Pdf)
		}

		eval := l.Eval(evalEvent)
		if pdf <= 0 {
			t.Fatalf("draw %d: pdf should be positive for a diffuse lobe with wo.z>0", i)
		}
		got := eval.Multiply(1 / pdf)
		if math.Abs(got.X-res.Throughput.X) > 1e-9 || math.Abs(got.Y-res.Throughput.Y) > 1e-9 || math.Abs(got.Z-res.Throughput.Z) > 1e-9 {
			t.Errorf("draw %d: eval/pdf = %v, want throughput %v", i, got, res.Throughput)
		}
	}
}

func TestLambertian_EnergyConservation(t *testing.T) {
	l := NewLambertian(core.NewVec3(0.9, 0.9, 0.9))
	wi := core.NewVec3(0, 0, 1)
	rng := rand.New(rand.NewSource(7))

	const n = 20000
	sum := core.Vec3{}
	for i := 0; i < n; i++ {
		wo := core.SampleOnUnitSphere(core.NewVec2(rng.Float64(), rng.Float64()))
		if wo.Z <= 0 {
			continue
		}
		eval := l.Eval(Event{Wi: wi, Wo: wo, RequestedLobes: All})
		// Uniform sphere pdf over the full sphere is 1/(4π); lower-hemisphere
		// draws contribute zero, so each of the n draws is weighted by 4π/n.
		sum = sum.Add(eval.Multiply(4 * math.Pi / float64(n)))
	}

	if sum.X > 1.05 || sum.Y > 1.05 || sum.Z > 1.05 {
		t.Errorf("hemisphere integral of eval = %v, want <= ~1", sum)
	}
}

func TestDielectric_SpecularHasZeroPdf(t *testing.T) {
	d := NewDielectric(1.5)
	wi := core.NewVec3(0, 0, 1)
	s := newTestSampler(1)
	res, ok := d.Sample(&Event{Wi: wi, RequestedLobes: All, Sampler: s})
	if !ok {
		t.Fatal("expected a sample")
	}
	if res.Pdf != 0 {
		t.Errorf("specular sample pdf = %v, want 0 (delta)", res.Pdf)
	}
	if res.Throughput.X <= 0 {
		t.Errorf("specular sample should carry non-zero throughput, got %v", res.Throughput)
	}
}

func TestPlastic_SpecularVsDiffuseSelection(t *testing.T) {
	p := NewPlastic(1.5, 0, core.Vec3{}, core.NewVec3(1, 1, 1))
	wi := core.NewVec3(0, 0, 0.9)

	specOnly := &Event{Wi: wi, RequestedLobes: Mask(SpecularReflect), Sampler: newTestSampler(2)}
	res, ok := p.Sample(specOnly)
	if !ok || res.Lobe != SpecularReflect || res.Pdf != 0 {
		t.Errorf("specular-only request: got %+v ok=%v, want specular lobe with pdf=0", res, ok)
	}

	diffuseOnly := &Event{Wi: wi, RequestedLobes: Mask(DiffuseReflect), Sampler: newTestSampler(3)}
	res2, ok2 := p.Sample(diffuseOnly)
	if !ok2 || res2.Lobe != DiffuseReflect || res2.Wo.Z <= 0 {
		t.Errorf("diffuse-only request: got %+v ok=%v, want cosine-weighted diffuse direction", res2, ok2)
	}
}

func TestMix_SamplePdfConsistency(t *testing.T) {
	m := NewMix(NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), NewLambertian(core.NewVec3(0.2, 0.8, 0.2)), 0.5)
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 100; i++ {
		wi := randomHemisphereWi(rng)
		s := newTestSampler(1000 + i)
		res, ok := m.Sample(&Event{Wi: wi, RequestedLobes: All, Sampler: s})
		if !ok {
			t.Fatalf("draw %d: expected a sample", i)
		}
		evalEvent := Event{Wi: wi, Wo: res.Wo, RequestedLobes: All}
		pdf := m.Pdf(evalEvent)
		if math.Abs(pdf-res.Pdf) > 1e-9 {
			t.Errorf("draw %d: pdf() = %v, want %v", i, pdf, res.Pdf)
		}
	}
}
