package integrator

import (
	"math"
	"testing"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/camera"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/primitive"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/scene"
)

func newCornellishScene() (*scene.Scene, *camera.Camera) {
	floor := primitive.NewQuad(core.NewVec3(-2, -1, -4), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, 4),
		bsdf.NewLambertian(core.NewVec3(0.7, 0.7, 0.7)), core.Vec3{})
	light := primitive.NewQuad(core.NewVec3(-0.5, 1.99, -3), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1),
		bsdf.NewLambertian(core.Vec3{}), core.NewVec3(15, 15, 15))
	sphere := primitive.NewSphere(core.NewVec3(0, -0.3, -3), 0.7,
		bsdf.NewLambertian(core.NewVec3(0.6, 0.2, 0.2)), core.Vec3{})

	s := scene.New([]primitive.Primitive{floor, light, sphere}, scene.Settings{Width: 8, Height: 8, MaxDepth: 6})
	s.PrepareForRender()
	cam := camera.New(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 60, 1)
	return s, cam
}

func TestPathTracer_TraceSampleIsFiniteAndNonNegative(t *testing.T) {
	s, cam := newCornellishScene()
	pt := New(s, cam, 8, 8, 6)
	smp, supplemental := sampler.NewUniform(), sampler.NewUniformWithSalt(sampler.SupplementalSalt)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			smp.Setup(y*8+x, 0)
			supplemental.Setup(y*8+x, 0)
			c := pt.TraceSample(x, y, smp, supplemental)
			if math.IsNaN(c.X) || math.IsInf(c.X, 0) || c.X < 0 ||
				math.IsNaN(c.Y) || math.IsInf(c.Y, 0) || c.Y < 0 ||
				math.IsNaN(c.Z) || math.IsInf(c.Z, 0) || c.Z < 0 {
				t.Fatalf("pixel (%d,%d) produced invalid radiance %v", x, y, c)
			}
		}
	}
}

func TestPathTracer_BackgroundEmissionOnMiss(t *testing.T) {
	dome := primitive.NewInfiniteSphere(func(core.Vec3) core.Vec3 { return core.NewVec3(0.3, 0.3, 0.3) })
	s := scene.New([]primitive.Primitive{dome}, scene.Settings{Width: 4, Height: 4, MaxDepth: 4})
	s.PrepareForRender()
	cam := camera.New(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 60, 1)
	pt := New(s, cam, 4, 4, 4)

	smp, supplemental := sampler.NewUniform(), sampler.NewUniformWithSalt(sampler.SupplementalSalt)
	smp.Setup(0, 0)
	supplemental.Setup(0, 0)
	got := pt.TraceSample(2, 2, smp, supplemental)
	if got.Subtract(core.NewVec3(0.3, 0.3, 0.3)).Length() > 1e-9 {
		t.Errorf("got %v, want the dome's uniform emission (0.3,0.3,0.3)", got)
	}
}

func TestPathTracer_CloneIsIndependent(t *testing.T) {
	s, cam := newCornellishScene()
	pt := New(s, cam, 8, 8, 6)
	clone := pt.Clone()

	clonePt, ok := clone.(*PathTracer)
	if !ok {
		t.Fatalf("Clone returned %T, want *PathTracer", clone)
	}
	if clonePt == pt {
		t.Error("Clone should not return the same instance")
	}
}
