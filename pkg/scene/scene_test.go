package scene

import (
	"math"
	"testing"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/primitive"
)

func testSphere(center core.Vec3, radius float64, emission core.Vec3) primitive.Primitive {
	return primitive.NewSphere(center, radius, bsdf.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), emission)
}

func TestScene_PartitionsFiniteAndInfinite(t *testing.T) {
	finite := testSphere(core.NewVec3(0, 0, 0), 1, core.Vec3{})
	infinite := primitive.NewInfiniteSphere(func(core.Vec3) core.Vec3 { return core.NewVec3(1, 1, 1) })

	s := New([]primitive.Primitive{finite, infinite}, Settings{})
	if len(s.Finite) != 1 || len(s.Infinite) != 1 {
		t.Fatalf("got %d finite, %d infinite; want 1, 1", len(s.Finite), len(s.Infinite))
	}
}

func TestScene_IntersectFindsNearestSphere(t *testing.T) {
	near := testSphere(core.NewVec3(0, 0, -5), 1, core.Vec3{})
	far := testSphere(core.NewVec3(0, 0, -10), 1, core.Vec3{})
	s := New([]primitive.Primitive{far, near}, Settings{})
	s.PrepareForRender()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	prim, hit, ok := s.Intersect(ray, 1e-4, math.MaxFloat64)
	if !ok {
		t.Fatal("expected a hit")
	}
	if prim != near {
		t.Error("expected the nearer sphere to win, got the farther one")
	}
	if math.Abs(hit.T-4) > 1e-3 {
		t.Errorf("hit.T = %v, want ~4", hit.T)
	}
}

func TestScene_OccludedDetectsBlocker(t *testing.T) {
	blocker := testSphere(core.NewVec3(0, 0, -2), 1, core.Vec3{})
	s := New([]primitive.Primitive{blocker}, Settings{})
	s.PrepareForRender()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if !s.Occluded(ray, 1e-4, 10) {
		t.Error("expected occlusion")
	}
	if s.Occluded(ray, 1e-4, 0.5) {
		t.Error("blocker is beyond tMax, should not occlude")
	}
}

func TestScene_BackgroundEmissionSumsInfinitePrimitives(t *testing.T) {
	domeA := primitive.NewInfiniteSphere(func(core.Vec3) core.Vec3 { return core.NewVec3(0.2, 0, 0) })
	domeB := primitive.NewInfiniteSphere(func(core.Vec3) core.Vec3 { return core.NewVec3(0, 0.3, 0) })
	s := New([]primitive.Primitive{domeA, domeB}, Settings{})

	got := s.BackgroundEmission(core.NewVec3(0, 0, -1))
	want := core.NewVec3(0.2, 0.3, 0)
	if got.Subtract(want).Length() > 1e-9 {
		t.Errorf("background emission = %v, want %v", got, want)
	}
}

func TestScene_EmptySceneHasNoFiniteHits(t *testing.T) {
	s := New(nil, Settings{})
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, _, ok := s.Intersect(ray, 1e-4, math.MaxFloat64); ok {
		t.Error("expected no hit in an empty scene")
	}
	if s.Occluded(ray, 1e-4, 10) {
		t.Error("expected no occlusion in an empty scene")
	}
}
