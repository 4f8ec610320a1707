package integrator

import (
	"math"

	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/camera"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/driver"
	"github.com/biofag/tungsten/pkg/primitive"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/scene"
)

// PathTracer is a unidirectional path tracer: next-event estimation at
// every diffuse/glossy vertex, power-heuristic MIS against BSDF sampling,
// and luminance-driven Russian roulette once a path is deep enough.
//
// A PathTracer holds no mutable state of its own — Scene and Camera are
// shared, immutable once PrepareForRender has run — so Clone is a cheap
// shallow copy, one per render-pool worker.
type PathTracer struct {
	scene  *scene.Scene
	cam    *camera.Camera
	width  int
	height int

	maxDepth                  int
	russianRouletteMinBounces int
	russianRouletteMinSamples int
}

// New creates a path tracer rendering width×height pixels of scn through
// cam, bouncing rays up to maxDepth times.
func New(scn *scene.Scene, cam *camera.Camera, width, height, maxDepth int) *PathTracer {
	return &PathTracer{
		scene:                     scn,
		cam:                       cam,
		width:                     width,
		height:                    height,
		maxDepth:                  maxDepth,
		russianRouletteMinBounces: 3,
		russianRouletteMinSamples: 1,
	}
}

// Clone returns an independent PathTracer sharing the same immutable scene
// and camera, satisfying driver.Integrator's per-worker isolation contract.
func (pt *PathTracer) Clone() driver.Integrator {
	clone := *pt
	return &clone
}

// TraceSample generates one jittered primary ray through pixel (x, y) and
// returns its radiance estimate.
func (pt *PathTracer) TraceSample(x, y int, smp, supplemental sampler.Sampler) core.Vec3 {
	jitter := smp.Next2D()
	s := (float64(x) + jitter.X) / float64(pt.width)
	t := 1 - (float64(y)+jitter.Y)/float64(pt.height)
	ray := pt.cam.Ray(s, t)

	return pt.trace(ray, smp, supplemental, pt.maxDepth, core.NewVec3(1, 1, 1), 0, 0)
}

// trace recursively estimates radiance along ray, tracking throughput and
// the number of bounces taken so far for Russian roulette. incomingBsdfPdf
// is the pdf the BSDF sample that produced ray was drawn with (0 for the
// primary ray or a delta bounce), used to MIS-weight emission found here
// against the same light being chosen directly by next-event estimation.
func (pt *PathTracer) trace(ray core.Ray, smp, supplemental sampler.Sampler, depthRemaining int, throughput core.Vec3, bounce int, incomingBsdfPdf float64) core.Vec3 {
	if depthRemaining <= 0 {
		return black
	}

	terminate, compensation := pt.russianRoulette(bounce, throughput, supplemental)
	if terminate {
		return black
	}

	prim, hit, ok := pt.scene.Intersect(ray, shadowEpsilon, math.MaxFloat64)
	if !ok {
		return pt.scene.BackgroundEmission(ray.Direction.Normalize()).Multiply(compensation)
	}

	info := prim.IntersectionInfo(hit)
	emitted := black
	if prim.IsEmissive() {
		emitted = prim.Emission(info.UV)
		if bounce > 0 && incomingBsdfPdf > 0 {
			if lightPdf := pt.scene.Lights.Pdf(prim, hit, ray.Origin, info.Position); lightPdf > 0 {
				misWeight := core.PowerHeuristic(1, incomingBsdfPdf, 1, lightPdf)
				emitted = emitted.Multiply(misWeight)
			}
		}
	}

	b := prim.BSDF()
	if b == nil {
		return emitted.Multiply(compensation)
	}

	tangent, bitangent, ok := prim.TangentSpace(hit)
	if !ok {
		return emitted.Multiply(compensation)
	}
	frame := core.NewFrame(tangent, bitangent, info.Ns)
	wi := frame.ToLocal(ray.Direction.Negate().Normalize())

	direct := pt.directLighting(prim, info, frame, wi, b, smp)

	event := &bsdf.Event{Wi: wi, RequestedLobes: bsdf.All, UV: info.UV, Sampler: smp}
	result, sampled := b.Sample(event)
	if !sampled {
		return emitted.Add(direct).Multiply(compensation)
	}

	worldWo := frame.ToWorld(result.Wo).Normalize()
	bounceOrigin := info.Position.Add(offsetAlong(info.Ng, worldWo))
	nextRay := core.NewRay(bounceOrigin, worldWo)
	newThroughput := throughput.MultiplyVec(result.Throughput)

	next := pt.trace(nextRay, smp, supplemental, depthRemaining-1, newThroughput, bounce+1, result.Pdf)
	indirect := result.Throughput.MultiplyVec(next)

	return emitted.Add(direct).Add(indirect).Multiply(compensation)
}

// directLighting estimates next-event-estimated illumination at the
// current vertex: sample a light, evaluate the BSDF toward it, combine
// with a shadow test and the power-heuristic MIS weight.
func (pt *PathTracer) directLighting(prim primitive.Primitive, info primitive.Info, frame core.Frame, wi core.Vec3, b bsdf.BSDF, smp sampler.Sampler) core.Vec3 {
	if pt.scene.Lights.Empty() {
		return black
	}

	light, sample, lightPdf, ok := pt.scene.Lights.Sample(info.Position, smp)
	if !ok || lightPdf <= 0 {
		return black
	}

	wo := frame.ToLocal(sample.Direction)
	if wo.Z <= 0 {
		return black
	}

	maxDist := sample.Distance - shadowEpsilon
	if maxDist <= shadowEpsilon {
		return black
	}
	shadowOrigin := info.Position.Add(offsetAlong(info.Ng, sample.Direction))
	shadowRay := core.NewRay(shadowOrigin, sample.Direction)
	if pt.scene.Occluded(shadowRay, shadowEpsilon, maxDist) {
		return black
	}

	event := bsdf.Event{Wi: wi, Wo: wo, RequestedLobes: bsdf.All, UV: info.UV}
	f := b.Eval(event)
	if f.X == 0 && f.Y == 0 && f.Z == 0 {
		return black
	}

	bsdfPdf := b.Pdf(event)
	misWeight := core.PowerHeuristic(1, lightPdf, 1, bsdfPdf)
	emission := light.Emission(core.Vec2{})

	return f.MultiplyVec(emission).Multiply(misWeight / lightPdf)
}

// russianRoulette decides whether a path should terminate once it has made
// enough bounces (the sample count is not consulted), and returns the energy-conserving compensation
// factor to multiply everything gathered from this vertex onward by.
func (pt *PathTracer) russianRoulette(bounce int, throughput core.Vec3, supplemental sampler.Sampler) (bool, float64) {
	if bounce < pt.russianRouletteMinBounces {
		return false, 1
	}
	survival := math.Min(0.95, math.Max(0.05, throughput.Luminance()))
	if supplemental.Next1D() > survival {
		return true, 0
	}
	return false, 1 / survival
}

// offsetAlong nudges a ray origin off the surface along the geometric
// normal, on the same side as direction, to avoid self-intersection.
func offsetAlong(ng, direction core.Vec3) core.Vec3 {
	if ng.Dot(direction) < 0 {
		return ng.Multiply(-shadowEpsilon)
	}
	return ng.Multiply(shadowEpsilon)
}
