// Package scene materializes a declarative scene document into the
// immutable object graph the renderer walks: a BVH over finite
// primitives, the infinite (background) primitives kept outside it, a
// light sampler weighted by emission luminance, and the renderer settings governing how
// it should be sampled.
package scene

import (
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/primitive"
)

// Settings holds the renderer-facing knobs named in the scene document:
// sample budget, sampler variant, adaptive sampling toggle, and the
// resume/output paths the CLI surface reads back.
type Settings struct {
	Width, Height int
	Spp           int
	UseSobol      bool

	UseAdaptiveSampling bool
	AdaptiveThreshold   int // warm-up spp_from floor below which sampling stays uniform
	VarianceTileSize    int
	TileSize            int
	MaxDepth            int

	OutputPath string
	ResumeFile string
}

// Scene is the fully materialized, immutable-after-PrepareForRender object
// graph: every primitive, partitioned into the spatial index (finite) and
// the background/dome set (infinite, whose bounds are useless to a BVH).
type Scene struct {
	Finite   []primitive.Primitive
	Infinite []primitive.Primitive
	Lights   *primitive.LightSampler
	Settings Settings

	bvh *core.BVH
}

type boundablePrimitive struct{ primitive.Primitive }

// New partitions prims into finite/infinite sets, builds the spatial
// index over the finite set, and builds a light sampler over every
// emissive primitive (finite or infinite).
func New(prims []primitive.Primitive, settings Settings) *Scene {
	s := &Scene{Settings: settings}
	for _, p := range prims {
		if p.IsInfinite() {
			s.Infinite = append(s.Infinite, p)
		} else {
			s.Finite = append(s.Finite, p)
		}
	}

	if len(s.Finite) > 0 {
		boundables := make([]core.Boundable, len(s.Finite))
		for i, p := range s.Finite {
			boundables[i] = boundablePrimitive{p}
		}
		s.bvh = core.NewBVH(boundables)
	}

	all := make([]primitive.Primitive, 0, len(s.Finite)+len(s.Infinite))
	all = append(all, s.Finite...)
	all = append(all, s.Infinite...)
	s.Lights = primitive.NewLightSampler(all, lightWeight)

	return s
}

// lightWeight estimates a light's selection weight from its emitted
// radiance's luminance. Primitives expose no analytic area, so every
// light with nonzero emission is otherwise weighted equally; brighter
// lights still dominate pure-luminance comparisons, which is the common
// case (e.g. one bright quad vs. a dim one of similar size).
func lightWeight(p primitive.Primitive) float64 {
	l := p.Emission(core.NewVec2(0.5, 0.5)).Luminance()
	if l <= 0 {
		return 1
	}
	return l
}

// PrepareForRender must run single-threaded before any worker touches the
// scene: it builds every primitive's area-sampling distribution once.
func (s *Scene) PrepareForRender() {
	for i, p := range s.Finite {
		p.MakeSamplable(i)
	}
	for i, p := range s.Infinite {
		p.MakeSamplable(i)
	}
}

// Intersect finds the closest finite-primitive hit in (tMin, tMax].
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (primitive.Primitive, primitive.Hit, bool) {
	if s.bvh == nil {
		return nil, primitive.Hit{}, false
	}
	item, t, ok := s.bvh.Hit(ray, tMin, tMax, func(item int, lo, hi float64) (float64, bool) {
		h, ok := s.Finite[item].Intersect(ray, lo, hi)
		if !ok {
			return 0, false
		}
		return h.T, true
	})
	if !ok {
		return nil, primitive.Hit{}, false
	}
	hit, _ := s.Finite[item].Intersect(ray, tMin, t+1e-6)
	return s.Finite[item], hit, true
}

// Occluded is a shadow-ray query against the finite primitive set only —
// infinite primitives never block anything.
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if s.bvh == nil {
		return false
	}
	return s.bvh.Occluded(ray, tMin, tMax, func(item int, lo, hi float64) bool {
		return s.Finite[item].Occluded(ray, lo, hi)
	})
}

// directionalEmitter is implemented by infinite primitives (InfiniteSphere,
// InfiniteSphereCap) that can evaluate their radiance directly from a
// direction, skipping the hit/UV round-trip on a miss ray.
type directionalEmitter interface {
	EmissionForDirection(d core.Vec3) core.Vec3
}

// BackgroundEmission sums every infinite primitive's contribution along a
// ray that escaped the finite geometry.
func (s *Scene) BackgroundEmission(direction core.Vec3) core.Vec3 {
	sum := core.Vec3{}
	for _, p := range s.Infinite {
		if de, ok := p.(directionalEmitter); ok {
			sum = sum.Add(de.EmissionForDirection(direction))
		}
	}
	return sum
}
