package primitive

import (
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/texture"
)

// LightSampler selects among a scene's emissive primitives for
// next-event estimation, weighting each by its total emitted power so
// brighter lights are sampled more often.
type LightSampler struct {
	lights []Primitive
	dist   *texture.Distribution1D
}

// NewLightSampler builds a power-weighted sampler over primitives,
// filtered to IsEmissive(). weight estimates a primitive's total power
// (e.g. luminance(emission) * area); callers without an area estimate can
// pass a function that always returns 1 for uniform selection.
func NewLightSampler(primitives []Primitive, weight func(Primitive) float64) *LightSampler {
	var lights []Primitive
	var weights []float64
	for _, p := range primitives {
		if !p.IsEmissive() {
			continue
		}
		lights = append(lights, p)
		weights = append(weights, weight(p))
	}
	if len(lights) == 0 {
		return &LightSampler{}
	}
	return &LightSampler{lights: lights, dist: texture.NewDistribution1D(weights)}
}

// Empty reports whether the scene has no emissive primitives.
func (ls *LightSampler) Empty() bool { return len(ls.lights) == 0 }

// Sample picks a light and a point on it visible (in solid angle) from p,
// returning the chosen light, its area sample, and the combined pdf
// (light-selection probability × solid-angle pdf) — the quantity NEE needs
// in its denominator.
func (ls *LightSampler) Sample(p core.Vec3, smp sampler.Sampler) (Primitive, InboundSample, float64, bool) {
	if ls.dist == nil {
		return nil, InboundSample{}, 0, false
	}
	_, idx, _ := ls.dist.SampleContinuous(smp.Next1D())
	light := ls.lights[idx]
	sample, ok := light.SampleInboundDirection(p, smp)
	if !ok {
		return nil, InboundSample{}, 0, false
	}
	selectionPdf := ls.dist.DiscretePDF(idx)
	return light, sample, sample.Pdf * selectionPdf, true
}

// Pdf returns the combined selection+solid-angle pdf for having sampled
// light from p toward its hit — used by MIS when a path ray happens to hit
// an emissive primitive directly (BSDF sampling found the light).
func (ls *LightSampler) Pdf(light Primitive, hit Hit, from, p core.Vec3) float64 {
	if ls.dist == nil {
		return 0
	}
	for idx, l := range ls.lights {
		if l == light {
			return light.InboundPdf(hit, from, p) * ls.dist.DiscretePDF(idx)
		}
	}
	return 0
}
