package bsdf

import (
	"math"

	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/texture"
)

// Plastic is a diffuse substrate under a smooth dielectric coating: a
// probabilistic mix of specular reflection off the coating and diffuse
// transmission into, and back out of, the substrate. This is the worked
// BSDF example: precomputed diffuse Fresnel and average transmittance
// drive the specular-selection probability and the diffuse throughput
// correction, following the reference plastic material's derivation.
type Plastic struct {
	IOR            float64
	Thickness      float64
	SigmaA         core.Vec3 // absorption coefficient of the substrate
	diffuseAlbedo  textureOrConstant

	scaledSigmaA     core.Vec3
	avgTransmittance float64
	diffuseFresnel   float64
}

// NewPlastic builds a Plastic BSDF. thickness and sigmaA may be zero for
// a non-absorbing coating.
func NewPlastic(ior, thickness float64, sigmaA core.Vec3, diffuseAlbedo core.Vec3) *Plastic {
	return newPlastic(ior, thickness, sigmaA, constant(diffuseAlbedo))
}

// NewTexturedPlastic is NewPlastic with a textured diffuse albedo.
func NewTexturedPlastic(ior, thickness float64, sigmaA core.Vec3, diffuseAlbedo texture.Texture) *Plastic {
	return newPlastic(ior, thickness, sigmaA, fromTexture(diffuseAlbedo))
}

func newPlastic(ior, thickness float64, sigmaA core.Vec3, albedo textureOrConstant) *Plastic {
	p := &Plastic{IOR: ior, Thickness: thickness, SigmaA: sigmaA, diffuseAlbedo: albedo}
	p.scaledSigmaA = sigmaA.Multiply(thickness)
	meanSigmaA := (p.scaledSigmaA.X + p.scaledSigmaA.Y + p.scaledSigmaA.Z) / 3.0
	p.avgTransmittance = math.Exp(-2.0 * meanSigmaA)
	p.diffuseFresnel = diffuseFresnelReflectance(ior)
	return p
}

// diffuseFresnelReflectance numerically integrates the internal diffuse
// Fresnel reflectance at the given IOR: the fraction of diffusely
// scattered light from the substrate that the coating reflects back in,
// via a fine Riemann sum over the hemisphere.
func diffuseFresnelReflectance(ior float64) float64 {
	const steps = 512
	sum := 0.0
	for i := 0; i < steps; i++ {
		cosTheta := (float64(i) + 0.5) / float64(steps)
		fr := dielectricFresnel(1.0/ior, cosTheta)
		sum += fr * cosTheta * 2.0 / float64(steps)
	}
	return sum
}

// dielectricFresnel is the unpolarized Fresnel reflectance for a ray
// inside a medium of relative index eta hitting the interface at
// cosThetaI (measured from the interface normal on the incident side).
func dielectricFresnel(eta, cosThetaI float64) float64 {
	cosThetaI = math.Min(math.Abs(cosThetaI), 1.0)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return 1
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	rParallel := (eta*cosThetaI - cosThetaT) / (eta*cosThetaI + cosThetaT)
	rPerp := (cosThetaI - eta*cosThetaT) / (cosThetaI + eta*cosThetaT)
	return (rParallel*rParallel + rPerp*rPerp) / 2
}

func (p *Plastic) Lobes() Mask {
	return Mask(SpecularReflect | DiffuseReflect)
}

func (p *Plastic) Sample(event *Event) (Result, bool) {
	if event.Wi.Z <= 0 {
		return Result{}, false
	}
	wantSpecular := event.RequestedLobes.Has(SpecularReflect)
	wantDiffuse := event.RequestedLobes.Has(DiffuseReflect)
	if !wantSpecular && !wantDiffuse {
		return Result{}, false
	}

	fi := dielectricFresnel(1.0/p.IOR, event.Wi.Z)
	substrateWeight := p.avgTransmittance * (1 - fi)

	var specProb float64
	switch {
	case wantSpecular && wantDiffuse:
		specProb = fi / (fi + substrateWeight)
	case wantSpecular:
		specProb = 1
	default:
		specProb = 0
	}

	if wantSpecular && event.Sampler.Next1D() < specProb {
		wo := core.NewVec3(-event.Wi.X, -event.Wi.Y, event.Wi.Z)
		t := fi / specProb
		return Result{Wo: wo, Throughput: core.NewVec3(t, t, t), Pdf: 0, Lobe: SpecularReflect}, true
	}

	if !wantDiffuse {
		return Result{}, false
	}

	wo := core.SampleCosineHemisphere(core.NewVec3(0, 0, 1), event.Sampler.Next2D())
	if wo.Z <= 0 {
		return Result{}, false
	}

	fo := dielectricFresnel(1.0/p.IOR, wo.Z)
	eta := 1.0 / p.IOR
	albedo := p.diffuseAlbedo.at(event.UV)

	diffuse := albedo.Multiply((1 - fi) * (1 - fo) * eta * eta)
	diffuse = divideByOneMinus(diffuse, albedo, p.diffuseFresnel)

	if p.scaledSigmaA.X != 0 || p.scaledSigmaA.Y != 0 || p.scaledSigmaA.Z != 0 {
		absorption := core.NewVec3(
			math.Exp(p.scaledSigmaA.X*(-1/wo.Z-1/event.Wi.Z)),
			math.Exp(p.scaledSigmaA.Y*(-1/wo.Z-1/event.Wi.Z)),
			math.Exp(p.scaledSigmaA.Z*(-1/wo.Z-1/event.Wi.Z)),
		)
		diffuse = diffuse.MultiplyVec(absorption)
	}

	pdf := wo.Z / math.Pi
	selectionProb := 1 - specProb
	if wantSpecular {
		diffuse = diffuse.Multiply(1.0 / selectionProb)
	}

	return Result{Wo: wo, Throughput: diffuse, Pdf: pdf * selectionProb, Lobe: DiffuseReflect}, true
}

// divideByOneMinus divides c component-wise by (1 - albedo*diffuseFresnel),
// the substrate's internal multiple-scattering normalization.
func divideByOneMinus(c, albedo core.Vec3, diffuseFresnel float64) core.Vec3 {
	return core.NewVec3(
		c.X/(1-albedo.X*diffuseFresnel),
		c.Y/(1-albedo.Y*diffuseFresnel),
		c.Z/(1-albedo.Z*diffuseFresnel),
	)
}

func (p *Plastic) Eval(event Event) core.Vec3 {
	if !event.RequestedLobes.Has(DiffuseReflect) || event.Wi.Z <= 0 || event.Wo.Z <= 0 {
		return core.Vec3{}
	}
	fi := dielectricFresnel(1.0/p.IOR, event.Wi.Z)
	fo := dielectricFresnel(1.0/p.IOR, event.Wo.Z)
	eta := 1.0 / p.IOR
	albedo := p.diffuseAlbedo.at(event.UV)

	diffuse := albedo.Multiply((1 - fi) * (1 - fo) * eta * eta)
	diffuse = divideByOneMinus(diffuse, albedo, p.diffuseFresnel)
	if p.scaledSigmaA.X != 0 || p.scaledSigmaA.Y != 0 || p.scaledSigmaA.Z != 0 {
		absorption := core.NewVec3(
			math.Exp(p.scaledSigmaA.X*(-1/event.Wo.Z-1/event.Wi.Z)),
			math.Exp(p.scaledSigmaA.Y*(-1/event.Wo.Z-1/event.Wi.Z)),
			math.Exp(p.scaledSigmaA.Z*(-1/event.Wo.Z-1/event.Wi.Z)),
		)
		diffuse = diffuse.MultiplyVec(absorption)
	}
	// eval returns BRDF-value * cos(wo); the cosine-weighted sampling pdf
	// (wo.Z/π) is exactly what turns this raw diffuse term into the
	// throughput Sample reports, so eval must divide by π once more here.
	return diffuse.Multiply(event.Wo.Z / math.Pi)
}

func (p *Plastic) Pdf(event Event) float64 {
	if event.Wi.Z <= 0 || event.Wo.Z <= 0 {
		return 0
	}
	wantSpecular := event.RequestedLobes.Has(SpecularReflect)
	wantDiffuse := event.RequestedLobes.Has(DiffuseReflect)
	if !wantDiffuse {
		return 0
	}
	pdf := event.Wo.Z / math.Pi
	if wantSpecular {
		fi := dielectricFresnel(1.0/p.IOR, event.Wi.Z)
		substrateWeight := p.avgTransmittance * (1 - fi)
		specProb := fi / (fi + substrateWeight)
		pdf *= 1 - specProb
	}
	return pdf
}
