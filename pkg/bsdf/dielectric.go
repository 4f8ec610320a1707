package bsdf

import (
	"math"

	"github.com/biofag/tungsten/pkg/core"
)

// Dielectric is a smooth refractive interface (glass, water): specular
// reflection and transmission selected stochastically by Fresnel weight.
type Dielectric struct {
	IOR float64
}

// NewDielectric creates a dielectric with the given index of refraction.
func NewDielectric(ior float64) *Dielectric {
	return &Dielectric{IOR: ior}
}

func (d *Dielectric) Lobes() Mask { return Mask(SpecularReflect | SpecularTransmit) }

func (d *Dielectric) Sample(event *Event) (Result, bool) {
	wantReflect := event.RequestedLobes.Has(SpecularReflect)
	wantTransmit := event.RequestedLobes.Has(SpecularTransmit)
	if !wantReflect && !wantTransmit {
		return Result{}, false
	}

	entering := event.Wi.Z > 0
	eta := d.IOR
	if entering {
		eta = 1.0 / d.IOR
	}

	cosThetaI := math.Min(math.Abs(event.Wi.Z), 1.0)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	totalInternalReflection := sin2ThetaT >= 1

	fr := schlickFresnel(cosThetaI, eta)
	if totalInternalReflection {
		fr = 1
	}

	reflect := totalInternalReflection || !wantTransmit
	if wantReflect && wantTransmit {
		reflect = event.Sampler.Next1D() < fr
	} else if !wantReflect {
		reflect = false
	}

	if reflect && wantReflect {
		wo := core.NewVec3(-event.Wi.X, -event.Wi.Y, event.Wi.Z)
		prob := fr
		if !wantTransmit {
			prob = 1
		}
		return Result{Wo: wo, Throughput: core.NewVec3(fr, fr, fr).Multiply(1 / prob), Pdf: 0, Lobe: SpecularReflect}, true
	}

	if !wantTransmit {
		return Result{}, false
	}

	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	if event.Wi.Z > 0 {
		cosThetaT = -cosThetaT
	}
	wo := core.NewVec3(-eta*event.Wi.X, -eta*event.Wi.Y, cosThetaT)

	ft := 1 - fr
	prob := ft
	if !wantReflect {
		prob = 1
	}
	// Radiance scaling for transmission across a change of medium (eta^2 factor).
	throughput := ft / (eta * eta) / prob
	return Result{Wo: wo, Throughput: core.NewVec3(throughput, throughput, throughput), Pdf: 0, Lobe: SpecularTransmit}, true
}

func (d *Dielectric) Eval(event Event) core.Vec3 { return core.Vec3{} }
func (d *Dielectric) Pdf(event Event) float64    { return 0 }

// schlickFresnel is Schlick's approximation to the Fresnel reflectance at
// normal incidence ratio eta, evaluated at cosThetaI.
func schlickFresnel(cosThetaI, eta float64) float64 {
	r0 := (1 - eta) / (1 + eta)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cosThetaI, 5)
}
