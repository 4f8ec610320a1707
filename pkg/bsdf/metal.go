package bsdf

import "github.com/biofag/tungsten/pkg/core"

// Metal is a specular conductor: perfect mirror reflection tinted by a
// per-channel reflectance at normal incidence, Schlick-extended off axis.
//
// The reference renderer's fuzzy-metal variant perturbs the reflection
// direction without a matching pdf, which would fail the BSDF sample/pdf
// consistency invariant; this BSDF is kept purely specular instead.
type Metal struct {
	Reflectance core.Vec3
}

// NewMetal creates a specular metal with the given reflectance color.
func NewMetal(reflectance core.Vec3) *Metal {
	return &Metal{Reflectance: reflectance}
}

func (m *Metal) Lobes() Mask { return Mask(SpecularReflect) }

func (m *Metal) Sample(event *Event) (Result, bool) {
	if !event.RequestedLobes.Has(SpecularReflect) || event.Wi.Z <= 0 {
		return Result{}, false
	}
	wo := core.NewVec3(-event.Wi.X, -event.Wi.Y, event.Wi.Z)
	fr := schlickFresnelColor(m.Reflectance, event.Wi.Z)
	return Result{Wo: wo, Throughput: fr, Pdf: 0, Lobe: SpecularReflect}, true
}

func (m *Metal) Eval(event Event) core.Vec3 { return core.Vec3{} }
func (m *Metal) Pdf(event Event) float64    { return 0 }

func schlickFresnelColor(r0 core.Vec3, cosTheta float64) core.Vec3 {
	t := pow5(1 - cosTheta)
	one := core.NewVec3(1, 1, 1)
	return r0.Add(one.Subtract(r0).Multiply(t))
}

func pow5(x float64) float64 {
	x2 := x * x
	return x2 * x2 * x
}
