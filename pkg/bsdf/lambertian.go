package bsdf

import (
	"math"

	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/texture"
)

// Lambertian is a perfectly diffuse reflector: albedo/π everywhere above
// the surface.
type Lambertian struct {
	albedo textureOrConstant
}

// NewLambertian creates a Lambertian with a flat albedo.
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{albedo: constant(albedo)}
}

// NewTexturedLambertian creates a Lambertian whose albedo comes from a texture.
func NewTexturedLambertian(albedoTexture texture.Texture) *Lambertian {
	return &Lambertian{albedo: fromTexture(albedoTexture)}
}

func (l *Lambertian) Lobes() Mask { return Mask(DiffuseReflect) }

func (l *Lambertian) Albedo(uv core.Vec2) core.Vec3 { return l.albedo.at(uv) }

func (l *Lambertian) Sample(event *Event) (Result, bool) {
	if !event.RequestedLobes.Has(DiffuseReflect) || event.Wi.Z <= 0 {
		return Result{}, false
	}

	wo := core.SampleCosineHemisphere(core.NewVec3(0, 0, 1), event.Sampler.Next2D())
	if wo.Z <= 0 {
		return Result{}, false
	}

	pdf := wo.Z / math.Pi
	albedo := l.albedo.at(event.UV)
	return Result{
		Wo:         wo,
		Throughput: albedo,
		Pdf:        pdf,
		Lobe:       DiffuseReflect,
	}, true
}

func (l *Lambertian) Eval(event Event) core.Vec3 {
	if !event.RequestedLobes.Has(DiffuseReflect) || event.Wi.Z <= 0 || event.Wo.Z <= 0 {
		return core.Vec3{}
	}
	albedo := l.albedo.at(event.UV)
	return albedo.Multiply(event.Wo.Z / math.Pi)
}

func (l *Lambertian) Pdf(event Event) float64 {
	if !event.RequestedLobes.Has(DiffuseReflect) || event.Wi.Z <= 0 || event.Wo.Z <= 0 {
		return 0
	}
	return event.Wo.Z / math.Pi
}
