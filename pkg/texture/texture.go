// Package texture implements 2D sampleable functions over unit UV:
// constant colors, bitmaps (LDR/HDR, scalar/RGB) with bilinear lookup and
// importance sampling, and procedural patterns built atop Bitmap.
package texture

import "github.com/biofag/tungsten/pkg/core"

// Jacobian selects the measure transform applied when importance-sampling
// a bitmap: Planar for a plain unit square, Spherical for a (u,v) -> sphere
// direction map with sin(πy/H) row weighting.
type Jacobian int

const (
	Planar Jacobian = iota
	Spherical
)

// Texture is a 2D sampleable function over unit UV, with optional
// importance sampling for emissive/environment use.
type Texture interface {
	// Lookup returns the RGB value at uv, wrapping or clamping and
	// interpolating per the texture's own settings.
	Lookup(uv core.Vec2) core.Vec3
	// Min, Max, Average are precomputed over all texels (or trivial for
	// constant/procedural textures).
	Min() core.Vec3
	Max() core.Vec3
	Average() core.Vec3
}

// Samplable is implemented by textures that support importance sampling
// (bitmaps). Building the distribution is explicit and must happen during
// prepareForRender, single-threaded — see MakeSamplable.
type Samplable interface {
	Texture
	// MakeSamplable builds, once per jacobian kind, the 2D distribution
	// used by Sample/PDF. Safe to call more than once; later calls for an
	// already-built jacobian are no-ops.
	MakeSamplable(jacobian Jacobian)
	// Sample warps a uniform unit-square sample into a UV on the unit
	// square, distributed according to the texture's importance weights.
	Sample(jacobian Jacobian, u core.Vec2) core.Vec2
	// PDF returns the sampling density at uv for the given jacobian.
	PDF(jacobian Jacobian, uv core.Vec2) float64
}

// Derivatives is implemented by textures that can report a filter
// footprint for antialiased lookups.
type Derivatives interface {
	Derivatives(uv core.Vec2) core.Vec2
}

// Constant is a texture with one color everywhere.
type Constant struct {
	Color core.Vec3
}

// NewConstant creates a constant texture.
func NewConstant(color core.Vec3) *Constant {
	return &Constant{Color: color}
}

func (c *Constant) Lookup(core.Vec2) core.Vec3 { return c.Color }
func (c *Constant) Min() core.Vec3             { return c.Color }
func (c *Constant) Max() core.Vec3             { return c.Color }
func (c *Constant) Average() core.Vec3         { return c.Color }
