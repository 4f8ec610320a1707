package camera

import (
	"math"

	"github.com/biofag/tungsten/pkg/core"
)

// Camera is a thin-lens-free pinhole ray generator: position, orientation
// and vertical field of view define a virtual image plane one unit in
// front of the eye, matching the fixed-basis construction in a plain
// look-from/look-at/up/vfov camera description.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// New builds a pinhole camera at lookFrom, aimed at lookAt, with up as the
// world "up" reference and vfov the vertical field of view in degrees.
func New(lookFrom, lookAt, up core.Vec3, vfov, aspectRatio float64) *Camera {
	theta := vfov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspectRatio * halfHeight

	w := lookFrom.Subtract(lookAt).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := lookFrom
	horizontal := u.Multiply(2 * halfWidth)
	vertical := v.Multiply(2 * halfHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w)

	return &Camera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}
}

// Ray generates a ray through screen coordinates (s, t), 0<=s,t<=1, with
// (0,0) at the lower-left of the image plane.
func (c *Camera) Ray(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)
	return core.NewRay(c.origin, direction)
}
