package primitive

import (
	"github.com/biofag/tungsten/pkg/bsdf"
	"github.com/biofag/tungsten/pkg/core"
)

// shading is embedded by every primitive variant to supply the BSDF and
// emission plumbing common to all of them.
type shading struct {
	material bsdf.BSDF
	emission core.Vec3
}

func (s shading) BSDF() bsdf.BSDF                     { return s.material }
func (s shading) Emission(core.Vec2) core.Vec3        { return s.emission }
func (s shading) IsEmissive() bool                    { return s.emission.X > 0 || s.emission.Y > 0 || s.emission.Z > 0 }
