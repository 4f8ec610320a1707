// Package integrator implements the light-transport estimator the render
// driver calls once per sample: unidirectional path tracing with
// next-event estimation, power-heuristic MIS, and Russian roulette.
package integrator

import "github.com/biofag/tungsten/pkg/core"

// shadowEpsilon keeps shadow rays and continuation rays from
// re-intersecting the surface they just left.
const shadowEpsilon = 1e-4

var black = core.Vec3{}
