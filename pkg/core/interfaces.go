package core

// Logger is the minimal printf-style logging interface. internal/rlog's
// go-logging wrapper implements it; the driver, pool and integrator do not
// log.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Intersector is the acceleration-structure boundary named in the external
// interfaces contract. No type in this module implements it: the scene and
// TriangleMesh query the concrete core.BVH directly.
type Intersector interface {
	// Intersect returns the closest hit in (tMin, tMax], if any.
	Intersect(ray Ray, tMin, tMax float64) (IntersectorHit, bool)
	// Occluded is an any-hit query, cheaper than Intersect.
	Occluded(ray Ray, tMin, tMax float64) bool
}

// IntersectorHit is what an Intersector reports; primitives translate it
// into their own richer intersection info (barycentrics, shading normal...).
type IntersectorHit struct {
	T      float64
	PrimID int
	U, V   float64
}
