// Package variance implements the per-tile adaptive-sampling bookkeeping:
// a running mean/variance estimator per cell (SampleRecord) and the
// generateWork algorithm that turns per-cell error estimates into the next
// pass's sample budget.
package variance

import (
	"math"

	"github.com/biofag/tungsten/pkg/core"
)

const epsilon = 1e-8

// SampleRecord is one variance cell's running statistics: a Welford
// mean/second-moment of pixel luminance, plus the bookkeeping the render
// driver uses to schedule the next pass.
type SampleRecord struct {
	sampleIndex     int
	nextSampleCount int
	n               int
	mean            float64
	m2              float64
	adaptiveWeight  float64
}

// SampleIndex is the count of samples already taken for this cell.
func (r *SampleRecord) SampleIndex() int { return r.sampleIndex }

// NextSampleCount is the number of samples scheduled for the next pass.
func (r *SampleRecord) NextSampleCount() int { return r.nextSampleCount }

// SetNextSampleCount seeds the very first pass's schedule (generateWork
// overwrites it on every subsequent call).
func (r *SampleRecord) SetNextSampleCount(n int) { r.nextSampleCount = n }

// AddSample folds one radiance estimate into the running luminance
// mean/second-moment via Welford's online algorithm.
func (r *SampleRecord) AddSample(rgb core.Vec3) {
	r.n++
	luminance := rgb.Luminance()
	delta := luminance - r.mean
	r.mean += delta / float64(r.n)
	delta2 := luminance - r.mean
	r.m2 += delta * delta2
}

// Variance returns the biased (population) variance of accumulated
// luminance samples; zero until at least one sample has been added.
func (r *SampleRecord) Variance() float64 {
	if r.n == 0 {
		return 0
	}
	return r.m2 / float64(r.n)
}

// ErrorEstimate is the coefficient-of-variation relative standard error:
// sqrt(variance/n) / max(mean, epsilon). Monotone increasing in variance,
// decreasing in n, as required.
func (r *SampleRecord) ErrorEstimate() float64 {
	if r.n == 0 {
		return 0
	}
	stderr := math.Sqrt(r.Variance() / float64(r.n))
	return stderr / math.Max(r.mean, epsilon)
}

// AdaptiveWeight is the scratch field generateWork clamps and dilates.
func (r *SampleRecord) AdaptiveWeight() float64 { return r.adaptiveWeight }

// Snapshot captures every field of r for a resume blob — SampleRecord's
// fields are private so gob can't reach them directly.
type Snapshot struct {
	SampleIndex     int
	NextSampleCount int
	N               int
	Mean            float64
	M2              float64
	AdaptiveWeight  float64
}

// Snapshot returns a serializable copy of r's state.
func (r *SampleRecord) Snapshot() Snapshot {
	return Snapshot{
		SampleIndex:     r.sampleIndex,
		NextSampleCount: r.nextSampleCount,
		N:               r.n,
		Mean:            r.mean,
		M2:              r.m2,
		AdaptiveWeight:  r.adaptiveWeight,
	}
}

// Restore overwrites r's state from a previously captured Snapshot.
func (r *SampleRecord) Restore(s Snapshot) {
	r.sampleIndex = s.SampleIndex
	r.nextSampleCount = s.NextSampleCount
	r.n = s.N
	r.mean = s.Mean
	r.m2 = s.M2
	r.adaptiveWeight = s.AdaptiveWeight
}
