// Package camera provides the pinhole ray generator and the radiance
// accumulator it (and the render driver) write into.
package camera

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/biofag/tungsten/pkg/core"
)

// Accumulator is the image plane's radiance buffer, partitioned by tile so
// contention is rare — but addSamples must stay safe even when two tiles
// splat into the same pixel (non-pinhole cameras that scatter samples
// outside their own tile). Each channel is updated with a lock-free
// float64 compare-and-swap loop rather than a per-pixel mutex.
type Accumulator struct {
	width, height int
	colorX        []uint64 // atomic bit-patterns of float64 accumulators
	colorY        []uint64
	colorZ        []uint64
	count         []uint64 // atomic sample counts
}

// NewAccumulator allocates a width×height radiance buffer, all zero.
func NewAccumulator(width, height int) *Accumulator {
	n := width * height
	return &Accumulator{
		width:  width,
		height: height,
		colorX: make([]uint64, n),
		colorY: make([]uint64, n),
		colorZ: make([]uint64, n),
		count:  make([]uint64, n),
	}
}

func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(newVal)) {
			return
		}
	}
}

// AddSamples atomically adds sum into pixel (x,y)'s color channels and
// count into its sample-count channel. Out-of-bounds (x,y) is silently
// dropped — splatting rays can legitimately land off the image plane.
func (a *Accumulator) AddSamples(x, y int, sum core.Vec3, count int) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	idx := y*a.width + x
	atomicAddFloat64(&a.colorX[idx], sum.X)
	atomicAddFloat64(&a.colorY[idx], sum.Y)
	atomicAddFloat64(&a.colorZ[idx], sum.Z)
	atomic.AddUint64(&a.count[idx], uint64(count))
}

// GetColor returns the current average color at (x,y); (0,0,0) if no
// samples have landed there yet. Not safe to call concurrently with
// AddSamples on the same pixel — callers read after rendering completes.
func (a *Accumulator) GetColor(x, y int) core.Vec3 {
	idx := y*a.width + x
	n := atomic.LoadUint64(&a.count[idx])
	if n == 0 {
		return core.Vec3{}
	}
	inv := 1.0 / float64(n)
	return core.NewVec3(
		math.Float64frombits(atomic.LoadUint64(&a.colorX[idx]))*inv,
		math.Float64frombits(atomic.LoadUint64(&a.colorY[idx]))*inv,
		math.Float64frombits(atomic.LoadUint64(&a.colorZ[idx]))*inv,
	)
}

// SampleCount returns the number of samples accumulated at (x,y).
func (a *Accumulator) SampleCount(x, y int) int {
	return int(atomic.LoadUint64(&a.count[y*a.width+x]))
}

// Width and Height report the buffer's fixed dimensions.
func (a *Accumulator) Width() int  { return a.width }
func (a *Accumulator) Height() int { return a.height }

// Image renders the current buffer into a flat row-major RGB slice.
func (a *Accumulator) Image() []core.Vec3 {
	out := make([]core.Vec3, a.width*a.height)
	for y := 0; y < a.height; y++ {
		for x := 0; x < a.width; x++ {
			out[y*a.width+x] = a.GetColor(x, y)
		}
	}
	return out
}

// Checkpoint is the serializable snapshot a resume file stores: the raw
// per-pixel color sums and sample counts, not the averaged image, so
// resuming a render is exact rather than a re-weighted approximation.
type Checkpoint struct {
	Width, Height int
	ColorSums     []core.Vec3
	Counts        []int
}

// Snapshot captures the accumulator's current raw state for a resume file.
func (a *Accumulator) Snapshot() Checkpoint {
	n := a.width * a.height
	sums := make([]core.Vec3, n)
	counts := make([]int, n)
	for i := 0; i < n; i++ {
		sums[i] = core.NewVec3(
			math.Float64frombits(atomic.LoadUint64(&a.colorX[i])),
			math.Float64frombits(atomic.LoadUint64(&a.colorY[i])),
			math.Float64frombits(atomic.LoadUint64(&a.colorZ[i])),
		)
		counts[i] = int(atomic.LoadUint64(&a.count[i]))
	}
	return Checkpoint{Width: a.width, Height: a.height, ColorSums: sums, Counts: counts}
}

// Restore seeds a freshly allocated accumulator from a checkpoint captured
// by Snapshot. Must run before any worker starts rendering — it writes
// the backing slices directly rather than through AddSamples's CAS loop.
func (a *Accumulator) Restore(c Checkpoint) error {
	if c.Width != a.width || c.Height != a.height {
		return fmt.Errorf("checkpoint size %dx%d does not match accumulator size %dx%d", c.Width, c.Height, a.width, a.height)
	}
	for i, sum := range c.ColorSums {
		a.colorX[i] = math.Float64bits(sum.X)
		a.colorY[i] = math.Float64bits(sum.Y)
		a.colorZ[i] = math.Float64bits(sum.Z)
		a.count[i] = uint64(c.Counts[i])
	}
	return nil
}
