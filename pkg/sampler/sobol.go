package sampler

import (
	"math"
	"math/bits"

	"github.com/biofag/tungsten/pkg/core"
)

// Sobol is the low-discrepancy sampler variant. Dimensions are drawn
// sequentially along a global axis counter that resets on Setup; the
// sample index (not the axis) indexes the low-discrepancy sequence itself,
// matching the sampler contract's "indexed by sample number" wording.
//
// Only the first two Sobol dimensions (the base-2 van der Corput sequence
// and the second Sobol dimension) are generated from true direction
// numbers. Every axis, the first pair included, reuses that 2D point under an
// additive Cranley-Patterson rotation keyed by the axis index, which keeps
// later bounce dimensions decorrelated without requiring a full
// per-dimension direction-number table.
type Sobol struct {
	pixelIndex  int
	sampleIndex int
	axis        int
	salt        uint64
}

// NewSobol creates a Sobol sampler with no salt. Setup must be called
// before use.
func NewSobol() *Sobol {
	return &Sobol{}
}

// NewSobolWithSalt creates a Sobol sampler whose Cranley-Patterson rotation
// is offset by salt, so it never collides with another Sobol stream built
// from the same (pixelIndex, sampleIndex) but a different salt.
func NewSobolWithSalt(salt uint64) *Sobol {
	return &Sobol{salt: salt}
}

func (s *Sobol) Setup(pixelIndex, sampleIndex int) {
	s.pixelIndex = pixelIndex
	s.sampleIndex = sampleIndex
	s.axis = 0
}

func (s *Sobol) Next1D() float64 {
	x, _ := s.point(s.axis)
	s.axis++
	return x
}

func (s *Sobol) Next2D() core.Vec2 {
	x, y := s.point(s.axis)
	s.axis += 2
	return core.NewVec2(x, y)
}

func (s *Sobol) Clone() Sampler {
	c := *s
	return &c
}

// point returns the (x, y) value of the base Sobol pair at axis, rotated
// by a per-pixel, per-axis offset so different pixels and dimensions don't
// share the exact same low-discrepancy pattern.
func (s *Sobol) point(axis int) (float64, float64) {
	n := uint32(s.sampleIndex)
	x := vanDerCorputBase2(n)
	y := sobolDimension2(n)

	ox, oy := rotationOffset(s.pixelIndex, axis, s.salt)
	x = frac(x + ox)
	y = frac(y + oy)
	return x, y
}

func vanDerCorputBase2(n uint32) float64 {
	return float64(bits.Reverse32(n)) / float64(uint64(1)<<32)
}

// sobolDimension2 is the classic second Sobol dimension for the trivial
// primitive polynomial (x+1): direction numbers v_1 = 2^31 and
// v_(k+1) = v_k XOR (v_k >> 1), applied to the bits of the sample index.
func sobolDimension2(n uint32) float64 {
	var result uint32
	v := uint32(1) << 31
	for ; n != 0; n >>= 1 {
		if n&1 != 0 {
			result ^= v
		}
		v ^= v >> 1
	}
	return float64(result) / float64(uint64(1)<<32)
}

func rotationOffset(pixelIndex, axis int, salt uint64) (float64, float64) {
	h := seedFor(pixelIndex, axis, 0x2545F4914F6CDD1D^salt)
	ox := frac(float64(uint64(h)) / float64(uint64(1)<<63))
	oy := frac(ox * 0.6180339887498949) // golden-ratio offset for the second axis
	return ox, oy
}

func frac(v float64) float64 {
	v -= math.Floor(v)
	if v < 0 {
		v += 1
	}
	return v
}
