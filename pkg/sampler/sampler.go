// Package sampler implements the per-(pixel, sample-index) random-number
// streams the render driver hands to integrators: a plain PRNG variant and
// a low-discrepancy (Sobol) variant, both addressed by setup(pixel, sample)
// per the sampler contract.
package sampler

import (
	"math/rand"

	"github.com/biofag/tungsten/pkg/core"
)

// Sampler is a stateful stream of random numbers parameterized by
// (pixelIndex, sampleIndex). For a given (pixel, sample-index), the
// sequence of Next1D/Next2D calls after Setup must be deterministic
// across runs and thread counts.
type Sampler interface {
	// Setup repositions the stream at a (pixel, sample) coordinate and
	// resets the dimension axis counter.
	Setup(pixelIndex, sampleIndex int)
	Next1D() float64
	Next2D() core.Vec2
	// Clone returns an independent copy sharing no mutable state, for
	// per-worker thread-local use.
	Clone() Sampler
}

// SupplementalSalt distinguishes a supplemental random stream (e.g. the
// Russian-roulette decision stream) from the primary stream at the same
// (pixelIndex, sampleIndex) — without it, two samplers seeded from the
// same coordinate would draw byte-identical sequences, per spec §3's
// "primary sampler and a supplemental uniform sampler" requiring two
// independent streams.
const SupplementalSalt uint64 = 0xA5A5A5A5A5A5A5A5

// Uniform is a PRNG-backed sampler seeded from (pixelIndex, sampleIndex,
// salt). The dimension axis counter is ignored: every call simply draws the
// next value from a stream whose seed is fully determined by Setup's
// arguments plus salt, which is enough to satisfy the determinism
// invariant without tracking dimensions explicitly.
type Uniform struct {
	salt uint64
	rng  *rand.Rand
}

// NewUniform creates a Uniform sampler with no salt. The returned sampler
// must have Setup called before use.
func NewUniform() *Uniform {
	return NewUniformWithSalt(0)
}

// NewUniformWithSalt creates a Uniform sampler whose stream is offset by
// salt, so it never collides with another sampler built from the same
// (pixelIndex, sampleIndex) but a different salt.
func NewUniformWithSalt(salt uint64) *Uniform {
	return &Uniform{salt: salt, rng: rand.New(rand.NewSource(1))}
}

func (u *Uniform) Setup(pixelIndex, sampleIndex int) {
	u.rng = rand.New(rand.NewSource(seedFor(pixelIndex, sampleIndex, u.salt)))
}

func (u *Uniform) Next1D() float64 {
	return u.rng.Float64()
}

func (u *Uniform) Next2D() core.Vec2 {
	return core.NewVec2(u.rng.Float64(), u.rng.Float64())
}

func (u *Uniform) Clone() Sampler {
	return &Uniform{salt: u.salt, rng: rand.New(rand.NewSource(u.rng.Int63()))}
}

// seedFor combines (pixelIndex, sampleIndex, salt) into a single int64 seed
// via a splitmix64-style mix, so nearby pixels/samples don't produce
// correlated streams.
func seedFor(pixelIndex, sampleIndex int, salt uint64) int64 {
	x := uint64(pixelIndex)*0x9E3779B97F4A7C15 + uint64(sampleIndex)*0xBF58476D1CE4E5B9 + salt
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return int64(x)
}
