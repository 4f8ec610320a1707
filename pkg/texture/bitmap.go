package texture

import (
	"math"
	"sync"

	"github.com/biofag/tungsten/pkg/core"
)

// Bitmap is an LDR/HDR, scalar/RGB image texture with bilinear lookup,
// central-difference derivatives, and lazily-built importance sampling.
type Bitmap struct {
	Width, Height int
	Pixels        []core.Vec3 // row-major, Pixels[y*Width+x]
	Clamp         bool        // clamp instead of wrap
	Nearest       bool        // nearest-neighbor instead of bilinear

	min, max, avg core.Vec3

	distMu sync.Mutex
	dist   [2]*distribution2D // indexed by Jacobian
}

// NewBitmap creates a bitmap texture and precomputes min/max/average.
func NewBitmap(width, height int, pixels []core.Vec3, clamp, nearest bool) *Bitmap {
	b := &Bitmap{Width: width, Height: height, Pixels: pixels, Clamp: clamp, Nearest: nearest}
	if len(pixels) == 0 {
		return b
	}
	b.min, b.max = pixels[0], pixels[0]
	sum := core.Vec3{}
	for _, p := range pixels {
		b.min = core.NewVec3(math.Min(b.min.X, p.X), math.Min(b.min.Y, p.Y), math.Min(b.min.Z, p.Z))
		b.max = core.NewVec3(math.Max(b.max.X, p.X), math.Max(b.max.Y, p.Y), math.Max(b.max.Z, p.Z))
		sum = sum.Add(p)
	}
	b.avg = sum.Multiply(1.0 / float64(width*height))
	return b
}

func (b *Bitmap) Min() core.Vec3     { return b.min }
func (b *Bitmap) Max() core.Vec3     { return b.max }
func (b *Bitmap) Average() core.Vec3 { return b.avg }

func (b *Bitmap) texel(x, y int) core.Vec3 {
	return b.Pixels[y*b.Width+x]
}

// weight is the luminance-like scalar used to build importance-sampling
// distributions: the max channel, following the reference texture's use
// of the brightest channel as importance weight.
func (b *Bitmap) weight(x, y int) float64 {
	p := b.texel(x, y)
	return math.Max(p.X, math.Max(p.Y, p.Z))
}

func wrapOrClamp(i, n int, clamp bool) int {
	if clamp {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	return ((i % n) + n) % n
}

// Lookup samples the bitmap at uv, inverting V (v'=1-v) and wrapping or
// clamping per the Clamp flag, bilinearly interpolating unless Nearest.
func (b *Bitmap) Lookup(uv core.Vec2) core.Vec3 {
	u := uv.X * float64(b.Width)
	v := (1.0 - uv.Y) * float64(b.Height)
	iu, iv := int(math.Floor(u)), int(math.Floor(v))
	fu, fv := u-float64(iu), v-float64(iv)

	if b.Nearest {
		x := wrapOrClamp(iu, b.Width, b.Clamp)
		y := wrapOrClamp(iv, b.Height, b.Clamp)
		return b.texel(x, y)
	}

	x0 := wrapOrClamp(iu, b.Width, b.Clamp)
	y0 := wrapOrClamp(iv, b.Height, b.Clamp)
	x1 := wrapOrClamp(iu+1, b.Width, b.Clamp)
	y1 := wrapOrClamp(iv+1, b.Height, b.Clamp)

	x00, x01 := b.texel(x0, y0), b.texel(x1, y0)
	x10, x11 := b.texel(x0, y1), b.texel(x1, y1)

	top := x00.Multiply(1 - fu).Add(x01.Multiply(fu))
	bottom := x10.Multiply(1 - fu).Add(x11.Multiply(fu))
	return top.Multiply(1 - fv).Add(bottom.Multiply(fv))
}

// Derivatives returns a per-axis central-difference filter footprint at
// uv, used for filtered lookups.
func (b *Bitmap) Derivatives(uv core.Vec2) core.Vec2 {
	w, h := float64(b.Width), float64(b.Height)
	u := uv.X*w - 0.5
	v := (1.0-uv.Y)*h - 0.5
	iu, iv := int(math.Floor(u)), int(math.Floor(v))
	fu, fv := u-float64(iu), v-float64(iv)

	x1 := wrapOrClamp(iu, b.Width, false)
	x2 := wrapOrClamp(iu+1, b.Width, false)
	x3 := wrapOrClamp(iu+2, b.Width, false)
	x0 := wrapOrClamp(iu-1, b.Width, false)
	y1 := wrapOrClamp(iv, b.Height, false)
	y2 := wrapOrClamp(iv+1, b.Height, false)
	y3 := wrapOrClamp(iv+2, b.Height, false)
	y0 := wrapOrClamp(iv-1, b.Height, false)

	a01, a02 := b.weight(x1, y0), b.weight(x2, y0)
	a10, a11, a12, a13 := b.weight(x0, y1), b.weight(x1, y1), b.weight(x2, y1), b.weight(x3, y1)
	a20, a21, a22, a23 := b.weight(x0, y2), b.weight(x1, y2), b.weight(x2, y2), b.weight(x3, y2)
	a31, a32 := b.weight(x1, y3), b.weight(x2, y3)

	du11, du12 := a12-a10, a13-a11
	du21, du22 := a22-a20, a23-a21
	dv11, dv21 := a21-a01, a31-a11
	dv12, dv22 := a22-a02, a32-a12

	lerp := func(v00, v01, v10, v11, u, v float64) float64 {
		return (v00*(1-u)+v01*u)*(1-v) + (v10*(1-u)+v11*u)*v
	}

	return core.NewVec2(
		lerp(du11, du12, du21, du22, fu, fv)*w,
		lerp(dv11, dv12, dv21, dv22, fu, fv)*h,
	)
}

// MakeSamplable builds the importance-sampling distribution for jacobian,
// using a 5-tap cross filter (center weight 4, neighbors 1, averaged by
// 1/8), multiplied by sin(πy/H) per row when jacobian is Spherical. Must
// be called from single-threaded prepareForRender; the mutex only
// protects against accidental concurrent callers, per the "serialize or
// observe a finished distribution" contract.
func (b *Bitmap) MakeSamplable(jacobian Jacobian) {
	b.distMu.Lock()
	defer b.distMu.Unlock()
	if b.dist[jacobian] != nil {
		return
	}

	weights := make([]float64, b.Width*b.Height)
	for y := 0; y < b.Height; y++ {
		rowWeight := 1.0
		if jacobian == Spherical {
			rowWeight = math.Sin(float64(y) * math.Pi / float64(b.Height))
		}
		for x := 0; x < b.Width; x++ {
			left := (x + b.Width - 1) % b.Width
			right := (x + 1) % b.Width
			up := (y + b.Height - 1) % b.Height
			down := (y + 1) % b.Height
			w := b.weight(x, y)*4.0 + b.weight(left, y) + b.weight(right, y) + b.weight(x, up) + b.weight(x, down)
			weights[y*b.Width+x] = w * 0.125 * rowWeight
		}
	}
	b.dist[jacobian] = newDistribution2D(weights, b.Width, b.Height)
}

// Sample warps a unit-square sample into a UV, per the built distribution.
func (b *Bitmap) Sample(jacobian Jacobian, u core.Vec2) core.Vec2 {
	d := b.dist[jacobian]
	if d == nil {
		return u
	}
	wu, wv, row, col := d.warp(u.X, u.Y)
	return core.NewVec2(
		(wu+float64(col))/float64(b.Width),
		1.0-(wv+float64(row))/float64(b.Height),
	)
}

// PDF returns the sampling density at uv: the cell's pmf times W*H.
func (b *Bitmap) PDF(jacobian Jacobian, uv core.Vec2) float64 {
	d := b.dist[jacobian]
	if d == nil {
		return 1
	}
	row := int((1.0 - uv.Y) * float64(b.Height))
	col := int(uv.X * float64(b.Width))
	row = wrapOrClamp(row, b.Height, true)
	col = wrapOrClamp(col, b.Width, true)
	return d.pdf(row, col)
}
