package texture

import (
	"math/rand"
	"testing"

	"github.com/biofag/tungsten/pkg/core"
)

func TestBitmap_LookupWrapsAndFlipsV(t *testing.T) {
	// 2x2 bitmap: top-left red, top-right green, bottom-left blue, bottom-right white.
	red := core.NewVec3(1, 0, 0)
	green := core.NewVec3(0, 1, 0)
	blue := core.NewVec3(0, 0, 1)
	white := core.NewVec3(1, 1, 1)
	b := NewBitmap(2, 2, []core.Vec3{red, green, blue, white}, false, true)

	tests := []struct {
		name string
		uv   core.Vec2
		want core.Vec3
	}{
		{"top-left, v near top", core.NewVec2(0.1, 0.9), red},
		{"top-right, v near top", core.NewVec2(0.9, 0.9), green},
		{"bottom-left, v near bottom", core.NewVec2(0.1, 0.1), blue},
		{"bottom-right, v near bottom", core.NewVec2(0.9, 0.1), white},
		{"wraps past 1", core.NewVec2(1.1, 0.9), red},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Lookup(tt.uv)
			if got != tt.want {
				t.Errorf("Lookup(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestBitmap_ImportanceSamplingConcentratesOnBrightTexel(t *testing.T) {
	const w, h = 16, 16
	pixels := make([]core.Vec3, w*h)
	brightX, brightY := 10, 5
	pixels[brightY*w+brightX] = core.NewVec3(1000, 1000, 1000)

	b := NewBitmap(w, h, pixels, true, true)
	b.MakeSamplable(Planar)

	rng := rand.New(rand.NewSource(1))
	hits := 0
	const n = 20000
	for i := 0; i < n; i++ {
		uv := b.Sample(Planar, core.NewVec2(rng.Float64(), rng.Float64()))
		x := int(uv.X * w)
		y := int((1 - uv.Y) * h)
		if abs(x-brightX) <= 1 && abs(y-brightY) <= 1 {
			hits++
		}
	}
	if float64(hits)/float64(n) < 0.5 {
		t.Errorf("only %d/%d samples landed near the bright texel", hits, n)
	}
}

func TestBitmap_PDFMatchesCellDensity(t *testing.T) {
	const w, h = 4, 4
	pixels := make([]core.Vec3, w*h)
	for i := range pixels {
		pixels[i] = core.NewVec3(1, 1, 1)
	}
	b := NewBitmap(w, h, pixels, true, true)
	b.MakeSamplable(Planar)

	// Uniform weights: density should be ~1 everywhere (integrates to 1 over unit square).
	pdf := b.PDF(Planar, core.NewVec2(0.5, 0.5))
	if pdf < 0.9 || pdf > 1.1 {
		t.Errorf("uniform bitmap PDF = %v, want close to 1", pdf)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
