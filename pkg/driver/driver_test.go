package driver

import (
	"math"
	"testing"
	"time"

	"github.com/biofag/tungsten/pkg/camera"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/threadpool"
)

type constantIntegrator struct {
	color core.Vec3
}

func (c *constantIntegrator) TraceSample(x, y int, smp, supplemental sampler.Sampler) core.Vec3 {
	return c.color
}

func (c *constantIntegrator) Clone() Integrator {
	return &constantIntegrator{color: c.color}
}

func newTestDriver(t *testing.T, width, height int, color core.Vec3) *Driver {
	cam := camera.New(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 60, 1)
	pool := threadpool.New(2)
	pool.Start()
	t.Cleanup(pool.Stop)
	return New(cam, pool, 2, width, height, 8, 4, false, 16,
		&constantIntegrator{color: color},
		func() sampler.Sampler { return sampler.NewUniform() },
		func() sampler.Sampler { return sampler.NewUniformWithSalt(sampler.SupplementalSalt) })
}

func TestDriver_UniformPassFillsEveryPixel(t *testing.T) {
	d := newTestDriver(t, 16, 16, core.NewVec3(1, 1, 1))

	result := d.Start(0, 4)
	if result.Converged || result.Aborted {
		t.Fatalf("unexpected result %+v", result)
	}

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if d.Accumulator().SampleCount(x, y) != 4 {
				t.Fatalf("pixel (%d,%d) got %d samples, want 4", x, y, d.Accumulator().SampleCount(x, y))
			}
			got := d.Accumulator().GetColor(x, y)
			if got.X != 1 || got.Y != 1 || got.Z != 1 {
				t.Fatalf("pixel (%d,%d) color = %v, want (1,1,1)", x, y, got)
			}
		}
	}
	if d.State() != Idle {
		t.Errorf("state after pass = %v, want Idle", d.State())
	}
}

func TestDriver_AbortStopsPromptly(t *testing.T) {
	d := newTestDriver(t, 64, 64, core.NewVec3(1, 1, 1))

	done := make(chan PassResult, 1)
	go func() {
		done <- d.Start(0, 1024)
	}()

	time.Sleep(5 * time.Millisecond)
	d.Abort()

	select {
	case result := <-done:
		if !result.Aborted {
			t.Error("expected Aborted = true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Abort")
	}

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			c := d.Accumulator().GetColor(x, y)
			if isBad(c) {
				t.Fatalf("pixel (%d,%d) is non-finite after abort: %v", x, y, c)
			}
		}
	}
}

func TestDriver_RejectsNaNSamples(t *testing.T) {
	d := newTestDriver(t, 4, 4, core.Vec3{X: math.NaN()})
	d.Start(0, 2)
	if d.RejectedSamples() == 0 {
		t.Error("expected rejected-sample counter to be nonzero")
	}
	got := d.Accumulator().GetColor(0, 0)
	if got.X != 0 {
		t.Errorf("NaN sample should have been clamped to zero, got %v", got)
	}
}
