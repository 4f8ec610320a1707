// Package driver owns the progressive render loop: it turns a variance
// grid's generateWork schedule into thread-pool tile tasks, splats
// integrator results into the camera accumulator, and exposes cooperative
// abort.
package driver

import (
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/biofag/tungsten/pkg/camera"
	"github.com/biofag/tungsten/pkg/core"
	"github.com/biofag/tungsten/pkg/sampler"
	"github.com/biofag/tungsten/pkg/threadpool"
	"github.com/biofag/tungsten/pkg/variance"
)

// Integrator computes one radiance estimate for a pixel. Implementations
// are cloned per worker so their scratch state is never shared.
type Integrator interface {
	TraceSample(x, y int, smp, supplemental sampler.Sampler) core.Vec3
	Clone() Integrator
}

// State is the driver's coarse lifecycle state, per the documented
// Idle/Preparing/Running/Aborting state machine.
type State int32

const (
	Idle State = iota
	Preparing
	Running
	Aborting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Preparing:
		return "Preparing"
	case Running:
		return "Running"
	case Aborting:
		return "Aborting"
	default:
		return "Unknown"
	}
}

// PassResult reports the outcome of one Start(sppFrom, sppTo) call.
type PassResult struct {
	// Converged is true when generateWork found nothing left to do —
	// the image has reached its adaptive-error floor.
	Converged bool
	// Aborted is true when Abort() was called during this pass.
	Aborted bool
}

// workerScratch is the per-worker thread-local state: its own sampler
// pair and its own cloned integrator, so tiles running concurrently never
// share mutable state.
type workerScratch struct {
	integrator   Integrator
	smp          sampler.Sampler
	supplemental sampler.Sampler
}

// Driver renders one image progressively, one Start() call per pass.
type Driver struct {
	width, height, tileSize int

	cam   *camera.Camera
	accum *camera.Accumulator
	grid  *variance.Grid
	pool  *threadpool.Pool

	scratch []workerScratch
	rng     *rand.Rand

	state        atomic.Int32
	abortFlag    atomic.Bool
	rejected     atomic.Int64
	currentGroup atomic.Pointer[threadpool.Group]
}

// New builds a driver for a width×height image. baseIntegrator is cloned
// once per pool worker at construction time — Scene data reachable from it
// must already be immutable. newSampler and
// newSupplementalSampler build the two independent random streams each
// worker needs per spec §3: callers must give them distinct salts (e.g.
// sampler.SupplementalSalt on the second) so the primary and supplemental
// streams never draw identical sequences for the same (pixel, sample).
func New(
	cam *camera.Camera,
	pool *threadpool.Pool,
	numWorkers int,
	width, height, tileSize, varianceTileSize int,
	adaptive bool,
	adaptiveThreshold int,
	baseIntegrator Integrator,
	newSampler func() sampler.Sampler,
	newSupplementalSampler func() sampler.Sampler,
) *Driver {
	grid := variance.NewGrid(width, height, varianceTileSize)
	grid.AdaptiveSampling = adaptive
	grid.AdaptiveThreshold = adaptiveThreshold

	scratch := make([]workerScratch, numWorkers)
	for i := range scratch {
		scratch[i] = workerScratch{
			integrator:   baseIntegrator.Clone(),
			smp:          newSampler(),
			supplemental: newSupplementalSampler(),
		}
	}

	return &Driver{
		width:      width,
		height:     height,
		tileSize:   tileSize,
		cam:        cam,
		accum:      camera.NewAccumulator(width, height),
		grid:       grid,
		pool:       pool,
		scratch:    scratch,
		rng:        rand.New(rand.NewSource(0xBA5EBA11)),
	}
}

// State reports the driver's current lifecycle state.
func (d *Driver) State() State { return State(d.state.Load()) }

func (d *Driver) setState(s State) { d.state.Store(int32(s)) }

// Accumulator exposes the radiance buffer for readout after rendering.
func (d *Driver) Accumulator() *camera.Accumulator { return d.accum }

// Grid exposes the variance grid, for checkpointing SampleRecord state into
// a resume blob between passes.
func (d *Driver) Grid() *variance.Grid { return d.grid }

// RejectedSamples returns the running count of NaN/Inf samples clamped to
// zero across the whole render, for diagnostics.
func (d *Driver) RejectedSamples() int64 { return d.rejected.Load() }

func (d *Driver) numTilesX() int { return (d.width + d.tileSize - 1) / d.tileSize }
func (d *Driver) numTilesY() int { return (d.height + d.tileSize - 1) / d.tileSize }

// Start runs exactly one progressive pass: generateWork(sppFrom, sppTo)
// followed by, if there is work, one thread-pool group covering every
// tile. It blocks until the group drains (by completion or abort).
func (d *Driver) Start(sppFrom, sppTo int) PassResult {
	d.setState(Preparing)
	d.abortFlag.Store(false)

	if !d.grid.GenerateWork(sppFrom, sppTo, d.rng) {
		d.setState(Idle)
		return PassResult{Converged: true}
	}

	d.setState(Running)
	tilesX, tilesY := d.numTilesX(), d.numTilesY()
	numTiles := tilesX * tilesY

	group := d.pool.Enqueue(func(groupID, tileIndex, workerID int) {
		d.renderTile(tileIndex, workerID, tilesX)
	}, numTiles, nil)
	d.currentGroup.Store(group)

	group.Wait()
	aborted := d.abortFlag.Load()
	d.setState(Idle)
	return PassResult{Aborted: aborted}
}

// Abort requests cancellation of the in-progress pass. Idempotent and
// safe to call from any goroutine, including before any pass has started.
func (d *Driver) Abort() {
	d.abortFlag.Store(true)
	d.setState(Aborting)
	if g := d.currentGroup.Load(); g != nil {
		g.Abort()
	}
}

// renderTile renders every pixel in tile tileIndex (row-major over the
// tileSize grid), checking the abort flag between pixels — never between
// samples within a pixel, per the cooperative-cancellation contract.
func (d *Driver) renderTile(tileIndex, workerID, tilesX int) {
	tx := tileIndex % tilesX
	ty := tileIndex / tilesX
	x0 := tx * d.tileSize
	y0 := ty * d.tileSize
	x1 := min(x0+d.tileSize, d.width)
	y1 := min(y0+d.tileSize, d.height)

	sc := &d.scratch[workerID]

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if d.abortFlag.Load() {
				return
			}
			d.renderPixel(x, y, sc)
		}
	}
}

func (d *Driver) renderPixel(x, y int, sc *workerScratch) {
	cellIdx := d.grid.CellAt(x, y)
	record := &d.grid.Records[cellIdx]
	spp := record.NextSampleCount()
	pixelIndex := y*d.width + x

	sum := core.Vec3{}
	for i := 0; i < spp; i++ {
		sampleIndex := record.SampleIndex() + i
		sc.smp.Setup(pixelIndex, sampleIndex)
		sc.supplemental.Setup(pixelIndex, sampleIndex)

		color := sc.integrator.TraceSample(x, y, sc.smp, sc.supplemental)
		if isBad(color) {
			d.rejected.Add(1)
			color = core.Vec3{}
		}
		record.AddSample(color)
		sum = sum.Add(color)
	}
	d.accum.AddSamples(x, y, sum, spp)
}

func isBad(c core.Vec3) bool {
	return math.IsNaN(c.X) || math.IsInf(c.X, 0) ||
		math.IsNaN(c.Y) || math.IsInf(c.Y, 0) ||
		math.IsNaN(c.Z) || math.IsInf(c.Z, 0)
}
