package variance

import (
	"fmt"
	"sort"
)

// RNG is the minimal random source generateWork needs for the
// fractional-accumulator stochastic rounding in step 8.
type RNG interface {
	Float64() float64
}

// Grid is the image's variance cells, laid out row-major over a coarser
// tile grid (one cell per VarianceTileSize×VarianceTileSize block of
// pixels).
type Grid struct {
	Records          []SampleRecord
	GridWidth        int // cells across
	GridHeight       int // cells down
	VarianceTileSize int
	ImageWidth       int // pixels
	ImageHeight      int // pixels

	// AdaptiveSampling disables the whole adaptive branch when false:
	// every generateWork call just hands out sppCount uniformly.
	AdaptiveSampling bool
	// AdaptiveThreshold is the warm-up spp_from floor below which
	// generateWork always behaves as non-adaptive (e.g. 16).
	AdaptiveThreshold int
}

// NewGrid allocates a variance grid covering an imageWidth×imageHeight
// image at the given VarianceTileSize (cells are ceil-divided, so a
// non-divisible image still gets full coverage).
func NewGrid(imageWidth, imageHeight, varianceTileSize int) *Grid {
	gw := (imageWidth + varianceTileSize - 1) / varianceTileSize
	gh := (imageHeight + varianceTileSize - 1) / varianceTileSize
	return &Grid{
		Records:          make([]SampleRecord, gw*gh),
		GridWidth:        gw,
		GridHeight:       gh,
		VarianceTileSize: varianceTileSize,
		ImageWidth:       imageWidth,
		ImageHeight:      imageHeight,
	}
}

// CellAt returns the record index for a pixel coordinate.
func (g *Grid) CellAt(x, y int) int {
	cx := x / g.VarianceTileSize
	cy := y / g.VarianceTileSize
	return cy*g.GridWidth + cx
}

// GenerateWork advances every record's sampleIndex by its already-scheduled
// nextSampleCount, then recomputes nextSampleCount for the spp_from..spp_to
// pass. Returns false only when the image has converged under adaptive
// sampling (no cell has nonzero error) and there is nothing left to do.
func (g *Grid) GenerateWork(sppFrom, sppTo int, rng RNG) bool {
	for i := range g.Records {
		g.Records[i].sampleIndex += g.Records[i].nextSampleCount
	}

	sppCount := sppTo - sppFrom
	if !g.AdaptiveSampling || sppFrom < g.AdaptiveThreshold {
		for i := range g.Records {
			g.Records[i].nextSampleCount = sppCount
		}
		return true
	}

	maxError := g.percentileError()
	if maxError == 0 {
		return false
	}

	for i := range g.Records {
		g.Records[i].adaptiveWeight = min64(g.Records[i].adaptiveWeight, maxError)
	}

	g.dilate()

	totalWeight := 0.0
	for i := range g.Records {
		totalWeight += g.Records[i].adaptiveWeight
	}
	if totalWeight == 0 {
		for i := range g.Records {
			g.Records[i].nextSampleCount = sppCount
		}
		return true
	}

	adaptiveBudget := (sppCount - 1) * g.ImageWidth * g.ImageHeight
	budgetPerTile := adaptiveBudget / (g.VarianceTileSize * g.VarianceTileSize)
	factor := float64(budgetPerTile) / totalWeight

	pixelPdf := 0.0
	for i := range g.Records {
		fractional := g.Records[i].adaptiveWeight * factor
		base := int(fractional)
		pixelPdf += fractional - float64(base)
		if rng.Float64() < pixelPdf {
			base++
			pixelPdf--
		}
		g.Records[i].nextSampleCount = base + 1
	}
	return true
}

// percentileError returns errors[(len(errors)*95)/100] (integer division,
// matching the reference renderer exactly) over cells with nonzero error,
// or 0 if every cell's error is zero.
func (g *Grid) percentileError() float64 {
	errs := make([]float64, 0, len(g.Records))
	for i := range g.Records {
		e := g.Records[i].ErrorEstimate()
		g.Records[i].adaptiveWeight = e
		if e > 0 {
			errs = append(errs, e)
		}
	}
	if len(errs) == 0 {
		return 0
	}
	sort.Float64s(errs)
	idx := len(errs) * 95 / 100
	return errs[idx]
}

// dilate is a one-ring max filter applied in two single-hop passes: forward
// (pulling from the not-yet-visited down/right neighbors) then backward
// (pulling from the already-forward-updated up/left neighbors). Each pass
// only reaches an immediate neighbor — this is deliberately not a true 3×3
// max, matching the documented two-pass 4-neighbor scheme exactly.
func (g *Grid) dilate() {
	w, h := g.GridWidth, g.GridHeight
	idx := func(x, y int) int { return y*w + x }

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := idx(x, y)
			if y < h-1 {
				g.Records[i].adaptiveWeight = max64(g.Records[i].adaptiveWeight, g.Records[idx(x, y+1)].adaptiveWeight)
			}
			if x < w-1 {
				g.Records[i].adaptiveWeight = max64(g.Records[i].adaptiveWeight, g.Records[idx(x+1, y)].adaptiveWeight)
			}
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := idx(x, y)
			if y > 0 {
				g.Records[i].adaptiveWeight = max64(g.Records[i].adaptiveWeight, g.Records[idx(x, y-1)].adaptiveWeight)
			}
			if x > 0 {
				g.Records[i].adaptiveWeight = max64(g.Records[i].adaptiveWeight, g.Records[idx(x-1, y)].adaptiveWeight)
			}
		}
	}
}

// Snapshot captures every record's state, row-major, for a resume blob.
func (g *Grid) Snapshot() []Snapshot {
	out := make([]Snapshot, len(g.Records))
	for i := range g.Records {
		out[i] = g.Records[i].Snapshot()
	}
	return out
}

// Restore overwrites every record's state from a snapshot captured by
// Snapshot. snapshots must have the same length as g.Records.
func (g *Grid) Restore(snapshots []Snapshot) error {
	if len(snapshots) != len(g.Records) {
		return fmt.Errorf("snapshot has %d records, grid has %d", len(snapshots), len(g.Records))
	}
	for i := range g.Records {
		g.Records[i].Restore(snapshots[i])
	}
	return nil
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
