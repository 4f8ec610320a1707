package texture

// Distribution1D is a piecewise-constant 1D probability distribution built
// from non-negative weights, invertible in O(log n) via its CDF.
type Distribution1D struct {
	weights []float64
	cdf     []float64
	funcInt float64
}

func NewDistribution1D(weights []float64) *Distribution1D {
	n := len(weights)
	d := &Distribution1D{weights: weights, cdf: make([]float64, n+1)}
	for i, w := range weights {
		d.cdf[i+1] = d.cdf[i] + w
	}
	d.funcInt = d.cdf[n]
	if d.funcInt == 0 {
		for i := 1; i <= n; i++ {
			d.cdf[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i <= n; i++ {
			d.cdf[i] /= d.funcInt
		}
	}
	return d
}

// SampleContinuous inverts u against the CDF, returning the offset within
// [0,1), the bucket index, and the density (normalized so its integral
// over [0,1) is 1; zero-weight distributions are uniform).
func (d *Distribution1D) SampleContinuous(u float64) (offset float64, index int, pdf float64) {
	n := len(d.weights)
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cdf[mid] <= u {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	index = lo - 1
	if index < 0 {
		index = 0
	}
	if index > n-1 {
		index = n - 1
	}

	du := d.cdf[index+1] - d.cdf[index]
	if du > 0 {
		offset = (u - d.cdf[index]) / du
	}

	if d.funcInt == 0 {
		pdf = 1
	} else {
		pdf = d.weights[index] * float64(n) / d.funcInt
	}
	return offset, index, pdf
}

// DiscretePDF returns the probability mass assigned to index (sums to 1
// across all indices), as opposed to SampleContinuous's density.
func (d *Distribution1D) DiscretePDF(index int) float64 {
	if d.funcInt == 0 {
		return 1.0 / float64(len(d.weights))
	}
	return d.weights[index] / d.funcInt
}

// Count returns the number of weighted entries.
func (d *Distribution1D) Count() int { return len(d.weights) }

// distribution2D is a piecewise-constant 2D distribution over a W×H grid,
// built from per-row marginals and per-row conditionals — the standard
// two-stage inversion technique for importance-sampling bitmaps.
type distribution2D struct {
	conditional []*Distribution1D
	marginal    *Distribution1D
	width       int
	height      int
}

func newDistribution2D(weights []float64, width, height int) *distribution2D {
	d := &distribution2D{
		conditional: make([]*Distribution1D, height),
		width:       width,
		height:      height,
	}
	rowSums := make([]float64, height)
	for y := 0; y < height; y++ {
		row := weights[y*width : (y+1)*width]
		rowCopy := make([]float64, width)
		copy(rowCopy, row)
		d.conditional[y] = NewDistribution1D(rowCopy)
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		rowSums[y] = sum
	}
	d.marginal = NewDistribution1D(rowSums)
	return d
}

// warp maps a uniform (u, v) in [0,1)^2 to a point in the same domain,
// distributed according to the grid weights, plus the (row, col) cell it
// landed in.
func (d *distribution2D) warp(u, v float64) (wu, wv float64, row, col int) {
	dv, r, _ := d.marginal.SampleContinuous(v)
	du, c, _ := d.conditional[r].SampleContinuous(u)
	return du, dv, r, c
}

// pdf returns the continuous density at cell (row, col): the probability
// mass of that cell divided by its area (1/(W*H)), i.e. cellPdf * W * H.
func (d *distribution2D) pdf(row, col int) float64 {
	if d.marginal.funcInt == 0 {
		return 1
	}
	condWeight := d.conditional[row].weights[col]
	rowSum := 0.0
	for _, w := range d.conditional[row].weights {
		rowSum += w
	}
	if rowSum == 0 {
		return 0
	}
	rowPdf := d.marginal.weights[row] * float64(d.height) / d.marginal.funcInt
	colPdf := condWeight * float64(d.width) / rowSum
	return rowPdf * colPdf
}
