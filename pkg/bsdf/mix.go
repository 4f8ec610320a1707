package bsdf

import "github.com/biofag/tungsten/pkg/core"

// Mix probabilistically blends two BSDFs by Ratio (0 = all B1, 1 = all
// B2). Sampling picks a sub-BSDF by Ratio, then recombines eval/pdf
// across both sub-BSDFs so the sample/pdf consistency invariant holds for
// the mixture as a whole, not just the sub-BSDF that was drawn.
type Mix struct {
	B1, B2 BSDF
	Ratio  float64
}

// NewMix creates a mix of b1 and b2, clamping ratio to [0,1].
func NewMix(b1, b2 BSDF, ratio float64) *Mix {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &Mix{B1: b1, B2: b2, Ratio: ratio}
}

func (m *Mix) Lobes() Mask {
	return m.B1.Lobes() | m.B2.Lobes()
}

func (m *Mix) Sample(event *Event) (Result, bool) {
	chosen, other, selProb := m.B1, m.B2, 1-m.Ratio
	if event.Sampler.Next1D() < m.Ratio {
		chosen, other, selProb = m.B2, m.B1, m.Ratio
	}

	res, ok := chosen.Sample(event)
	if !ok {
		return Result{}, false
	}
	if res.Lobe.IsSpecular() {
		res.Throughput = res.Throughput.Multiply(1 / selProb)
		return res, true
	}

	otherEvent := *event
	otherEvent.Wo = res.Wo
	otherPdf := other.Pdf(otherEvent)
	combinedPdf := res.Pdf*selProb + otherPdf*(1-selProb)
	if combinedPdf <= 0 {
		return Result{}, false
	}

	combinedEval := m.Eval(otherEvent)
	return Result{
		Wo:         res.Wo,
		Throughput: combinedEval.Multiply(1 / combinedPdf),
		Pdf:        combinedPdf,
		Lobe:       res.Lobe,
	}, true
}

func (m *Mix) Eval(event Event) core.Vec3 {
	e1 := m.B1.Eval(event)
	e2 := m.B2.Eval(event)
	return e1.Multiply(1 - m.Ratio).Add(e2.Multiply(m.Ratio))
}

func (m *Mix) Pdf(event Event) float64 {
	p1 := m.B1.Pdf(event)
	p2 := m.B2.Pdf(event)
	return p1*(1-m.Ratio) + p2*m.Ratio
}
