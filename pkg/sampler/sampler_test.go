package sampler

import "testing"

func TestUniform_Deterministic(t *testing.T) {
	a := NewUniform()
	a.Setup(17, 3)
	b := NewUniform()
	b.Setup(17, 3)

	for i := 0; i < 5; i++ {
		av, bv := a.Next1D(), b.Next1D()
		if av != bv {
			t.Fatalf("draw %d: got %v and %v, want identical streams", i, av, bv)
		}
	}
}

func TestUniform_DifferentPixelsDiverge(t *testing.T) {
	a := NewUniform()
	a.Setup(1, 0)
	b := NewUniform()
	b.Setup(2, 0)

	if a.Next1D() == b.Next1D() {
		t.Fatalf("distinct pixel indices produced identical first draws")
	}
}

func TestSobol_Deterministic(t *testing.T) {
	tests := []struct {
		name        string
		pixelIndex  int
		sampleIndex int
	}{
		{"origin", 0, 0},
		{"mid sample", 5, 100},
		{"large pixel", 4095, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSobol()
			a.Setup(tt.pixelIndex, tt.sampleIndex)
			b := NewSobol()
			b.Setup(tt.pixelIndex, tt.sampleIndex)

			for i := 0; i < 4; i++ {
				av := a.Next2D()
				bv := b.Next2D()
				if av != bv {
					t.Fatalf("draw %d: got %v and %v, want identical streams", i, av, bv)
				}
			}
		})
	}
}

func TestSobol_InUnitSquare(t *testing.T) {
	s := NewSobol()
	for pixel := 0; pixel < 16; pixel++ {
		for sample := 0; sample < 64; sample++ {
			s.Setup(pixel, sample)
			for axis := 0; axis < 6; axis++ {
				v := s.Next2D()
				if v.X < 0 || v.X >= 1 || v.Y < 0 || v.Y >= 1 {
					t.Fatalf("pixel %d sample %d axis %d: %v out of [0,1)^2", pixel, sample, axis, v)
				}
			}
		}
	}
}

func TestSobol_ResetsAxisOnSetup(t *testing.T) {
	s := NewSobol()
	s.Setup(9, 2)
	_ = s.Next2D()
	_ = s.Next1D()

	s.Setup(9, 2)
	first := s.Next2D()

	s2 := NewSobol()
	s2.Setup(9, 2)
	second := s2.Next2D()

	if first != second {
		t.Fatalf("Setup did not reset axis counter: got %v, want %v", first, second)
	}
}
