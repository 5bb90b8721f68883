package metrics

import (
	"math"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/physics"
)

// MomentumDrift is the largest |p - p0| seen, p0 being the momentum of the
// first non-empty frame. The pairwise law exchanges momentum exactly, so
// this only grows through rounding or a changed collection.
type MomentumDrift struct {
	name     string
	px0, py0 float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(f environment.Frame) {
	if len(f.Particles) == 0 {
		return
	}
	px, py := physics.Momentum(physics.Pointers(f.Particles))
	if m.samples == 0 {
		m.px0, m.py0 = px, py
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Hypot(px-m.px0, py-m.py0))
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.px0, m.py0 = 0, 0
	m.maxDrift = 0
	m.samples = 0
}
