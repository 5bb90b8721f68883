package metrics

import (
	"math"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/physics"
)

// EnergyDrift is the largest relative change of total energy from the
// first non-empty frame.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(f environment.Frame) {
	if len(f.Particles) == 0 {
		return
	}
	energy := physics.TotalEnergy(physics.Pointers(f.Particles))

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

// Current is the total energy of the last frame.
func (e *EnergyDrift) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyTrace keeps the total energy of the most recent non-empty frames.
type EnergyTrace struct {
	name   string
	limit  int
	series []float64
}

// NewEnergyTrace keeps at most limit samples; limit <= 0 keeps everything.
func NewEnergyTrace(limit int) *EnergyTrace {
	return &EnergyTrace{name: "energy", limit: limit}
}

func (e *EnergyTrace) Name() string { return e.name }

func (e *EnergyTrace) Observe(f environment.Frame) {
	if len(f.Particles) == 0 {
		return
	}
	e.series = append(e.series, physics.TotalEnergy(physics.Pointers(f.Particles)))
	if e.limit > 0 && len(e.series) > e.limit {
		e.series = append(e.series[:0], e.series[len(e.series)-e.limit:]...)
	}
}

// Value is the latest sample.
func (e *EnergyTrace) Value() float64 {
	if len(e.series) == 0 {
		return 0
	}
	return e.series[len(e.series)-1]
}

// Series returns a copy of the kept samples, oldest first.
func (e *EnergyTrace) Series() []float64 {
	return append([]float64(nil), e.series...)
}

func (e *EnergyTrace) Reset() {
	e.series = e.series[:0]
}
