package strategy

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/particles/internal/physics"
)

// DefaultThreshold is the accuracy ratio used when none is configured.
const DefaultThreshold = 0.49

// Adaptive splits one tick into substeps so that no pair closes more than a
// threshold fraction of its distance within a substep:
//
//	substep^2 <= threshold * d / |dv|^2
//
// Forces are recomputed from scratch for every substep. With a zero
// MinSubstep there is no floor, so a pair at near-zero distance and
// near-zero relative velocity can make a tick take arbitrarily many passes.
type Adaptive struct {
	threshold  atomic.Uint64
	minSubstep atomic.Uint64

	// Trace, when set before binding, observes every substep together with
	// the time still to cover before it was taken.
	Trace func(substep, remaining float64)

	last int
}

func NewAdaptive(threshold, minSubstep float64) *Adaptive {
	a := &Adaptive{}
	a.SetThreshold(threshold)
	a.SetMinSubstep(minSubstep)
	return a
}

func (*Adaptive) Kind() Kind { return KindAdaptive }

// SetThreshold may be called from any goroutine; it takes effect on the next
// Advance.
func (a *Adaptive) SetThreshold(v float64) { a.threshold.Store(math.Float64bits(v)) }

func (a *Adaptive) Threshold() float64 { return math.Float64frombits(a.threshold.Load()) }

// SetMinSubstep sets the substep floor. Zero disables it.
func (a *Adaptive) SetMinSubstep(v float64) { a.minSubstep.Store(math.Float64bits(v)) }

func (a *Adaptive) MinSubstep() float64 { return math.Float64frombits(a.minSubstep.Load()) }

// LastSubsteps is the number of passes the previous Advance took. Read it
// from the goroutine that calls Advance.
func (a *Adaptive) LastSubsteps() int { return a.last }

func (a *Adaptive) Advance(particles []*physics.Particle, step float64) {
	threshold := a.Threshold()
	floor := a.MinSubstep()
	n := len(particles)

	a.last = 0
	remaining := step
	for remaining > 0 {
		bound := remaining * remaining
		for i := 0; i < n; i++ {
			p := particles[i]
			for j := i + 1; j < n; j++ {
				q := particles[j]
				d := p.Interact(q)
				// NaN candidates never win the comparison
				if c := threshold * d / p.RelativeVelocitySquared(q); c < bound {
					bound = c
				}
			}
		}

		sub := math.Sqrt(bound)
		if sub < floor {
			sub = floor
		}
		if sub > remaining {
			sub = remaining
		}
		for _, p := range particles {
			p.Update(sub)
		}

		if a.Trace != nil {
			a.Trace(sub, remaining)
		}
		remaining -= sub
		a.last++
	}
}
