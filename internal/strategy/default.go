package strategy

import "github.com/san-kum/particles/internal/physics"

// Default is the plain O(n^2) pass. Particle i is updated as soon as its
// row of the upper triangle is done; every pair touching i has been
// accumulated by then, so the result equals interact-all-then-update-all.
type Default struct{}

func NewDefault() *Default { return &Default{} }

func (*Default) Kind() Kind { return KindDefault }

func (*Default) Advance(particles []*physics.Particle, step float64) {
	n := len(particles)
	for i := 0; i < n; i++ {
		p := particles[i]
		for j := i + 1; j < n; j++ {
			p.Interact(particles[j])
		}
		p.Update(step)
	}
}
