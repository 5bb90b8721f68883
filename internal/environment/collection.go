package environment

import "github.com/san-kum/particles/internal/physics"

// Collection is the ordered particle set. It is only handed to code running
// on the loop goroutine.
type Collection struct {
	particles []*physics.Particle
}

// Operation is a deferred mutation. Operations run in FIFO order between
// loop phases.
type Operation func(c *Collection)

func (c *Collection) Len() int { return len(c.particles) }

func (c *Collection) At(i int) *physics.Particle { return c.particles[i] }

// Particles exposes the backing slice. Callers must not keep it past the
// operation that received it.
func (c *Collection) Particles() []*physics.Particle { return c.particles }

func (c *Collection) Add(ps ...*physics.Particle) {
	c.particles = append(c.particles, ps...)
}

func (c *Collection) Replace(ps []*physics.Particle) {
	c.particles = append(c.particles[:0:0], ps...)
}

// Remove drops the particle at i, keeping order.
func (c *Collection) Remove(i int) {
	c.particles = append(c.particles[:i], c.particles[i+1:]...)
}

func (c *Collection) Clear() {
	c.particles = nil
}

// Values copies every particle.
func (c *Collection) Values() []physics.Particle {
	out := make([]physics.Particle, len(c.particles))
	for i, p := range c.particles {
		out[i] = *p
	}
	return out
}
