package physics

import (
	"fmt"
	"math"
)

// Particle is a point mass with a soft contact radius.
//
// The acceleration accumulator is transient: it collects the force/mass
// contributions of one pairwise pass and is consumed by Update. It is never
// persisted and never copied into a Frame.
type Particle struct {
	Mass      float64
	Radius    float64
	InvSpring float64
	Drag      float64
	Color     Color
	X, Y      float64
	VX, VY    float64

	ax, ay float64
}

// NewParticle stores the inverse of spring. No argument is validated: a zero
// spring yields an infinite InvSpring and non-positive masses propagate as
// Inf/NaN through the force law.
func NewParticle(mass, radius, spring, drag float64, color Color, x, y, vx, vy float64) *Particle {
	return &Particle{
		Mass:      mass,
		Radius:    radius,
		InvSpring: 1 / spring,
		Drag:      drag,
		Color:     color,
		X:         x,
		Y:         y,
		VX:        vx,
		VY:        vy,
	}
}

func DefaultParticle() *Particle {
	return NewParticle(1, 1, 1, 1, Black, 0, 0, 0, 0)
}

func (p *Particle) Spring() float64 { return 1 / p.InvSpring }

func (p *Particle) SetSpring(spring float64) { p.InvSpring = 1 / spring }

// Accel returns the pending accumulator contents.
func (p *Particle) Accel() (ax, ay float64) { return p.ax, p.ay }

// Interact adds the pairwise force between p and o to both accumulators and
// returns the centre distance.
//
// Inside the combined radius the force is a linear spring softened by a
// residual attraction, plus velocity-difference damping. Outside it is unit
// inverse-square attraction. Each side is scaled by the other's mass with
// opposite sign, so momentum is exchanged exactly.
func (p *Particle) Interact(o *Particle) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	distSq := dx*dx + dy*dy
	dist := math.Sqrt(distSq)
	reach := p.Radius + o.Radius

	var fx, fy float64
	if dist <= reach {
		f := (reach/dist-1)/(p.Mass*o.Mass*(p.InvSpring+o.InvSpring)) - 1/(reach*reach*reach)
		drag := p.Drag * o.Drag
		fx = f*dx + drag*(o.VX-p.VX)
		fy = f*dy + drag*(o.VY-p.VY)
	} else {
		f := -1 / (distSq * dist)
		fx = f * dx
		fy = f * dy
	}

	p.ax += fx * o.Mass
	p.ay += fy * o.Mass
	o.ax -= fx * p.Mass
	o.ay -= fy * p.Mass
	return dist
}

// RelativeVelocitySquared is |v_o - v_p|^2.
func (p *Particle) RelativeVelocitySquared(o *Particle) float64 {
	dvx := o.VX - p.VX
	dvy := o.VY - p.VY
	return dvx*dvx + dvy*dvy
}

// InContact reports whether the centres are within the combined radius.
func (p *Particle) InContact(o *Particle) bool {
	dx := p.X - o.X
	dy := p.Y - o.Y
	reach := p.Radius + o.Radius
	return dx*dx+dy*dy <= reach*reach
}

// Update advances by dt with semi-implicit Euler and clears the accumulator.
func (p *Particle) Update(dt float64) {
	p.VX += p.ax * dt
	p.VY += p.ay * dt
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.ax, p.ay = 0, 0
}

// Clone returns a copy with an empty accumulator.
func (p *Particle) Clone() *Particle {
	c := *p
	c.ax, c.ay = 0, 0
	return &c
}

func (p *Particle) String() string {
	return fmt.Sprintf("Particle[mass=%g,radius=%g,spring=%g,drag=%g,color=%s,x=%g,y=%g,vx=%g,vy=%g]",
		p.Mass, p.Radius, p.Spring(), p.Drag, p.Color.Hex(), p.X, p.Y, p.VX, p.VY)
}
