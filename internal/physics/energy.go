package physics

import "math"

// KineticEnergy sums m|v|^2/2.
func KineticEnergy(ps []*Particle) float64 {
	ke := 0.0
	for _, p := range ps {
		ke += 0.5 * p.Mass * (p.VX*p.VX + p.VY*p.VY)
	}
	return ke
}

// PotentialEnergy is the pair potential whose gradient is the force law in
// Interact. Outside contact it is -m_a m_b / d; inside contact the spring and
// residual attraction terms are integrated and joined continuously at d = R.
func PotentialEnergy(ps []*Particle) float64 {
	pe := 0.0
	n := len(ps)
	for i := 0; i < n; i++ {
		a := ps[i]
		for j := i + 1; j < n; j++ {
			pe += pairPotential(a, ps[j])
		}
	}
	return pe
}

func pairPotential(a, b *Particle) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	d := math.Sqrt(dx*dx + dy*dy)
	reach := a.Radius + b.Radius
	mm := a.Mass * b.Mass
	if d > reach {
		return -mm / d
	}
	overlap := reach - d
	return overlap*overlap/(2*(a.InvSpring+b.InvSpring)) + mm*d*d/(2*reach*reach*reach) - 1.5*mm/reach
}

func TotalEnergy(ps []*Particle) float64 {
	return KineticEnergy(ps) + PotentialEnergy(ps)
}

func Momentum(ps []*Particle) (px, py float64) {
	for _, p := range ps {
		px += p.Mass * p.VX
		py += p.Mass * p.VY
	}
	return
}

func AngularMomentum(ps []*Particle) float64 {
	L := 0.0
	for _, p := range ps {
		L += p.Mass * (p.X*p.VY - p.Y*p.VX)
	}
	return L
}

// CenterOfMass returns NaN coordinates for an empty or massless set.
func CenterOfMass(ps []*Particle) (x, y float64) {
	total := 0.0
	for _, p := range ps {
		x += p.Mass * p.X
		y += p.Mass * p.Y
		total += p.Mass
	}
	return x / total, y / total
}

// Pointers adapts a value slice for the helpers above.
func Pointers(ps []Particle) []*Particle {
	out := make([]*Particle, len(ps))
	for i := range ps {
		out[i] = &ps[i]
	}
	return out
}
