package scenario

import (
	"math"
	"math/rand"

	"github.com/san-kum/particles/internal/physics"
)

const circle = 2 * math.Pi

// Generator lays out a scene. It must draw randomness only from rng.
type Generator func(t Template, rng *rand.Rand) []*physics.Particle

// shell colours for bodies whose particles are tinted by depth
var (
	innerA  = physics.RGBA(255, 255, 0, 128)
	mantleA = physics.RGBA(255, 0, 0, 128)
	crustA  = physics.RGBA(144, 144, 144, 192)
	innerB  = physics.RGBA(128, 255, 0, 128)
	mantleB = physics.RGBA(128, 128, 0, 128)
	crustB  = physics.RGBA(112, 112, 112, 192)
)

// planet packs count particles in rings of spacing 2*Distance around
// (x, y). Each particle gets the bulk velocity plus rigid rotation at Spin.
// shade, if set, sees every particle with its ring radius.
func planet(out []*physics.Particle, t Template, count int, x, y, vx, vy float64,
	shade func(p *physics.Particle, r float64)) []*physics.Particle {
	var ring, ang float64
	div := circle + 0.1
	vx += t.VX
	vy += t.VY
	for i := 0; i < count; i++ {
		px := math.Sin(ang) * ring
		py := math.Cos(ang) * ring
		p := t.particle(px+x, py+y, -py*t.Spin+vx, px*t.Spin+vy)
		out = append(out, p)
		if shade != nil {
			shade(p, ring)
		}
		if ang += div; ang > circle-div {
			ring += t.Distance * 2
			ang = 0
			div = circle * t.Distance / (ring * math.Pi)
		}
	}
	return out
}

// layered tints by depth fraction. With scale set the core is made heavier
// and the crust lighter.
func layered(outer float64, inner, mantle, crust physics.Color, scale bool) func(*physics.Particle, float64) {
	return func(p *physics.Particle, r float64) {
		switch rat := r / outer; {
		case rat < 0.5:
			p.Color = inner
			if scale {
				p.Mass *= 1.2
			}
		case rat < 0.95:
			p.Color = mantle
		default:
			p.Color = crust
			if scale {
				p.Mass *= 0.8
			}
		}
	}
}

// Ring is a body orbiting far outside a heavy central star, inside its
// Roche limit.
func Ring(t Template, _ *rand.Rand) []*physics.Particle {
	mainMass := t.Mass * float64(t.Count) * 50
	radius := t.Distance * math.Sqrt(float64(t.Count)) * 4
	out := planet(nil, t, t.Count, radius*2.5, 0, 0, 0, nil)
	return append(out, physics.NewParticle(mainMass, radius, t.Spring, t.Drag, physics.Yellow,
		0, 0, t.VX*-0.02, t.VY*-0.02))
}

// BlackHole is a body falling past a small, dense central mass.
func BlackHole(t Template, _ *rand.Rand) []*physics.Particle {
	mainMass := t.Mass * float64(t.Count) * 2
	radius := t.Distance * math.Sqrt(float64(t.Count)) * 0.1
	out := planet(nil, t, t.Count, radius*30, 0, 0, 0, nil)
	return append(out, physics.NewParticle(mainMass, radius, t.Spring, t.Drag, physics.DarkGray,
		0, 0, t.VX*-0.5, t.VY*-0.5))
}

// DirectCollision sends two equal layered bodies head on.
func DirectCollision(t Template, _ *rand.Rand) []*physics.Particle {
	n := t.Count / 2
	outer := t.Distance * math.Sqrt(float64(n))
	out := planet(nil, t, n, outer*2, 0, 0, 0, layered(outer, innerA, mantleA, crustA, false))
	return planet(out, t, n, -outer*2, 0, -2*t.VX, -2*t.VY, layered(outer, innerB, mantleB, crustB, false))
}

// PenetrationCollision fires a body through a lattice of light, soft dust.
func PenetrationCollision(t Template, _ *rand.Rand) []*physics.Particle {
	side := int(math.Sqrt(float64(t.Count)*0.75))*5 + 5
	dust := physics.RGBA(255, 255, 255, 50)
	var out []*physics.Particle
	for x := -side; x < side; x += 10 {
		for y := -side; y < side; y += 10 {
			out = append(out, physics.NewParticle(0.2, 5, 0.2, 0.001, dust, float64(x), float64(y), 0, 0))
		}
	}
	return planet(out, t, t.Count/4, float64(-side*2), 0, 0, 0, nil)
}

// HitAndRun grazes a large differentiated body with a smaller one.
func HitAndRun(t Template, _ *rand.Rand) []*physics.Particle {
	n1, n2 := t.Count*2/3, t.Count/3
	max1 := t.Distance * math.Sqrt(float64(n1))
	max2 := t.Distance * math.Sqrt(float64(n2))
	out := planet(nil, t, n1, 0, 0, -t.VX, 0, layered(max1, innerA, mantleA, crustA, true))
	return planet(out, t, n2, -max1*3, max1*1.8, 0, 0, layered(max2, innerB, mantleB, crustB, true))
}

// CosmologicalSponge seeds an expanding field of visible matter over a
// grid of invisible, heavier dark matter.
func CosmologicalSponge(t Template, rng *rand.Rand) []*physics.Particle {
	size := t.Distance / math.Sqrt(float64(t.Count/4))
	dark := physics.RGBA(255, 255, 255, 0)
	hubble := t.Mass * 0.2
	var out []*physics.Particle
	for x := -t.Distance; x < t.Distance; x += size {
		for y := -t.Distance; y < t.Distance; y += size {
			out = append(out, physics.NewParticle(t.Mass*4, size/2, 0, 0, dark, x, y, hubble*x, hubble*y))
		}
	}
	for i := 0; i < t.Count*3/4; i++ {
		x := (rng.Float64()*2 - 1) * t.Distance
		y := (rng.Float64()*2 - 1) * t.Distance
		out = append(out, t.particle(x, y, hubble*x, hubble*y))
	}
	return out
}

// MoonCreatingCollision is an oblique impact of a third-size body.
func MoonCreatingCollision(t Template, _ *rand.Rand) []*physics.Particle {
	n := t.Count * 2 / 3
	outer := t.Distance * math.Sqrt(float64(n))
	ax, ay := t.VX/3, t.VY/3
	out := planet(nil, t, n, outer*3, outer*0.7, -ax, -ay, nil)
	return planet(out, t, t.Count/3, -outer*3, -outer*0.7, -2*t.VX-ax, -2*t.VY-ay, nil)
}

// MantleDifferentiation mixes four densities in one body so the heavy
// material sinks.
func MantleDifferentiation(t Template, rng *rand.Rand) []*physics.Particle {
	colors := [4]physics.Color{
		physics.RGBA(128, 128, 128, 128),
		physics.RGBA(255, 0, 0, 128),
		physics.RGBA(255, 255, 0, 128),
		physics.RGBA(255, 255, 255, 128),
	}
	weights := [4]float64{0.8, 1.6, 2.4, 3.2}
	return planet(nil, t, t.Count, 0, 0, 0, 0, func(p *physics.Particle, _ float64) {
		k := rng.Intn(4)
		p.Mass *= weights[k]
		p.Color = colors[k]
	})
}

// AngularMomentum is a single spinning body.
func AngularMomentum(t Template, _ *rand.Rand) []*physics.Particle {
	return planet(nil, t, t.Count, 0, 0, 0, 0, nil)
}

// AccretionDisk scatters particles on a disk in rigid rotation.
func AccretionDisk(t Template, rng *rand.Rand) []*physics.Particle {
	out := make([]*physics.Particle, 0, t.Count)
	for i := 0; i < t.Count; i++ {
		angle := rng.Float64() * circle
		pos := t.Distance * rng.Float64()
		vel := t.Spin * pos
		x, y := math.Sin(angle), math.Cos(angle)
		out = append(out, t.particle(x*pos, y*pos, y*vel, -x*vel))
	}
	return out
}

// ProtoplanetaryDisk puts particles on circular orbits around a star.
func ProtoplanetaryDisk(t Template, rng *rand.Rand) []*physics.Particle {
	mainMass := t.Mass * float64(t.Count) * 10
	r, g, b, _ := t.Color.Components()
	out := make([]*physics.Particle, 0, t.Count+1)
	out = append(out, physics.NewParticle(mainMass, t.Distance*0.03, t.Spring, t.Drag,
		physics.RGBA(r, b, g, 255), 0, 0, 0, 0))
	for i := 0; i < t.Count; i++ {
		angle := rng.Float64() * circle
		pos := t.Distance * (rng.Float64()*0.8 + 0.2)
		vel := math.Sqrt(mainMass / pos)
		x, y := math.Sin(angle), math.Cos(angle)
		out = append(out, t.particle(x*pos, y*pos, y*vel, -x*vel))
	}
	return out
}
