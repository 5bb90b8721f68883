package scenario

import (
	"math"

	"github.com/san-kum/particles/internal/physics"
)

// Template is the material and motion of generated particles.
type Template struct {
	Count    int           `yaml:"count" json:"count"`
	Color    physics.Color `yaml:"color" json:"color"`
	Mass     float64       `yaml:"mass" json:"mass"`
	Radius   float64       `yaml:"radius" json:"radius"`
	Spring   float64       `yaml:"spring" json:"spring"`
	Drag     float64       `yaml:"drag" json:"drag"`
	Distance float64       `yaml:"distance" json:"distance"`
	VX       float64       `yaml:"vx" json:"vx"`
	VY       float64       `yaml:"vy" json:"vy"`
	Spin     float64       `yaml:"spin" json:"spin"`
}

// Body is the quantity of material a body is made of, as entered by a user:
// total mass and radius for the whole body, split over Resolution particles.
type Body struct {
	Resolution  int
	Mass        float64
	Radius      float64
	Spring      float64
	Drag        float64
	Compactness float64
	VX, VY      float64
	Spin        float64
	Color       physics.Color
}

// DefaultBody matches the values the editor starts with.
func DefaultBody() Body {
	return Body{
		Resolution:  100,
		Mass:        240,
		Radius:      50,
		Spring:      0.075,
		Drag:        0.0036,
		Compactness: 1,
		Color:       physics.RGBA(255, 255, 255, 50),
	}
}

// Template spreads the body over its particles. Mass divides by the count;
// radius, spring and drag scale with its square root so a body keeps its
// size and stiffness at any resolution.
func (b Body) Template() Template {
	res := float64(b.Resolution)
	root := math.Sqrt(res)
	radius := b.Radius / root
	compact := b.Compactness
	if compact == 0 {
		compact = 1
	}
	return Template{
		Count:    b.Resolution,
		Color:    b.Color,
		Mass:     b.Mass / res,
		Radius:   radius,
		Spring:   b.Spring * root,
		Drag:     b.Drag * root,
		Distance: radius / compact,
		VX:       b.VX,
		VY:       b.VY,
		Spin:     b.Spin,
	}
}

func (t Template) particle(x, y, vx, vy float64) *physics.Particle {
	return physics.NewParticle(t.Mass, t.Radius, t.Spring, t.Drag, t.Color, x, y, vx, vy)
}
