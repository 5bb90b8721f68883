package physics

import (
	"encoding/json"
	"math"
)

type particleJSON struct {
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	Spring float64 `json:"spring"`
	Drag   float64 `json:"drag"`
	Color  Color   `json:"color"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
}

// MarshalJSON writes the spring constant rather than its inverse so a rigid
// (zero inverse) or springless (infinite inverse) particle stays encodable.
func (p Particle) MarshalJSON() ([]byte, error) {
	spring := 1 / p.InvSpring
	if math.IsInf(spring, 0) {
		spring = math.MaxFloat64
	}
	return json.Marshal(particleJSON{
		Mass:   p.Mass,
		Radius: p.Radius,
		Spring: spring,
		Drag:   p.Drag,
		Color:  p.Color,
		X:      p.X,
		Y:      p.Y,
		VX:     p.VX,
		VY:     p.VY,
	})
}

func (p *Particle) UnmarshalJSON(data []byte) error {
	var v particleJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = *NewParticle(v.Mass, v.Radius, v.Spring, v.Drag, v.Color, v.X, v.Y, v.VX, v.VY)
	return nil
}
