package stream

import (
	"encoding/json"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/physics"
)

// Point is the wire form of a particle: only what a viewer draws.
type Point struct {
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Radius float64       `json:"r"`
	Color  physics.Color `json:"c"`
}

// FrameMessage is sent to every client once per rendered frame.
type FrameMessage struct {
	Type      string  `json:"type"`
	Elapsed   float64 `json:"elapsed"`
	TimeStep  float64 `json:"time_step"`
	Strategy  string  `json:"strategy"`
	Active    bool    `json:"active"`
	Ticks     uint64  `json:"ticks"`
	Frames    uint64  `json:"frames"`
	Particles []Point `json:"particles"`
}

func NewFrameMessage(f environment.Frame) FrameMessage {
	pts := make([]Point, len(f.Particles))
	for i := range f.Particles {
		p := &f.Particles[i]
		pts[i] = Point{X: p.X, Y: p.Y, Radius: p.Radius, Color: p.Color}
	}
	return FrameMessage{
		Type:      "frame",
		Elapsed:   f.Elapsed,
		TimeStep:  f.TimeStep,
		Strategy:  string(f.Strategy),
		Active:    f.Active,
		Ticks:     f.Ticks,
		Frames:    f.Frames,
		Particles: pts,
	}
}

// WSMessage is an inbound control message.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type StrategyData struct {
	Kind string `json:"kind"`
}

type TimeStepData struct {
	Value float64 `json:"value"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
