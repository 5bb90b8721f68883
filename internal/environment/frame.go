package environment

import (
	"time"

	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/strategy"
)

// Frame is what a renderer sees: a copy of every particle plus the loop
// state at render time.
type Frame struct {
	Time      time.Time
	Particles []physics.Particle
	Elapsed   float64
	TimeStep  float64
	Strategy  strategy.Kind
	Active    bool
	Ticks     uint64
	Frames    uint64
}

// Renderer is called on the loop goroutine once per frame. The frame is
// owned by the renderer after the call.
type Renderer interface {
	Render(f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(f Frame)

func (fn RendererFunc) Render(f Frame) { fn(f) }
