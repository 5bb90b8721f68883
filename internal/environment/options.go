package environment

import (
	"log"
	"time"
)

type Option func(*Environment)

func WithLogger(l *log.Logger) Option {
	return func(e *Environment) { e.logger = l }
}

// WithRenderer adds a render collaborator. Renderers run in the order added.
func WithRenderer(r Renderer) Option {
	return func(e *Environment) { e.renderers = append(e.renderers, r) }
}

func WithClock(c Clock) Option {
	return func(e *Environment) { e.clock = c }
}

func WithTimeStep(step float64) Option {
	return func(e *Environment) { e.timeStep.Store(bits(step)) }
}

func WithIntervals(tick, frame time.Duration) Option {
	return func(e *Environment) {
		e.tickInterval.Store(int64(tick))
		e.frameInterval.Store(int64(frame))
	}
}

// WithActive sets whether ticks run from the first cycle.
func WithActive(active bool) Option {
	return func(e *Environment) { e.active.Store(active) }
}
