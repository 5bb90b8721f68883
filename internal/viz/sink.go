package viz

import "github.com/san-kum/particles/internal/environment"

// Sink is a Renderer that hands frames to the UI. It never blocks the
// loop: a frame the UI has not picked up yet is replaced by the newer one.
type Sink struct {
	ch chan environment.Frame
}

func NewSink() *Sink {
	return &Sink{ch: make(chan environment.Frame, 1)}
}

// Render must only be called from a single goroutine, the loop's.
func (s *Sink) Render(f environment.Frame) {
	select {
	case s.ch <- f:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- f:
	default:
	}
}

func (s *Sink) Frames() <-chan environment.Frame { return s.ch }
