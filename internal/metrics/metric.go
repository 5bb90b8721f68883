package metrics

import (
	"sort"
	"sync"

	"github.com/san-kum/particles/internal/environment"
)

// Metric folds a stream of frames into one number.
type Metric interface {
	Name() string
	Observe(f environment.Frame)
	Value() float64
	Reset()
}

// Set feeds every frame to its metrics. It is a Renderer, so it can be
// attached to an environment directly; reads are safe from any goroutine.
type Set struct {
	mu      sync.Mutex
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// Standard is energy drift, momentum drift and contact fraction.
func Standard() *Set {
	return NewSet(NewEnergyDrift(), NewMomentumDrift(), NewContacts())
}

func (s *Set) Add(m Metric) {
	s.mu.Lock()
	s.metrics = append(s.metrics, m)
	s.mu.Unlock()
}

func (s *Set) Render(f environment.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names lists metric names in name order.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return names
}
