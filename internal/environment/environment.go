package environment

import (
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/strategy"
)

// DefaultInterval is the minimum time between ticks and between frames.
const DefaultInterval = 16 * time.Millisecond

// Environment is the particle scheduler. It holds its strategy through the
// registry and is the owner it binds with.
type Environment struct {
	registry  *strategy.Registry
	logger    *log.Logger
	clock     Clock
	renderers []Renderer

	qmu   sync.Mutex
	queue []Operation

	// loop goroutine only
	coll      Collection
	current   strategy.Strategy
	lastFrame time.Time
	lastTick  time.Time

	kind          atomic.Value
	active        atomic.Bool
	timeStep      atomic.Uint64
	elapsed       atomic.Uint64
	tickInterval  atomic.Int64
	frameInterval atomic.Int64
	ticks         atomic.Uint64
	frames        atomic.Uint64
	count         atomic.Int64

	runMu    sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// New binds kind from reg and returns a stopped environment with an empty
// collection.
func New(reg *strategy.Registry, kind strategy.Kind, opts ...Option) (*Environment, error) {
	e := &Environment{
		registry: reg,
		logger:   log.New(os.Stderr, "", log.LstdFlags),
		clock:    systemClock{},
		stopChan: make(chan struct{}),
	}
	e.active.Store(true)
	e.timeStep.Store(bits(1))
	e.tickInterval.Store(int64(DefaultInterval))
	e.frameInterval.Store(int64(DefaultInterval))
	for _, opt := range opts {
		opt(e)
	}

	s, err := reg.Bind(kind, e)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", kind, err)
	}
	e.current = s
	e.kind.Store(kind)
	return e, nil
}

func (e *Environment) Registry() *strategy.Registry { return e.registry }

// Strategy is the kind currently bound.
func (e *Environment) Strategy() strategy.Kind { return e.kind.Load().(strategy.Kind) }

func (e *Environment) Active() bool { return e.active.Load() }

// SetActive takes effect on the next cycle without queueing.
func (e *Environment) SetActive(active bool) { e.active.Store(active) }

func (e *Environment) TimeStep() float64 { return float64frombits(e.timeStep.Load()) }

func (e *Environment) Elapsed() float64 { return float64frombits(e.elapsed.Load()) }

func (e *Environment) TickInterval() time.Duration {
	return time.Duration(e.tickInterval.Load())
}

func (e *Environment) FrameInterval() time.Duration {
	return time.Duration(e.frameInterval.Load())
}

func (e *Environment) SetTickInterval(d time.Duration) { e.tickInterval.Store(int64(d)) }

func (e *Environment) SetFrameInterval(d time.Duration) { e.frameInterval.Store(int64(d)) }

func (e *Environment) Ticks() uint64 { return e.ticks.Load() }

func (e *Environment) Frames() uint64 { return e.frames.Load() }

// Len is the collection size as of the last drain.
func (e *Environment) Len() int { return int(e.count.Load()) }

// Queue defers op to the next drain.
func (e *Environment) Queue(op Operation) {
	e.qmu.Lock()
	e.queue = append(e.queue, op)
	e.qmu.Unlock()
}

// Pending is the number of operations waiting for a drain.
func (e *Environment) Pending() int {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	return len(e.queue)
}

func (e *Environment) Add(ps ...*physics.Particle) {
	e.Queue(func(c *Collection) { c.Add(ps...) })
}

func (e *Environment) Replace(ps []*physics.Particle) {
	e.Queue(func(c *Collection) { c.Replace(ps) })
}

func (e *Environment) Clear() {
	e.Queue(func(c *Collection) { c.Clear() })
}

// Snapshot hands fn a copy of the collection at its place in the queue. fn
// runs on the loop goroutine.
func (e *Environment) Snapshot(fn func([]physics.Particle)) {
	e.Queue(func(c *Collection) { fn(c.Values()) })
}

func (e *Environment) SetTimeStep(step float64) {
	e.Queue(func(*Collection) { e.timeStep.Store(bits(step)) })
}

func (e *Environment) SetElapsed(t float64) {
	e.Queue(func(*Collection) { e.elapsed.Store(bits(t)) })
}

// SetStrategy queues a swap to kind. Unknown kinds fail immediately.
func (e *Environment) SetStrategy(kind strategy.Kind) error {
	if _, err := e.registry.Get(kind); err != nil {
		return err
	}
	e.Queue(func(*Collection) { e.swap(kind) })
	return nil
}

// SetThreshold updates the adaptive instance whether or not it is bound.
func (e *Environment) SetThreshold(v float64) error {
	a, err := e.adaptive()
	if err != nil {
		return err
	}
	a.SetThreshold(v)
	return nil
}

func (e *Environment) SetMinSubstep(v float64) error {
	a, err := e.adaptive()
	if err != nil {
		return err
	}
	a.SetMinSubstep(v)
	return nil
}

func (e *Environment) adaptive() (*strategy.Adaptive, error) {
	s, err := e.registry.Get(strategy.KindAdaptive)
	if err != nil {
		return nil, ErrNoAdaptive
	}
	a, ok := s.(*strategy.Adaptive)
	if !ok {
		return nil, ErrNoAdaptive
	}
	return a, nil
}

// swap runs inside a drain, so no tick is in progress.
func (e *Environment) swap(kind strategy.Kind) {
	old := e.current
	if old.Kind() == kind {
		return
	}
	if err := e.registry.Unbind(old.Kind(), e); err != nil {
		e.logger.Printf("[SCHED] unbind %s: %v", old.Kind(), err)
	}

	next, err := e.registry.Bind(kind, e)
	if err != nil {
		e.logger.Printf("[SCHED] swap %s -> %s failed: %v", old.Kind(), kind, err)
		if next, err = e.registry.Bind(old.Kind(), e); err != nil {
			e.logger.Printf("[SCHED] rebind %s: %v", old.Kind(), err)
			next = old
		}
	} else {
		e.logger.Printf("[SCHED] strategy %s -> %s", old.Kind(), kind)
	}
	e.current = next
	e.kind.Store(next.Kind())
}

func bits(f float64) uint64 { return math.Float64bits(f) }

func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
