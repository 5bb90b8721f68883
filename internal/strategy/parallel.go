package strategy

import (
	"log"
	"runtime"
	"sync"

	"github.com/san-kum/particles/internal/physics"
)

// Parallel distributes the pairwise pass over a fixed pool of persistent
// workers. The goroutine calling Advance counts as one of them.
//
// Work is claimed from two countdowns, one per phase, under mu: a claimer
// takes a chunk off the top of the remaining range and runs it without the
// lock. Pair ids are turned back into (i, j) with Unrank, and the two
// particle locks are always taken lower index first. The update phase only
// starts once every interaction chunk has finished, so no accumulator is
// read while it can still be written.
type Parallel struct {
	workers int

	// Logger, when set before binding, reports pool start and join.
	Logger *log.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	particles []*physics.Particle
	locks     []sync.Mutex
	step      float64
	pairs     int
	updates   int
	inflight  int
	live      int
	stop      bool
	wg        sync.WaitGroup
}

// NewParallel sizes the pool; workers <= 0 means runtime.NumCPU().
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Parallel{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	return p
}

func (*Parallel) Kind() Kind { return KindParallel }

func (p *Parallel) Workers() int { return p.workers }

// Live is the number of helper goroutines currently running.
func (p *Parallel) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// CollectionChanged resizes the particle lock table.
func (p *Parallel) CollectionChanged(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.locks) != n {
		p.locks = make([]sync.Mutex, n)
	}
}

// Dispose stops the helpers and waits for all of them to exit. A later
// Advance spawns a fresh pool.
func (p *Parallel) Dispose() {
	p.mu.Lock()
	live := p.live
	p.stop = true
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	p.stop = false
	p.mu.Unlock()

	if live > 0 && p.Logger != nil {
		p.Logger.Printf("[POOL] joined %d workers", live)
	}
}

func (p *Parallel) Advance(particles []*physics.Particle, step float64) {
	n := len(particles)

	p.mu.Lock()
	spawned := p.spawn()
	if len(p.locks) < n {
		p.locks = make([]sync.Mutex, n)
	}
	p.particles = particles
	p.step = step
	p.pairs = Pairs(n)
	p.cond.Broadcast()
	p.mu.Unlock()

	if spawned > 0 && p.Logger != nil {
		p.Logger.Printf("[POOL] started %d workers", spawned)
	}

	p.drainPairs()

	p.mu.Lock()
	for p.pairs > 0 || p.inflight > 0 {
		p.cond.Wait()
	}
	p.updates = n
	p.cond.Broadcast()
	p.mu.Unlock()

	p.drainUpdates()

	p.mu.Lock()
	for p.updates > 0 || p.inflight > 0 {
		p.cond.Wait()
	}
	p.particles = nil
	p.mu.Unlock()
}

// spawn tops the pool up to workers-1 helpers. Caller holds mu.
func (p *Parallel) spawn() int {
	n := 0
	for p.live < p.workers-1 {
		p.live++
		n++
		p.wg.Add(1)
		go p.work()
	}
	return n
}

func (p *Parallel) work() {
	defer p.wg.Done()

	p.mu.Lock()
	for {
		for !p.stop && p.pairs == 0 && p.updates == 0 {
			p.cond.Wait()
		}
		if p.stop {
			break
		}
		p.mu.Unlock()

		p.drainPairs()
		p.drainUpdates()

		p.mu.Lock()
	}
	p.live--
	p.mu.Unlock()
}

// chunk is a fraction of the average per-worker share of what is left.
func (p *Parallel) chunk(remaining int) int {
	c := remaining / (2 * p.workers)
	if c < 1 {
		c = 1
	}
	return c
}

// claim takes a range off *counter. ok is false once the counter is drained.
func (p *Parallel) claim(counter *int) (low, high int, ok bool) {
	high = *counter
	if high == 0 {
		return 0, 0, false
	}
	low = high - p.chunk(high)
	*counter = low
	p.inflight++
	return low, high, true
}

// release marks a claimed chunk as done. Caller holds mu.
func (p *Parallel) release(counter int) {
	p.inflight--
	if p.inflight == 0 && counter == 0 {
		p.cond.Broadcast()
	}
}

func (p *Parallel) drainPairs() {
	for {
		p.mu.Lock()
		low, high, ok := p.claim(&p.pairs)
		particles, locks := p.particles, p.locks
		p.mu.Unlock()
		if !ok {
			return
		}

		for id := low; id < high; id++ {
			i, j := Unrank(id)
			locks[i].Lock()
			locks[j].Lock()
			particles[i].Interact(particles[j])
			locks[j].Unlock()
			locks[i].Unlock()
		}

		p.mu.Lock()
		p.release(p.pairs)
		p.mu.Unlock()
	}
}

func (p *Parallel) drainUpdates() {
	for {
		p.mu.Lock()
		low, high, ok := p.claim(&p.updates)
		particles, step := p.particles, p.step
		p.mu.Unlock()
		if !ok {
			return
		}

		for id := low; id < high; id++ {
			particles[id].Update(step)
		}

		p.mu.Lock()
		p.release(p.updates)
		p.mu.Unlock()
	}
}
