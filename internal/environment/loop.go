package environment

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/particles/internal/strategy"
)

// Cycle runs one loop iteration at now. It must only be called from the
// goroutine that owns the loop, or while no loop is running.
func (e *Environment) Cycle(now time.Time) {
	if now.Sub(e.lastFrame) >= e.FrameInterval() {
		e.frame(now)
	}
	if e.active.Load() && now.Sub(e.lastTick) >= e.TickInterval() {
		e.tick(now)
	}
}

func (e *Environment) frame(now time.Time) {
	e.render(now)
	if e.drain() > 0 {
		if w, ok := e.current.(strategy.Watcher); ok {
			w.CollectionChanged(e.coll.Len())
		}
	}
	e.count.Store(int64(e.coll.Len()))
	e.lastFrame = now
}

func (e *Environment) tick(now time.Time) {
	step := e.TimeStep()
	e.current.Advance(e.coll.particles, step)
	e.elapsed.Store(bits(e.Elapsed() + step))
	e.ticks.Add(1)
	e.lastTick = now
}

// RunTicks drives the loop on synthetic time, one frame before every tick,
// until n more ticks have run, then renders a closing frame. A paused
// environment only gets the closing frame.
func (e *Environment) RunTicks(n int) error {
	if !e.runMu.TryLock() {
		return ErrRunning
	}
	defer e.runMu.Unlock()

	select {
	case <-e.stopChan:
		return ErrStopped
	default:
	}

	now := e.clock.Now()
	if e.lastFrame.After(now) {
		now = e.lastFrame
	}
	if e.lastTick.After(now) {
		now = e.lastTick
	}
	target := e.ticks.Load() + uint64(max(n, 0))
	for e.active.Load() && e.ticks.Load() < target {
		now = now.Add(time.Nanosecond)
		e.frame(now)
		e.tick(now)
	}
	e.frame(now.Add(time.Nanosecond))
	return nil
}

// drain runs queued operations until the queue stays empty, including any
// queued while draining.
func (e *Environment) drain() int {
	n := 0
	for {
		e.qmu.Lock()
		if len(e.queue) == 0 {
			e.qmu.Unlock()
			return n
		}
		op := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.qmu.Unlock()

		op(&e.coll)
		n++
	}
}

func (e *Environment) render(now time.Time) {
	frames := e.frames.Add(1)
	if len(e.renderers) == 0 {
		return
	}
	for _, r := range e.renderers {
		r.Render(Frame{
			Time:      now,
			Particles: e.coll.Values(),
			Elapsed:   e.Elapsed(),
			TimeStep:  e.TimeStep(),
			Strategy:  e.Strategy(),
			Active:    e.active.Load(),
			Ticks:     e.ticks.Load(),
			Frames:    frames,
		})
	}
}

// untilDue is how long the loop may sleep before the next frame or tick.
func (e *Environment) untilDue(now time.Time) time.Duration {
	next := e.lastFrame.Add(e.FrameInterval())
	if e.active.Load() {
		if t := e.lastTick.Add(e.TickInterval()); t.Before(next) {
			next = t
		}
	}
	return next.Sub(now)
}

// Run drives the loop until ctx is done or Stop is called. Only one Run may
// be active at a time.
func (e *Environment) Run(ctx context.Context) error {
	if !e.runMu.TryLock() {
		return ErrRunning
	}
	defer e.runMu.Unlock()

	select {
	case <-e.stopChan:
		return ErrStopped
	default:
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopChan:
			return nil
		default:
		}

		e.Cycle(e.clock.Now())

		wait := e.untilDue(e.clock.Now())
		if wait <= 0 {
			continue
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.stopChan:
			return nil
		case <-timer.C:
		}
	}
}

// Start runs the loop on its own goroutine.
func (e *Environment) Start() {
	go func() {
		if err := e.Run(context.Background()); err != nil && !errors.Is(err, ErrStopped) {
			e.logger.Printf("[SCHED] loop exited: %v", err)
		}
	}()
}

// Stop halts the loop, waits for it to exit and unbinds the strategy so a
// worker pool is joined. The environment cannot be restarted.
func (e *Environment) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
		e.runMu.Lock()
		defer e.runMu.Unlock()

		if err := e.registry.Unbind(e.current.Kind(), e); err != nil {
			e.logger.Printf("[SCHED] unbind %s: %v", e.current.Kind(), err)
		}
	})
}
