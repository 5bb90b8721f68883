package environment_test

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/particles/internal/environment"
	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/strategy"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// probe records hook calls and flags any hook that runs during Advance.
type probe struct {
	kind      strategy.Kind
	advancing atomic.Bool
	overlap   atomic.Bool
	advances  atomic.Int32
	accepts   atomic.Int32
	disposes  atomic.Int32
	lastLen   atomic.Int32
	sawSteps  []float64
}

func (p *probe) Kind() strategy.Kind { return p.kind }

func (p *probe) Advance(ps []*physics.Particle, step float64) {
	p.advancing.Store(true)
	p.advances.Add(1)
	p.sawSteps = append(p.sawSteps, step)
	for _, q := range ps {
		q.Update(step)
	}
	p.advancing.Store(false)
}

func (p *probe) Accept() {
	if p.advancing.Load() {
		p.overlap.Store(true)
	}
	p.accepts.Add(1)
}

func (p *probe) Dispose() {
	if p.advancing.Load() {
		p.overlap.Store(true)
	}
	p.disposes.Add(1)
}

func (p *probe) CollectionChanged(n int) { p.lastLen.Store(int32(n)) }

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func setup(t *testing.T, opts ...environment.Option) (*environment.Environment, *strategy.Registry, *probe, *probe) {
	t.Helper()
	reg := strategy.NewRegistry()
	a, b := &probe{kind: "a"}, &probe{kind: "b"}
	if _, err := reg.Register("a", func() strategy.Strategy { return a }); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Register("b", func() strategy.Strategy { return b }); err != nil {
		t.Fatal(err)
	}
	opts = append([]environment.Option{environment.WithLogger(quiet())}, opts...)
	env, err := environment.New(reg, "a", opts...)
	if err != nil {
		t.Fatal(err)
	}
	return env, reg, a, b
}

func TestDrainRunsFIFO(t *testing.T) {
	env, _, _, _ := setup(t)
	clock := newFakeClock()

	var order []int
	for i := 1; i <= 5; i++ {
		i := i
		env.Queue(func(*environment.Collection) { order = append(order, i) })
	}
	env.Queue(func(*environment.Collection) {
		order = append(order, 6)
		env.Queue(func(*environment.Collection) { order = append(order, 7) })
	})
	if env.Pending() != 6 {
		t.Fatalf("Pending() = %d, want 6", env.Pending())
	}

	env.Cycle(clock.Now())

	want := []int{1, 2, 3, 4, 5, 6, 7}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ran %v, want %v", order, want)
		}
	}
	if env.Pending() != 0 {
		t.Errorf("Pending() = %d after drain", env.Pending())
	}
}

func TestCadence(t *testing.T) {
	env, _, a, _ := setup(t, environment.WithIntervals(5*time.Millisecond, 10*time.Millisecond))
	clock := newFakeClock()

	env.Cycle(clock.Now())
	if env.Frames() != 1 || env.Ticks() != 1 {
		t.Fatalf("first cycle: frames=%d ticks=%d", env.Frames(), env.Ticks())
	}

	clock.Advance(3 * time.Millisecond)
	env.Cycle(clock.Now())
	if env.Frames() != 1 || env.Ticks() != 1 {
		t.Fatalf("early cycle: frames=%d ticks=%d", env.Frames(), env.Ticks())
	}

	clock.Advance(2 * time.Millisecond)
	env.Cycle(clock.Now())
	if env.Frames() != 1 || env.Ticks() != 2 {
		t.Fatalf("tick due: frames=%d ticks=%d", env.Frames(), env.Ticks())
	}

	clock.Advance(5 * time.Millisecond)
	env.Cycle(clock.Now())
	if env.Frames() != 2 || env.Ticks() != 3 {
		t.Fatalf("both due: frames=%d ticks=%d", env.Frames(), env.Ticks())
	}
	if a.advances.Load() != 3 {
		t.Errorf("advances = %d, want 3", a.advances.Load())
	}
}

func TestElapsedAndTimeStep(t *testing.T) {
	env, _, a, _ := setup(t, environment.WithTimeStep(0.5), environment.WithIntervals(0, 0))
	clock := newFakeClock()

	for i := 0; i < 3; i++ {
		env.Cycle(clock.Now())
		clock.Advance(time.Millisecond)
	}
	if got := env.Elapsed(); got != 1.5 {
		t.Fatalf("Elapsed() = %g, want 1.5", got)
	}

	env.SetTimeStep(2)
	if env.TimeStep() != 0.5 {
		t.Fatal("time step changed before the drain")
	}
	env.SetElapsed(10)
	env.Cycle(clock.Now())
	if env.TimeStep() != 2 || env.Elapsed() != 12 {
		t.Fatalf("step=%g elapsed=%g, want 2 and 12", env.TimeStep(), env.Elapsed())
	}
	if last := a.sawSteps[len(a.sawSteps)-1]; last != 2 {
		t.Errorf("last advance used step %g", last)
	}
}

func TestInactiveStillDrains(t *testing.T) {
	env, _, a, _ := setup(t, environment.WithActive(false))
	clock := newFakeClock()

	env.Add(physics.DefaultParticle(), physics.DefaultParticle())
	env.Cycle(clock.Now())

	if a.advances.Load() != 0 {
		t.Errorf("advanced while inactive")
	}
	if env.Len() != 2 {
		t.Errorf("Len() = %d, want 2", env.Len())
	}
	if a.lastLen.Load() != 2 {
		t.Errorf("watcher saw %d, want 2", a.lastLen.Load())
	}

	env.SetActive(true)
	clock.Advance(time.Second)
	env.Cycle(clock.Now())
	if a.advances.Load() != 1 {
		t.Errorf("advances = %d after activation", a.advances.Load())
	}
}

func TestSwapIsQueued(t *testing.T) {
	env, reg, a, b := setup(t)
	clock := newFakeClock()

	if a.accepts.Load() != 1 {
		t.Fatalf("initial bind accepts = %d", a.accepts.Load())
	}
	if err := env.SetStrategy("b"); err != nil {
		t.Fatal(err)
	}
	if env.Strategy() != "a" {
		t.Fatal("swap ran before the drain")
	}

	env.Add(physics.DefaultParticle())
	env.Cycle(clock.Now())

	if env.Strategy() != "b" {
		t.Fatalf("Strategy() = %s, want b", env.Strategy())
	}
	if a.disposes.Load() != 1 || b.accepts.Load() != 1 {
		t.Errorf("a disposes=%d b accepts=%d", a.disposes.Load(), b.accepts.Load())
	}
	if _, held := reg.Owner("a"); held {
		t.Error("a still owned after swap")
	}
	if owner, _ := reg.Owner("b"); owner != env {
		t.Error("b not owned by the environment")
	}
	if b.advances.Load() != 1 || b.lastLen.Load() != 1 {
		t.Errorf("b advances=%d lastLen=%d", b.advances.Load(), b.lastLen.Load())
	}

	if err := env.SetStrategy("missing"); !errors.Is(err, strategy.ErrUnknownKind) {
		t.Errorf("SetStrategy(missing) = %v", err)
	}
	if env.Pending() != 0 {
		t.Error("unknown kind was queued")
	}
}

func TestFailedSwapKeepsCurrent(t *testing.T) {
	env, reg, a, _ := setup(t)
	clock := newFakeClock()

	other := &struct{ name string }{"other"}
	if _, err := reg.Bind("b", other); err != nil {
		t.Fatal(err)
	}
	if err := env.SetStrategy("b"); err != nil {
		t.Fatal(err)
	}
	env.Cycle(clock.Now())

	if env.Strategy() != "a" {
		t.Fatalf("Strategy() = %s, want a", env.Strategy())
	}
	if owner, _ := reg.Owner("a"); owner != env {
		t.Error("a not rebound")
	}
	if a.accepts.Load() != 2 {
		t.Errorf("a accepts = %d, want 2", a.accepts.Load())
	}
}

func TestRendererGetsCopies(t *testing.T) {
	var frames []environment.Frame
	env, _, _, _ := setup(t, environment.WithRenderer(environment.RendererFunc(func(f environment.Frame) {
		frames = append(frames, f)
	})), environment.WithIntervals(0, 0))
	clock := newFakeClock()

	env.Add(physics.NewParticle(1, 1, 1, 0, physics.Red, 1, 2, 0, 0))
	env.Cycle(clock.Now())
	env.Cycle(clock.Now().Add(time.Millisecond))

	if len(frames) != 2 {
		t.Fatalf("rendered %d frames", len(frames))
	}
	if len(frames[0].Particles) != 0 {
		t.Errorf("first frame rendered before the drain: %d particles", len(frames[0].Particles))
	}
	f := frames[1]
	if len(f.Particles) != 1 || f.Particles[0].Color != physics.Red {
		t.Fatalf("second frame = %+v", f.Particles)
	}
	if f.Strategy != "a" || f.Frames != 2 || f.Ticks != 1 {
		t.Errorf("frame state = %s frames=%d ticks=%d", f.Strategy, f.Frames, f.Ticks)
	}

	f.Particles[0].X = 100
	var got []physics.Particle
	env.Snapshot(func(ps []physics.Particle) { got = ps })
	env.Cycle(clock.Now().Add(2 * time.Millisecond))
	if got[0].X == 100 {
		t.Error("frame aliases the collection")
	}
}

func TestThresholdForwarding(t *testing.T) {
	reg := strategy.NewRegistry()
	if err := strategy.RegisterBuiltins(reg, strategy.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	env, err := environment.New(reg, strategy.KindDefault, environment.WithLogger(quiet()))
	if err != nil {
		t.Fatal(err)
	}
	defer env.Stop()

	if err := env.SetThreshold(0.2); err != nil {
		t.Fatal(err)
	}
	if err := env.SetMinSubstep(0.01); err != nil {
		t.Fatal(err)
	}
	s, _ := reg.Get(strategy.KindAdaptive)
	ad := s.(*strategy.Adaptive)
	if ad.Threshold() != 0.2 || ad.MinSubstep() != 0.01 {
		t.Errorf("threshold=%g floor=%g", ad.Threshold(), ad.MinSubstep())
	}

	bare, _, _, _ := setup(t)
	if err := bare.SetThreshold(0.2); !errors.Is(err, environment.ErrNoAdaptive) {
		t.Errorf("SetThreshold without adaptive = %v", err)
	}
}

func TestSecondOwnerRejected(t *testing.T) {
	env, reg, _, _ := setup(t)
	defer env.Stop()
	if _, err := environment.New(reg, "a", environment.WithLogger(quiet())); !errors.Is(err, strategy.ErrAlreadyBound) {
		t.Errorf("second New on a bound kind = %v", err)
	}
}

func TestRunAndStop(t *testing.T) {
	clock := newFakeClock()
	rendered := make(chan environment.Frame, 16)
	env, reg, a, _ := setup(t,
		environment.WithClock(clock),
		environment.WithIntervals(time.Millisecond, time.Millisecond),
		environment.WithRenderer(environment.RendererFunc(func(f environment.Frame) {
			select {
			case rendered <- f:
			default:
			}
		})),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.Run(ctx) }()

	select {
	case <-rendered:
	case <-time.After(2 * time.Second):
		t.Fatal("no frame rendered")
	}
	if err := env.Run(context.Background()); !errors.Is(err, environment.ErrRunning) {
		t.Errorf("concurrent Run = %v", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}

	env.Stop()
	env.Stop()
	if _, held := reg.Owner("a"); held {
		t.Error("strategy still bound after Stop")
	}
	if a.disposes.Load() != 1 {
		t.Errorf("disposes = %d, want 1", a.disposes.Load())
	}
	if err := env.Run(context.Background()); !errors.Is(err, environment.ErrStopped) {
		t.Errorf("Run after Stop = %v", err)
	}
}

func TestSwapNeverOverlapsAdvance(t *testing.T) {
	env, _, a, b := setup(t, environment.WithIntervals(0, 0))
	env.Add(physics.DefaultParticle(), physics.DefaultParticle())
	env.Start()

	deadline := time.Now().Add(2 * time.Second)
	for i := 0; i < 200 && time.Now().Before(deadline); i++ {
		kind := strategy.Kind("a")
		if i%2 == 0 {
			kind = "b"
		}
		if err := env.SetStrategy(kind); err != nil {
			t.Fatal(err)
		}
		time.Sleep(100 * time.Microsecond)
	}
	for env.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	env.Stop()

	if a.overlap.Load() || b.overlap.Load() {
		t.Fatal("bind hook ran during Advance")
	}
	if a.accepts.Load()+b.accepts.Load() < 2 {
		t.Errorf("no swaps applied: a=%d b=%d", a.accepts.Load(), b.accepts.Load())
	}
}

func TestStopJoinsParallelPool(t *testing.T) {
	reg := strategy.NewRegistry()
	if err := strategy.RegisterBuiltins(reg, strategy.Options{Threshold: strategy.DefaultThreshold, Workers: 4}); err != nil {
		t.Fatal(err)
	}
	env, err := environment.New(reg, strategy.KindParallel, environment.WithLogger(quiet()))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		env.Add(physics.NewParticle(1, 0.1, 1, 0, physics.White, float64(i)*3, 0, 0, 0))
	}
	clock := newFakeClock()
	env.Cycle(clock.Now())

	s, _ := reg.Get(strategy.KindParallel)
	pool := s.(*strategy.Parallel)
	if pool.Live() != 3 {
		t.Fatalf("Live() = %d, want 3", pool.Live())
	}
	env.Stop()
	if pool.Live() != 0 {
		t.Errorf("Live() = %d after Stop", pool.Live())
	}
}

func TestRunTicks(t *testing.T) {
	var frames []environment.Frame
	env, _, a, _ := setup(t, environment.WithRenderer(environment.RendererFunc(func(f environment.Frame) {
		frames = append(frames, f)
	})))

	env.SetTimeStep(0.5)
	env.Add(physics.NewParticle(1, 1, 1, 0, physics.White, 0, 0, 1, 0))
	if err := env.RunTicks(4); err != nil {
		t.Fatal(err)
	}
	if env.Ticks() != 4 || env.Elapsed() != 2 {
		t.Fatalf("ticks=%d elapsed=%g", env.Ticks(), env.Elapsed())
	}
	if len(frames) != 5 {
		t.Fatalf("frames = %d, want 5", len(frames))
	}
	last := frames[len(frames)-1]
	if len(last.Particles) != 1 || last.Particles[0].X != 2 || last.Ticks != 4 {
		t.Errorf("closing frame = %+v", last)
	}
	if len(frames[0].Particles) != 0 {
		t.Errorf("first frame rendered before the drain: %+v", frames[0])
	}
	if a.advances.Load() != 4 {
		t.Errorf("advances = %d", a.advances.Load())
	}

	env.SetActive(false)
	if err := env.RunTicks(3); err != nil {
		t.Fatal(err)
	}
	if env.Ticks() != 4 || len(frames) != 6 {
		t.Errorf("paused run: ticks=%d frames=%d", env.Ticks(), len(frames))
	}

	env.Stop()
	if err := env.RunTicks(1); !errors.Is(err, environment.ErrStopped) {
		t.Errorf("RunTicks after Stop = %v", err)
	}
}
