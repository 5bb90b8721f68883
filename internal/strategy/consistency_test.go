package strategy_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/strategy"
)

func arrangement(n int, seed int64) []*physics.Particle {
	rng := rand.New(rand.NewSource(seed))
	ps := make([]*physics.Particle, n)
	for i := range ps {
		ps[i] = physics.NewParticle(
			0.5+rng.Float64(), 0.4, 2, 0.01, physics.White,
			rng.Float64()*20, rng.Float64()*20,
			rng.Float64()-0.5, rng.Float64()-0.5,
		)
	}
	return ps
}

func cloneAll(ps []*physics.Particle) []*physics.Particle {
	out := make([]*physics.Particle, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

func expectClose(got, want []*physics.Particle) {
	ExpectWithOffset(1, got).To(HaveLen(len(want)))
	near := func(a, b float64) {
		tol := 1e-9 * math.Max(1, math.Abs(b))
		ExpectWithOffset(2, a).To(BeNumerically("~", b, tol))
	}
	for i := range want {
		near(got[i].X, want[i].X)
		near(got[i].Y, want[i].Y)
		near(got[i].VX, want[i].VX)
		near(got[i].VY, want[i].VY)
	}
}

var _ = Describe("Cross-strategy consistency", func() {
	DescribeTable("Parallel matches Default after one tick",
		func(n, workers int, step float64) {
			base := arrangement(n, int64(n*31+workers))
			want := cloneAll(base)
			strategy.NewDefault().Advance(want, step)

			par := strategy.NewParallel(workers)
			defer par.Dispose()
			got := cloneAll(base)
			par.Advance(got, step)

			expectClose(got, want)
		},
		Entry("single worker", 40, 1, 0.1),
		Entry("two workers", 40, 2, 0.1),
		Entry("four workers", 80, 4, 0.05),
		Entry("odd pool", 57, 7, 0.05),
		Entry("more workers than pairs", 3, 16, 1.0),
		Entry("empty set", 0, 4, 1.0),
		Entry("single particle", 1, 4, 1.0),
	)

	It("stays consistent over repeated ticks with the same pool", func() {
		base := arrangement(64, 7)
		want := cloneAll(base)
		got := cloneAll(base)
		def := strategy.NewDefault()
		par := strategy.NewParallel(4)
		defer par.Dispose()

		for i := 0; i < 5; i++ {
			def.Advance(want, 0.02)
			par.Advance(got, 0.02)
		}
		expectClose(got, want)
	})

	It("leaves every accumulator empty", func() {
		ps := arrangement(30, 3)
		par := strategy.NewParallel(3)
		defer par.Dispose()
		par.Advance(ps, 0.1)
		for _, p := range ps {
			ax, ay := p.Accel()
			Expect(ax).To(BeZero())
			Expect(ay).To(BeZero())
		}
	})
})

var _ = Describe("Parallel lifecycle", func() {
	It("spawns helpers lazily and joins them on Dispose", func() {
		par := strategy.NewParallel(4)
		Expect(par.Live()).To(BeZero())

		par.Advance(arrangement(10, 1), 0.1)
		Expect(par.Live()).To(Equal(3))

		par.Dispose()
		Expect(par.Live()).To(BeZero())

		par.Advance(arrangement(10, 2), 0.1)
		Expect(par.Live()).To(Equal(3))
		par.Dispose()
		Expect(par.Live()).To(BeZero())
	})

	It("runs a degenerate pool on the calling goroutine only", func() {
		par := strategy.NewParallel(1)
		par.Advance(arrangement(10, 1), 0.1)
		Expect(par.Live()).To(BeZero())
		par.Dispose()
	})

	It("survives a shrinking and growing collection", func() {
		par := strategy.NewParallel(3)
		defer par.Dispose()

		par.CollectionChanged(50)
		par.Advance(arrangement(50, 1), 0.1)
		par.CollectionChanged(5)
		par.Advance(arrangement(5, 2), 0.1)
		par.CollectionChanged(120)
		par.Advance(arrangement(120, 3), 0.1)
	})

	It("defaults the pool size to the CPU count", func() {
		Expect(strategy.NewParallel(0).Workers()).To(BeNumerically(">=", 1))
	})
})
