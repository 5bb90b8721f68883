package strategy_test

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particles/internal/physics"
	"github.com/san-kum/particles/internal/strategy"
)

type hookStrategy struct {
	kind     strategy.Kind
	accepts  atomic.Int32
	disposes atomic.Int32
}

func (h *hookStrategy) Kind() strategy.Kind { return h.kind }

func (h *hookStrategy) Advance([]*physics.Particle, float64) {}

func (h *hookStrategy) Accept() { h.accepts.Add(1) }

func (h *hookStrategy) Dispose() { h.disposes.Add(1) }

type owner struct{ name string }

var _ = Describe("Registry", func() {
	var reg *strategy.Registry

	BeforeEach(func() {
		reg = strategy.NewRegistry()
	})

	Describe("Register", func() {
		It("rejects a second construction of the same kind", func() {
			_, err := reg.Register(strategy.KindDefault, func() strategy.Strategy { return strategy.NewDefault() })
			Expect(err).NotTo(HaveOccurred())

			calls := 0
			_, err = reg.Register(strategy.KindDefault, func() strategy.Strategy {
				calls++
				return strategy.NewDefault()
			})
			Expect(err).To(MatchError(strategy.ErrAlreadyRegistered))
			Expect(calls).To(BeZero())
		})

		It("keeps distinct kinds independent", func() {
			d, err := reg.Register(strategy.KindDefault, func() strategy.Strategy { return strategy.NewDefault() })
			Expect(err).NotTo(HaveOccurred())
			a, err := reg.Register(strategy.KindAdaptive, func() strategy.Strategy { return strategy.NewAdaptive(0.49, 0) })
			Expect(err).NotTo(HaveOccurred())

			got, err := reg.Get(strategy.KindDefault)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(d))

			got, err = reg.Get(strategy.KindAdaptive)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(a))

			Expect(reg.Kinds()).To(Equal([]strategy.Kind{strategy.KindAdaptive, strategy.KindDefault}))
		})

		It("constructs exactly one instance under concurrent registration", func() {
			var built atomic.Int32
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := reg.Register("custom", func() strategy.Strategy {
						built.Add(1)
						return &hookStrategy{kind: "custom"}
					})
					if err == nil {
						wins.Add(1)
					} else {
						Expect(err).To(MatchError(strategy.ErrAlreadyRegistered))
					}
				}()
			}
			wg.Wait()
			Expect(built.Load()).To(Equal(int32(1)))
			Expect(wins.Load()).To(Equal(int32(1)))
		})

		It("fails before mutating when the factory breaks the contract", func() {
			_, err := reg.Register("custom", func() strategy.Strategy { return nil })
			Expect(err).To(MatchError(strategy.ErrNilFactory))

			_, err = reg.Register("custom", func() strategy.Strategy { return strategy.NewDefault() })
			Expect(err).To(MatchError(strategy.ErrKindMismatch))

			_, err = reg.Register("custom", nil)
			Expect(err).To(MatchError(strategy.ErrNilFactory))

			_, err = reg.Get("custom")
			Expect(err).To(MatchError(strategy.ErrUnknownKind))

			_, err = reg.Register("custom", func() strategy.Strategy { return &hookStrategy{kind: "custom"} })
			Expect(err).NotTo(HaveOccurred())
		})

		It("installs the built-in kinds once", func() {
			Expect(strategy.RegisterBuiltins(reg, strategy.DefaultOptions())).To(Succeed())
			Expect(reg.Kinds()).To(ConsistOf(strategy.KindDefault, strategy.KindAdaptive, strategy.KindParallel))
			Expect(strategy.RegisterBuiltins(reg, strategy.DefaultOptions())).To(MatchError(strategy.ErrAlreadyRegistered))
		})
	})

	Describe("Bind and Unbind", func() {
		var hooks *hookStrategy
		var a, b *owner

		BeforeEach(func() {
			hooks = &hookStrategy{kind: "hooks"}
			_, err := reg.Register("hooks", func() strategy.Strategy { return hooks })
			Expect(err).NotTo(HaveOccurred())
			a, b = &owner{"a"}, &owner{"b"}
		})

		It("fires each hook once per transition", func() {
			_, err := reg.Bind("hooks", a)
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.Bind("hooks", a)
			Expect(err).NotTo(HaveOccurred())
			Expect(hooks.accepts.Load()).To(Equal(int32(1)))

			Expect(reg.Unbind("hooks", a)).To(Succeed())
			Expect(hooks.disposes.Load()).To(Equal(int32(1)))
			Expect(reg.Unbind("hooks", a)).To(MatchError(strategy.ErrNotBound))
			Expect(hooks.disposes.Load()).To(Equal(int32(1)))
		})

		It("allows one owner at a time", func() {
			_, err := reg.Bind("hooks", a)
			Expect(err).NotTo(HaveOccurred())

			_, err = reg.Bind("hooks", b)
			Expect(err).To(MatchError(strategy.ErrAlreadyBound))
			Expect(reg.Unbind("hooks", b)).To(MatchError(strategy.ErrNotBound))

			held, ok := reg.Owner("hooks")
			Expect(ok).To(BeTrue())
			Expect(held).To(BeIdenticalTo(a))

			Expect(reg.Unbind("hooks", a)).To(Succeed())
			_, err = reg.Bind("hooks", b)
			Expect(err).NotTo(HaveOccurred())
			Expect(hooks.accepts.Load()).To(Equal(int32(2)))
		})

		It("rejects unknown kinds", func() {
			_, err := reg.Bind("missing", a)
			Expect(err).To(MatchError(strategy.ErrUnknownKind))
			Expect(reg.Unbind("missing", a)).To(MatchError(strategy.ErrUnknownKind))
		})
	})
})
