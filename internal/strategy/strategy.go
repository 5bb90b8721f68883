package strategy

import (
	"fmt"
	"log"
	"strings"

	"github.com/san-kum/particles/internal/physics"
)

// Kind tags a concrete strategy. One instance exists per kind.
type Kind string

const (
	KindDefault  Kind = "default"
	KindAdaptive Kind = "adaptive"
	KindParallel Kind = "parallel"
)

func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindDefault, KindAdaptive, KindParallel:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
}

// Strategy advances every particle by step. It must leave every
// accumulator empty on return.
type Strategy interface {
	Kind() Kind
	Advance(particles []*physics.Particle, step float64)
}

// Acceptor is notified when the strategy enters a scheduler's active slot.
type Acceptor interface {
	Accept()
}

// Disposer is notified when the strategy leaves the active slot. Dispose
// must not return while any goroutine it started can still touch particles.
type Disposer interface {
	Dispose()
}

// Watcher is notified after queued mutations have changed the collection.
type Watcher interface {
	CollectionChanged(n int)
}

// Factory constructs the single instance of a kind. It runs under the
// registry lock and must not call back into the registry.
type Factory func() Strategy

// Options configures the built-in kinds.
type Options struct {
	Threshold  float64
	MinSubstep float64
	Workers    int
	Logger     *log.Logger
}

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold}
}

// RegisterBuiltins installs Default, Adaptive and Parallel.
func RegisterBuiltins(r *Registry, opts Options) error {
	if _, err := r.Register(KindDefault, func() Strategy { return NewDefault() }); err != nil {
		return err
	}
	if _, err := r.Register(KindAdaptive, func() Strategy {
		return NewAdaptive(opts.Threshold, opts.MinSubstep)
	}); err != nil {
		return err
	}
	if _, err := r.Register(KindParallel, func() Strategy {
		p := NewParallel(opts.Workers)
		p.Logger = opts.Logger
		return p
	}); err != nil {
		return err
	}
	return nil
}
