package strategy

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the single instance of every registered kind and records
// which owner currently has each instance in its active slot.
type Registry struct {
	mu        sync.RWMutex
	instances map[Kind]Strategy
	owners    map[Kind]any
}

func NewRegistry() *Registry {
	return &Registry{
		instances: make(map[Kind]Strategy),
		owners:    make(map[Kind]any),
	}
}

// Register constructs the instance for kind. The check and the insert are
// one critical section, so concurrent registrations of the same kind
// construct at most one instance and every other caller gets
// ErrAlreadyRegistered.
func (r *Registry) Register(kind Kind, factory Factory) (Strategy, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilFactory, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[kind]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, kind)
	}
	s := factory()
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilFactory, kind)
	}
	if s.Kind() != kind {
		return nil, fmt.Errorf("%w: registered %s, got %s", ErrKindMismatch, kind, s.Kind())
	}
	r.instances[kind] = s
	return s, nil
}

func (r *Registry) Get(kind Kind) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.instances[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds lists registered kinds in name order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.instances))
	for k := range r.instances {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Owner reports who holds kind, if anyone.
func (r *Registry) Owner(kind Kind) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.owners[kind]
	return o, ok
}

// Bind places the instance of kind in owner's slot and fires Accept.
// Binding an instance the owner already holds is a no-op.
func (r *Registry) Bind(kind Kind, owner any) (Strategy, error) {
	r.mu.Lock()
	s, ok := r.instances[kind]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if cur, held := r.owners[kind]; held {
		r.mu.Unlock()
		if cur == owner {
			return s, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrAlreadyBound, kind)
	}
	r.owners[kind] = owner
	r.mu.Unlock()

	if a, ok := s.(Acceptor); ok {
		a.Accept()
	}
	return s, nil
}

// Unbind fires Dispose and then releases the instance. The instance stays
// owned until Dispose returns, so no other owner can bind it while its
// workers are still shutting down.
func (r *Registry) Unbind(kind Kind, owner any) error {
	r.mu.RLock()
	s, ok := r.instances[kind]
	cur, held := r.owners[kind]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if !held || cur != owner {
		return fmt.Errorf("%w: %s", ErrNotBound, kind)
	}

	if d, ok := s.(Disposer); ok {
		d.Dispose()
	}

	r.mu.Lock()
	delete(r.owners, kind)
	r.mu.Unlock()
	return nil
}
