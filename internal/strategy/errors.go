package strategy

import "errors"

var (
	// ErrAlreadyRegistered indicates a second construction of a registered kind.
	ErrAlreadyRegistered = errors.New("strategy: kind already registered")

	// ErrUnknownKind indicates a lookup for a kind that was never registered.
	ErrUnknownKind = errors.New("strategy: unknown kind")

	// ErrAlreadyBound indicates the instance is in another scheduler's slot.
	ErrAlreadyBound = errors.New("strategy: instance bound to another owner")

	// ErrNotBound indicates an unbind by an owner that does not hold the instance.
	ErrNotBound = errors.New("strategy: instance not bound to owner")

	// ErrNilFactory indicates a factory that is nil or produced no strategy.
	ErrNilFactory = errors.New("strategy: factory produced no strategy")

	// ErrKindMismatch indicates a factory whose product reports another kind.
	ErrKindMismatch = errors.New("strategy: factory produced a different kind")
)
