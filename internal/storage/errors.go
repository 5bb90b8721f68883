package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic indicates a stream with no psobj header.
	ErrBadMagic = errors.New("storage: psobj magic not found")

	// ErrUnsupportedVersion indicates a psobj header with an unknown version.
	ErrUnsupportedVersion = errors.New("storage: unsupported psobj version")

	// ErrNotFound indicates a snapshot id with no directory.
	ErrNotFound = errors.New("storage: snapshot not found")
)

// FormatError reports where a psobj body stopped making sense.
type FormatError struct {
	Offset  int64
	Index   int
	Wrapped error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("storage: particle %d at byte %d: %v", e.Index, e.Offset, e.Wrapped)
}

func (e *FormatError) Unwrap() error {
	return e.Wrapped
}
