package environment

import "errors"

var (
	// ErrStopped indicates the loop was stopped and cannot run again.
	ErrStopped = errors.New("environment: stopped")

	// ErrRunning indicates a second concurrent Run.
	ErrRunning = errors.New("environment: already running")

	// ErrNoAdaptive indicates a threshold change without an adaptive instance.
	ErrNoAdaptive = errors.New("environment: adaptive strategy not registered")
)
