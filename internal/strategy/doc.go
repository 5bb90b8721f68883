// Package strategy provides interchangeable algorithms that advance a whole
// particle set by one tick.
//
//   - [Default]: sequential pairwise pass, then update
//   - [Adaptive]: repeated pairwise passes with error-bounded substeps
//   - [Parallel]: pairwise pass distributed over a persistent worker pool
//
// Every concrete kind lives in a [Registry] as a single instance for the
// life of the process. A scheduler binds one instance at a time and passes
// its particle slice into each [Strategy.Advance] call; strategies keep no
// reference to the slice between calls.
//
// # Hooks
//
// Strategies that hold resources implement the optional [Acceptor],
// [Disposer] and [Watcher] interfaces. The registry fires Accept and
// Dispose exactly once per bind/unbind transition, and the scheduler calls
// CollectionChanged after applying queued mutations. None of them ever
// overlaps an Advance call.
//
// # Thread Safety
//
// Advance must be called from one goroutine at a time. [Parallel] spawns its
// own workers inside Advance and does not return until they have drained
// both the interaction and update phases.
package strategy
