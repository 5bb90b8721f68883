// Package environment owns the particle collection and the loop that drives
// it.
//
// A single goroutine runs the loop. Each cycle it renders and drains queued
// operations when a frame is due, then advances the bound strategy by one
// tick when a tick is due. Every other goroutine reaches the collection only
// by queueing an Operation, so operations never overlap a tick, and a
// strategy swap is itself an operation.
package environment
