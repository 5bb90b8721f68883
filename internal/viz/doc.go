// Package viz draws a running environment in the terminal.
//
// Frames reach the UI through a [Sink], which the environment calls as a
// renderer. The [Model] plots every particle on a braille [Canvas] in its
// own colour, with an energy graph and loop counters beside it.
//
// # Key Bindings
//
//	Space - Pause/Resume the environment
//	1 2 3 - Switch to default, adaptive or parallel
//	+ -   - Zoom
//	Arrows / hjkl - Pan
//	F     - Fit the view to the particles
//	[ ]   - Halve or double the time step
//	R     - Rebuild the scenario
//	S     - Save a snapshot
//	T     - Cycle colour themes
//	?     - Show help
package viz
