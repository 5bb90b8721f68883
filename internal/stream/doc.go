// Package stream broadcasts frames to websocket clients.
//
// A [Hub] is an environment renderer. Every frame is encoded once as JSON
// and queued to each connected client; a client whose buffer is full
// misses that frame. Clients may send control messages (pause, resume,
// strategy, time_step) which the hub forwards to a [Controller].
package stream
