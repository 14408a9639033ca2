// Package store holds the overlay's current frame and publishes changes.
//
// This package is internal to typecast. [MemoryStore] is a display surface:
// the animation controller calls SetText and SetOpacity on it, and every
// call produces a new [Frame] that is fanned out to subscribers (the SSE and
// WebSocket handlers of the overlay server).
//
// Subscribers receive frames via buffered channels with non-blocking sends.
// A slow subscriber loses its oldest pending frames, never the latest one,
// so a lagging browser still settles on the correct final state.
//
// Users of the typecast library should not need to interact with this
// package directly.
package store
