package store

import "time"

// Frame is what the overlay should currently show.
//
// Every text or opacity change produces a new Frame with a higher Seq, so
// clients can discard anything older than what they already rendered.
type Frame struct {
	// Text is the visible text.
	Text string `json:"text"`

	// Opacity is in [0, 1].
	Opacity float64 `json:"opacity"`

	// Seq increases by one with every update.
	Seq uint64 `json:"seq"`

	// UpdatedAt is when the frame was produced.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds the current [Frame] and fans updates out to subscribers.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// SetText replaces the visible text and publishes the new frame.
	SetText(text string)

	// SetOpacity replaces the opacity and publishes the new frame.
	SetOpacity(opacity float64)

	// Current returns the latest frame.
	Current() Frame

	// Subscribe returns a channel that receives every new frame.
	// The caller must call Unsubscribe when done.
	Subscribe() <-chan Frame

	// Unsubscribe removes a subscription and closes its channel.
	Unsubscribe(ch <-chan Frame)
}
