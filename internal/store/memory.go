package store

import (
	"sync"
	"time"
)

// subscriberBuffer is the number of frames a subscriber may lag behind.
// At a 16ms fade tick this is a little over a second of frames.
const subscriberBuffer = 64

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keeps only the latest frame. Subscribers receive updates via
// buffered channels. When a subscriber's buffer is full the oldest pending
// frame is dropped to make room, so the newest frame always gets through.
type MemoryStore struct {
	mu          sync.RWMutex
	frame       Frame
	subscribers map[chan Frame]struct{}
	subMu       sync.Mutex
	now         func() time.Time
}

// NewMemoryStore creates a new in-memory [Store] showing nothing at full
// opacity.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		frame:       Frame{Opacity: 1},
		subscribers: make(map[chan Frame]struct{}),
		now:         time.Now,
	}
}

// SetText replaces the visible text and notifies all subscribers.
func (m *MemoryStore) SetText(text string) {
	m.update(func(f *Frame) { f.Text = text })
}

// SetOpacity replaces the opacity, clamped to [0, 1], and notifies all
// subscribers.
func (m *MemoryStore) SetOpacity(opacity float64) {
	switch {
	case opacity < 0:
		opacity = 0
	case opacity > 1:
		opacity = 1
	}
	m.update(func(f *Frame) { f.Opacity = opacity })
}

// Current returns the latest frame.
func (m *MemoryStore) Current() Frame {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame
}

func (m *MemoryStore) update(apply func(*Frame)) {
	m.mu.Lock()
	apply(&m.frame)
	m.frame.Seq++
	m.frame.UpdatedAt = m.now()
	frame := m.frame
	m.mu.Unlock()

	m.notifySubscribers(frame)
}

// Subscribe creates a new subscription and returns a channel for receiving
// frames.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Frame {
	ch := make(chan Frame, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Frame) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	// find and delete the channel (need to convert to the right type)
	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (m *MemoryStore) SubscriberCount() int {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	return len(m.subscribers)
}

// notifySubscribers sends the frame to all active subscribers without
// blocking. A full buffer loses its oldest frame, never the new one.
//
// subMu is held for the whole fan-out so frames reach each subscriber in
// Seq order and Unsubscribe cannot close a channel mid-send.
func (m *MemoryStore) notifySubscribers(frame Frame) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for ch := range m.subscribers {
		select {
		case ch <- frame:
			continue
		default:
		}

		// subscriber is slow: drop its oldest frame and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
}
