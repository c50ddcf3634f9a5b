// Package events fans ledger events out to any number of subscribers.
package events

import (
	"fmt"
	"sync"
)

// messageBuffer is how many events a slow subscriber can fall behind before
// events are dropped for it.
const messageBuffer = 100

// Bus maintains a mapping of subscriber id and channels so goroutines
// can register and receive events.
type Bus struct {
	mu     sync.RWMutex
	m      map[string]chan string
	closed bool
}

// New constructs a bus for registering and receiving events.
func New() *Bus {
	return &Bus{
		m: make(map[string]chan string),
	}
}

// Subscribe takes a unique id and returns a channel that can be used to
// receive events. Subscribing an id twice returns the same channel. The
// channel is closed when the bus is closed.
func (b *Bus) Subscribe(id string) (<-chan string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("subscribing %q: bus is closed", id)
	}

	ch, exists := b.m[id]
	if !exists {
		ch = make(chan string, messageBuffer)
		b.m[id] = ch
	}

	return ch, nil
}

// Unsubscribe closes and removes the channel provided by Subscribe.
func (b *Bus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, exists := b.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(b.m, id)
	close(ch)
	return nil
}

// Publish signals the event to every subscriber. Publish will not block
// waiting for a receiver on any given channel.
func (b *Bus) Publish(event string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.m {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes and removes every subscriber channel. Publishing after Close
// is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.m {
		delete(b.m, id)
		close(ch)
	}
	b.closed = true
}
