package http

import (
	"log/slog"
	"sync"

	"github.com/universalpocket/pocket"
)

// subscriberBufferSize is the per-subscriber event buffer. A subscriber
// that falls this far behind starts losing events rather than blocking
// publishers.
const subscriberBufferSize = 16

// Broker fans pocket events out to SSE subscribers. Publishing never
// blocks; events to a full subscriber buffer are dropped.
type Broker struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[int]chan pocket.Event
	nextID int
	closed bool
}

// NewBroker creates a Broker.
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		logger: logger,
		subs:   make(map[int]chan pocket.Event),
	}
}

// Subscribe registers a new subscriber and returns its event channel and
// an unsubscribe function. The channel is closed on unsubscribe and on
// broker Close. Unsubscribing twice is safe.
func (b *Broker) Subscribe() (<-chan pocket.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan pocket.Event, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, unsubscribe
}

// Publish delivers an event to all current subscribers. Subscribers with
// full buffers miss the event.
func (b *Broker) Publish(event pocket.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.logger.Warn("dropped event for slow subscribers",
			"type", event.Type, "dropped", dropped)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close disconnects all subscribers. Further subscriptions receive a
// closed channel and publishes are discarded.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}
