package telemetry

import "sync"

// Broker fans BPM samples out to subscribers, newest value wins.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan float64
	nextID int
	closed bool
	latest float64
	seen   bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan float64)}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it and closes the channel; it is safe to call more than once.
//
// Subscribing to a closed broker yields an already closed channel.
func (b *Broker) Subscribe() (<-chan float64, func()) {
	ch := make(chan float64, 1)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() { b.unsubscribe(id) }
}

func (b *Broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers bpm to every subscriber without blocking.
func (b *Broker) Publish(bpm float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest, b.seen = bpm, true

	for _, ch := range b.subs {
		select {
		case ch <- bpm:
			continue
		default:
		}
		// Slot is full: drop the stale sample and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- bpm:
		default:
		}
	}
}

// Latest returns the last published sample.
func (b *Broker) Latest() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.seen
}

// Subscribers returns the number of registered subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close unregisters every subscriber and closes their channels. Later publishes are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
