// Package events carries on-chain notifications to off-chain consumers.
package events

import (
	"sync"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
)

// PriceStored is emitted for every accepted submission.
type PriceStored struct {
	Price     fixed.U16F16 `json:"price"`
	Submitter string       `json:"submitter"`
	Height    uint64       `json:"height"`
	Snapshot  bool         `json:"snapshot"`
}

// DropFunc is told about every event a subscriber missed.
type DropFunc func(PriceStored)

// Bus fans PriceStored events out to subscribers. Emit never blocks; a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan PriceStored
	next   uint64
	onDrop DropFunc
	closed bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan PriceStored)}
}

// OnDrop installs a hook called when an event is dropped.
func (b *Bus) OnDrop(fn DropFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

// Subscribe returns a channel receiving subsequent events and a function
// that unsubscribes and closes it.
func (b *Bus) Subscribe(buffer int) (<-chan PriceStored, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan PriceStored, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Emit delivers ev to every subscriber with room in its buffer.
func (b *Bus) Emit(ev PriceStored) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			if b.onDrop != nil {
				b.onDrop(ev)
			}
		}
	}
}

// Len returns the number of live subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
