// Package txq is the bounded FIFO carrying signed requests from the
// off-chain context to block production.
package txq

import (
	"errors"

	"github.com/LeJamon/goPriceOracle/internal/core/tx"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("submission queue is full")

// Queue is a bounded channel of requests. Submit never blocks; Drain is
// called from the single block-producing goroutine.
type Queue struct {
	config Config
	ch     chan tx.Transaction
}

// New creates a queue. A non-positive QueueSize falls back to the default.
func New(config Config) *Queue {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	return &Queue{
		config: config,
		ch:     make(chan tx.Transaction, config.QueueSize),
	}
}

// Submit enqueues t, or returns ErrQueueFull.
func (q *Queue) Submit(t tx.Transaction) error {
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Drain removes up to max requests in submission order. max <= 0 uses the
// configured per-block limit.
func (q *Queue) Drain(max int) []tx.Transaction {
	if max <= 0 {
		max = q.config.MaxPerBlock
	}
	if max <= 0 {
		max = cap(q.ch)
	}

	var out []tx.Transaction
	for len(out) < max {
		select {
		case t := <-q.ch:
			out = append(out, t)
		default:
			return out
		}
	}
	return out
}

// Len returns the number of waiting requests.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }
