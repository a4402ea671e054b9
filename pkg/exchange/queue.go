package exchange

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
)

const defaultPollInterval = 5 * time.Millisecond

// Queue is an unbounded FIFO safe for any number of concurrent producers
// and one consumer. Push never blocks and never drops; the hand-off order
// is a single total order across all producers.
type Queue[T any] struct {
	mu           sync.Mutex
	items        deque.Deque[T]
	closed       bool
	pollInterval time.Duration
}

// NewQueue builds a queue whose Pop re-checks for items and for shutdown
// every pollInterval. Shutdown latency is bounded by that interval.
func NewQueue[T any](pollInterval time.Duration) *Queue[T] {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Queue[T]{pollInterval: pollInterval}
}

// Push enqueues an item. Pushing after Close is accepted; whether the item
// is ever consumed depends on when the consumer drains out.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items.PushBack(item)
	q.mu.Unlock()
}

// Pop removes and returns the oldest item, blocking the caller until one
// is available. After Close it keeps returning items until the queue is
// drained, then reports ok=false.
func (q *Queue[T]) Pop() (T, bool) {
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			item := q.items.PopFront()
			q.mu.Unlock()
			return item, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			var zero T
			return zero, false
		}
		time.Sleep(q.pollInterval)
	}
}

// IsEmpty is a non-blocking snapshot; it may be stale the instant it
// returns and is only good for polling decisions.
func (q *Queue[T]) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len() == 0
}

// Close stops Pop from waiting for new items once the backlog is drained.
// Idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
