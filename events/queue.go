package events

import "sync"

// Queue is an unbounded FIFO of events, safe for concurrent use.
// Insertion order is delivery order, including across partial drains.
type Queue struct {
	mu    sync.Mutex
	items []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends ev to the tail.
func (q *Queue) Enqueue(ev Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()
}

// Drain removes up to max events from the head and returns them in order.
// A max of 0 drains everything.
func (q *Queue) Drain(max int) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	batch := make([]Event, n)
	copy(batch, q.items[:n])

	rest := make([]Event, len(q.items)-n)
	copy(rest, q.items[n:])
	q.items = rest

	return batch
}

// Requeue puts batch back at the head, ahead of anything enqueued since it
// was drained.
func (q *Queue) Requeue(batch []Event) {
	if len(batch) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]Event, 0, len(batch)+len(q.items))
	items = append(items, batch...)
	items = append(items, q.items...)
	q.items = items
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
