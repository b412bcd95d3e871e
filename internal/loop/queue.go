// Package loop provides the mailbox that keeps grid mutation on a single
// goroutine.
//
// Collaborators that complete asynchronously (a backend reply, a confirm
// dialog) post a closure to the Queue from any goroutine. The goroutine
// that owns the table selects on Wake and runs Drain, so every mutation
// happens on that goroutine in post order.
package loop

import "sync"

// Queue is an unbounded FIFO of closures with a wake signal.
type Queue struct {
	mu    sync.Mutex
	items []func()
	wake  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post appends fn and signals Wake. Post never blocks.
func (q *Queue) Post(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives after Post. Several posts may
// share one signal.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Len returns the number of queued closures.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain runs queued closures until the queue is empty, including closures
// posted while draining, and returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		items := q.items
		q.items = nil
		q.mu.Unlock()

		if len(items) == 0 {
			return n
		}
		for _, fn := range items {
			fn()
			n++
		}
	}
}
