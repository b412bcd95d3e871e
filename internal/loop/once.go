package loop

import "sync"

// Once delivers the first of any number of resolutions of an
// asynchronous result to a handler on the queue. Later resolutions are
// dropped.
type Once[T any] struct {
	once    sync.Once
	q       *Queue
	handler func(T)
}

// NewOnce creates a resolver that posts handler(v) to q on first Resolve.
func NewOnce[T any](q *Queue, handler func(T)) *Once[T] {
	return &Once[T]{q: q, handler: handler}
}

// Resolve delivers v if nothing was delivered before. It reports whether
// v was accepted. Resolve is safe to call from any goroutine.
func (o *Once[T]) Resolve(v T) bool {
	accepted := false
	o.once.Do(func() {
		accepted = true
		o.q.Post(func() { o.handler(v) })
	})
	return accepted
}

// Func returns Resolve as a plain callback.
func (o *Once[T]) Func() func(T) {
	return func(v T) { o.Resolve(v) }
}
