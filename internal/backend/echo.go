package backend

import (
	"time"
)

// Echo is an in-process change handler for running without a server. It
// sanitises the value and replies with it, optionally after a delay.
type Echo struct {
	delay  time.Duration
	reject func(Params) string
}

// EchoOption configures an Echo.
type EchoOption func(*Echo)

// WithDelay replies from a timer goroutine after d.
func WithDelay(d time.Duration) EchoOption {
	return func(e *Echo) { e.delay = d }
}

// WithReject installs a check whose non-empty result is returned as the
// reply error.
func WithReject(fn func(Params) string) EchoOption {
	return func(e *Echo) { e.reject = fn }
}

// NewEcho creates an echo handler.
func NewEcho(opts ...EchoOption) *Echo {
	e := &Echo{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Change implements ChangeFunc.
func (e *Echo) Change(p Params, respond func(Reply)) {
	reply := Reply{Result: Sanitize(p.Value)}
	if e.reject != nil {
		if msg := e.reject(p); msg != "" {
			reply = Reply{Error: msg}
		}
	}
	if e.delay <= 0 {
		respond(reply)
		return
	}
	time.AfterFunc(e.delay, func() { respond(reply) })
}
