// Package backend carries cell changes to a change handler and brings
// the reply back.
//
// A ChangeFunc receives the change and a respond callback. It may call
// respond from any goroutine, exactly once, with either a result or an
// error. Transport failures, including timeouts, are reported as error
// replies so callers see a single failure path.
package backend

import (
	"github.com/microcosm-cc/bluemonday"
)

// Tasks of a change. Row tasks carry only the absolute row index and
// keep the handler's rows aligned with the editor's table.
const (
	TaskUpdate = "update"
	TaskInsert = "insert"
	TaskCopy   = "copy"
	TaskDelete = "delete"
)

// Params describes one cell or row change.
type Params struct {
	Task   string `json:"task"`
	Value  string `json:"value"`
	Table  string `json:"table,omitempty"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Column string `json:"column,omitempty"`

	// ID identifies the change in logs and replies.
	ID string `json:"id"`
}

// Reply is the outcome of a change. Exactly one of Result and Error is
// meaningful: a non-empty Error means failure.
type Reply struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Failed reports whether the reply is an error.
func (r Reply) Failed() bool {
	return r.Error != ""
}

// ChangeFunc submits a change and eventually calls respond once.
type ChangeFunc func(p Params, respond func(Reply))

var replyPolicy = bluemonday.UGCPolicy()

// Sanitize strips markup a change handler must not echo back into a
// cell: scripts, event handlers and unsafe URLs.
func Sanitize(s string) string {
	return replyPolicy.Sanitize(s)
}
