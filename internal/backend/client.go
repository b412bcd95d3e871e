package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// MsgTimeout is the error of a request that got no reply in time.
const MsgTimeout = "request timed out"

// maxReplySize bounds the body read from a change handler.
const maxReplySize = 1 << 20

// Client posts JSON requests to an HTTP backend. Requests are queued and
// sent one at a time in submission order unless queueing is disabled.
type Client struct {
	url     string
	router  string
	key     string
	csrf    string
	timeout time.Duration
	noQueue bool
	http    *http.Client
	log     *logrus.Entry

	mu    sync.Mutex
	queue []job
	busy  bool
	wg    sync.WaitGroup
}

type job struct {
	endpoint string
	payload  []byte
	respond  func(Reply)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithKey adds a "key" field to every request that lacks one.
func WithKey(key string) Option {
	return func(c *Client) { c.key = key }
}

// WithCSRF adds a "csrf" field to every request that lacks one.
func WithCSRF(token string) Option {
	return func(c *Client) { c.csrf = token }
}

// WithRouter sends every request to router, naming the original endpoint
// in a "file" field. Requests carrying a NOROUTE field bypass the router.
func WithRouter(router string) Option {
	return func(c *Client) { c.router = router }
}

// WithNoQueue sends requests immediately instead of one at a time.
func WithNoQueue(noQueue bool) Option {
	return func(c *Client) { c.noQueue = noQueue }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) { c.log = entry }
}

// NewClient creates a client whose Change posts to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:     url,
		timeout: DefaultTimeout,
		http:    http.DefaultClient,
		log:     discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Change implements ChangeFunc.
func (c *Client) Change(p Params, respond func(Reply)) {
	payload, err := EncodeParams(p)
	if err != nil {
		respond(Reply{Error: err.Error()})
		return
	}
	c.Call(c.url, payload, respond)
}

// EncodeParams renders p as a JSON request body.
func EncodeParams(p Params) ([]byte, error) {
	type field struct {
		path  string
		value any
	}
	fields := []field{
		{"task", p.Task},
		{"value", p.Value},
		{"row", p.Row},
		{"col", p.Col},
		{"id", p.ID},
	}
	if p.Table != "" {
		fields = append(fields, field{"table", p.Table})
	}
	if p.Column != "" {
		fields = append(fields, field{"column", p.Column})
	}

	body := []byte(`{}`)
	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", f.path, err)
		}
	}
	return body, nil
}

// Call posts a JSON payload to endpoint and delivers the reply to
// respond on a client goroutine.
func (c *Client) Call(endpoint string, payload []byte, respond func(Reply)) {
	if respond == nil {
		respond = func(Reply) {}
	}
	payload, endpoint, err := c.prepare(payload, endpoint)
	if err != nil {
		respond(Reply{Error: err.Error()})
		return
	}
	j := job{endpoint: endpoint, payload: payload, respond: respond}

	c.mu.Lock()
	if c.noQueue {
		c.wg.Add(1)
		c.mu.Unlock()
		go func() {
			defer c.wg.Done()
			c.do(j)
		}()
		return
	}
	c.queue = append(c.queue, j)
	start := !c.busy
	if start {
		c.busy = true
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if start {
		go c.drain()
	}
}

// prepare injects the key, csrf and router fields.
func (c *Client) prepare(payload []byte, endpoint string) ([]byte, string, error) {
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	if !gjson.ValidBytes(payload) {
		return nil, "", errors.New("request payload is not valid JSON")
	}

	var err error
	set := func(path, value string) {
		if err == nil && value != "" && !gjson.GetBytes(payload, path).Exists() {
			payload, err = sjson.SetBytes(payload, path, value)
		}
	}
	set("key", c.key)
	set("csrf", c.csrf)
	if c.router != "" && !gjson.GetBytes(payload, "NOROUTE").Exists() {
		set("file", endpoint)
		endpoint = c.router
	}
	return payload, endpoint, err
}

func (c *Client) drain() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.busy = false
			c.mu.Unlock()
			return
		}
		j := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.do(j)
	}
}

// Pending returns the number of queued requests not yet sent.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Wait blocks until all submitted requests have been answered.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) do(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	reply := c.post(ctx, j)
	entry := c.log.WithFields(logrus.Fields{
		"endpoint": j.endpoint,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	})
	if reply.Failed() {
		entry.WithField("error", reply.Error).Warn("backend request failed")
	} else {
		entry.Debug("backend request done")
	}
	j.respond(reply)
}

func (c *Client) post(ctx context.Context, j job) Reply {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(j.payload))
	if err != nil {
		return Reply{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reply{Error: MsgTimeout}
		}
		return Reply{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Reply{Error: MsgTimeout}
		}
		return Reply{Error: err.Error()}
	}
	return ParseReply(resp.StatusCode, body)
}

// ParseReply decodes a backend response body. Invalid JSON, and non-200
// statuses without an error field, become error replies.
func ParseReply(status int, body []byte) Reply {
	if !gjson.ValidBytes(body) {
		text := strings.TrimSpace(string(body))
		if status != http.StatusOK {
			return Reply{Error: fmt.Sprintf("%d %s: %s", status, http.StatusText(status), text)}
		}
		return Reply{Error: fmt.Sprintf("invalid reply: %s", text)}
	}

	res := gjson.ParseBytes(body)
	reply := Reply{
		Result: res.Get("result").String(),
		Error:  res.Get("error").String(),
	}
	if status != http.StatusOK && reply.Error == "" {
		reply.Error = fmt.Sprintf("%d %s", status, http.StatusText(status))
	}
	return reply
}
