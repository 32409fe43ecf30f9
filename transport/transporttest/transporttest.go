// Package transporttest provides a scripted transport.Doer that records every
// request, for testing code that talks to the collector.
package transporttest

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/ggoodman/tracker-go/transport"
)

// Route produces the outcome for a matched request.
type Route func(req *transport.Request) (*transport.Response, error)

type route struct {
	method string
	suffix string
	fn     Route
}

// Recorder is a transport.Doer that answers from registered routes and
// records requests in arrival order. Unmatched requests get a 404.
type Recorder struct {
	mu       sync.Mutex
	routes   []route
	requests []*transport.Request
}

var _ transport.Doer = (*Recorder)(nil)

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// Handle registers fn for requests whose method matches and whose URL ends
// with suffix. Later registrations for the same method and suffix replace
// earlier ones.
func (r *Recorder) Handle(method, suffix string, fn Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.routes {
		if r.routes[i].method == method && r.routes[i].suffix == suffix {
			r.routes[i].fn = fn
			return
		}
	}
	r.routes = append(r.routes, route{method: method, suffix: suffix, fn: fn})
}

// Reply registers a fixed JSON response.
func (r *Recorder) Reply(method, suffix string, status int, body string) {
	r.Handle(method, suffix, func(*transport.Request) (*transport.Response, error) {
		return JSON(status, body), nil
	})
}

// Fail registers a request-level failure such as a refused connection.
func (r *Recorder) Fail(method, suffix string, err error) {
	r.Handle(method, suffix, func(*transport.Request) (*transport.Response, error) {
		return nil, err
	})
}

// Do implements transport.Doer. Non-2xx responses are returned together with
// a *transport.StatusError, like the HTTP transport does.
func (r *Recorder) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.requests = append(r.requests, clone(req))
	var fn Route
	for _, rt := range r.routes {
		if rt.method == req.Method && strings.HasSuffix(req.URL, rt.suffix) {
			fn = rt.fn
			break
		}
	}
	r.mu.Unlock()

	if fn == nil {
		fn = func(*transport.Request) (*transport.Response, error) {
			return JSON(http.StatusNotFound, `{"message":"not found"}`), nil
		}
	}

	res, err := fn(req)
	if err != nil {
		return res, err
	}
	if !res.OK() {
		return res, &transport.StatusError{StatusCode: res.StatusCode}
	}
	return res, nil
}

// Requests returns every recorded request in arrival order.
func (r *Recorder) Requests() []*transport.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*transport.Request, len(r.requests))
	copy(out, r.requests)
	return out
}

// RequestsTo returns the recorded requests whose URL ends with suffix.
func (r *Recorder) RequestsTo(suffix string) []*transport.Request {
	var out []*transport.Request
	for _, req := range r.Requests() {
		if strings.HasSuffix(req.URL, suffix) {
			out = append(out, req)
		}
	}
	return out
}

// Reset forgets recorded requests; routes are kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.requests = nil
	r.mu.Unlock()
}

// JSON builds a response with a JSON content type.
func JSON(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
		Body:       []byte(body),
	}
}

func clone(req *transport.Request) *transport.Request {
	c := &transport.Request{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		c.Body = append([]byte(nil), req.Body...)
	}
	return c
}
